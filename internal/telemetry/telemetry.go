// Package telemetry writes opt-in JSONL events about turns, tool calls and
// chain runs.
//
// Events never carry raw prompt or response text; text is described by its
// shape (see TextShape).
package telemetry

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// EventsFile is the file name inside ArtifactsDir.
const EventsFile = "events.jsonl"

// Concurrent tool invocations may emit at the same time; keep lines whole.
var writeMu sync.Mutex

// Emit appends one JSON line to <ArtifactsDir>/events.jsonl when
// AGT_OBSERVE_JSON=1. It adds "time" (RFC3339Nano, UTC) and "event".
// Failures are reported on stderr and otherwise ignored.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	m := make(map[string]any, len(fields)+2)
	maps.Copy(m, fields)
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	dir := ArtifactsDir()
	writeMu.Lock()
	defer writeMu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}
	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}

// TextShape describes s without revealing it: byte, rune, word and line
// counts. Lines is 0 for the empty string.
func TextShape(s string) map[string]any {
	lines := 0
	if s != "" {
		lines = 1 + strings.Count(s, "\n")
	}
	return map[string]any{
		"bytes": len(s),
		"runes": utf8.RuneCountInString(s),
		"words": len(strings.Fields(s)),
		"lines": lines,
	}
}
