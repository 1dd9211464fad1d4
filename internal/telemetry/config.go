package telemetry

import "os"

// DefaultArtifactsDir holds events.jsonl when AGT_ARTIFACTS_DIR is unset.
const DefaultArtifactsDir = ".agent"

// ObserveEnabled reports whether JSONL emission is on (AGT_OBSERVE_JSON=1).
// Read on every call so tests and the CLI can toggle it at runtime.
func ObserveEnabled() bool {
	return os.Getenv("AGT_OBSERVE_JSON") == "1"
}

// ArtifactsDir returns the directory events are written to.
func ArtifactsDir() string {
	if v := os.Getenv("AGT_ARTIFACTS_DIR"); v != "" {
		return v
	}
	return DefaultArtifactsDir
}
