package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

	wikipediaTopK     = 3
	wikipediaMaxRunes = 4000
	wikipediaNoResult = "No good Wikipedia Search Result was found"
	maxResponseBytes  = 2 << 20
	userAgent         = "chain-tools/1.0 (+https://github.com/petasbytes/chain-tools)"
)

type WikipediaInput struct {
	Query string `json:"query" jsonschema_description:"Search terms, e.g. a person, place, event or concept."`
}

// Wikipedia searches the MediaWiki API and returns the intro of the best
// matching pages.
type Wikipedia struct {
	Client  *http.Client
	BaseURL string // defaults to DefaultWikipediaURL
}

func (w Wikipedia) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "wikipedia",
		Description: "Look up general knowledge about people, places, companies, facts, historical events, or other subjects on Wikipedia. Input is a search query.",
		InputSchema: GenerateSchema[WikipediaInput](),
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in WikipediaInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			return w.Search(ctx, in.Query)
		},
	}
}

type wikiPage struct {
	index   int64
	title   string
	extract string
}

// Search returns up to three "Page: <title>\nSummary: <intro>" blocks,
// capped at 4000 runes overall.
func (w Wikipedia) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	base := w.BaseURL
	if base == "" {
		base = DefaultWikipediaURL
	}
	q := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"generator":     {"search"},
		"gsrsearch":     {query},
		"gsrlimit":      {fmt.Sprint(wikipediaTopK)},
		"prop":          {"extracts"},
		"exintro":       {"1"},
		"explaintext":   {"1"},
		"exlimit":       {fmt.Sprint(wikipediaTopK)},
		"redirects":     {"1"},
	}
	body, err := getBody(ctx, w.Client, base+"?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("wikipedia: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("wikipedia: invalid JSON response")
	}

	var pages []wikiPage
	gjson.GetBytes(body, "query.pages").ForEach(func(_, p gjson.Result) bool {
		extract := strings.TrimSpace(p.Get("extract").String())
		if extract == "" {
			return true
		}
		pages = append(pages, wikiPage{
			index:   p.Get("index").Int(),
			title:   p.Get("title").String(),
			extract: extract,
		})
		return true
	})
	if len(pages) == 0 {
		return wikipediaNoResult, nil
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].index < pages[j].index })
	if len(pages) > wikipediaTopK {
		pages = pages[:wikipediaTopK]
	}

	blocks := make([]string, len(pages))
	for i, p := range pages {
		blocks[i] = fmt.Sprintf("Page: %s\nSummary: %s", p.title, p.extract)
	}
	out := strings.Join(blocks, "\n\n")
	if r := []rune(out); len(r) > wikipediaMaxRunes {
		out = string(r[:wikipediaMaxRunes])
	}
	return out, nil
}

// getBody performs a GET and returns the body of a 200 response.
func getBody(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}
