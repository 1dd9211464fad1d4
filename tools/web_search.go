package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	DefaultSearchURL = "https://html.duckduckgo.com/html/"

	defaultSearchResults = 4
	searchNoResult       = "No good DuckDuckGo Search Result was found"
)

type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"Search query for current events or facts not in your training data."`
}

// WebSearch queries the DuckDuckGo HTML endpoint.
type WebSearch struct {
	Client     *http.Client
	BaseURL    string // defaults to DefaultSearchURL
	MaxResults int    // defaults to 4
}

func (s WebSearch) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "web_search",
		Description: "Search the web with DuckDuckGo. Useful for current events and questions that need up-to-date information. Returns titles, links and snippets.",
		InputSchema: GenerateSchema[WebSearchInput](),
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in WebSearchInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			return s.Search(ctx, in.Query)
		},
	}
}

type searchResult struct {
	Title, Link, Snippet string
}

func (s WebSearch) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultSearchURL
	}
	body, err := getBody(ctx, s.Client, base+"?"+url.Values{"q": {query}}.Encode())
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	results, err := parseSearchResults(body)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	limit := s.MaxResults
	if limit <= 0 {
		limit = defaultSearchResults
	}
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return searchNoResult, nil
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Title: %s\nLink: %s\nSnippet: %s", r.Title, r.Link, r.Snippet)
	}
	return sb.String(), nil
}

// parseSearchResults extracts organic results: a "result__a" anchor starts a
// result and the next "result__snippet" element fills its snippet. Sponsored
// links (y.js redirects) are skipped.
func parseSearchResults(page []byte) ([]searchResult, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	var results []searchResult
	current := -1
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				link := resultLink(attr(n, "href"))
				if strings.Contains(link, "duckduckgo.com/y.js") {
					current = -1
					return
				}
				results = append(results, searchResult{Title: nodeText(n), Link: link})
				current = len(results) - 1
				return
			case hasClass(n, "result__snippet"):
				if current >= 0 && results[current].Snippet == "" {
					results[current].Snippet = nodeText(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

// resultLink unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=<target> redirect.
func resultLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText returns the whitespace-normalised text under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
