package tools_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/chain-tools/tools"
)

const ddgPage = `<!DOCTYPE html><html><body>
<div class="result results_links result--ad">
  <h2 class="result__title"><a class="result__a" href="https://duckduckgo.com/y.js?ad_provider=x">Buy now</a></h2>
  <a class="result__snippet" href="#">Sponsored</a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=abc">The <b>Go</b> Programming Language</a></h2>
  <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">Go is an open source   programming language
  that makes it simple to <b>build</b> software.</a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="https://example.com/plain">Plain link</a></h2>
</div>
</body></html>`

func searchServer(t *testing.T, status int, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query().Get("q")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSearch_ParsesOrganicResults(t *testing.T) {
	var q string
	srv := searchServer(t, 200, ddgPage, &q)
	s := tools.WebSearch{Client: srv.Client(), BaseURL: srv.URL}

	out, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, "golang", q)
	assert.Equal(t,
		"Title: The Go Programming Language\nLink: https://go.dev/\nSnippet: Go is an open source programming language that makes it simple to build software.\n\n"+
			"Title: Plain link\nLink: https://example.com/plain\nSnippet: ", out)
}

func TestWebSearch_MaxResults(t *testing.T) {
	srv := searchServer(t, 200, ddgPage, nil)
	s := tools.WebSearch{Client: srv.Client(), BaseURL: srv.URL, MaxResults: 1}

	out, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.NotContains(t, out, "Plain link")
}

func TestWebSearch_NoResults(t *testing.T) {
	srv := searchServer(t, 200, `<html><body><div class="no-results">No results.</div></body></html>`, nil)
	out, err := tools.WebSearch{Client: srv.Client(), BaseURL: srv.URL}.Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "No good DuckDuckGo Search Result was found", out)
}

func TestWebSearch_Errors(t *testing.T) {
	srv := searchServer(t, 403, "blocked", nil)
	s := tools.WebSearch{Client: srv.Client(), BaseURL: srv.URL}

	_, err := s.Search(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")

	_, err = s.Definition().Function(context.Background(), json.RawMessage(`{"query":""}`))
	assert.Error(t, err)
}
