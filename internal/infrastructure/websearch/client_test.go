package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizpilot/agent/internal/domain"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://en.wikipedia.org/wiki/Paris">Paris - Wikipedia</a>
</div>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.britannica.com%2Fplace%2FParis">Paris | Britannica</a>
</div>
<div class="result">
  <a class="other" href="https://ads.example.com">Sponsored</a>
</div>
</body></html>`

func TestSearch_ParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "capital of france", r.URL.Query().Get("q"))
		w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Millisecond, time.Second)
	results, err := client.Search(context.Background(), "capital of france", 5)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", results[0].URL)
	assert.Equal(t, "Paris - Wikipedia", results[0].Title)
	assert.Equal(t, "https://www.britannica.com/place/Paris", results[1].URL)
}

func TestSearch_HonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Millisecond, time.Second)
	results, err := client.Search(context.Background(), "anything", 1)

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("http://unused", time.Millisecond, time.Second)
	results, err := client.Search(context.Background(), "", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Millisecond, time.Second)
	_, err := client.Search(context.Background(), "anything", 5)

	assert.ErrorIs(t, err, domain.ErrSearchFailure)
}

func TestFetchPage_StripsScriptsAndFlattens(t *testing.T) {
	page := `<html><head><title> Paris  facts </title>
<style>body { color: red }</style>
<script>alert("nope")</script></head>
<body><h1>Paris</h1>
<p>The   answer is
Paris.</p></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	client := NewClient("http://unused", time.Millisecond, time.Second)
	snippet, err := client.FetchPage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, server.URL, snippet.SourceURL)
	assert.Equal(t, "Paris facts", snippet.Title)
	assert.Equal(t, "Paris The answer is Paris.", snippet.Text)
	assert.NotContains(t, snippet.Text, "alert")
	assert.NotContains(t, snippet.Text, "color: red")
}

func TestFetchPage_TruncatesTo500Chars(t *testing.T) {
	long := strings.Repeat("evidence ", 200)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + long + "</body></html>"))
	}))
	defer server.Close()

	client := NewClient("http://unused", time.Millisecond, time.Second)
	snippet, err := client.FetchPage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, []rune(snippet.Text), 500)
}

func TestRateGate_EnforcesMinimumInterval(t *testing.T) {
	var calls []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, time.Now())
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	interval := 50 * time.Millisecond
	client := NewClient(server.URL, interval, time.Second)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.FetchPage(ctx, server.URL)
		require.NoError(t, err)
	}

	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		gap := calls[i].Sub(calls[i-1])
		// allow small scheduler slack
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond,
			"call %d followed after %v, want >= %v", i, gap, interval)
	}
}
