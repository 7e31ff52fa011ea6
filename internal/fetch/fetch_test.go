package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sakif/challenge-bot/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestClient_FetchJSON(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"schedule":[]}`))
	}))
	defer srv.Close()

	c := fetch.NewClient(srv.Client(), "challenge-bot/test")
	body, err := c.FetchJSON(context.Background(), srv.URL, time.Second)

	require.NoError(t, err)
	assert.JSONEq(t, `{"schedule":[]}`, string(body))
	assert.Equal(t, "challenge-bot/test", gotUA)
}

func TestClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := fetch.NewClient(srv.Client(), "")

	_, err := c.FetchJSON(context.Background(), srv.URL, time.Second)
	assert.ErrorContains(t, err, "status 404")

	_, err = c.FetchHTML(context.Background(), srv.URL, time.Second)
	assert.ErrorContains(t, err, "status 404")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := fetch.NewClient(srv.Client(), "")

	start := time.Now()
	_, err := c.FetchJSON(context.Background(), srv.URL, 50*time.Millisecond)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_FetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><h2>Day 1</h2><p>Hello there</p></body></html>`))
	}))
	defer srv.Close()

	c := fetch.NewClient(srv.Client(), "")
	doc, err := c.FetchHTML(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)

	headings := fetch.FindAll(doc, fetch.HeadingTags...)
	require.Len(t, headings, 1)
	assert.Equal(t, "Day 1", fetch.Text(headings[0]))
}

func TestHTMLQuery(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`
		<div id="root">
			<h3>Title</h3>
			<!-- note -->
			<p>  first   paragraph </p>
			<script>var x = 1;</script>
			<ul><li>one</li><li>two</li></ul>
		</div>`))
	require.NoError(t, err)

	t.Run("FindAll keeps document order", func(t *testing.T) {
		items := fetch.FindAll(doc, atom.Li)
		require.Len(t, items, 2)
		assert.Equal(t, "one", fetch.Text(items[0]))
		assert.Equal(t, "two", fetch.Text(items[1]))
	})

	t.Run("NextElementSibling skips text and comments", func(t *testing.T) {
		h := fetch.FindAll(doc, atom.H3)[0]
		next := fetch.NextElementSibling(h)
		require.NotNil(t, next)
		assert.Equal(t, "p", next.Data)
	})

	t.Run("Text collapses whitespace and skips scripts", func(t *testing.T) {
		root := fetch.FindAll(doc, atom.Div)[0]
		assert.Equal(t, "Title first paragraph one two", fetch.Text(root))
	})

	t.Run("FindText matches predicate", func(t *testing.T) {
		n := fetch.FindText(doc, func(s string) bool { return strings.Contains(s, "paragraph") })
		require.NotNil(t, n)
		assert.Equal(t, "p", n.Parent.Data)

		assert.Nil(t, fetch.FindText(doc, func(s string) bool { return strings.Contains(s, "absent") }))
	})
}
