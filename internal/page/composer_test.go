package page

import (
	"context"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/cache"
	"github.com/01101011010/Martin-Simonson/internal/content"
	"github.com/01101011010/Martin-Simonson/internal/monitoring"
	"github.com/01101011010/Martin-Simonson/internal/render"
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

// stubFetcher serves canned records keyed by sheet URL.
type stubFetcher struct {
	byURL map[string][]sheet.Record
}

func (f *stubFetcher) Fetch(_ context.Context, url string) []sheet.Record {
	return f.byURL[url]
}

func newTestComposer(t *testing.T) *Composer {
	t.Helper()

	m := monitoring.NewMetrics(prometheus.NewRegistry())
	fetcher := &stubFetcher{byURL: map[string][]sheet.Record{
		"http://sheets.test/books": {{"category": "fiction", "title_es": "Cuentos"}},
		"http://sheets.test/talks": {{"title_es": "Charla"}},
		"http://sheets.test/news":  {{"title_es": "Noticia"}},
	}}
	urls := map[content.Category]string{
		content.Books: "http://sheets.test/books",
		content.Talks: "http://sheets.test/talks",
		content.News:  "http://sheets.test/news",
	}
	svc := content.NewService(cache.NewMemoryStore(), fetcher, urls, time.Hour, m, nil, zap.NewNop())
	return NewComposer(svc, render.NewRenderer(m, zap.NewNop()), zap.NewNop())
}

func TestRunFillsAllCategories(t *testing.T) {
	c := newTestComposer(t)

	sess := NewSession(sheet.LangES)
	c.Run(context.Background(), sess)

	require.Len(t, sess.Books, 1)
	require.Len(t, sess.Talks, 1)
	require.Len(t, sess.News, 1)
}

func TestFragmentsInvokesBooksRenderedHook(t *testing.T) {
	c := newTestComposer(t)

	sess := NewSession(sheet.LangES)
	c.Run(context.Background(), sess)

	var counts map[string]int
	sess.BooksRendered = func(got map[string]int) { counts = got }

	fragments := c.Fragments(sess)
	require.Len(t, fragments, 6) // four book sections, talks, news
	require.Equal(t, map[string]int{
		"fiction": 1, "essays": 0, "anthologies": 0, "translations": 0,
	}, counts)
}

func TestComposePageInjectsAndSkipsAbsent(t *testing.T) {
	c := newTestComposer(t)

	shell := []byte(`<html><body><div id="talks"></div></body></html>`)
	fragments := []render.Fragment{
		{Region: "talks", HTML: template.HTML(`<ul class="talk-list"><li>Charla</li></ul>`)},
		{Region: "news", HTML: template.HTML(`<ul class="news-list"></ul>`)},
	}

	html, err := c.ComposePage(shell, fragments)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#talks .talk-list").Length())
	require.Equal(t, 0, doc.Find(".news-list").Length())
}

func TestDefaultShellCarriesAllContainers(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(DefaultShell)))
	require.NoError(t, err)

	for _, id := range []string{
		"books-fiction", "books-essays", "books-anthologies", "books-translations",
		"talks", "news",
	} {
		require.Equal(t, 1, doc.Find("#"+id).Length(), id)
	}
}

func TestComposedPageIsReproducible(t *testing.T) {
	c := newTestComposer(t)

	sess := NewSession(sheet.LangES)
	c.Run(context.Background(), sess)

	first, err := c.ComposePage(DefaultShell, c.Fragments(sess))
	require.NoError(t, err)
	second, err := c.ComposePage(DefaultShell, c.Fragments(sess))
	require.NoError(t, err)
	require.Equal(t, first, second)
}
