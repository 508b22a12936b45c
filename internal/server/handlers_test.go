package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/cache"
	"github.com/01101011010/Martin-Simonson/internal/config"
	"github.com/01101011010/Martin-Simonson/internal/content"
	"github.com/01101011010/Martin-Simonson/internal/monitoring"
	"github.com/01101011010/Martin-Simonson/internal/page"
	"github.com/01101011010/Martin-Simonson/internal/render"
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

type stubFetcher struct {
	byURL map[string][]sheet.Record
}

func (f *stubFetcher) Fetch(_ context.Context, url string) []sheet.Record {
	return f.byURL[url]
}

func talkFixtures(n int) []sheet.Record {
	records := make([]sheet.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, sheet.Record{
			"title_es": "Charla " + string(rune('A'+i)),
			"title_en": "Talk " + string(rune('A'+i)),
		})
	}
	return records
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:  "0",
		CacheTTL:    time.Hour,
		DefaultLang: "es",
	}
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	logger := zap.NewNop()

	fetcher := &stubFetcher{byURL: map[string][]sheet.Record{
		"http://sheets.test/books": {
			{"category": "fiction", "title_es": "Cuentos", "title_en": "Tales"},
		},
		"http://sheets.test/talks": talkFixtures(10),
		"http://sheets.test/news":  {{"title_es": "Noticia", "title_en": "News item"}},
	}}
	urls := map[content.Category]string{
		content.Books: "http://sheets.test/books",
		content.Talks: "http://sheets.test/talks",
		content.News:  "http://sheets.test/news",
	}

	store := cache.NewMemoryStore()
	svc := content.NewService(store, fetcher, urls, cfg.CacheTTL, m, nil, logger)
	renderer := render.NewRenderer(m, logger)
	composer := page.NewComposer(svc, renderer, logger)

	return NewServer(cfg, svc, composer, renderer, store, nil, m, logger, page.DefaultShell)
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPageComposesAllRegions(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#books-fiction .book").Length())
	require.Equal(t, 3, doc.Find("#talks .talk").Length())
	require.Equal(t, 1, doc.Find("#news .news-item").Length())

	// Default language is Spanish.
	require.Contains(t, doc.Find("#books-fiction .book-title").Text(), "Cuentos")
}

func TestPageLangOverride(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/?lang=en", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Contains(t, doc.Find("#books-fiction .book-title").Text(), "Tales")
}

func TestTalksFragmentExpandCollapse(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/fragments/talks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 3, doc.Find(".talk").Length())

	rec = doRequest(t, s, http.MethodGet, "/fragments/talks?expanded=1", "")
	doc, err = goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 10, doc.Find(".talk").Length())
}

func TestSetLangPersistsCookie(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/lang/en", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "lang", cookies[0].Name)
	require.Equal(t, "en", cookies[0].Value)
}

func TestLangCookieSelectsLanguage(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/fragments/news", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "News item", strings.TrimSpace(doc.Find(".news-title").Text()))
}

func TestRefreshEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/refresh", `{"force": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows map[string]int `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, map[string]int{"books": 1, "talks": 10, "news": 1}, resp.Rows)
}

func TestRefreshRejectsUnknownCategory(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/refresh", `{"categories": ["poetry"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Populate the cache, then ask for status.
	doRequest(t, s, http.MethodGet, "/fragments/books", "")

	rec := doRequest(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []content.CategoryStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 3)

	byCategory := make(map[string]content.CategoryStatus)
	for _, st := range statuses {
		byCategory[st.Category] = st
	}
	require.True(t, byCategory["books"].Fresh)
	require.Equal(t, 1, byCategory["books"].Rows)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cache": "healthy"}`, rec.Body.String())
}
