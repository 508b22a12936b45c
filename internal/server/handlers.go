package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/content"
	"github.com/01101011010/Martin-Simonson/internal/page"
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

const langCookie = "lang"

func (s *Server) langFrom(r *http.Request) sheet.Lang {
	if q := r.URL.Query().Get("lang"); q != "" {
		return sheet.ParseLang(q)
	}
	if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
		return sheet.ParseLang(c.Value)
	}
	return sheet.ParseLang(s.config.DefaultLang)
}

func expandedFrom(r *http.Request) bool {
	expanded, _ := strconv.ParseBool(r.URL.Query().Get("expanded"))
	return expanded
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := page.NewSession(s.langFrom(r))
	sess.BooksRendered = func(counts map[string]int) {
		for section, n := range counts {
			s.metrics.BooksRendered.WithLabelValues(section).Set(float64(n))
		}
	}

	s.composer.Run(r.Context(), sess)

	html, err := s.composer.ComposePage(s.shell, s.composer.Fragments(sess))
	if err != nil {
		s.logger.Error("failed to compose page", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not compose page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

func (s *Server) handleBooksFragment(w http.ResponseWriter, r *http.Request) {
	lang := s.langFrom(r)
	records := s.content.Records(r.Context(), content.Books)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, f := range s.renderer.Books(records, lang) {
		fmt.Fprintf(w, "<div id=%q>%s</div>\n", f.Region, f.HTML)
	}
}

func (s *Server) handleTalksFragment(w http.ResponseWriter, r *http.Request) {
	lang := s.langFrom(r)
	records := s.content.Records(r.Context(), content.Talks)
	f := s.renderer.Talks(records, lang, expandedFrom(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, string(f.HTML))
}

func (s *Server) handleNewsFragment(w http.ResponseWriter, r *http.Request) {
	lang := s.langFrom(r)
	records := s.content.Records(r.Context(), content.News)
	f := s.renderer.News(records, lang, expandedFrom(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, string(f.HTML))
}

func (s *Server) handleSetLang(w http.ResponseWriter, r *http.Request) {
	lang := sheet.ParseLang(chi.URLParam(r, "code"))

	http.SetCookie(w, &http.Cookie{
		Name:   langCookie,
		Value:  string(lang),
		Path:   "/",
		MaxAge: 365 * 24 * 3600,
	})

	target := r.Referer()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type refreshRequest struct {
	Categories []string `json:"categories"`
	Force      bool     `json:"force"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	categories := make([]content.Category, 0, len(content.Categories()))
	if len(req.Categories) == 0 {
		categories = content.Categories()
	} else {
		for _, c := range req.Categories {
			cat := content.Category(c)
			switch cat {
			case content.Books, content.Talks, content.News:
				categories = append(categories, cat)
			default:
				s.respondWithError(w, http.StatusBadRequest, "Unknown category: "+c)
				return
			}
		}
	}

	rows := make(map[string]int, len(categories))
	for _, cat := range categories {
		rows[string(cat)] = len(s.content.Refresh(r.Context(), cat, req.Force))
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.content.Status(r.Context()))
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)
	healthy := true

	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			healthStatus["cache"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for cache store", zap.Error(err))
		} else {
			healthStatus["cache"] = "healthy"
		}
	} else {
		healthStatus["cache"] = "healthy"
	}

	if s.archive != nil {
		if err := s.archive.Ping(ctx); err != nil {
			healthStatus["archive"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for archive", zap.Error(err))
		} else {
			healthStatus["archive"] = "healthy"
		}
	}

	if !healthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
