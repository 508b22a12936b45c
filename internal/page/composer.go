package page

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/content"
	"github.com/01101011010/Martin-Simonson/internal/render"
)

// DefaultShell is the built-in page shell carrying every expected
// container. Deployments with a custom page pass their own shell.
//
//go:embed shell.html
var DefaultShell []byte

// Composer assembles a full page: it pulls all three categories
// through the content service, renders their fragments, and injects
// them into the shell's containers.
type Composer struct {
	content  *content.Service
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewComposer(svc *content.Service, renderer *render.Renderer, logger *zap.Logger) *Composer {
	return &Composer{content: svc, renderer: renderer, logger: logger}
}

// Run fills the session's record sets, fetching the three categories
// concurrently. It returns once all three have settled; a category
// that degraded to empty never affects the others.
func (c *Composer) Run(ctx context.Context, s *Session) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.Books = c.content.Records(ctx, content.Books)
	}()
	go func() {
		defer wg.Done()
		s.Talks = c.content.Records(ctx, content.Talks)
	}()
	go func() {
		defer wg.Done()
		s.News = c.content.Records(ctx, content.News)
	}()
	wg.Wait()
}

// Fragments renders every page region for the session.
func (c *Composer) Fragments(s *Session) []render.Fragment {
	fragments := c.renderer.Books(s.Books, s.Lang)

	if s.BooksRendered != nil {
		counts := make(map[string]int, len(fragments))
		for _, f := range fragments {
			counts[strings.TrimPrefix(f.Region, "books-")] = f.Count
		}
		s.BooksRendered(counts)
	}

	fragments = append(fragments,
		c.renderer.Talks(s.Talks, s.Lang, s.TalksExpanded),
		c.renderer.News(s.News, s.Lang, s.NewsExpanded),
	)
	return fragments
}

// ComposePage injects the fragments into the shell's containers,
// located by element id. A fragment whose container is absent from the
// shell is skipped silently.
func (c *Composer) ComposePage(shell []byte, fragments []render.Fragment) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(shell))
	if err != nil {
		return "", fmt.Errorf("parse page shell: %w", err)
	}

	for _, f := range fragments {
		sel := doc.Find("#" + f.Region)
		if sel.Length() == 0 {
			c.logger.Debug("page shell has no container for region", zap.String("region", f.Region))
			continue
		}
		sel.SetHtml(string(f.HTML))
	}

	return doc.Html()
}
