package page

import (
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

// Session is the per-page-build context: the fetched record sets, the
// active language, and the expand/collapse flags for the two lists.
// It lives for a single page build and is never persisted.
type Session struct {
	Lang sheet.Lang

	Books []sheet.Record
	Talks []sheet.Record
	News  []sheet.Record

	TalksExpanded bool
	NewsExpanded  bool

	// BooksRendered, when set, is invoked after the book fragments are
	// built with the number of books placed in each section. The server
	// uses it to refresh gauges; a static render passes nil.
	BooksRendered func(counts map[string]int)
}

func NewSession(lang sheet.Lang) *Session {
	return &Session{Lang: lang}
}
