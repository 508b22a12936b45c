package render

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/monitoring"
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// collapsedCount is how many talks/news items show before "show all".
const collapsedCount = 3

// BookSections are the four recognized gallery sections, in page order.
var BookSections = []string{"fiction", "essays", "anthologies", "translations"}

// Fragment is a rendered HTML slice destined for one page container.
type Fragment struct {
	Region string // container element id
	HTML   template.HTML
	Count  int // items rendered into the fragment
}

// Renderer builds the localized fragments for every page region. It is
// pure with respect to its inputs: the same records, language, and
// expanded flag always produce byte-identical output. All sheet text
// passes through html/template, so the five HTML-sensitive characters
// are entity-escaped in every field that reaches markup.
type Renderer struct {
	tpl     *template.Template
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewRenderer(m *monitoring.Metrics, logger *zap.Logger) *Renderer {
	return &Renderer{
		tpl:     template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
		metrics: m,
		logger:  logger,
	}
}

type bookView struct {
	Title       string
	Edition     string
	Link        string
	Cover       string
	Description string
	Languages   string
	Year        string
}

type booksData struct {
	Section string
	Books   []bookView
}

// Books partitions the records into the four gallery sections by a
// case-insensitive category match and renders one fragment per section.
// Records with an unrecognized category are dropped with a warning.
func (r *Renderer) Books(records []sheet.Record, lang sheet.Lang) []Fragment {
	bySection := make(map[string][]bookView, len(BookSections))
	for _, rec := range records {
		section := strings.ToLower(rec.Get("category"))
		if !knownSection(section) {
			r.logger.Warn("dropping book with unrecognized category",
				zap.String("category", rec.Get("category")),
				zap.String("title", rec.Localized("title", lang)))
			r.metrics.IncDroppedBook()
			continue
		}

		title := rec.Localized("title", lang)
		if title == "" {
			title = untitled(lang)
		}
		link := rec.Localized("link", lang)
		if link == "" {
			link = "#"
		}

		bySection[section] = append(bySection[section], bookView{
			Title:       title,
			Edition:     rec.Localized("edition", lang),
			Link:        link,
			Cover:       CoverURL(rec.Localized("image", lang), title),
			Description: rec.Localized("description", lang),
			Languages:   rec.Get("languages"),
			Year:        rec.Get("year"),
		})
	}

	fragments := make([]Fragment, 0, len(BookSections))
	for _, section := range BookSections {
		books := bySection[section]
		fragments = append(fragments, Fragment{
			Region: "books-" + section,
			HTML:   r.execute("books.tmpl", booksData{Section: section, Books: books}),
			Count:  len(books),
		})
	}
	return fragments
}

type talkView struct {
	Title       string
	Meta        string
	Description string
	Link        string
	LinkText    string
	EmbedURL    string
}

type talksData struct {
	Items []talkView
	Toggle
}

// Talks renders the talk list: the first three by default, all of them
// when expanded. A talk with a recognizable video link gets the
// two-column embed layout.
func (r *Renderer) Talks(records []sheet.Record, lang sheet.Lang, expanded bool) Fragment {
	items := make([]talkView, 0, len(records))
	for _, rec := range records {
		linkText := rec.Localized("link_text", lang)
		if linkText == "" {
			linkText = moreInfo(lang)
		}

		var embedURL string
		if id := VideoID(rec.Get("video")); id != "" {
			embedURL = EmbedURL(id)
		}

		items = append(items, talkView{
			Title:       rec.Localized("title", lang),
			Meta:        metaLine(rec.Localized("date", lang), rec.Localized("venue", lang)),
			Description: rec.Localized("description", lang),
			Link:        rec.Get("link"),
			LinkText:    linkText,
			EmbedURL:    embedURL,
		})
	}

	total := len(items)
	if !expanded && total > collapsedCount {
		items = items[:collapsedCount]
	}

	return Fragment{
		Region: "talks",
		HTML:   r.execute("talks.tmpl", talksData{Items: items, Toggle: newToggle("talks", lang, expanded, total)}),
		Count:  len(items),
	}
}

type newsView struct {
	Date        string
	Title       string
	Description string
	Image       string
	Link        string
	LinkText    string

	// Both-language copies carried as inert data attributes for the
	// external detail view.
	TitleES, TitleEN             string
	DateES, DateEN               string
	DescriptionES, DescriptionEN string
}

type newsData struct {
	Items []newsView
	Toggle
}

// News renders the news list with the same expand/collapse shape as
// Talks, without the video branch.
func (r *Renderer) News(records []sheet.Record, lang sheet.Lang, expanded bool) Fragment {
	items := make([]newsView, 0, len(records))
	for _, rec := range records {
		items = append(items, newsView{
			Date:        rec.Localized("date", lang),
			Title:       rec.Localized("title", lang),
			Description: rec.Localized("description", lang),
			Image:       rec.Get("image"),
			Link:        rec.Get("link"),
			LinkText:    moreInfo(lang),

			TitleES:       rec.Localized("title", sheet.LangES),
			TitleEN:       rec.Localized("title", sheet.LangEN),
			DateES:        rec.Localized("date", sheet.LangES),
			DateEN:        rec.Localized("date", sheet.LangEN),
			DescriptionES: rec.Localized("description", sheet.LangES),
			DescriptionEN: rec.Localized("description", sheet.LangEN),
		})
	}

	total := len(items)
	if !expanded && total > collapsedCount {
		items = items[:collapsedCount]
	}

	return Fragment{
		Region: "news",
		HTML:   r.execute("news.tmpl", newsData{Items: items, Toggle: newToggle("news", lang, expanded, total)}),
		Count:  len(items),
	}
}

// Toggle carries the show-all/collapse control for a list fragment.
// The control refetches the fragment with the flipped flag, so the
// expanded state lives in the rendered content itself.
type Toggle struct {
	ShowToggle  bool
	ToggleURL   string
	ToggleLabel string
	Target      string
}

func newToggle(region string, lang sheet.Lang, expanded bool, total int) Toggle {
	t := Toggle{
		ShowToggle: total > collapsedCount,
		Target:     "#" + region,
	}
	if expanded {
		t.ToggleURL = "/fragments/" + region + "?lang=" + string(lang)
		t.ToggleLabel = collapseLabel(lang)
	} else {
		t.ToggleURL = "/fragments/" + region + "?lang=" + string(lang) + "&expanded=1"
		t.ToggleLabel = expandLabel(lang)
	}
	return t
}

func (r *Renderer) execute(name string, data interface{}) template.HTML {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("failed to render fragment", zap.String("template", name), zap.Error(err))
		return ""
	}
	return template.HTML(buf.String())
}

func knownSection(section string) bool {
	for _, s := range BookSections {
		if s == section {
			return true
		}
	}
	return false
}

// metaLine joins date and venue with a separator only when both are
// present.
func metaLine(date, venue string) string {
	switch {
	case date != "" && venue != "":
		return date + " · " + venue
	case date != "":
		return date
	default:
		return venue
	}
}

func untitled(lang sheet.Lang) string {
	if lang == sheet.LangEN {
		return "Untitled"
	}
	return "Sin título"
}

func moreInfo(lang sheet.Lang) string {
	if lang == sheet.LangEN {
		return "More info"
	}
	return "Más información"
}

func expandLabel(lang sheet.Lang) string {
	if lang == sheet.LangEN {
		return "Show all"
	}
	return "Ver todo"
}

func collapseLabel(lang sheet.Lang) string {
	if lang == sheet.LangEN {
		return "Show less"
	}
	return "Ver menos"
}
