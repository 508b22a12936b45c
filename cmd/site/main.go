package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kr/text"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/archive"
	"github.com/01101011010/Martin-Simonson/internal/cache"
	"github.com/01101011010/Martin-Simonson/internal/config"
	"github.com/01101011010/Martin-Simonson/internal/content"
	"github.com/01101011010/Martin-Simonson/internal/monitoring"
	"github.com/01101011010/Martin-Simonson/internal/page"
	"github.com/01101011010/Martin-Simonson/internal/render"
	"github.com/01101011010/Martin-Simonson/internal/server"
	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

// app wires the shared dependency graph used by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    cache.Store
	archive  *archive.PostgresArchive
	metrics  *monitoring.Metrics
	content  *content.Service
	renderer *render.Renderer
	composer *page.Composer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	var logger *zap.Logger
	if strings.EqualFold(cfg.LogLevel, "debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case "redis":
		store = cache.NewRedisStore(cfg.RedisAddr)
	case "memory":
		store = cache.NewMemoryStore()
	case "sqlite":
		store, err = cache.NewSQLiteStore(cfg.CachePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	var arc *archive.PostgresArchive
	if cfg.PostgresURL != "" {
		arc, err = archive.NewPostgresArchive(ctx, cfg.PostgresURL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to archive: %w", err)
		}
	}

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	fetcher := sheet.NewFetcher(cfg.FetchTimeout, sheet.CSVDecoder{}, logger)

	urls := map[content.Category]string{
		content.Books: cfg.BooksSheetURL,
		content.Talks: cfg.TalksSheetURL,
		content.News:  cfg.NewsSheetURL,
	}

	var svcArchive content.Archive
	if arc != nil {
		svcArchive = arc
	}
	svc := content.NewService(store, fetcher, urls, cfg.CacheTTL, metrics, svcArchive, logger)

	renderer := render.NewRenderer(metrics, logger)
	composer := page.NewComposer(svc, renderer, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		archive:  arc,
		metrics:  metrics,
		content:  svc,
		renderer: renderer,
		composer: composer,
	}, nil
}

func (a *app) close() {
	if a.archive != nil {
		a.archive.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cache store", zap.Error(err))
	}
	a.logger.Sync()
}

func (a *app) shell(override string) ([]byte, error) {
	path := override
	if path == "" {
		path = a.cfg.ShellPath
	}
	if path == "" {
		return page.DefaultShell, nil
	}
	return os.ReadFile(path)
}

func (a *app) serve(ctx context.Context) error {
	shell, err := a.shell("")
	if err != nil {
		return err
	}
	srv := server.NewServer(a.cfg, a.content, a.composer, a.renderer, a.store, a.archive, a.metrics, a.logger, shell)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	a.logger.Info("server started", zap.String("port", a.cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("server exiting")
	return nil
}

func parseCategories(args []string) ([]content.Category, error) {
	if len(args) == 0 {
		return content.Categories(), nil
	}
	categories := make([]content.Category, 0, len(args))
	for _, arg := range args {
		cat := content.Category(strings.ToLower(arg))
		switch cat {
		case content.Books, content.Talks, content.News:
			categories = append(categories, cat)
		default:
			return nil, fmt.Errorf("unknown category %q", arg)
		}
	}
	return categories, nil
}

func printRecords(records []sheet.Record, lang sheet.Lang) {
	for i, rec := range records {
		title := rec.Localized("title", lang)
		if title == "" {
			title = rec.Get("title")
		}
		fmt.Printf("%d. %s\n", i+1, title)

		if date := rec.Localized("date", lang); date != "" {
			fmt.Printf("   %s\n", date)
		}
		if desc := rec.Localized("description", lang); desc != "" {
			fmt.Println(text.Indent(text.Wrap(desc, 70), "   "))
		}
		fmt.Println()
	}
}

func main() {
	rootFs := flag.NewFlagSet("site", flag.ExitOnError)
	rootCmd := &ffcli.Command{
		Name:       "site",
		ShortUsage: "site <subcommand> [flags]",
		ShortHelp:  "Portfolio content service",
		LongHelp: `Site fetches the published spreadsheet CSVs behind the portfolio
(books, talks, news), caches snapshots locally, and renders them as
localized HTML fragments, either served over HTTP or baked into a
static page.`,
		FlagSet: rootFs,
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	serveCmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "site serve",
		ShortHelp:  "Run the HTTP server",
		Exec: func(ctx context.Context, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve(ctx)
		},
	}

	refreshFs := flag.NewFlagSet("refreshFlags", flag.ExitOnError)
	refreshForce := refreshFs.Bool("force", false, "refetch even when the cached snapshot is still fresh")
	refreshCmd := &ffcli.Command{
		Name:       "refresh",
		ShortUsage: "site refresh [-force] [category]...",
		ShortHelp:  "Fetch and cache the sheets once (suitable for cron)",
		FlagSet:    refreshFs,
		Exec: func(ctx context.Context, args []string) error {
			categories, err := parseCategories(args)
			if err != nil {
				return err
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			for _, cat := range categories {
				records := a.content.Refresh(ctx, cat, *refreshForce)
				fmt.Printf("%s: %d rows\n", cat, len(records))
			}
			return nil
		},
	}

	renderFs := flag.NewFlagSet("renderFlags", flag.ExitOnError)
	renderOut := renderFs.String("out", "", "output file (default stdout)")
	renderShell := renderFs.String("shell", "", "page shell file (default built-in)")
	renderLang := renderFs.String("lang", "", "language, es or en (default from config)")
	renderExpanded := renderFs.Bool("expanded", false, "render talks and news fully expanded")
	renderCmd := &ffcli.Command{
		Name:       "render",
		ShortUsage: "site render [-out file] [-shell file] [-lang es|en] [-expanded]",
		ShortHelp:  "Bake a static page from the cached sheets",
		FlagSet:    renderFs,
		Exec: func(ctx context.Context, args []string) error {
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			shell, err := a.shell(*renderShell)
			if err != nil {
				return err
			}

			langCode := *renderLang
			if langCode == "" {
				langCode = a.cfg.DefaultLang
			}

			sess := page.NewSession(sheet.ParseLang(langCode))
			sess.TalksExpanded = *renderExpanded
			sess.NewsExpanded = *renderExpanded
			a.composer.Run(ctx, sess)

			html, err := a.composer.ComposePage(shell, a.composer.Fragments(sess))
			if err != nil {
				return err
			}

			if *renderOut == "" {
				fmt.Println(html)
				return nil
			}
			return os.WriteFile(*renderOut, []byte(html), 0o644)
		},
	}

	peekFs := flag.NewFlagSet("peekFlags", flag.ExitOnError)
	peekLang := peekFs.String("lang", "", "language, es or en (default from config)")
	peekCmd := &ffcli.Command{
		Name:       "peek",
		ShortUsage: "site peek [-lang es|en] <category>",
		ShortHelp:  "Fetch a category through the cache and print its records",
		FlagSet:    peekFs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}
			categories, err := parseCategories(args)
			if err != nil {
				return err
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			langCode := *peekLang
			if langCode == "" {
				langCode = a.cfg.DefaultLang
			}

			records := a.content.Records(ctx, categories[0])
			printRecords(records, sheet.ParseLang(langCode))
			fmt.Printf("%d rows\n", len(records))
			return nil
		},
	}

	rootCmd.Subcommands = []*ffcli.Command{serveCmd, refreshCmd, renderCmd, peekCmd}

	if err := rootCmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil && err != flag.ErrHelp {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
