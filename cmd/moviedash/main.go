package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"moviedash/internal"
	"moviedash/internal/config"
	"moviedash/internal/dashboard"
	"moviedash/internal/httpapi"
	"moviedash/internal/listener"
	"moviedash/internal/logger"
	"moviedash/internal/pipeline"
	"moviedash/internal/storage"
	"moviedash/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	cmd := os.Args[1]
	switch cmd {
	case "scrape:parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		htmlPath := fs.String("html", "", "saved listing page (default: every page in HTML_DIR)")
		genre := fs.String("genre", "", "genre of the page (default: from file name)")
		out := fs.String("out", "", "output csv (default: CSV_DIR/<genre>_movies.csv)")
		_ = fs.Parse(os.Args[2:])

		pages := []string{*htmlPath}
		if strings.TrimSpace(*htmlPath) == "" {
			pages, err = filepath.Glob(filepath.Join(cfg.HTMLDir, "*.html"))
			must(err)
			if len(pages) == 0 {
				must(fmt.Errorf("no html pages in %s", cfg.HTMLDir))
			}
			if *out != "" {
				must(fmt.Errorf("--out needs --html"))
			}
		}
		for _, page := range pages {
			g := *genre
			if g == "" {
				g = pipeline.GenreFromFilename(page)
			}
			records, err := pipeline.ReadRawFile(page, cfg.DurationField, g)
			must(err)
			target := *out
			if target == "" {
				target = filepath.Join(cfg.CSVDir, strings.ToLower(g)+"_movies.csv")
			}
			must(pipeline.WriteRawCSV(target, records, cfg.DurationField))
			fmt.Printf("parsed %d movies from %s into %s\n", len(records), page, target)
		}
	case "merge":
		db := openDB(cfg)
		defer db.Close()
		res, err := pipeline.NewProcessingService(db, cfg, log).Merge(ctx)
		must(err)
		fmt.Printf("merged files=%d rows=%d unique=%d out=%s\n", len(res.Files), res.RowsIn, res.RowsOut, cfg.MergedCSV)
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		in := fs.String("in", cfg.MergedCSV, "raw csv or xlsx")
		out := fs.String("out", cfg.CleanedCSV, "normalized csv")
		workers := fs.Int("workers", cfg.NormalizeWorkers, "normalizer goroutines")
		_ = fs.Parse(os.Args[2:])
		cfg.NormalizeWorkers = *workers
		must(cfg.Validate())

		db := openDB(cfg)
		defer db.Close()
		res, err := pipeline.NewProcessingService(db, cfg, log).Clean(ctx, *in, *out)
		must(err)
		fmt.Printf("cleaned rows=%d durations=%d votes=%d vote_failures=%d trace=%s\n",
			res.Stats.Rows, res.Stats.DurationsParsed, res.Stats.VotesParsed, res.Stats.VoteFailures, res.TraceID)
	case "load":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		in := fs.String("in", cfg.CleanedCSV, "normalized csv")
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		res, err := pipeline.NewProcessingService(db, cfg, log).Load(ctx, *in)
		must(err)
		fmt.Printf("loaded %d movies trace=%s\n", res.Rows, res.TraceID)
	case "refresh":
		db := openDB(cfg)
		defer db.Close()
		res, err := pipeline.NewProcessingService(db, cfg, log).Refresh(ctx)
		must(err)
		fmt.Printf("refresh done files=%d rows=%d trace=%s\n", len(res.Merge.Files), res.Load.Rows, res.Load.TraceID)
	case "report":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		f := filterFlags(fs)
		top := fs.Int("top", cfg.TopN, "rows in the top lists")
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		movies, err := db.ListMovies(ctx, internal.MovieFilter{})
		must(err)
		must(dashboard.Render(os.Stdout, dashboard.Build(movies, f(), *top)))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "movies.xlsx"), "output xlsx path")
		f := filterFlags(fs)
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		movies, err := db.ListMovies(ctx, f())
		must(err)
		if len(movies) == 0 {
			must(fmt.Errorf("no movies match the filter"))
		}
		must(pipeline.ExportMoviesToXLSX(movies, *out))
		fmt.Printf("exported %d movies to %s\n", len(movies), *out)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		must(serve(*addr, httpapi.NewRouter(httpapi.NewHandler(db, log, cfg.TopN)), log))
	case "listen":
		db := openDB(cfg)
		defer db.Close()
		sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
		svc := listener.NewService(pipeline.NewProcessingService(db, cfg, log), cfg, log)
		must(svc.Run(sigCtx))
	default:
		usage()
		os.Exit(1)
	}
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

// filterFlags registers the dashboard filter flags on fs and returns a
// function that reads them after parsing.
func filterFlags(fs *flag.FlagSet) func() internal.MovieFilter {
	genres := fs.String("genres", "", "comma separated genres")
	durations := fs.String("durations", "", "comma separated duration buckets")
	minRating := fs.Float64("min-rating", 0, "minimum rating")
	minVotes := fs.Int64("min-votes", 0, "minimum voting count")
	return func() internal.MovieFilter {
		return internal.MovieFilter{
			Genres:    util.SplitList(*genres),
			Durations: util.SplitList(*durations),
			MinRating: *minRating,
			MinVotes:  *minVotes,
		}
	}
}

func serve(addr string, handler http.Handler, log *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func usage() {
	fmt.Println("usage: moviedash <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape:parse [--html=page.html] [--genre=Action] [--out=...csv]")
	fmt.Println("  merge")
	fmt.Println("  clean [--in=merged_movies.csv] [--out=cleaned_movies.csv] [--workers=1]")
	fmt.Println("  load [--in=cleaned_movies.csv]")
	fmt.Println("  refresh")
	fmt.Println("  report [--genres=Action,Drama] [--durations=...] [--min-rating=7] [--min-votes=1000] [--top=10]")
	fmt.Println("  export:xlsx [--out=./out/movies.xlsx] [filters]")
	fmt.Println("  serve [--addr=:8080]")
	fmt.Println("  listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
