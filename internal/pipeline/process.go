package pipeline

import (
	"context"
	"time"

	"moviedash/internal"
	"moviedash/internal/config"
	"moviedash/internal/logger"
	"moviedash/internal/storage"
)

const metaLastLoad = "movies.last_load"

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
	log *logger.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, log *logger.Logger) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, log: orDiscard(log)}
}

type CleanResult struct {
	TraceID string
	Stats   internal.NormalizeStats
}

type LoadResult struct {
	TraceID string
	Rows    int
}

type RefreshResult struct {
	Merge MergeResult
	Clean CleanResult
	Load  LoadResult
}

// Merge combines the genre files in CSVDir into MergedCSV. The cleaned file
// matches the genre pattern as well and is never read back.
func (s *ProcessingService) Merge(ctx context.Context) (MergeResult, error) {
	start := time.Now()
	res, err := MergeGenreFiles(s.cfg.CSVDir, s.cfg.MergedCSV, s.cfg.DurationField, s.log, s.cfg.CleanedCSV)
	if err != nil {
		return MergeResult{}, err
	}
	_, err = s.db.InsertRun(ctx, "merge",
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"files": len(res.Files), "rowsIn": res.RowsIn, "rowsOut": res.RowsOut})
	return res, err
}

// Clean reads in, normalizes every record and writes the result to out.
func (s *ProcessingService) Clean(ctx context.Context, in, out string) (CleanResult, error) {
	start := time.Now()
	records, err := ReadRawFile(in, s.cfg.DurationField, GenreFromFilename(in))
	if err != nil {
		return CleanResult{}, err
	}
	readMs := float64(time.Since(start).Milliseconds())

	normStart := time.Now()
	movies, stats := NormalizeMovies(records, s.cfg.NormalizeWorkers, s.log)
	normMs := float64(time.Since(normStart).Milliseconds())

	if err := ctx.Err(); err != nil {
		return CleanResult{}, err
	}
	if err := WriteMoviesCSV(out, movies); err != nil {
		return CleanResult{}, err
	}

	counts := map[string]int{
		"rows":            stats.Rows,
		"durationsParsed": stats.DurationsParsed,
		"votesParsed":     stats.VotesParsed,
		"voteFailures":    stats.VoteFailures,
		"ratingFailures":  stats.RatingFailures,
	}
	traceID, err := s.db.InsertRun(ctx, "clean", map[string]float64{
		"readMs":      readMs,
		"normalizeMs": normMs,
		"totalMs":     float64(time.Since(start).Milliseconds()),
	}, counts)
	if err != nil {
		return CleanResult{}, err
	}

	s.log.Info("cleaned movies", "trace_id", traceID, "in", in, "out", out, "rows", stats.Rows, "vote_failures", stats.VoteFailures)
	return CleanResult{TraceID: traceID, Stats: stats}, nil
}

// Load replaces the movies table with the contents of a normalized file.
func (s *ProcessingService) Load(ctx context.Context, path string) (LoadResult, error) {
	start := time.Now()
	movies, err := ReadMoviesCSV(path)
	if err != nil {
		return LoadResult{}, err
	}
	n, err := s.db.ReplaceMovies(ctx, movies)
	if err != nil {
		return LoadResult{}, err
	}

	traceID, err := s.db.InsertRun(ctx, "load",
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"rows": n})
	if err != nil {
		return LoadResult{}, err
	}
	if err := s.db.SetMetadata(metaLastLoad, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return LoadResult{}, err
	}

	s.log.Info("loaded movies", "trace_id", traceID, "path", path, "rows", n)
	return LoadResult{TraceID: traceID, Rows: n}, nil
}

// Refresh is Merge followed by Clean and Load over the configured paths.
func (s *ProcessingService) Refresh(ctx context.Context) (RefreshResult, error) {
	var res RefreshResult
	var err error

	if res.Merge, err = s.Merge(ctx); err != nil {
		return res, err
	}
	if res.Clean, err = s.Clean(ctx, s.cfg.MergedCSV, s.cfg.CleanedCSV); err != nil {
		return res, err
	}
	if res.Load, err = s.Load(ctx, s.cfg.CleanedCSV); err != nil {
		return res, err
	}
	return res, nil
}
