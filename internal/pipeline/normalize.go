package pipeline

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"moviedash/internal"
	"moviedash/internal/logger"
	"moviedash/internal/util"
)

type recordReport struct {
	voteFailed   bool
	ratingFailed bool
}

// NormalizeMovie converts one raw record. Fields that cannot be parsed come
// back nil and are logged at warn level; the call itself never fails.
func NormalizeMovie(raw internal.RawMovie, log *logger.Logger) internal.Movie {
	m, _ := normalizeOne(raw, orDiscard(log))
	return m
}

// NormalizeMovies maps every record independently and keeps input order.
// It performs no deduplication. With workers > 1 the records are spread
// over that many goroutines.
func NormalizeMovies(records []internal.RawMovie, workers int, log *logger.Logger) ([]internal.Movie, internal.NormalizeStats) {
	log = orDiscard(log)
	out := make([]internal.Movie, len(records))
	reports := make([]recordReport, len(records))

	if workers <= 1 {
		for i, raw := range records {
			out[i], reports[i] = normalizeOne(raw, log)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range records {
			i := i
			g.Go(func() error {
				out[i], reports[i] = normalizeOne(records[i], log)
				return nil
			})
		}
		_ = g.Wait()
	}

	stats := internal.NormalizeStats{Rows: len(out)}
	for i, m := range out {
		if m.DurationMinutes != nil {
			stats.DurationsParsed++
		}
		if m.Votes != nil {
			stats.VotesParsed++
		}
		if reports[i].voteFailed {
			stats.VoteFailures++
		}
		if reports[i].ratingFailed {
			stats.RatingFailures++
		}
	}
	return out, stats
}

// RawFromMovie turns a normalized record back into pipeline input so it can
// be run through NormalizeMovie again.
func RawFromMovie(m internal.Movie) internal.RawMovie {
	raw := internal.RawMovie{
		Name:     util.StringPtr(m.Name),
		Genre:    util.StringPtr(m.Genre),
		Minutes:  m.DurationMinutes,
		Category: m.DurationCategory,
	}
	if m.Rating != nil {
		raw.Rating = util.StringPtr(formatFloat(*m.Rating))
	}
	if m.Votes != nil {
		raw.Votes = util.StringPtr(formatInt(*m.Votes))
	}
	if m.DurationMinutes != nil {
		raw.Duration = util.StringPtr(util.FormatDuration(*m.DurationMinutes))
	}
	return raw
}

func normalizeOne(raw internal.RawMovie, log *logger.Logger) (internal.Movie, recordReport) {
	var report recordReport
	name := strings.TrimSpace(util.DerefString(raw.Name))

	rating, err := util.ParseRating(raw.Rating)
	if err != nil {
		report.ratingFailed = true
		log.Warn("could not parse rating", "movie", name, "err", err)
	}

	votes, err := util.ParseVoteCount(raw.Votes)
	if err != nil {
		report.voteFailed = true
		log.Warn("could not parse voting count", "movie", name, "err", err)
	}

	minutes := raw.Minutes
	if minutes == nil {
		minutes = util.ParseDuration(raw.Duration)
	}
	category := DurationCategory(minutes)

	// A pre-classified source may carry a category without minutes; only the
	// bucket fallback looks at it.
	bucketCategory := category
	if minutes == nil {
		bucketCategory = raw.Category
	}

	return internal.Movie{
		Name:             name,
		Rating:           rating,
		Votes:            votes,
		Genre:            strings.TrimSpace(util.DerefString(raw.Genre)),
		DurationMinutes:  minutes,
		DurationCategory: category,
		Duration:         DurationBucket(minutes, bucketCategory),
	}, report
}

func orDiscard(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Discard()
	}
	return log
}

// RenormalizeMovie runs an already normalized record through the pipeline
// again. The result equals m for any record NormalizeMovie produced from
// duration text.
func RenormalizeMovie(m internal.Movie, log *logger.Logger) internal.Movie {
	return NormalizeMovie(RawFromMovie(m), log)
}
