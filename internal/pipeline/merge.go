package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"moviedash/internal"
	"moviedash/internal/logger"
	"moviedash/internal/util"
)

var ErrNoInputFiles = errors.New("no genre files found")

const genreFilePattern = "*_movies.csv"

type MergeResult struct {
	Files   []string
	RowsIn  int
	RowsOut int
}

// GenreFiles lists the per-genre scrape outputs in dir, sorted, leaving out
// any path in exclude.
func GenreFiles(dir string, exclude ...string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, genreFilePattern))
	if err != nil {
		return nil, err
	}
	skip := map[string]struct{}{}
	for _, e := range exclude {
		if abs, err := filepath.Abs(e); err == nil {
			skip[abs] = struct{}{}
		}
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, err
		}
		if _, ok := skip[abs]; ok {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// MergeGenreFiles concatenates every genre file in dir and drops repeated
// movie names, keeping the first occurrence. The result is written to out.
func MergeGenreFiles(dir, out, durationField string, log *logger.Logger, exclude ...string) (MergeResult, error) {
	log = orDiscard(log)
	files, err := GenreFiles(dir, append(exclude, out)...)
	if err != nil {
		return MergeResult{}, err
	}
	if len(files) == 0 {
		return MergeResult{}, fmt.Errorf("%w in %s", ErrNoInputFiles, dir)
	}

	var all []internal.RawMovie
	for _, file := range files {
		log.Info("reading genre file", "path", file)
		records, err := ReadRawCSV(file, durationField)
		if err != nil {
			return MergeResult{}, err
		}
		all = append(all, records...)
	}

	merged := DedupeByName(all)
	if err := WriteRawCSV(out, merged, durationField); err != nil {
		return MergeResult{}, err
	}

	log.Info("merged genre files", "files", len(files), "rows_before", len(all), "rows_after", len(merged), "out", out)
	return MergeResult{Files: files, RowsIn: len(all), RowsOut: len(merged)}, nil
}

// DedupeByName keeps the first record for every movie name. Records without
// a name share one key.
func DedupeByName(records []internal.RawMovie) []internal.RawMovie {
	seen := map[string]struct{}{}
	out := make([]internal.RawMovie, 0, len(records))
	for _, r := range records {
		key := util.NameKey(util.DerefString(r.Name))
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
