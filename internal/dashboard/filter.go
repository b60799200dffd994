// Package dashboard filters the loaded movies and computes the tables and
// series the report, the HTTP API and the charts are built from.
package dashboard

import (
	"sort"

	"moviedash/internal"
)

const (
	defaultVotesMax  = 1000
	equalBoundsBump  = 100
	defaultRatingMax = 10.0
)

// FilterOptions describes what a client can choose from.
type FilterOptions struct {
	Genres    []string `json:"genres"`
	Durations []string `json:"durations"`
	RatingMin float64  `json:"rating_min"`
	RatingMax float64  `json:"rating_max"`
	VotesMin  int64    `json:"votes_min"`
	VotesMax  int64    `json:"votes_max"`
}

// Apply keeps the movies that pass every part of f, in input order. Empty
// genre or duration sets do not restrict. A missing vote count compares as 0;
// a missing rating fails any positive minimum.
func Apply(movies []internal.Movie, f internal.MovieFilter) []internal.Movie {
	genres := toSet(f.Genres)
	durations := toSet(f.Durations)

	out := make([]internal.Movie, 0, len(movies))
	for _, m := range movies {
		if len(genres) > 0 {
			if _, ok := genres[m.Genre]; !ok {
				continue
			}
		}
		if len(durations) > 0 {
			if _, ok := durations[m.Duration]; !ok {
				continue
			}
		}
		if f.MinRating > 0 && (m.Rating == nil || *m.Rating < f.MinRating) {
			continue
		}
		if f.MinVotes > 0 && votesOf(m) < f.MinVotes {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Options derives the choice lists and slider bounds from movies.
func Options(movies []internal.Movie) FilterOptions {
	genres := map[string]struct{}{}
	durations := map[string]struct{}{}
	var (
		rLo, rHi float64
		rOK      bool
		vLo, vHi int64
		vOK      bool
	)
	for _, m := range movies {
		if m.Genre != "" {
			genres[m.Genre] = struct{}{}
		}
		if m.Duration != "" {
			durations[m.Duration] = struct{}{}
		}
		if m.Rating != nil {
			if !rOK || *m.Rating < rLo {
				rLo = *m.Rating
			}
			if !rOK || *m.Rating > rHi {
				rHi = *m.Rating
			}
			rOK = true
		}
		if m.Votes != nil {
			if !vOK || *m.Votes < vLo {
				vLo = *m.Votes
			}
			if !vOK || *m.Votes > vHi {
				vHi = *m.Votes
			}
			vOK = true
		}
	}

	opts := FilterOptions{Genres: sortedKeys(genres), Durations: sortedKeys(durations)}
	opts.RatingMin, opts.RatingMax = RatingSlider(rLo, rHi, rOK)
	opts.VotesMin, opts.VotesMax = VoteSlider(vLo, vHi, vOK)
	return opts
}

// VoteSlider turns observed vote bounds into a usable slider range: 0..1000
// with no data, and max+100 when every movie has the same count.
func VoteSlider(lo, hi int64, ok bool) (int64, int64) {
	if !ok {
		return 0, defaultVotesMax
	}
	if lo == hi {
		hi += equalBoundsBump
	}
	return lo, hi
}

// RatingSlider falls back to 0..10 when no movie is rated.
func RatingSlider(lo, hi float64, ok bool) (float64, float64) {
	if !ok {
		return 0, defaultRatingMax
	}
	return lo, hi
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func votesOf(m internal.Movie) int64 {
	if m.Votes == nil {
		return 0
	}
	return *m.Votes
}
