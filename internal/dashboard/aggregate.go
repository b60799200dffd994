package dashboard

import (
	"math"
	"sort"

	"moviedash/internal"
)

type LabelValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Pivot holds mean ratings per genre (rows) and duration bucket (columns).
// A nil cell has no rated movie.
type Pivot struct {
	Genres    []string     `json:"genres"`
	Durations []string     `json:"durations"`
	Values    [][]*float64 `json:"values"`
}

type Summary struct {
	Count      int      `json:"count"`
	Rated      int      `json:"rated"`
	MeanRating *float64 `json:"mean_rating"`
	TotalVotes int64    `json:"total_votes"`
}

// TopByRating sorts by rating, highest first, unrated movies last, and keeps n.
// Ties keep input order.
func TopByRating(movies []internal.Movie, n int) []internal.Movie {
	out := append([]internal.Movie(nil), movies...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rating, out[j].Rating
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	return head(out, n)
}

// TopByVotes sorts by vote count, highest first, and keeps n.
func TopByVotes(movies []internal.Movie, n int) []internal.Movie {
	out := append([]internal.Movie(nil), movies...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Votes, out[j].Votes
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	return head(out, n)
}

// TopPerGenre returns the best rated movie of every genre, ordered by genre.
// The first movie wins a tie. Genres without a rated movie are left out.
func TopPerGenre(movies []internal.Movie) []internal.Movie {
	best := map[string]int{}
	for i, m := range movies {
		if m.Rating == nil {
			continue
		}
		j, ok := best[m.Genre]
		if !ok || *m.Rating > *movies[j].Rating {
			best[m.Genre] = i
		}
	}

	genres := make([]string, 0, len(best))
	for g := range best {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	out := make([]internal.Movie, 0, len(genres))
	for _, g := range genres {
		out = append(out, movies[best[g]])
	}
	return out
}

// Highest returns the first movie with the top rating, or nil.
func Highest(movies []internal.Movie) *internal.Movie {
	return pick(movies, func(a, b float64) bool { return a > b })
}

// Lowest returns the first movie with the bottom rating, or nil.
func Lowest(movies []internal.Movie) *internal.Movie {
	return pick(movies, func(a, b float64) bool { return a < b })
}

func pick(movies []internal.Movie, better func(a, b float64) bool) *internal.Movie {
	idx := -1
	for i, m := range movies {
		if m.Rating == nil {
			continue
		}
		if idx < 0 || better(*m.Rating, *movies[idx].Rating) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	m := movies[idx]
	return &m
}

// GenreCounts counts movies per genre, most common first.
func GenreCounts(movies []internal.Movie) []LabelValue {
	counts := map[string]int{}
	for _, m := range movies {
		counts[m.Genre]++
	}
	out := make([]LabelValue, 0, len(counts))
	for g, c := range counts {
		out = append(out, LabelValue{Label: g, Value: float64(c)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// AverageRatingByGenre is the mean rating per genre, lowest first. Unrated
// movies do not count.
func AverageRatingByGenre(movies []internal.Movie) []LabelValue {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, m := range movies {
		if m.Rating == nil {
			continue
		}
		sums[m.Genre] += *m.Rating
		counts[m.Genre]++
	}
	out := make([]LabelValue, 0, len(sums))
	for g, s := range sums {
		out = append(out, LabelValue{Label: g, Value: s / float64(counts[g])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// VotesByGenre sums vote counts per genre, ordered by genre.
func VotesByGenre(movies []internal.Movie) []LabelValue {
	sums := map[string]int64{}
	for _, m := range movies {
		sums[m.Genre] += votesOf(m)
	}
	out := make([]LabelValue, 0, len(sums))
	for g, s := range sums {
		out = append(out, LabelValue{Label: g, Value: float64(s)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// RatingPivot averages ratings per genre and duration bucket, rounded to two
// places.
func RatingPivot(movies []internal.Movie) Pivot {
	type cell struct {
		sum float64
		n   int
	}
	cells := map[[2]string]*cell{}
	genres := map[string]struct{}{}
	durations := map[string]struct{}{}
	for _, m := range movies {
		if m.Rating == nil {
			continue
		}
		genres[m.Genre] = struct{}{}
		durations[m.Duration] = struct{}{}
		key := [2]string{m.Genre, m.Duration}
		c, ok := cells[key]
		if !ok {
			c = &cell{}
			cells[key] = c
		}
		c.sum += *m.Rating
		c.n++
	}

	p := Pivot{Genres: sortedKeys(genres), Durations: sortedKeys(durations)}
	p.Values = make([][]*float64, len(p.Genres))
	for i, g := range p.Genres {
		p.Values[i] = make([]*float64, len(p.Durations))
		for j, d := range p.Durations {
			if c, ok := cells[[2]string{g, d}]; ok {
				v := round2(c.sum / float64(c.n))
				p.Values[i][j] = &v
			}
		}
	}
	return p
}

// RatingHistogram splits the rating range into bins of equal width. The last
// bin is closed on both ends. A single distinct rating gets a range of one
// point around it.
func RatingHistogram(movies []internal.Movie, bins int) []Bin {
	if bins < 1 {
		bins = 1
	}
	var ratings []float64
	for _, m := range movies {
		if m.Rating != nil {
			ratings = append(ratings, *m.Rating)
		}
	}
	if len(ratings) == 0 {
		return nil
	}

	lo, hi := ratings[0], ratings[0]
	for _, r := range ratings[1:] {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	out[bins-1].Hi = hi
	for _, r := range ratings {
		idx := int((r - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func Summarize(movies []internal.Movie) Summary {
	s := Summary{Count: len(movies)}
	var sum float64
	for _, m := range movies {
		s.TotalVotes += votesOf(m)
		if m.Rating != nil {
			sum += *m.Rating
			s.Rated++
		}
	}
	if s.Rated > 0 {
		mean := round2(sum / float64(s.Rated))
		s.MeanRating = &mean
	}
	return s
}

func head(movies []internal.Movie, n int) []internal.Movie {
	if n >= 0 && len(movies) > n {
		return movies[:n]
	}
	return movies
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
