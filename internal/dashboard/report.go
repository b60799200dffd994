package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"moviedash/internal"
	"moviedash/internal/util"
)

const histogramBins = 20

var tableColumns = []string{"Movie_Name", "Genre", "Rating", "Voting_Counts", "Duration"}

// Report bundles every table the dashboard shows for one filtered set.
type Report struct {
	Filter        internal.MovieFilter `json:"filter"`
	Summary       Summary              `json:"summary"`
	Movies        []internal.Movie     `json:"movies"`
	TopByRating   []internal.Movie     `json:"top_by_rating"`
	TopByVotes    []internal.Movie     `json:"top_by_votes"`
	TopPerGenre   []internal.Movie     `json:"top_per_genre"`
	Highest       *internal.Movie      `json:"highest"`
	Lowest        *internal.Movie      `json:"lowest"`
	Pivot         Pivot                `json:"rating_pivot"`
	GenreCounts   []LabelValue         `json:"genre_counts"`
	AverageRating []LabelValue         `json:"average_rating_by_genre"`
	VotesByGenre  []LabelValue         `json:"votes_by_genre"`
	Histogram     []Bin                `json:"rating_histogram"`
}

// Build filters movies and computes every aggregate over the result.
func Build(movies []internal.Movie, f internal.MovieFilter, topN int) Report {
	filtered := Apply(movies, f)
	return Report{
		Filter:        f,
		Summary:       Summarize(filtered),
		Movies:        filtered,
		TopByRating:   TopByRating(filtered, topN),
		TopByVotes:    TopByVotes(filtered, topN),
		TopPerGenre:   TopPerGenre(filtered),
		Highest:       Highest(filtered),
		Lowest:        Lowest(filtered),
		Pivot:         RatingPivot(filtered),
		GenreCounts:   GenreCounts(filtered),
		AverageRating: AverageRatingByGenre(filtered),
		VotesByGenre:  VotesByGenre(filtered),
		Histogram:     RatingHistogram(filtered, histogramBins),
	}
}

// Render writes the report as plain text tables.
func Render(w io.Writer, r Report) error {
	var sb strings.Builder

	mean := "-"
	if r.Summary.MeanRating != nil {
		mean = strconv.FormatFloat(*r.Summary.MeanRating, 'f', 2, 64)
	}
	fmt.Fprintf(&sb, "Movies: %d  Rated: %d  Mean rating: %s  Total votes: %s\n",
		r.Summary.Count, r.Summary.Rated, mean, util.FormatThousands(r.Summary.TotalVotes))

	section(&sb, "Filtered Movies", movieTable(r.Movies))
	section(&sb, fmt.Sprintf("Top %d Movies by Rating", len(r.TopByRating)), movieTable(r.TopByRating))
	section(&sb, fmt.Sprintf("Top %d Movies by Voting Counts", len(r.TopByVotes)), movieTable(r.TopByVotes))
	section(&sb, "Top Rated Movie per Genre", movieTable(r.TopPerGenre))
	section(&sb, "Highest Rated Movie", movieTable(single(r.Highest)))
	section(&sb, "Lowest Rated Movie", movieTable(single(r.Lowest)))
	section(&sb, "Ratings by Genre and Duration", pivotTable(r.Pivot))
	section(&sb, "Genre Distribution", seriesTable("Genre", "Count", r.GenreCounts, 0))
	section(&sb, "Average Rating by Genre", seriesTable("Genre", "Average Rating", r.AverageRating, 2))
	section(&sb, "Total Voting Counts by Genre", votesTable(r.VotesByGenre))

	_, err := io.WriteString(w, sb.String())
	return err
}

func section(sb *strings.Builder, title string, table [][]string) {
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	if len(table) <= 1 {
		sb.WriteString("No data to show.\n")
		return
	}
	for _, line := range alignTable(table) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

func movieTable(movies []internal.Movie) [][]string {
	table := [][]string{tableColumns}
	for _, m := range movies {
		table = append(table, []string{m.Name, m.Genre, FormatRating(m.Rating), FormatVotes(m.Votes), m.Duration})
	}
	return table
}

func pivotTable(p Pivot) [][]string {
	header := append([]string{"Genre"}, p.Durations...)
	table := [][]string{header}
	for i, g := range p.Genres {
		row := []string{g}
		for _, v := range p.Values[i] {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(*v, 'f', -1, 64))
		}
		table = append(table, row)
	}
	return table
}

func seriesTable(label, value string, series []LabelValue, prec int) [][]string {
	table := [][]string{{label, value}}
	for _, s := range series {
		table = append(table, []string{s.Label, strconv.FormatFloat(s.Value, 'f', prec, 64)})
	}
	return table
}

func votesTable(series []LabelValue) [][]string {
	table := [][]string{{"Genre", "Total Votes"}}
	for _, s := range series {
		table = append(table, []string{s.Label, util.FormatThousands(int64(s.Value))})
	}
	return table
}

func single(m *internal.Movie) []internal.Movie {
	if m == nil {
		return nil
	}
	return []internal.Movie{*m}
}

// FormatRating prints one decimal, or nothing for an unrated movie.
func FormatRating(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

// FormatVotes prints the count with thousands separators.
func FormatVotes(v *int64) string {
	if v == nil {
		return "0"
	}
	return util.FormatThousands(*v)
}

// alignTable pads cells to the widest display width per column and puts a
// dashed rule under the header.
func alignTable(table [][]string) []string {
	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	widths := make([]int, colCount)
	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(table)+1)
	for rIdx, row := range table {
		var sb strings.Builder
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))

		if rIdx == 0 {
			rule := make([]string, colCount)
			for i, w := range widths {
				rule[i] = strings.Repeat("-", w)
			}
			lines = append(lines, strings.Join(rule, "  "))
		}
	}
	return lines
}
