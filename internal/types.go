package internal

const (
	ColMovieName        = "Movie_Name"
	ColRating           = "Rating"
	ColVotingCounts     = "Voting_Counts"
	ColGenre            = "Genre"
	ColDurationMinutes  = "Duration_Minutes"
	ColDurationCategory = "Duration_Category"
	ColDuration         = "Duration"
)

// Display categories.
const (
	CategoryShort    = "Short"
	CategoryStandard = "Standard"
	CategoryLong     = "120-150 min"
	CategoryEpic     = "150+ min"
)

// Filter buckets. The dash is an en dash, matching the stored values.
const (
	BucketUnderTwo  = "< 2 hrs"
	BucketTwoThree  = "2–3 hrs"
	BucketThreeFour = "3–4 hrs"
	BucketUnknown   = "Unknown"
)

// RawColumns are the columns a scraped or merged file carries. The duration
// column name is configurable and is appended by the reader.
var RawColumns = []string{ColMovieName, ColRating, ColVotingCounts, ColGenre}

// MovieColumns is the stable output schema of the normalizer.
var MovieColumns = []string{
	ColMovieName, ColRating, ColVotingCounts, ColGenre,
	ColDurationMinutes, ColDurationCategory, ColDuration,
}

// LoadColumns are required by the table loader.
var LoadColumns = []string{ColMovieName, ColRating, ColVotingCounts, ColGenre, ColDuration}

// RawMovie is one scraped movie card. Nil means the field was missing.
type RawMovie struct {
	Name     *string
	Rating   *string
	Votes    *string
	Genre    *string
	Duration *string

	// Set when the source was already normalized; lets the normalizer
	// re-derive buckets from the typed values.
	Minutes  *int
	Category *string
}

type Movie struct {
	Name             string   `json:"movieName"`
	Rating           *float64 `json:"rating"`
	Votes            *int64   `json:"votingCounts"`
	Genre            string   `json:"genre"`
	DurationMinutes  *int     `json:"durationMinutes"`
	DurationCategory *string  `json:"durationCategory"`
	Duration         string   `json:"duration"`
}

type MovieFilter struct {
	Genres    []string
	Durations []string
	MinRating float64
	MinVotes  int64
}

type NormalizeStats struct {
	Rows            int
	DurationsParsed int
	VotesParsed     int
	VoteFailures    int
	RatingFailures  int
}

type RunRow struct {
	ID        int
	TraceID   string
	Stage     string
	Timings   map[string]float64
	Counts    map[string]int
	CreatedAt string
}
