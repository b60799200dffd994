package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"moviedash/internal"
	"moviedash/internal/chart"
	"moviedash/internal/dashboard"
	"moviedash/internal/logger"
	"moviedash/internal/util"
)

var errBadQuery = errors.New("bad query")

type Store interface {
	ListMovies(ctx context.Context, f internal.MovieFilter) ([]internal.Movie, error)
	Genres(ctx context.Context) ([]string, error)
	DurationBuckets(ctx context.Context) ([]string, error)
	RatingBounds(ctx context.Context) (float64, float64, bool, error)
	VoteBounds(ctx context.Context) (int64, int64, bool, error)
}

type Handler struct {
	Store Store
	Log   *logger.Logger
	TopN  int
}

func NewHandler(store Store, log *logger.Logger, topN int) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{Store: store, Log: log, TopN: topN}
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLog)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.RegisterRoutes(router.Group("/api"))
	router.GET("/charts/:file", h.chart)
	return router
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movies", h.listMovies) // GET /api/movies
	rg.GET("/filters", h.filters)   // GET /api/filters
	rg.GET("/stats", h.stats)       // GET /api/stats
}

func (h *Handler) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.Log.Debug("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "ms", time.Since(start).Milliseconds())
}

func (h *Handler) listMovies(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	movies, err := h.Store.ListMovies(c.Request.Context(), f)
	if err != nil {
		h.Log.Error("list movies failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if movies == nil {
		movies = []internal.Movie{}
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(movies),
		"items": movies,
	})
}

func (h *Handler) filters(c *gin.Context) {
	ctx := c.Request.Context()
	genres, err := h.Store.Genres(ctx)
	if err != nil {
		h.fail(c, "genres", err)
		return
	}
	durations, err := h.Store.DurationBuckets(ctx)
	if err != nil {
		h.fail(c, "duration buckets", err)
		return
	}
	rLo, rHi, rOK, err := h.Store.RatingBounds(ctx)
	if err != nil {
		h.fail(c, "rating bounds", err)
		return
	}
	vLo, vHi, vOK, err := h.Store.VoteBounds(ctx)
	if err != nil {
		h.fail(c, "vote bounds", err)
		return
	}

	opts := dashboard.FilterOptions{Genres: genres, Durations: durations}
	opts.RatingMin, opts.RatingMax = dashboard.RatingSlider(rLo, rHi, rOK)
	opts.VotesMin, opts.VotesMax = dashboard.VoteSlider(vLo, vHi, vOK)
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) stats(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	report.Movies = nil
	c.JSON(http.StatusOK, report)
}

func (h *Handler) chart(c *gin.Context) {
	name, found := strings.CutSuffix(c.Param("file"), ".png")
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	report, ok := h.report(c)
	if !ok {
		return
	}

	var (
		img []byte
		err error
	)
	switch name {
	case "genres":
		labels, values := series(report.GenreCounts)
		img, err = chart.Bar("Genre Distribution", labels, values)
	case "avg-rating":
		labels, values := series(report.AverageRating)
		img, err = chart.Bar("Average Rating by Genre", labels, values)
	case "votes":
		labels, values := series(report.VotesByGenre)
		img, err = chart.Bar("Total Voting Counts by Genre", labels, values)
	case "ratings":
		edges := make([]float64, len(report.Histogram))
		counts := make([]int, len(report.Histogram))
		for i, b := range report.Histogram {
			edges[i], counts[i] = b.Lo, b.Count
		}
		img, err = chart.Histogram("Rating Distribution", edges, counts)
	case "rating-votes":
		var points []chart.Point
		for _, m := range report.Movies {
			if m.Rating != nil {
				points = append(points, chart.Point{X: *m.Rating, Y: float64(util.DerefInt64(m.Votes))})
			}
		}
		img, err = chart.Scatter("Rating vs Voting Counts", points)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
		return
	}

	if errors.Is(err, chart.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, "chart", err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// report loads every movie and builds the dashboard over the query filter.
// It writes the error response itself and reports whether to continue.
func (h *Handler) report(c *gin.Context) (dashboard.Report, bool) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return dashboard.Report{}, false
	}
	movies, err := h.Store.ListMovies(c.Request.Context(), internal.MovieFilter{})
	if err != nil {
		h.fail(c, "list movies", err)
		return dashboard.Report{}, false
	}
	return dashboard.Build(movies, f, h.TopN), true
}

func (h *Handler) fail(c *gin.Context, what string, err error) {
	h.Log.Error(what+" failed", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": what + " failed"})
}

// parseFilter reads genres and durations as comma lists or repeated params,
// plus min_rating and min_votes.
func parseFilter(c *gin.Context) (internal.MovieFilter, error) {
	f := internal.MovieFilter{
		Genres:    util.SplitList(c.QueryArray("genres")...),
		Durations: util.SplitList(c.QueryArray("durations")...),
	}
	if s := strings.TrimSpace(c.Query("min_rating")); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return f, fmt.Errorf("%w: min_rating=%q", errBadQuery, s)
		}
		f.MinRating = v
	}
	if s := strings.TrimSpace(c.Query("min_votes")); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: min_votes=%q", errBadQuery, s)
		}
		f.MinVotes = v
	}
	return f, nil
}

func series(values []dashboard.LabelValue) ([]string, []float64) {
	labels := make([]string, len(values))
	out := make([]float64, len(values))
	for i, v := range values {
		labels[i], out[i] = v.Label, v.Value
	}
	return labels, out
}
