package listener

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"moviedash/internal/config"
	"moviedash/internal/logger"
	"moviedash/internal/pipeline"
)

const defaultDebounce = 2 * time.Second

type Refresher interface {
	Refresh(ctx context.Context) (pipeline.RefreshResult, error)
}

type Service struct {
	refresher Refresher
	cfg       config.Config
	log       *logger.Logger

	// Debounce collapses a burst of file events into one refresh.
	Debounce time.Duration

	mu sync.Mutex
}

func NewService(refresher Refresher, cfg config.Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{refresher: refresher, cfg: cfg, log: log, Debounce: defaultDebounce}
}

// Run refreshes on the configured schedule and, when watching is enabled,
// after genre files appear in CSVDir. It returns when ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.cfg.RefreshSchedule, func() { s.runCycle(ctx, "schedule") }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
	}

	if s.cfg.WatchEnabled {
		watcher, err := s.startWatcher(ctx)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	s.log.Info("listener started", "schedule", s.cfg.RefreshSchedule, "watch", s.cfg.WatchEnabled, "dir", s.cfg.CSVDir)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("listener stopped")
	return nil
}

// runCycle refreshes once. A cycle already in progress wins; the trigger is
// dropped.
func (s *Service) runCycle(ctx context.Context, trigger string) {
	if !s.mu.TryLock() {
		s.log.Debug("refresh already running", "trigger", trigger)
		return
	}
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	res, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.log.Error("listener cycle error", "trigger", trigger, "err", err)
		return
	}
	s.log.Info("listener cycle done",
		"trigger", trigger,
		"files", len(res.Merge.Files),
		"rows", res.Load.Rows,
		"trace_id", res.Load.TraceID,
		"ms", time.Since(start).Milliseconds())
}

func (s *Service) startWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	if err := os.MkdirAll(s.cfg.CSVDir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.cfg.CSVDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Rename) == 0 || !s.isGenreFile(evt.Name) {
					continue
				}
				s.log.Debug("genre file changed", "path", evt.Name)
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(s.Debounce, func() { s.runCycle(ctx, "watch") })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("watcher error", "err", err)
			}
		}
	}()
	return watcher, nil
}

// isGenreFile matches *_movies.csv, except the merged and cleaned outputs a
// refresh writes into the same directory.
func (s *Service) isGenreFile(path string) bool {
	base := filepath.Base(path)
	if ok, _ := filepath.Match("*_movies.csv", base); !ok {
		return false
	}
	return base != filepath.Base(s.cfg.MergedCSV) && base != filepath.Base(s.cfg.CleanedCSV)
}
