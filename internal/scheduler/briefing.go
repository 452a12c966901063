package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bearing-weather/internal/modules/weather/service"
)

const runTimeout = 60 * time.Second

// Searcher is satisfied by *service.Service.
type Searcher interface {
	Search(ctx context.Context, location string) (*service.Report, error)
}

// Briefing periodically searches a fixed set of locations so that their
// insights are published without a user request.
type Briefing struct {
	cron      *cron.Cron
	searcher  Searcher
	locations []string
	logger    *slog.Logger

	// ctxMu guards the run context, which Start renews after a Stop.
	ctxMu  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
}

// NewBriefing parses schedule (standard five-field cron or a descriptor such
// as "@every 30m") and registers the briefing job.
func NewBriefing(schedule string, locations []string, searcher Searcher, logger *slog.Logger) (*Briefing, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := slogCronLogger{logger: logger.With("component", "briefing")}

	b := &Briefing{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		searcher:  searcher,
		locations: locations,
		logger:    logger,
	}

	if _, err := b.cron.AddFunc(schedule, func() { b.RunOnce(b.runContext()) }); err != nil {
		return nil, fmt.Errorf("briefing schedule %q: %w", schedule, err)
	}
	return b, nil
}

func (b *Briefing) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true

	b.ctxMu.Lock()
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.ctxMu.Unlock()

	b.cron.Start()
	b.logger.Info("briefing scheduler started", "locations", b.locations)
}

// Stop cancels an in-flight run and waits for it to return. Safe to call
// more than once; a later Start resumes the schedule.
func (b *Briefing) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ctxMu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.ctxMu.Unlock()

	if !b.running {
		return
	}
	b.running = false
	<-b.cron.Stop().Done()
	b.logger.Info("briefing scheduler stopped")
}

func (b *Briefing) runContext() context.Context {
	b.ctxMu.Lock()
	defer b.ctxMu.Unlock()
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

// RunOnce searches every configured location. Failures are logged per
// location and do not stop the run.
func (b *Briefing) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	start := time.Now()
	failed := 0
	for _, loc := range b.locations {
		if ctx.Err() != nil {
			b.logger.Warn("briefing run interrupted", "error", ctx.Err())
			return
		}
		if _, err := b.searcher.Search(ctx, loc); err != nil {
			failed++
			b.logger.Error("briefing search failed", "location", loc, "error", err)
		}
	}
	b.logger.Info("briefing run completed",
		"locations", len(b.locations),
		"failed", failed,
		"duration", time.Since(start),
	)
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
