package application

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/davarch/release-reporter/internal/domain"
	"go.uber.org/zap"
)

type Scheduler struct {
	log       *zap.Logger
	use       *WatchUseCase
	every     time.Duration
	pauseFile string

	mu   sync.RWMutex
	refs []domain.PipelineRef
}

func NewScheduler(l *zap.Logger, u *WatchUseCase, refs []domain.PipelineRef, every time.Duration, pauseFile string) *Scheduler {
	return &Scheduler{
		log: l, use: u, refs: refs, every: every, pauseFile: pauseFile,
	}
}

func (s *Scheduler) UpdateRefs(refs []domain.PipelineRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = refs
	s.log.Info("config reloaded", zap.Int("pipelines", len(refs)))
}

func (s *Scheduler) Refs() []domain.PipelineRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]domain.PipelineRef, len(s.refs))
	copy(refs, s.refs)
	return refs
}

func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.every)
	defer t.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// Tick runs one report cycle outside the ticker, e.g. after a config reload.
func (s *Scheduler) Tick(ctx context.Context) {
	s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isPaused() {
		s.log.Debug("paused: skipping report")
		return
	}

	refs := s.Refs()
	if len(refs) == 0 {
		s.log.Warn("no enabled pipelines: skipping report")
		return
	}

	if err := s.use.WatchOnce(ctx, refs); err != nil {
		s.log.Warn("report failed", zap.Int("pipelines", len(refs)), zap.Error(err))
	}
}

func (s *Scheduler) isPaused() bool {
	if s.pauseFile == "" {
		return false
	}
	_, err := os.Stat(s.pauseFile)
	return err == nil
}
