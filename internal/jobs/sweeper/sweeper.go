package sweeper

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

const runTimeout = 30 * time.Second

// StaleRejecter es la parte del motor de swaps que usa el job.
type StaleRejecter interface {
	RejectStale(ctx context.Context, now time.Time) ([]swaps.SwapRequest, error)
}

// Sweeper rechaza periódicamente las solicitudes PENDING cuyo slot ya empezó.
type Sweeper struct {
	svc StaleRejecter
	log logger.Logger
	now func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func New(svc StaleRejecter, log logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{
		svc: svc,
		log: log.With(logger.Fields{"component": "sweeper"}),
		now: time.Now,
	}
}

// Start agenda RunOnce con schedule (cron de 5 campos o "@every 1m").
func (s *Sweeper) Start(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return errors.New("sweeper: empty schedule")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("sweeper: already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, s.tick); err != nil {
		return err
	}
	c.Start()
	s.cron = c

	s.log.Info("sweeper started", logger.Fields{"schedule": schedule})
	return nil
}

// Stop espera a que termine una corrida en curso.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("sweeper stopped", nil)
}

// RunOnce ejecuta un barrido y devuelve cuántas solicitudes rechazó.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	rejected, err := s.svc.RejectStale(ctx, s.now())
	for _, r := range rejected {
		s.log.Info("stale swap request rejected", logger.Fields{
			"request_id":   r.ID,
			"requester_id": r.RequesterID,
		})
	}
	return len(rejected), err
}

func (s *Sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	n, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("sweep failed", logger.Fields{"error": err, "rejected": n})
		return
	}
	s.log.Debug("sweep done", logger.Fields{"rejected": n})
}
