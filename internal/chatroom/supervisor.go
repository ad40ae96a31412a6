package chatroom

import (
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/metrics"
	"batepapo/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Eviction stages reported in EvictionFailure.
const (
	StageLookup   = "lookup"
	StageDelete   = "delete"
	StageAnnounce = "announce"
)

// SweepLocker elects a single sweeping replica per interval.
type SweepLocker interface {
	AcquireSweepLock(ctx context.Context, owner string, ttl time.Duration) (bool, error)
}

// EvictionFailure is one participant that could not be fully evicted.
// A StageAnnounce failure means the participant is gone but its leave
// message was never stored.
type EvictionFailure struct {
	Name  string
	Stage string
	Err   error
}

// SweepReport is the outcome of one pass of the presence supervisor.
type SweepReport struct {
	StartedAt time.Time
	Scanned   int
	Evicted   []string
	// Skipped holds stale candidates that were refreshed or removed
	// elsewhere before they could be deleted.
	Skipped  []string
	Failures []EvictionFailure
}

// OK reports whether every stale participant was handled without error.
func (r SweepReport) OK() bool {
	return len(r.Failures) == 0
}

// Supervisor periodically evicts participants whose last heartbeat is older
// than Timeout and announces their departure to the room.
type Supervisor struct {
	Timeout  time.Duration
	Interval time.Duration

	svc    *Service
	locker SweepLocker
	owner  string
	log    zerolog.Logger
}

// NewSupervisor builds a supervisor over svc. locker may be nil.
func NewSupervisor(svc *Service, timeout, interval time.Duration, locker SweepLocker) *Supervisor {
	return &Supervisor{
		Timeout:  timeout,
		Interval: interval,
		svc:      svc,
		locker:   locker,
		owner:    uuid.NewString(),
		log:      svc.log.With().Str("component", "supervisor").Logger(),
	}
}

// Run sweeps every Interval until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	s.log.Info().
		Dur("interval", s.Interval).
		Dur("timeout", s.Timeout).
		Msg("presence supervisor started")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("presence supervisor stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	if s.locker != nil {
		acquired, err := s.locker.AcquireSweepLock(ctx, s.owner, s.Interval*9/10)
		if err != nil {
			s.log.Warn().Err(err).Msg("sweep lock unavailable, skipping sweep")
			return
		}
		if !acquired {
			s.log.Debug().Msg("another replica holds the sweep lock")
			return
		}
	}

	report, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		return
	}
	s.logReport(report)
}

// Sweep runs a single eviction pass. It only fails when the participant
// list cannot be read; per-participant problems land in the report.
func (s *Supervisor) Sweep(ctx context.Context) (SweepReport, error) {
	start := s.svc.now()
	report := SweepReport{StartedAt: start}
	defer func() {
		metrics.SweepDuration.Observe(s.svc.now().Sub(start).Seconds())
	}()

	participants, err := s.svc.Storage.ListParticipants(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep: %w", err)
	}
	report.Scanned = len(participants)

	stale := lo.Filter(participants, func(p models.Participant, _ int) bool {
		return s.isStale(p, start)
	})
	for _, p := range stale {
		s.evict(ctx, p, &report)
	}
	return report, nil
}

func (s *Supervisor) isStale(p models.Participant, now time.Time) bool {
	return p.IdleMillis(now.UnixMilli()) >= s.Timeout.Milliseconds()
}

func (s *Supervisor) evict(ctx context.Context, p models.Participant, report *SweepReport) {
	fail := func(stage string, err error) {
		report.Failures = append(report.Failures, EvictionFailure{Name: p.Name, Stage: stage, Err: err})
		metrics.EvictionFailures.WithLabelValues(stage).Inc()
	}

	// Re-read right before deleting so a heartbeat that landed after the
	// scan keeps the participant. The window is narrowed, not closed.
	current, err := s.svc.Storage.FindParticipantByName(ctx, p.Name)
	if err != nil {
		fail(StageLookup, err)
		return
	}
	if current == nil || current.ID != p.ID || !s.isStale(*current, s.svc.now()) {
		report.Skipped = append(report.Skipped, p.Name)
		return
	}

	if err := s.svc.Storage.DeleteParticipantByID(ctx, p.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			report.Skipped = append(report.Skipped, p.Name)
			return
		}
		fail(StageDelete, err)
		return
	}
	report.Evicted = append(report.Evicted, p.Name)
	metrics.ParticipantsEvicted.Inc()

	if _, err := s.svc.appendMessage(ctx, s.svc.now(), p.Name, config.BroadcastTarget, s.svc.texts.Left, models.TypeStatus); err != nil {
		fail(StageAnnounce, err)
	}
}

func (s *Supervisor) logReport(report SweepReport) {
	for _, f := range report.Failures {
		s.log.Error().
			Err(f.Err).
			Str("participant", f.Name).
			Str("stage", f.Stage).
			Msg("eviction failed")
	}

	event := s.log.Debug()
	if len(report.Evicted) > 0 || !report.OK() {
		event = s.log.Info()
	}
	event.
		Int("scanned", report.Scanned).
		Strs("evicted", report.Evicted).
		Strs("skipped", report.Skipped).
		Int("failures", len(report.Failures)).
		Msg("sweep completed")
}
