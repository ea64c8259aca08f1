package services

import (
	"context"
	"sync"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultSweepInterval = 60 * time.Second
	defaultBroadcastPace = 2 * time.Second
	scheduledSweepBatch  = 100
	broadcastSweepBatch  = 10
	scheduledRetention   = 30 * 24 * time.Hour
	prunePeriod          = time.Hour
)

// scheduledStore provides due scheduled messages and their state moves
type scheduledStore interface {
	FindDue(now time.Time, limit int) ([]models.ScheduledMessage, error)
	MarkSent(id uuid.UUID, messageID string) error
	MarkFailed(id uuid.UUID, errMsg string) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// broadcastStore provides due broadcasts and their state moves
type broadcastStore interface {
	FindDue(now time.Time, limit int) ([]models.Broadcast, error)
	Claim(id uuid.UUID) (bool, error)
	SetTotalRecipients(id uuid.UUID, total int) error
	IncrementSent(id uuid.UUID) error
	IncrementFailed(id uuid.UUID) error
	MarkCompleted(id uuid.UUID) error
	MarkFailed(id uuid.UUID) error
}

// broadcastAudience resolves the all-contacts recipient list
type broadcastAudience interface {
	ListPhonesForBroadcast(workspaceID uuid.UUID) ([]string, error)
}

// sweepSender dispatches one outbound message for the sweep
type sweepSender interface {
	SendForAccount(ctx context.Context, workspaceID, accountID uuid.UUID, to, text, mediaURL, mediaType string) (string, error)
}

// sweepNotifier delivers completion webhooks
type sweepNotifier interface {
	Dispatch(ctx context.Context, workspaceID uuid.UUID, event string, data map[string]interface{})
}

// windowPruner clears expired rate limit windows
type windowPruner interface {
	PruneExpired()
}

// SchedulerService runs the periodic delivery sweep: due scheduled
// messages, due broadcasts with paced fan-out, and retention pruning.
type SchedulerService struct {
	scheduledRepo scheduledStore
	broadcastRepo broadcastStore
	contacts      broadcastAudience
	sender        sweepSender
	webhooks      sweepNotifier
	limiter       windowPruner

	sweepInterval time.Duration
	pace          time.Duration
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error

	mutex     sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	lastPrune time.Time
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(scheduledRepo scheduledStore, broadcastRepo broadcastStore, contacts broadcastAudience, sender sweepSender, webhooks sweepNotifier, limiter windowPruner) *SchedulerService {
	return &SchedulerService{
		scheduledRepo: scheduledRepo,
		broadcastRepo: broadcastRepo,
		contacts:      contacts,
		sender:        sender,
		webhooks:      webhooks,
		limiter:       limiter,
		sweepInterval: defaultSweepInterval,
		pace:          defaultBroadcastPace,
		now:           time.Now,
		sleep:         sleepCtx,
		stopChan:      make(chan struct{}),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins the delivery sweep loop. The first sweep runs
// immediately so restarts do not delay overdue messages by a full
// interval.
func (s *SchedulerService) Start(ctx context.Context) {
	s.mutex.Lock()
	if s.isRunning {
		s.mutex.Unlock()
		return
	}
	s.isRunning = true
	s.mutex.Unlock()

	log.Info().Dur("interval", s.sweepInterval).Msg("starting delivery sweep")

	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		s.Sweep(ctx)

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stopChan:
				log.Info().Msg("stopping delivery sweep")
				return
			case <-ctx.Done():
				log.Info().Msg("context cancelled, stopping delivery sweep")
				return
			}
		}
	}()
}

// Stop stops the sweep loop
func (s *SchedulerService) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}

// Sweep runs one pass: scheduled messages first, then broadcasts, then
// periodic pruning
func (s *SchedulerService) Sweep(ctx context.Context) {
	s.sweepScheduledMessages(ctx)
	s.sweepBroadcasts(ctx)
	s.maybePrune()
}

func (s *SchedulerService) sweepScheduledMessages(ctx context.Context) {
	due, err := s.scheduledRepo.FindDue(s.now(), scheduledSweepBatch)
	if err != nil {
		log.Error().Err(err).Msg("failed to load due scheduled messages")
		return
	}

	for i := range due {
		if ctx.Err() != nil {
			return
		}
		msg := &due[i]

		messageID, err := s.sender.SendForAccount(ctx, msg.WorkspaceID, msg.AccountID, msg.Recipient, msg.Message, msg.MediaURL, msg.MediaType)
		if err != nil {
			log.Warn().Err(err).Str("scheduled_id", msg.ID.String()).Msg("scheduled message dispatch failed")
			if markErr := s.scheduledRepo.MarkFailed(msg.ID, err.Error()); markErr != nil {
				log.Error().Err(markErr).Str("scheduled_id", msg.ID.String()).Msg("failed to mark scheduled message failed")
			}
			continue
		}

		if err := s.scheduledRepo.MarkSent(msg.ID, messageID); err != nil {
			log.Error().Err(err).Str("scheduled_id", msg.ID.String()).Msg("failed to mark scheduled message sent")
		}
	}
}

func (s *SchedulerService) sweepBroadcasts(ctx context.Context) {
	due, err := s.broadcastRepo.FindDue(s.now(), broadcastSweepBatch)
	if err != nil {
		log.Error().Err(err).Msg("failed to load due broadcasts")
		return
	}

	for i := range due {
		if ctx.Err() != nil {
			return
		}
		s.runBroadcast(ctx, &due[i])
	}
}

// runBroadcast claims and fans out one broadcast. The claim is a
// conditional status transition, so an overlapping sweep loses the race
// and skips. Individual send failures count against the broadcast but
// never abort it.
func (s *SchedulerService) runBroadcast(ctx context.Context, b *models.Broadcast) {
	claimed, err := s.broadcastRepo.Claim(b.ID)
	if err != nil {
		log.Error().Err(err).Str("broadcast_id", b.ID.String()).Msg("failed to claim broadcast")
		return
	}
	if !claimed {
		return
	}

	recipients, err := s.resolveRecipients(b)
	if err != nil {
		log.Error().Err(err).Str("broadcast_id", b.ID.String()).Msg("failed to resolve broadcast recipients")
		if markErr := s.broadcastRepo.MarkFailed(b.ID); markErr != nil {
			log.Error().Err(markErr).Str("broadcast_id", b.ID.String()).Msg("failed to mark broadcast failed")
		}
		return
	}

	if err := s.broadcastRepo.SetTotalRecipients(b.ID, len(recipients)); err != nil {
		log.Warn().Err(err).Str("broadcast_id", b.ID.String()).Msg("failed to record recipient total")
	}

	sent, failed := 0, 0
	for i, phone := range recipients {
		if i > 0 {
			if err := s.sleep(ctx, s.pace); err != nil {
				break
			}
		}

		if _, err := s.sender.SendForAccount(ctx, b.WorkspaceID, b.AccountID, phone, b.Message, b.MediaURL, b.MediaType); err != nil {
			failed++
			log.Warn().Err(err).Str("broadcast_id", b.ID.String()).Str("to", phone).Msg("broadcast send failed")
			if incErr := s.broadcastRepo.IncrementFailed(b.ID); incErr != nil {
				log.Error().Err(incErr).Str("broadcast_id", b.ID.String()).Msg("failed to count broadcast failure")
			}
			continue
		}

		sent++
		if incErr := s.broadcastRepo.IncrementSent(b.ID); incErr != nil {
			log.Error().Err(incErr).Str("broadcast_id", b.ID.String()).Msg("failed to count broadcast send")
		}
	}

	if err := s.broadcastRepo.MarkCompleted(b.ID); err != nil {
		log.Error().Err(err).Str("broadcast_id", b.ID.String()).Msg("failed to mark broadcast completed")
	}

	log.Info().
		Str("broadcast_id", b.ID.String()).
		Int("sent", sent).
		Int("failed", failed).
		Int("total", len(recipients)).
		Msg("broadcast completed")

	s.webhooks.Dispatch(ctx, b.WorkspaceID, models.EventBroadcastCompleted, map[string]interface{}{
		"broadcast_id": b.ID,
		"total":        len(recipients),
		"sent":         sent,
		"failed":       failed,
	})
}

func (s *SchedulerService) resolveRecipients(b *models.Broadcast) ([]string, error) {
	switch b.TargetType {
	case models.BroadcastTargetCustom:
		return b.TargetPhones, nil
	case models.BroadcastTargetAllContacts:
		return s.contacts.ListPhonesForBroadcast(b.WorkspaceID)
	case models.BroadcastTargetGroup:
		// Group rosters live provider-side and are not synced yet
		log.Warn().Str("broadcast_id", b.ID.String()).Msg("group targeting not supported, sending to nobody")
		return nil, nil
	}
	return nil, nil
}

func (s *SchedulerService) maybePrune() {
	now := s.now()
	if !s.lastPrune.IsZero() && now.Sub(s.lastPrune) < prunePeriod {
		return
	}
	s.lastPrune = now

	deleted, err := s.scheduledRepo.DeleteOlderThan(now.Add(-scheduledRetention))
	if err != nil {
		log.Warn().Err(err).Msg("failed to prune old scheduled messages")
	} else if deleted > 0 {
		log.Debug().Int64("deleted", deleted).Msg("pruned old scheduled messages")
	}

	if s.limiter != nil {
		s.limiter.PruneExpired()
	}
}
