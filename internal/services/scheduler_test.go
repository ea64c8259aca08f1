package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nurfahmi/wa-gateway/pkg/models"

	"github.com/google/uuid"
)

type fakeScheduledStore struct {
	due    []models.ScheduledMessage
	sent   []uuid.UUID
	failed map[uuid.UUID]string
}

func (f *fakeScheduledStore) FindDue(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	return f.due, nil
}

func (f *fakeScheduledStore) MarkSent(id uuid.UUID, messageID string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeScheduledStore) MarkFailed(id uuid.UUID, errMsg string) error {
	if f.failed == nil {
		f.failed = make(map[uuid.UUID]string)
	}
	f.failed[id] = errMsg
	return nil
}

func (f *fakeScheduledStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeBroadcastStore struct {
	due       []models.Broadcast
	claimable map[uuid.UUID]bool
	total     int
	sent      int
	failed    int
	completed bool
	marked    bool
}

func (f *fakeBroadcastStore) FindDue(now time.Time, limit int) ([]models.Broadcast, error) {
	return f.due, nil
}

func (f *fakeBroadcastStore) Claim(id uuid.UUID) (bool, error) {
	return f.claimable[id], nil
}

func (f *fakeBroadcastStore) SetTotalRecipients(id uuid.UUID, total int) error {
	f.total = total
	return nil
}

func (f *fakeBroadcastStore) IncrementSent(id uuid.UUID) error {
	f.sent++
	return nil
}

func (f *fakeBroadcastStore) IncrementFailed(id uuid.UUID) error {
	f.failed++
	return nil
}

func (f *fakeBroadcastStore) MarkCompleted(id uuid.UUID) error {
	f.completed = true
	return nil
}

func (f *fakeBroadcastStore) MarkFailed(id uuid.UUID) error {
	f.marked = true
	return nil
}

type fakeAudience struct {
	phones []string
	err    error
}

func (f *fakeAudience) ListPhonesForBroadcast(workspaceID uuid.UUID) ([]string, error) {
	return f.phones, f.err
}

type fakeSender struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeSender) SendForAccount(ctx context.Context, workspaceID, accountID uuid.UUID, to, text, mediaURL, mediaType string) (string, error) {
	if f.failFor[to] {
		return "", errors.New("provider rejected")
	}
	f.sent = append(f.sent, to)
	return "provider-msg-" + to, nil
}

type fakeNotifier struct {
	events []string
	data   []map[string]interface{}
}

func (f *fakeNotifier) Dispatch(ctx context.Context, workspaceID uuid.UUID, event string, data map[string]interface{}) {
	f.events = append(f.events, event)
	f.data = append(f.data, data)
}

type fakePruner struct{ calls int }

func (f *fakePruner) PruneExpired() { f.calls++ }

func newTestScheduler(scheduled *fakeScheduledStore, broadcasts *fakeBroadcastStore, audience *fakeAudience, sender *fakeSender, notifier *fakeNotifier) (*SchedulerService, *int) {
	s := NewSchedulerService(scheduled, broadcasts, audience, sender, notifier, &fakePruner{})
	sleeps := 0
	s.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return s, &sleeps
}

func dueBroadcast(target string, phones []string) models.Broadcast {
	return models.Broadcast{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: uuid.New(), WorkspaceID: uuid.New()},
		AccountID:          uuid.New(),
		Message:            "campaign",
		TargetType:         target,
		TargetPhones:       phones,
		Status:             models.BroadcastStatusScheduled,
	}
}

func TestSweepScheduledMessages(t *testing.T) {
	ok := models.ScheduledMessage{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: uuid.New(), WorkspaceID: uuid.New()},
		AccountID:          uuid.New(),
		Recipient:          "628111",
		Message:            "reminder",
	}
	bad := models.ScheduledMessage{
		BaseWorkspaceModel: models.BaseWorkspaceModel{ID: uuid.New(), WorkspaceID: uuid.New()},
		AccountID:          uuid.New(),
		Recipient:          "628222",
		Message:            "reminder",
	}

	scheduled := &fakeScheduledStore{due: []models.ScheduledMessage{ok, bad}}
	sender := &fakeSender{failFor: map[string]bool{"628222": true}}
	s, _ := newTestScheduler(scheduled, &fakeBroadcastStore{}, &fakeAudience{}, sender, &fakeNotifier{})

	s.sweepScheduledMessages(context.Background())

	if len(scheduled.sent) != 1 || scheduled.sent[0] != ok.ID {
		t.Errorf("sent = %v, expected only %s", scheduled.sent, ok.ID)
	}
	if _, marked := scheduled.failed[bad.ID]; !marked {
		t.Error("failed dispatch should mark the message failed")
	}
}

func TestRunBroadcastFanOut(t *testing.T) {
	b := dueBroadcast(models.BroadcastTargetCustom, []string{"1", "2", "3"})
	broadcasts := &fakeBroadcastStore{claimable: map[uuid.UUID]bool{b.ID: true}}
	sender := &fakeSender{failFor: map[string]bool{"2": true}}
	notifier := &fakeNotifier{}
	s, sleeps := newTestScheduler(&fakeScheduledStore{}, broadcasts, &fakeAudience{}, sender, notifier)

	s.runBroadcast(context.Background(), &b)

	if broadcasts.total != 3 {
		t.Errorf("total recipients = %d, expected 3", broadcasts.total)
	}
	if broadcasts.sent != 2 || broadcasts.failed != 1 {
		t.Errorf("sent/failed = %d/%d, expected 2/1", broadcasts.sent, broadcasts.failed)
	}
	if broadcasts.sent+broadcasts.failed != broadcasts.total {
		t.Error("sent plus failed should cover every recipient")
	}
	if !broadcasts.completed {
		t.Error("broadcast should complete even with individual failures")
	}
	// Pacing applies between sends, not before the first
	if *sleeps != 2 {
		t.Errorf("sleeps = %d, expected 2", *sleeps)
	}

	if len(notifier.events) != 1 || notifier.events[0] != models.EventBroadcastCompleted {
		t.Fatalf("events = %v, expected one broadcast.completed", notifier.events)
	}
	if notifier.data[0]["sent"] != 2 || notifier.data[0]["failed"] != 1 {
		t.Errorf("completion payload = %v", notifier.data[0])
	}
}

func TestRunBroadcastLostClaimSkips(t *testing.T) {
	b := dueBroadcast(models.BroadcastTargetCustom, []string{"1"})
	broadcasts := &fakeBroadcastStore{claimable: map[uuid.UUID]bool{}}
	sender := &fakeSender{}
	s, _ := newTestScheduler(&fakeScheduledStore{}, broadcasts, &fakeAudience{}, sender, &fakeNotifier{})

	s.runBroadcast(context.Background(), &b)

	if len(sender.sent) != 0 {
		t.Error("a broadcast claimed by another sweep must not send")
	}
	if broadcasts.completed {
		t.Error("a skipped broadcast must not be marked completed")
	}
}

func TestRunBroadcastAllContactsAudience(t *testing.T) {
	b := dueBroadcast(models.BroadcastTargetAllContacts, nil)
	broadcasts := &fakeBroadcastStore{claimable: map[uuid.UUID]bool{b.ID: true}}
	sender := &fakeSender{}
	s, _ := newTestScheduler(&fakeScheduledStore{}, broadcasts, &fakeAudience{phones: []string{"a", "b"}}, sender, &fakeNotifier{})

	s.runBroadcast(context.Background(), &b)

	if len(sender.sent) != 2 {
		t.Errorf("sent to %d recipients, expected 2", len(sender.sent))
	}
}

func TestRunBroadcastAudienceFailure(t *testing.T) {
	b := dueBroadcast(models.BroadcastTargetAllContacts, nil)
	broadcasts := &fakeBroadcastStore{claimable: map[uuid.UUID]bool{b.ID: true}}
	s, _ := newTestScheduler(&fakeScheduledStore{}, broadcasts, &fakeAudience{err: errors.New("db down")}, &fakeSender{}, &fakeNotifier{})

	s.runBroadcast(context.Background(), &b)

	if !broadcasts.marked {
		t.Error("unresolvable audience should mark the broadcast failed")
	}
	if broadcasts.completed {
		t.Error("failed broadcast should not be marked completed")
	}
}

func TestRunBroadcastStopsOnCancel(t *testing.T) {
	b := dueBroadcast(models.BroadcastTargetCustom, []string{"1", "2", "3"})
	broadcasts := &fakeBroadcastStore{claimable: map[uuid.UUID]bool{b.ID: true}}
	sender := &fakeSender{}
	s, _ := newTestScheduler(&fakeScheduledStore{}, broadcasts, &fakeAudience{}, sender, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	s.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	s.runBroadcast(ctx, &b)

	if len(sender.sent) != 1 {
		t.Errorf("sent %d messages after cancel, expected 1", len(sender.sent))
	}
}
