package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"frontdesk/internal/models"
	"frontdesk/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingNotifier captures simulated calls for assertions.
type recordingNotifier struct {
	mu          sync.Mutex
	supervisor  []uuid.UUID
	customer    []string
	lastAnswer  string
	lastPayload string
}

func (n *recordingNotifier) NotifySupervisor(question string, requestID uuid.UUID, customerPhone string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.supervisor = append(n.supervisor, requestID)
	n.lastPayload = question
}

func (n *recordingNotifier) CallCustomerBack(phone, answer, originalQuestion string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.customer = append(n.customer, phone)
	n.lastAnswer = answer
}

func newHelpRequestService(t *testing.T) (*HelpRequestService, *KnowledgeService, *recordingNotifier) {
	t.Helper()
	knowledge, store := newKnowledgeService(t)
	notifier := &recordingNotifier{}
	cfg := &config.RequestConfig{
		Timeout:       30 * time.Minute,
		SweepInterval: time.Minute,
	}
	svc := NewHelpRequestService(store, knowledge, notifier, cfg, zap.NewNop())
	return svc, knowledge, notifier
}

func TestCreateHelpRequest(t *testing.T) {
	svc, _, notifier := newHelpRequestService(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	confidence := 0.42
	request, err := svc.Create(ctx, CreateParams{
		CustomerPhone:   "+15550001234",
		Question:        "Do you do threading?",
		AgentConfidence: &confidence,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, base.Add(30*time.Minute), request.TimeoutAt)
	assert.Len(t, notifier.supervisor, 1)
	assert.Equal(t, request.ID, notifier.supervisor[0])
}

func TestCreateHelpRequestValidation(t *testing.T) {
	svc, _, _ := newHelpRequestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Question: "no phone"})
	assert.True(t, IsValidation(err))

	_, err = svc.Create(ctx, CreateParams{CustomerPhone: "+15550001234", Question: "   "})
	assert.True(t, IsValidation(err))

	bad := 1.5
	_, err = svc.Create(ctx, CreateParams{
		CustomerPhone:   "+15550001234",
		Question:        "over confident",
		AgentConfidence: &bad,
	})
	assert.True(t, IsValidation(err))
}

func TestResolveLearnsAndCallsBack(t *testing.T) {
	svc, knowledge, notifier := newHelpRequestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550001234",
		Question:      "Do you do threading?",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, request.ID, "Yes, $12.")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.SupervisorResponse)
	assert.Equal(t, "Yes, $12.", *resolved.SupervisorResponse)

	assert.Equal(t, []string{"+15550001234"}, notifier.customer)
	assert.Equal(t, "Yes, $12.", notifier.lastAnswer)

	// The learned answer is immediately searchable at full confidence.
	matches, err := knowledge.Search(ctx, SearchParams{Question: "do you do threading"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Score)
	assert.Equal(t, "Yes, $12.", matches[0].Entry.Answer)
	require.NotNil(t, matches[0].Entry.LearnedFromRequestID)
	assert.Equal(t, request.ID, *matches[0].Entry.LearnedFromRequestID)
}

func TestResolveRejectsEmptyAnswerAndUnknownID(t *testing.T) {
	svc, _, _ := newHelpRequestService(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, uuid.New(), "   ")
	assert.True(t, IsValidation(err))

	_, err = svc.Resolve(ctx, uuid.New(), "an answer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveTwiceFails(t *testing.T) {
	svc, _, _ := newHelpRequestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550001234",
		Question:      "Do you take walk-ins?",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, request.ID, "Before 3pm, yes.")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, request.ID, "Different answer.")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResolveAfterDeadlineForcesUnresolved(t *testing.T) {
	svc, knowledge, notifier := newHelpRequestService(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	request, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550001234",
		Question:      "Do you do threading?",
	})
	require.NoError(t, err)

	now = base.Add(31 * time.Minute)
	_, err = svc.Resolve(ctx, request.ID, "Yes, $12.")
	assert.ErrorIs(t, err, ErrAlreadyTimedOut)

	// The forced transition survives the failed resolve.
	stored, err := svc.Get(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusUnresolved, stored.Status)

	// Nothing was learned and the customer was not called.
	matches, err := knowledge.Search(ctx, SearchParams{Question: "do you do threading"})
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, notifier.customer)
}

func TestSweepTimeouts(t *testing.T) {
	svc, _, _ := newHelpRequestService(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	expired, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550001111",
		Question:      "Is parking free?",
	})
	require.NoError(t, err)

	now = base.Add(10 * time.Minute)
	fresh, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550002222",
		Question:      "Do you take cards?",
	})
	require.NoError(t, err)

	now = base.Add(31 * time.Minute)
	ids, err := svc.SweepTimeouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{expired.ID}, ids)

	stored, err := svc.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusUnresolved, stored.Status)

	stored, err = svc.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, stored.Status)

	// A second sweep finds nothing new.
	ids, err = svc.SweepTimeouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListAndStats(t *testing.T) {
	svc, _, _ := newHelpRequestService(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	svc.now = func() time.Time { return now }

	first, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550001111",
		Question:      "Is parking free?",
	})
	require.NoError(t, err)

	now = base.Add(time.Minute)
	second, err := svc.Create(ctx, CreateParams{
		CustomerPhone: "+15550002222",
		Question:      "Do you take cards?",
	})
	require.NoError(t, err)

	now = base.Add(5 * time.Minute)
	_, err = svc.Resolve(ctx, first.ID, "Yes, behind the building.")
	require.NoError(t, err)

	all, err := svc.List(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	pending := models.RequestStatusPending
	onlyPending, err := svc.List(ctx, &pending, 0, 0)
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, second.ID, onlyPending[0].ID)

	bogus := models.RequestStatus("archived")
	_, err = svc.List(ctx, &bogus, 0, 0)
	assert.True(t, IsValidation(err))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCount)
	assert.Equal(t, int64(1), stats.PendingCount)
	assert.Equal(t, int64(1), stats.ResolvedCount)
	require.NotNil(t, stats.AvgResolutionMinutes)
	assert.InDelta(t, 5.0, *stats.AvgResolutionMinutes, 1e-9)
}
