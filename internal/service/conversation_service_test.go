package service

import (
	"context"
	"testing"
	"time"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/repository/memory"
	"ai-supportdesk-be/internal/websocket"
	"ai-supportdesk-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationFixture struct {
	svc       *conversationService
	factory   *memFactory
	publisher *recordingPublisher
	hub       *recordingHub
	mailer    *recordingMailer
	sessionId uuid.UUID
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	factory := newMemFactory()
	sessionSvc := &contactSessionService{
		uowFactory:       factory,
		cache:            memory.NewSessionCache(),
		logger:           nopLogger{},
		duration:         24 * time.Hour,
		refreshThreshold: 4 * time.Hour,
		now:              time.Now,
	}

	publisher := &recordingPublisher{}
	hub := newRecordingHub()
	mail := &recordingMailer{}

	svc := NewConversationService(factory, sessionSvc, publisher, hub, mail, nopLogger{}, "alerts@example.com").(*conversationService)

	session, err := sessionSvc.Create(context.Background(), &dto.CreateContactSessionRequest{
		OrganizationId: "org-1",
		Name:           "Ada",
		Email:          "ada@example.com",
	})
	require.NoError(t, err)

	return &conversationFixture{
		svc:       svc,
		factory:   factory,
		publisher: publisher,
		hub:       hub,
		mailer:    mail,
		sessionId: session.Id,
	}
}

func (f *conversationFixture) threadMessages(threadId uuid.UUID) []string {
	f.factory.store.mu.Lock()
	defer f.factory.store.mu.Unlock()
	var out []string
	for _, msg := range f.factory.store.messages[threadId] {
		out = append(out, msg.Content)
	}
	return out
}

func TestConversationCreate(t *testing.T) {
	f := newConversationFixture(t)

	res, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)
	assert.Equal(t, constant.ConversationStatusUnresolved, res.Status)
	assert.NotEqual(t, uuid.Nil, res.ThreadId)

	contents := f.threadMessages(res.ThreadId)
	require.Len(t, contents, 1)
	assert.Equal(t, constant.GreetingMessage, contents[0])

	assert.Equal(t, []string{events.TypeConversationCreated}, f.publisher.types())
	assert.Len(t, f.hub.envelopes[websocket.OrgTopic("org-1")], 1)
	assert.Len(t, f.hub.envelopes[websocket.SessionTopic(f.sessionId.String())], 1)
}

func TestConversationCreateRejectsUnknownSession(t *testing.T) {
	f := newConversationFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New())
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestUpdateStatusAppendsAnnouncement(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	res, err := f.svc.UpdateStatus(context.Background(), "org-1", created.Id, constant.ConversationStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, constant.ConversationStatusResolved, res.Status)

	contents := f.threadMessages(created.ThreadId)
	require.Len(t, contents, 2)
	assert.Equal(t, constant.ResolvedAnnouncement, contents[1])
	assert.Contains(t, f.publisher.types(), events.TypeConversationResolved)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), "org-1", created.Id, constant.ConversationStatusUnresolved)
	require.NoError(t, err)

	// Only the greeting; no announcement turn for a no-op.
	assert.Len(t, f.threadMessages(created.ThreadId), 1)
}

func TestUpdateStatusOperatorCanReopen(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), "org-1", created.Id, constant.ConversationStatusResolved)
	require.NoError(t, err)

	res, err := f.svc.UpdateStatus(context.Background(), "org-1", created.Id, constant.ConversationStatusUnresolved)
	require.NoError(t, err)
	assert.Equal(t, constant.ConversationStatusUnresolved, res.Status)

	contents := f.threadMessages(created.ThreadId)
	assert.Equal(t, constant.ReopenedAnnouncement, contents[len(contents)-1])
}

func TestUpdateStatusScopedToOrganization(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), "org-2", created.Id, constant.ConversationStatusResolved)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestMarkEscalatedIsSilent(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)
	priorEvents := len(f.publisher.types())

	require.NoError(t, f.svc.MarkEscalated(context.Background(), created.ThreadId))

	conv, err := f.svc.GetOne(context.Background(), "org-1", created.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.ConversationStatusEscalated, conv.Status)

	// No announcement turn, no bus event, no email.
	assert.Len(t, f.threadMessages(created.ThreadId), 1)
	assert.Len(t, f.publisher.types(), priorEvents)
	assert.Empty(t, f.mailer.alerts)

	// Idempotent once escalated.
	require.NoError(t, f.svc.MarkEscalated(context.Background(), created.ThreadId))
}

func TestMarkEscalatedRejectsResolved(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)
	require.NoError(t, f.svc.Resolve(context.Background(), created.ThreadId))

	err = f.svc.MarkEscalated(context.Background(), created.ThreadId)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConversationResolved, appErr.Code)
}

func TestEscalateAnnouncesAndAlerts(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	require.NoError(t, f.svc.Escalate(context.Background(), created.ThreadId))

	contents := f.threadMessages(created.ThreadId)
	require.Len(t, contents, 2)
	assert.Equal(t, constant.EscalatedAnnouncement, contents[1])
	assert.Contains(t, f.publisher.types(), events.TypeConversationEscalated)
	assert.Equal(t, []string{created.Id.String()}, f.mailer.alerts)
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	require.NoError(t, f.svc.Resolve(context.Background(), created.ThreadId))
	require.NoError(t, f.svc.Resolve(context.Background(), created.ThreadId))

	// Greeting plus exactly one announcement.
	assert.Len(t, f.threadMessages(created.ThreadId), 2)
}

func TestGetOneForVisitorEnforcesOwnership(t *testing.T) {
	f := newConversationFixture(t)

	created, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	other, err := f.svc.sessionService.Create(context.Background(), &dto.CreateContactSessionRequest{
		OrganizationId: "org-1",
		Name:           "Eve",
		Email:          "eve@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.GetOneForVisitor(context.Background(), created.Id, other.Id)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestGetManyForVisitorListsOwnOnly(t *testing.T) {
	f := newConversationFixture(t)

	mine, err := f.svc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	other, err := f.svc.sessionService.Create(context.Background(), &dto.CreateContactSessionRequest{
		OrganizationId: "org-1",
		Name:           "Eve",
		Email:          "eve@example.com",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), other.Id)
	require.NoError(t, err)

	res, err := f.svc.GetManyForVisitor(context.Background(), f.sessionId, "", 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, mine.Id, res.Items[0].Id)
	assert.True(t, res.IsDone)
	require.NotNil(t, res.Items[0].LastMessage)
	assert.Equal(t, constant.GreetingMessage, res.Items[0].LastMessage.Content)
}

func TestGetManyPaginates(t *testing.T) {
	f := newConversationFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), f.sessionId)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page1, err := f.svc.GetMany(context.Background(), "org-1", "", "", 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.False(t, page1.IsDone)

	page2, err := f.svc.GetMany(context.Background(), "org-1", "", page1.ContinueCursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.True(t, page2.IsDone)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(page1.Items, page2.Items...) {
		assert.False(t, seen[item.Id])
		seen[item.Id] = true
	}
}
