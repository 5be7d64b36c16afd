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
	"ai-supportdesk-be/pkg/agent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoDispatcher replies with a fixed string and records the conversations
// it was handed.
type echoDispatcher struct {
	reply      string
	dispatched []agent.Conversation
}

func (d *echoDispatcher) Dispatch(ctx context.Context, conv agent.Conversation, prompt string) (string, error) {
	d.dispatched = append(d.dispatched, conv)
	return d.reply, nil
}

func (d *echoDispatcher) EnhanceResponse(ctx context.Context, draft string) (string, error) {
	return "polished: " + draft, nil
}

type messageFixture struct {
	svc        *messageService
	convSvc    *conversationService
	factory    *memFactory
	dispatcher *echoDispatcher
	hub        *recordingHub
	sessionId  uuid.UUID
}

func newMessageFixture(t *testing.T) *messageFixture {
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

	hub := newRecordingHub()
	convSvc := NewConversationService(factory, sessionSvc, nil, hub, nil, nopLogger{}, "").(*conversationService)

	dispatcher := &echoDispatcher{reply: "Agent reply"}
	transcript := NewThreadTranscript(factory)
	svc := NewMessageService(factory, sessionSvc, transcript, dispatcher, hub, nopLogger{}, 8).(*messageService)

	session, err := sessionSvc.Create(context.Background(), &dto.CreateContactSessionRequest{
		OrganizationId: "org-1",
		Name:           "Ada",
		Email:          "ada@example.com",
	})
	require.NoError(t, err)

	return &messageFixture{
		svc:        svc,
		convSvc:    convSvc,
		factory:    factory,
		dispatcher: dispatcher,
		hub:        hub,
		sessionId:  session.Id,
	}
}

func TestSendVisitorMessage(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	res, err := f.svc.SendVisitorMessage(context.Background(), &dto.SendVisitorMessageRequest{
		ConversationId:   conv.Id,
		ContactSessionId: f.sessionId,
		Prompt:           "Where is my order?",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "Agent reply", res.Reply.Content)

	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, conv.ThreadId, f.dispatcher.dispatched[0].ThreadId)
	assert.Equal(t, "org-1", f.dispatcher.dispatched[0].OrganizationId)

	assert.NotEmpty(t, f.hub.envelopes[websocket.SessionTopic(f.sessionId.String())])
}

func TestSendVisitorMessageRejectsResolved(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)
	require.NoError(t, f.convSvc.Resolve(context.Background(), conv.ThreadId))

	_, err = f.svc.SendVisitorMessage(context.Background(), &dto.SendVisitorMessageRequest{
		ConversationId:   conv.Id,
		ContactSessionId: f.sessionId,
		Prompt:           "hello?",
	})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConversationResolved, appErr.Code)
	assert.Empty(t, f.dispatcher.dispatched)
}

func TestSendVisitorMessageRejectsForeignConversation(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	other, err := f.svc.sessionService.Create(context.Background(), &dto.CreateContactSessionRequest{
		OrganizationId: "org-1",
		Name:           "Eve",
		Email:          "eve@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.SendVisitorMessage(context.Background(), &dto.SendVisitorMessageRequest{
		ConversationId:   conv.Id,
		ContactSessionId: other.Id,
		Prompt:           "hi",
	})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestSendOperatorMessage(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	res, err := f.svc.SendOperatorMessage(context.Background(), "org-1", conv.Id, "Sam", "Let me check that for you")
	require.NoError(t, err)
	require.NotNil(t, res.Reply)
	assert.Equal(t, constant.MessageRoleOperator, res.Reply.Role)
	assert.Equal(t, "Sam", res.Reply.AuthorName)

	list, err := f.svc.ListForOperator(context.Background(), "org-1", conv.Id, "", 10)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Let me check that for you", list.Items[1].Content)
}

func TestSendOperatorMessageRejectsResolved(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)
	require.NoError(t, f.convSvc.Resolve(context.Background(), conv.ThreadId))

	_, err = f.svc.SendOperatorMessage(context.Background(), "org-1", conv.Id, "Sam", "too late")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConversationResolved, appErr.Code)
}

func TestListMessagesHidesToolTurns(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	transcript := f.svc.transcript
	require.NoError(t, transcript.Append(context.Background(), conv.ThreadId, constant.MessageRoleUser, "question", ""))
	require.NoError(t, transcript.Append(context.Background(), conv.ThreadId, constant.MessageRoleTool, "search dump", ""))
	require.NoError(t, transcript.Append(context.Background(), conv.ThreadId, constant.MessageRoleAssistant, "answer", ""))

	list, err := f.svc.ListForVisitor(context.Background(), conv.Id, f.sessionId, "", 10)
	require.NoError(t, err)

	var roles []string
	for _, item := range list.Items {
		roles = append(roles, item.Role)
	}
	assert.Equal(t, []string{
		constant.MessageRoleAssistant, // greeting
		constant.MessageRoleUser,
		constant.MessageRoleAssistant,
	}, roles)
	assert.True(t, list.IsDone)
}

func TestListMessagesMalformedCursor(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	_, err = f.svc.ListForOperator(context.Background(), "org-1", conv.Id, "not-a-cursor!!!", 10)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
}

func TestListMessagesChainsPages(t *testing.T) {
	f := newMessageFixture(t)

	conv, err := f.convSvc.Create(context.Background(), f.sessionId)
	require.NoError(t, err)

	transcript := f.svc.transcript
	for i := 0; i < 5; i++ {
		require.NoError(t, transcript.Append(context.Background(), conv.ThreadId, constant.MessageRoleUser, "turn", ""))
	}

	var contents []string
	cursor := ""
	for {
		page, err := f.svc.ListForOperator(context.Background(), "org-1", conv.Id, cursor, 2)
		require.NoError(t, err)
		for _, item := range page.Items {
			contents = append(contents, item.Content)
		}
		if page.IsDone {
			break
		}
		cursor = page.ContinueCursor
	}

	// Greeting plus the five visitor turns, each exactly once.
	assert.Len(t, contents, 6)
}

func TestEnhanceResponse(t *testing.T) {
	f := newMessageFixture(t)

	res, err := f.svc.EnhanceResponse(context.Background(), "we fixd it")
	require.NoError(t, err)
	assert.Equal(t, "polished: we fixd it", res.Text)
}
