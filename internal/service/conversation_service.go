package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/pkg/mailer"
	"ai-supportdesk-be/internal/repository/specification"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/internal/websocket"
	"ai-supportdesk-be/pkg/events"
	"ai-supportdesk-be/pkg/threadlog"

	"github.com/google/uuid"
)

// IEventPublisher is the slice of the NATS publisher the services need.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IHubNotifier pushes live updates to connected dashboards and widgets.
type IHubNotifier interface {
	Publish(topic string, envelope websocket.Envelope)
}

// IConversationService owns the conversation lifecycle. The operator path
// may set any status; the agent tool path only ever moves forward.
type IConversationService interface {
	Create(ctx context.Context, contactSessionId uuid.UUID) (*dto.CreateConversationResponse, error)
	GetOneForVisitor(ctx context.Context, conversationId, contactSessionId uuid.UUID) (*dto.ConversationForVisitorResponse, error)
	GetManyForVisitor(ctx context.Context, contactSessionId uuid.UUID, cursor string, numItems int) (*dto.ListConversationsForVisitorResponse, error)
	GetOne(ctx context.Context, organizationId string, conversationId uuid.UUID) (*dto.ConversationResponse, error)
	GetMany(ctx context.Context, organizationId, status, cursor string, numItems int) (*dto.ListConversationsResponse, error)
	UpdateStatus(ctx context.Context, organizationId string, conversationId uuid.UUID, status string) (*dto.ConversationResponse, error)

	// Agent tool path, keyed by thread id.
	MarkEscalated(ctx context.Context, threadId uuid.UUID) error
	Escalate(ctx context.Context, threadId uuid.UUID) error
	Resolve(ctx context.Context, threadId uuid.UUID) error
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessionService IContactSessionService
	publisher      IEventPublisher
	hub            IHubNotifier
	emailService   mailer.IEmailService
	logger         logger.ILogger
	alertsInbox    string
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	sessionService IContactSessionService,
	publisher IEventPublisher,
	hub IHubNotifier,
	emailService mailer.IEmailService,
	log logger.ILogger,
	alertsInbox string,
) IConversationService {
	return &conversationService{
		uowFactory:     uowFactory,
		sessionService: sessionService,
		publisher:      publisher,
		hub:            hub,
		emailService:   emailService,
		logger:         log,
		alertsInbox:    alertsInbox,
	}
}

func (s *conversationService) Create(ctx context.Context, contactSessionId uuid.UUID) (*dto.CreateConversationResponse, error) {
	session, err := s.sessionService.ValidateAndRefresh(ctx, contactSessionId)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, apperror.Unauthorized("Invalid contact session")
		}
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	threadId := uuid.New()
	greeting := &entity.ThreadMessage{
		ThreadId: threadId,
		Role:     constant.MessageRoleAssistant,
		Content:  constant.GreetingMessage,
	}
	if err := uow.ThreadMessageRepository().Append(ctx, greeting); err != nil {
		uow.Rollback()
		return nil, err
	}

	conversation := &entity.Conversation{
		OrganizationId:   session.OrganizationId,
		ContactSessionId: session.Id,
		ThreadId:         threadId,
		Status:           constant.ConversationStatusUnresolved,
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		uow.Rollback()
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeConversationCreated, conversation)
	s.notify(conversation, "conversation.created", nil)

	return &dto.CreateConversationResponse{
		Id:       conversation.Id,
		ThreadId: conversation.ThreadId,
		Status:   conversation.Status,
	}, nil
}

func (s *conversationService) GetOneForVisitor(ctx context.Context, conversationId, contactSessionId uuid.UUID) (*dto.ConversationForVisitorResponse, error) {
	if _, err := s.sessionService.ValidateAndRefresh(ctx, contactSessionId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found")
	}
	if conversation.ContactSessionId != contactSessionId {
		return nil, apperror.Unauthorized("Conversation belongs to another session")
	}

	return &dto.ConversationForVisitorResponse{
		Id:       conversation.Id,
		ThreadId: conversation.ThreadId,
		Status:   conversation.Status,
	}, nil
}

func (s *conversationService) GetManyForVisitor(ctx context.Context, contactSessionId uuid.UUID, cursor string, numItems int) (*dto.ListConversationsForVisitorResponse, error) {
	if _, err := s.sessionService.ValidateAndRefresh(ctx, contactSessionId); err != nil {
		return nil, err
	}

	if numItems <= 0 || numItems > 100 {
		numItems = 20
	}

	specs := []specification.Specification{
		specification.ByContactSessionID{ContactSessionID: contactSessionId},
	}
	if cursor != "" {
		createdAt, id, err := decodeConversationCursor(cursor)
		if err != nil {
			return nil, apperror.BadRequest("Malformed cursor")
		}
		specs = append(specs, specification.CreatedBefore{CreatedAt: createdAt, ID: id})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Limit{N: numItems + 1},
	)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	isDone := len(conversations) <= numItems
	if !isDone {
		conversations = conversations[:numItems]
	}

	items := make([]*dto.ConversationForVisitorItem, 0, len(conversations))
	for _, conversation := range conversations {
		lastMessage, err := s.lastVisibleMessage(ctx, uow, conversation.ThreadId)
		if err != nil {
			return nil, err
		}

		item := &dto.ConversationForVisitorItem{
			Id:        conversation.Id,
			ThreadId:  conversation.ThreadId,
			Status:    conversation.Status,
			CreatedAt: conversation.CreatedAt,
		}
		if lastMessage != nil {
			item.LastMessage = threadMessageToResponse(*lastMessage)
		}
		items = append(items, item)
	}

	response := &dto.ListConversationsForVisitorResponse{
		Items:  items,
		IsDone: isDone,
	}
	if len(conversations) > 0 {
		last := conversations[len(conversations)-1]
		response.ContinueCursor = encodeConversationCursor(last.CreatedAt, last.Id)
	}
	return response, nil
}

func (s *conversationService) GetOne(ctx context.Context, organizationId string, conversationId uuid.UUID) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ByOrganizationID{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found")
	}

	session, err := uow.ContactSessionRepository().FindOne(ctx, specification.ByID{ID: conversation.ContactSessionId})
	if err != nil {
		return nil, err
	}

	return conversationToResponse(conversation, session), nil
}

func (s *conversationService) GetMany(ctx context.Context, organizationId, status, cursor string, numItems int) (*dto.ListConversationsResponse, error) {
	if numItems <= 0 || numItems > 100 {
		numItems = 20
	}

	specs := []specification.Specification{
		specification.ByOrganizationID{OrganizationID: organizationId},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	if cursor != "" {
		createdAt, id, err := decodeConversationCursor(cursor)
		if err != nil {
			return nil, apperror.BadRequest("Malformed cursor")
		}
		specs = append(specs, specification.CreatedBefore{CreatedAt: createdAt, ID: id})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Limit{N: numItems + 1},
	)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	isDone := len(conversations) <= numItems
	if !isDone {
		conversations = conversations[:numItems]
	}

	items := make([]*dto.ConversationListItem, 0, len(conversations))
	for _, conversation := range conversations {
		session, err := uow.ContactSessionRepository().FindOne(ctx, specification.ByID{ID: conversation.ContactSessionId})
		if err != nil {
			return nil, err
		}

		lastMessage, err := s.lastVisibleMessage(ctx, uow, conversation.ThreadId)
		if err != nil {
			return nil, err
		}

		item := &dto.ConversationListItem{
			Id:        conversation.Id,
			ThreadId:  conversation.ThreadId,
			Status:    conversation.Status,
			CreatedAt: conversation.CreatedAt,
		}
		if session != nil {
			item.ContactSession = sessionToResponse(session)
		}
		if lastMessage != nil {
			item.LastMessage = threadMessageToResponse(*lastMessage)
		}
		items = append(items, item)
	}

	response := &dto.ListConversationsResponse{
		Items:  items,
		IsDone: isDone,
	}
	if len(conversations) > 0 {
		last := conversations[len(conversations)-1]
		response.ContinueCursor = encodeConversationCursor(last.CreatedAt, last.Id)
	}
	return response, nil
}

func (s *conversationService) UpdateStatus(ctx context.Context, organizationId string, conversationId uuid.UUID, status string) (*dto.ConversationResponse, error) {
	switch status {
	case constant.ConversationStatusUnresolved, constant.ConversationStatusEscalated, constant.ConversationStatusResolved:
	default:
		return nil, apperror.BadRequest("Unknown conversation status")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ByOrganizationID{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found")
	}

	if conversation.Status != status {
		if err := s.transition(ctx, conversation, status, statusAnnouncement(status)); err != nil {
			return nil, err
		}
	}

	session, err := uow.ContactSessionRepository().FindOne(ctx, specification.ByID{ID: conversation.ContactSessionId})
	if err != nil {
		return nil, err
	}
	return conversationToResponse(conversation, session), nil
}

// MarkEscalated is the silent status flip the dispatcher applies before
// a model call. No announcement turn, no email.
func (s *conversationService) MarkEscalated(ctx context.Context, threadId uuid.UUID) error {
	conversation, err := s.findByThread(ctx, threadId)
	if err != nil {
		return err
	}

	switch conversation.Status {
	case constant.ConversationStatusEscalated:
		return nil
	case constant.ConversationStatusResolved:
		return apperror.ConversationResolved()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation.Status = constant.ConversationStatusEscalated
	return uow.ConversationRepository().Update(ctx, conversation)
}

func (s *conversationService) Escalate(ctx context.Context, threadId uuid.UUID) error {
	conversation, err := s.findByThread(ctx, threadId)
	if err != nil {
		return err
	}

	switch conversation.Status {
	case constant.ConversationStatusResolved:
		return apperror.ConversationResolved()
	}

	if err := s.transition(ctx, conversation, constant.ConversationStatusEscalated, constant.EscalatedAnnouncement); err != nil {
		return err
	}
	s.sendEscalationAlert(ctx, conversation)
	return nil
}

func (s *conversationService) Resolve(ctx context.Context, threadId uuid.UUID) error {
	conversation, err := s.findByThread(ctx, threadId)
	if err != nil {
		return err
	}
	if conversation.Status == constant.ConversationStatusResolved {
		return nil
	}
	return s.transition(ctx, conversation, constant.ConversationStatusResolved, constant.ResolvedAnnouncement)
}

// transition writes the status and its announcement turn atomically, then
// fans the change out to the bus and the live hub.
func (s *conversationService) transition(ctx context.Context, conversation *entity.Conversation, status, announcement string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	conversation.Status = status
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		uow.Rollback()
		return err
	}

	turn := &entity.ThreadMessage{
		ThreadId:   conversation.ThreadId,
		Role:       constant.MessageRoleOperator,
		Content:    announcement,
		AuthorName: "System",
	}
	if err := uow.ThreadMessageRepository().Append(ctx, turn); err != nil {
		uow.Rollback()
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	switch status {
	case constant.ConversationStatusEscalated:
		s.publishEvent(ctx, events.TypeConversationEscalated, conversation)
	case constant.ConversationStatusResolved:
		s.publishEvent(ctx, events.TypeConversationResolved, conversation)
	}

	s.notify(conversation, "conversation.status", map[string]interface{}{
		"status": status,
	})
	return nil
}

func (s *conversationService) findByThread(ctx context.Context, threadId uuid.UUID) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByThreadID{ThreadID: threadId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found for thread")
	}
	return conversation, nil
}

func (s *conversationService) publishEvent(ctx context.Context, eventType string, conversation *entity.Conversation) {
	if s.publisher == nil {
		return
	}
	event := events.NewConversationEvent(eventType, conversation.OrganizationId, conversation.Id.String(), conversation.ThreadId.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("conversation", "event publish failed", map[string]interface{}{
			"event_type":      eventType,
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
	}
}

func (s *conversationService) notify(conversation *entity.Conversation, envelopeType string, extra map[string]interface{}) {
	if s.hub == nil {
		return
	}
	data := map[string]interface{}{
		"conversation_id": conversation.Id.String(),
		"thread_id":       conversation.ThreadId.String(),
		"status":          conversation.Status,
	}
	for k, v := range extra {
		data[k] = v
	}
	envelope := websocket.Envelope{Type: envelopeType, Data: data}
	s.hub.Publish(websocket.OrgTopic(conversation.OrganizationId), envelope)
	s.hub.Publish(websocket.SessionTopic(conversation.ContactSessionId.String()), envelope)
}

func (s *conversationService) sendEscalationAlert(ctx context.Context, conversation *entity.Conversation) {
	if s.emailService == nil || s.alertsInbox == "" {
		return
	}

	preview := ""
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if last, err := s.lastVisibleMessage(ctx, uow, conversation.ThreadId); err == nil && last != nil {
		preview = last.Content
	}

	if err := s.emailService.SendEscalationAlert(s.alertsInbox, conversation.Id.String(), preview); err != nil {
		s.logger.Error("conversation", "escalation alert email failed", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
	}
}

// lastVisibleMessage scans backwards in small windows; threads end with
// recent activity so the first window nearly always hits.
func (s *conversationService) lastVisibleMessage(ctx context.Context, uow unitofwork.UnitOfWork, threadId uuid.UUID) (*threadlog.Message, error) {
	const window = 10
	repo := uow.ThreadMessageRepository()

	maxSeq, err := repo.MaxSeq(ctx, threadId)
	if err != nil {
		return nil, err
	}

	for end := maxSeq; end > 0; {
		start := end - window
		if start < 0 {
			start = 0
		}
		messages, err := repo.ListAfter(ctx, threadId, start, window)
		if err != nil {
			return nil, err
		}
		for i := len(messages) - 1; i >= 0; i-- {
			if threadlog.Visible(messages[i].Role) && messages[i].Seq <= end {
				m := toThreadlogMessages(messages[i : i+1])[0]
				return &m, nil
			}
		}
		end = start
	}
	return nil, nil
}

func statusAnnouncement(status string) string {
	switch status {
	case constant.ConversationStatusEscalated:
		return constant.EscalatedAnnouncement
	case constant.ConversationStatusResolved:
		return constant.ResolvedAnnouncement
	default:
		return constant.ReopenedAnnouncement
	}
}

func conversationToResponse(conversation *entity.Conversation, session *entity.ContactSession) *dto.ConversationResponse {
	response := &dto.ConversationResponse{
		Id:             conversation.Id,
		OrganizationId: conversation.OrganizationId,
		ThreadId:       conversation.ThreadId,
		Status:         conversation.Status,
		CreatedAt:      conversation.CreatedAt,
		UpdatedAt:      conversation.UpdatedAt,
	}
	if session != nil {
		response.ContactSession = sessionToResponse(session)
	}
	return response
}

func sessionToResponse(session *entity.ContactSession) *dto.ContactSessionResponse {
	return &dto.ContactSessionResponse{
		Id:             session.Id,
		OrganizationId: session.OrganizationId,
		Name:           session.Name,
		Email:          session.Email,
		Metadata:       session.Metadata,
		ExpiresAt:      session.ExpiresAt,
		CreatedAt:      session.CreatedAt,
	}
}

func threadMessageToResponse(message threadlog.Message) *dto.ThreadMessageResponse {
	return &dto.ThreadMessageResponse{
		Id:         message.Id,
		Role:       message.Role,
		Content:    message.Content,
		AuthorName: message.AuthorName,
		CreatedAt:  message.CreatedAt,
	}
}

// Conversation list cursors carry the keyset (created_at, id) of the last
// returned row.

func encodeConversationCursor(createdAt time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("t:%d|id:%s", createdAt.UnixNano(), id.String())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeConversationCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "t:") || !strings.HasPrefix(parts[1], "id:") {
		return time.Time{}, uuid.Nil, fmt.Errorf("malformed cursor")
	}
	nanos, err := strconv.ParseInt(strings.TrimPrefix(parts[0], "t:"), 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimPrefix(parts[1], "id:"))
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	return time.Unix(0, nanos), id, nil
}
