package service

import (
	"context"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/repository/specification"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/internal/websocket"
	"ai-supportdesk-be/pkg/agent"
	"ai-supportdesk-be/pkg/threadlog"

	"github.com/google/uuid"
)

// IAgentDispatcher is the slice of the agent the message path needs.
type IAgentDispatcher interface {
	Dispatch(ctx context.Context, conv agent.Conversation, prompt string) (string, error)
	EnhanceResponse(ctx context.Context, draft string) (string, error)
}

// IMessageService handles reading and writing conversation transcripts on
// both surfaces.
type IMessageService interface {
	SendVisitorMessage(ctx context.Context, request *dto.SendVisitorMessageRequest) (*dto.SendMessageResponse, error)
	SendOperatorMessage(ctx context.Context, organizationId string, conversationId uuid.UUID, operatorName, prompt string) (*dto.SendMessageResponse, error)

	ListForVisitor(ctx context.Context, conversationId, contactSessionId uuid.UUID, cursor string, numItems int) (*dto.ListMessagesResponse, error)
	ListForOperator(ctx context.Context, organizationId string, conversationId uuid.UUID, cursor string, numItems int) (*dto.ListMessagesResponse, error)

	EnhanceResponse(ctx context.Context, draft string) (*dto.EnhanceResponseResponse, error)
}

type messageService struct {
	uowFactory      unitofwork.RepositoryFactory
	sessionService  IContactSessionService
	transcript      *ThreadTranscript
	dispatcher      IAgentDispatcher
	hub             IHubNotifier
	logger          logger.ILogger
	maxPagesPerCall int
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	sessionService IContactSessionService,
	transcript *ThreadTranscript,
	dispatcher IAgentDispatcher,
	hub IHubNotifier,
	log logger.ILogger,
	maxPagesPerCall int,
) IMessageService {
	return &messageService{
		uowFactory:      uowFactory,
		sessionService:  sessionService,
		transcript:      transcript,
		dispatcher:      dispatcher,
		hub:             hub,
		logger:          log,
		maxPagesPerCall: maxPagesPerCall,
	}
}

func (s *messageService) SendVisitorMessage(ctx context.Context, request *dto.SendVisitorMessageRequest) (*dto.SendMessageResponse, error) {
	if _, err := s.sessionService.ValidateAndRefresh(ctx, request.ContactSessionId); err != nil {
		return nil, err
	}

	conversation, err := s.ownedConversation(ctx, request.ConversationId, request.ContactSessionId)
	if err != nil {
		return nil, err
	}
	if conversation.Status == constant.ConversationStatusResolved {
		return nil, apperror.ConversationResolved()
	}

	reply, err := s.dispatcher.Dispatch(ctx, agent.Conversation{
		Id:             conversation.Id,
		OrganizationId: conversation.OrganizationId,
		ThreadId:       conversation.ThreadId,
		Status:         conversation.Status,
	}, request.Prompt)
	if err != nil {
		return nil, err
	}

	s.notifyNewMessage(conversation.OrganizationId, conversation.Id, conversation.ContactSessionId)

	response := &dto.SendMessageResponse{}
	if reply != "" {
		response.Reply = &dto.ThreadMessageResponse{
			Role:    constant.MessageRoleAssistant,
			Content: reply,
		}
	}
	return response, nil
}

func (s *messageService) SendOperatorMessage(ctx context.Context, organizationId string, conversationId uuid.UUID, operatorName, prompt string) (*dto.SendMessageResponse, error) {
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
	if conversation.Status == constant.ConversationStatusResolved {
		return nil, apperror.ConversationResolved()
	}

	if err := s.transcript.Append(ctx, conversation.ThreadId, constant.MessageRoleOperator, prompt, operatorName); err != nil {
		return nil, err
	}

	s.notifyNewMessage(conversation.OrganizationId, conversation.Id, conversation.ContactSessionId)

	return &dto.SendMessageResponse{
		Reply: &dto.ThreadMessageResponse{
			Role:       constant.MessageRoleOperator,
			Content:    prompt,
			AuthorName: operatorName,
		},
	}, nil
}

func (s *messageService) ListForVisitor(ctx context.Context, conversationId, contactSessionId uuid.UUID, cursor string, numItems int) (*dto.ListMessagesResponse, error) {
	if _, err := s.sessionService.ValidateAndRefresh(ctx, contactSessionId); err != nil {
		return nil, err
	}
	conversation, err := s.ownedConversation(ctx, conversationId, contactSessionId)
	if err != nil {
		return nil, err
	}
	return s.listVisible(ctx, conversation.ThreadId, cursor, numItems)
}

func (s *messageService) ListForOperator(ctx context.Context, organizationId string, conversationId uuid.UUID, cursor string, numItems int) (*dto.ListMessagesResponse, error) {
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
	return s.listVisible(ctx, conversation.ThreadId, cursor, numItems)
}

func (s *messageService) EnhanceResponse(ctx context.Context, draft string) (*dto.EnhanceResponseResponse, error) {
	enhanced, err := s.dispatcher.EnhanceResponse(ctx, draft)
	if err != nil {
		return nil, apperror.Upstream("Response enhancement failed", err)
	}
	return &dto.EnhanceResponseResponse{Text: enhanced}, nil
}

func (s *messageService) listVisible(ctx context.Context, threadId uuid.UUID, cursor string, numItems int) (*dto.ListMessagesResponse, error) {
	if numItems <= 0 || numItems > 100 {
		numItems = 20
	}

	if _, err := threadlog.DecodeCursor(cursor); err != nil {
		return nil, apperror.BadRequest("Malformed cursor")
	}

	pager := threadlog.NewVisiblePager(s.transcript.ListerFor(ctx, threadId), s.maxPagesPerCall)
	page, err := pager.Paginate(ctx, cursor, numItems)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ThreadMessageResponse, len(page.Items))
	for i, message := range page.Items {
		items[i] = threadMessageToResponse(message)
	}
	return &dto.ListMessagesResponse{
		Items:          items,
		ContinueCursor: page.ContinueCursor,
		IsDone:         page.IsDone,
	}, nil
}

func (s *messageService) ownedConversation(ctx context.Context, conversationId, contactSessionId uuid.UUID) (*conversationHandle, error) {
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
	return &conversationHandle{
		Id:               conversation.Id,
		OrganizationId:   conversation.OrganizationId,
		ContactSessionId: conversation.ContactSessionId,
		ThreadId:         conversation.ThreadId,
		Status:           conversation.Status,
	}, nil
}

type conversationHandle struct {
	Id               uuid.UUID
	OrganizationId   string
	ContactSessionId uuid.UUID
	ThreadId         uuid.UUID
	Status           string
}

func (s *messageService) notifyNewMessage(organizationId string, conversationId, contactSessionId uuid.UUID) {
	if s.hub == nil {
		return
	}
	envelope := websocket.Envelope{
		Type: "message.new",
		Data: map[string]interface{}{
			"conversation_id": conversationId.String(),
		},
	}
	s.hub.Publish(websocket.OrgTopic(organizationId), envelope)
	s.hub.Publish(websocket.SessionTopic(contactSessionId.String()), envelope)
}
