package mapper

import (
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	return &entity.Conversation{
		Id:               c.Id,
		OrganizationId:   c.OrganizationId,
		ContactSessionId: c.ContactSessionId,
		ThreadId:         c.ThreadId,
		Status:           c.Status,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	return &model.Conversation{
		Id:               c.Id,
		OrganizationId:   c.OrganizationId,
		ContactSessionId: c.ContactSessionId,
		ThreadId:         c.ThreadId,
		Status:           c.Status,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (m *ConversationMapper) MessageToEntity(msg *model.ThreadMessage) *entity.ThreadMessage {
	if msg == nil {
		return nil
	}

	return &entity.ThreadMessage{
		Id:         msg.Id,
		ThreadId:   msg.ThreadId,
		Seq:        msg.Seq,
		Role:       msg.Role,
		Content:    msg.Content,
		AuthorName: msg.AuthorName,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.ThreadMessage) *model.ThreadMessage {
	if msg == nil {
		return nil
	}

	return &model.ThreadMessage{
		Id:         msg.Id,
		ThreadId:   msg.ThreadId,
		Seq:        msg.Seq,
		Role:       msg.Role,
		Content:    msg.Content,
		AuthorName: msg.AuthorName,
		CreatedAt:  msg.CreatedAt,
	}
}
