package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"trainers-ally-be/internal/entity"
	"trainers-ally-be/internal/model"
	"trainers-ally-be/pkg/conversation"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.Chat) (*entity.Chat, error) {
	if c == nil {
		return nil, nil
	}

	var turns []conversation.Turn
	if len(c.Messages) > 0 {
		if err := json.Unmarshal(c.Messages, &turns); err != nil {
			return nil, fmt.Errorf("decode chat messages: %w", err)
		}
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chat{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		Path:      c.Path,
		Messages:  turns,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}, nil
}

func (m *ChatMapper) ToModel(c *entity.Chat) (*model.Chat, error) {
	if c == nil {
		return nil, nil
	}

	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return nil, fmt.Errorf("encode chat messages: %w", err)
	}

	out := &model.Chat{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		Path:      c.Path,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out, nil
}
