package dto

import (
	"time"

	"trainers-ally-be/pkg/conversation"

	"github.com/google/uuid"
)

type GetAllChatsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Path      string     `json:"path"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id      uuid.UUID                `json:"id"`
	Title   string                   `json:"title"`
	Entries []conversation.ViewEntry `json:"entries"`
}
