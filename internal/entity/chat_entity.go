package entity

import (
	"time"

	"trainers-ally-be/pkg/conversation"

	"github.com/google/uuid"
)

// Chat is one persisted plan-generation conversation: the append-only turn
// log plus its addressing metadata. The chat id doubles as the remote
// agent's thread id.
type Chat struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Path      string
	Messages  []conversation.Turn
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
