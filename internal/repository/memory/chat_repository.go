package memory

import (
	"time"

	"trainers-ally-be/internal/entity"
	"trainers-ally-be/pkg/conversation"

	"github.com/patrickmn/go-cache"
)

// ChatRepository holds chats for sessions without a resolved identity.
// Persistence is a silent no-op for those, but the conversation still has
// to survive between orchestrator turns within this instance.
type ChatRepository struct {
	cache *cache.Cache
}

func NewChatRepository() *ChatRepository {
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &ChatRepository{
		cache: c,
	}
}

// Save stores a snapshot of the chat. Orchestrator goroutines keep
// appending to their own copy of the message slice after saving; sharing
// it with concurrent readers would race.
func (r *ChatRepository) Save(chat *entity.Chat) {
	r.cache.Set(chat.Id.String(), snapshot(chat), cache.DefaultExpiration)
}

// Get returns a snapshot the caller may mutate freely.
func (r *ChatRepository) Get(chatID string) (*entity.Chat, bool) {
	if x, found := r.cache.Get(chatID); found {
		return snapshot(x.(*entity.Chat)), true
	}
	return nil, false
}

func snapshot(chat *entity.Chat) *entity.Chat {
	out := *chat
	out.Messages = make([]conversation.Turn, len(chat.Messages))
	copy(out.Messages, chat.Messages)
	return &out
}

func (r *ChatRepository) Delete(chatID string) {
	r.cache.Delete(chatID)
}
