package memory

import (
	"testing"

	"trainers-ally-be/internal/entity"
	"trainers-ally-be/pkg/conversation"
	"trainers-ally-be/pkg/workout"

	"github.com/google/uuid"
)

func storedChat() *entity.Chat {
	return &entity.Chat{
		Id:    uuid.New(),
		Title: "Spring cut",
		Messages: []conversation.Turn{
			conversation.NewToolTurn("t1", conversation.ToolGeneratedWorkout, workout.DefaultState()),
		},
	}
}

func TestChatRepositoryRoundTrip(t *testing.T) {
	repo := NewChatRepository()
	chat := storedChat()

	repo.Save(chat)

	got, found := repo.Get(chat.Id.String())
	if !found {
		t.Fatal("chat not found after Save")
	}
	if got.Title != "Spring cut" || len(got.Messages) != 1 {
		t.Fatalf("got = %+v", got)
	}

	repo.Delete(chat.Id.String())
	if _, found := repo.Get(chat.Id.String()); found {
		t.Error("chat survives Delete")
	}
}

func TestChatRepositoryIsolatesCallers(t *testing.T) {
	repo := NewChatRepository()
	chat := storedChat()
	repo.Save(chat)

	// The caller keeps appending to its own copy after saving; the stored
	// entry must not see that until the next Save.
	chat.Messages = append(chat.Messages, conversation.NewToolTurn("t2", conversation.ToolUserMessage, workout.DefaultState()))

	got, _ := repo.Get(chat.Id.String())
	if len(got.Messages) != 1 {
		t.Fatalf("stored log shares the caller's slice: %d message(s)", len(got.Messages))
	}

	// Likewise a reader's copy is its own.
	got.Messages = append(got.Messages, conversation.NewToolTurn("t3", conversation.ToolUserMessage, workout.DefaultState()))
	again, _ := repo.Get(chat.Id.String())
	if len(again.Messages) != 1 {
		t.Fatalf("reader mutation leaked into the store: %d message(s)", len(again.Messages))
	}
}
