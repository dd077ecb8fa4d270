package mapper

import (
	"testing"
	"time"

	"trainers-ally-be/internal/entity"
	"trainers-ally-be/pkg/conversation"
	"trainers-ally-be/pkg/workout"

	"github.com/google/uuid"
)

func TestChatMapperRoundTrip(t *testing.T) {
	m := NewChatMapper()

	state := workout.DefaultState()
	state.Day = 1
	state.CurrentWorkout = workout.Workout{
		"1. Warm up": workout.Section{{Exercise: "Jog", Alternatives: []string{"Row"}}},
	}

	now := time.Now().Truncate(time.Second)
	chat := &entity.Chat{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Title:  "Spring cut",
		Path:   "/chat/abc",
		Messages: []conversation.Turn{
			conversation.NewToolTurn("t1", conversation.ToolGeneratedWorkout, state),
			{ID: "t2", Role: conversation.RoleUser, Content: conversation.Content{Text: "looks good"}},
		},
		CreatedAt: now,
	}

	mdl, err := m.ToModel(chat)
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	back, err := m.ToEntity(mdl)
	if err != nil {
		t.Fatalf("ToEntity: %v", err)
	}

	if back.Id != chat.Id || back.UserId != chat.UserId {
		t.Errorf("ids changed: %v / %v", back.Id, back.UserId)
	}
	if back.Title != chat.Title || back.Path != chat.Path {
		t.Errorf("metadata changed: %q %q", back.Title, back.Path)
	}
	if len(back.Messages) != 2 {
		t.Fatalf("messages = %d", len(back.Messages))
	}

	payload := back.Messages[0].ToolPayload()
	if payload == nil {
		t.Fatal("tool turn lost")
	}
	if payload.State.Day != 1 {
		t.Errorf("Day = %d", payload.State.Day)
	}
	if got := payload.State.CurrentWorkout["1. Warm up"][0].Exercise; got != "Jog" {
		t.Errorf("workout = %q", got)
	}
	if back.Messages[1].Content.Text != "looks good" {
		t.Errorf("plain turn = %q", back.Messages[1].Content.Text)
	}
}

func TestChatMapperNil(t *testing.T) {
	m := NewChatMapper()

	if e, err := m.ToEntity(nil); e != nil || err != nil {
		t.Errorf("ToEntity(nil) = %v, %v", e, err)
	}
	if mdl, err := m.ToModel(nil); mdl != nil || err != nil {
		t.Errorf("ToModel(nil) = %v, %v", mdl, err)
	}
}

func TestChatMapperEmptyMessages(t *testing.T) {
	m := NewChatMapper()

	chat := &entity.Chat{Id: uuid.New(), UserId: uuid.New(), Title: "empty"}
	mdl, err := m.ToModel(chat)
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	back, err := m.ToEntity(mdl)
	if err != nil {
		t.Fatalf("ToEntity: %v", err)
	}
	if len(back.Messages) != 0 {
		t.Errorf("messages = %d", len(back.Messages))
	}
}
