package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"trainers-ally-be/internal/constant"
	"trainers-ally-be/internal/dto"
	"trainers-ally-be/internal/entity"
	"trainers-ally-be/internal/pkg/logger"
	"trainers-ally-be/internal/pkg/serverutils"
	"trainers-ally-be/internal/repository/memory"
	"trainers-ally-be/internal/repository/specification"
	"trainers-ally-be/internal/repository/unitofwork"
	"trainers-ally-be/pkg/agent"
	"trainers-ally-be/pkg/conversation"
	"trainers-ally-be/pkg/events"
	pktNats "trainers-ally-be/pkg/nats"
	"trainers-ally-be/pkg/stream"
	"trainers-ally-be/pkg/workout"

	"github.com/google/uuid"
)

// Identity is the resolved caller, if any. An unresolved identity is not an
// error: the conversation simply lives in process memory and durable
// persistence is skipped.
type Identity struct {
	UserId uuid.UUID
	Email  string
}

func (i Identity) Resolved() bool {
	return i.UserId != uuid.Nil
}

// IWorkoutService is the session orchestrator: the two generation entry
// points plus the read side of the conversation log.
type IWorkoutService interface {
	StartGeneration(ctx context.Context, identity Identity, request *dto.GenerateWorkoutRequest) (*dto.GenerateWorkoutResponse, error)
	AdvanceGeneration(ctx context.Context, identity Identity, request *dto.AdvanceWorkoutRequest) (*dto.GenerateWorkoutResponse, error)
	GetAllChats(ctx context.Context, identity Identity) ([]*dto.GetAllChatsResponse, error)
	GetChatHistory(ctx context.Context, identity Identity, chatId uuid.UUID) (*dto.GetChatHistoryResponse, error)
	GetProgress(threadId string) (*dto.ProgressDTO, error)
	DeleteChat(ctx context.Context, identity Identity, chatId uuid.UUID) error
}

type workoutService struct {
	uowFactory       unitofwork.RepositoryFactory
	runnable         agent.Runnable
	progressRepo     *memory.ProgressRepository
	memChats         *memory.ChatRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger

	// Fixed delay between persisting the userMessage turn and resuming the
	// agent. The agent reads session state by thread id from durable
	// storage; the delay bounds the write/read race. A soft measure, not a
	// guarantee.
	advanceDelay   time.Duration
	recursionLimit int
}

func NewWorkoutService(
	uowFactory unitofwork.RepositoryFactory,
	runnable agent.Runnable,
	progressRepo *memory.ProgressRepository,
	memChats *memory.ChatRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	advanceDelay time.Duration,
	recursionLimit int,
) IWorkoutService {
	return &workoutService{
		uowFactory:       uowFactory,
		runnable:         runnable,
		progressRepo:     progressRepo,
		memChats:         memChats,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		advanceDelay:     advanceDelay,
		recursionLimit:   recursionLimit,
	}
}

// StartGeneration validates the input, opens a progress channel, and kicks
// off the remote generation in a detached task. The conversation log is
// only touched once the stream completes successfully.
func (s *workoutService) StartGeneration(ctx context.Context, identity Identity, request *dto.GenerateWorkoutRequest) (*dto.GenerateWorkoutResponse, error) {
	if err := serverutils.ValidateRequest(&request.Input); err != nil {
		return nil, err
	}

	chatId := uuid.New()
	if request.ChatId != nil {
		chatId = *request.ChatId
	}
	threadId := chatId.String()

	if s.progressRepo.InFlight(threadId) {
		return nil, fmt.Errorf("generation already in flight for chat %s: %w", threadId, serverutils.ErrConflict)
	}

	input := request.Input
	phase, _ := strconv.Atoi(input.Phase)
	workoutsInWeek, _ := strconv.Atoi(input.WorkoutsInWeek)

	state := workout.DefaultState()
	state.Phase = phase
	state.WorkoutsInWeek = workoutsInWeek
	state.WorkoutLength = input.WorkoutLength
	state.ExtraCriteria = fmt.Sprintf("Has access to: %s.\n Workout preferences: %s", input.GymEquipment, input.PreferredWorkouts)
	state.ClientInfo = fmt.Sprintf("Weight: %s\nHeight: %s\nSex: %s\nGoals: %s", input.Weight, input.Height, input.Sex, input.Goals)
	state.ThreadID = threadId

	progress := stream.New(constant.ProgressGenerating)
	s.progressRepo.Save(threadId, progress)

	go func() {
		bgCtx := context.Background()

		results, err := s.runnable.StreamEvents(bgCtx, &state, agent.Config{ThreadID: threadId, RecursionLimit: s.recursionLimit})
		if err != nil {
			s.sealWithError(bgCtx, identity, chatId, &state, progress, err)
			return
		}

		if err := s.foldStream(results, &state, progress, constant.ProgressGeneratingDetailed); err != nil {
			s.sealWithError(bgCtx, identity, chatId, &state, progress, err)
			return
		}

		state.Input = &input

		// A supplied chat id may name an existing conversation (restart).
		// The log only ever grows: the new turn is appended to whatever is
		// already recorded.
		chat, err := s.loadChat(bgCtx, identity, chatId)
		if err != nil {
			s.sealWithError(bgCtx, identity, chatId, &state, progress, err)
			return
		}
		if chat == nil {
			chat = &entity.Chat{
				Id:        chatId,
				UserId:    identity.UserId,
				CreatedAt: time.Now(),
			}
		}
		chat.Messages = append(chat.Messages, conversation.NewToolTurn(uuid.New().String(), conversation.ToolGeneratedWorkout, state))

		if err := s.saveChat(bgCtx, identity, chat); err != nil {
			s.sealWithError(bgCtx, identity, chatId, &state, progress, err)
			return
		}

		s.publishEvent(bgCtx, events.WorkoutGenerated, identity, chat.Id, &state)
		if err := progress.Done(constant.ProgressGenerated); err != nil {
			s.logger.Warn("WorkoutService", "Progress channel already sealed", map[string]interface{}{"thread_id": threadId})
		}
	}()

	return &dto.GenerateWorkoutResponse{
		ChatId: chatId,
		Entry: &conversation.ViewEntry{
			ID:    uuid.New().String(),
			Stage: conversation.ToolGeneratedWorkout,
			Input: &input,
		},
		Progress: progressSnapshot(threadId, progress),
	}, nil
}

// AdvanceGeneration folds the user's feedback and alternative picks into
// the session, records the userMessage turn synchronously, and resumes the
// remote agent from its own checkpoint.
func (s *workoutService) AdvanceGeneration(ctx context.Context, identity Identity, request *dto.AdvanceWorkoutRequest) (*dto.GenerateWorkoutResponse, error) {
	if err := serverutils.ValidateRequest(request); err != nil {
		return nil, err
	}

	threadId := request.ChatId.String()
	if s.progressRepo.InFlight(threadId) {
		return nil, fmt.Errorf("generation already in flight for chat %s: %w", threadId, serverutils.ErrConflict)
	}

	chat, err := s.loadChat(ctx, identity, request.ChatId)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("chat %s: %w", threadId, serverutils.ErrNotFound)
	}

	lastState, ok := conversation.LastState(chat.Messages)
	if !ok {
		return nil, fmt.Errorf("chat %s has no session state: %w", threadId, serverutils.ErrNotFound)
	}

	// Working copy: overlay of the defaults with the recorded state (the
	// narrowing happened when the log was decoded), detached from the log
	// entry so the merge below cannot rewrite history.
	state := lastState
	state.CurrentWorkout = lastState.CurrentWorkout.Clone()
	state.CreatedWorkouts = make([]workout.Workout, len(lastState.CreatedWorkouts))
	for i, w := range lastState.CreatedWorkouts {
		state.CreatedWorkouts[i] = w.Clone()
	}
	state.UserFeedback = request.UserFeedback
	state.ThreadID = threadId

	switch {
	case request.CurrentWorkout != nil:
		state.CurrentWorkout = request.CurrentWorkout
	case len(request.Selections) > 0:
		if err := workout.ValidateSelections(state.CurrentWorkout, request.Selections); err != nil {
			return nil, fmt.Errorf("%w: %s", serverutils.ErrConflict, err.Error())
		}
		workout.MergeAlternatives(state.CurrentWorkout, request.Selections)
	}

	// The userMessage turn is appended and persisted before the agent is
	// invoked so the agent's durable read observes the latest user input.
	chat.Messages = append(chat.Messages, conversation.NewToolTurn(uuid.New().String(), conversation.ToolUserMessage, state))
	if err := s.saveChat(ctx, identity, chat); err != nil {
		return nil, err
	}

	continuing := request.UserFeedback == workout.FeedbackContinue
	initialText := constant.ProgressRevising
	runningText := constant.ProgressRevisingDetailed
	doneText := constant.ProgressRevised
	if continuing {
		initialText = constant.ProgressNextDay
		runningText = constant.ProgressNextDayDetailed
		doneText = constant.ProgressNextDayDone
	}

	progress := stream.New(initialText)
	s.progressRepo.Save(threadId, progress)

	go func() {
		bgCtx := context.Background()

		time.Sleep(s.advanceDelay)

		// nil input: the runnable resumes from its checkpoint for this thread
		results, err := s.runnable.StreamEvents(bgCtx, nil, agent.Config{ThreadID: threadId, RecursionLimit: s.recursionLimit})
		if err != nil {
			s.sealWithError(bgCtx, identity, request.ChatId, &state, progress, err)
			return
		}

		if err := s.foldStream(results, &state, progress, runningText); err != nil {
			s.sealWithError(bgCtx, identity, request.ChatId, &state, progress, err)
			return
		}

		toolName := conversation.ToolGeneratedWorkout
		eventType := events.WorkoutRevised
		if continuing {
			eventType = events.WorkoutGenerated
		}
		if state.Done {
			toolName = conversation.ToolFinalWorkouts
			eventType = events.WorkoutFinalized
		}

		chat.Messages = append(chat.Messages, conversation.NewToolTurn(uuid.New().String(), toolName, state))
		if err := s.saveChat(bgCtx, identity, chat); err != nil {
			s.sealWithError(bgCtx, identity, request.ChatId, &state, progress, err)
			return
		}

		s.publishEvent(bgCtx, eventType, identity, chat.Id, &state)
		if err := progress.Done(doneText); err != nil {
			s.logger.Warn("WorkoutService", "Progress channel already sealed", map[string]interface{}{"thread_id": threadId})
		}
	}()

	stage := "revisedWorkout"
	if continuing {
		stage = conversation.ToolGeneratedWorkout
	}

	return &dto.GenerateWorkoutResponse{
		ChatId: request.ChatId,
		Entry: &conversation.ViewEntry{
			ID:    uuid.New().String(),
			Stage: stage,
		},
		Progress: progressSnapshot(threadId, progress),
	}, nil
}

// foldStream consumes the runnable's event stream sequentially, shallow
// merging every output payload into the local state. Keys the state schema
// does not know are dropped on purpose.
func (s *workoutService) foldStream(results <-chan agent.Result, state *workout.State, progress *stream.Streamable, runningText string) error {
	for result := range results {
		if result.Err != nil {
			return result.Err
		}
		if result.Event == nil {
			continue
		}
		if out := result.Event.Data.Output; len(out) > 0 {
			if err := state.ApplyDelta(out); err != nil {
				s.logger.Warn("WorkoutService", "Dropping malformed state delta", map[string]interface{}{
					"thread_id": state.ThreadID,
					"error":     err.Error(),
				})
			}
		}
		if len(state.CreatedWorkouts) > 0 {
			if err := progress.Update(runningText); err != nil {
				return err
			}
		}
	}
	return nil
}

// sealWithError guarantees the progress channel never stays pending: a
// failed stream seals it with an error indicator, emits the failure event,
// and leaves the log untouched, so the session stays resumable.
func (s *workoutService) sealWithError(ctx context.Context, identity Identity, chatId uuid.UUID, state *workout.State, progress *stream.Streamable, err error) {
	threadId := chatId.String()
	s.logger.Error("WorkoutService", "Remote stream failed", map[string]interface{}{
		"thread_id": threadId,
		"error":     err.Error(),
	})
	if sealErr := progress.Fail(fmt.Errorf("%s: %w", constant.ProgressFailed, err)); sealErr != nil {
		s.logger.Warn("WorkoutService", "Progress channel already sealed", map[string]interface{}{"thread_id": threadId})
	}
	s.publishEvent(ctx, events.WorkoutFailed, identity, chatId, state)
}

func (s *workoutService) loadChat(ctx context.Context, identity Identity, chatId uuid.UUID) (*entity.Chat, error) {
	if !identity.Resolved() {
		chat, found := s.memChats.Get(chatId.String())
		if !found {
			return nil, nil
		}
		return chat, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.UserOwnedBy{UserID: identity.UserId},
	)
}

// saveChat persists the full updated log once per completed orchestrator
// turn. Without a resolved identity the chat only lives in process memory.
func (s *workoutService) saveChat(ctx context.Context, identity Identity, chat *entity.Chat) error {
	if chat.Title == "" {
		chat.Title = chatTitle(chat)
	}
	if chat.Path == "" {
		chat.Path = "/chat/" + chat.Id.String()
	}

	if !identity.Resolved() {
		s.memChats.Save(chat)
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatRepository().Save(ctx, chat)
}

// chatTitle defaults to the title recorded with the first turn's input, or
// a synthesized one.
func chatTitle(chat *entity.Chat) string {
	if len(chat.Messages) > 0 {
		if payload := chat.Messages[0].ToolPayload(); payload != nil && payload.State.Input != nil {
			if payload.State.Input.Title != "" {
				return payload.State.Input.Title
			}
		}
	}
	return "Workout " + chat.Id.String()
}

func (s *workoutService) publishEvent(ctx context.Context, eventType string, identity Identity, chatId uuid.UUID, state *workout.State) {
	payload := dto.WorkoutEventMessage{
		Type:           eventType,
		ChatId:         chatId,
		UserId:         identity.UserId,
		Email:          identity.Email,
		Day:            state.Day,
		WorkoutsInWeek: state.WorkoutsInWeek,
		Done:           state.Done,
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("WorkoutService", "Failed to marshal event payload", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.logger.Warn("WorkoutService", "Failed to publish workout event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}

	// Mirror to NATS for other instances; auxiliary, so failures only warn.
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: eventType,
			Data: map[string]interface{}{
				"chat_id": chatId,
				"user_id": identity.UserId,
				"day":     state.Day,
				"done":    state.Done,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("WorkoutService", "Failed to publish NATS event", map[string]interface{}{
				"type":  eventType,
				"error": err.Error(),
			})
		}
	}
}

func progressSnapshot(threadId string, progress *stream.Streamable) dto.ProgressDTO {
	snapshot := progress.Value()
	out := dto.ProgressDTO{
		ThreadId: threadId,
		Sealed:   snapshot.Sealed,
	}
	if text, ok := snapshot.Value.(string); ok {
		out.Text = text
	}
	if snapshot.Err != nil {
		out.Error = snapshot.Err.Error()
	}
	return out
}

func (s *workoutService) GetAllChats(ctx context.Context, identity Identity) ([]*dto.GetAllChatsResponse, error) {
	if !identity.Resolved() {
		return []*dto.GetAllChatsResponse{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: identity.UserId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllChatsResponse, 0, len(chats))
	for _, c := range chats {
		response = append(response, &dto.GetAllChatsResponse{
			Id:        c.Id,
			Title:     c.Title,
			Path:      c.Path,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return response, nil
}

// GetChatHistory is the only supported read surface: the log projected
// into view entries, never the raw turn contents.
func (s *workoutService) GetChatHistory(ctx context.Context, identity Identity, chatId uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	chat, err := s.loadChat(ctx, identity, chatId)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("chat %s: %w", chatId, serverutils.ErrNotFound)
	}

	return &dto.GetChatHistoryResponse{
		Id:      chat.Id,
		Title:   chat.Title,
		Entries: conversation.Project(chat.Id.String(), chat.Messages),
	}, nil
}

func (s *workoutService) GetProgress(threadId string) (*dto.ProgressDTO, error) {
	progress, found := s.progressRepo.Get(threadId)
	if !found {
		return nil, fmt.Errorf("no progress for thread %s: %w", threadId, serverutils.ErrNotFound)
	}
	snapshot := progressSnapshot(threadId, progress)
	return &snapshot, nil
}

func (s *workoutService) DeleteChat(ctx context.Context, identity Identity, chatId uuid.UUID) error {
	threadId := chatId.String()
	if !identity.Resolved() {
		s.memChats.Delete(threadId)
		s.progressRepo.Delete(threadId)
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.UserOwnedBy{UserID: identity.UserId},
	)
	if err != nil {
		return err
	}
	if chat == nil {
		return fmt.Errorf("chat %s: %w", chatId, serverutils.ErrNotFound)
	}

	if err := uow.ChatRepository().Delete(ctx, chatId); err != nil {
		return err
	}
	s.progressRepo.Delete(threadId)
	return nil
}
