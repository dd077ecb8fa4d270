package service

import (
	"context"
	"encoding/json"

	"trainers-ally-be/internal/dto"
	"trainers-ally-be/internal/pkg/logger"
	"trainers-ally-be/internal/pkg/mailer"
	internalWS "trainers-ally-be/internal/websocket"
	"trainers-ally-be/pkg/events"
	pktNats "trainers-ally-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	StartEventAudit() error
}

// consumerService drains the in-process event bus: every completed
// orchestrator turn is forwarded to the owner's live websocket
// connections, and a finalized plan additionally triggers the plan-ready
// email.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	hub          *internalWS.Hub
	emailService mailer.IEmailService
	natsSub      *pktNats.Subscriber
	logger       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *internalWS.Hub,
	emailService mailer.IEmailService,
	natsSub *pktNats.Subscriber,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		hub:          hub,
		emailService: emailService,
		natsSub:      natsSub,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// StartEventAudit attaches a durable JetStream consumer over the mirrored
// lifecycle events and writes them to the structured log. The work-queue
// stream means exactly one instance per cluster records each event.
func (cs *consumerService) StartEventAudit() error {
	if cs.natsSub == nil {
		return nil
	}
	return cs.natsSub.Subscribe("workouts.>", "workout-event-audit", func(ctx context.Context, event events.Event) error {
		cs.logger.Info("ConsumerService", "Workout lifecycle event", map[string]interface{}{
			"subject": event.EventType(),
			"payload": event.Payload(),
		})
		return nil
	})
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.WorkoutEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads never become valid on retry
		return
	}

	cs.logger.Info("ConsumerService", "Processing workout event", map[string]interface{}{
		"type":    payload.Type,
		"chat_id": payload.ChatId,
		"day":     payload.Day,
	})

	// Sessions without a resolved identity have no address to deliver to.
	if payload.UserId != uuid.Nil && cs.hub != nil {
		cs.hub.Send(payload.UserId, payload.Type, payload)
	}

	if payload.Type == events.WorkoutFinalized && payload.Email != "" && cs.emailService != nil {
		chatPath := "/chat/" + payload.ChatId.String()
		if err := cs.emailService.SendPlanReady(payload.Email, chatPath, payload.WorkoutsInWeek); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to send plan-ready email", map[string]interface{}{
				"chat_id": payload.ChatId,
				"error":   err.Error(),
			})
			// Delivery already happened over the socket; do not retry the
			// whole event for a mail failure.
		}
	}

	msg.Ack()
}
