package bootstrap

import (
	"context"
	"log"

	"trainers-ally-be/internal/config"
	"trainers-ally-be/internal/controller"
	"trainers-ally-be/internal/handler"
	"trainers-ally-be/internal/pkg/logger"
	"trainers-ally-be/internal/pkg/mailer"
	"trainers-ally-be/internal/repository/memory"
	"trainers-ally-be/internal/repository/unitofwork"
	"trainers-ally-be/internal/service"
	"trainers-ally-be/internal/websocket"
	"trainers-ally-be/pkg/agent"

	pktNats "trainers-ally-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WorkoutController controller.IWorkoutController
	ChatController    controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Session Storage + Remote Agent
	progressRepo := memory.NewProgressRepository()
	memChats := memory.NewChatRepository()
	runnable := agent.NewRemoteRunnable(cfg.Agent.RemoteRunnableURL)
	log.Printf("[INFO] Remote runnable at %s", cfg.Agent.RemoteRunnableURL)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Topics.WorkoutEvents, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.WorkoutEvents,
		wsHub,
		emailService,
		natsSub,
		wsLogger,
	)
	if natsSub != nil {
		go func() {
			if err := consumerService.StartEventAudit(); err != nil {
				log.Printf("[WARN] Failed to start event audit: %v", err)
			}
		}()
	}

	workoutService := service.NewWorkoutService(
		uowFactory,
		runnable,
		progressRepo,
		memChats,
		publisherService,
		natsPub,
		sysLogger,
		cfg.Agent.AdvanceDelay,
		cfg.Agent.RecursionLimit,
	)

	// 5. Handlers + Controllers
	streamHandler := handler.NewStreamHandler(wsHub, progressRepo, wsLogger)

	return &Container{
		StreamHandler:     streamHandler,
		WebSocketHub:      wsHub,
		WorkoutController: controller.NewWorkoutController(workoutService),
		ChatController:    controller.NewChatController(workoutService),

		ConsumerService: consumerService,
	}
}
