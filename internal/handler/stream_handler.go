package handler

import (
	"os"
	"time"

	"trainers-ally-be/internal/dto"
	"trainers-ally-be/internal/pkg/logger"
	"trainers-ally-be/internal/repository/memory"
	internalWS "trainers-ally-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StreamHandler exposes the two live surfaces: the per-user workout event
// feed and the per-thread progress stream.
type StreamHandler struct {
	hub          *internalWS.Hub
	progressRepo *memory.ProgressRepository
	logger       logger.ILogger
}

func NewStreamHandler(hub *internalWS.Hub, progressRepo *memory.ProgressRepository, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		hub:          hub,
		progressRepo: progressRepo,
		logger:       log,
	}
}

// ServeWs upgrades to the authenticated event feed. Events for a user are
// fanned out to every device holding a connection here.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	// Query param first (browser standard), Authorization header second.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("StreamHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("StreamHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// ServeProgress streams the live progress text of one generation until it
// seals. The thread id is the capability: whoever started the generation
// holds it, so there is no separate auth gate here.
func (h *StreamHandler) ServeProgress(c *fiber.Ctx) error {
	threadId := c.Params("threadId")
	progress, found := h.progressRepo.Get(threadId)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No progress for thread"})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		updates := progress.Subscribe()
		for update := range updates {
			snapshot := dto.ProgressDTO{
				ThreadId: threadId,
				Sealed:   update.Sealed,
			}
			if text, ok := update.Value.(string); ok {
				snapshot.Text = text
			}
			if update.Err != nil {
				snapshot.Error = update.Err.Error()
			}

			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
			if update.Sealed {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	})(c)
}

func (h *StreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
	router.Get("/ws/progress/:threadId", h.ServeProgress)
}
