package controller

import (
	"trainers-ally-be/internal/pkg/serverutils"
	"trainers-ally-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatController struct {
	workoutService service.IWorkoutService
}

func NewChatController(workoutService service.IWorkoutService) IChatController {
	return &chatController{
		workoutService: workoutService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Get("", c.Index)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *chatController) Index(ctx *fiber.Ctx) error {
	identity := identityFromLocals(ctx)

	res, err := c.workoutService.GetAllChats(ctx.Context(), identity)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chats", res))
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	identity := identityFromLocals(ctx)

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chat id")
	}

	res, err := c.workoutService.GetChatHistory(ctx.Context(), identity, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	identity := identityFromLocals(ctx)

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chat id")
	}

	if err := c.workoutService.DeleteChat(ctx.Context(), identity, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chat", nil))
}
