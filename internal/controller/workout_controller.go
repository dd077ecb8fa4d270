package controller

import (
	"trainers-ally-be/internal/dto"
	"trainers-ally-be/internal/pkg/serverutils"
	"trainers-ally-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IWorkoutController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Advance(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
}

type workoutController struct {
	workoutService service.IWorkoutService
}

func NewWorkoutController(workoutService service.IWorkoutService) IWorkoutController {
	return &workoutController{
		workoutService: workoutService,
	}
}

func (c *workoutController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workout/v1")
	// Optional auth: anonymous sessions work, persistence just stays
	// in-process for them.
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Post("generate", c.Generate)
	h.Post("advance", c.Advance)
	h.Get("progress/:threadId", c.Progress)
}

// identityFromLocals builds the caller identity; missing or malformed
// token claims resolve to the zero identity.
func identityFromLocals(ctx *fiber.Ctx) service.Identity {
	identity := service.Identity{}
	if userIdStr, ok := ctx.Locals("user_id").(string); ok {
		if userId, err := uuid.Parse(userIdStr); err == nil {
			identity.UserId = userId
		}
	}
	if email, ok := ctx.Locals("email").(string); ok {
		identity.Email = email
	}
	return identity
}

func (c *workoutController) Generate(ctx *fiber.Ctx) error {
	identity := identityFromLocals(ctx)

	var req dto.GenerateWorkoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.workoutService.StartGeneration(ctx.Context(), identity, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation started", res))
}

func (c *workoutController) Advance(ctx *fiber.Ctx) error {
	identity := identityFromLocals(ctx)

	var req dto.AdvanceWorkoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.workoutService.AdvanceGeneration(ctx.Context(), identity, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation advanced", res))
}

// Progress is the polling fallback for clients that cannot hold the
// websocket open.
func (c *workoutController) Progress(ctx *fiber.Ctx) error {
	threadId := ctx.Params("threadId")

	res, err := c.workoutService.GetProgress(threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}
