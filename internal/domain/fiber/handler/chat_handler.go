package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gramsetu/loan-advisor/internal/dto"
	"github.com/gramsetu/loan-advisor/internal/middleware"
	"github.com/gramsetu/loan-advisor/internal/usecase"
	"github.com/gramsetu/loan-advisor/internal/util"
)

type ChatHandler struct {
	uc *usecase.ChatUsecase
}

func NewChatHandler(uc *usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

func (h *ChatHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/chat", middleware.Auth(), middleware.RateLimiter(20, 1*time.Minute), h.Chat)
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	resp, err := h.uc.Chat(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
