package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gramsetu/loan-advisor/internal/dto"
	"github.com/gramsetu/loan-advisor/internal/middleware"
	"github.com/gramsetu/loan-advisor/internal/usecase"
	"github.com/gramsetu/loan-advisor/internal/util"
)

type AssessmentHandler struct {
	uc *usecase.AssessmentUsecase
}

func NewAssessmentHandler(uc *usecase.AssessmentUsecase) *AssessmentHandler {
	return &AssessmentHandler{uc: uc}
}

func (h *AssessmentHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/loan-eligibility/check", middleware.Auth(), middleware.RateLimiter(10, 1*time.Minute), h.Check)
	app.Get("/assessments", middleware.Auth(), h.History)
	app.Get("/products", h.Products)
	app.Post("/products/reindex", middleware.Auth(), h.ReindexProducts)
}

// Check runs one eligibility assessment. The response body is flat (no
// envelope): clients consume it directly.
func (h *AssessmentHandler) Check(c *fiber.Ctx) error {
	var req dto.AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	result, err := h.uc.Assess(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *AssessmentHandler) History(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 10)

	items, pagination, err := h.uc.History(c.UserContext(), userID, page, pageSize)
	if err != nil {
		return err
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get assessment history",
		Data:       items,
		Pagination: pagination,
	})
}

func (h *AssessmentHandler) Products(c *fiber.Ctx) error {
	products, err := h.uc.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get loan products",
		Data:    products,
	})
}

func (h *AssessmentHandler) ReindexProducts(c *fiber.Ctx) error {
	if err := h.uc.ReindexProducts(c.UserContext()); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to reindex loan products",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success reindex loan products",
	})
}
