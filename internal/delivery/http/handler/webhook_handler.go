package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/infrastructure/whoop"
	"fitjournal/internal/usecase"
)

type WebhookHandler struct {
	usecase usecase.WebhookUsecase
	logger  *zap.Logger
}

func NewWebhookHandler(usecase usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// WhoopCallback godoc
// @Summary WHOOP webhook callback
// @Description Verifies the signature and enqueues a background sync for the affected user
// @Tags webhook
// @Accept json
// @Produce json
// @Success 200 {object} entity.WebhookResult
// @Failure 400 {object} entity.WebhookResult
// @Failure 401 {object} entity.WebhookResult
// @Router /webhook/whoop [post]
func (h *WebhookHandler) WhoopCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	timestamp := c.Get(whoop.HeaderSignatureTimestamp)
	signature := c.Get(whoop.HeaderSignature)
	body := c.Body()

	result, err := h.usecase.Process(ctx, timestamp, body, signature)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrBadSignature):
			h.logger.Warn("Rejected webhook with bad signature")
			return c.Status(fiber.StatusUnauthorized).JSON(entity.WebhookResult{
				Status: "rejected",
				Reason: "invalid signature",
			})
		case errors.Is(err, entity.ErrMalformedPayload):
			return c.Status(fiber.StatusBadRequest).JSON(entity.WebhookResult{
				Status: "rejected",
				Reason: "malformed payload",
			})
		default:
			h.logger.Error("Failed to process webhook", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(entity.WebhookResult{
				Status: "error",
			})
		}
	}

	return c.JSON(result)
}
