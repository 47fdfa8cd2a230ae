package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/usecase"
)

type OAuthHandler struct {
	usecase usecase.OAuthUsecase
	logger  *zap.Logger
}

func NewOAuthHandler(usecase usecase.OAuthUsecase, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// userIDFrom resolves the journal user from the user_id query parameter, or
// the X-User-ID header when the upstream auth proxy sets one. This service
// does not authenticate; it only scopes queries by the id it is handed.
func userIDFrom(c *fiber.Ctx) (int64, error) {
	raw := c.Query("user_id")
	if raw == "" {
		raw = c.Get("X-User-ID")
	}
	if raw == "" {
		return 0, errors.New("user_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("user_id is invalid")
	}
	return id, nil
}

// Authorize godoc
// @Summary Start the WHOOP authorization flow
// @Description Generates a single-use state and returns the WHOOP consent URL.
//
//	Pass redirect=true to send the browser there directly.
//
// @Tags oauth
// @Param user_id query int true "Journal user id"
// @Param redirect query bool false "Redirect instead of returning the URL"
// @Success 200 {object} entity.APIResponse
// @Success 302 "Redirect to WHOOP OAuth"
// @Failure 400 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/authorize [get]
func (h *OAuthHandler) Authorize(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	authURL, err := h.usecase.Initiate(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to initiate OAuth flow", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	if c.QueryBool("redirect") {
		return c.Redirect(authURL, fiber.StatusFound)
	}

	return c.JSON(entity.NewSuccessResponse(map[string]string{
		"authorization_url": authURL,
	}, "Authorization URL generated"))
}

// Callback godoc
// @Summary OAuth callback receiving the WHOOP authorization code
// @Description Consumes the state, exchanges the code, and stores the connection
// @Tags oauth
// @Param code query string true "Authorization code from WHOOP"
// @Param state query string true "State issued by the authorize endpoint"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /redirect/whoop [get]
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	code := c.Query("code")
	state := c.Query("state")

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("OAuth callback returned error",
			zap.String("error", errParam),
		)
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("OAUTH_DENIED", errParam),
		)
	}

	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Code and state are required"),
		)
	}

	summary, err := h.usecase.HandleCallback(ctx, code, state)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidState) {
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("INVALID_STATE", "State is missing, expired, or already used"),
			)
		}
		h.logger.Error("OAuth callback failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(summary, "WHOOP account connected"))
}

// Disconnect godoc
// @Summary Remove the WHOOP connection
// @Description Revokes the grant best-effort and deletes tokens, caches, and wearable session data
// @Tags oauth
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/connection [delete]
func (h *OAuthHandler) Disconnect(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	removed, err := h.usecase.Disconnect(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotConnected) {
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("NOT_CONNECTED", "No WHOOP connection for this user"),
			)
		}
		h.logger.Error("Failed to disconnect WHOOP account", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(map[string]bool{
		"removed": removed,
	}, "WHOOP connection removed"))
}
