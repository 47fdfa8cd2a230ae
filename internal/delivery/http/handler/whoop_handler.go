package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"fitjournal/internal/domain/entity"
	"fitjournal/internal/usecase"
)

// WhoopHandler serves the sync, matching, and recovery endpoints.
type WhoopHandler struct {
	syncUsecase  usecase.SyncUsecase
	matchUsecase usecase.MatchUsecase
	autoUsecase  usecase.AutoSessionUsecase
	logger       *zap.Logger
}

func NewWhoopHandler(
	syncUsecase usecase.SyncUsecase,
	matchUsecase usecase.MatchUsecase,
	autoUsecase usecase.AutoSessionUsecase,
	logger *zap.Logger,
) *WhoopHandler {
	return &WhoopHandler{
		syncUsecase:  syncUsecase,
		matchUsecase: matchUsecase,
		autoUsecase:  autoUsecase,
		logger:       logger,
	}
}

type SyncRequest struct {
	DaysBack int `json:"days_back"`
}

// Sync godoc
// @Summary Sync recent WHOOP data on demand
// @Description Pulls workouts and recovery for the requested window into the local cache
// @Tags whoop
// @Accept json
// @Produce json
// @Param request body SyncRequest false "Sync window, defaults to 7 days"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/sync [post]
func (h *WhoopHandler) Sync(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	req := SyncRequest{DaysBack: 7}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
			)
		}
	}
	if req.DaysBack <= 0 {
		req.DaysBack = 7
	}

	workouts, err := h.syncUsecase.SyncWorkouts(ctx, userID, req.DaysBack)
	if err != nil {
		return h.syncError(c, err)
	}
	recovery, err := h.syncUsecase.SyncRecovery(ctx, userID, req.DaysBack)
	if err != nil {
		return h.syncError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(map[string]interface{}{
		"workouts": workouts,
		"recovery": recovery,
	}, "Sync completed"))
}

// LatestRecovery godoc
// @Summary Latest recovery cycle
// @Description Returns the most recent cached recovery, resyncing first when stale
// @Tags whoop
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/recovery/latest [get]
func (h *WhoopHandler) LatestRecovery(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	latest, err := h.syncUsecase.GetLatestRecovery(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrNoRecoveryData):
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("NO_RECOVERY_DATA", "No recovery data available"),
			)
		case errors.Is(err, entity.ErrNotConnected):
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("NOT_CONNECTED", "No WHOOP connection for this user"),
			)
		}
		h.logger.Error("Failed to load latest recovery", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(latest, "Latest recovery retrieved"))
}

// Matches godoc
// @Summary Candidate workouts for a session
// @Description Lists cached workouts overlapping the session, strongest overlap first
// @Tags whoop
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/sessions/{id}/matches [get]
func (h *WhoopHandler) Matches(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid session id"),
		)
	}

	matches, err := h.matchUsecase.FindMatches(ctx, userID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("SESSION_NOT_FOUND", "Session not found"),
			)
		case errors.Is(err, entity.ErrNotConnected):
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("NOT_CONNECTED", "No WHOOP connection for this user"),
			)
		}
		h.logger.Error("Failed to find matches", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(matches, "Matches retrieved"))
}

type ApplyRequest struct {
	WorkoutID int64 `json:"workout_id"`
}

// Apply godoc
// @Summary Apply a workout to a session
// @Description Copies strain, calories, and heart rates onto the session and links the workout
// @Tags whoop
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param request body ApplyRequest true "Workout to apply"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/sessions/{id}/apply [post]
func (h *WhoopHandler) Apply(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid session id"),
		)
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil || req.WorkoutID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "workout_id is required"),
		)
	}

	session, err := h.matchUsecase.ApplyWorkout(ctx, userID, sessionID, req.WorkoutID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("SESSION_NOT_FOUND", "Session not found"),
			)
		case errors.Is(err, entity.ErrWorkoutNotFound):
			return c.Status(fiber.StatusNotFound).JSON(
				entity.NewErrorResponse("WORKOUT_NOT_FOUND", "Cached workout not found"),
			)
		case errors.Is(err, entity.ErrWorkoutLinked):
			return c.Status(fiber.StatusConflict).JSON(
				entity.NewErrorResponse("WORKOUT_LINKED", "Workout is already linked to a session"),
			)
		}
		h.logger.Error("Failed to apply workout", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(session, "Workout applied"))
}

// AutoCreate godoc
// @Summary Create sessions from unlinked workouts
// @Description Turns unlinked cached workouts into review-flagged journal sessions
// @Tags whoop
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/whoop/sessions/auto-create [post]
func (h *WhoopHandler) AutoCreate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := userIDFrom(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", err.Error()),
		)
	}

	result, err := h.autoUsecase.AutoCreateSessions(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to auto-create sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Auto-create completed"))
}

func (h *WhoopHandler) syncError(c *fiber.Ctx, err error) error {
	if errors.Is(err, entity.ErrNotConnected) {
		return c.Status(fiber.StatusNotFound).JSON(
			entity.NewErrorResponse("NOT_CONNECTED", "No WHOOP connection for this user"),
		)
	}
	h.logger.Error("Sync failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(
		entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
	)
}
