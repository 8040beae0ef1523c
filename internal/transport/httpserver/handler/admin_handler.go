package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-feed-service/internal/app/service"
	"property-feed-service/internal/domain"
	"property-feed-service/internal/transport/httpserver/dto"
	"property-feed-service/internal/validator"
)

// Scheduler is the slice of the ingestion scheduler the admin API needs.
type Scheduler interface {
	TriggerNow() (*service.RefreshResult, error)
	UpdateSchedule(expression string) error
	Status() domain.ScheduleState
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	scheduler Scheduler
	cache     domain.CacheStore
	validator *validator.Validator
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(scheduler Scheduler, cache domain.CacheStore, v *validator.Validator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		scheduler: scheduler,
		cache:     cache,
		validator: v,
		logger:    logger,
	}
}

// TriggerRefresh handles POST /api/v1/admin/refresh
//
// A refresh already in flight is refused with 409, never queued.
func (h *AdminHandler) TriggerRefresh(c *fiber.Ctx) error {
	h.logger.Info("manual refresh triggered")

	result, err := h.scheduler.TriggerNow()
	if err != nil {
		if errors.Is(err, domain.ErrRefreshRunning) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: "a refresh cycle is already running",
				Code:  "REFRESH_RUNNING",
			})
		}

		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "REFRESH_FAILED",
		})
	}

	return c.JSON(dto.FromRefreshResult(result))
}

// RefreshStatus handles GET /api/v1/admin/refresh/status
func (h *AdminHandler) RefreshStatus(c *fiber.Ctx) error {
	return c.JSON(dto.FromScheduleState(h.scheduler.Status()))
}

// UpdateSchedule handles PUT /api/v1/admin/schedule
func (h *AdminHandler) UpdateSchedule(c *fiber.Ctx) error {
	var req dto.UpdateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	if err := h.scheduler.UpdateSchedule(req.Expression); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SCHEDULE",
		})
	}

	h.logger.Info("refresh schedule updated", zap.String("expression", req.Expression))

	return c.JSON(dto.FromScheduleState(h.scheduler.Status()))
}

// CacheInfo handles GET /api/v1/admin/cache
func (h *AdminHandler) CacheInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"namespaces": h.cache.Namespaces(),
	})
}

// FlushNamespace handles POST /api/v1/admin/cache/:namespace/flush
func (h *AdminHandler) FlushNamespace(c *fiber.Ctx) error {
	namespace := c.Params("namespace")
	if namespace == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "namespace is required",
			Code:  "MISSING_NAMESPACE",
		})
	}

	if err := h.cache.Flush(c.Context(), namespace); err != nil {
		if errors.Is(err, domain.ErrUnknownNamespace) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "unknown cache namespace",
				Code:  "UNKNOWN_NAMESPACE",
			})
		}

		h.logger.Error("cache flush failed", zap.String("namespace", namespace), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to flush namespace",
			Code:  "INTERNAL_ERROR",
		})
	}

	h.logger.Info("cache namespace flushed", zap.String("namespace", namespace))

	return c.JSON(dto.FlushResponse{
		Namespace: namespace,
		Flushed:   true,
	})
}
