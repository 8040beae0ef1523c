// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-feed-service/internal/app/service"
	"property-feed-service/internal/domain"
	"property-feed-service/internal/transport/httpserver/dto"
)

// PropertyHandler handles listing-related HTTP requests.
type PropertyHandler struct {
	service *service.PropertyService
	logger  *zap.Logger
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(svc *service.PropertyService, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/v1/properties
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	properties := h.service.List(c.Context())

	return c.JSON(dto.FromDomainProperties(properties))
}

// GetByID handles GET /api/v1/properties/:id
func (h *PropertyHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	property, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "property not found",
				Code:  "NOT_FOUND",
			})
		}

		h.logger.Error("get by id failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get property",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromDomainProperty(property))
}

// Images handles GET /api/v1/properties/:id/images
func (h *PropertyHandler) Images(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	images, err := h.service.Images(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "property not found",
				Code:  "NOT_FOUND",
			})
		}

		h.logger.Error("get images failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get images",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(fiber.Map{
		"id":     id,
		"images": dto.FromDomainImages(images),
	})
}
