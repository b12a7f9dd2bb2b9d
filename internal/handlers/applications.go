package handlers

import (
	"errors"
	"log"
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/services"
	"github.com/Pranav4399/loans/internal/storage"
)

// ApplicationHandler serves the dashboard's loan-application endpoints.
type ApplicationHandler struct {
	leads *services.LeadService
}

// NewApplicationHandler creates an application handler.
func NewApplicationHandler(leads *services.LeadService) *ApplicationHandler {
	return &ApplicationHandler{leads: leads}
}

// GetApplications lists loan applications with optional filters.
func (h *ApplicationHandler) GetApplications(c *fiber.Ctx) error {
	query := &models.ApplicationQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	apps, total, err := h.leads.ListApplications(query)
	if err != nil {
		log.Printf("Error listing applications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch applications",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    apps,
		"pagination": fiber.Map{
			"total": total,
			"page":  query.Page,
			"limit": query.Limit,
			"pages": int(math.Ceil(float64(total) / float64(query.Limit))),
		},
	})
}

// GetApplication fetches a single application by its public ID.
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	app, err := h.leads.GetApplication(c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Application not found",
			})
		}
		log.Printf("Error fetching application %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch application",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    app,
	})
}

// UpdateApplicationStatus moves an application to another status.
func (h *ApplicationHandler) UpdateApplicationStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if !models.ValidApplicationStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Status must be one of: pending, submitted, approved, rejected",
		})
	}

	if err := h.leads.UpdateApplicationStatus(c.Params("id"), req.Status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Application not found",
			})
		}
		log.Printf("Error updating application %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update application",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Application status updated",
	})
}
