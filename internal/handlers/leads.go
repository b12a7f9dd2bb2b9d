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

// LeadHandler serves the dashboard's lead endpoints.
type LeadHandler struct {
	leads *services.LeadService
}

// NewLeadHandler creates a lead handler.
func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// GetLeads lists leads with optional status/category filters, free-text
// search and pagination.
func (h *LeadHandler) GetLeads(c *fiber.Ctx) error {
	query := &models.LeadQuery{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	leads, total, err := h.leads.ListLeads(query)
	if err != nil {
		log.Printf("Error listing leads: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch leads",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    leads,
		"pagination": fiber.Map{
			"total": total,
			"page":  query.Page,
			"limit": query.Limit,
			"pages": int(math.Ceil(float64(total) / float64(query.Limit))),
		},
	})
}

// GetLeadStats returns the per-category lead counts.
func (h *LeadHandler) GetLeadStats(c *fiber.Ctx) error {
	stats, err := h.leads.GetStats()
	if err != nil {
		log.Printf("Error fetching lead stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch lead statistics",
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"loans":       stats.Loans,
		"insurance":   stats.Insurance,
		"mutualFunds": stats.MutualFunds,
		"total":       stats.Total,
	})
}

// GetLead fetches a single lead by its public ID.
func (h *LeadHandler) GetLead(c *fiber.Ctx) error {
	lead, err := h.leads.GetLead(c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Lead not found",
			})
		}
		log.Printf("Error fetching lead %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch lead",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    lead,
	})
}

// UpdateLeadStatus moves a lead to another workflow status.
func (h *LeadHandler) UpdateLeadStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if !models.ValidLeadStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Status must be one of: pending, contacted, converted, closed",
		})
	}

	if err := h.leads.UpdateLeadStatus(c.Params("id"), req.Status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Lead not found",
			})
		}
		log.Printf("Error updating lead %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update lead",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Lead status updated",
	})
}
