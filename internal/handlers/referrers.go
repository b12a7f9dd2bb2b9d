package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/storage"
	"github.com/Pranav4399/loans/internal/utils"
	"github.com/Pranav4399/loans/internal/validation"
)

// ReferrerHandler manages referral partners.
type ReferrerHandler struct {
	store storage.Store
}

// NewReferrerHandler creates a referrer handler.
func NewReferrerHandler(store storage.Store) *ReferrerHandler {
	return &ReferrerHandler{store: store}
}

// CreateReferrer registers a new referral partner.
func (h *ReferrerHandler) CreateReferrer(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
		Email       string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Name is required",
		})
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	if !validation.Phone(phone, validation.DefaultPhonePolicy()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid phone number",
		})
	}
	if req.Email != "" && !validation.Email(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid email address",
		})
	}

	referrer, err := h.store.CreateReferrer(&models.Referrer{
		Name:        req.Name,
		PhoneNumber: phone,
		Email:       req.Email,
		IsActive:    true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "A referrer with this phone number already exists",
			})
		}
		log.Printf("Error creating referrer: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create referrer",
		})
	}

	log.Printf("✅ Referrer registered: %s (%s)", referrer.Name, referrer.ReferrerID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    referrer,
	})
}

// GetReferrer fetches one referrer by its public ID.
func (h *ReferrerHandler) GetReferrer(c *fiber.Ctx) error {
	referrer, err := h.store.GetReferrerByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Referrer not found",
			})
		}
		log.Printf("Error fetching referrer %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch referrer",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    referrer,
	})
}

// GetReferrerApplications lists the loan applications credited to a referrer.
func (h *ReferrerHandler) GetReferrerApplications(c *fiber.Ctx) error {
	referrerID := c.Params("id")
	if _, err := h.store.GetReferrerByID(referrerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Referrer not found",
			})
		}
		log.Printf("Error fetching referrer %s: %v", referrerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch referrer",
		})
	}

	apps, err := h.store.GetReferrerApplications(referrerID)
	if err != nil {
		log.Printf("Error fetching applications for referrer %s: %v", referrerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch referrer applications",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    apps,
		"count":   len(apps),
	})
}
