package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Pranav4399/loans/internal/chatbot"
)

// WhatsAppHandler handles inbound WhatsApp webhook requests from Twilio.
type WhatsAppHandler struct {
	bot *chatbot.Bot
}

// NewWhatsAppHandler creates a webhook handler around the chatbot.
func NewWhatsAppHandler(bot *chatbot.Bot) *WhatsAppHandler {
	return &WhatsAppHandler{bot: bot}
}

// TwilioWebhookPayload is the form body Twilio posts for an inbound
// WhatsApp message.
type TwilioWebhookPayload struct {
	MessageSid  string `form:"MessageSid"`
	AccountSid  string `form:"AccountSid"`
	From        string `form:"From"` // "whatsapp:+919876543210"
	To          string `form:"To"`
	Body        string `form:"Body"`
	WaId        string `form:"WaId"`
	ProfileName string `form:"ProfileName"`
	NumMedia    string `form:"NumMedia"`
}

// HandleWebhook processes one inbound message. Malformed payloads are
// rejected before any conversation state is touched; processing failures
// return 500 so Twilio retries per its own policy.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if payload.From == "" || payload.Body == "" {
		// Status callbacks and media-only messages land here too; only
		// text messages drive the conversation.
		log.Printf("Ignoring webhook without sender/body (sid=%s)", payload.MessageSid)
		return c.Status(fiber.StatusBadRequest).SendString("Missing required fields")
	}

	log.Printf("📱 WhatsApp message from %s: %s", payload.From, payload.Body)

	if _, err := h.bot.ProcessMessage(payload.From, payload.Body); err != nil {
		log.Printf("Error processing message from %s: %v", payload.From, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	// Twilio expects TwiML; an empty response acknowledges receipt
	// without sending an additional reply.
	c.Set("Content-Type", "text/xml")
	return c.SendString(`<?xml version="1.0" encoding="UTF-8"?><Response></Response>`)
}

// TestWebhookPayload is the JSON shape for the development test endpoint.
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes a message without Twilio and returns the
// generated reply, for development and manual testing.
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook from %s: %s", payload.From, payload.Message)

	reply, err := h.bot.ProcessMessage(payload.From, payload.Message)
	if err != nil {
		log.Printf("Error processing test message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": reply,
	})
}
