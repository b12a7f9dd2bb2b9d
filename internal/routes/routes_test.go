package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranav4399/loans/internal/chatbot"
	"github.com/Pranav4399/loans/internal/storage"
)

func newRoutedApp(t *testing.T) *fiber.App {
	t.Helper()

	store := storage.NewMemoryStore()
	bot := chatbot.NewBot(store, nil, chatbot.NewLeadFlow(chatbot.DefaultPolicy()))

	app := fiber.New()
	SetupRoutes(app, store, bot)
	return app
}

func postTestWebhook(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/test/whatsapp",
		strings.NewReader(`{"from":"+919812345678","message":"YES"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestTestWebhookNotRegisteredInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISABLE_WEBHOOK_VALIDATION", "")

	resp := postTestWebhook(t, newRoutedApp(t))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTestWebhookAvailableInDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	resp := postTestWebhook(t, newRoutedApp(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
