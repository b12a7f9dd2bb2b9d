package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranav4399/loans/internal/chatbot"
	"github.com/Pranav4399/loans/internal/storage"
)

func newWebhookTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	bot := chatbot.NewBot(store, nil, chatbot.NewLeadFlow(chatbot.DefaultPolicy()))
	handler := NewWhatsAppHandler(bot)

	app := fiber.New()
	app.Post("/webhook/whatsapp", handler.HandleWebhook)
	app.Post("/test/whatsapp", handler.HandleTestWebhook)
	return app, store
}

func postTwilioForm(t *testing.T, app *fiber.App, from, body string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", from)
	form.Set("Body", body)

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestWebhookAcknowledgesWithEmptyTwiML(t *testing.T) {
	app, store := newWebhookTestApp(t)

	resp := postTwilioForm(t, app, "whatsapp:+919812345678", "YES")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/xml")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<Response></Response>")

	// The "whatsapp:" prefix is stripped before the conversation is keyed.
	state, err := store.GetConversation("+919812345678")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "category", state.CurrentStep)
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	resp := postTwilioForm(t, app, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTestWebhookReturnsReply(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/test/whatsapp",
		strings.NewReader(`{"from":"+919812345678","message":"YES"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["response"], "financial product")
}
