package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/services"
	"github.com/Pranav4399/loans/internal/storage"
)

func newLeadTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	handler := NewLeadHandler(services.NewLeadService(store))

	app := fiber.New()
	app.Get("/api/leads", handler.GetLeads)
	app.Get("/api/leads/stats", handler.GetLeadStats)
	app.Get("/api/leads/:id", handler.GetLead)
	app.Patch("/api/leads/:id/status", handler.UpdateLeadStatus)
	return app, store
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestGetLeadsPaginationEnvelope(t *testing.T) {
	app, store := newLeadTestApp(t)

	for i := 0; i < 12; i++ {
		_, err := store.CreateLead(&models.Lead{
			FullName: "John Smith", ContactNumber: "+919876543210",
			Category: models.CategoryLoans, Subcategory: "Home Loan",
		})
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads?page=2&limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 5)

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 12, pagination["total"])
	assert.EqualValues(t, 2, pagination["page"])
	assert.EqualValues(t, 5, pagination["limit"])
	assert.EqualValues(t, 3, pagination["pages"])
}

func TestGetLeadsFiltersByCategory(t *testing.T) {
	app, store := newLeadTestApp(t)

	_, err := store.CreateLead(&models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)
	_, err = store.CreateLead(&models.Lead{
		FullName: "Asha Patel", ContactNumber: "+919876543212",
		Category: models.CategoryInsurance, Subcategory: "Health Insurance",
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads?category=Insurance", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Asha Patel", data[0].(map[string]any)["full_name"])
}

func TestGetLeadStats(t *testing.T) {
	app, store := newLeadTestApp(t)

	_, err := store.CreateLead(&models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["loans"])
	assert.EqualValues(t, 0, body["insurance"])
	assert.EqualValues(t, 1, body["total"])
}

func TestGetLeadNotFound(t *testing.T) {
	app, _ := newLeadTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/no-such-id", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestUpdateLeadStatus(t *testing.T) {
	app, store := newLeadTestApp(t)

	lead, err := store.CreateLead(&models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/leads/"+lead.LeadID+"/status",
		strings.NewReader(`{"status":"contacted"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated, err := store.GetLeadByID(lead.LeadID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)
}

func TestUpdateLeadStatusRejectsUnknownValue(t *testing.T) {
	app, store := newLeadTestApp(t)

	lead, err := store.CreateLead(&models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/leads/"+lead.LeadID+"/status",
		strings.NewReader(`{"status":"archived"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	unchanged, err := store.GetLeadByID(lead.LeadID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusPending, unchanged.Status)
}
