package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranav4399/loans/internal/models"
)

func TestConversationLifecycle(t *testing.T) {
	store := NewMemoryStore()
	phone := "+919812345678"

	// Absent conversations are (nil, nil), not an error.
	state, err := store.GetConversation(phone)
	require.NoError(t, err)
	assert.Nil(t, state)

	created, err := store.CreateConversation(phone)
	require.NoError(t, err)
	assert.Equal(t, models.InitialConversationStep, created.CurrentStep)
	assert.False(t, created.IsComplete)
	assert.Empty(t, created.FormData)

	// One row per phone.
	_, err = store.CreateConversation(phone)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateConversationMergesFormData(t *testing.T) {
	store := NewMemoryStore()
	phone := "+919812345678"
	_, err := store.CreateConversation(phone)
	require.NoError(t, err)

	_, err = store.UpdateConversation(phone, &models.ConversationUpdate{
		CurrentStep: models.StringPtr("category"),
		FormData:    models.FormData{"category": "Loans"},
	})
	require.NoError(t, err)

	// A later update adds fields without dropping earlier ones.
	updated, err := store.UpdateConversation(phone, &models.ConversationUpdate{
		CurrentStep: models.StringPtr("full_name"),
		FormData:    models.FormData{"subcategory": "Home Loan"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Loans", updated.FormData["category"])
	assert.Equal(t, "Home Loan", updated.FormData["subcategory"])
	assert.Equal(t, "full_name", updated.CurrentStep)

	// ClearFormData drops everything before applying the new fields.
	cleared, err := store.UpdateConversation(phone, &models.ConversationUpdate{
		ClearFormData: true,
		FormData:      models.FormData{"category": "Insurance"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.FormData{"category": "Insurance"}, cleared.FormData)

	_, err = store.UpdateConversation("+910000000000", &models.ConversationUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetConversationReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	phone := "+919812345678"
	_, err := store.CreateConversation(phone)
	require.NoError(t, err)
	_, err = store.UpdateConversation(phone, &models.ConversationUpdate{
		FormData: models.FormData{"category": "Loans"},
	})
	require.NoError(t, err)

	first, err := store.GetConversation(phone)
	require.NoError(t, err)
	first.FormData["category"] = "mutated"
	first.CurrentStep = "mutated"

	second, err := store.GetConversation(phone)
	require.NoError(t, err)
	assert.Equal(t, "Loans", second.FormData["category"])
	assert.Equal(t, models.InitialConversationStep, second.CurrentStep)
}

func TestDeleteStaleConversationsKeepsCompleted(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateConversation("+911111111111")
	require.NoError(t, err)
	_, err = store.CreateConversation("+912222222222")
	require.NoError(t, err)
	_, err = store.UpdateConversation("+912222222222", &models.ConversationUpdate{
		IsComplete: models.BoolPtr(true),
	})
	require.NoError(t, err)

	deleted, err := store.DeleteStaleConversations(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	gone, err := store.GetConversation("+911111111111")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := store.GetConversation("+912222222222")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func seedLeads(t *testing.T, store *MemoryStore) {
	t.Helper()
	leads := []*models.Lead{
		{FullName: "John Smith", ContactNumber: "+919876543210", Category: models.CategoryLoans, Subcategory: "Home Loan"},
		{FullName: "Mary Wilson", ContactNumber: "+919876543211", Category: models.CategoryLoans, Subcategory: "Personal Loan", Status: models.LeadStatusContacted},
		{FullName: "Asha Patel", ContactNumber: "+919876543212", Category: models.CategoryInsurance, Subcategory: "Health Insurance"},
		{FullName: "Ravi Kumar", ContactNumber: "+919876543213", Category: models.CategoryMutualFunds, Subcategory: "General Inquiry"},
	}
	for _, lead := range leads {
		_, err := store.CreateLead(lead)
		require.NoError(t, err)
	}
}

func TestListLeadsFilters(t *testing.T) {
	store := NewMemoryStore()
	seedLeads(t, store)

	results, total, err := store.ListLeads(&models.LeadQuery{Category: models.CategoryLoans})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, results, 2)

	results, total, err = store.ListLeads(&models.LeadQuery{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Mary Wilson", results[0].FullName)

	results, total, err = store.ListLeads(&models.LeadQuery{Search: "health"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Asha Patel", results[0].FullName)

	_, total, err = store.ListLeads(&models.LeadQuery{Search: "no-such-lead"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestListLeadsPagination(t *testing.T) {
	store := NewMemoryStore()
	seedLeads(t, store)

	page1, total, err := store.ListLeads(&models.LeadQuery{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page1, 3)

	page2, total, err := store.ListLeads(&models.LeadQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page2, 1)

	// Beyond the last page is empty, not an error.
	page3, _, err := store.ListLeads(&models.LeadQuery{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestLeadStats(t *testing.T) {
	store := NewMemoryStore()
	seedLeads(t, store)

	stats, err := store.GetLeadStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Loans)
	assert.EqualValues(t, 1, stats.Insurance)
	assert.EqualValues(t, 1, stats.MutualFunds)
	assert.EqualValues(t, 4, stats.Total)
}

func TestUpdateLeadStatus(t *testing.T) {
	store := NewMemoryStore()
	lead, err := store.CreateLead(&models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusPending, lead.Status)

	require.NoError(t, store.UpdateLeadStatus(lead.LeadID, models.LeadStatusConverted))
	updated, err := store.GetLeadByID(lead.LeadID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, updated.Status)

	assert.ErrorIs(t, store.UpdateLeadStatus("missing", models.LeadStatusClosed), ErrNotFound)
}

func TestLeadReadsReturnCopies(t *testing.T) {
	store := NewMemoryStore()
	lead, err := store.CreateLead(&models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)

	fetched, err := store.GetLeadByID(lead.LeadID)
	require.NoError(t, err)
	fetched.Status = models.LeadStatusClosed
	fetched.FullName = "mutated"

	listed, _, err := store.ListLeads(&models.LeadQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Status = models.LeadStatusClosed

	again, err := store.GetLeadByID(lead.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", again.FullName)
	assert.Equal(t, models.LeadStatusPending, again.Status)
}

func TestCommitLeadIsAtomic(t *testing.T) {
	store := NewMemoryStore()
	phone := "+919812345678"
	_, err := store.CreateConversation(phone)
	require.NoError(t, err)

	created, err := store.CommitLead(phone, &models.ConversationUpdate{
		CurrentStep: models.StringPtr("confirm"),
		IsComplete:  models.BoolPtr(true),
	}, &models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.LeadID)

	state, err := store.GetConversation(phone)
	require.NoError(t, err)
	assert.Equal(t, "confirm", state.CurrentStep)
	assert.True(t, state.IsComplete)

	_, total, err := store.ListLeads(&models.LeadQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCommitLeadWithoutConversationWritesNothing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CommitLead("+910000000000", &models.ConversationUpdate{
		IsComplete: models.BoolPtr(true),
	}, &models.Lead{
		FullName: "John Smith", ContactNumber: "+919876543210",
		Category: models.CategoryLoans, Subcategory: "Home Loan",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, total, err := store.ListLeads(&models.LeadQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestReferrerPhoneUniqueness(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.CreateReferrer(&models.Referrer{
		Name: "Priya Shah", PhoneNumber: "+919876500000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ReferrerID)
	assert.True(t, created.IsActive)

	_, err = store.CreateReferrer(&models.Referrer{
		Name: "Someone Else", PhoneNumber: "+919876500000",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	byPhone, err := store.GetReferrerByPhone("+919876500000")
	require.NoError(t, err)
	assert.Equal(t, created.ReferrerID, byPhone.ReferrerID)
}

func TestReferrerApplications(t *testing.T) {
	store := NewMemoryStore()

	referrer, err := store.CreateReferrer(&models.Referrer{
		Name: "Priya Shah", PhoneNumber: "+919876500000",
	})
	require.NoError(t, err)

	_, err = store.CreateApplication(&models.LoanApplication{
		FullName: "John Smith", PhoneNumber: "+919812345678",
		LoanType: "Personal", LoanAmount: 500000,
		ReferrerID: referrer.ReferrerID, IsReferral: true,
	})
	require.NoError(t, err)
	_, err = store.CreateApplication(&models.LoanApplication{
		FullName: "Mary Wilson", PhoneNumber: "+919812345679",
		LoanType: "Home", LoanAmount: 2500000,
	})
	require.NoError(t, err)

	apps, err := store.GetReferrerApplications(referrer.ReferrerID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "John Smith", apps[0].FullName)
}
