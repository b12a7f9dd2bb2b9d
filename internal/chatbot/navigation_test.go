package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranav4399/loans/internal/models"
)

func TestRestartClearsEverything(t *testing.T) {
	bot, store := newLeadBot(t)
	phone := "+919812345678"

	for _, input := range []string{"YES", "1", "2", "John Smith"} {
		_, err := bot.ProcessMessage(phone, input)
		require.NoError(t, err)
	}

	reply, err := bot.ProcessMessage(phone, "restart")
	require.NoError(t, err)
	assert.Contains(t, reply, "Welcome to Andromeda")

	state := stateFor(t, store, phone)
	assert.Equal(t, string(StepStart), state.CurrentStep)
	assert.Empty(t, state.FormData)
	assert.False(t, state.IsComplete)
}

func TestHelpLeavesStateUntouched(t *testing.T) {
	bot, store := newLeadBot(t)
	phone := "+919812345678"

	_, err := bot.ProcessMessage(phone, "YES")
	require.NoError(t, err)

	reply, err := bot.ProcessMessage(phone, "HELP")
	require.NoError(t, err)
	assert.Contains(t, reply, "Available commands")
	assert.Contains(t, reply, "RESTART")
	// The current step's own guidance follows the command list.
	assert.Contains(t, reply, "financial product category")

	assert.Equal(t, string(StepCategory), stateFor(t, store, phone).CurrentStep)
}

func TestExitAbandonsWithoutCommitting(t *testing.T) {
	bot, store := newLeadBot(t)
	phone := "+919812345678"

	for _, input := range []string{"YES", "1", "1", "John Smith"} {
		_, err := bot.ProcessMessage(phone, input)
		require.NoError(t, err)
	}

	reply, err := bot.ProcessMessage(phone, "EXIT")
	require.NoError(t, err)
	assert.Contains(t, reply, "cancelled")

	state := stateFor(t, store, phone)
	assert.True(t, state.IsComplete)

	_, total, err := store.ListLeads(&models.LeadQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	// The next message supersedes the abandoned conversation.
	reply, err = bot.ProcessMessage(phone, "hi")
	require.NoError(t, err)
	assert.Contains(t, reply, "Please reply with YES")
	assert.False(t, stateFor(t, store, phone).IsComplete)
}

func TestBackRetracesTakenBranch(t *testing.T) {
	bot, store := newLeadBot(t)
	phone := "+919812345678"

	// Take the insurance branch up to the name step.
	for _, input := range []string{"YES", "2", "3"} {
		_, err := bot.ProcessMessage(phone, input)
		require.NoError(t, err)
	}
	require.Equal(t, string(StepFullName), stateFor(t, store, phone).CurrentStep)

	reply, err := bot.ProcessMessage(phone, "BACK")
	require.NoError(t, err)
	assert.Contains(t, reply, "type of insurance")
	assert.Equal(t, string(StepInsuranceSubcategory), stateFor(t, store, phone).CurrentStep)
}

func TestBackAtStartIsNoOp(t *testing.T) {
	bot, store := newLeadBot(t)
	phone := "+919812345678"

	_, err := bot.ProcessMessage(phone, "hello")
	require.NoError(t, err)

	reply, err := bot.ProcessMessage(phone, "back")
	require.NoError(t, err)
	assert.Equal(t, msgBackAtStart, reply)
	assert.Equal(t, string(StepStart), stateFor(t, store, phone).CurrentStep)
}

func TestBackAfterCompletionRefused(t *testing.T) {
	bot, store := newLeadBot(t)
	phone := "+919812345678"

	for _, input := range []string{"YES", "1", "1", "John Smith", "+919876543210"} {
		_, err := bot.ProcessMessage(phone, input)
		require.NoError(t, err)
	}
	require.True(t, stateFor(t, store, phone).IsComplete)

	reply, err := bot.ProcessMessage(phone, "BACK")
	require.NoError(t, err)
	assert.Equal(t, msgBackAfterComplete, reply)
	assert.Equal(t, string(StepConfirm), stateFor(t, store, phone).CurrentStep)
}

func TestBackSkipsConsentStepWhenNotShown(t *testing.T) {
	flow := NewApplicationFlow(DefaultPolicy())

	// existing_loans answered "no": consent was never asked, so BACK from
	// tenure lands on existing_loans, not cibil_consent.
	state := &models.ConversationState{
		CurrentStep: string(StepPreferredTenure),
		FormData:    models.FormData{"existing_loans": "no"},
	}
	nav := HandleNavigation(flow, state, "BACK")
	require.True(t, nav.Handled)
	require.NotNil(t, nav.Update)
	assert.Equal(t, string(StepExistingLoans), *nav.Update.CurrentStep)

	// With existing loans, BACK revisits the consent step.
	state.FormData = models.FormData{"existing_loans": "yes", "cibil_consent": "yes"}
	nav = HandleNavigation(flow, state, "back")
	require.True(t, nav.Handled)
	require.NotNil(t, nav.Update)
	assert.Equal(t, string(StepCibilConsent), *nav.Update.CurrentStep)
}

func TestNavigationIsCaseInsensitive(t *testing.T) {
	flow := NewLeadFlow(DefaultPolicy())
	state := &models.ConversationState{
		CurrentStep: string(StepCategory),
		FormData:    models.FormData{},
	}

	for _, input := range []string{"Restart", "HELP", "exit", "  BACK  "} {
		nav := HandleNavigation(flow, state, input)
		assert.True(t, nav.Handled, "expected %q to be handled", input)
	}

	nav := HandleNavigation(flow, state, "1")
	assert.False(t, nav.Handled)
}
