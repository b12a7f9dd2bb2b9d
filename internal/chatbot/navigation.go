package chatbot

import (
	"strings"

	"github.com/Pranav4399/loans/internal/models"
)

// NavResult describes how a navigation command was handled. Update is nil
// when the command leaves state untouched (HELP, no-op BACK).
type NavResult struct {
	Handled bool
	Reply   string
	Choices []QuickReply
	Update  *models.ConversationUpdate
}

// HandleNavigation intercepts the reserved keywords before normal step
// processing. Recognized commands are case-insensitive and short-circuit
// the transition engine; anything else falls through (Handled=false).
func HandleNavigation(flow *Flow, state *models.ConversationState, input string) *NavResult {
	command := strings.ToLower(strings.TrimSpace(input))

	current, known := flow.Step(StepID(state.CurrentStep))

	switch command {
	case "restart":
		initial, _ := flow.Step(flow.Initial)
		return &NavResult{
			Handled: true,
			Reply:   initial.Prompt.Render(models.FormData{}),
			Choices: initial.Choices,
			Update: &models.ConversationUpdate{
				CurrentStep:   models.StringPtr(string(flow.Initial)),
				ClearFormData: true,
				IsComplete:    models.BoolPtr(false),
			},
		}

	case "help":
		help := "I'm not sure where we are - type RESTART to begin again."
		if known {
			help = current.Help
		}
		return &NavResult{
			Handled: true,
			Reply:   msgCommandList + help,
		}

	case "exit":
		// Abandons without committing anything; the next inbound message
		// starts a fresh conversation.
		return &NavResult{
			Handled: true,
			Reply:   msgCancelled,
			Update: &models.ConversationUpdate{
				IsComplete: models.BoolPtr(true),
			},
		}

	case "back":
		if state.IsComplete {
			return &NavResult{Handled: true, Reply: msgBackAfterComplete}
		}
		if !known || current.Prev == nil || StepID(state.CurrentStep) == flow.Initial {
			return &NavResult{Handled: true, Reply: msgBackAtStart}
		}

		prevID := current.Prev(state.FormData)
		prev, ok := flow.Step(prevID)
		if !ok {
			return &NavResult{Handled: true, Reply: msgBackAtStart}
		}

		return &NavResult{
			Handled: true,
			Reply:   prev.Prompt.Render(state.FormData),
			Choices: prev.Choices,
			Update: &models.ConversationUpdate{
				CurrentStep: models.StringPtr(string(prevID)),
			},
		}
	}

	return &NavResult{Handled: false}
}
