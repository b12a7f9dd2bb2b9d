// Package chatbot implements the WhatsApp conversation state machine:
// the step catalog, navigation commands, the transition engine and the
// one-time record commit at the terminal step.
package chatbot

import (
	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/storage"
)

// StepID names one node in the conversational flow.
type StepID string

// QuickReply is an option surfaced as a WhatsApp quick-reply button.
type QuickReply struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// Prompt is the message shown when a step becomes current. It is either
// static text or generated from the accumulated answers.
type Prompt interface {
	Render(data models.FormData) string
}

// StaticPrompt is fixed text.
type StaticPrompt string

// Render returns the text unchanged.
func (p StaticPrompt) Render(models.FormData) string { return string(p) }

// DynamicPrompt generates the text from accumulated answers.
type DynamicPrompt func(data models.FormData) string

// Render invokes the generator.
func (p DynamicPrompt) Render(data models.FormData) string { return p(data) }

// StepDefinition describes one step: how to prompt for it, how to validate
// and store the answer, and where the flow goes next (and back). Next and
// Prev are both explicit functions over the accumulated data so conditional
// branches route BACK correctly - step order is never derived from array
// positions.
type StepDefinition struct {
	ID       StepID
	Prompt   Prompt
	Help     string
	Error    string
	Examples []string
	Tips     []string
	Choices  []QuickReply

	// Validate reports whether raw input is acceptable. A nil Validate
	// accepts anything.
	Validate func(input string) bool

	// Process merges the validated answer into the accumulated data
	// (menu selections map to canonical labels, free text is trimmed).
	Process func(input string, data models.FormData)

	// Next derives the following step from the updated data.
	Next func(data models.FormData) StepID

	// Prev derives the predecessor for BACK. Nil means the step has no
	// predecessor (the initial step).
	Prev func(data models.FormData) StepID

	// Reset reports whether this validated input restarts the flow
	// (e.g. "NO" at review, "START" at the terminal step).
	Reset func(input string) bool

	// Reentry is the reply sent when the user messages the terminal step
	// again after completion.
	Reentry string
}

// CommitFunc persists the business record for a completed conversation and
// returns its assigned identity. Implementations must write the record and
// the completing conversation update through a single atomic store
// operation so a retried terminal message cannot create a duplicate.
type CommitFunc func(st storage.Store, phone string, update *models.ConversationUpdate, data models.FormData) (string, error)

// Flow is a complete step catalog with its entry point, terminal step and
// record-commit behavior.
type Flow struct {
	Name     string
	Initial  StepID
	Terminal StepID
	Steps    map[StepID]StepDefinition

	// Required lists the field names a completed conversation must have
	// collected; used for the progress indicator.
	Required []string

	Commit CommitFunc
}

// Step looks up a step definition.
func (f *Flow) Step(id StepID) (StepDefinition, bool) {
	def, ok := f.Steps[id]
	return def, ok
}

// Progress returns how many required fields have been collected so far.
func (f *Flow) Progress(data models.FormData) (done, total int) {
	for _, field := range f.Required {
		if data[field] != "" {
			done++
		}
	}
	return done, len(f.Required)
}
