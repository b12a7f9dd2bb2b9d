package chatbot

import (
	"errors"
	"fmt"

	"github.com/Pranav4399/loans/internal/models"
)

// ErrUnknownStep means the stored conversation references a step absent
// from the catalog - corrupted state. The caller resets to the initial step.
var ErrUnknownStep = errors.New("unknown conversation step")

// Result is the pure outcome of one transition. The caller applies all
// side effects: persisting state, committing the record when Commit is set,
// and sending Reply.
type Result struct {
	NextStep StepID
	Data     models.FormData
	Reply    string
	Choices  []QuickReply

	// Advanced is false for rejected input: state must not be written.
	Advanced bool

	// ClearData indicates a restart (review "NO", terminal "START"):
	// accumulated data is dropped rather than merged.
	ClearData bool

	// Commit is set when this transition enters the terminal step from a
	// non-terminal one; the flow's record must be persisted before the
	// state update marks the conversation complete.
	Commit bool
}

// Transition runs one turn of the state machine: validate the input against
// the current step, merge the answer, derive the next step from the updated
// data, and render the reply. It is a pure function of (state, input); no
// I/O happens here.
func Transition(flow *Flow, state *models.ConversationState, input string) (*Result, error) {
	step, ok := flow.Step(StepID(state.CurrentStep))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, state.CurrentStep)
	}

	// The terminal step is idempotent to re-entry: no validation, no
	// second commit. START begins a fresh conversation.
	if step.ID == flow.Terminal {
		if step.Reset != nil && step.Reset(input) {
			return restartResult(flow), nil
		}
		return &Result{
			NextStep: step.ID,
			Data:     state.FormData,
			Reply:    step.Reentry,
			Choices:  step.Choices,
		}, nil
	}

	if step.Validate != nil && !step.Validate(input) {
		// Idempotent rejection: same step, untouched data.
		return &Result{
			NextStep: step.ID,
			Data:     state.FormData,
			Reply:    formatError(step),
			Choices:  step.Choices,
		}, nil
	}

	// A validated reset answer (review "NO") restarts before any merge.
	if step.Reset != nil && step.Reset(input) {
		return restartResult(flow), nil
	}

	data := state.FormData.Clone()
	if data == nil {
		data = models.FormData{}
	}
	if step.Process != nil {
		step.Process(input, data)
	}

	nextID := step.ID
	if step.Next != nil {
		nextID = step.Next(data)
	}
	next, ok := flow.Step(nextID)
	if !ok {
		return nil, fmt.Errorf("%w: step %q routes to %q", ErrUnknownStep, step.ID, nextID)
	}

	return &Result{
		NextStep: nextID,
		Data:     data,
		Reply:    next.Prompt.Render(data),
		Choices:  next.Choices,
		Advanced: true,
		Commit:   nextID == flow.Terminal,
	}, nil
}

// restartResult rewinds to the initial step with cleared data.
func restartResult(flow *Flow) *Result {
	initial, _ := flow.Step(flow.Initial)
	return &Result{
		NextStep:  flow.Initial,
		Data:      models.FormData{},
		Reply:     initial.Prompt.Render(models.FormData{}),
		Choices:   initial.Choices,
		Advanced:  true,
		ClearData: true,
	}
}
