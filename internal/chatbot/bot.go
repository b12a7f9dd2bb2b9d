package chatbot

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/storage"
	"github.com/Pranav4399/loans/internal/utils"
)

// Messenger is the outbound transport the bot replies through. The Twilio
// service implements it; tests substitute a fake.
type Messenger interface {
	SendText(to, body string) error
	SendQuickReplies(to, body string, options []QuickReply) error
}

// ErrEmptyMessage is returned for inbound payloads with no usable sender or
// text; the webhook boundary should have rejected these already.
var ErrEmptyMessage = errors.New("empty sender or message body")

// Bot processes inbound WhatsApp messages: it loads conversation state,
// runs navigation and the transition engine, persists the outcome, commits
// the business record on completion and sends the reply.
type Bot struct {
	store     storage.Store
	messenger Messenger
	flow      *Flow
}

// NewBot creates a bot for one flow definition.
func NewBot(store storage.Store, messenger Messenger, flow *Flow) *Bot {
	return &Bot{
		store:     store,
		messenger: messenger,
		flow:      flow,
	}
}

// ProcessMessage handles one inbound message and returns the reply text
// that was (or would be) sent. On persistence errors the conversation does
// not advance, so the user's next message safely retries.
func (b *Bot) ProcessMessage(from, body string) (string, error) {
	phone := utils.NormalizePhone(from)
	input := strings.TrimSpace(body)
	if phone == "" || input == "" {
		return "", ErrEmptyMessage
	}

	state, err := b.store.GetConversation(phone)
	if err != nil {
		return b.reply(phone, msgTransientError, nil, err)
	}
	if state == nil {
		state, err = b.store.CreateConversation(phone)
		if err != nil {
			return b.reply(phone, msgTransientError, nil, err)
		}
	}

	// A conversation finished by EXIT is superseded by a fresh one on the
	// next inbound message. Completed conversations sitting on the
	// terminal step stay put so replays get the "already submitted" reply.
	if state.IsComplete && state.CurrentStep != string(b.flow.Terminal) {
		state, err = b.store.UpdateConversation(phone, &models.ConversationUpdate{
			CurrentStep:   models.StringPtr(string(b.flow.Initial)),
			ClearFormData: true,
			IsComplete:    models.BoolPtr(false),
		})
		if err != nil {
			return b.reply(phone, msgTransientError, nil, err)
		}
	}

	if nav := HandleNavigation(b.flow, state, input); nav.Handled {
		log.Printf("Navigation command %q from %s at step %s", input, phone, state.CurrentStep)
		if nav.Update != nil {
			if _, err := b.store.UpdateConversation(phone, nav.Update); err != nil {
				return b.reply(phone, msgTransientError, nil, err)
			}
		}
		return b.reply(phone, nav.Reply, nav.Choices, nil)
	}

	res, err := Transition(b.flow, state, input)
	if err != nil {
		if errors.Is(err, ErrUnknownStep) {
			return b.recoverCorruptedState(phone, err)
		}
		return b.reply(phone, msgTransientError, nil, err)
	}

	if res.Commit {
		recordID, commitErr := b.flow.Commit(b.store, phone, &models.ConversationUpdate{
			CurrentStep: models.StringPtr(string(res.NextStep)),
			FormData:    res.Data,
			IsComplete:  models.BoolPtr(true),
		}, res.Data)
		if commitErr != nil {
			// Nothing was written: the record and the completion flag go
			// through one atomic store operation, so the conversation
			// stays on the pre-terminal step and resending the message
			// retries the whole commit.
			log.Printf("❌ Record commit failed for %s: %v", phone, commitErr)
			return b.reply(phone, msgTransientError, nil, commitErr)
		}
		log.Printf("✅ %s record %s created for %s", b.flow.Name, recordID, phone)
	} else if res.Advanced {
		update := &models.ConversationUpdate{
			CurrentStep:   models.StringPtr(string(res.NextStep)),
			FormData:      res.Data,
			ClearFormData: res.ClearData,
		}
		if res.ClearData {
			update.IsComplete = models.BoolPtr(false)
		}
		if _, err := b.store.UpdateConversation(phone, update); err != nil {
			return b.reply(phone, msgTransientError, nil, err)
		}
	}

	return b.reply(phone, res.Reply, res.Choices, nil)
}

// recoverCorruptedState resets a conversation whose stored step no longer
// exists in the catalog and tells the user to start over.
func (b *Bot) recoverCorruptedState(phone string, cause error) (string, error) {
	log.Printf("⚠️ Corrupted conversation state for %s: %v", phone, cause)

	if _, err := b.store.UpdateConversation(phone, &models.ConversationUpdate{
		CurrentStep:   models.StringPtr(string(b.flow.Initial)),
		ClearFormData: true,
		IsComplete:    models.BoolPtr(false),
	}); err != nil {
		return b.reply(phone, msgTransientError, nil, err)
	}

	initial, _ := b.flow.Step(b.flow.Initial)
	reply := msgCorruptedState + initial.Prompt.Render(models.FormData{})
	return b.reply(phone, reply, initial.Choices, nil)
}

// reply sends the outbound message and pairs it with the processing error,
// if any. A send failure wins over sendErr==nil so the webhook handler can
// return an error response and let the transport retry.
func (b *Bot) reply(phone, text string, choices []QuickReply, processErr error) (string, error) {
	if b.messenger == nil || text == "" {
		return text, processErr
	}

	var sendErr error
	if len(choices) > 0 {
		sendErr = b.messenger.SendQuickReplies(phone, text, choices)
	} else {
		sendErr = b.messenger.SendText(phone, text)
	}
	if sendErr != nil {
		log.Printf("❌ Failed to send WhatsApp reply to %s: %v", phone, sendErr)
		if processErr == nil {
			return text, fmt.Errorf("send reply: %w", sendErr)
		}
	}
	return text, processErr
}
