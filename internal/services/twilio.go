package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Pranav4399/loans/internal/chatbot"
)

// TwilioService sends outbound WhatsApp messages. It implements
// chatbot.Messenger.
type TwilioService struct {
	client *twilio.RestClient
	from   string // "whatsapp:+14155238886"

	// Content SID of the approved quick-reply template; when unset,
	// quick replies degrade to a plain text message listing the options.
	quickReplySID string
}

// NewTwilioService builds the service from environment credentials.
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client:        client,
		from:          from,
		quickReplySID: os.Getenv("TWILIO_QUICK_REPLY_CONTENT_SID"),
	}, nil
}

// SendText sends a plain WhatsApp text message.
func (t *TwilioService) SendText(to string, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	return nil
}

// SendQuickReplies sends a message with quick-reply buttons via a content
// template. Without a configured template it falls back to plain text with
// the options appended, so the conversation still works on unconfigured
// sandboxes.
func (t *TwilioService) SendQuickReplies(to string, body string, options []chatbot.QuickReply) error {
	if t.quickReplySID == "" || len(options) == 0 {
		return t.SendText(to, body)
	}

	variables := map[string]string{"1": body}
	for i, opt := range options {
		// Template slots 2..n carry the button titles.
		variables[fmt.Sprintf("%d", i+2)] = opt.Title
	}
	variablesJSON, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("marshal content variables: %w", err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetContentSid(t.quickReplySID)
	params.SetContentVariables(string(variablesJSON))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp quick replies: %v", err)
		return err
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	log.Printf("✅ WhatsApp quick replies sent! SID: %s", *resp.Sid)
	return nil
}
