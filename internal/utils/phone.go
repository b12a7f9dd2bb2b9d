package utils

import (
	"strings"
)

// NormalizePhone converts an inbound WhatsApp sender address to the
// canonical E.164 form used everywhere in the system (state key, lead
// field, outbound sends): leading '+' followed by digits only.
//
// Twilio delivers senders as "whatsapp:+919876543210"; the dashboard and
// tests may pass bare numbers. Bare 10-digit numbers are assumed to be
// Indian and get the +91 country code.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	phone = strings.TrimPrefix(phone, "whatsapp:")

	// Strip formatting characters users paste in.
	phone = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)

	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		return phone
	}

	digits := strings.TrimLeft(phone, "0")
	if len(digits) == 10 {
		return "+91" + digits
	}
	if strings.HasPrefix(digits, "91") && len(digits) == 12 {
		return "+" + digits
	}
	return "+" + digits
}
