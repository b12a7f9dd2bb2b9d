package chatbot

import (
	"fmt"
	"strings"

	"github.com/Pranav4399/loans/internal/models"
)

// Replies that are not tied to a single step.
const (
	msgCancelled = "Your inquiry has been cancelled. Type RESTART anytime to begin again."

	msgBackAtStart = "You're already at the start. Type YES to begin."

	msgBackAfterComplete = "This conversation is already complete. Type RESTART to begin a new inquiry."

	msgTransientError = "⚠️ Sorry, we're having a temporary problem saving your details. " +
		"Nothing has been lost - please resend your last message to try again."

	msgCorruptedState = "⚠️ Sorry, something went wrong with your conversation, so we've started over.\n\n"

	msgCommandList = "📌 Available commands:\n" +
		"• RESTART - Start over from the beginning\n" +
		"• BACK - Go to the previous step\n" +
		"• EXIT - Cancel the current inquiry\n" +
		"• HELP - Show this message\n\n"
)

// formatError builds the standardized rejection reply: the step's reason,
// literal examples and actionable tips, closing with the HELP hint.
func formatError(def StepDefinition) string {
	var b strings.Builder

	b.WriteString("❌ " + def.Error + "\n")

	if len(def.Examples) > 0 {
		b.WriteString("\n📝 Examples:\n")
		for _, example := range def.Examples {
			b.WriteString(fmt.Sprintf("• %q\n", example))
		}
	}

	if len(def.Tips) > 0 {
		b.WriteString("\n💡 Tips:\n")
		for _, tip := range def.Tips {
			b.WriteString("• " + tip + "\n")
		}
	}

	b.WriteString("\n🔍 Need help? Type HELP for more information.")
	return b.String()
}

// firstName extracts the first token of the collected full name for the
// personalized confirmation, falling back to a neutral greeting.
func firstName(data models.FormData) string {
	tokens := strings.Fields(data["full_name"])
	if len(tokens) == 0 {
		return "there"
	}
	return tokens[0]
}

// productSlug turns "Home Loan" into "home-loan" for product URLs.
func productSlug(subcategory string) string {
	return strings.ReplaceAll(strings.ToLower(subcategory), " ", "-")
}

// leadConfirmation builds the personalized terminal message for the lead
// flow, interpolating name, product and contact number with a
// category-specific blurb and link.
func leadConfirmation(data models.FormData) string {
	category := data["category"]
	subcategory := data["subcategory"]

	var productInfo, productLink string
	switch category {
	case models.CategoryLoans:
		productLink = "https://www.andromedaloans.com/loans/" + productSlug(subcategory)
		switch subcategory {
		case "Personal Loan":
			productInfo = "Personal loans with competitive interest rates starting at 10.5% p.a."
		case "Home Loan":
			productInfo = "Home loans with up to 85% financing and 30-year tenure options."
		case "Business Loan":
			productInfo = "Business loans with minimal documentation and quick approval."
		default:
			productInfo = fmt.Sprintf("Our %s options are designed for optimal flexibility and value.", subcategory)
		}
	case models.CategoryInsurance:
		productLink = "https://www.andromedaloans.com/insurance/" + productSlug(subcategory)
		productInfo = fmt.Sprintf("Our %s plans offer comprehensive coverage at competitive premiums.", subcategory)
	default: // Mutual Funds
		productLink = "https://www.andromedaloans.com/mutual-funds"
		productInfo = "Our mutual fund experts will help you find the right investment options for your goals."
	}

	return fmt.Sprintf(
		"🎉 Thank you, %s!\n\n"+
			"Your interest in %s has been recorded. %s\n\n"+
			"A representative will contact you shortly at %s.\n\n"+
			"[Click here](%s) to learn more about our %s offerings.\n\n"+
			"Type START if you'd like to inquire about another product.",
		firstName(data), subcategory, productInfo, data["contact_number"], productLink, subcategory)
}

// applicationSummary renders the review-step recap of everything collected.
func applicationSummary(data models.FormData) string {
	var b strings.Builder
	b.WriteString("📋 Please review your application:\n\n")

	rows := []struct{ label, field string }{
		{"Name", "full_name"},
		{"Email", "email"},
		{"Loan type", "loan_type"},
		{"Amount", "loan_amount"},
		{"Purpose", "purpose"},
		{"Monthly income", "monthly_income"},
		{"Employment", "employment_status"},
		{"Employer", "current_employer"},
		{"Years employed", "years_employed"},
		{"Existing loans", "existing_loans"},
		{"CIBIL consent", "cibil_consent"},
		{"Tenure (months)", "preferred_tenure"},
		{"Contact via", "preferred_communication"},
	}
	for _, row := range rows {
		value := data[row.field]
		if value == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("• %s: %s\n", row.label, value))
	}

	b.WriteString("\n✅ Type YES to submit your application.\n🔄 Type NO to start over.")
	return b.String()
}

// applicationConfirmation is the terminal message for the application flow.
func applicationConfirmation(data models.FormData) string {
	return fmt.Sprintf(
		"🎉 Thank you, %s!\n\n"+
			"Your %s application for ₹%s has been submitted. Our loan specialists "+
			"will review it and reach out via %s within 2 business days.\n\n"+
			"Type START if you'd like to begin another application.",
		firstName(data), data["loan_type"], data["loan_amount"], data["preferred_communication"])
}

// withProgress annotates a prompt with the completed/total required-field
// count, e.g. "📊 Progress: 4 of 13".
func withProgress(flow *Flow, base Prompt) Prompt {
	return DynamicPrompt(func(data models.FormData) string {
		done, total := flow.Progress(data)
		return fmt.Sprintf("%s\n\n📊 Progress: %d of %d", base.Render(data), done, total)
	})
}
