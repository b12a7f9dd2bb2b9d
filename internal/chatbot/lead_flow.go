package chatbot

import (
	"strings"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/storage"
	"github.com/Pranav4399/loans/internal/validation"
)

// Lead flow steps.
const (
	StepStart                 StepID = "start"
	StepCategory              StepID = "category"
	StepLoanSubcategory       StepID = "loan_subcategory"
	StepInsuranceSubcategory  StepID = "insurance_subcategory"
	StepMutualFundSubcategory StepID = "mutual_fund_subcategory"
	StepFullName              StepID = "full_name"
	StepContactNumber         StepID = "contact_number"
	StepConfirm               StepID = "confirm"
)

// Menu selections map to canonical labels before they are stored.
var (
	categories = map[string]string{
		"1": models.CategoryLoans,
		"2": models.CategoryInsurance,
		"3": models.CategoryMutualFunds,
	}

	loanSubcategories = map[string]string{
		"1": "Personal Loan",
		"2": "Business Loan",
		"3": "Home Loan",
		"4": "Loan Against Property",
		"5": "Car Loan",
		"6": "Working Capital",
	}

	insuranceSubcategories = map[string]string{
		"1": "Health Insurance",
		"2": "Motor Vehicle Insurance",
		"3": "Life Insurance",
		"4": "Property Insurance",
	}
)

func choiceKeys(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	return keys
}

// subcategoryStepFor routes the category fan-out; it is used by both the
// category step's Next and the name step's Prev so BACK retraces the branch
// the user actually took.
func subcategoryStepFor(data models.FormData) StepID {
	switch data["category"] {
	case models.CategoryInsurance:
		return StepInsuranceSubcategory
	case models.CategoryMutualFunds:
		return StepMutualFundSubcategory
	default:
		return StepLoanSubcategory
	}
}

// NewLeadFlow builds the default lead-intake catalog:
//
//	start → category → {loan|insurance|mutual fund} subcategory
//	      → full_name → contact_number → confirm
//
// Completion commits a Lead with status pending.
func NewLeadFlow(policy Policy) *Flow {
	flow := &Flow{
		Name:     "lead",
		Initial:  StepStart,
		Terminal: StepConfirm,
		Required: []string{"category", "subcategory", "full_name", "contact_number"},
	}

	flow.Commit = func(st storage.Store, phone string, update *models.ConversationUpdate, data models.FormData) (string, error) {
		lead, err := models.LeadFromConversation(phone, data)
		if err != nil {
			return "", err
		}
		created, err := st.CommitLead(phone, update, lead)
		if err != nil {
			return "", err
		}
		return created.LeadID, nil
	}

	flow.Steps = map[StepID]StepDefinition{
		StepStart: {
			ID: StepStart,
			Prompt: StaticPrompt("👋 Welcome to Andromeda, India's Largest Loan Distributor!\n\n" +
				"We offer a variety of financial products including Loans, Insurance, and Mutual Funds with:\n" +
				"• 125+ lending partners\n" +
				"• Present in 100+ cities\n" +
				"• Rs. 75,000+ CR loans disbursed annually\n\n" +
				"Ready to explore your options? Reply with YES to start.\n\n" +
				"Type HELP if you need assistance."),
			Help: "Andromeda is India's largest loan distributor with 25,000+ financial advisors. " +
				"To begin, simply reply with YES and our guided process will help you find the right product. " +
				"For customer support, call 1800 123 3001.",
			Error:    "Please reply with YES to start exploring our financial products.",
			Examples: []string{"YES"},
			Tips:     []string{"Type YES in any case (yes, Yes, YES)"},
			Choices:  []QuickReply{{Title: "Yes", Payload: "YES"}},
			Validate: func(input string) bool { return strings.EqualFold(strings.TrimSpace(input), "yes") },
			Next:     func(models.FormData) StepID { return StepCategory },
		},

		StepCategory: {
			ID: StepCategory,
			Prompt: StaticPrompt("💰 What financial product are you interested in?\n\n" +
				"Choose from these options:\n" +
				"1️⃣ Loans\n2️⃣ Insurance\n3️⃣ Mutual Funds\n\n" +
				"Reply with the number (1-3)"),
			Help:     "Enter a number (1-3) to select the financial product category you're interested in.",
			Error:    "Please select a valid option (1-3).",
			Examples: []string{"1", "2", "3"},
			Tips: []string{
				"Enter only the number (1-3)",
				"Choose from the options shown",
				"Don't type the category name, just the number",
			},
			Choices: []QuickReply{
				{Title: "1. Loans", Payload: "1"},
				{Title: "2. Insurance", Payload: "2"},
				{Title: "3. Mutual Funds", Payload: "3"},
			},
			Validate: func(input string) bool { return validation.Choice(input, choiceKeys(categories)) },
			Process: func(input string, data models.FormData) {
				data["category"] = categories[strings.TrimSpace(input)]
			},
			Next: subcategoryStepFor,
			Prev: func(models.FormData) StepID { return StepStart },
		},

		StepLoanSubcategory: {
			ID: StepLoanSubcategory,
			Prompt: StaticPrompt("🏦 What type of loan are you interested in?\n\n" +
				"Choose from these options:\n" +
				"1️⃣ Personal Loan\n2️⃣ Business Loan\n3️⃣ Home Loan\n" +
				"4️⃣ Loan Against Property\n5️⃣ Car Loan\n6️⃣ Working Capital\n\n" +
				"Reply with the number (1-6)"),
			Help:     "Enter a number (1-6) to select the specific loan type you're interested in.",
			Error:    "Please select a valid loan type (1-6).",
			Examples: []string{"1", "2", "3", "4", "5", "6"},
			Tips: []string{
				"Enter only the number (1-6)",
				"Choose from the options shown",
				"Don't type the loan name, just the number",
			},
			Choices: []QuickReply{
				{Title: "1. Personal Loan", Payload: "1"},
				{Title: "2. Business Loan", Payload: "2"},
				{Title: "3. Home Loan", Payload: "3"},
				{Title: "4. Loan Against Property", Payload: "4"},
				{Title: "5. Car Loan", Payload: "5"},
				{Title: "6. Working Capital", Payload: "6"},
			},
			Validate: func(input string) bool { return validation.Choice(input, choiceKeys(loanSubcategories)) },
			Process: func(input string, data models.FormData) {
				data["subcategory"] = loanSubcategories[strings.TrimSpace(input)]
			},
			Next: func(models.FormData) StepID { return StepFullName },
			Prev: func(models.FormData) StepID { return StepCategory },
		},

		StepInsuranceSubcategory: {
			ID: StepInsuranceSubcategory,
			Prompt: StaticPrompt("🛡️ What type of insurance are you interested in?\n\n" +
				"Choose from these options:\n" +
				"1️⃣ Health Insurance\n2️⃣ Motor Vehicle Insurance\n" +
				"3️⃣ Life Insurance\n4️⃣ Property Insurance\n\n" +
				"Reply with the number (1-4)"),
			Help:     "Enter a number (1-4) to select the specific insurance type you're interested in.",
			Error:    "Please select a valid insurance type (1-4).",
			Examples: []string{"1", "2", "3", "4"},
			Tips: []string{
				"Enter only the number (1-4)",
				"Choose from the options shown",
				"Don't type the insurance name, just the number",
			},
			Choices: []QuickReply{
				{Title: "1. Health Insurance", Payload: "1"},
				{Title: "2. Motor Vehicle Insurance", Payload: "2"},
				{Title: "3. Life Insurance", Payload: "3"},
				{Title: "4. Property Insurance", Payload: "4"},
			},
			Validate: func(input string) bool { return validation.Choice(input, choiceKeys(insuranceSubcategories)) },
			Process: func(input string, data models.FormData) {
				data["subcategory"] = insuranceSubcategories[strings.TrimSpace(input)]
			},
			Next: func(models.FormData) StepID { return StepFullName },
			Prev: func(models.FormData) StepID { return StepCategory },
		},

		StepMutualFundSubcategory: {
			ID: StepMutualFundSubcategory,
			Prompt: StaticPrompt("📈 You've selected Mutual Funds. " +
				"Let's collect some information to help you better.\n\nReply with 1 to continue."),
			Help: "Mutual funds are investment products managed by professionals. " +
				"You just need to provide your contact information to learn more.",
			Error:    "This is just an informational step.",
			Examples: []string{"1"},
			Tips:     []string{"Type 1 to continue"},
			Choices:  []QuickReply{{Title: "Continue", Payload: "1"}},
			// Any input continues; the single subcategory is implied.
			Process: func(input string, data models.FormData) {
				data["subcategory"] = "General Inquiry"
			},
			Next: func(models.FormData) StepID { return StepFullName },
			Prev: func(models.FormData) StepID { return StepCategory },
		},

		StepFullName: {
			ID: StepFullName,
			Prompt: StaticPrompt("📝 What is your full name?\n\n" +
				"Please enter your complete name as it appears on official documents.\n" +
				"Example: \"John Michael Smith\""),
			Help:     "Please enter your full name as it appears on official documents. You can use letters and spaces.",
			Error:    "Please enter a valid full name with at least first and last name.",
			Examples: []string{"John Smith", "Mary Jane Wilson"},
			Tips: []string{
				"Use your full legal name",
				"Include both first and last name",
				"Avoid special characters or numbers",
			},
			Validate: func(input string) bool { return validation.FullName(input, policy.Name) },
			Process: func(input string, data models.FormData) {
				data["full_name"] = strings.TrimSpace(input)
			},
			Next: func(models.FormData) StepID { return StepContactNumber },
			Prev: subcategoryStepFor,
		},

		StepContactNumber: {
			ID: StepContactNumber,
			Prompt: StaticPrompt("📱 What is your contact number?\n\n" +
				"Please enter a valid phone number with country code.\n" +
				"Example: \"+919876543210\""),
			Help:     "Enter a valid phone number with country code. This will be used to contact you about your inquiry.",
			Error:    "Please enter a valid phone number with country code.",
			Examples: []string{"+919876543210", "+14155552671"},
			Tips: []string{
				"Include the country code with + symbol",
				"Don't include spaces or dashes",
				"Use only numbers after the country code",
			},
			Validate: func(input string) bool { return validation.Phone(input, policy.Phone) },
			Process: func(input string, data models.FormData) {
				data["contact_number"] = strings.TrimSpace(input)
			},
			Next: func(models.FormData) StepID { return StepConfirm },
			Prev: func(models.FormData) StepID { return StepFullName },
		},

		StepConfirm: {
			ID:     StepConfirm,
			Prompt: DynamicPrompt(leadConfirmation),
			Help:   "Your inquiry has been submitted. You can type START to begin a new inquiry about another product.",
			Reentry: "✅ Your inquiry has already been submitted and a representative will be in touch.\n\n" +
				"Type START to begin a new inquiry.",
			Choices: []QuickReply{{Title: "Start New Inquiry", Payload: "START"}},
			Reset:   func(input string) bool { return strings.EqualFold(strings.TrimSpace(input), "start") },
			Prev:    func(models.FormData) StepID { return StepContactNumber },
		},
	}

	return flow
}
