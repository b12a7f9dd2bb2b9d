package chatbot

import (
	"strconv"
	"strings"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/storage"
	"github.com/Pranav4399/loans/internal/validation"
)

// Application flow steps. The flow reuses StepStart, StepFullName and
// StepConfirm from the lead flow's step set.
const (
	StepEmail                  StepID = "email"
	StepLoanType               StepID = "loan_type"
	StepLoanAmount             StepID = "loan_amount"
	StepPurpose                StepID = "purpose"
	StepMonthlyIncome          StepID = "monthly_income"
	StepEmploymentStatus       StepID = "employment_status"
	StepCurrentEmployer        StepID = "current_employer"
	StepYearsEmployed          StepID = "years_employed"
	StepExistingLoans          StepID = "existing_loans"
	StepCibilConsent           StepID = "cibil_consent"
	StepPreferredTenure        StepID = "preferred_tenure"
	StepPreferredCommunication StepID = "preferred_communication"
	StepReview                 StepID = "review"
)

// Field bounds for the application flow, in rupees / months / years.
const (
	loanAmountMin    = 10_000
	loanAmountMax    = 10_000_000
	monthlyIncomeMin = 10_000
	monthlyIncomeMax = 1_000_000
	tenureMinMonths  = 3
	tenureMaxMonths  = 360
	yearsEmployedMin = 1
	yearsEmployedMax = 50
)

var (
	loanTypes = map[string]string{
		"1": "Personal",
		"2": "Business",
		"3": "Education",
		"4": "Home",
	}

	employmentStatuses = map[string]string{
		"1": "Salaried",
		"2": "Self-employed",
		"3": "Business Owner",
	}

	communicationPreferences = map[string]string{
		"1": "WhatsApp",
		"2": "Email",
		"3": "Both",
	}
)

// tenureOrConsent routes around the optional CIBIL-consent step: consent is
// only asked when the applicant said they carry existing loans. Used by the
// existing-loans step's Next and by the tenure step's Prev so BACK never
// lands on a skipped step.
func tenureOrConsent(data models.FormData) StepID {
	if data["existing_loans"] == "yes" {
		return StepCibilConsent
	}
	return StepPreferredTenure
}

// NewApplicationFlow builds the full loan-application catalog:
//
//	start → full_name → email → loan_type → loan_amount → purpose
//	      → monthly_income → employment_status → current_employer
//	      → years_employed → existing_loans → (cibil_consent)
//	      → preferred_tenure → preferred_communication → review → confirm
//
// Completion commits a LoanApplication with status pending.
func NewApplicationFlow(policy Policy) *Flow {
	flow := &Flow{
		Name:     "application",
		Initial:  StepStart,
		Terminal: StepConfirm,
		Required: []string{
			"full_name", "email", "loan_type", "loan_amount", "purpose",
			"monthly_income", "employment_status", "current_employer",
			"years_employed", "existing_loans", "preferred_tenure",
			"preferred_communication",
		},
	}

	flow.Commit = func(st storage.Store, phone string, update *models.ConversationUpdate, data models.FormData) (string, error) {
		app, err := models.ApplicationFromConversation(phone, data)
		if err != nil {
			return "", err
		}
		created, err := st.CommitApplication(phone, update, app)
		if err != nil {
			return "", err
		}
		return created.ApplicationID, nil
	}

	storeNumber := func(field string) func(string, models.FormData) {
		return func(input string, data models.FormData) {
			// Re-parse only to canonicalize "0042" style input.
			n, _ := strconv.Atoi(strings.TrimSpace(input))
			data[field] = strconv.Itoa(n)
		}
	}

	storeYesNo := func(field string) func(string, models.FormData) {
		return func(input string, data models.FormData) {
			if validation.IsYes(input) {
				data[field] = "yes"
			} else {
				data[field] = "no"
			}
		}
	}

	flow.Steps = map[StepID]StepDefinition{
		StepStart: {
			ID: StepStart,
			Prompt: StaticPrompt("👋 Welcome to the Andromeda loan application!\n\n" +
				"We'll collect a few details to match you with the right lender. " +
				"It takes about five minutes and you can type BACK at any point to correct a previous answer.\n\n" +
				"Reply with YES to begin.\n\nType HELP if you need assistance."),
			Help: "Type YES to start your loan application.\n\n" +
				"You can type EXIT at any time to cancel the current application.",
			Error:    "Please reply with YES to start your loan application.",
			Examples: []string{"YES"},
			Tips:     []string{"Type YES in any case (yes, Yes, YES)"},
			Choices:  []QuickReply{{Title: "Yes", Payload: "YES"}},
			Validate: func(input string) bool { return strings.EqualFold(strings.TrimSpace(input), "yes") },
			Next:     func(models.FormData) StepID { return StepFullName },
		},

		StepFullName: {
			ID:       StepFullName,
			Prompt:   withProgress(flow, StaticPrompt("📝 What is your full name?\n\nPlease enter your complete name as it appears on official documents.")),
			Help:     "Please enter your full name as it appears on official documents. Use letters and spaces only.",
			Error:    "Please enter your full name with at least first and last name.",
			Examples: []string{"John Smith", "Mary Jane Wilson"},
			Tips:     []string{"Include both first and last name", "Avoid special characters or numbers"},
			Validate: func(input string) bool { return validation.FullName(input, policy.Name) },
			Process: func(input string, data models.FormData) {
				data["full_name"] = strings.TrimSpace(input)
			},
			Next: func(models.FormData) StepID { return StepEmail },
			Prev: func(models.FormData) StepID { return StepStart },
		},

		StepEmail: {
			ID:       StepEmail,
			Prompt:   withProgress(flow, StaticPrompt("📧 What is your email address?\n\nWe'll use this for important updates about your application.")),
			Help:     "Enter a valid email address that you regularly check. We'll use this for important updates.",
			Error:    "Please enter a valid email address.",
			Examples: []string{"john.smith@example.com"},
			Tips:     []string{"Use the format name@domain.com", "Don't include spaces"},
			Validate: validation.Email,
			Process: func(input string, data models.FormData) {
				data["email"] = strings.ToLower(strings.TrimSpace(input))
			},
			Next: func(models.FormData) StepID { return StepLoanType },
			Prev: func(models.FormData) StepID { return StepFullName },
		},

		StepLoanType: {
			ID: StepLoanType,
			Prompt: withProgress(flow, StaticPrompt("🏦 What type of loan do you need?\n\n"+
				"1️⃣ Personal\n2️⃣ Business\n3️⃣ Education\n4️⃣ Home\n\n"+
				"Reply with the number (1-4)")),
			Help:     "Enter a number (1-4) to select your loan type:\n1. Personal Loan\n2. Business Loan\n3. Education Loan\n4. Home Loan",
			Error:    "Please select a valid option (1-4).",
			Examples: []string{"1", "2", "3", "4"},
			Tips:     []string{"Enter only the number (1-4)"},
			Choices: []QuickReply{
				{Title: "1. Personal", Payload: "1"},
				{Title: "2. Business", Payload: "2"},
				{Title: "3. Education", Payload: "3"},
				{Title: "4. Home", Payload: "4"},
			},
			Validate: func(input string) bool { return validation.Choice(input, choiceKeys(loanTypes)) },
			Process: func(input string, data models.FormData) {
				data["loan_type"] = loanTypes[strings.TrimSpace(input)]
			},
			Next: func(models.FormData) StepID { return StepLoanAmount },
			Prev: func(models.FormData) StepID { return StepEmail },
		},

		StepLoanAmount: {
			ID:       StepLoanAmount,
			Prompt:   withProgress(flow, StaticPrompt("💰 How much would you like to borrow?\n\nEnter the amount in rupees, numbers only (₹10,000 - ₹1,00,00,000).")),
			Help:     "Enter the loan amount you need in numbers only (between ₹10,000 and ₹1,00,00,000). Don't include currency symbols or commas.",
			Error:    "Please enter a valid amount between ₹10,000 and ₹1,00,00,000.",
			Examples: []string{"500000", "1200000"},
			Tips:     []string{"Numbers only - no currency symbols or commas"},
			Validate: func(input string) bool { return validation.BoundedInt(input, loanAmountMin, loanAmountMax) },
			Process:  storeNumber("loan_amount"),
			Next:     func(models.FormData) StepID { return StepPurpose },
			Prev:     func(models.FormData) StepID { return StepLoanType },
		},

		StepPurpose: {
			ID:       StepPurpose,
			Prompt:   withProgress(flow, StaticPrompt("🎯 What is the purpose of this loan?\n\nBe specific but concise (10-100 characters).")),
			Help:     "Briefly describe why you need this loan. Be specific but concise (10-100 characters).",
			Error:    "Please provide a clear purpose between 10 and 100 characters.",
			Examples: []string{"Home renovation work", "Working capital for my shop"},
			Tips:     []string{"Use plain words", "Avoid special characters"},
			Validate: func(input string) bool { return validation.FreeText(input, 10, 100) },
			Process: func(input string, data models.FormData) {
				data["purpose"] = strings.TrimSpace(input)
			},
			Next: func(models.FormData) StepID { return StepMonthlyIncome },
			Prev: func(models.FormData) StepID { return StepLoanAmount },
		},

		StepMonthlyIncome: {
			ID:       StepMonthlyIncome,
			Prompt:   withProgress(flow, StaticPrompt("💵 What is your monthly income?\n\nEnter the amount in rupees, numbers only (₹10,000 - ₹10,00,000).")),
			Help:     "Enter your monthly income in numbers only (between ₹10,000 and ₹10,00,000).",
			Error:    "Please enter a valid monthly income between ₹10,000 and ₹10,00,000.",
			Examples: []string{"45000", "120000"},
			Tips:     []string{"Numbers only - no currency symbols or commas"},
			Validate: func(input string) bool { return validation.BoundedInt(input, monthlyIncomeMin, monthlyIncomeMax) },
			Process:  storeNumber("monthly_income"),
			Next:     func(models.FormData) StepID { return StepEmploymentStatus },
			Prev:     func(models.FormData) StepID { return StepPurpose },
		},

		StepEmploymentStatus: {
			ID: StepEmploymentStatus,
			Prompt: withProgress(flow, StaticPrompt("💼 What is your employment status?\n\n"+
				"1️⃣ Salaried\n2️⃣ Self-employed\n3️⃣ Business Owner\n\n"+
				"Reply with the number (1-3)")),
			Help:     "Enter a number (1-3) to select your employment status:\n1. Salaried\n2. Self-employed\n3. Business Owner",
			Error:    "Please select a valid employment status (1-3).",
			Examples: []string{"1", "2", "3"},
			Tips:     []string{"Enter only the number (1-3)"},
			Choices: []QuickReply{
				{Title: "1. Salaried", Payload: "1"},
				{Title: "2. Self-employed", Payload: "2"},
				{Title: "3. Business Owner", Payload: "3"},
			},
			Validate: func(input string) bool { return validation.Choice(input, choiceKeys(employmentStatuses)) },
			Process: func(input string, data models.FormData) {
				data["employment_status"] = employmentStatuses[strings.TrimSpace(input)]
			},
			Next: func(models.FormData) StepID { return StepCurrentEmployer },
			Prev: func(models.FormData) StepID { return StepMonthlyIncome },
		},

		StepCurrentEmployer: {
			ID:       StepCurrentEmployer,
			Prompt:   withProgress(flow, StaticPrompt("🏢 Who is your current employer?\n\nEnter the company or business name (2-50 characters).")),
			Help:     "Enter your employer's name (2-50 characters).",
			Error:    "Please enter a valid employer name (2-50 characters).",
			Examples: []string{"Infosys", "Sharma Traders"},
			Tips:     []string{"Use the registered business name"},
			Validate: func(input string) bool { return validation.FreeText(input, 2, 50) },
			Process: func(input string, data models.FormData) {
				data["current_employer"] = strings.TrimSpace(input)
			},
			Next: func(models.FormData) StepID { return StepYearsEmployed },
			Prev: func(models.FormData) StepID { return StepEmploymentStatus },
		},

		StepYearsEmployed: {
			ID:       StepYearsEmployed,
			Prompt:   withProgress(flow, StaticPrompt("📅 How many years have you been employed there?\n\nEnter a number between 1 and 50.")),
			Help:     "Enter the number of years you've been employed (1-50 years).",
			Error:    "Please enter a valid number of years (1-50).",
			Examples: []string{"3", "12"},
			Tips:     []string{"Round down to whole years"},
			Validate: func(input string) bool { return validation.BoundedInt(input, yearsEmployedMin, yearsEmployedMax) },
			Process:  storeNumber("years_employed"),
			Next:     func(models.FormData) StepID { return StepExistingLoans },
			Prev:     func(models.FormData) StepID { return StepCurrentEmployer },
		},

		StepExistingLoans: {
			ID:       StepExistingLoans,
			Prompt:   withProgress(flow, StaticPrompt("🏦 Do you have any existing loans?\n\nReply with YES or NO.")),
			Help:     "Type YES if you have other loans, NO if you don't.",
			Error:    "Please reply with YES or NO.",
			Examples: []string{"YES", "NO"},
			Tips:     []string{"Include EMIs on credit cards as existing loans"},
			Choices: []QuickReply{
				{Title: "Yes", Payload: "YES"},
				{Title: "No", Payload: "NO"},
			},
			Validate: validation.YesNo,
			Process:  storeYesNo("existing_loans"),
			Next:     tenureOrConsent,
			Prev:     func(models.FormData) StepID { return StepYearsEmployed },
		},

		StepCibilConsent: {
			ID: StepCibilConsent,
			Prompt: withProgress(flow, StaticPrompt("📊 Since you have existing loans, we'd like to check your CIBIL score "+
				"to find the best offers.\n\nDo you consent to a CIBIL score check? Reply with YES or NO.")),
			Help:     "Type YES to give consent for CIBIL score check, NO to deny consent.",
			Error:    "Please reply with YES or NO for CIBIL score consent.",
			Examples: []string{"YES", "NO"},
			Tips:     []string{"A CIBIL check helps us find better interest rates for you"},
			Choices: []QuickReply{
				{Title: "Yes", Payload: "YES"},
				{Title: "No", Payload: "NO"},
			},
			Validate: validation.YesNo,
			Process:  storeYesNo("cibil_consent"),
			Next:     func(models.FormData) StepID { return StepPreferredTenure },
			Prev:     func(models.FormData) StepID { return StepExistingLoans },
		},

		StepPreferredTenure: {
			ID:       StepPreferredTenure,
			Prompt:   withProgress(flow, StaticPrompt("⏳ What loan tenure would you prefer?\n\nEnter the duration in months (3-360).")),
			Help:     "Enter your preferred loan duration in months (between 3 and 360 months).",
			Error:    "Please enter a valid tenure between 3 and 360 months.",
			Examples: []string{"36", "120"},
			Tips:     []string{"12 months = 1 year", "Longer tenure means lower EMI but more interest"},
			Validate: func(input string) bool { return validation.BoundedInt(input, tenureMinMonths, tenureMaxMonths) },
			Process:  storeNumber("preferred_tenure"),
			Next:     func(models.FormData) StepID { return StepPreferredCommunication },
			// BACK must skip the consent step when it was never shown.
			Prev: tenureOrConsent,
		},

		StepPreferredCommunication: {
			ID: StepPreferredCommunication,
			Prompt: withProgress(flow, StaticPrompt("📬 How should we contact you?\n\n"+
				"1️⃣ WhatsApp\n2️⃣ Email\n3️⃣ Both\n\n"+
				"Reply with the number (1-3)")),
			Help:     "Enter a number (1-3) to choose how we contact you:\n1. WhatsApp\n2. Email\n3. Both",
			Error:    "Please select a valid communication preference (1-3).",
			Examples: []string{"1", "2", "3"},
			Tips:     []string{"Enter only the number (1-3)"},
			Choices: []QuickReply{
				{Title: "1. WhatsApp", Payload: "1"},
				{Title: "2. Email", Payload: "2"},
				{Title: "3. Both", Payload: "3"},
			},
			Validate: func(input string) bool { return validation.Choice(input, choiceKeys(communicationPreferences)) },
			Process: func(input string, data models.FormData) {
				data["preferred_communication"] = communicationPreferences[strings.TrimSpace(input)]
			},
			Next: func(models.FormData) StepID { return StepReview },
			Prev: func(models.FormData) StepID { return StepPreferredTenure },
		},

		StepReview: {
			ID:     StepReview,
			Prompt: DynamicPrompt(applicationSummary),
			Help: "Review your information and:\n" +
				"• Type YES to submit\n" +
				"• Type NO to start over",
			Error:    "Please reply with YES to submit or NO to start over.",
			Examples: []string{"YES", "NO"},
			Tips:     []string{"Use BACK to correct a single answer before submitting"},
			Choices: []QuickReply{
				{Title: "Submit", Payload: "YES"},
				{Title: "Start Over", Payload: "NO"},
			},
			Validate: validation.YesNo,
			// "NO" restarts; "YES" falls through to the terminal step.
			Reset: func(input string) bool { return strings.EqualFold(strings.TrimSpace(input), "no") },
			Next:  func(models.FormData) StepID { return StepConfirm },
			Prev:  func(models.FormData) StepID { return StepPreferredCommunication },
		},

		StepConfirm: {
			ID:     StepConfirm,
			Prompt: DynamicPrompt(applicationConfirmation),
			Help:   "Your application is complete! Type START for a new application or EXIT to end the conversation.",
			Reentry: "✅ Your application has already been submitted and is under review.\n\n" +
				"Type START to begin a new application.",
			Choices: []QuickReply{{Title: "Start New Application", Payload: "START"}},
			Reset:   func(input string) bool { return strings.EqualFold(strings.TrimSpace(input), "start") },
			Prev:    func(models.FormData) StepID { return StepReview },
		},
	}

	return flow
}
