package models

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application statuses for the full loan-application flow.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
)

// LoanApplication is the record committed when the application flow reaches
// its terminal step. Like Lead, it is created once and only its status is
// updated afterwards.
type LoanApplication struct {
	gorm.Model
	ApplicationID          string  `json:"application_id" gorm:"uniqueIndex"`
	PhoneNumber            string  `json:"phone_number" gorm:"index"`
	FullName               string  `json:"full_name"`
	Email                  string  `json:"email"`
	LoanType               string  `json:"loan_type"`
	LoanAmount             int     `json:"loan_amount"`
	Purpose                string  `json:"purpose"`
	MonthlyIncome          int     `json:"monthly_income"`
	EmploymentStatus       string  `json:"employment_status"`
	CurrentEmployer        string  `json:"current_employer"`
	YearsEmployed          int     `json:"years_employed"`
	ExistingLoans          bool    `json:"existing_loans"`
	CibilConsent           bool    `json:"cibil_consent"`
	PreferredTenure        int     `json:"preferred_tenure"`
	PreferredCommunication string  `json:"preferred_communication"`
	Status                 string  `json:"status" gorm:"index;default:pending"`
	ReferrerID             string  `json:"referrer_id,omitempty"`
	IsReferral             bool    `json:"is_referral" gorm:"default:false"`
}

// BeforeCreate assigns the public application ID and default status.
func (a *LoanApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationID == "" {
		a.ApplicationID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusPending
	}
	return nil
}

// ValidApplicationStatus reports whether s is one of the defined statuses.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusSubmitted,
		ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// ApplicationQuery holds dashboard list filters and pagination.
type ApplicationQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// Normalize clamps pagination to sane defaults.
func (q *ApplicationQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// Offset returns the row offset for the current page.
func (q *ApplicationQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ApplicationFromConversation builds a LoanApplication from a completed
// application-flow conversation. Numeric fields were validated as bounded
// integers by the step validators, so Atoi failures here mean corrupted data.
func ApplicationFromConversation(phone string, data FormData) (*LoanApplication, error) {
	for _, field := range []string{
		"full_name", "email", "loan_type", "loan_amount", "purpose",
		"monthly_income", "employment_status", "current_employer",
		"years_employed", "existing_loans", "preferred_tenure",
		"preferred_communication",
	} {
		if data[field] == "" {
			return nil, fmt.Errorf("missing required field %q", field)
		}
	}

	amount, err := strconv.Atoi(data["loan_amount"])
	if err != nil {
		return nil, fmt.Errorf("invalid loan_amount %q: %w", data["loan_amount"], err)
	}
	income, err := strconv.Atoi(data["monthly_income"])
	if err != nil {
		return nil, fmt.Errorf("invalid monthly_income %q: %w", data["monthly_income"], err)
	}
	years, err := strconv.Atoi(data["years_employed"])
	if err != nil {
		return nil, fmt.Errorf("invalid years_employed %q: %w", data["years_employed"], err)
	}
	tenure, err := strconv.Atoi(data["preferred_tenure"])
	if err != nil {
		return nil, fmt.Errorf("invalid preferred_tenure %q: %w", data["preferred_tenure"], err)
	}

	return &LoanApplication{
		PhoneNumber:            phone,
		FullName:               data["full_name"],
		Email:                  data["email"],
		LoanType:               data["loan_type"],
		LoanAmount:             amount,
		Purpose:                data["purpose"],
		MonthlyIncome:          income,
		EmploymentStatus:       data["employment_status"],
		CurrentEmployer:        data["current_employer"],
		YearsEmployed:          years,
		ExistingLoans:          data["existing_loans"] == "yes",
		CibilConsent:           data["cibil_consent"] == "yes",
		PreferredTenure:        tenure,
		PreferredCommunication: data["preferred_communication"],
		Status:                 ApplicationStatusPending,
		ReferrerID:             data["referrer_id"],
		IsReferral:             data["referrer_id"] != "",
	}, nil
}
