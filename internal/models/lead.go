package models

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead statuses follow the dashboard workflow: a new lead starts as pending
// and moves forward as the sales team works it.
const (
	LeadStatusPending   = "pending"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusClosed    = "closed"
)

// Product categories offered over the chatbot.
const (
	CategoryLoans       = "Loans"
	CategoryInsurance   = "Insurance"
	CategoryMutualFunds = "Mutual Funds"
)

// Lead is the business record committed exactly once per completed
// conversation. The dashboard only ever mutates Status afterwards.
type Lead struct {
	gorm.Model
	LeadID        string `json:"lead_id" gorm:"uniqueIndex"`
	FullName      string `json:"full_name"`
	ContactNumber string `json:"contact_number" gorm:"index"`
	Category      string `json:"category" gorm:"index"`
	Subcategory   string `json:"subcategory"`
	Status        string `json:"status" gorm:"index;default:pending"`
	ReferrerID    string `json:"referrer_id,omitempty"`
}

// BeforeCreate assigns the public lead ID and default status.
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.LeadID == "" {
		l.LeadID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = LeadStatusPending
	}
	return nil
}

// ValidLeadStatus reports whether s is one of the defined lead statuses.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusPending, LeadStatusContacted, LeadStatusConverted, LeadStatusClosed:
		return true
	}
	return false
}

// LeadQuery holds dashboard list filters and pagination.
type LeadQuery struct {
	Page     int
	Limit    int
	Status   string
	Category string
	Search   string
}

// Normalize clamps pagination to sane defaults.
func (q *LeadQuery) Normalize() {
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
func (q *LeadQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// LeadStats is the per-category breakdown shown on the dashboard.
type LeadStats struct {
	Loans       int64 `json:"loans"`
	Insurance   int64 `json:"insurance"`
	MutualFunds int64 `json:"mutualFunds"`
	Total       int64 `json:"total"`
}

// LeadFromConversation builds a Lead from the answers a completed lead-flow
// conversation collected. Returns an error if a required field is missing,
// which would indicate the conversation reached the terminal step without
// passing every validator.
func LeadFromConversation(phone string, data FormData) (*Lead, error) {
	for _, field := range []string{"full_name", "contact_number", "category", "subcategory"} {
		if data[field] == "" {
			return nil, fmt.Errorf("missing required field %q", field)
		}
	}

	return &Lead{
		FullName:      data["full_name"],
		ContactNumber: data["contact_number"],
		Category:      data["category"],
		Subcategory:   data["subcategory"],
		Status:        LeadStatusPending,
		ReferrerID:    data["referrer_id"],
	}, nil
}
