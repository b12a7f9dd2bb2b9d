package storage

import (
	"errors"
	"time"

	"github.com/Pranav4399/loans/internal/models"
)

// Sentinel errors shared by both store implementations.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Store defines the persistence contract the chatbot and dashboard depend
// on. Conversation operations are keyed by the canonical phone number;
// UpdateConversation merges FormData into the stored map rather than
// replacing it, and the phone uniqueness rule guarantees at most one
// conversation row per user.
type Store interface {
	// Conversation state operations
	GetConversation(phone string) (*models.ConversationState, error)
	CreateConversation(phone string) (*models.ConversationState, error)
	UpdateConversation(phone string, update *models.ConversationUpdate) (*models.ConversationState, error)
	DeleteStaleConversations(olderThan time.Time) (int64, error)

	// Completion commits. Each creates the flow's record and applies the
	// conversation update that marks the conversation complete in a single
	// atomic operation: either both are persisted or neither is, so a
	// retried terminal message can never double-create the record.
	CommitLead(phone string, update *models.ConversationUpdate, lead *models.Lead) (*models.Lead, error)
	CommitApplication(phone string, update *models.ConversationUpdate, app *models.LoanApplication) (*models.LoanApplication, error)

	// Lead operations
	CreateLead(lead *models.Lead) (*models.Lead, error)
	GetLeadByID(leadID string) (*models.Lead, error)
	ListLeads(query *models.LeadQuery) ([]*models.Lead, int64, error)
	GetLeadStats() (*models.LeadStats, error)
	UpdateLeadStatus(leadID, status string) error

	// Loan application operations
	CreateApplication(app *models.LoanApplication) (*models.LoanApplication, error)
	GetApplicationByID(applicationID string) (*models.LoanApplication, error)
	ListApplications(query *models.ApplicationQuery) ([]*models.LoanApplication, int64, error)
	UpdateApplicationStatus(applicationID, status string) error

	// Referrer operations
	CreateReferrer(referrer *models.Referrer) (*models.Referrer, error)
	GetReferrerByPhone(phone string) (*models.Referrer, error)
	GetReferrerByID(referrerID string) (*models.Referrer, error)
	GetReferrerApplications(referrerID string) ([]*models.LoanApplication, error)
}
