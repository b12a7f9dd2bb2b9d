package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Pranav4399/loans/internal/models"
)

// Interface compliance checks.
var (
	_ Store = (*DatabaseStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// DatabaseStore is the PostgreSQL implementation backed by GORM.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store on an already-connected GORM handle.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Conversation operations

func (s *DatabaseStore) GetConversation(phone string) (*models.ConversationState, error) {
	var state models.ConversationState
	err := s.db.Where("phone_number = ?", phone).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &state, nil
}

func (s *DatabaseStore) CreateConversation(phone string) (*models.ConversationState, error) {
	state := &models.ConversationState{
		PhoneNumber: phone,
		CurrentStep: models.InitialConversationStep,
		FormData:    models.FormData{},
	}
	// The unique index on phone_number rejects a second row for the same
	// user, which is what enforces the one-conversation invariant under
	// concurrent first messages.
	if err := s.db.Create(state).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return state, nil
}

// applyConversationUpdate runs the load-merge-write of a conversation
// update on the given transaction handle.
func applyConversationUpdate(tx *gorm.DB, phone string, update *models.ConversationUpdate) (*models.ConversationState, error) {
	var state models.ConversationState
	if err := tx.Where("phone_number = ?", phone).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if update.ClearFormData {
		state.FormData = models.FormData{}
	}
	if state.FormData == nil {
		state.FormData = models.FormData{}
	}
	for k, v := range update.FormData {
		state.FormData[k] = v
	}
	if update.CurrentStep != nil {
		state.CurrentStep = *update.CurrentStep
	}
	if update.IsComplete != nil {
		state.IsComplete = *update.IsComplete
	}

	err := tx.Model(&state).Select("current_step", "form_data", "is_complete", "updated_at").
		Updates(map[string]interface{}{
			"current_step": state.CurrentStep,
			"form_data":    state.FormData,
			"is_complete":  state.IsComplete,
			"updated_at":   time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *DatabaseStore) UpdateConversation(phone string, update *models.ConversationUpdate) (*models.ConversationState, error) {
	var state *models.ConversationState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		state, txErr = applyConversationUpdate(tx, phone, update)
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	return state, nil
}

// Completion commits. The record create and the completing state write
// share one database transaction: a failure rolls both back, so the
// conversation stays on the pre-terminal step and the retried message
// re-runs the whole commit instead of creating a second record.

func (s *DatabaseStore) CommitLead(phone string, update *models.ConversationUpdate, lead *models.Lead) (*models.Lead, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		_, err := applyConversationUpdate(tx, phone, update)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("commit lead: %w", err)
	}
	return lead, nil
}

func (s *DatabaseStore) CommitApplication(phone string, update *models.ConversationUpdate, app *models.LoanApplication) (*models.LoanApplication, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		_, err := applyConversationUpdate(tx, phone, update)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("commit application: %w", err)
	}
	return app, nil
}

func (s *DatabaseStore) DeleteStaleConversations(olderThan time.Time) (int64, error) {
	result := s.db.Where("is_complete = ? AND updated_at < ?", false, olderThan).
		Delete(&models.ConversationState{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete stale conversations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Lead operations

func (s *DatabaseStore) CreateLead(lead *models.Lead) (*models.Lead, error) {
	if err := s.db.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (s *DatabaseStore) GetLeadByID(leadID string) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.Where("lead_id = ?", leadID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &lead, nil
}

func (s *DatabaseStore) ListLeads(query *models.LeadQuery) ([]*models.Lead, int64, error) {
	query.Normalize()

	q := s.db.Model(&models.Lead{})
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"LOWER(full_name) LIKE ? OR LOWER(contact_number) LIKE ? OR LOWER(category) LIKE ? OR LOWER(subcategory) LIKE ?",
			term, term, term, term,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	var leads []*models.Lead
	err := q.Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit).
		Find(&leads).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	return leads, total, nil
}

func (s *DatabaseStore) GetLeadStats() (*models.LeadStats, error) {
	stats := &models.LeadStats{}

	type categoryCount struct {
		Category string
		Count    int64
	}
	var counts []categoryCount
	err := s.db.Model(&models.Lead{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("lead stats: %w", err)
	}

	for _, c := range counts {
		switch c.Category {
		case models.CategoryLoans:
			stats.Loans = c.Count
		case models.CategoryInsurance:
			stats.Insurance = c.Count
		case models.CategoryMutualFunds:
			stats.MutualFunds = c.Count
		}
		stats.Total += c.Count
	}
	return stats, nil
}

func (s *DatabaseStore) UpdateLeadStatus(leadID, status string) error {
	result := s.db.Model(&models.Lead{}).
		Where("lead_id = ?", leadID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update lead status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Loan application operations

func (s *DatabaseStore) CreateApplication(app *models.LoanApplication) (*models.LoanApplication, error) {
	if err := s.db.Create(app).Error; err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (s *DatabaseStore) GetApplicationByID(applicationID string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := s.db.Where("application_id = ?", applicationID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

func (s *DatabaseStore) ListApplications(query *models.ApplicationQuery) ([]*models.LoanApplication, int64, error) {
	query.Normalize()

	q := s.db.Model(&models.LoanApplication{})
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"LOWER(full_name) LIKE ? OR LOWER(phone_number) LIKE ? OR LOWER(loan_type) LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	var apps []*models.LoanApplication
	err := q.Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return apps, total, nil
}

func (s *DatabaseStore) UpdateApplicationStatus(applicationID, status string) error {
	result := s.db.Model(&models.LoanApplication{}).
		Where("application_id = ?", applicationID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Referrer operations

func (s *DatabaseStore) CreateReferrer(referrer *models.Referrer) (*models.Referrer, error) {
	if err := s.db.Create(referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create referrer: %w", err)
	}
	return referrer, nil
}

func (s *DatabaseStore) GetReferrerByPhone(phone string) (*models.Referrer, error) {
	var referrer models.Referrer
	err := s.db.Where("phone_number = ?", phone).First(&referrer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get referrer: %w", err)
	}
	return &referrer, nil
}

func (s *DatabaseStore) GetReferrerByID(referrerID string) (*models.Referrer, error) {
	var referrer models.Referrer
	err := s.db.Where("referrer_id = ?", referrerID).First(&referrer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get referrer: %w", err)
	}
	return &referrer, nil
}

func (s *DatabaseStore) GetReferrerApplications(referrerID string) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	err := s.db.Where("referrer_id = ? AND is_referral = ?", referrerID, true).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("get referrer applications: %w", err)
	}
	return apps, nil
}
