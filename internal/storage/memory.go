package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Pranav4399/loans/internal/models"
)

// MemoryStore keeps everything in maps. Used for tests and for running the
// service without a database (USE_MEMORY_STORE=true).
type MemoryStore struct {
	conversations map[string]*models.ConversationState
	leads         map[string]*models.Lead
	applications  map[string]*models.LoanApplication
	referrers     map[string]*models.Referrer

	mu sync.RWMutex

	nextID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*models.ConversationState),
		leads:         make(map[string]*models.Lead),
		applications:  make(map[string]*models.LoanApplication),
		referrers:     make(map[string]*models.Referrer),
	}
}

// rowID mimics the auto-increment primary key; callers must hold mu.
func (m *MemoryStore) rowID() uint {
	m.nextID++
	return m.nextID
}

// Conversation operations

func (m *MemoryStore) GetConversation(phone string) (*models.ConversationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.conversations[phone]
	if !exists {
		return nil, nil
	}
	copied := *state
	copied.FormData = state.FormData.Clone()
	return &copied, nil
}

func (m *MemoryStore) CreateConversation(phone string) (*models.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// One row per phone: creating over an existing conversation is a bug
	// in the caller, not an upsert.
	if _, exists := m.conversations[phone]; exists {
		return nil, ErrAlreadyExists
	}

	now := time.Now()
	state := &models.ConversationState{
		Model:       gorm.Model{ID: m.rowID(), CreatedAt: now, UpdatedAt: now},
		PhoneNumber: phone,
		CurrentStep: models.InitialConversationStep,
		FormData:    models.FormData{},
	}
	m.conversations[phone] = state

	copied := *state
	copied.FormData = state.FormData.Clone()
	return &copied, nil
}

func (m *MemoryStore) UpdateConversation(phone string, update *models.ConversationUpdate) (*models.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateConversationLocked(phone, update)
}

// updateConversationLocked applies a partial update; callers must hold mu.
func (m *MemoryStore) updateConversationLocked(phone string, update *models.ConversationUpdate) (*models.ConversationState, error) {
	state, exists := m.conversations[phone]
	if !exists {
		return nil, ErrNotFound
	}

	if update.ClearFormData {
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
	state.UpdatedAt = time.Now()

	copied := *state
	copied.FormData = state.FormData.Clone()
	return &copied, nil
}

func (m *MemoryStore) DeleteStaleConversations(olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for phone, state := range m.conversations {
		if !state.IsComplete && state.UpdatedAt.Before(olderThan) {
			delete(m.conversations, phone)
			removed++
		}
	}
	return removed, nil
}

// Record copies. Like conversation reads, record reads hand out copies so
// callers can't reach into the store's maps.

func copyLead(lead *models.Lead) *models.Lead {
	copied := *lead
	return &copied
}

func copyApplication(app *models.LoanApplication) *models.LoanApplication {
	copied := *app
	return &copied
}

func copyReferrer(referrer *models.Referrer) *models.Referrer {
	copied := *referrer
	return &copied
}

// Completion commits

func (m *MemoryStore) CommitLead(phone string, update *models.ConversationUpdate, lead *models.Lead) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Reject before creating anything so a failed commit leaves no record.
	if _, exists := m.conversations[phone]; !exists {
		return nil, ErrNotFound
	}

	created := m.createLeadLocked(lead)
	if _, err := m.updateConversationLocked(phone, update); err != nil {
		delete(m.leads, created.LeadID)
		return nil, err
	}
	return created, nil
}

func (m *MemoryStore) CommitApplication(phone string, update *models.ConversationUpdate, app *models.LoanApplication) (*models.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conversations[phone]; !exists {
		return nil, ErrNotFound
	}

	created := m.createApplicationLocked(app)
	if _, err := m.updateConversationLocked(phone, update); err != nil {
		delete(m.applications, created.ApplicationID)
		return nil, err
	}
	return created, nil
}

// Lead operations

func (m *MemoryStore) CreateLead(lead *models.Lead) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.createLeadLocked(lead), nil
}

// createLeadLocked assigns identity/defaults and stores a copy; callers
// must hold mu.
func (m *MemoryStore) createLeadLocked(lead *models.Lead) *models.Lead {
	now := time.Now()
	lead.ID = m.rowID()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.LeadID == "" {
		lead.LeadID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusPending
	}

	m.leads[lead.LeadID] = copyLead(lead)
	return lead
}

func (m *MemoryStore) GetLeadByID(leadID string) (*models.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lead, exists := m.leads[leadID]
	if !exists {
		return nil, ErrNotFound
	}
	return copyLead(lead), nil
}

func leadMatchesSearch(lead *models.Lead, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{lead.FullName, lead.ContactNumber, lead.Category, lead.Subcategory} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) ListLeads(query *models.LeadQuery) ([]*models.Lead, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query.Normalize()

	var matched []*models.Lead
	for _, lead := range m.leads {
		if query.Status != "" && lead.Status != query.Status {
			continue
		}
		if query.Category != "" && lead.Category != query.Category {
			continue
		}
		if search := strings.TrimSpace(query.Search); search != "" && !leadMatchesSearch(lead, search) {
			continue
		}
		matched = append(matched, copyLead(lead))
	}

	// Newest first, matching the dashboard's default ordering.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MemoryStore) GetLeadStats() (*models.LeadStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.LeadStats{}
	for _, lead := range m.leads {
		switch lead.Category {
		case models.CategoryLoans:
			stats.Loans++
		case models.CategoryInsurance:
			stats.Insurance++
		case models.CategoryMutualFunds:
			stats.MutualFunds++
		}
		stats.Total++
	}
	return stats, nil
}

func (m *MemoryStore) UpdateLeadStatus(leadID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, exists := m.leads[leadID]
	if !exists {
		return ErrNotFound
	}
	lead.Status = status
	lead.UpdatedAt = time.Now()
	return nil
}

// Loan application operations

func (m *MemoryStore) CreateApplication(app *models.LoanApplication) (*models.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.createApplicationLocked(app), nil
}

// createApplicationLocked assigns identity/defaults and stores a copy;
// callers must hold mu.
func (m *MemoryStore) createApplicationLocked(app *models.LoanApplication) *models.LoanApplication {
	now := time.Now()
	app.ID = m.rowID()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.ApplicationID == "" {
		app.ApplicationID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}

	m.applications[app.ApplicationID] = copyApplication(app)
	return app
}

func (m *MemoryStore) GetApplicationByID(applicationID string) (*models.LoanApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, exists := m.applications[applicationID]
	if !exists {
		return nil, ErrNotFound
	}
	return copyApplication(app), nil
}

func (m *MemoryStore) ListApplications(query *models.ApplicationQuery) ([]*models.LoanApplication, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query.Normalize()

	var matched []*models.LoanApplication
	for _, app := range m.applications {
		if query.Status != "" && app.Status != query.Status {
			continue
		}
		if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
			if !strings.Contains(strings.ToLower(app.FullName), search) &&
				!strings.Contains(strings.ToLower(app.PhoneNumber), search) &&
				!strings.Contains(strings.ToLower(app.LoanType), search) {
				continue
			}
		}
		matched = append(matched, copyApplication(app))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MemoryStore) UpdateApplicationStatus(applicationID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, exists := m.applications[applicationID]
	if !exists {
		return ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now()
	return nil
}

// Referrer operations

func (m *MemoryStore) CreateReferrer(referrer *models.Referrer) (*models.Referrer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.referrers {
		if existing.PhoneNumber == referrer.PhoneNumber {
			return nil, ErrAlreadyExists
		}
	}

	now := time.Now()
	referrer.ID = m.rowID()
	referrer.CreatedAt = now
	referrer.UpdatedAt = now
	if referrer.ReferrerID == "" {
		referrer.ReferrerID = uuid.NewString()
	}
	referrer.IsActive = true

	m.referrers[referrer.ReferrerID] = copyReferrer(referrer)
	return referrer, nil
}

func (m *MemoryStore) GetReferrerByPhone(phone string) (*models.Referrer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, referrer := range m.referrers {
		if referrer.PhoneNumber == phone {
			return copyReferrer(referrer), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetReferrerByID(referrerID string) (*models.Referrer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	referrer, exists := m.referrers[referrerID]
	if !exists {
		return nil, ErrNotFound
	}
	return copyReferrer(referrer), nil
}

func (m *MemoryStore) GetReferrerApplications(referrerID string) ([]*models.LoanApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var apps []*models.LoanApplication
	for _, app := range m.applications {
		if app.IsReferral && app.ReferrerID == referrerID {
			apps = append(apps, copyApplication(app))
		}
	}
	return apps, nil
}
