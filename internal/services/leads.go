package services

import (
	"fmt"

	"github.com/Pranav4399/loans/internal/models"
	"github.com/Pranav4399/loans/internal/storage"
)

// LeadService wraps the dashboard's read/update access to leads and loan
// applications, keeping status-enum validation out of the HTTP handlers.
type LeadService struct {
	store storage.Store
}

// NewLeadService creates a lead service.
func NewLeadService(store storage.Store) *LeadService {
	return &LeadService{store: store}
}

// ListLeads returns one page of leads plus the unpaginated total.
func (s *LeadService) ListLeads(query *models.LeadQuery) ([]*models.Lead, int64, error) {
	return s.store.ListLeads(query)
}

// GetLead fetches one lead by its public ID.
func (s *LeadService) GetLead(leadID string) (*models.Lead, error) {
	return s.store.GetLeadByID(leadID)
}

// GetStats returns the per-category lead counts.
func (s *LeadService) GetStats() (*models.LeadStats, error) {
	return s.store.GetLeadStats()
}

// UpdateLeadStatus moves a lead to a new workflow status, rejecting values
// outside the defined enum.
func (s *LeadService) UpdateLeadStatus(leadID, status string) error {
	if !models.ValidLeadStatus(status) {
		return fmt.Errorf("invalid lead status %q", status)
	}
	return s.store.UpdateLeadStatus(leadID, status)
}

// ListApplications returns one page of loan applications plus the total.
func (s *LeadService) ListApplications(query *models.ApplicationQuery) ([]*models.LoanApplication, int64, error) {
	return s.store.ListApplications(query)
}

// GetApplication fetches one application by its public ID.
func (s *LeadService) GetApplication(applicationID string) (*models.LoanApplication, error) {
	return s.store.GetApplicationByID(applicationID)
}

// UpdateApplicationStatus moves an application to a new status, rejecting
// values outside the defined enum.
func (s *LeadService) UpdateApplicationStatus(applicationID, status string) error {
	if !models.ValidApplicationStatus(status) {
		return fmt.Errorf("invalid application status %q", status)
	}
	return s.store.UpdateApplicationStatus(applicationID, status)
}
