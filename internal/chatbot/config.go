package chatbot

import (
	"github.com/Pranav4399/loans/internal/validation"
)

// Policy bundles the deployment-selectable validation rules. Both knobs
// exist because observed deployments disagree on them; the defaults are the
// strict variants.
type Policy struct {
	Phone validation.PhonePolicy
	Name  validation.NamePolicy
}

// DefaultPolicy requires international phone numbers and two-token names.
func DefaultPolicy() Policy {
	return Policy{
		Phone: validation.DefaultPhonePolicy(),
		Name:  validation.NameTwoTokens,
	}
}

// NewFlow builds the flow selected by name ("lead" or "application"),
// defaulting to the lead flow.
func NewFlow(name string, policy Policy) *Flow {
	if name == "application" {
		return NewApplicationFlow(policy)
	}
	return NewLeadFlow(policy)
}
