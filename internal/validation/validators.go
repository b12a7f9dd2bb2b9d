// Package validation holds the pure input predicates used by the chatbot
// steps. Validators never panic and never mutate anything; they only report
// whether raw user text is acceptable. Error wording lives with the step
// catalog, not here.
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// E.164: leading +, non-zero first digit, up to 15 digits total.
	intlPhoneRe = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	bareDigits  = regexp.MustCompile(`^\d+$`)

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	lettersOnlyRe = regexp.MustCompile(`^[A-Za-z]+$`)

	// Letters, digits, whitespace and limited punctuation for free text.
	freeTextRe = regexp.MustCompile(`^[A-Za-z0-9\s.,'&()/-]+$`)
)

// PhonePolicy selects the deployment's phone format rules. The strict
// default only accepts international E.164 numbers with a leading +;
// AllowBare additionally accepts a bare digit string within the window.
type PhonePolicy struct {
	AllowBare bool
	BareMin   int
	BareMax   int
}

// DefaultPhonePolicy requires the international format.
func DefaultPhonePolicy() PhonePolicy {
	return PhonePolicy{AllowBare: false, BareMin: 10, BareMax: 12}
}

// Phone validates a contact number under the given policy. Formatting
// characters (spaces, dashes) are not accepted.
func Phone(s string, p PhonePolicy) bool {
	s = strings.TrimSpace(s)
	if intlPhoneRe.MatchString(s) {
		return true
	}
	if p.AllowBare && bareDigits.MatchString(s) &&
		len(s) >= p.BareMin && len(s) <= p.BareMax {
		return true
	}
	return false
}

// NamePolicy selects full-name strictness.
type NamePolicy int

const (
	// NameSingleToken accepts any non-empty name.
	NameSingleToken NamePolicy = iota
	// NameTwoTokens requires at least two tokens of two or more letters
	// each, letters only.
	NameTwoTokens
)

// FullName validates a person's name under the given policy.
func FullName(s string, p NamePolicy) bool {
	tokens := strings.Fields(strings.TrimSpace(s))
	switch p {
	case NameSingleToken:
		return len(tokens) > 0
	case NameTwoTokens:
		if len(tokens) < 2 {
			return false
		}
		for _, tok := range tokens {
			if len(tok) < 2 || !lettersOnlyRe.MatchString(tok) {
				return false
			}
		}
		return true
	}
	return false
}

// Email checks the standard local@domain.tld shape.
func Email(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// BoundedInt validates a plain integer within the inclusive [min, max]
// range. Currency symbols, commas and decimals are rejected.
func BoundedInt(s string, min, max int) bool {
	s = strings.TrimSpace(s)
	if !bareDigits.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= min && n <= max
}

// Choice requires the input to exactly match one of the option keys.
// No fuzzy matching.
func Choice(s string, keys []string) bool {
	s = strings.TrimSpace(s)
	for _, k := range keys {
		if s == k {
			return true
		}
	}
	return false
}

// YesNo accepts "yes" or "no" in any case.
func YesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "no":
		return true
	}
	return false
}

// IsYes reports whether the (already validated) input is an affirmative.
func IsYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

// FreeText validates trimmed length within [min, max] and restricts the
// character set to letters, digits, whitespace and limited punctuation.
func FreeText(s string, min, max int) bool {
	s = strings.TrimSpace(s)
	if len(s) < min || len(s) > max {
		return false
	}
	return freeTextRe.MatchString(s)
}
