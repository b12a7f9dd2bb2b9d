package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	strict := DefaultPhonePolicy()
	bare := PhonePolicy{AllowBare: true, BareMin: 10, BareMax: 12}

	assert.True(t, Phone("+919876543210", strict))
	assert.True(t, Phone("+14155552671", strict))
	assert.False(t, Phone("98765", strict), "too short")
	assert.False(t, Phone("98765", bare), "too short even for bare policy")
	assert.False(t, Phone("+0123456789", strict), "zero after plus")
	assert.False(t, Phone("+91 98765 43210", strict), "no formatting characters")
	assert.False(t, Phone("+919876543210987654", strict), "over E.164 length")

	// Bare 11 digits: valid only when the policy allows bare numbers.
	assert.True(t, Phone("98765432100", bare))
	assert.False(t, Phone("98765432100", strict))
}

func TestFullName(t *testing.T) {
	assert.True(t, FullName("John Smith", NameTwoTokens))
	assert.True(t, FullName("Mary Jane Wilson", NameTwoTokens))
	assert.False(t, FullName("John", NameTwoTokens))
	assert.False(t, FullName("J S", NameTwoTokens), "tokens too short")
	assert.False(t, FullName("John Smith3", NameTwoTokens), "digits not allowed")
	assert.False(t, FullName("   ", NameTwoTokens))

	assert.True(t, FullName("John", NameSingleToken))
	assert.False(t, FullName("   ", NameSingleToken))
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("user@example.com"))
	assert.True(t, Email("first.last@sub.example.co.in"))
	assert.False(t, Email("not-an-email"))
	assert.False(t, Email("user@domain"))
	assert.False(t, Email("user name@example.com"))
}

func TestBoundedInt(t *testing.T) {
	assert.True(t, BoundedInt("10000", 10000, 10000000))
	assert.True(t, BoundedInt("10000000", 10000, 10000000))
	assert.False(t, BoundedInt("9999", 10000, 10000000))
	assert.False(t, BoundedInt("10000001", 10000, 10000000))
	assert.False(t, BoundedInt("₹50000", 10000, 10000000))
	assert.False(t, BoundedInt("50,000", 10000, 10000000))
	assert.False(t, BoundedInt("50000.50", 10000, 10000000))
}

func TestChoice(t *testing.T) {
	keys := []string{"1", "2", "3"}
	assert.True(t, Choice("2", keys))
	assert.False(t, Choice("4", keys))
	assert.False(t, Choice("Loans", keys), "no fuzzy matching")
	assert.True(t, Choice(" 1 ", keys), "surrounding whitespace trimmed")
}

func TestYesNo(t *testing.T) {
	assert.True(t, YesNo("yes"))
	assert.True(t, YesNo("NO"))
	assert.True(t, YesNo("Yes"))
	assert.False(t, YesNo("yep"))
	assert.False(t, YesNo(""))

	assert.True(t, IsYes("YES"))
	assert.False(t, IsYes("no"))
}

func TestFreeText(t *testing.T) {
	assert.True(t, FreeText("Home renovation work", 10, 100))
	assert.False(t, FreeText("short", 10, 100))
	assert.False(t, FreeText("contains <script> tags which are not allowed", 10, 100))
}
