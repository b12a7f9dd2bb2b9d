package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// FormData holds the validated answers collected so far in a conversation,
// keyed by field name. Stored as a JSON column.
type FormData map[string]string

// Value implements driver.Valuer so GORM can persist the map as JSON.
func (f FormData) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner to read the JSON column back into the map.
func (f *FormData) Scan(value interface{}) error {
	if value == nil {
		*f = FormData{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for FormData: %T", value)
	}

	if len(data) == 0 {
		*f = FormData{}
		return nil
	}
	return json.Unmarshal(data, f)
}

// Clone returns a copy so the engine can merge answers without mutating
// the loaded state.
func (f FormData) Clone() FormData {
	copied := make(FormData, len(f))
	for k, v := range f {
		copied[k] = v
	}
	return copied
}

// InitialConversationStep is the step every new conversation starts on;
// both flow catalogs use it as their entry point.
const InitialConversationStep = "start"

// ConversationState tracks one in-progress chatbot conversation per phone
// number. The uniqueIndex on PhoneNumber is what enforces "at most one
// conversation record per user" - updates always go through the existing row.
type ConversationState struct {
	gorm.Model
	PhoneNumber string   `json:"phone_number" gorm:"uniqueIndex"`
	CurrentStep string   `json:"current_step"`
	FormData    FormData `json:"form_data" gorm:"type:jsonb"`
	IsComplete  bool     `json:"is_complete" gorm:"default:false"`
}

// ConversationUpdate carries a partial update to a conversation. Nil fields
// are left untouched; FormData entries are merged into the stored map, not
// replaced wholesale.
type ConversationUpdate struct {
	CurrentStep *string
	FormData    FormData
	IsComplete  *bool

	// ClearFormData drops all accumulated answers before any merge.
	// Used by RESTART, which is the one operation allowed to shrink the
	// otherwise monotonically growing data.
	ClearFormData bool
}

// StringPtr is a small helper for building ConversationUpdate values.
func StringPtr(s string) *string { return &s }

// BoolPtr is a small helper for building ConversationUpdate values.
func BoolPtr(b bool) *bool { return &b }
