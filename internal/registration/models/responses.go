package models

// Option is a selectable choice offered by an enumerated step.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StepResult is the response to a single Advance call. Exactly one of the
// two shapes is populated: the error pair when validation failed (the
// conversation did not move), or the next-step fields when it advanced.
type StepResult struct {
	NextStep         Step     `json:"next_step,omitempty"`
	NextStepMessage  string   `json:"next_step_message,omitempty"`
	Options          []Option `json:"options,omitempty"`
	RegistrationData Fields   `json:"registration_data,omitempty"`
	Message          string   `json:"message,omitempty"`
	ConversationID   string   `json:"conversation_id,omitempty"`
	Error            string   `json:"error,omitempty"`
	ErrorStep        Step     `json:"error_step,omitempty"`
}

// Rejected reports whether the result is a validation rejection.
func (r *StepResult) Rejected() bool { return r.Error != "" }

// ListQuery selects a page of completed registrations.
type ListQuery struct {
	Skip      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Page is one page of completed registrations plus the pre-pagination total.
type Page struct {
	Registrations []Fields `json:"registrations"`
	TotalCount    int      `json:"total_count"`
	Skip          int      `json:"skip"`
	Limit         int      `json:"limit"`
}
