package audit

import (
	"time"

	"bhandara/internal/registration/models"
)

// Action classifies a lifecycle event on a conversation.
type Action string

const (
	ActionStarted   Action = "conversation_started"
	ActionAdvanced  Action = "step_advanced"
	ActionRejected  Action = "input_rejected"
	ActionCompleted Action = "registration_completed"
	ActionCancelled Action = "registration_cancelled"
)

// Event is emitted from the engine to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time
	ConversationID string
	Action         Action
	Step           models.Step
}
