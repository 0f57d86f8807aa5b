// Package models holds the registration conversation record and the wire
// DTOs shared by the engine, stores and transport.
package models

import "time"

// Step names a point in the registration flow. The zero value is invalid;
// records always carry a defined step.
type Step string

const (
	StepStart                 Step = "start"
	StepName                  Step = "name"
	StepEmail                 Step = "email"
	StepPhone                 Step = "phone"
	StepMobile                Step = "mobile"
	StepAgeGroup              Step = "age_group"
	StepMeditationExperience  Step = "meditation_experience"
	StepAbhyasiID             Step = "abhyasi_id"
	StepArrivalDate           Step = "arrival_date"
	StepDepartureDate         Step = "departure_date"
	StepTravelConfirmation    Step = "travel_requirements_confirmation"
	StepTravelMode            Step = "travel_requirements_mode"
	StepTravelLocation        Step = "travel_requirements_location"
	StepAccommodationConfirm  Step = "accommodation_confirmation"
	StepAccommodationType     Step = "accommodation_type"
	StepAccommodationPeople   Step = "accommodation_people"
	StepConfirmation          Step = "confirmation"
	StepCompleted             Step = "completed"
	StepCancelled             Step = "cancelled"
)

// FieldRegistrationTimestamp is stamped into Fields when a conversation
// completes.
const FieldRegistrationTimestamp = "registration_timestamp"

// Fields maps collected field names to values. Values are strings, integers
// (people counts) or nested objects for composite fields. It grows
// monotonically until the conversation reaches a terminal step.
type Fields map[string]any

// Clone returns a shallow copy safe to hand across the store boundary.
// Nested composite objects are copied one level deep, which covers every
// shape the flow commits.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		if nested, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(nested))
			for nk, nv := range nested {
				inner[nk] = nv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}

// TravelDetails is the in-progress travel composite, committed into Fields
// by the last step of the travel sub-graph.
type TravelDetails struct {
	Mode     string `json:"mode"`
	Location string `json:"location"`
}

// AccommodationDetails is the in-progress accommodation composite.
type AccommodationDetails struct {
	Type   string `json:"type"`
	People int    `json:"people"`
}

// Scratch holds partially-built composite values between the steps of a
// sub-graph. A committed composite lives in Fields and its scratch slot is
// cleared, so a snapshot taken after commit never carries it.
type Scratch struct {
	Travel        *TravelDetails        `json:"travel,omitempty"`
	Accommodation *AccommodationDetails `json:"accommodation,omitempty"`
}

func (s *Scratch) empty() bool {
	return s == nil || (s.Travel == nil && s.Accommodation == nil)
}

// Conversation is one registration attempt. The JSON shape matches the
// snapshot format on disk: {id, timestamp, steps, current_step,
// registration_data}, with a transient scratch slot that only appears while
// a composite is mid-flight.
type Conversation struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Steps       []string `json:"steps"`
	CurrentStep Step     `json:"current_step"`
	Fields      Fields   `json:"registration_data"`
	Scratch     *Scratch `json:"scratch,omitempty"`
}

// NewConversation allocates a fresh record at the start step.
func NewConversation(id string, now time.Time) *Conversation {
	return &Conversation{
		ID:          id,
		Timestamp:   now.Format(time.RFC3339),
		Steps:       []string{},
		CurrentStep: StepStart,
		Fields:      Fields{},
	}
}

// Terminal reports whether the conversation can no longer advance.
func (c *Conversation) Terminal() bool {
	return c.CurrentStep == StepCompleted || c.CurrentStep == StepCancelled
}

// EnsureScratch returns the scratch slot, allocating it on first use.
func (c *Conversation) EnsureScratch() *Scratch {
	if c.Scratch == nil {
		c.Scratch = &Scratch{}
	}
	return c.Scratch
}

// ClearScratchIfEmpty drops the scratch slot once both composites are
// committed so it never leaks into persisted output.
func (c *Conversation) ClearScratchIfEmpty() {
	if c.Scratch.empty() {
		c.Scratch = nil
	}
}

// Clone deep-copies the record so callers outside the store cannot alias
// its maps.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Steps = append([]string{}, c.Steps...)
	out.Fields = c.Fields.Clone()
	if c.Scratch != nil {
		sc := *c.Scratch
		if c.Scratch.Travel != nil {
			t := *c.Scratch.Travel
			sc.Travel = &t
		}
		if c.Scratch.Accommodation != nil {
			a := *c.Scratch.Accommodation
			sc.Accommodation = &a
		}
		out.Scratch = &sc
	}
	return &out
}
