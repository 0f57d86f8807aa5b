// Package flow defines the registration step tables. A Variant is an
// ordered set of steps; each step carries its prompt, its options, the
// validation rule for the input it expects, the commit that records a valid
// input, and the transition to the following step. The engine in
// internal/registration/service walks these tables and owns everything
// else (locking, persistence, terminal bookkeeping).
package flow

import (
	"fmt"
	"strconv"

	"bhandara/internal/registration/models"
	"bhandara/internal/registration/validate"
)

// Step describes one node of a variant's graph.
//
// Validate returns a user-facing message when the input is rejected, or ""
// to accept. Commit records the accepted input on the conversation. Next
// computes the following step from the accepted input, which is how the
// yes/no branch steps skip their detail sub-steps. A nil Validate accepts
// anything (the start and confirmation steps).
type Step struct {
	Name     models.Step
	Prompt   string
	Options  []models.Option
	Validate func(input string) string
	Commit   func(rec *models.Conversation, input string)
	Next     func(input string) models.Step
}

// Variant is one configured registration flow.
type Variant struct {
	Name  string
	steps map[models.Step]Step
	// path is the linear step order with branches excluded, used by tests
	// and introspection.
	path []models.Step
}

// Step looks up the table entry for a step name.
func (v *Variant) Step(name models.Step) (Step, bool) {
	s, ok := v.steps[name]
	return s, ok
}

// Path returns the linear (branch-free) step order from start to
// confirmation.
func (v *Variant) Path() []models.Step {
	return append([]models.Step{}, v.path...)
}

// ByName resolves a configured variant name.
func ByName(name string) (*Variant, error) {
	switch name {
	case "minimal":
		return Minimal(), nil
	case "extended":
		return Extended(), nil
	default:
		return nil, fmt.Errorf("unknown flow variant %q", name)
	}
}

func options(values ...string) []models.Option {
	out := make([]models.Option, 0, len(values))
	for _, v := range values {
		out = append(out, models.Option{Value: v, Label: v})
	}
	return out
}

func optionValues(opts []models.Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}

func setField(name string) func(*models.Conversation, string) {
	return func(rec *models.Conversation, input string) {
		rec.Fields[name] = input
	}
}

func always(next models.Step) func(string) models.Step {
	return func(string) models.Step { return next }
}

// enumStep builds a step that accepts one of its options.
func enumStep(name models.Step, prompt string, opts []models.Option, caseSensitive bool, errMsg string, field string, next models.Step) Step {
	return Step{
		Name:    name,
		Prompt:  prompt,
		Options: opts,
		Validate: func(input string) string {
			if _, ok := validate.Enum(input, optionValues(opts), caseSensitive); !ok {
				return errMsg
			}
			return ""
		},
		Commit: func(rec *models.Conversation, input string) {
			canonical, _ := validate.Enum(input, optionValues(opts), caseSensitive)
			rec.Fields[field] = canonical
		},
		Next: always(next),
	}
}

// confirmStep builds a yes/no branch step. A yes answer enters the detail
// sub-graph, a no answer jumps straight to skipTo. The answer itself is
// recorded under field so the completed record shows the decision.
func confirmStep(name models.Step, prompt, field string, yesTo, skipTo models.Step) Step {
	return Step{
		Name:    name,
		Prompt:  prompt,
		Options: options("yes", "no"),
		Validate: func(input string) string {
			if _, ok := validate.YesNo(input); !ok {
				return "Please answer yes or no"
			}
			return ""
		},
		Commit: func(rec *models.Conversation, input string) {
			yes, _ := validate.YesNo(input)
			if yes {
				rec.Fields[field] = "yes"
			} else {
				rec.Fields[field] = "no"
			}
		},
		Next: func(input string) models.Step {
			if yes, _ := validate.YesNo(input); yes {
				return yesTo
			}
			return skipTo
		},
	}
}

func nameStep(next models.Step) Step {
	return Step{
		Name:   models.StepName,
		Prompt: "Enter your full name",
		Validate: func(input string) string {
			if !validate.Name(input) {
				return "Please enter a valid name (at least 2 characters)"
			}
			return ""
		},
		Commit: setField("full_name"),
		Next:   always(next),
	}
}

func emailStep(next models.Step) Step {
	return Step{
		Name:   models.StepEmail,
		Prompt: "Enter your email address",
		Validate: func(input string) string {
			if !validate.Email(input) {
				return "Please enter a valid email address"
			}
			return ""
		},
		Commit: setField("email"),
		Next:   always(next),
	}
}

func phoneStep(name models.Step, field string, next models.Step) Step {
	return Step{
		Name:   name,
		Prompt: "Enter your phone number",
		Validate: func(input string) string {
			if !validate.Phone(input) {
				return "Please enter a valid phone number"
			}
			return ""
		},
		Commit: setField(field),
		Next:   always(next),
	}
}

func dateStep(name models.Step, prompt, field string, next models.Step) Step {
	return Step{
		Name:   name,
		Prompt: prompt,
		Validate: func(input string) string {
			if !validate.Date(input) {
				return "Please enter a valid date (DD-MM-YYYY)"
			}
			return ""
		},
		Commit: setField(field),
		Next:   always(next),
	}
}

func ageGroupStep(next models.Step) Step {
	return enumStep(
		models.StepAgeGroup,
		"Select your age group",
		options("18-25", "26-40", "41-60", "61+"),
		true,
		"Invalid age group selection",
		"age_group",
		next,
	)
}

// Minimal is the short flow: name, email, phone, age group,
// meditation experience, confirm.
func Minimal() *Variant {
	v := &Variant{Name: "minimal", steps: map[models.Step]Step{}}
	v.add(startStep(models.StepName))
	v.add(nameStep(models.StepEmail))
	v.add(emailStep(models.StepPhone))
	v.add(phoneStep(models.StepPhone, "phone", models.StepAgeGroup))
	v.add(ageGroupStep(models.StepMeditationExperience))
	v.add(enumStep(
		models.StepMeditationExperience,
		"Select your meditation experience",
		options("Beginner", "Intermediate", "Advanced"),
		true,
		"Invalid meditation experience selection",
		"meditation_experience",
		models.StepConfirmation,
	))
	v.add(confirmationStep())
	return v
}

// Extended is the full event flow with abhyasi id, travel dates and the two
// optional detail sub-graphs.
func Extended() *Variant {
	v := &Variant{Name: "extended", steps: map[models.Step]Step{}}
	v.add(startStep(models.StepName))
	v.add(nameStep(models.StepEmail))
	v.add(emailStep(models.StepMobile))
	v.add(phoneStep(models.StepMobile, "mobile", models.StepAgeGroup))
	v.add(ageGroupStep(models.StepAbhyasiID))
	v.add(Step{
		Name:   models.StepAbhyasiID,
		Prompt: "Enter your Abhyasi ID",
		Validate: func(input string) string {
			if !validate.Name(input) {
				return "Please enter a valid Abhyasi ID (at least 2 characters)"
			}
			return ""
		},
		Commit: setField("abhyasi_id"),
		Next:   always(models.StepArrivalDate),
	})
	v.add(dateStep(models.StepArrivalDate, "Enter your arrival date (DD-MM-YYYY)", "arrival_date", models.StepDepartureDate))
	v.add(dateStep(models.StepDepartureDate, "Enter your departure date (DD-MM-YYYY)", "departure_date", models.StepTravelConfirmation))
	v.add(confirmStep(
		models.StepTravelConfirmation,
		"Do you need travel assistance?",
		"travel_required",
		models.StepTravelMode,
		models.StepAccommodationConfirm,
	))
	v.add(travelModeStep())
	v.add(travelLocationStep())
	v.add(confirmStep(
		models.StepAccommodationConfirm,
		"Do you need accommodation?",
		"accommodation_required",
		models.StepAccommodationType,
		models.StepConfirmation,
	))
	v.add(accommodationTypeStep())
	v.add(accommodationPeopleStep())
	v.add(confirmationStep())
	return v
}

func (v *Variant) add(s Step) {
	v.steps[s.Name] = s
	switch s.Name {
	case models.StepTravelMode, models.StepTravelLocation,
		models.StepAccommodationType, models.StepAccommodationPeople:
		// branch sub-steps stay off the linear path
	default:
		v.path = append(v.path, s.Name)
	}
}

func startStep(first models.Step) Step {
	return Step{
		Name:   models.StepStart,
		Prompt: "",
		Next:   always(first),
	}
}

// confirmationStep is terminal-adjacent: any input moves the conversation to
// a terminal step, so it carries no validator. The engine inspects the
// resulting step for the completed/cancelled side effects.
func confirmationStep() Step {
	return Step{
		Name:   models.StepConfirmation,
		Prompt: "Confirm your registration details",
		Next: func(input string) models.Step {
			if yes, ok := validate.YesNo(input); ok && yes {
				return models.StepCompleted
			}
			return models.StepCancelled
		},
	}
}

func travelModeStep() Step {
	opts := options("Train", "Bus", "Flight", "Own Vehicle")
	return Step{
		Name:    models.StepTravelMode,
		Prompt:  "How will you be travelling?",
		Options: opts,
		Validate: func(input string) string {
			if _, ok := validate.Enum(input, optionValues(opts), false); !ok {
				return "Invalid travel mode selection"
			}
			return ""
		},
		Commit: func(rec *models.Conversation, input string) {
			canonical, _ := validate.Enum(input, optionValues(opts), false)
			rec.EnsureScratch().Travel = &models.TravelDetails{Mode: canonical}
		},
		Next: always(models.StepTravelLocation),
	}
}

func travelLocationStep() Step {
	return Step{
		Name:   models.StepTravelLocation,
		Prompt: "Where will you be travelling from?",
		Validate: func(input string) string {
			if !validate.Name(input) {
				return "Please enter a valid location (at least 2 characters)"
			}
			return ""
		},
		Commit: func(rec *models.Conversation, input string) {
			travel := rec.EnsureScratch().Travel
			if travel == nil {
				travel = &models.TravelDetails{}
			}
			travel.Location = input
			rec.Fields["travel_requirements"] = map[string]any{
				"mode":     travel.Mode,
				"location": travel.Location,
			}
			rec.Scratch.Travel = nil
			rec.ClearScratchIfEmpty()
		},
		Next: always(models.StepAccommodationConfirm),
	}
}

func accommodationTypeStep() Step {
	opts := options("Dormitory", "Private Room", "Tent")
	return Step{
		Name:    models.StepAccommodationType,
		Prompt:  "Select your accommodation type",
		Options: opts,
		Validate: func(input string) string {
			if _, ok := validate.Enum(input, optionValues(opts), true); !ok {
				return "Invalid accommodation type selection"
			}
			return ""
		},
		Commit: func(rec *models.Conversation, input string) {
			rec.EnsureScratch().Accommodation = &models.AccommodationDetails{Type: input}
		},
		Next: always(models.StepAccommodationPeople),
	}
}

func accommodationPeopleStep() Step {
	const lo, hi = 1, 10
	return Step{
		Name:   models.StepAccommodationPeople,
		Prompt: "How many people need accommodation? (" + strconv.Itoa(lo) + "-" + strconv.Itoa(hi) + ")",
		Validate: func(input string) string {
			if _, ok := validate.Count(input, lo, hi); !ok {
				return "Please enter a number between 1 and 10"
			}
			return ""
		},
		Commit: func(rec *models.Conversation, input string) {
			people, _ := validate.Count(input, lo, hi)
			acc := rec.EnsureScratch().Accommodation
			if acc == nil {
				acc = &models.AccommodationDetails{}
			}
			acc.People = people
			rec.Fields["accommodation"] = map[string]any{
				"type":   acc.Type,
				"people": acc.People,
			}
			rec.Scratch.Accommodation = nil
			rec.ClearScratchIfEmpty()
		},
		Next: always(models.StepConfirmation),
	}
}
