package wizard

import "fmt"

// Step is an ordinal position in the creation flow.
type Step int

const (
	StepCategory Step = iota
	StepTextContent
	StepVisualStyle
	StepMood
	StepColors
	StepFormat
	StepQRCode
	StepExtras
	StepReview
)

var stepNames = [...]string{
	StepCategory:    "category",
	StepTextContent: "textContent",
	StepVisualStyle: "visualStyle",
	StepMood:        "mood",
	StepColors:      "colors",
	StepFormat:      "format",
	StepQRCode:      "qrCode",
	StepExtras:      "extras",
	StepReview:      "review",
}

// Steps returns every step in flow order.
func Steps() []Step {
	out := make([]Step, 0, len(stepNames))
	for s := StepCategory; s <= StepReview; s++ {
		out = append(out, s)
	}
	return out
}

func (s Step) Valid() bool {
	return s >= StepCategory && s <= StepReview
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep resolves a step from its wire name.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStep, name)
}

func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, int(s))
	}
	return []byte(stepNames[s]), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	parsed, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CategoryPhase is the nested state of the category step.
type CategoryPhase int

const (
	PhaseIntent CategoryPhase = iota
	PhaseOutputType
)

func (p CategoryPhase) String() string {
	if p == PhaseOutputType {
		return "outputType"
	}
	return "intent"
}

func (p CategoryPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
