package ballot

import "github.com/pkg/errors"

// Phase is the lifecycle stage of a ballot. It only moves forward.
type Phase uint8

const (
	Registration Phase = iota
	Voting
	Closed
)

var phaseLabels = [...]string{
	Registration: "Registration",
	Voting:        "Voting",
	Closed:        "Closed",
}

func (p Phase) String() string {
	if int(p) < len(phaseLabels) {
		return phaseLabels[p]
	}
	return "Unknown"
}

// next reports the phase that follows p and whether one exists.
func (p Phase) next() (Phase, bool) {
	switch p {
	case Registration:
		return Voting, true
	case Voting:
		return Closed, true
	default:
		return p, false
	}
}

// MarshalText renders the label so JSON carries "Voting" rather than 1.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase accepts one of the three phase labels.
func ParsePhase(label string) (Phase, error) {
	for i, l := range phaseLabels {
		if l == label {
			return Phase(i), nil
		}
	}
	return 0, errors.Errorf("unknown phase %q", label)
}
