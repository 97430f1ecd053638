package knowledge

import "fmt"

// Difficulty is the question difficulty band. Bands are ordered; a
// learner can move in either direction indefinitely.
type Difficulty int

const (
	VeryEasy Difficulty = iota
	Easy
	Moderate
	Difficult
)

// String returns the wire/storage name of the band.
func (d Difficulty) String() string {
	switch d {
	case VeryEasy:
		return "very_easy"
	case Easy:
		return "easy"
	case Moderate:
		return "moderate"
	case Difficult:
		return "difficult"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty converts a stored band name back to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "very_easy":
		return VeryEasy, nil
	case "easy":
		return Easy, nil
	case "moderate":
		return Moderate, nil
	case "difficult":
		return Difficult, nil
	}
	return VeryEasy, fmt.Errorf("unknown difficulty %q", s)
}

// MarshalText implements encoding.TextMarshaler so the band serializes
// by name.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
