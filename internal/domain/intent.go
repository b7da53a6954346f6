package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command is a classified user intent. The set of implementations is
// closed: Navigate, SetTimer, Pause, Resume and Ask. Code that switches on
// a Command should handle all five.
type Command interface {
	// Kind returns the snake_case name of the intent.
	Kind() string
	command()
}

// Navigate moves the step cursor.
type Navigate struct {
	Action NavAction `json:"action"`
}

// SetTimer starts a new countdown.
type SetTimer struct {
	Label    string `json:"label"`
	Duration string `json:"duration"`
}

// Pause pauses the walkthrough.
type Pause struct{}

// Resume resumes the walkthrough.
type Resume struct{}

// Ask is a free-form question answered outside the engine.
type Ask struct {
	Text string `json:"text"`
}

func (Navigate) Kind() string { return "navigate" }
func (SetTimer) Kind() string { return "set_timer" }
func (Pause) Kind() string    { return "pause" }
func (Resume) Kind() string   { return "resume" }
func (Ask) Kind() string      { return "ask" }

func (Navigate) command() {}
func (SetTimer) command() {}
func (Pause) command()    {}
func (Resume) command()   {}
func (Ask) command()      {}

// Intent is the wire envelope of a Command:
//
//	{"intent": "set_timer", "label": "pasta", "duration": "10 minutes"}
type Intent struct {
	Name     string `json:"intent"`
	Action   string `json:"action,omitempty"`
	Label    string `json:"label,omitempty"`
	Duration string `json:"duration,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Command converts the envelope into a typed Command.
func (in Intent) Command() (Command, error) {
	switch strings.ToLower(strings.TrimSpace(in.Name)) {
	case "navigate":
		a, err := ParseNavAction(in.Action)
		if err != nil {
			return nil, err
		}
		return Navigate{Action: a}, nil
	case "set_timer":
		return SetTimer{Label: in.Label, Duration: in.Duration}, nil
	case "pause":
		return Pause{}, nil
	case "resume":
		return Resume{}, nil
	case "ask":
		if strings.TrimSpace(in.Text) == "" {
			return nil, fmt.Errorf("%w: ask needs text", ErrValidation)
		}
		return Ask{Text: in.Text}, nil
	default:
		return nil, fmt.Errorf("%w: unknown intent %q", ErrValidation, in.Name)
	}
}

// IntentOf converts a Command back into its wire envelope.
func IntentOf(c Command) Intent {
	in := Intent{Name: c.Kind()}
	switch c := c.(type) {
	case Navigate:
		in.Action = string(c.Action)
	case SetTimer:
		in.Label, in.Duration = c.Label, c.Duration
	case Ask:
		in.Text = c.Text
	case Pause, Resume:
	}
	return in
}

// ParseIntentJSON decodes a wire envelope into a Command.
func ParseIntentJSON(b []byte) (Command, error) {
	var in Intent
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("%w: decoding intent: %v", ErrValidation, err)
	}
	return in.Command()
}
