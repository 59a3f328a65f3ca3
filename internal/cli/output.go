package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case QueueResult:
		fmt.Printf("Queue: %s\n", v.Mode)
		fmt.Printf("Waiting: %d\n", v.Length)
	case AttemptResult:
		fmt.Printf("Mode: %s\n", v.Mode)
		fmt.Printf("Outcome: %s\n", v.Outcome)
	case Session:
		o.printSession(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
		fmt.Printf("Connected clients: %d\n", v.Clients)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// QueueResult response type (matches API)
type QueueResult struct {
	Mode   string `json:"mode"`
	Length int64  `json:"length"`
}

// AttemptResult response type
type AttemptResult struct {
	Mode    string `json:"mode"`
	Outcome string `json:"outcome"`
}

// Session response type
type Session struct {
	ID                int64           `json:"id"`
	Board             string          `json:"board"`
	Turn              string          `json:"turn"`
	FirstParticipant  json.RawMessage `json:"first_participant"`
	SecondParticipant json.RawMessage `json:"second_participant"`
	FirstTime         int64           `json:"first_time_ms"`
	SecondTime        int64           `json:"second_time_ms"`
	Record            *SessionRecord  `json:"record,omitempty"`
}

// SessionRecord response type
type SessionRecord struct {
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %d\n", s.ID)
	fmt.Printf("First:  %s (%dms)\n", s.FirstParticipant, s.FirstTime)
	fmt.Printf("Second: %s (%dms)\n", s.SecondParticipant, s.SecondTime)
	fmt.Printf("To move: %s\n", s.Turn)
	fmt.Printf("Board: %s\n", s.Board)
	if s.Record != nil {
		fmt.Printf("Status: %s (created %s)\n", s.Record.Status, s.Record.CreatedAt)
	}
}
