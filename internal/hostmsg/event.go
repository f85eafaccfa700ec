// Package hostmsg is the message boundary between a session and the page (or
// process) embedding it: typed outbound events and inbound commands.
package hostmsg

import (
	"encoding/json"
	"fmt"

	"github.com/gsarma/judgepad/internal/language"
)

// Outbound event names.
const (
	EventPreExecution  = "preExecution"
	EventPostExecution = "postExecution"
	EventRunError      = "runError"
	EventGetResponse   = "getResponse"
	EventInitialised   = "initialised"
	EventStatus        = "status"
)

// Event is one outbound notification. It serializes as a flat JSON object
// whose "event" key holds Name and whose other keys come from Payload.
type Event struct {
	Name    string
	Payload interface{}
}

func (e Event) MarshalJSON() ([]byte, error) {
	name, err := json.Marshal(e.Name)
	if err != nil {
		return nil, err
	}
	if e.Payload == nil {
		return []byte(`{"event":` + string(name) + `}`), nil
	}
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Name, err)
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("%s payload must be a JSON object", e.Name)
	}
	out := make([]byte, 0, len(body)+len(name)+10)
	out = append(out, `{"event":`...)
	out = append(out, name...)
	if string(body) != "{}" {
		out = append(out, ',')
		out = append(out, body[1:len(body)-1]...)
	}
	out = append(out, '}')
	return out, nil
}

// Status mirrors the status object of a Judge0 submission.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ExecutionRequest carries the decoded fields of a submission.
type ExecutionRequest struct {
	SourceCode           string          `json:"source_code"`
	LanguageID           int             `json:"language_id"`
	Flavor               language.Flavor `json:"flavor"`
	Stdin                string          `json:"stdin"`
	CompilerOptions      string          `json:"compiler_options"`
	CommandLineArguments string          `json:"command_line_arguments"`
}

// PostExecution is published for every terminal result.
type PostExecution struct {
	Status Status  `json:"status"`
	Time   *string `json:"time"`
	Memory *int    `json:"memory"`
	Output string  `json:"output"`
}

// ErrorData describes a failed backend round trip.
type ErrorData struct {
	Status       int    `json:"status"`
	StatusText   string `json:"statusText"`
	ResponseText string `json:"responseText,omitempty"`
}

type runError struct {
	Data ErrorData `json:"data"`
}

// State is a snapshot of the editor, returned for "get".
type State struct {
	SourceCode           string          `json:"source_code"`
	LanguageID           int             `json:"language_id"`
	Flavor               language.Flavor `json:"flavor"`
	Stdin                string          `json:"stdin"`
	Stdout               string          `json:"stdout"`
	CompilerOptions      string          `json:"compiler_options"`
	CommandLineArguments string          `json:"command_line_arguments"`
}

func PreExecution(req ExecutionRequest) Event {
	return Event{Name: EventPreExecution, Payload: req}
}

func PostExecutionEvent(p PostExecution) Event {
	return Event{Name: EventPostExecution, Payload: p}
}

func RunError(status int, statusText, responseText string) Event {
	return Event{Name: EventRunError, Payload: runError{Data: ErrorData{
		Status:       status,
		StatusText:   statusText,
		ResponseText: responseText,
	}}}
}

func GetResponse(s State) Event {
	return Event{Name: EventGetResponse, Payload: s}
}

func Initialised() Event {
	return Event{Name: EventInitialised}
}

// StatusUpdate reports a non-terminal poll result.
func StatusUpdate(s Status) Event {
	return Event{Name: EventStatus, Payload: struct {
		Status Status `json:"status"`
	}{s}}
}
