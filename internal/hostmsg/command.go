package hostmsg

import (
	"fmt"

	"github.com/gsarma/judgepad/internal/language"
)

const (
	ActionGet = "get"
	ActionSet = "set"
)

// Command is an inbound instruction from the embedding page. For "set",
// only non-empty fields are applied.
type Command struct {
	Action               string          `json:"action"`
	SourceCode           string          `json:"source_code,omitempty"`
	LanguageID           int             `json:"language_id,omitempty"`
	Flavor               language.Flavor `json:"flavor,omitempty"`
	Stdin                string          `json:"stdin,omitempty"`
	Stdout               string          `json:"stdout,omitempty"`
	CompilerOptions      string          `json:"compiler_options,omitempty"`
	CommandLineArguments string          `json:"command_line_arguments,omitempty"`
	APIKey               string          `json:"api_key,omitempty"`
}

// Validate rejects unknown actions and half-specified language selections.
func (c Command) Validate() error {
	switch c.Action {
	case ActionGet:
		return nil
	case ActionSet:
		if c.Flavor != "" && !c.Flavor.Valid() {
			return fmt.Errorf("unknown flavor %q", c.Flavor)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
}
