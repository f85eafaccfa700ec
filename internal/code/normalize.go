package code

import (
	"fmt"
	"strings"
	"time"

	"github.com/gsarma/judgepad/internal/codec"
	"github.com/gsarma/judgepad/internal/hostmsg"
)

// Placeholder stands in for a time or memory the backend did not report.
const Placeholder = "-"

// Result is a terminal submission decoded for display.
type Result struct {
	Token         string        `json:"token"`
	Status        Status        `json:"status"`
	Time          string        `json:"time"`
	Memory        string        `json:"memory"`
	RawTime       *string       `json:"raw_time"`
	RawMemory     *int          `json:"raw_memory"`
	Stdout        string        `json:"stdout"`
	CompileOutput string        `json:"compile_output"`
	Output        string        `json:"output"`
	Turnaround    time.Duration `json:"turnaround"`
}

// Normalize decodes a terminal response. Compile diagnostics come first in
// Output, separated from stdout by a newline, and the whole is trimmed.
// Turnaround is measured from startedAt to now.
func Normalize(resp StatusResponse, startedAt, now time.Time) Result {
	stdout := codec.DecodePtr(resp.Stdout)
	compileOutput := codec.DecodePtr(resp.CompileOutput)

	res := Result{
		Token:         resp.Token,
		Status:        resp.Status,
		Time:          Placeholder,
		Memory:        Placeholder,
		RawTime:       resp.Time,
		RawMemory:     resp.Memory,
		Stdout:        stdout,
		CompileOutput: compileOutput,
		Output:        strings.TrimSpace(compileOutput + "\n" + stdout),
		Turnaround:    now.Sub(startedAt).Round(time.Millisecond),
	}
	if resp.Time != nil {
		res.Time = *resp.Time + "s"
	}
	if resp.Memory != nil {
		res.Memory = fmt.Sprintf("%dKB", *resp.Memory)
	}
	return res
}

// StatusLine renders the one-line summary shown after a run.
func (r Result) StatusLine() string {
	return fmt.Sprintf("%s, %s, %s (TAT: %dms)", r.Status.Description, r.Time, r.Memory, r.Turnaround.Milliseconds())
}

// PostExecution is the host notification for r.
func (r Result) PostExecution() hostmsg.Event {
	return hostmsg.PostExecutionEvent(hostmsg.PostExecution{
		Status: r.Status.host(),
		Time:   r.RawTime,
		Memory: r.RawMemory,
		Output: r.Output,
	})
}
