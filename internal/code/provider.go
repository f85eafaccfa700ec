package code

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gsarma/judgepad/internal/hostmsg"
	"github.com/gsarma/judgepad/internal/language"
)

// Request is one execution request as the user entered it. Text fields are
// plain; packing happens at dispatch.
type Request struct {
	SourceCode           string          `json:"source_code"`
	LanguageID           int             `json:"language_id"`
	Flavor               language.Flavor `json:"flavor"`
	Stdin                string          `json:"stdin,omitempty"`
	CompilerOptions      string          `json:"compiler_options,omitempty"`
	CommandLineArguments string          `json:"command_line_arguments,omitempty"`
}

func (r Request) hostRequest() hostmsg.ExecutionRequest {
	return hostmsg.ExecutionRequest{
		SourceCode:           r.SourceCode,
		LanguageID:           r.LanguageID,
		Flavor:               r.Flavor,
		Stdin:                r.Stdin,
		CompilerOptions:      r.CompilerOptions,
		CommandLineArguments: r.CommandLineArguments,
	}
}

// Ticket identifies an accepted submission.
type Ticket struct {
	Token     string          `json:"token"`
	Region    string          `json:"region"`
	Flavor    language.Flavor `json:"flavor"`
	StartedAt time.Time       `json:"started_at"`
}

// Status is the status object of a submission. IDs up to 2 (In Queue,
// Processing) are non-terminal.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusInternalError     = 13
	StatusExecFormatError   = 14
)

// StatusKind classifies a status.
type StatusKind string

const (
	KindQueued        StatusKind = "queued"
	KindProcessing    StatusKind = "processing"
	KindSuccess       StatusKind = "success"
	KindWrongAnswer   StatusKind = "wrong_answer"
	KindTimeout       StatusKind = "timeout"
	KindCompileError  StatusKind = "compile_error"
	KindRuntimeError  StatusKind = "runtime_error"
	KindInternalError StatusKind = "internal_error"
)

func (s Status) Terminal() bool { return s.ID > StatusProcessing }

func (s Status) Kind() StatusKind {
	switch {
	case s.ID == StatusInQueue:
		return KindQueued
	case s.ID == StatusProcessing:
		return KindProcessing
	case s.ID == StatusAccepted:
		return KindSuccess
	case s.ID == StatusWrongAnswer:
		return KindWrongAnswer
	case s.ID == StatusTimeLimitExceeded:
		return KindTimeout
	case s.ID == StatusCompilationError:
		return KindCompileError
	case s.ID >= 7 && s.ID <= 12:
		return KindRuntimeError
	default:
		return KindInternalError
	}
}

func (s Status) host() hostmsg.Status {
	return hostmsg.Status{ID: s.ID, Description: s.Description}
}

// StatusResponse is the body of GET /submissions/{token}. Text fields are
// still base64-packed.
type StatusResponse struct {
	Token         string  `json:"token"`
	Status        Status  `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
}

// JobPayload is the serialized form of a code.execute job stored in the jobs table.
type JobPayload struct {
	Request
}

// Provider runs a request to completion.
type Provider interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// Validate rejects requests that must never reach the backend.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SourceCode) == "" {
		return ErrEmptySource
	}
	return nil
}

func (r Request) String() string {
	return fmt.Sprintf("%s/%d", r.Flavor, r.LanguageID)
}
