package judgepad

import "time"

// StatusResponse is a generic {"status": "..."} response.
type StatusResponse struct {
	Status string `json:"status"`
}

// --- Sessions ---

// State is the editor state of a session.
type State struct {
	SourceCode           string `json:"source_code"`
	LanguageID           int    `json:"language_id"`
	Flavor               string `json:"flavor"`
	Stdin                string `json:"stdin"`
	Stdout               string `json:"stdout"`
	CompilerOptions      string `json:"compiler_options"`
	CommandLineArguments string `json:"command_line_arguments"`
	Mode                 string `json:"mode"`
	StatusLine           string `json:"status_line"`
}

// CreateSessionResponse is returned by POST /sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
}

// SetRequest updates a session. Empty fields are left unchanged; LanguageID
// is applied only together with Flavor.
type SetRequest struct {
	SourceCode           string `json:"source_code,omitempty"`
	LanguageID           int    `json:"language_id,omitempty"`
	Flavor               string `json:"flavor,omitempty"`
	Stdin                string `json:"stdin,omitempty"`
	Stdout               string `json:"stdout,omitempty"`
	CompilerOptions      string `json:"compiler_options,omitempty"`
	CommandLineArguments string `json:"command_line_arguments,omitempty"`
	APIKey               string `json:"api_key,omitempty"`
}

// --- Runs ---

// Status is the backend status of a submission.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// RunResult is returned by a synchronous run.
type RunResult struct {
	Token         string  `json:"token"`
	Status        Status  `json:"status"`
	Time          string  `json:"time"`
	Memory        string  `json:"memory"`
	Stdout        string  `json:"stdout"`
	CompileOutput string  `json:"compile_output"`
	Output        string  `json:"output"`
	StatusLine    string  `json:"status_line"`
	RawTime       *string `json:"raw_time"`
	RawMemory     *int    `json:"raw_memory"`
}

// QueuedRun is returned when a run is queued as a job.
type QueuedRun struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Job is the status of a queued run.
type Job struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	JobType     string     `json:"job_type"`
	Status      string     `json:"status"`
	Attempt     int        `json:"attempt"`
	MaxAttempts int        `json:"max_attempts"`
	Error       *string    `json:"error"`
	RunAt       time.Time  `json:"run_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Execution is the stored result of a completed queued run.
type Execution struct {
	ID                string    `json:"id"`
	JobID             string    `json:"job_id"`
	SessionID         string    `json:"session_id"`
	Token             string    `json:"token"`
	StatusID          int       `json:"status_id"`
	StatusDescription string    `json:"status_description"`
	Stdout            string    `json:"stdout"`
	CompileOutput     string    `json:"compile_output"`
	Output            string    `json:"output"`
	Time              *string   `json:"time"`
	Memory            *int      `json:"memory"`
	TurnaroundMs      int64     `json:"turnaround_ms"`
	CreatedAt         time.Time `json:"created_at"`
}

// --- Assistant ---

// Language is one catalog entry.
type Language struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Flavor     string `json:"flavor"`
	SourceFile string `json:"source_file"`
	Mode       string `json:"mode"`
}

// Reply is the assistant's answer. When CodeUpdated is set, the session's
// source was replaced.
type Reply struct {
	Reply       string    `json:"reply"`
	CodeUpdated bool      `json:"code_updated"`
	Mode        string    `json:"mode"`
	Language    *Language `json:"language"`
}

// Completion is returned by /complete-line. Skipped is set when the line
// already looked finished.
type Completion struct {
	Completion string `json:"completion"`
	Skipped    bool   `json:"skipped"`
}
