package judgepad

import (
	"context"
	"net/http"
)

// SessionsService manages editor sessions.
type SessionsService struct {
	c *Client
}

// Create starts a session with the default program loaded.
func (s *SessionsService) Create(ctx context.Context) (*CreateSessionResponse, error) {
	return doRequest[CreateSessionResponse](ctx, s.c, http.MethodPost, "/sessions", nil, http.StatusCreated)
}

// State returns the editor state, including mode and status line.
func (s *SessionsService) State(ctx context.Context, sessionID string) (*State, error) {
	return doRequest[State](ctx, s.c, http.MethodGet, "/sessions/"+sessionID+"/state", nil, http.StatusOK)
}

// Set applies the non-empty fields of req.
func (s *SessionsService) Set(ctx context.Context, sessionID string, req SetRequest) error {
	body := struct {
		Action string `json:"action"`
		SetRequest
	}{"set", req}
	_, err := doRequest[StatusResponse](ctx, s.c, http.MethodPost, "/sessions/"+sessionID+"/commands", body, http.StatusOK)
	return err
}

// Get issues a "get" command and returns the reported state.
func (s *SessionsService) Get(ctx context.Context, sessionID string) (*State, error) {
	body := map[string]string{"action": "get"}
	return doRequest[State](ctx, s.c, http.MethodPost, "/sessions/"+sessionID+"/commands", body, http.StatusOK)
}

// OpenFile loads content into the editor; the language follows the file
// extension of name.
func (s *SessionsService) OpenFile(ctx context.Context, sessionID, name, content string) (*State, error) {
	body := map[string]string{"name": name, "content": content}
	return doRequest[State](ctx, s.c, http.MethodPost, "/sessions/"+sessionID+"/files", body, http.StatusOK)
}
