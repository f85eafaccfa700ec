package judgepad

import (
	"context"
	"net/http"
)

// AssistantService talks to the coding assistant.
type AssistantService struct {
	c *Client
}

// Ask sends query about the session's current source. Code or language
// changes in the reply are applied to the session by the server.
func (s *AssistantService) Ask(ctx context.Context, sessionID, query string) (*Reply, error) {
	body := map[string]string{"query": query}
	return doRequest[Reply](ctx, s.c, http.MethodPost, "/sessions/"+sessionID+"/assistant", body, http.StatusOK)
}

// CompleteLine asks for the completion of a single unfinished line.
func (s *AssistantService) CompleteLine(ctx context.Context, line string) (*Completion, error) {
	body := map[string]string{"line": line}
	return doRequest[Completion](ctx, s.c, http.MethodPost, "/complete-line", body, http.StatusOK)
}
