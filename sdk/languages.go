package judgepad

import (
	"context"
	"fmt"
	"net/http"
)

// LanguagesService reads the language catalog.
type LanguagesService struct {
	c *Client
}

// List returns the merged catalog of both backend flavors.
func (s *LanguagesService) List(ctx context.Context) ([]Language, error) {
	out, err := doRequest[[]Language](ctx, s.c, http.MethodGet, "/languages", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Get returns one catalog entry. flavor is "CE" or "EXTRA_CE".
func (s *LanguagesService) Get(ctx context.Context, flavor string, id int) (*Language, error) {
	return doRequest[Language](ctx, s.c, http.MethodGet, fmt.Sprintf("/languages/%s/%d", flavor, id), nil, http.StatusOK)
}
