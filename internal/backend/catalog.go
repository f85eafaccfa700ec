package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/language"
)

type catalogKey struct {
	flavor language.Flavor
	id     int
}

// Catalog reads Judge0 language metadata. Lookups are memoized for the
// lifetime of the Catalog and never invalidated.
type Catalog struct {
	registry *Registry
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[catalogKey]language.Entry
	list    []language.Entry
}

func NewCatalog(registry *Registry, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		registry: registry,
		logger:   logger,
		entries:  make(map[catalogKey]language.Entry),
	}
}

type rawLanguage struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
}

func (r rawLanguage) entry(flavor language.Flavor) language.Entry {
	return language.Entry{
		ID:         r.ID,
		Name:       r.Name,
		Flavor:     flavor,
		SourceFile: r.SourceFile,
		Mode:       language.EditorMode(r.Name),
	}
}

// Language returns the catalog entry for (flavor, id), fetching
// GET {unauth}/languages/{id} on first use.
func (c *Catalog) Language(ctx context.Context, flavor language.Flavor, id int) (language.Entry, error) {
	key := catalogKey{flavor, id}
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return e, nil
	}

	var raw rawLanguage
	url := fmt.Sprintf("%s/languages/%d", c.registry.Endpoints(flavor).UnauthBase, id)
	if err := c.get(ctx, url, &raw); err != nil {
		return language.Entry{}, err
	}
	e = raw.entry(flavor)

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return e, nil
}

// List returns the merged catalog of both flavors: CE first, then EXTRA_CE
// languages whose name CE does not already carry, without the hidden
// language, sorted by name. A flavor that fails to load is logged and
// skipped; List errors only when nothing could be loaded.
func (c *Catalog) List(ctx context.Context) ([]language.Entry, error) {
	c.mu.Lock()
	if c.list != nil {
		out := append([]language.Entry(nil), c.list...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	var (
		merged  []language.Entry
		seen    = make(map[string]bool)
		lastErr error
		loaded  int
	)
	for _, flavor := range language.Flavors {
		var raws []rawLanguage
		url := c.registry.Endpoints(flavor).UnauthBase + "/languages"
		if err := c.get(ctx, url, &raws); err != nil {
			c.logger.Warn("language catalog unavailable",
				zap.String("flavor", string(flavor)), zap.Error(err))
			lastErr = err
			continue
		}
		loaded++
		for _, r := range raws {
			if r.ID == language.HiddenLanguageID || seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			merged = append(merged, r.entry(flavor))
		}
	}
	if loaded == 0 {
		return nil, fmt.Errorf("load language catalog: %w", lastErr)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })

	c.mu.Lock()
	if loaded == len(language.Flavors) {
		c.list = merged
	}
	for _, e := range merged {
		c.entries[catalogKey{e.Flavor, e.ID}] = e
	}
	c.mu.Unlock()
	return append([]language.Entry(nil), merged...), nil
}

// Cached returns the merged list if it has been loaded, without I/O.
func (c *Catalog) Cached() []language.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]language.Entry(nil), c.list...)
}

func (c *Catalog) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.registry.UnauthClient().Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("judge0 returned HTTP %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
