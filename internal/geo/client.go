// Package geo looks up Brazilian states and municipalities through the IBGE
// localities API, caching results since the data changes rarely.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// State is a Brazilian federative unit.
type State struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

// Municipality is a city within a state, keyed by its IBGE code.
type Municipality struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client fetches IBGE locality data with a Redis read-through cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	ttl        time.Duration
	collator   *collate.Collator
	logger     *slog.Logger
}

// NewClient constructs the IBGE client. cache may be nil to disable caching.
func NewClient(logger *slog.Logger, baseURL string, cache *redis.Client, ttl time.Duration) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache:    cache,
		ttl:      ttl,
		collator: collate.New(language.BrazilianPortuguese, collate.IgnoreCase),
		logger:   logger,
	}
}

// States lists every federative unit ordered by name under pt-BR collation,
// so accented names sort where a Brazilian user expects them.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var raw []struct {
		ID    int    `json:"id"`
		Sigla string `json:"sigla"`
		Nome  string `json:"nome"`
	}
	if err := c.fetch(ctx, "geo:states", "/estados", &raw); err != nil {
		return nil, err
	}
	out := make([]State, len(raw))
	for i, s := range raw {
		out[i] = State{ID: s.ID, Abbreviation: s.Sigla, Name: s.Nome}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.collator.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

// Municipalities lists a state's cities ordered by name under pt-BR collation.
func (c *Client) Municipalities(ctx context.Context, stateID int) ([]Municipality, error) {
	var raw []struct {
		ID   int    `json:"id"`
		Nome string `json:"nome"`
	}
	key := "geo:municipalities:" + strconv.Itoa(stateID)
	path := fmt.Sprintf("/estados/%d/municipios", stateID)
	if err := c.fetch(ctx, key, path, &raw); err != nil {
		return nil, err
	}
	out := make([]Municipality, len(raw))
	for i, m := range raw {
		out[i] = Municipality{ID: m.ID, Name: m.Nome}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.collator.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

func (c *Client) fetch(ctx context.Context, cacheKey, path string, dest any) error {
	// Redis is an optimization here. If it is down the lookup still goes
	// through to IBGE.
	if c.cache != nil {
		payload, err := c.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if err != redis.Nil {
			c.logger.Warn("geo cache read", slog.Any("error", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ibge returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("geo cache write", slog.Any("error", err))
		}
	}
	return nil
}
