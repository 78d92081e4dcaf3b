package gameserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/hllops/seedbank/internal/model"
)

// EndpointConfig describes one CRCON endpoint
type EndpointConfig struct {
	Name     string
	URL      string
	Username string
	Password string
}

// CRCONClient talks to one or more CRCON instances over their JSON HTTP
// API. CRCON authenticates with a session cookie, so each endpoint gets
// its own cookie jar.
type CRCONClient struct {
	endpoints map[string]*crconEndpoint
	order     []string
	logger    *slog.Logger
}

type crconEndpoint struct {
	cfg        EndpointConfig
	httpClient *http.Client
}

// NewCRCONClient creates a client spanning the given endpoints
func NewCRCONClient(endpoints []EndpointConfig, logger *slog.Logger) (*CRCONClient, error) {
	c := &CRCONClient{
		endpoints: make(map[string]*crconEndpoint, len(endpoints)),
		logger:    logger,
	}

	for _, cfg := range endpoints {
		if _, exists := c.endpoints[cfg.Name]; exists {
			return nil, fmt.Errorf("duplicate game server endpoint name %q", cfg.Name)
		}
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.endpoints[cfg.Name] = &crconEndpoint{
			cfg: EndpointConfig{
				Name:     cfg.Name,
				URL:      strings.TrimSuffix(cfg.URL, "/"),
				Username: cfg.Username,
				Password: cfg.Password,
			},
			httpClient: &http.Client{
				Timeout: 15 * time.Second,
				Jar:     jar,
			},
		}
		c.order = append(c.order, cfg.Name)
	}

	return c, nil
}

// Ensure CRCONClient implements the interface
var _ Client = (*CRCONClient)(nil)

// Endpoints lists the configured endpoint names, in config order
func (c *CRCONClient) Endpoints() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// crconResponse is the envelope every CRCON API call returns
type crconResponse struct {
	Result json.RawMessage `json:"result"`
	Failed bool            `json:"failed"`
}

func (c *CRCONClient) endpoint(name string) (*crconEndpoint, error) {
	ep, ok := c.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("unknown game server endpoint %q", name)
	}
	return ep, nil
}

// do performs an authenticated request against an endpoint and decodes
// the result envelope
func (c *CRCONClient) do(ctx context.Context, ep *crconEndpoint, method, path string, body any) (*crconResponse, error) {
	if err := c.ensureAuth(ctx, ep); err != nil {
		return nil, err
	}
	return c.doRaw(ctx, ep, method, path, body)
}

func (c *CRCONClient) doRaw(ctx context.Context, ep *crconEndpoint, method, path string, body any) (*crconResponse, error) {
	url := ep.cfg.URL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ep.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", ep.cfg.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s returned status %d for %s", ep.cfg.Name, resp.StatusCode, path)
	}

	var envelope crconResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", ep.cfg.Name, err)
	}
	return &envelope, nil
}

// ensureAuth logs into the endpoint if the session cookie has lapsed
func (c *CRCONClient) ensureAuth(ctx context.Context, ep *crconEndpoint) error {
	envelope, err := c.doRaw(ctx, ep, http.MethodGet, "/api/is_logged_in", nil)
	if err != nil {
		return err
	}

	var status struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("unexpected is_logged_in response from %s: %w", ep.cfg.Name, err)
	}
	if status.Authenticated {
		return nil
	}

	login, err := c.doRaw(ctx, ep, http.MethodPost, "/api/login", map[string]string{
		"username": ep.cfg.Username,
		"password": ep.cfg.Password,
	})
	if err != nil {
		return err
	}
	if login.Failed {
		return fmt.Errorf("login to %s failed", ep.cfg.Name)
	}

	c.logger.Info("logged in to game server", slog.String("endpoint", ep.cfg.Name))
	return nil
}

// ListPlayers returns the players currently on the endpoint
func (c *CRCONClient) ListPlayers(ctx context.Context, endpoint string) ([]PlayerInfo, error) {
	ep, err := c.endpoint(endpoint)
	if err != nil {
		return nil, err
	}

	envelope, err := c.do(ctx, ep, http.MethodGet, "/api/get_players", nil)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Name      string `json:"name"`
		SteamID64 string `json:"steam_id_64"`
	}
	if err := json.Unmarshal(envelope.Result, &raw); err != nil {
		return nil, fmt.Errorf("unexpected player list from %s: %w", endpoint, err)
	}

	players := make([]PlayerInfo, 0, len(raw))
	for _, p := range raw {
		players = append(players, PlayerInfo{
			SteamID: model.SteamID(p.SteamID64),
			Name:    p.Name,
		})
	}
	return players, nil
}

// GetVIP looks the player up in the endpoint's VIP list
func (c *CRCONClient) GetVIP(ctx context.Context, endpoint string, steamID model.SteamID) (model.VIPStatus, error) {
	ep, err := c.endpoint(endpoint)
	if err != nil {
		return model.VIPStatus{}, err
	}

	envelope, err := c.do(ctx, ep, http.MethodGet, "/api/get_vip_ids", nil)
	if err != nil {
		return model.VIPStatus{}, err
	}

	var vips []struct {
		SteamID64  string  `json:"steam_id_64"`
		Name       string  `json:"name"`
		Expiration *string `json:"vip_expiration"`
	}
	if err := json.Unmarshal(envelope.Result, &vips); err != nil {
		return model.VIPStatus{}, fmt.Errorf("unexpected vip list from %s: %w", endpoint, err)
	}

	for _, vip := range vips {
		if vip.SteamID64 != string(steamID) {
			continue
		}
		if vip.Expiration == nil {
			return model.VIPStatus{}, nil
		}
		expires, err := parseVIPExpiration(*vip.Expiration)
		if err != nil {
			return model.VIPStatus{}, fmt.Errorf("bad vip expiration %q from %s: %w", *vip.Expiration, endpoint, err)
		}
		return model.VIPStatus{ExpiresAt: &expires}, nil
	}

	// No record for this player
	return model.VIPStatus{}, nil
}

// GrantVIP adds or updates the endpoint's VIP record
func (c *CRCONClient) GrantVIP(ctx context.Context, endpoint string, steamID model.SteamID, name string, expiresAt time.Time) error {
	ep, err := c.endpoint(endpoint)
	if err != nil {
		return err
	}

	envelope, err := c.do(ctx, ep, http.MethodPost, "/api/do_add_vip", map[string]string{
		"name":        name,
		"steam_id_64": string(steamID),
		"expiration":  expiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if !resultSuccess(envelope) {
		return fmt.Errorf("%s rejected vip grant for %s", endpoint, steamID)
	}
	return nil
}

// MessagePlayer sends an in-game message to a player on the endpoint
func (c *CRCONClient) MessagePlayer(ctx context.Context, endpoint string, steamID model.SteamID, text string) error {
	ep, err := c.endpoint(endpoint)
	if err != nil {
		return err
	}

	envelope, err := c.do(ctx, ep, http.MethodPost, "/api/do_message_player", map[string]string{
		"steam_id_64": string(steamID),
		"message":     text,
	})
	if err != nil {
		return err
	}
	if !resultSuccess(envelope) {
		return fmt.Errorf("%s rejected message to %s", endpoint, steamID)
	}
	return nil
}

func resultSuccess(envelope *crconResponse) bool {
	var result string
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return false
	}
	return result == "SUCCESS"
}

// vipExpirationLayouts covers the formats CRCON versions have emitted;
// newer entries drop the fractional seconds
var vipExpirationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999-07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999-0700",
}

func parseVIPExpiration(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range vipExpirationLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
