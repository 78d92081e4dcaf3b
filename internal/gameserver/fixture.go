package gameserver

import (
	"context"
	"sync"
	"time"

	"github.com/hllops/seedbank/internal/model"
)

// FixtureClient is an in-memory Client implementation for tests and local
// development. Endpoint state is seeded directly and failures can be
// injected per endpoint and operation.
type FixtureClient struct {
	mu sync.Mutex

	order    []string
	players  map[string][]PlayerInfo
	vips     map[string]map[model.SteamID]model.VIPStatus
	messages map[string][]SentMessage

	listErrs  map[string]error
	vipErrs   map[string]error
	grantErrs map[string]error
	msgErrs   map[string]error
}

// SentMessage records one MessagePlayer call
type SentMessage struct {
	SteamID model.SteamID
	Text    string
}

// NewFixtureClient creates a fixture spanning the given endpoint names
func NewFixtureClient(endpoints ...string) *FixtureClient {
	f := &FixtureClient{
		order:     endpoints,
		players:   make(map[string][]PlayerInfo),
		vips:      make(map[string]map[model.SteamID]model.VIPStatus),
		messages:  make(map[string][]SentMessage),
		listErrs:  make(map[string]error),
		vipErrs:   make(map[string]error),
		grantErrs: make(map[string]error),
		msgErrs:   make(map[string]error),
	}
	for _, ep := range endpoints {
		f.vips[ep] = make(map[model.SteamID]model.VIPStatus)
	}
	return f
}

// Ensure FixtureClient implements the interface
var _ Client = (*FixtureClient)(nil)

// SetPlayers replaces the player list an endpoint reports
func (f *FixtureClient) SetPlayers(endpoint string, players ...PlayerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[endpoint] = players
}

// SetVIP sets the VIP record an endpoint reports for a player
func (f *FixtureClient) SetVIP(endpoint string, steamID model.SteamID, status model.VIPStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vips[endpoint][steamID] = status
}

// FailList makes ListPlayers fail for an endpoint (nil clears)
func (f *FixtureClient) FailList(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErrs[endpoint] = err
}

// FailVIPQuery makes GetVIP fail for an endpoint (nil clears)
func (f *FixtureClient) FailVIPQuery(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vipErrs[endpoint] = err
}

// FailGrant makes GrantVIP fail for an endpoint (nil clears)
func (f *FixtureClient) FailGrant(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantErrs[endpoint] = err
}

// FailMessage makes MessagePlayer fail for an endpoint (nil clears)
func (f *FixtureClient) FailMessage(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgErrs[endpoint] = err
}

// Messages returns the messages sent to an endpoint so far
func (f *FixtureClient) Messages(endpoint string) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, len(f.messages[endpoint]))
	copy(out, f.messages[endpoint])
	return out
}

// VIP returns the fixture's current VIP record for a player on an endpoint
func (f *FixtureClient) VIP(endpoint string, steamID model.SteamID) model.VIPStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vips[endpoint][steamID]
}

func (f *FixtureClient) Endpoints() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func (f *FixtureClient) ListPlayers(ctx context.Context, endpoint string) ([]PlayerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErrs[endpoint]; err != nil {
		return nil, err
	}
	out := make([]PlayerInfo, len(f.players[endpoint]))
	copy(out, f.players[endpoint])
	return out, nil
}

func (f *FixtureClient) GetVIP(ctx context.Context, endpoint string, steamID model.SteamID) (model.VIPStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.vipErrs[endpoint]; err != nil {
		return model.VIPStatus{}, err
	}
	return f.vips[endpoint][steamID], nil
}

func (f *FixtureClient) GrantVIP(ctx context.Context, endpoint string, steamID model.SteamID, name string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.grantErrs[endpoint]; err != nil {
		return err
	}
	expires := expiresAt
	f.vips[endpoint][steamID] = model.VIPStatus{ExpiresAt: &expires}
	return nil
}

func (f *FixtureClient) MessagePlayer(ctx context.Context, endpoint string, steamID model.SteamID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.msgErrs[endpoint]; err != nil {
		return err
	}
	f.messages[endpoint] = append(f.messages[endpoint], SentMessage{SteamID: steamID, Text: text})
	return nil
}
