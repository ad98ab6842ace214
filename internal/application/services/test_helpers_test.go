package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCompleteDetails(t *testing.T, details *models.ConnectionDetails) {
	t.Helper()
	require.NotNil(t, details)
	assert.NotEmpty(t, details.ServerURL)
	assert.NotEmpty(t, details.RoomName)
	assert.NotEmpty(t, details.ParticipantName)
	assert.NotEmpty(t, details.ParticipantToken)
}

// Shared mock implementations for testing

type mockIDGenerator struct {
	mu             sync.Mutex
	roomCounter    int
	identCounter   int
	sessionCounter int
}

func (m *mockIDGenerator) GenerateRoomName(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomCounter++
	if prefix == "" {
		prefix = "voice_assistant_room"
	}
	return fmt.Sprintf("%s_test%d", prefix, m.roomCounter)
}

func (m *mockIDGenerator) GenerateParticipantIdentity(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identCounter++
	if prefix == "" {
		prefix = "voice_assistant_user"
	}
	return fmt.Sprintf("%s_test%d", prefix, m.identCounter)
}

func (m *mockIDGenerator) GenerateSessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionCounter++
	return fmt.Sprintf("sess_test%d", m.sessionCounter)
}

type tokenCall struct {
	grant    models.AccessGrant
	identity string
	name     string
	ttl      time.Duration
}

type mockLiveKitService struct {
	mu sync.Mutex

	serverURL string

	tokenErr       error
	createRoomErr  error
	dispatchErr    error
	dispatchPanics bool

	tokenCalls    []tokenCall
	createdRooms  []string
	dispatchCalls []models.AgentDispatchRequest
}

func newMockLiveKitService() *mockLiveKitService {
	return &mockLiveKitService{serverURL: "wss://demo.livekit.cloud"}
}

func (m *mockLiveKitService) ServerURL() string {
	return m.serverURL
}

func (m *mockLiveKitService) GenerateToken(grant models.AccessGrant, identity, name string, ttl time.Duration) (*models.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenCalls = append(m.tokenCalls, tokenCall{grant: grant, identity: identity, name: name, ttl: ttl})
	if m.tokenErr != nil {
		return nil, m.tokenErr
	}
	return &models.AccessToken{
		Token:     "token-for-" + identity + "-in-" + grant.RoomName,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (m *mockLiveKitService) CreateRoom(ctx context.Context, name string) (*ports.LiveKitRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createdRooms = append(m.createdRooms, name)
	if m.createRoomErr != nil {
		return nil, m.createRoomErr
	}
	return &ports.LiveKitRoom{Name: name, SID: "RM_" + name}, nil
}

func (m *mockLiveKitService) DispatchAgent(ctx context.Context, req models.AgentDispatchRequest) (*models.AgentDispatch, error) {
	m.mu.Lock()
	m.dispatchCalls = append(m.dispatchCalls, req)
	m.mu.Unlock()
	if m.dispatchPanics {
		panic("dispatch client exploded")
	}
	if m.dispatchErr != nil {
		return nil, m.dispatchErr
	}
	return &models.AgentDispatch{ID: "AD_" + req.RoomName, RoomName: req.RoomName, AgentName: req.AgentName}, nil
}

func (m *mockLiveKitService) ListRooms(ctx context.Context) ([]*ports.LiveKitRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]*ports.LiveKitRoom, 0, len(m.createdRooms))
	for _, name := range m.createdRooms {
		rooms = append(rooms, &ports.LiveKitRoom{Name: name})
	}
	return rooms, nil
}

func (m *mockLiveKitService) networkCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.createdRooms) + len(m.dispatchCalls)
}

// factoryFor returns a factory that always hands out svc and counts invocations.
func factoryFor(svc *mockLiveKitService, calls *int) ports.LiveKitServiceFactory {
	return func(creds models.Credentials) (ports.LiveKitService, error) {
		if calls != nil {
			*calls++
		}
		return svc, nil
	}
}

type mockSessionRepo struct {
	mu      sync.Mutex
	records []*models.SessionRecord
	err     error
}

func (m *mockSessionRepo) Record(ctx context.Context, record *models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *record
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockSessionRepo) ListRecent(ctx context.Context, limit int) ([]*models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	return m.records[len(m.records)-limit:], nil
}

func completeCredentials() models.Credentials {
	return models.Credentials{
		URL:       "wss://demo.livekit.cloud",
		APIKey:    "APIdemo",
		APISecret: "secret-secret-secret-secret-secret",
	}
}

func testDemo(agent string, mode models.DispatchMode) models.Demo {
	return models.Demo{
		Name:         "day4",
		Title:        "Day 4",
		AgentName:    agent,
		DispatchMode: mode,
		Credentials:  completeCredentials(),
	}
}
