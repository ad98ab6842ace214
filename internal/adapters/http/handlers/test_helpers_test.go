package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
)

// setURLParam adds a URL parameter to the request context (chi router style)
func setURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// MockBootstrapper records the requests it receives
type MockBootstrapper struct {
	mu       sync.Mutex
	demo     models.Demo
	details  *models.ConnectionDetails
	err      error
	requests []models.ConnectionRequest
}

func newMockBootstrapper(name string) *MockBootstrapper {
	return &MockBootstrapper{
		demo: models.Demo{Name: name, Title: name, DispatchMode: models.DispatchModeAPI},
		details: &models.ConnectionDetails{
			ServerURL:        "wss://demo.livekit.cloud",
			RoomName:         "voice_assistant_room_" + name,
			ParticipantName:  "user",
			ParticipantToken: "token_" + name,
		},
	}
}

func (m *MockBootstrapper) Demo() models.Demo {
	return m.demo
}

func (m *MockBootstrapper) Bootstrap(ctx context.Context, req models.ConnectionRequest) (*models.ConnectionDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	details := *m.details
	if req.ParticipantName != "" {
		details.ParticipantName = req.ParticipantName
	}
	return &details, nil
}

func (m *MockBootstrapper) lastRequest() models.ConnectionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return models.ConnectionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// MockLiveKitService is a LiveKit service whose ListRooms result is fixed
type MockLiveKitService struct {
	listErr error
}

func (m *MockLiveKitService) ServerURL() string { return "wss://demo.livekit.cloud" }

func (m *MockLiveKitService) GenerateToken(grant models.AccessGrant, identity, name string, ttl time.Duration) (*models.AccessToken, error) {
	return nil, errors.New("not implemented")
}

func (m *MockLiveKitService) CreateRoom(ctx context.Context, name string) (*ports.LiveKitRoom, error) {
	return nil, errors.New("not implemented")
}

func (m *MockLiveKitService) DispatchAgent(ctx context.Context, req models.AgentDispatchRequest) (*models.AgentDispatch, error) {
	return nil, errors.New("not implemented")
}

func (m *MockLiveKitService) ListRooms(ctx context.Context) ([]*ports.LiveKitRoom, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*ports.LiveKitRoom{{Name: "voice_assistant_room_1", NumParticipants: 2}}, nil
}

func liveKitFactory(svc *MockLiveKitService) ports.LiveKitServiceFactory {
	return func(models.Credentials) (ports.LiveKitService, error) {
		return svc, nil
	}
}

func configuredDemo(name string) models.Demo {
	return models.Demo{
		Name:         name,
		Title:        name,
		DispatchMode: models.DispatchModeAPI,
		Credentials: models.Credentials{
			URL:       "wss://demo.livekit.cloud",
			APIKey:    "APIdemo",
			APISecret: "secret",
		},
	}
}
