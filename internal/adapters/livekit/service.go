package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
	lkproto "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/longregen/voicedemo/internal/domain"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
)

type ServiceConfig struct {
	URL       string
	APIKey    string
	APISecret string
	// EmptyTimeout is how long (seconds) a registered room survives without participants.
	EmptyTimeout uint32
}

func ServiceConfigFromCredentials(creds models.Credentials) *ServiceConfig {
	return &ServiceConfig{
		URL:          creds.URL,
		APIKey:       creds.APIKey,
		APISecret:    creds.APISecret,
		EmptyTimeout: 300,
	}
}

type roomClient interface {
	CreateRoom(ctx context.Context, req *lkproto.CreateRoomRequest) (*lkproto.Room, error)
	ListRooms(ctx context.Context, req *lkproto.ListRoomsRequest) (*lkproto.ListRoomsResponse, error)
}

type dispatchClient interface {
	CreateDispatch(ctx context.Context, req *lkproto.CreateAgentDispatchRequest) (*lkproto.AgentDispatch, error)
}

type Service struct {
	config         *ServiceConfig
	roomClient     roomClient
	dispatchClient dispatchClient
}

func NewService(config *ServiceConfig) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("LiveKit config is required")
	}

	if config.URL == "" {
		return nil, fmt.Errorf("LiveKit URL is required")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("LiveKit API key is required")
	}

	if config.APISecret == "" {
		return nil, fmt.Errorf("LiveKit API secret is required")
	}

	return &Service{
		config:         config,
		roomClient:     lksdk.NewRoomServiceClient(config.URL, config.APIKey, config.APISecret),
		dispatchClient: lksdk.NewAgentDispatchServiceClient(config.URL, config.APIKey, config.APISecret),
	}, nil
}

// NewServiceFromCredentials adapts NewService to ports.LiveKitServiceFactory.
func NewServiceFromCredentials(creds models.Credentials) (ports.LiveKitService, error) {
	svc, err := NewService(ServiceConfigFromCredentials(creds))
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// NewServiceFactory returns a factory whose registered rooms close after
// emptyTimeout seconds without participants. Zero keeps the default.
func NewServiceFactory(emptyTimeout uint32) ports.LiveKitServiceFactory {
	return func(creds models.Credentials) (ports.LiveKitService, error) {
		config := ServiceConfigFromCredentials(creds)
		if emptyTimeout > 0 {
			config.EmptyTimeout = emptyTimeout
		}
		svc, err := NewService(config)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

func (s *Service) ServerURL() string {
	return s.config.URL
}

func (s *Service) GenerateToken(grant models.AccessGrant, identity, name string, ttl time.Duration) (*models.AccessToken, error) {
	if grant.RoomName == "" {
		return nil, fmt.Errorf("%w: room name is required", domain.ErrTokenSigning)
	}

	if identity == "" {
		return nil, fmt.Errorf("%w: participant identity is required", domain.ErrTokenSigning)
	}

	if name == "" {
		name = identity
	}

	if ttl <= 0 {
		ttl = models.DefaultTokenTTL
	}

	canPublish := grant.CanPublish
	canSubscribe := grant.CanSubscribe
	canPublishData := grant.CanPublishData
	videoGrant := &auth.VideoGrant{
		RoomJoin:       grant.RoomJoin,
		Room:           grant.RoomName,
		CanPublish:     &canPublish,
		CanSubscribe:   &canSubscribe,
		CanPublishData: &canPublishData,
	}

	at := auth.NewAccessToken(s.config.APIKey, s.config.APISecret)
	at.SetVideoGrant(videoGrant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(ttl)

	if len(grant.Agents) > 0 {
		agents := make([]*lkproto.RoomAgentDispatch, 0, len(grant.Agents))
		for _, agentName := range grant.Agents {
			agents = append(agents, &lkproto.RoomAgentDispatch{AgentName: agentName})
		}
		at.SetRoomConfig(&lkproto.RoomConfiguration{Agents: agents})
	}

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenSigning, err)
	}

	return &models.AccessToken{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *Service) CreateRoom(ctx context.Context, name string) (*ports.LiveKitRoom, error) {
	if name == "" {
		return nil, fmt.Errorf("room name is required")
	}

	room, err := s.roomClient.CreateRoom(ctx, &lkproto.CreateRoomRequest{
		Name:         name,
		EmptyTimeout: s.config.EmptyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return toRoom(room), nil
}

func (s *Service) DispatchAgent(ctx context.Context, req models.AgentDispatchRequest) (*models.AgentDispatch, error) {
	if req.RoomName == "" {
		return nil, fmt.Errorf("room name is required")
	}

	if req.AgentName == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	dispatch, err := s.dispatchClient.CreateDispatch(ctx, &lkproto.CreateAgentDispatchRequest{
		AgentName: req.AgentName,
		Room:      req.RoomName,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch agent %q: %w", req.AgentName, err)
	}

	return &models.AgentDispatch{
		ID:        dispatch.GetId(),
		RoomName:  dispatch.GetRoom(),
		AgentName: dispatch.GetAgentName(),
	}, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]*ports.LiveKitRoom, error) {
	resp, err := s.roomClient.ListRooms(ctx, &lkproto.ListRoomsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]*ports.LiveKitRoom, 0, len(resp.GetRooms()))
	for _, r := range resp.GetRooms() {
		rooms = append(rooms, toRoom(r))
	}
	return rooms, nil
}

func toRoom(r *lkproto.Room) *ports.LiveKitRoom {
	return &ports.LiveKitRoom{
		Name:            r.GetName(),
		SID:             r.GetSid(),
		NumParticipants: r.GetNumParticipants(),
	}
}
