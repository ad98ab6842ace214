package livekit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lkproto "github.com/livekit/protocol/livekit"
	"github.com/longregen/voicedemo/internal/domain"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "APItestkey"
	testAPISecret = "test-secret-that-is-long-enough-for-hs256-signing"
)

type fakeRoomClient struct {
	created   []*lkproto.CreateRoomRequest
	createErr error
	rooms     []*lkproto.Room
	listErr   error
}

func (f *fakeRoomClient) CreateRoom(ctx context.Context, req *lkproto.CreateRoomRequest) (*lkproto.Room, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &lkproto.Room{Name: req.Name, Sid: "RM_" + req.Name}, nil
}

func (f *fakeRoomClient) ListRooms(ctx context.Context, req *lkproto.ListRoomsRequest) (*lkproto.ListRoomsResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &lkproto.ListRoomsResponse{Rooms: f.rooms}, nil
}

type fakeDispatchClient struct {
	requests []*lkproto.CreateAgentDispatchRequest
	err      error
}

func (f *fakeDispatchClient) CreateDispatch(ctx context.Context, req *lkproto.CreateAgentDispatchRequest) (*lkproto.AgentDispatch, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &lkproto.AgentDispatch{Id: "AD_1", AgentName: req.AgentName, Room: req.Room}, nil
}

func newTestService(rooms *fakeRoomClient, dispatch *fakeDispatchClient) *Service {
	return &Service{
		config: &ServiceConfig{
			URL:          "wss://demo.livekit.cloud",
			APIKey:       testAPIKey,
			APISecret:    testAPISecret,
			EmptyTimeout: 300,
		},
		roomClient:     rooms,
		dispatchClient: dispatch,
	}
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(testAPISecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestNewService_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ServiceConfig
	}{
		{"nil config", nil},
		{"missing url", &ServiceConfig{APIKey: "k", APISecret: "s"}},
		{"missing key", &ServiceConfig{URL: "wss://x", APISecret: "s"}},
		{"missing secret", &ServiceConfig{URL: "wss://x", APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}

	svc, err := NewService(&ServiceConfig{URL: "wss://x", APIKey: "k", APISecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "wss://x", svc.ServerURL())
}

func TestNewServiceFromCredentials(t *testing.T) {
	_, err := NewServiceFromCredentials(models.Credentials{URL: "wss://x"})
	assert.Error(t, err)

	svc, err := NewServiceFromCredentials(models.Credentials{URL: "wss://x", APIKey: "k", APISecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "wss://x", svc.ServerURL())
}

func TestNewServiceFactory_EmptyTimeout(t *testing.T) {
	creds := models.Credentials{URL: "wss://x", APIKey: "k", APISecret: "s"}

	svc, err := NewServiceFactory(60)(creds)
	require.NoError(t, err)
	assert.Equal(t, uint32(60), svc.(*Service).config.EmptyTimeout)

	svc, err = NewServiceFactory(0)(creds)
	require.NoError(t, err)
	assert.Equal(t, uint32(300), svc.(*Service).config.EmptyTimeout)

	_, err = NewServiceFactory(60)(models.Credentials{})
	assert.Error(t, err)
}

func TestService_GenerateToken_ScopedToRoom(t *testing.T) {
	svc := newTestService(&fakeRoomClient{}, &fakeDispatchClient{})

	before := time.Now()
	token, err := svc.GenerateToken(models.NewRoomGrant("voice_assistant_room_abc"), "voice_assistant_user_xyz", "Ada", 15*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.WithinDuration(t, before.Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims := parseClaims(t, token.Token)
	assert.Equal(t, testAPIKey, claims["iss"])
	assert.Equal(t, "voice_assistant_user_xyz", claims["sub"])
	assert.Equal(t, "Ada", claims["name"])

	video, ok := claims["video"].(map[string]interface{})
	require.True(t, ok, "token must carry a video grant")
	assert.Equal(t, "voice_assistant_room_abc", video["room"])
	assert.Equal(t, true, video["roomJoin"])
	assert.Equal(t, true, video["canPublish"])
	assert.Equal(t, true, video["canSubscribe"])
	assert.Equal(t, true, video["canPublishData"])
	assert.NotContains(t, claims, "roomConfig")
}

func TestService_GenerateToken_EmbedsAgents(t *testing.T) {
	svc := newTestService(&fakeRoomClient{}, &fakeDispatchClient{})

	grant := models.NewRoomGrant("room_1")
	grant.Agents = []string{"barista"}
	token, err := svc.GenerateToken(grant, "user_1", "", 0)
	require.NoError(t, err)

	claims := parseClaims(t, token.Token)
	assert.Equal(t, "user_1", claims["name"], "name falls back to identity")

	roomConfig, ok := claims["roomConfig"]
	require.True(t, ok, "token must carry a room configuration")
	raw, err := json.Marshal(roomConfig)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "barista")
}

func TestService_GenerateToken_Errors(t *testing.T) {
	svc := newTestService(&fakeRoomClient{}, &fakeDispatchClient{})

	_, err := svc.GenerateToken(models.NewRoomGrant(""), "user", "name", time.Minute)
	assert.ErrorIs(t, err, domain.ErrTokenSigning)

	_, err = svc.GenerateToken(models.NewRoomGrant("room"), "", "name", time.Minute)
	assert.ErrorIs(t, err, domain.ErrTokenSigning)

	svc.config.APISecret = ""
	_, err = svc.GenerateToken(models.NewRoomGrant("room"), "user", "name", time.Minute)
	assert.ErrorIs(t, err, domain.ErrTokenSigning)
}

func TestService_CreateRoom(t *testing.T) {
	rooms := &fakeRoomClient{}
	svc := newTestService(rooms, &fakeDispatchClient{})

	room, err := svc.CreateRoom(context.Background(), "room_1")
	require.NoError(t, err)
	assert.Equal(t, "room_1", room.Name)
	assert.Equal(t, "RM_room_1", room.SID)
	require.Len(t, rooms.created, 1)
	assert.Equal(t, uint32(300), rooms.created[0].EmptyTimeout)

	_, err = svc.CreateRoom(context.Background(), "")
	assert.Error(t, err)

	rooms.createErr = errors.New("twirp error unavailable")
	_, err = svc.CreateRoom(context.Background(), "room_2")
	assert.ErrorContains(t, err, "failed to create room")
}

func TestService_DispatchAgent(t *testing.T) {
	dispatch := &fakeDispatchClient{}
	svc := newTestService(&fakeRoomClient{}, dispatch)

	result, err := svc.DispatchAgent(context.Background(), models.AgentDispatchRequest{RoomName: "room_1", AgentName: "barista"})
	require.NoError(t, err)
	assert.Equal(t, "AD_1", result.ID)
	assert.Equal(t, "room_1", result.RoomName)
	assert.Equal(t, "barista", result.AgentName)
	require.Len(t, dispatch.requests, 1)
	assert.Equal(t, "room_1", dispatch.requests[0].Room)

	_, err = svc.DispatchAgent(context.Background(), models.AgentDispatchRequest{RoomName: "room_1"})
	assert.Error(t, err)

	dispatch.err = errors.New("agent not registered")
	_, err = svc.DispatchAgent(context.Background(), models.AgentDispatchRequest{RoomName: "room_1", AgentName: "barista"})
	assert.ErrorContains(t, err, "barista")
}

func TestService_ListRooms(t *testing.T) {
	rooms := &fakeRoomClient{rooms: []*lkproto.Room{{Name: "a", Sid: "RM_a", NumParticipants: 2}}}
	svc := newTestService(rooms, &fakeDispatchClient{})

	list, err := svc.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint32(2), list[0].NumParticipants)

	rooms.listErr = errors.New("unauthorized")
	_, err = svc.ListRooms(context.Background())
	assert.Error(t, err)
}
