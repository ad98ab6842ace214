package ports

import (
	"context"
	"time"

	"github.com/longregen/voicedemo/internal/domain/models"
)

// LiveKitRoom represents a room in LiveKit
type LiveKitRoom struct {
	Name            string `json:"name"`
	SID             string `json:"sid"`
	NumParticipants uint32 `json:"num_participants"`
}

// LiveKitService defines the room-service operations the bootstrapper relies on.
// Token signing is local; every other method is a network call.
type LiveKitService interface {
	ServerURL() string
	GenerateToken(grant models.AccessGrant, identity, name string, ttl time.Duration) (*models.AccessToken, error)
	CreateRoom(ctx context.Context, name string) (*LiveKitRoom, error)
	DispatchAgent(ctx context.Context, req models.AgentDispatchRequest) (*models.AgentDispatch, error)
	ListRooms(ctx context.Context) ([]*LiveKitRoom, error)
}

// LiveKitServiceFactory builds a service for a set of credentials.
type LiveKitServiceFactory func(creds models.Credentials) (LiveKitService, error)

// IDGenerator produces the randomized names used for rooms, participants and records.
type IDGenerator interface {
	GenerateRoomName(prefix string) string
	GenerateParticipantIdentity(prefix string) string
	GenerateSessionID() string
}

// ConnectionBootstrapper issues connection details for one demo.
type ConnectionBootstrapper interface {
	Demo() models.Demo
	Bootstrap(ctx context.Context, req models.ConnectionRequest) (*models.ConnectionDetails, error)
}
