package models

import (
	"strings"
	"time"
)

// DefaultTokenTTL matches the lifetime the demo front ends expect: long enough to
// connect, short enough that a leaked token is useless soon after.
const DefaultTokenTTL = 15 * time.Minute

// ConnectionDetails is the one-time descriptor a browser client uses to join a room.
type ConnectionDetails struct {
	ServerURL        string `json:"serverUrl" msgpack:"serverUrl"`
	RoomName         string `json:"roomName" msgpack:"roomName"`
	ParticipantName  string `json:"participantName" msgpack:"participantName"`
	ParticipantToken string `json:"participantToken" msgpack:"participantToken"`
}

// ConnectionRequest carries the optional caller inputs of a connection bootstrap.
type ConnectionRequest struct {
	ParticipantName string
	AgentName       string
}

// AccessGrant is the capability set embedded in a signed participant token.
type AccessGrant struct {
	RoomName       string
	RoomJoin       bool
	CanPublish     bool
	CanSubscribe   bool
	CanPublishData bool

	// Agents are embedded in the token's room configuration when the agent is
	// dispatched through the token instead of the management API.
	Agents []string
}

// NewRoomGrant returns the grant issued to demo participants: join, publish,
// subscribe and publish data, restricted to a single room.
func NewRoomGrant(roomName string) AccessGrant {
	return AccessGrant{
		RoomName:       roomName,
		RoomJoin:       true,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
	}
}

// AccessToken is a signed credential and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// AgentDispatchRequest asks the room service to place an agent into a room.
type AgentDispatchRequest struct {
	RoomName  string
	AgentName string
	Metadata  string
}

// AgentDispatch is the room service's acknowledgement of a dispatch.
type AgentDispatch struct {
	ID        string
	RoomName  string
	AgentName string
}

// Credentials are the three secrets needed to talk to the room service, along with
// the environment variable names they are read from.
type Credentials struct {
	URL       string
	APIKey    string
	APISecret string

	URLVar       string
	APIKeyVar    string
	APISecretVar string
}

// Missing returns the variable names of any unset credential, in URL, key, secret order.
func (c Credentials) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, varOr(c.URLVar, "LIVEKIT_URL"))
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, varOr(c.APIKeyVar, "LIVEKIT_API_KEY"))
	}
	if strings.TrimSpace(c.APISecret) == "" {
		missing = append(missing, varOr(c.APISecretVar, "LIVEKIT_API_SECRET"))
	}
	return missing
}

// IsComplete reports whether all three secrets are present.
func (c Credentials) IsComplete() bool {
	return len(c.Missing()) == 0
}

func varOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
