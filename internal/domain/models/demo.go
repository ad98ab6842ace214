package models

// DispatchMode selects how an agent is placed into a freshly created room.
type DispatchMode string

const (
	// DispatchModeAPI registers the room and calls the agent dispatch API.
	DispatchModeAPI DispatchMode = "api"
	// DispatchModeToken embeds the agent in the token's room configuration and lets
	// the server dispatch it when the participant joins.
	DispatchModeToken DispatchMode = "token"
)

func (m DispatchMode) IsValid() bool {
	return m == DispatchModeAPI || m == DispatchModeToken
}

// Demo is one front-end showcase served by its own connection-details route.
type Demo struct {
	Name           string
	Title          string
	AgentName      string
	DispatchMode   DispatchMode
	RoomPrefix     string
	IdentityPrefix string
	// EnvPrefix names the per-demo credential overrides, e.g. DAY4 reads
	// DAY4_LIVEKIT_URL before falling back to LIVEKIT_URL.
	EnvPrefix   string
	Credentials Credentials
}

// Path is the connection-details route serving this demo.
func (d Demo) Path() string {
	return "/api/demos/" + d.Name + "/connection-details"
}
