package dto

import (
	"strings"

	"github.com/longregen/voicedemo/internal/domain/models"
)

// ConnectionDetailsRequest is the optional body of a connection-details call.
type ConnectionDetailsRequest struct {
	ParticipantName string      `json:"participantName,omitempty" msgpack:"participantName,omitempty"`
	RoomConfig      *RoomConfig `json:"room_config,omitempty" msgpack:"room_config,omitempty"`
}

type RoomConfig struct {
	Agents []RoomAgent `json:"agents,omitempty" msgpack:"agents,omitempty"`
}

type RoomAgent struct {
	AgentName string `json:"agent_name" msgpack:"agent_name"`
}

// AgentName returns the first requested agent, if any.
func (r *ConnectionDetailsRequest) AgentName() string {
	if r == nil || r.RoomConfig == nil {
		return ""
	}
	for _, agent := range r.RoomConfig.Agents {
		if name := strings.TrimSpace(agent.AgentName); name != "" {
			return name
		}
	}
	return ""
}

func (r *ConnectionDetailsRequest) ToModel() models.ConnectionRequest {
	if r == nil {
		return models.ConnectionRequest{}
	}
	return models.ConnectionRequest{
		ParticipantName: r.ParticipantName,
		AgentName:       r.AgentName(),
	}
}

type ConnectionDetailsResponse struct {
	ServerURL        string `json:"serverUrl" msgpack:"serverUrl"`
	RoomName         string `json:"roomName" msgpack:"roomName"`
	ParticipantName  string `json:"participantName" msgpack:"participantName"`
	ParticipantToken string `json:"participantToken" msgpack:"participantToken"`
}

func FromConnectionDetails(details *models.ConnectionDetails) *ConnectionDetailsResponse {
	return &ConnectionDetailsResponse{
		ServerURL:        details.ServerURL,
		RoomName:         details.RoomName,
		ParticipantName:  details.ParticipantName,
		ParticipantToken: details.ParticipantToken,
	}
}
