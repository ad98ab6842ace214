package models

import "time"

type DispatchStatus string

const (
	DispatchStatusNone       DispatchStatus = "none"
	DispatchStatusDispatched DispatchStatus = "dispatched"
	DispatchStatusEmbedded   DispatchStatus = "embedded"
	DispatchStatusFailed     DispatchStatus = "failed"
)

// SessionRecord is the audit entry written for every issued connection. It never
// holds the participant token.
type SessionRecord struct {
	ID                  string         `json:"id"`
	Demo                string         `json:"demo"`
	RoomName            string         `json:"room_name"`
	ParticipantIdentity string         `json:"participant_identity"`
	ParticipantName     string         `json:"participant_name"`
	AgentName           string         `json:"agent_name,omitempty"`
	DispatchStatus      DispatchStatus `json:"dispatch_status"`
	DispatchError       string         `json:"dispatch_error,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

func NewSessionRecord(id, demo, roomName, identity, name string) *SessionRecord {
	return &SessionRecord{
		ID:                  id,
		Demo:                demo,
		RoomName:            roomName,
		ParticipantIdentity: identity,
		ParticipantName:     name,
		DispatchStatus:      DispatchStatusNone,
		CreatedAt:           time.Now().UTC(),
	}
}

func (s *SessionRecord) MarkDispatched(agentName string) {
	s.AgentName = agentName
	s.DispatchStatus = DispatchStatusDispatched
	s.DispatchError = ""
}

func (s *SessionRecord) MarkEmbedded(agentName string) {
	s.AgentName = agentName
	s.DispatchStatus = DispatchStatusEmbedded
	s.DispatchError = ""
}

func (s *SessionRecord) MarkDispatchFailed(agentName string, err error) {
	s.AgentName = agentName
	s.DispatchStatus = DispatchStatusFailed
	if err != nil {
		s.DispatchError = err.Error()
	}
}
