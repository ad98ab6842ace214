package otel

import "go.opentelemetry.io/otel/attribute"

// Standard attribute keys for voicedemo spans.
const (
	AttrDemo                = "voicedemo.demo"
	AttrRoomName            = "livekit.room.name"
	AttrParticipantIdentity = "livekit.participant.identity"
	AttrAgentName           = "livekit.agent.name"
	AttrDispatchMode        = "livekit.dispatch.mode"
	AttrDispatchOutcome     = "livekit.dispatch.outcome"
	AttrDispatchID          = "livekit.dispatch.id"
)

func Demo(name string) attribute.KeyValue         { return attribute.String(AttrDemo, name) }
func RoomName(name string) attribute.KeyValue     { return attribute.String(AttrRoomName, name) }
func ParticipantIdentity(id string) attribute.KeyValue {
	return attribute.String(AttrParticipantIdentity, id)
}
func AgentName(name string) attribute.KeyValue        { return attribute.String(AttrAgentName, name) }
func DispatchMode(mode string) attribute.KeyValue     { return attribute.String(AttrDispatchMode, mode) }
func DispatchOutcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrDispatchOutcome, outcome)
}
func DispatchID(id string) attribute.KeyValue { return attribute.String(AttrDispatchID, id) }
