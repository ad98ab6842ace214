package id

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Lowercase alphanumerics keep room names readable in the LiveKit dashboard and
// valid as participant identities.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const (
	RoomSuffixLength     = 10
	IdentitySuffixLength = 10
	SessionIDLength      = 21

	DefaultRoomPrefix     = "voice_assistant_room"
	DefaultIdentityPrefix = "voice_assistant_user"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) generate(prefix string, length int) string {
	suffix, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return prefix + "_fallback"
	}
	if prefix == "" {
		return suffix
	}
	return prefix + "_" + suffix
}

func (g *Generator) GenerateRoomName(prefix string) string {
	if prefix == "" {
		prefix = DefaultRoomPrefix
	}
	return g.generate(prefix, RoomSuffixLength)
}

func (g *Generator) GenerateParticipantIdentity(prefix string) string {
	if prefix == "" {
		prefix = DefaultIdentityPrefix
	}
	return g.generate(prefix, IdentitySuffixLength)
}

func (g *Generator) GenerateSessionID() string {
	id, err := gonanoid.New(SessionIDLength)
	if err != nil {
		return "sess_fallback"
	}
	return "sess_" + id
}
