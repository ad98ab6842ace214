package dto

import "github.com/longregen/voicedemo/internal/domain/models"

// DemoResponse is the public view of a demo. It never includes credentials.
type DemoResponse struct {
	Name         string `json:"name" msgpack:"name"`
	Title        string `json:"title" msgpack:"title"`
	Path         string `json:"path" msgpack:"path"`
	AgentName    string `json:"agent_name,omitempty" msgpack:"agent_name,omitempty"`
	DispatchMode string `json:"dispatch_mode" msgpack:"dispatch_mode"`
	Configured   bool   `json:"configured" msgpack:"configured"`
	Default      bool   `json:"default,omitempty" msgpack:"default,omitempty"`
}

type DemoListResponse struct {
	Demos []DemoResponse `json:"demos" msgpack:"demos"`
	Total int            `json:"total" msgpack:"total"`
}

func FromDemo(demo models.Demo, isDefault bool) DemoResponse {
	return DemoResponse{
		Name:         demo.Name,
		Title:        demo.Title,
		Path:         demo.Path(),
		AgentName:    demo.AgentName,
		DispatchMode: string(demo.DispatchMode),
		Configured:   demo.Credentials.IsComplete(),
		Default:      isDefault,
	}
}
