package domain

import "encoding/json"

// ListEnvelope mirrors the backend list response. Failures are reported as
// Success=false with an empty Data slice, never as a Go error.
type ListEnvelope struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Data    []json.RawMessage `json:"data"`
}

type MutationEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func FailedList() ListEnvelope { return ListEnvelope{Success: false, Count: 0, Data: []json.RawMessage{}} }

func FailedMutation(msg string) MutationEnvelope {
	return MutationEnvelope{Success: false, Message: msg}
}
