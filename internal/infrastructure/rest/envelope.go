package rest

import (
	"encoding/json"
	"time"
)

// envelope is the backend's canonical response wrapper. Data is decoded lazily
// into the caller's target type.
type envelope struct {
	Success   bool              `json:"success"`
	Message   *string           `json:"message"`
	Data      json.RawMessage   `json:"data"`
	Errors    map[string]string `json:"errors"`
	Timestamp time.Time         `json:"timestamp"`
}

func (e *envelope) message() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}
