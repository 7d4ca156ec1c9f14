package model

import "time"

// Target selects devices a message is sent to.
type Target string

const (
	TargetAll    Target = "all"
	TargetSingle Target = "single"
)

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	return t == TargetAll || t == TargetSingle
}

// Message is a single send attempt recorded in history.
type Message struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Target         Target    `json:"target"`
	TargetDeviceID string    `json:"targetDeviceId,omitempty"`
	IsSuccess      bool      `json:"isSuccess"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	MessageGroup   string    `json:"messageGroup,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
}
