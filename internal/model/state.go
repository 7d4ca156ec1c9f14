package model

// DefaultAvatarURL is used as the relay icon until the user picks another one.
const DefaultAvatarURL = "https://img10.360buyimg.com/ling/jfs/t1/376729/40/5083/101103/6937f57eF170806bf/089526d26d3dd748.jpg"

// UserSettings are user preferences applied to every outgoing push.
type UserSettings struct {
	AvatarURL string `json:"avatarUrl"`
}

// SystemState is the unit of persistence.
type SystemState struct {
	Devices  []Device     `json:"devices"`
	Messages []Message    `json:"messages"`
	Settings UserSettings `json:"settings"`
}

// DefaultState returns the state of a fresh installation.
func DefaultState() SystemState {
	return SystemState{
		Devices:  []Device{},
		Messages: []Message{},
		Settings: UserSettings{AvatarURL: DefaultAvatarURL},
	}
}

// Normalize replaces nil collections and an empty avatar with defaults.
func (s *SystemState) Normalize() {
	if s.Devices == nil {
		s.Devices = []Device{}
	}

	if s.Messages == nil {
		s.Messages = []Message{}
	}

	if s.Settings.AvatarURL == "" {
		s.Settings.AvatarURL = DefaultAvatarURL
	}
}

// Clone returns a copy that shares nothing mutable with s.
func (s SystemState) Clone() SystemState {
	c := SystemState{
		Devices:  make([]Device, len(s.Devices)),
		Messages: make([]Message, len(s.Messages)),
		Settings: s.Settings,
	}

	copy(c.Messages, s.Messages)
	for i, d := range s.Devices {
		if d.ExpireDate != nil {
			date := *d.ExpireDate
			d.ExpireDate = &date
		}
		c.Devices[i] = d
	}

	return c
}
