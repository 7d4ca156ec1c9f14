// Package settings keeps user preferences applied to outgoing pushes.
package settings

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/state"
)

// DefaultMessageGroups are offered when configuration does not list any.
var DefaultMessageGroups = []string{"酒店BUG", "八戒惠玩", "通知"}

// Store of user settings.
type Store struct {
	holder *state.Holder
	groups []string
	logger zerolog.Logger
}

// New creates settings store. Empty groups fall back to DefaultMessageGroups.
func New(h *state.Holder, groups []string, logger zerolog.Logger) *Store {
	if len(groups) == 0 {
		groups = DefaultMessageGroups
	}

	return &Store{
		holder: h,
		groups: append([]string(nil), groups...),
		logger: logger.With().Str("pkg", "settings").Logger(),
	}
}

// Get returns current settings.
func (s *Store) Get() (us model.UserSettings) {
	s.holder.View(func(st *model.SystemState) {
		us = st.Settings
	})

	return us
}

// SetAvatar changes the icon sent with every push and persists it. An empty url resets it to
// model.DefaultAvatarURL.
func (s *Store) SetAvatar(ctx context.Context, avatarURL string) error {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		avatarURL = model.DefaultAvatarURL
	}

	err := s.holder.Mutate(ctx, func(st *model.SystemState) error {
		st.Settings.AvatarURL = avatarURL
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("url_len", len(avatarURL)).Msg("avatar updated")

	return nil
}

// MessageGroups lists selectable message groups.
func (s *Store) MessageGroups() []string {
	return append([]string(nil), s.groups...)
}

// DefaultGroup is used when a message is sent without a group.
func (s *Store) DefaultGroup() string {
	return s.groups[0]
}
