// Package registry manages registered devices and keeps their expiry flag current.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pborman/uuid"
	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/netstate"
	"github.com/ferux/pushcenter/internal/pubsub"
	"github.com/ferux/pushcenter/internal/state"
	ptime "github.com/ferux/pushcenter/internal/time"
)

// DefaultSweepInterval between expiry recomputations.
const DefaultSweepInterval = time.Hour * 24

// Prober validates device codes against the relay.
type Prober interface {
	Probe(ctx context.Context, deviceCode string) bool
}

// Registry of devices.
type Registry struct {
	holder *state.Holder
	prober Prober
	online netstate.Signal
	subs   *pubsub.Core
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

// Option configures Registry.
type Option func(*Registry)

// WithClock overrides the clock used to compute "today".
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator overrides device id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// WithPubSub publishes expiry transitions to subs.
func WithPubSub(subs *pubsub.Core) Option {
	return func(r *Registry) { r.subs = subs }
}

// New creates a registry and recomputes expiry of loaded devices.
func New(ctx context.Context, h *state.Holder, p Prober, online netstate.Signal, logger zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		holder: h,
		prober: p,
		online: online,
		logger: logger.With().Str("pkg", "registry").Logger(),
		now:    time.Now,
		newID:  uuid.New,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.RecomputeExpiry(ctx)

	return r
}

func (r *Registry) today() ptime.Date {
	return ptime.DateOf(r.now())
}

// Add registers a new device. Device code must be validated by the caller beforehand.
func (r *Registry) Add(ctx context.Context, deviceCode, name string, expireDate *ptime.Date) (model.Device, error) {
	deviceCode = strings.TrimSpace(deviceCode)
	name = strings.TrimSpace(name)

	if deviceCode == "" {
		return model.Device{}, model.ErrEmptyDeviceCode
	}

	if name == "" {
		return model.Device{}, model.ErrEmptyName
	}

	d := model.Device{
		ID:         r.newID(),
		DeviceCode: deviceCode,
		Name:       name,
		ExpireDate: copyDate(expireDate),
	}
	d.Refresh(r.today())

	err := r.holder.Mutate(ctx, func(s *model.SystemState) error {
		s.Devices = append(s.Devices, d)
		return nil
	})
	if err != nil {
		return model.Device{}, err
	}

	r.logger.Info().Str("device_id", d.ID).Str("name", d.Name).Bool("expired", d.IsExpired).Msg("device added")

	return d, nil
}

// Update replaces the device with the same id. Returns model.ErrNotFound if there is none.
func (r *Registry) Update(ctx context.Context, d model.Device) error {
	d.DeviceCode = strings.TrimSpace(d.DeviceCode)
	d.Name = strings.TrimSpace(d.Name)

	if d.DeviceCode == "" {
		return model.ErrEmptyDeviceCode
	}

	if d.Name == "" {
		return model.ErrEmptyName
	}

	d.ExpireDate = copyDate(d.ExpireDate)
	d.Refresh(r.today())

	err := r.holder.Mutate(ctx, func(s *model.SystemState) error {
		idx := indexOf(s.Devices, d.ID)
		if idx < 0 {
			return fmt.Errorf("updating device %s: %w", d.ID, model.ErrNotFound)
		}

		s.Devices[idx] = d
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info().Str("device_id", d.ID).Bool("expired", d.IsExpired).Msg("device updated")

	return nil
}

// Delete removes the device. Messages referencing it are kept as is.
func (r *Registry) Delete(ctx context.Context, id string) error {
	err := r.holder.Mutate(ctx, func(s *model.SystemState) error {
		idx := indexOf(s.Devices, id)
		if idx < 0 {
			return fmt.Errorf("deleting device %s: %w", id, model.ErrNotFound)
		}

		s.Devices = append(s.Devices[:idx], s.Devices[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info().Str("device_id", id).Msg("device deleted")

	return nil
}

// Get returns device by id.
func (r *Registry) Get(id string) (d model.Device, err error) {
	err = model.ErrNotFound

	r.holder.View(func(s *model.SystemState) {
		if idx := indexOf(s.Devices, id); idx >= 0 {
			d, err = s.Devices[idx], nil
			d.ExpireDate = copyDate(d.ExpireDate)
		}
	})

	return d, err
}

// List returns all devices in registration order.
func (r *Registry) List() []model.Device {
	return r.holder.Snapshot().Devices
}

// Active returns devices which were not expired as of the last recomputation.
func (r *Registry) Active() []model.Device {
	devices := r.List()

	active := make([]model.Device, 0, len(devices))
	for _, d := range devices {
		if !d.IsExpired {
			active = append(active, d)
		}
	}

	return active
}

// RecomputeExpiry refreshes the expiry flag of every device against today.
func (r *Registry) RecomputeExpiry(ctx context.Context) {
	today := r.today()

	var expired []model.Device
	changed := false

	r.holder.View(func(s *model.SystemState) {
		for _, d := range s.Devices {
			copied := d
			if copied.Refresh(today) {
				changed = true
			}
		}
	})

	if !changed {
		return
	}

	err := r.holder.Mutate(ctx, func(s *model.SystemState) error {
		for i := range s.Devices {
			if s.Devices[i].Refresh(today) && s.Devices[i].IsExpired {
				expired = append(expired, s.Devices[i])
			}
		}

		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("recomputing expiry")
		return
	}

	for _, d := range expired {
		r.logger.Info().Str("device_id", d.ID).Str("name", d.Name).Msg("device expired")
		r.subs.Notify(pubsub.TopicDeviceExpired, d)
	}
}

// Run recomputes expiry immediately and then every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.RecomputeExpiry(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ValidateDeviceCode checks the code format and then asks the relay to accept a probe. It
// never fails: any problem is logged and reported as false.
func (r *Registry) ValidateDeviceCode(ctx context.Context, deviceCode string) bool {
	deviceCode = strings.TrimSpace(deviceCode)

	if !model.ValidDeviceCodeFormat(deviceCode) {
		r.logger.Debug().Err(model.ErrBadDeviceCode).Msg("device code rejected")
		return false
	}

	if !r.online.Online() {
		r.logger.Warn().Err(model.ErrOffline).Msg("unable to validate device code")
		return false
	}

	ok := r.prober.Probe(ctx, deviceCode)
	if !ok {
		r.logger.Info().Msg("relay rejected device code")
	}

	return ok
}

func indexOf(devices []model.Device, id string) int {
	for i := range devices {
		if devices[i].ID == id {
			return i
		}
	}

	return -1
}

func copyDate(d *ptime.Date) *ptime.Date {
	if d == nil {
		return nil
	}

	c := *d
	return &c
}
