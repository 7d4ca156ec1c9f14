// Package dispatch fans messages out to registered devices and records the outcome.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/pborman/uuid"
	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/fcontext"
	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/netstate"
	"github.com/ferux/pushcenter/internal/pubsub"
	"github.com/ferux/pushcenter/internal/relay"
	"github.com/ferux/pushcenter/internal/state"
)

// Deliverer pushes a single message to a single device.
type Deliverer interface {
	Deliver(ctx context.Context, deviceCode, title, content string, opts relay.Options) error
}

// Settings provide per-push defaults.
type Settings interface {
	Get() model.UserSettings
	DefaultGroup() string
}

// Request to send a message.
type Request struct {
	Title   string
	Content string
	Target  model.Target
	// Group is shown by the receiving client. Empty means the default group.
	Group          string
	TargetDeviceID string
}

// Dispatcher sends messages.
type Dispatcher struct {
	holder    *state.Holder
	deliverer Deliverer
	settings  Settings
	online    netstate.Signal
	subs      *pubsub.Core
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// Option configures Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithIDGenerator overrides message and request id generation.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) { d.newID = fn }
}

// WithPubSub publishes every recorded send to subs.
func WithPubSub(subs *pubsub.Core) Option {
	return func(d *Dispatcher) { d.subs = subs }
}

// New creates dispatcher.
func New(h *state.Holder, dl Deliverer, s Settings, online netstate.Signal, logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		holder:    h,
		deliverer: dl,
		settings:  s,
		online:    online,
		logger:    logger.With().Str("pkg", "dispatch").Logger(),
		now:       time.Now,
		newID:     uuid.New,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Send delivers the message to every resolved device, one after another, and records a
// single history entry for the whole send. Only input and connectivity problems are returned
// as errors; delivery failures end up in the Result.
func (d *Dispatcher) Send(ctx context.Context, req Request) (Result, error) {
	if !d.online.Online() {
		return Result{}, model.ErrOffline
	}

	if strings.TrimSpace(req.Title) == "" {
		return Result{}, model.ErrEmptyTitle
	}

	if strings.TrimSpace(req.Content) == "" {
		return Result{}, model.ErrEmptyContent
	}

	if !req.Target.Valid() {
		return Result{}, model.ErrInvalidTarget
	}

	devices := d.resolve(req)
	if len(devices) == 0 {
		return Result{}, model.ErrNoDevices
	}

	group := req.Group
	if group == "" {
		group = d.settings.DefaultGroup()
	}

	avatarURL := d.settings.Get().AvatarURL

	rid := d.newID()
	logger := d.logger.With().Str("request_id", rid).Logger()
	ctx = fcontext.WithRequestID(logger.WithContext(ctx), rid)

	msg := model.Message{
		ID:           d.newID(),
		Title:        req.Title,
		Content:      req.Content,
		Timestamp:    d.now().UTC(),
		Target:       req.Target,
		MessageGroup: group,
		AvatarURL:    avatarURL,
	}

	if req.Target == model.TargetSingle {
		msg.TargetDeviceID = req.TargetDeviceID
	}

	logger.Info().Int("devices", len(devices)).Str("group", group).Msg("sending message")

	opts := relay.Options{Group: group, Icon: avatarURL}
	results := make([]model.DeviceResult, 0, len(devices))

	for _, device := range devices {
		dctx := fcontext.WithDeviceID(ctx, device.ID)
		res := model.DeviceResult{DeviceID: device.ID, DeviceName: device.Name, Success: true}

		if err := d.deliverer.Deliver(dctx, device.DeviceCode, req.Title, req.Content, opts); err != nil {
			res.Success = false
			res.Error = err.Error()

			logger.Warn().Err(err).Str("device_id", device.ID).Str("device", device.Name).Msg("delivery failed")
		}

		results = append(results, res)
	}

	msg.IsSuccess, msg.ErrorMessage = aggregate(results)
	report := model.NewConnectivityReport(d.now(), results)

	err := d.holder.Mutate(ctx, func(s *model.SystemState) error {
		s.Messages = append([]model.Message{msg}, s.Messages...)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("recording message")
	}

	if err = d.holder.Store().SaveLastTest(ctx, report); err != nil {
		logger.Error().Err(err).Msg("saving delivery report")
	}

	result := Result{Message: msg, Report: report}

	logger.Info().
		Int("succeeded", report.SuccessCount).
		Int("total", report.TotalCount).
		Str("outcome", result.Outcome().String()).
		Msg("message sent")

	d.subs.Notify(pubsub.TopicMessageSent, result)

	return result, nil
}

// History returns recorded messages, most recent first.
func (d *Dispatcher) History() []model.Message {
	return d.holder.Snapshot().Messages
}

func (d *Dispatcher) resolve(req Request) []model.Device {
	devices := d.holder.Snapshot().Devices

	switch req.Target {
	case model.TargetAll:
		active := make([]model.Device, 0, len(devices))
		for _, device := range devices {
			if !device.IsExpired {
				active = append(active, device)
			}
		}

		return active
	case model.TargetSingle:
		if req.TargetDeviceID == "" {
			return nil
		}

		for _, device := range devices {
			if device.ID == req.TargetDeviceID && !device.IsExpired {
				return []model.Device{device}
			}
		}
	}

	return nil
}

// aggregate reports overall success and lists failures as "<name>: <error>".
func aggregate(results []model.DeviceResult) (ok bool, errorMessage string) {
	var failures []string

	for _, res := range results {
		if !res.Success {
			failures = append(failures, res.DeviceName+": "+res.Error)
		}
	}

	return len(failures) == 0, strings.Join(failures, "; ")
}
