// Package conntest probes every active device and keeps the last report.
package conntest

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/fcontext"
	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/pubsub"
	"github.com/ferux/pushcenter/internal/relay"
	"github.com/ferux/pushcenter/internal/state"
)

// Checker sends a probe push.
type Checker interface {
	Check(ctx context.Context, deviceCode string, kind relay.ProbeKind) error
}

// Tester runs connectivity tests.
type Tester struct {
	holder  *state.Holder
	checker Checker
	subs    *pubsub.Core
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates tester. subs may be nil.
func New(h *state.Holder, c Checker, subs *pubsub.Core, logger zerolog.Logger) *Tester {
	return &Tester{
		holder:  h,
		checker: c,
		subs:    subs,
		logger:  logger.With().Str("pkg", "conntest").Logger(),
		now:     time.Now,
	}
}

// Run probes active devices one by one and stores the report as the last test.
func (t *Tester) Run(ctx context.Context) model.ConnectivityReport {
	var devices []model.Device
	for _, d := range t.holder.Snapshot().Devices {
		if !d.IsExpired {
			devices = append(devices, d)
		}
	}

	rid := uuid.New()
	logger := t.logger.With().Str("request_id", rid).Logger()
	ctx = fcontext.WithRequestID(logger.WithContext(ctx), rid)

	logger.Info().Int("devices", len(devices)).Msg("testing connectivity")

	results := make([]model.DeviceResult, 0, len(devices))
	for _, d := range devices {
		res := model.DeviceResult{DeviceID: d.ID, DeviceName: d.Name, Success: true}

		err := t.checker.Check(fcontext.WithDeviceID(ctx, d.ID), d.DeviceCode, relay.ProbeConnectivity)
		if err != nil {
			res.Success = false
			res.Error = err.Error()
			logger.Warn().Err(err).Str("device_id", d.ID).Str("device", d.Name).Msg("device unreachable")
		}

		results = append(results, res)
	}

	report := model.NewConnectivityReport(t.now(), results)

	if err := t.holder.Store().SaveLastTest(ctx, report); err != nil {
		logger.Error().Err(err).Msg("saving connectivity report")
	}

	logger.Info().
		Int("succeeded", report.SuccessCount).
		Int("total", report.TotalCount).
		Msg("connectivity test finished")

	t.subs.Notify(pubsub.TopicConnectivityTested, report)

	return report
}

// Last returns the most recent report of a test or a send, nil if there was none.
func (t *Tester) Last(ctx context.Context) *model.ConnectivityReport {
	return t.holder.Store().LoadLastTest(ctx)
}
