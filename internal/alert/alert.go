// Package alert forwards notable core events to the operator.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/raven-go"
	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/dispatch"
	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/pubsub"
)

const notifyTimeout = time.Second * 15

// Notifier sends a text to the operator.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Reporter captures errors. *raven.Client implements it.
type Reporter interface {
	CaptureError(err error, tags map[string]string, interfaces ...raven.Interface) string
}

// DeliveryError describes a send that did not reach every device.
type DeliveryError struct {
	MessageID string
	Failed    int
	Total     int
	Details   string
}

func (err DeliveryError) Error() string {
	return fmt.Sprintf("message %s failed on %d of %d devices: %s", err.MessageID, err.Failed, err.Total, err.Details)
}

// Wire subscribes notifier and reporter to events of subs. Either of them may be nil.
func Wire(subs *pubsub.Core, n Notifier, r Reporter, logger zerolog.Logger) {
	logger = logger.With().Str("pkg", "alert").Logger()

	notify := func(text string) {
		if n == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := n.SendMessage(ctx, text); err != nil {
			logger.Error().Err(err).Msg("notifying operator")
		}
	}

	subs.Subscribe(pubsub.TopicMessageSent, func(args ...interface{}) {
		res, ok := firstArg(args).(dispatch.Result)
		if !ok || res.Outcome() == dispatch.OutcomeSuccess {
			return
		}

		derr := DeliveryError{
			MessageID: res.Message.ID,
			Failed:    res.Report.Failed(),
			Total:     res.Report.TotalCount,
			Details:   res.Message.ErrorMessage,
		}

		if r != nil {
			r.CaptureError(derr, map[string]string{
				"outcome":       res.Outcome().String(),
				"message_group": res.Message.MessageGroup,
			})
		}

		notify(fmt.Sprintf("%q: %d of %d devices failed\n%s",
			res.Message.Title, derr.Failed, derr.Total, derr.Details))
	})

	subs.Subscribe(pubsub.TopicConnectivityTested, func(args ...interface{}) {
		report, ok := firstArg(args).(model.ConnectivityReport)
		if !ok || report.Failed() == 0 {
			return
		}

		notify(fmt.Sprintf("connectivity test: %d/%d devices reachable", report.SuccessCount, report.TotalCount))
	})

	subs.Subscribe(pubsub.TopicDeviceExpired, func(args ...interface{}) {
		d, ok := firstArg(args).(model.Device)
		if !ok {
			return
		}

		notify(fmt.Sprintf("device %q has expired", d.Name))
	})
}

func firstArg(args []interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}

	return args[0]
}
