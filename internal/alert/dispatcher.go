package alert

import (
	"context"
	"log/slog"

	"github.com/leakspider/leakspider/internal/model"
)

// Dispatcher applies the alert policy: one alert per discovery by default,
// or a single digest covering the whole batch.
type Dispatcher struct {
	notifier Notifier
	digest   bool
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher around a notifier.
func NewDispatcher(notifier Notifier, digest bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{notifier: notifier, digest: digest, logger: logger}
}

// Dispatch sends alerts for the given credentials and returns how many
// alerts went out and how many failed. Delivery failures are logged and
// never returned as errors; alerting must not take down a crawl.
func (d *Dispatcher) Dispatch(ctx context.Context, credentials []model.Credential) (sent, failed int) {
	if len(credentials) == 0 {
		return 0, 0
	}

	if d.digest {
		if err := d.notifier.Notify(ctx, credentials); err != nil {
			d.logger.Error("failed to send digest alert",
				slog.Int("credentials", len(credentials)),
				slog.String("error", err.Error()))
			return 0, 1
		}
		return 1, 0
	}

	for _, cred := range credentials {
		if err := d.notifier.Notify(ctx, []model.Credential{cred}); err != nil {
			failed++
			d.logger.Error("failed to send alert",
				slog.String("identifier", cred.Identifier),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	return sent, failed
}
