package checkout

import (
	"context"
	"time"

	"github.com/keksoko/storefront/internal/upstream"
	"github.com/keksoko/storefront/pkg/logger"
	"github.com/keksoko/storefront/pkg/metrics"
)

type statusFunc func(ctx context.Context) (upstream.PaymentState, error)

// pollResult is why the polling loop stopped.
type pollResult string

const (
	pollPaid     pollResult = "paid"
	pollFailed   pollResult = "failed"
	pollTimeout  pollResult = "timeout"
	pollCanceled pollResult = "canceled"
)

// poller drives the payment status loop for one submitted order. It
// ticks at a fixed interval until the gateway reports a terminal state,
// the timeout window closes, or the context is canceled. Transport
// errors on an individual tick are logged and swallowed so a transient
// blip cannot fail an otherwise succeeding payment.
type poller struct {
	interval time.Duration
	timeout  time.Duration
	status   statusFunc
	logg     *logger.Logger
	metr     *metrics.CheckoutMetrics
}

func (p *poller) run(ctx context.Context) pollResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return pollTimeout
			}
			return pollCanceled
		case <-ticker.C:
			state, err := p.status(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				p.metr.IncTick("error")
				if p.logg != nil {
					p.logg.Warn(ctx, "payment status poll failed, retrying")
				}
				continue
			}
			switch state {
			case upstream.PaymentPaid:
				p.metr.IncTick("paid")
				return pollPaid
			case upstream.PaymentFailed:
				p.metr.IncTick("failed")
				return pollFailed
			default:
				p.metr.IncTick("pending")
			}
		}
	}
}
