package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keksoko/storefront/internal/upstream"
)

func TestPollerStopsOnPaid(t *testing.T) {
	var ticks atomic.Int64
	p := &poller{
		interval: 5 * time.Millisecond,
		timeout:  time.Second,
		status: func(ctx context.Context) (upstream.PaymentState, error) {
			if ticks.Add(1) < 3 {
				return upstream.PaymentPending, nil
			}
			return upstream.PaymentPaid, nil
		},
	}

	if got := p.run(context.Background()); got != pollPaid {
		t.Fatalf("expected paid, got %q", got)
	}
	if n := ticks.Load(); n != 3 {
		t.Fatalf("expected polling to stop at tick 3, saw %d ticks", n)
	}
}

func TestPollerStopsOnFailed(t *testing.T) {
	p := &poller{
		interval: 5 * time.Millisecond,
		timeout:  time.Second,
		status: func(ctx context.Context) (upstream.PaymentState, error) {
			return upstream.PaymentFailed, nil
		},
	}

	if got := p.run(context.Background()); got != pollFailed {
		t.Fatalf("expected failed, got %q", got)
	}
}

func TestPollerSwallowsPerTickErrors(t *testing.T) {
	var ticks atomic.Int64
	p := &poller{
		interval: 5 * time.Millisecond,
		timeout:  time.Second,
		status: func(ctx context.Context) (upstream.PaymentState, error) {
			switch ticks.Add(1) {
			case 1:
				return "", errors.New("connection reset")
			case 2:
				return "", errors.New("gateway hiccup")
			default:
				return upstream.PaymentPaid, nil
			}
		},
	}

	if got := p.run(context.Background()); got != pollPaid {
		t.Fatalf("transient errors should not abort the loop, got %q", got)
	}
	if n := ticks.Load(); n != 3 {
		t.Fatalf("expected 3 ticks, saw %d", n)
	}
}

func TestPollerTimesOutWithoutTerminalState(t *testing.T) {
	var ticks atomic.Int64
	p := &poller{
		interval: 5 * time.Millisecond,
		timeout:  40 * time.Millisecond,
		status: func(ctx context.Context) (upstream.PaymentState, error) {
			ticks.Add(1)
			return upstream.PaymentPending, nil
		},
	}

	start := time.Now()
	got := p.run(context.Background())
	if got != pollTimeout {
		t.Fatalf("expected timeout, got %q", got)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("returned before the timeout window: %s", elapsed)
	}

	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if ticks.Load() != after {
		t.Fatal("poller kept issuing polls after timeout")
	}
}

func TestPollerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{
		interval: 5 * time.Millisecond,
		timeout:  time.Second,
		status: func(ctx context.Context) (upstream.PaymentState, error) {
			return upstream.PaymentPending, nil
		},
	}

	done := make(chan pollResult, 1)
	go func() { done <- p.run(ctx) }()

	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case got := <-done:
		if got != pollCanceled {
			t.Fatalf("expected canceled, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
