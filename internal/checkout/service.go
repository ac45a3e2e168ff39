package checkout

import (
	"context"
	"fmt"

	"github.com/keksoko/storefront/internal/cart"
	"github.com/keksoko/storefront/internal/upstream"
	"github.com/keksoko/storefront/pkg/config"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
	"github.com/keksoko/storefront/pkg/metrics"
)

type gateway interface {
	CreateOrder(ctx context.Context, order upstream.OrderRequest) (*upstream.OrderCreated, error)
	PaymentStatus(ctx context.Context, orderID string) (upstream.PaymentState, error)
}

// Cart is the slice of the cart store checkout needs: the lines to
// submit and the ability to empty it after a confirmed payment.
type Cart interface {
	Items() []cart.LineItem
	Clear(ctx context.Context) error
}

// Service turns a populated cart into a submitted order and observes
// the asynchronous payment result.
type Service interface {
	Submit(ctx context.Context, sessionID string, buyerCart Cart, form Form) (Snapshot, error)
	Status(orderID string) (Snapshot, error)
	Shutdown()
}

type service struct {
	cfg      config.CheckoutConfig
	gw       gateway
	guard    Guard
	sessions *Manager
	logg     *logger.Logger
	metr     *metrics.CheckoutMetrics
}

// NewService builds the checkout service.
func NewService(
	cfg config.CheckoutConfig,
	gw gateway,
	guard Guard,
	sessions *Manager,
	logg *logger.Logger,
	metr *metrics.CheckoutMetrics,
) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if guard == nil {
		return nil, fmt.Errorf("submission guard required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if cfg.PollInterval <= 0 || cfg.PollTimeout <= cfg.PollInterval {
		return nil, fmt.Errorf("invalid polling configuration")
	}
	return &service{
		cfg:      cfg,
		gw:       gw,
		guard:    guard,
		sessions: sessions,
		logg:     logg,
		metr:     metr,
	}, nil
}

// Submit validates the form, places the order upstream, and starts the
// payment polling loop. The returned snapshot is already in the
// processing state; callers watch it via Status.
func (s *service) Submit(ctx context.Context, sessionID string, buyerCart Cart, form Form) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if buyerCart == nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeInternal, "cart required")
	}

	if err := form.Validate(s.cfg.PhoneRegexp()); err != nil {
		return Snapshot{}, err
	}

	items := buyerCart.Items()
	if len(items) == 0 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	acquired, err := s.guard.Acquire(ctx, sessionID, s.cfg.PollTimeout)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeConflict, "a checkout is already in progress for this session")
	}

	sess := newSession(sessionID)
	s.sessions.register(sess)

	placed, err := s.gw.CreateOrder(ctx, orderRequest(items, form))
	if err != nil {
		sess.finish(StateFailed, "order submission failed")
		s.releaseGuard(ctx, sessionID)
		return Snapshot{}, err
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess.beginProcessing(placed.OrderID, placed.CheckoutRequestID, cancel)
	s.sessions.index(placed.OrderID, sess)

	pollCtx = s.withPollFields(pollCtx, sessionID, placed.OrderID)
	go s.watchPayment(pollCtx, sess, buyerCart)

	return sess.Snapshot(), nil
}

// Status reports the current state of the session tracking an order.
func (s *service) Status(orderID string) (Snapshot, error) {
	sess := s.sessions.ByOrder(orderID)
	if sess == nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout session for this order")
	}
	return sess.Snapshot(), nil
}

// Shutdown cancels every live polling loop.
func (s *service) Shutdown() {
	s.sessions.CancelAll()
}

func (s *service) watchPayment(ctx context.Context, sess *Session, buyerCart Cart) {
	p := &poller{
		interval: s.cfg.PollInterval,
		timeout:  s.cfg.PollTimeout,
		status: func(ctx context.Context) (upstream.PaymentState, error) {
			return s.gw.PaymentStatus(ctx, sess.Snapshot().OrderID)
		},
		logg: s.logg,
		metr: s.metr,
	}

	result := p.run(ctx)
	s.metr.ObserveDuration(string(result), sess.elapsed())
	s.metr.IncOutcome(string(result))

	switch result {
	case pollPaid:
		if err := buyerCart.Clear(ctx); err != nil && s.logg != nil {
			s.logg.Error(ctx, "clear cart after payment", err)
		}
		sess.finish(StateSuccess, "")
		if s.logg != nil {
			s.logg.Info(ctx, "payment confirmed")
		}
	case pollFailed:
		sess.finish(StateFailed, "payment was declined")
	case pollTimeout:
		sess.finishTimeout("payment confirmation timed out, check your order history before retrying")
	case pollCanceled:
		sess.finish(StateFailed, "checkout was canceled")
	}

	s.releaseGuard(ctx, sess.sessionID)
}

func (s *service) releaseGuard(ctx context.Context, sessionID string) {
	if err := s.guard.Release(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "release checkout lock", err)
	}
}

func (s *service) withPollFields(ctx context.Context, sessionID, orderID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	return s.logg.WithOrderID(ctx, orderID)
}

func orderRequest(items []cart.LineItem, form Form) upstream.OrderRequest {
	lines := make([]upstream.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, upstream.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Seller:    item.Seller,
		})
	}
	return upstream.OrderRequest{
		Items:      lines,
		Phone:      form.MpesaPhone,
		GuestName:  form.GuestName,
		GuestEmail: form.GuestEmail,
	}
}
