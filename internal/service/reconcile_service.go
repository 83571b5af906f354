package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"shipfire/internal/domain"
	"shipfire/internal/metrics"
	"shipfire/internal/models"
)

var ErrOrderNotFound = errors.New("order not found for webhook event")

// CaptureEvent is a provider notification that funds were captured, already
// verified and classified by the webhook handler.
type CaptureEvent struct {
	Provider   string
	EventID    string
	EventType  string
	OrderNo    string // correlation id from provider metadata, may be empty
	SessionRef string // provider session/order id, fallback correlation
	PayerEmail string
	Raw        []byte
}

// ReconcileService applies capture events to orders with exactly-once
// effective semantics under at-least-once delivery.
type ReconcileService struct {
	orders  OrderStore
	credits CreditStore
	events  EventStore
}

func NewReconcileService(orders OrderStore, credits CreditStore, events EventStore) *ReconcileService {
	return &ReconcileService{orders: orders, credits: credits, events: events}
}

// ApplyCapture progresses the target order to paid and issues its credits
// exactly once. Duplicate deliveries and already-paid orders are successful
// no-ops; a missing order is an error so the provider retries later (the
// checkout may still be committing).
func (s *ReconcileService) ApplyCapture(ctx context.Context, ev CaptureEvent) error {
	if ev.EventID != "" {
		seen, err := s.events.Seen(ctx, ev.Provider, ev.EventID)
		if err != nil {
			return fmt.Errorf("event lookup: %w", err)
		}
		if seen {
			log.Printf("[Reconcile] duplicate %s event %s, skipping", ev.Provider, ev.EventID)
			metrics.WebhookEvents.WithLabelValues(ev.Provider, "duplicate").Inc()
			return nil
		}
	}

	order, err := s.lookupOrder(ctx, ev)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: provider=%s order_no=%q session_ref=%q", ErrOrderNotFound, ev.Provider, ev.OrderNo, ev.SessionRef)
	}

	switch order.Status {
	case domain.OrderStatusPaid:
		// Redelivery after a crash between MarkPaid and credit insert still
		// needs the credit repair below.
		if err := s.ensureCredits(ctx, order, ev.Provider); err != nil {
			return err
		}
		s.events.Record(ctx, ev.Provider, ev.EventID, ev.EventType, order.OrderNo)
		return nil
	case domain.OrderStatusExpired, domain.OrderStatusCancelled:
		// Funds captured against a closed order is an operator problem;
		// retrying the delivery cannot fix it, so acknowledge.
		log.Printf("[Reconcile] capture for %s order %s in terminal status %s", ev.Provider, order.OrderNo, order.Status)
		s.events.Record(ctx, ev.Provider, ev.EventID, ev.EventType, order.OrderNo)
		return nil
	}

	won, err := s.orders.MarkPaid(ctx, order.OrderNo, ev.PayerEmail, string(ev.Raw))
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if !won {
		// A concurrent delivery beat us to the transition.
		current, err := s.orders.FindByOrderNo(ctx, order.OrderNo)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("order %s disappeared during reconciliation", order.OrderNo)
		}
		if current.Status != domain.OrderStatusPaid {
			return fmt.Errorf("order %s not transitionable (status %s)", order.OrderNo, current.Status)
		}
		if err := s.ensureCredits(ctx, current, ev.Provider); err != nil {
			return err
		}
		s.events.Record(ctx, ev.Provider, ev.EventID, ev.EventType, order.OrderNo)
		return nil
	}

	log.Printf("[Reconcile] order %s paid via %s (%s)", order.OrderNo, ev.Provider, ev.EventType)
	metrics.PaymentsCaptured.WithLabelValues(ev.Provider).Inc()

	if err := s.ensureCredits(ctx, order, ev.Provider); err != nil {
		// Event intentionally not recorded: the retry takes the already-paid
		// branch above and repairs the missing credit row.
		return err
	}
	s.events.Record(ctx, ev.Provider, ev.EventID, ev.EventType, order.OrderNo)
	return nil
}

func (s *ReconcileService) lookupOrder(ctx context.Context, ev CaptureEvent) (*models.Order, error) {
	if ev.OrderNo != "" {
		order, err := s.orders.FindByOrderNo(ctx, ev.OrderNo)
		if err != nil || order != nil {
			return order, err
		}
	}
	if ev.SessionRef != "" {
		return s.orders.FindBySessionRef(ctx, ev.Provider, ev.SessionRef)
	}
	return nil, nil
}

// ensureCredits grants the order's credits if no ledger row for the order
// exists yet. The trans_no is derived from the order, so the unique index on
// it makes the insert at-most-once even when two deliveries race past the
// lookup; the loser's insert fails and the re-read confirms the winner's row.
func (s *ReconcileService) ensureCredits(ctx context.Context, order *models.Order, provider string) error {
	if order.Credits <= 0 {
		return nil
	}
	existing, err := s.credits.FindByOrderNo(ctx, order.OrderNo)
	if err != nil {
		return fmt.Errorf("credit lookup: %w", err)
	}
	if existing != nil {
		return nil
	}
	expiredAt := order.ExpiredAt
	credit := &models.Credit{
		TransNo:   domain.CreditTransOrderPay + ":" + order.OrderNo,
		UserUUID:  order.UserUUID,
		TransType: domain.CreditTransOrderPay,
		Credits:   order.Credits,
		OrderNo:   order.OrderNo,
		ExpiredAt: &expiredAt,
	}
	if err := s.credits.Insert(ctx, credit); err != nil {
		if row, findErr := s.credits.FindByOrderNo(ctx, order.OrderNo); findErr == nil && row != nil {
			return nil
		}
		return fmt.Errorf("issue credits: %w", err)
	}
	log.Printf("[Reconcile] issued %d credits to %s for order %s", order.Credits, order.UserUUID, order.OrderNo)
	metrics.CreditsIssued.WithLabelValues(provider).Add(float64(order.Credits))
	return nil
}
