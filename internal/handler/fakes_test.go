package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"shipfire/internal/domain"
	"shipfire/internal/models"
	"shipfire/internal/service"
)

// Minimal in-memory stores for wiring a real ReconcileService under httptest.

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newMemOrders(seed ...*models.Order) *memOrders {
	m := &memOrders{orders: map[string]*models.Order{}}
	for _, o := range seed {
		cp := *o
		m.orders[o.OrderNo] = &cp
	}
	return m
}

func (m *memOrders) Insert(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.OrderNo] = &cp
	return nil
}

func (m *memOrders) FindByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderNo]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (m *memOrders) FindBySessionRef(ctx context.Context, payType, sessionRef string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PayType == payType && o.SessionRef == sessionRef {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memOrders) AttachSession(ctx context.Context, orderNo, sessionRef, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderNo]; ok && o.SessionRef == "" {
		o.SessionRef = sessionRef
		o.OrderDetail = detail
	}
	return nil
}

func (m *memOrders) MarkPaid(ctx context.Context, orderNo, paidEmail, paidDetail string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNo]
	if !ok || o.Status != domain.OrderStatusCreated {
		return false, nil
	}
	o.Status = domain.OrderStatusPaid
	o.PaidEmail = paidEmail
	o.PaidDetail = paidDetail
	now := time.Now()
	o.PaidAt = &now
	return true, nil
}

func (m *memOrders) ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserUUID == userUUID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memCredits struct {
	mu   sync.Mutex
	rows []models.Credit
}

func (m *memCredits) Insert(ctx context.Context, c *models.Credit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirror the unique index on trans_no.
	for i := range m.rows {
		if m.rows[i].TransNo == c.TransNo {
			return errors.New("duplicate trans_no")
		}
	}
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memCredits) FindByOrderNo(ctx context.Context, orderNo string) (*models.Credit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].OrderNo == orderNo {
			cp := m.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCredits) SumValid(ctx context.Context, userUUID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, r := range m.rows {
		if r.UserUUID == userUUID {
			sum += r.Credits
		}
	}
	return sum, nil
}

func (m *memCredits) ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Credit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Credit
	for _, r := range m.rows {
		if r.UserUUID == userUUID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memEvents struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemEvents() *memEvents { return &memEvents{seen: map[string]bool{}} }

func (m *memEvents) Seen(ctx context.Context, provider, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[provider+"/"+eventID], nil
}

func (m *memEvents) Record(ctx context.Context, provider, eventID, eventType, orderNo string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[provider+"/"+eventID] = true
}

func createdOrder(orderNo, payType, sessionRef string) *models.Order {
	return &models.Order{
		OrderNo:     orderNo,
		UserUUID:    "user-1",
		UserEmail:   "buyer@example.com",
		AmountCents: 990,
		Currency:    "usd",
		Interval:    "month",
		Credits:     50,
		ProductID:   "starter",
		ValidMonths: 1,
		Status:      domain.OrderStatusCreated,
		PayType:     payType,
		SessionRef:  sessionRef,
		ExpiredAt:   time.Now().AddDate(0, 1, 0),
	}
}

func newReconcile(orders *memOrders, credits *memCredits) *service.ReconcileService {
	return service.NewReconcileService(orders, credits, newMemEvents())
}
