package service

import (
	"context"
	"errors"
	"sync"

	"shipfire/internal/models"
	"shipfire/pkg/payment"
)

// In-memory fakes backing the service tests.

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order

	insertErr   error
	markPaidErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*models.Order{}}
}

func (f *fakeOrderStore) Insert(ctx context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *o
	f.orders[o.OrderNo] = &cp
	return nil
}

func (f *fakeOrderStore) FindByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderNo]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) FindBySessionRef(ctx context.Context, payType, sessionRef string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.PayType == payType && o.SessionRef == sessionRef {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderStore) AttachSession(ctx context.Context, orderNo, sessionRef, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderNo]
	if !ok {
		return errors.New("order not found")
	}
	if o.SessionRef == "" {
		o.SessionRef = sessionRef
		o.OrderDetail = detail
	}
	return nil
}

func (f *fakeOrderStore) MarkPaid(ctx context.Context, orderNo, paidEmail, paidDetail string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markPaidErr != nil {
		return false, f.markPaidErr
	}
	o, ok := f.orders[orderNo]
	if !ok || o.Status != "created" {
		return false, nil
	}
	o.Status = "paid"
	o.PaidEmail = paidEmail
	o.PaidDetail = paidDetail
	now := timeNow()
	o.PaidAt = &now
	return true, nil
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.UserUUID == userUUID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeCreditStore struct {
	mu   sync.Mutex
	rows []models.Credit

	insertErr error
}

func (f *fakeCreditStore) Insert(ctx context.Context, c *models.Credit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	// Mirror the unique index on trans_no.
	for i := range f.rows {
		if f.rows[i].TransNo == c.TransNo {
			return errors.New("duplicate trans_no")
		}
	}
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeCreditStore) FindByOrderNo(ctx context.Context, orderNo string) (*models.Credit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].OrderNo == orderNo {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCreditStore) SumValid(ctx context.Context, userUUID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	now := timeNow()
	for _, r := range f.rows {
		if r.UserUUID != userUUID {
			continue
		}
		if r.ExpiredAt != nil && r.ExpiredAt.Before(now) {
			continue
		}
		sum += r.Credits
	}
	return sum, nil
}

func (f *fakeCreditStore) ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Credit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Credit
	for _, r := range f.rows {
		if r.UserUUID == userUUID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) FindByUUID(ctx context.Context, uuid string) (*models.User, error) {
	u, ok := f.users[uuid]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeEventStore struct {
	mu       sync.Mutex
	seen     map[string]bool
	recorded []string
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{seen: map[string]bool{}}
}

func (f *fakeEventStore) Seen(ctx context.Context, provider, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[provider+"/"+eventID], nil
}

func (f *fakeEventStore) Record(ctx context.Context, provider, eventID, eventType, orderNo string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := provider + "/" + eventID
	if !f.seen[key] {
		f.seen[key] = true
		f.recorded = append(f.recorded, key)
	}
}

type fakeProvider struct {
	name       string
	calls      int
	lastParams payment.CheckoutParams
	session    *payment.Session
	err        error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CreateSession(ctx context.Context, params payment.CheckoutParams) (*payment.Session, error) {
	f.calls++
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	if f.session != nil {
		return f.session, nil
	}
	return &payment.Session{
		Provider:    f.name,
		SessionRef:  f.name + "_sess_1",
		CheckoutURL: "https://pay.example.com/" + f.name,
	}, nil
}
