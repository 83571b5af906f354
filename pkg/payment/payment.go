package payment

import (
	"context"
)

const (
	Stripe = "stripe"
	PayPal = "paypal"
	Creem  = "creem"
)

// CheckoutParams carries everything an adapter needs to open a remote checkout
// session. Order metadata rides along so the webhook path can recover the
// order without a database join.
type CheckoutParams struct {
	OrderNo        string
	UserUUID       string
	UserEmail      string
	ProductID      string
	ProductName    string
	AmountCents    int64
	Currency       string
	Interval       string // one-time | month | year
	IsSubscription bool
	Credits        int
	Locale         string
	SuccessURL     string
	CancelURL      string
	// CreemProductID optionally overrides the provider-side product mapping.
	CreemProductID string
}

// Session is the provider's answer to a checkout request.
type Session struct {
	Provider    string
	SessionRef  string // provider session/approval id, stored on the order
	CheckoutURL string // redirect URL for approval/checkout based providers
	PublicKey   string // publishable key for embedded-widget providers
	Detail      string // request/response snapshot, JSON
}

// Provider wraps one payment processor. Retry/backoff is the vendor client's
// concern, not ours.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, params CheckoutParams) (*Session, error)
}
