package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shipfire/internal/catalog"
	"shipfire/internal/domain"
	"shipfire/internal/models"
	"shipfire/pkg/payment"
	"shipfire/pkg/snowid"
)

var (
	ErrInvalidParams     = errors.New("invalid checkout params")
	ErrNoAuth            = errors.New("no auth, please sign-in")
	ErrInvalidUser       = errors.New("invalid user")
	ErrNoProvider        = errors.New("no payment method available, configure at least one payment gateway")
	ErrProviderDisabled  = errors.New("requested payment method is not enabled")
	ErrSessionNotCreated = errors.New("failed to create checkout session")
)

// CheckoutRequest is the purchase request as submitted by the client. Every
// priced field is re-validated against the catalog server-side.
type CheckoutRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	ProductName    string `json:"product_name"`
	AmountCents    int64  `json:"amount_cents" binding:"required"`
	Currency       string `json:"currency" binding:"required"`
	Interval       string `json:"interval" binding:"required"`
	Credits        int    `json:"credits"`
	ValidMonths    int    `json:"valid_months"`
	Locale         string `json:"locale"`
	Provider       string `json:"payment_method"`
	CancelURL      string `json:"cancel_url"`
	CreemProductID string `json:"creem_product_id"`
}

type CheckoutResult struct {
	PayType string
	OrderNo string
	Session *payment.Session
}

type CheckoutService struct {
	catalog   *catalog.Catalog
	orders    OrderStore
	users     UserStore
	providers map[string]payment.Provider // enabled providers only
	webURL    string
	cancelURL string
}

func NewCheckoutService(cat *catalog.Catalog, orders OrderStore, users UserStore, providers map[string]payment.Provider, webURL, cancelURL string) *CheckoutService {
	return &CheckoutService{
		catalog:   cat,
		orders:    orders,
		users:     users,
		providers: providers,
		webURL:    webURL,
		cancelURL: cancelURL,
	}
}

// Checkout validates the purchase against the catalog, persists a created
// order, opens a provider session and attaches it. A provider failure after
// the order is persisted leaves the order created; the buyer retries with a
// fresh order_no.
func (s *CheckoutService) Checkout(ctx context.Context, userUUID, userEmail string, req CheckoutRequest) (*CheckoutResult, error) {
	payType, err := s.chooseProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	item, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if userUUID == "" {
		return nil, ErrNoAuth
	}
	if userEmail == "" {
		user, err := s.users.FindByUUID(ctx, userUUID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			userEmail = user.Email
		}
	}
	if userEmail == "" {
		return nil, ErrInvalidUser
	}

	now := timeNow()
	expiredAt := now.AddDate(0, req.ValidMonths, 0)
	isSubscription := req.Interval == domain.IntervalMonth || req.Interval == domain.IntervalYear
	if isSubscription {
		expiredAt = expiredAt.Add(domain.SubscriptionGraceHours * time.Hour)
	}

	order := &models.Order{
		OrderNo:     snowid.New(),
		UserUUID:    userUUID,
		UserEmail:   userEmail,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Interval:    req.Interval,
		Credits:     req.Credits,
		ProductID:   req.ProductID,
		ProductName: item.ProductName,
		ValidMonths: req.ValidMonths,
		Status:      domain.OrderStatusCreated,
		PayType:     payType,
		ExpiredAt:   expiredAt,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	params := payment.CheckoutParams{
		OrderNo:        order.OrderNo,
		UserUUID:       userUUID,
		UserEmail:      userEmail,
		ProductID:      req.ProductID,
		ProductName:    item.ProductName,
		AmountCents:    req.AmountCents,
		Currency:       req.Currency,
		Interval:       req.Interval,
		IsSubscription: isSubscription,
		Credits:        req.Credits,
		Locale:         s.locale(req.Locale),
		SuccessURL:     s.successURL(payType, order.OrderNo, req.Locale),
		CancelURL:      s.resolveCancelURL(req.CancelURL, req.Locale),
		CreemProductID: req.CreemProductID,
	}
	sess, err := s.providers[payType].CreateSession(ctx, params)
	if err != nil {
		log.Printf("[Checkout] %s session failed for order %s: %v", payType, order.OrderNo, err)
		return nil, fmt.Errorf("%s checkout failed: %w", payType, err)
	}

	if err := s.orders.AttachSession(ctx, order.OrderNo, sess.SessionRef, sess.Detail); err != nil {
		return nil, fmt.Errorf("attach session: %w", err)
	}

	return &CheckoutResult{PayType: payType, OrderNo: order.OrderNo, Session: sess}, nil
}

func (s *CheckoutService) chooseProvider(explicit string) (string, error) {
	if explicit != "" {
		if _, ok := s.providers[explicit]; !ok {
			return "", ErrProviderDisabled
		}
		return explicit, nil
	}
	for _, name := range payment.Priority {
		if _, ok := s.providers[name]; ok {
			return name, nil
		}
	}
	return "", ErrNoProvider
}

// validate checks the submitted pricing fields exactly against the catalog
// entry, defending against client-side price tampering. No order is created
// on mismatch.
func (s *CheckoutService) validate(req CheckoutRequest) (*catalog.Item, error) {
	if req.AmountCents <= 0 || req.Currency == "" || req.Interval == "" || req.ProductID == "" {
		return nil, ErrInvalidParams
	}
	switch req.Interval {
	case domain.IntervalOneTime:
	case domain.IntervalMonth:
		if req.ValidMonths != 1 {
			return nil, ErrInvalidParams
		}
	case domain.IntervalYear:
		if req.ValidMonths != 12 {
			return nil, ErrInvalidParams
		}
	default:
		return nil, ErrInvalidParams
	}

	item := s.catalog.Match(req.ProductID, req.Currency, req.AmountCents)
	if item == nil {
		return nil, ErrInvalidParams
	}
	if item.Interval != req.Interval || item.Credits != req.Credits || item.ValidMonths != req.ValidMonths {
		return nil, ErrInvalidParams
	}
	return item, nil
}

func (s *CheckoutService) locale(locale string) string {
	if locale == "" {
		return "en"
	}
	return locale
}

func (s *CheckoutService) successURL(payType, orderNo, locale string) string {
	base := fmt.Sprintf("%s/%s/pay-success", s.webURL, s.locale(locale))
	switch payType {
	case payment.Stripe:
		// Stripe substitutes the session id placeholder itself.
		return base + "/stripe/{CHECKOUT_SESSION_ID}"
	case payment.PayPal:
		return fmt.Sprintf("%s/paypal?order_no=%s", base, orderNo)
	default:
		return base + "/creem"
	}
}

func (s *CheckoutService) resolveCancelURL(cancelURL, locale string) string {
	if cancelURL == "" {
		cancelURL = s.cancelURL
	}
	if cancelURL == "" {
		return s.webURL
	}
	if strings.HasPrefix(cancelURL, "/") {
		return fmt.Sprintf("%s/%s%s", s.webURL, s.locale(locale), cancelURL)
	}
	return cancelURL
}
