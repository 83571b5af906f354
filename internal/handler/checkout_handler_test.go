package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shipfire/internal/catalog"
	"shipfire/internal/models"
	"shipfire/internal/service"
	"shipfire/pkg/payment"

	"github.com/gin-gonic/gin"
)

type stubProvider struct {
	name string
	sess payment.Session
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) CreateSession(ctx context.Context, params payment.CheckoutParams) (*payment.Session, error) {
	sess := p.sess
	sess.Provider = p.name
	return &sess, nil
}

type memUsers struct{}

func (memUsers) FindByUUID(ctx context.Context, uuid string) (*models.User, error) {
	return &models.User{UUID: uuid, Email: "buyer@example.com"}, nil
}

func (memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return &models.User{UUID: "user-1", Email: email}, nil
}

func setupCheckout(t *testing.T, providers map[string]payment.Provider) (*gin.Engine, *memOrders) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orders := newMemOrders()
	svc := service.NewCheckoutService(catalog.Default(), orders, memUsers{}, providers, "https://app.example.com", "")
	h := NewCheckoutHandler(svc)
	r := gin.New()
	r.POST("/api/v1/checkout", func(c *gin.Context) {
		// Stand-in for AuthRequired.
		c.Set("user_uuid", "user-1")
		c.Set("email", "buyer@example.com")
	}, h.Create)
	return r, orders
}

func postCheckout(r *gin.Engine, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const starterPayload = `{"product_id":"starter","amount_cents":990,"currency":"usd","interval":"month","credits":50,"valid_months":1,"locale":"en"}`

func TestCheckoutStripeResponseEnvelope(t *testing.T) {
	r, orders := setupCheckout(t, map[string]payment.Provider{
		payment.Stripe: &stubProvider{name: payment.Stripe, sess: payment.Session{SessionRef: "cs_1", PublicKey: "pk_test"}},
	})

	w := postCheckout(r, starterPayload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["payment_method"] != "stripe" || resp["session_id"] != "cs_1" || resp["public_key"] != "pk_test" {
		t.Fatalf("envelope wrong: %v", resp)
	}

	got, _ := orders.ListByUser(nil, "user-1", 10)
	if len(got) != 1 || got[0].SessionRef != "cs_1" {
		t.Fatalf("order not persisted with session: %+v", got)
	}
}

func TestCheckoutPayPalResponseEnvelope(t *testing.T) {
	r, _ := setupCheckout(t, map[string]payment.Provider{
		payment.PayPal: &stubProvider{name: payment.PayPal, sess: payment.Session{SessionRef: "PP-1", CheckoutURL: "https://paypal.example/approve"}},
	})

	w := postCheckout(r, starterPayload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["payment_method"] != "paypal" || resp["order_id"] != "PP-1" || resp["approval_url"] != "https://paypal.example/approve" {
		t.Fatalf("envelope wrong: %v", resp)
	}
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	r, _ := setupCheckout(t, map[string]payment.Provider{
		payment.Stripe: &stubProvider{name: payment.Stripe},
	})

	w := postCheckout(r, `{"product_id":"nope","amount_cents":990,"currency":"usd","interval":"month","credits":50,"valid_months":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckoutRejectsDisabledProvider(t *testing.T) {
	r, _ := setupCheckout(t, map[string]payment.Provider{
		payment.Stripe: &stubProvider{name: payment.Stripe},
	})

	w := postCheckout(r, `{"product_id":"starter","amount_cents":990,"currency":"usd","interval":"month","credits":50,"valid_months":1,"payment_method":"creem"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckoutRejectsMissingFields(t *testing.T) {
	r, _ := setupCheckout(t, map[string]payment.Provider{
		payment.Stripe: &stubProvider{name: payment.Stripe},
	})

	w := postCheckout(r, `{"product_id":"starter"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for binding failure", w.Code)
	}
}
