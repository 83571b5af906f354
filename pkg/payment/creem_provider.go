package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CreemProvider creates checkout sessions against the Creem HTTP API. Without
// an API key it falls back to the static payment-link flow.
type CreemProvider struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	TestMode      bool
	// ProductIDs maps our product_id to the Creem-side product id.
	ProductIDs map[string]string
	client     *http.Client
}

func NewCreemProvider(baseURL, apiKey, webhookSecret string, testMode bool, productIDs map[string]string) *CreemProvider {
	if baseURL == "" {
		baseURL = "https://api.creem.io"
	}
	return &CreemProvider{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		WebhookSecret: webhookSecret,
		TestMode:      testMode,
		ProductIDs:    productIDs,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *CreemProvider) Name() string { return Creem }

// resolveProductID picks the Creem product id: an explicit prod_* override, an
// override key into the map, the product_id mapping, then the raw product_id.
func (p *CreemProvider) resolveProductID(params CheckoutParams) string {
	if strings.HasPrefix(params.CreemProductID, "prod_") {
		return params.CreemProductID
	}
	if params.CreemProductID != "" {
		if id, ok := p.ProductIDs[params.CreemProductID]; ok {
			return id
		}
	}
	if id, ok := p.ProductIDs[params.ProductID]; ok {
		return id
	}
	return params.ProductID
}

type creemCheckoutResp struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

func (p *CreemProvider) CreateSession(ctx context.Context, params CheckoutParams) (*Session, error) {
	productID := p.resolveProductID(params)

	// The payment-link flow cannot carry an API-minted request_id, so it is
	// only for deployments without an API key; API errors surface to the
	// caller instead of degrading into an uncorrelatable session.
	if p.APIKey == "" {
		return p.paymentLinkSession(productID, params)
	}
	return p.createAPISession(ctx, productID, params)
}

func (p *CreemProvider) createAPISession(ctx context.Context, productID string, params CheckoutParams) (*Session, error) {
	payload := map[string]interface{}{
		"product_id":  productID,
		"request_id":  params.OrderNo,
		"success_url": params.SuccessURL,
		"metadata": map[string]interface{}{
			"order_no":   params.OrderNo,
			"user_uuid":  params.UserUUID,
			"user_email": params.UserEmail,
			"product_id": params.ProductID,
			"credits":    params.Credits,
		},
	}
	if params.UserEmail != "" {
		payload["customer"] = map[string]string{"email": params.UserEmail}
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	log.Printf("[Creem] POST /v1/checkouts order_no=%s product=%s", params.OrderNo, productID)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("creem checkout: %d %s", resp.StatusCode, string(respBody))
	}
	var out creemCheckoutResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if out.ID == "" || out.CheckoutURL == "" {
		return nil, errors.New("creem: checkout response missing id or url")
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"session_id":       out.ID,
		"checkout_url":     out.CheckoutURL,
		"creem_product_id": productID,
		"order_no":         params.OrderNo,
		"amount":           params.AmountCents,
	})
	return &Session{
		Provider:    Creem,
		SessionRef:  out.ID,
		CheckoutURL: out.CheckoutURL,
		Detail:      string(detail),
	}, nil
}

// paymentLinkSession builds the dashboard payment-link URL; the order number
// rides along as a query parameter so the webhook can correlate.
func (p *CreemProvider) paymentLinkSession(productID string, params CheckoutParams) (*Session, error) {
	if productID == "" {
		return nil, errors.New("creem product id required without an API key")
	}
	base := "https://www.creem.io/payment"
	if p.TestMode {
		base = "https://www.creem.io/test/payment"
	}
	checkoutURL := fmt.Sprintf("%s/%s?order_no=%s&email=%s",
		base, productID, url.QueryEscape(params.OrderNo), url.QueryEscape(params.UserEmail))

	detail, _ := json.Marshal(map[string]interface{}{
		"checkout_url":     checkoutURL,
		"creem_product_id": productID,
		"order_no":         params.OrderNo,
		"amount":           params.AmountCents,
	})
	return &Session{
		Provider:    Creem,
		SessionRef:  productID,
		CheckoutURL: checkoutURL,
		Detail:      string(detail),
	}, nil
}

// VerifySignature checks the creem-signature header: hex HMAC-SHA256 of the
// raw body. An unconfigured secret fails closed.
func (p *CreemProvider) VerifySignature(body []byte, signature string) bool {
	if p.WebhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(p.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
