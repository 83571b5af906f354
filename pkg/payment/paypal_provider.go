package payment

import (
	"bytes"
	"context"
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

// PayPalProvider talks to the PayPal REST v2 API directly: order creation,
// capture, and webhook signature verification via the notifications API.
type PayPalProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
	BrandName    string
	client       *http.Client
}

func NewPayPalProvider(baseURL, clientID, clientSecret, webhookID, brandName string) *PayPalProvider {
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &PayPalProvider{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		WebhookID:    webhookID,
		BrandName:    brandName,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PayPalProvider) Name() string { return PayPal }

type paypalTokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getToken fetches a fresh client-credentials token per call.
func (p *PayPalProvider) getToken(ctx context.Context) (string, error) {
	if p.ClientID == "" || p.ClientSecret == "" {
		return "", errors.New("paypal credentials not configured")
	}
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token: %d %s", resp.StatusCode, string(respBody))
	}
	var out paypalTokenResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("paypal: token response missing access_token")
	}
	return out.AccessToken, nil
}

type paypalOrderResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (p *PayPalProvider) CreateSession(ctx context.Context, params CheckoutParams) (*Session, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("paypal auth: %w", err)
	}

	name := params.ProductName
	if name == "" {
		name = "Product"
	}
	// PayPal wants major units with two decimals.
	amountValue := fmt.Sprintf("%.2f", float64(params.AmountCents)/100)

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": params.OrderNo,
				"invoice_id":   params.OrderNo,
				"custom_id":    params.OrderNo,
				"description":  name,
				"amount": map[string]string{
					"currency_code": strings.ToUpper(params.Currency),
					"value":         amountValue,
				},
			},
		},
		"application_context": map[string]string{
			"brand_name":   p.BrandName,
			"landing_page": "BILLING",
			"user_action":  "PAY_NOW",
			"return_url":   params.SuccessURL,
			"cancel_url":   params.CancelURL,
		},
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Prefer", "return=representation")
	log.Printf("[PayPal] POST /v2/checkout/orders order_no=%s amount=%s %s", params.OrderNo, amountValue, strings.ToUpper(params.Currency))
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("paypal create order: %d %s", resp.StatusCode, string(respBody))
	}
	var out paypalOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("paypal: order response missing id")
	}
	var approvalURL string
	for _, l := range out.Links {
		if l.Rel == "approve" {
			approvalURL = l.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, errors.New("paypal: no approval link in order response")
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"paypal_order_id": out.ID,
		"approval_url":    approvalURL,
		"order_no":        params.OrderNo,
		"amount":          params.AmountCents,
		"currency":        params.Currency,
	})
	return &Session{
		Provider:    PayPal,
		SessionRef:  out.ID,
		CheckoutURL: approvalURL,
		Detail:      string(detail),
	}, nil
}

// CaptureOrder captures an approved order. The success-redirect path calls
// this eagerly; the webhook remains the authoritative status source.
func (p *PayPalProvider) CaptureOrder(ctx context.Context, paypalOrderID string) error {
	token, err := p.getToken(ctx)
	if err != nil {
		return fmt.Errorf("paypal auth: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v2/checkout/orders/"+paypalOrderID+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("paypal capture: %d %s", resp.StatusCode, string(respBody))
	}
	log.Printf("[PayPal] captured order %s", paypalOrderID)
	return nil
}

// WebhookHeaders are the transmission headers PayPal signs every notification with.
type WebhookHeaders struct {
	AuthAlgo         string
	CertURL          string
	TransmissionID   string
	TransmissionSig  string
	TransmissionTime string
}

func WebhookHeadersFromRequest(h http.Header) WebhookHeaders {
	return WebhookHeaders{
		AuthAlgo:         h.Get("Paypal-Auth-Algo"),
		CertURL:          h.Get("Paypal-Cert-Url"),
		TransmissionID:   h.Get("Paypal-Transmission-Id"),
		TransmissionSig:  h.Get("Paypal-Transmission-Sig"),
		TransmissionTime: h.Get("Paypal-Transmission-Time"),
	}
}

func (h WebhookHeaders) complete() bool {
	return h.AuthAlgo != "" && h.CertURL != "" && h.TransmissionID != "" && h.TransmissionSig != "" && h.TransmissionTime != ""
}

// VerifyWebhookSignature verifies a notification through PayPal's
// verify-webhook-signature API. A missing webhook id or missing transmission
// headers fail closed.
func (p *PayPalProvider) VerifyWebhookSignature(ctx context.Context, body []byte, headers WebhookHeaders) (bool, error) {
	if p.WebhookID == "" {
		return false, errors.New("paypal webhook id not configured")
	}
	if !headers.complete() {
		return false, errors.New("paypal: missing transmission headers")
	}
	token, err := p.getToken(ctx)
	if err != nil {
		return false, fmt.Errorf("paypal auth: %w", err)
	}

	payload := map[string]interface{}{
		"auth_algo":         headers.AuthAlgo,
		"cert_url":          headers.CertURL,
		"transmission_id":   headers.TransmissionID,
		"transmission_sig":  headers.TransmissionSig,
		"transmission_time": headers.TransmissionTime,
		"webhook_id":        p.WebhookID,
		"webhook_event":     json.RawMessage(body),
	}
	reqBody, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(reqBody))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("paypal verify webhook: %d %s", resp.StatusCode, string(respBody))
	}
	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return false, err
	}
	return out.VerificationStatus == "SUCCESS", nil
}
