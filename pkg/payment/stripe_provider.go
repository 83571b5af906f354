package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeProvider creates hosted Checkout Sessions through the official SDK.
type StripeProvider struct {
	publicKey string
	sc        *client.API
}

func NewStripeProvider(secretKey, publicKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{publicKey: publicKey, sc: sc}
}

func (p *StripeProvider) Name() string { return Stripe }

func (p *StripeProvider) CreateSession(ctx context.Context, params CheckoutParams) (*Session, error) {
	name := params.ProductName
	if name == "" {
		name = "Product"
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(params.Currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(name),
		},
		UnitAmount: stripe.Int64(params.AmountCents),
	}
	mode := stripe.CheckoutSessionModePayment
	if params.IsSubscription {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(params.Interval),
		}
		mode = stripe.CheckoutSessionModeSubscription
	}

	opts := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripe.Int64(1)},
		},
		AllowPromotionCodes: stripe.Bool(true),
		Mode:                stripe.String(string(mode)),
		SuccessURL:          stripe.String(params.SuccessURL),
		CancelURL:           stripe.String(params.CancelURL),
	}
	opts.Context = ctx

	metadata := map[string]string{
		"order_no":     params.OrderNo,
		"user_uuid":    params.UserUUID,
		"user_email":   params.UserEmail,
		"product_id":   params.ProductID,
		"product_name": name,
		"credits":      strconv.Itoa(params.Credits),
	}
	for k, v := range metadata {
		opts.AddMetadata(k, v)
	}
	if params.IsSubscription {
		opts.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
	}
	if params.UserEmail != "" {
		opts.CustomerEmail = stripe.String(params.UserEmail)
	}
	if params.Currency == "cny" {
		opts.PaymentMethodTypes = stripe.StringSlice([]string{"wechat_pay", "alipay", "card"})
		opts.PaymentMethodOptions = &stripe.CheckoutSessionPaymentMethodOptionsParams{
			WeChatPay: &stripe.CheckoutSessionPaymentMethodOptionsWeChatPayParams{
				Client: stripe.String("web"),
			},
			Alipay: &stripe.CheckoutSessionPaymentMethodOptionsAlipayParams{},
		}
	}

	sess, err := p.sc.CheckoutSessions.New(opts)
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"session_id": sess.ID,
		"mode":       string(mode),
		"order_no":   params.OrderNo,
		"amount":     params.AmountCents,
		"currency":   params.Currency,
	})
	return &Session{
		Provider:    Stripe,
		SessionRef:  sess.ID,
		CheckoutURL: sess.URL,
		PublicKey:   p.publicKey,
		Detail:      string(detail),
	}, nil
}

// GetSession fetches a Checkout Session, used by the success-redirect path to
// peek at payment status without waiting for the webhook.
func (p *StripeProvider) GetSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	opts := &stripe.CheckoutSessionParams{}
	opts.Context = ctx
	return p.sc.CheckoutSessions.Get(sessionID, opts)
}
