package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Order lifecycle. Paid, Expired and Cancelled are terminal.
const (
	OrderStatusCreated   = "created"
	OrderStatusPaid      = "paid"
	OrderStatusExpired   = "expired"
	OrderStatusCancelled = "cancelled"
)

const (
	PayTypeStripe = "stripe"
	PayTypePayPal = "paypal"
	PayTypeCreem  = "creem"
)

const (
	IntervalOneTime = "one-time"
	IntervalMonth   = "month"
	IntervalYear    = "year"
)

// Credit ledger transaction types. Positive rows grant, negative rows consume.
const (
	CreditTransOrderPay  = "order_pay"
	CreditTransImageGen  = "image_gen"
	CreditTransSystemAdd = "system_add"
)

// SubscriptionGraceHours is added to expired_at for month/year orders to
// tolerate renewal timing slack. One-time purchases get no grace delay.
const SubscriptionGraceHours = 24
