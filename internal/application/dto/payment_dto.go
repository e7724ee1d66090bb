package dto

// PreferenceResponse datos del checkout para el frontend.
type PreferenceResponse struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// PollingInfo indica al frontend si debe seguir consultando y cuándo.
type PollingInfo struct {
	ShouldPoll          bool  `json:"should_poll"`
	NextCheckInSeconds  int64 `json:"next_check_in_seconds"`
	RecommendedInterval int64 `json:"recommended_interval"`
	MaxAttemptsReached  bool  `json:"max_attempts_reached"`
}

// PaymentStatusResponse estado consolidado de pedido + pago.
type PaymentStatusResponse struct {
	OrderID       int64       `json:"order_id"`
	OrderStatus   string      `json:"order_status"`
	PaymentStatus string      `json:"payment_status,omitempty"`
	HasPayment    bool        `json:"has_payment"`
	Polling       PollingInfo `json:"polling"`
}
