package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/kasira/internal/config"
)

// XenditService talks to the Xendit payment API: creating one-time-use
// QR payment requests and triggering sandbox payment simulations. All
// calls are bounded by the client timeout.
type XenditService struct {
	baseURL     string
	secretKey   string
	channelCode string
	qrTTL       time.Duration
	client      *http.Client
}

// NewXenditService constructs the gateway adapter from configuration.
func NewXenditService(cfg *config.Config) *XenditService {
	return &XenditService{
		baseURL:     strings.TrimRight(cfg.XenditBaseURL, "/"),
		secretKey:   cfg.XenditSecretKey,
		channelCode: cfg.QRChannelCode,
		qrTTL:       cfg.QRCodeTTL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// PaymentRequestResult is the normalized provider response for a new QR
// payment request.
type PaymentRequestResult struct {
	ProviderRequestID string
	PaymentMethodID   string
	QRString          string
	ExpiresAt         time.Time
}

type paymentRequestBody struct {
	Currency      string            `json:"currency"`
	Amount        int64             `json:"amount"`
	ReferenceID   string            `json:"reference_id"`
	PaymentMethod paymentMethodBody `json:"payment_method"`
}

type paymentMethodBody struct {
	Type        string     `json:"type"`
	Reusability string     `json:"reusability"`
	ReferenceID string     `json:"reference_id"`
	QRCode      qrCodeBody `json:"qr_code"`
}

type qrCodeBody struct {
	ChannelCode       string            `json:"channel_code"`
	ChannelProperties qrChannelProperty `json:"channel_properties"`
}

type qrChannelProperty struct {
	ExpiresAt string `json:"expires_at"`
}

type paymentRequestResponse struct {
	ID            string `json:"id"`
	PaymentMethod struct {
		ID     string `json:"id"`
		QRCode struct {
			ChannelProperties struct {
				QRString string `json:"qr_string"`
			} `json:"channel_properties"`
		} `json:"qr_code"`
	} `json:"payment_method"`
}

type providerError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// CreateQRPayment asks the provider for a one-time-use QR code
// referencing the given order. The reference id is the order id; the
// provider dedupes repeat requests for the same reference, which this
// adapter surfaces as ErrDuplicateRequest.
func (s *XenditService) CreateQRPayment(ctx context.Context, referenceID string, amount int64) (*PaymentRequestResult, error) {
	const op = "xendit create payment request"

	expiresAt := time.Now().Add(s.qrTTL)
	payload := paymentRequestBody{
		Currency:    "IDR",
		Amount:      amount,
		ReferenceID: referenceID,
		PaymentMethod: paymentMethodBody{
			Type:        "QR_CODE",
			Reusability: "ONE_TIME_USE",
			ReferenceID: referenceID,
			QRCode: qrCodeBody{
				ChannelCode: s.channelCode,
				ChannelProperties: qrChannelProperty{
					ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
				},
			},
		},
	}

	status, body, err := s.do(ctx, http.MethodPost, "/payment_requests", payload)
	if err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}

	if status < 200 || status >= 300 {
		if isDuplicate(status, body) {
			return nil, fmt.Errorf("%w: reference %s", ErrDuplicateRequest, referenceID)
		}
		return nil, &GatewayError{Op: op, Status: status, Body: string(body)}
	}

	var resp paymentRequestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &PaymentRequestResult{
		ProviderRequestID: resp.ID,
		PaymentMethodID:   resp.PaymentMethod.ID,
		QRString:          resp.PaymentMethod.QRCode.ChannelProperties.QRString,
		ExpiresAt:         expiresAt,
	}, nil
}

// SimulatePayment instructs the sandbox to mark a payment method as
// paid, exercising the reconciliation path without a real payer.
func (s *XenditService) SimulatePayment(ctx context.Context, paymentMethodID string, amount int64) error {
	const op = "xendit simulate payment"

	if paymentMethodID == "" {
		return &GatewayError{Op: op, Err: ErrNoPaymentRequest}
	}

	path := fmt.Sprintf("/v2/payment_methods/%s/payments/simulate", paymentMethodID)
	status, body, err := s.do(ctx, http.MethodPost, path, map[string]int64{"amount": amount})
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}

	if status < 200 || status >= 300 {
		return &GatewayError{Op: op, Status: status, Body: string(body)}
	}

	return nil
}

func (s *XenditService) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.secretKey, "")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
}

func isDuplicate(status int, body []byte) bool {
	if status == http.StatusConflict {
		return true
	}
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil {
		return false
	}
	return pe.ErrorCode == "DUPLICATE_ERROR"
}
