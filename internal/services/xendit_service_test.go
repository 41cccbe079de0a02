package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testXenditService(serverURL string) *XenditService {
	return &XenditService{
		baseURL:     serverURL,
		secretKey:   "xnd_test_key",
		channelCode: "DANA",
		qrTTL:       15 * time.Minute,
		client:      &http.Client{Timeout: time.Second},
	}
}

func TestCreateQRPayment(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "pr-123",
			"payment_method": {
				"id": "pm-456",
				"qr_code": {"channel_properties": {"qr_string": "00020101021226..."}}
			}
		}`))
	}))
	defer srv.Close()

	svc := testXenditService(srv.URL)
	result, err := svc.CreateQRPayment(context.Background(), "order-1", 22000)
	require.NoError(t, err)

	assert.Equal(t, "/payment_requests", gotPath)
	assert.Equal(t, "xnd_test_key", gotAuth)
	assert.Equal(t, "pr-123", result.ProviderRequestID)
	assert.Equal(t, "pm-456", result.PaymentMethodID)
	assert.NotEmpty(t, result.QRString)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), result.ExpiresAt, time.Minute)
}

func TestCreateQRPaymentDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error_code": "DUPLICATE_ERROR", "message": "duplicate reference"}`))
	}))
	defer srv.Close()

	svc := testXenditService(srv.URL)
	_, err := svc.CreateQRPayment(context.Background(), "order-1", 22000)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestCreateQRPaymentProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error_code": "SERVER_ERROR"}`))
	}))
	defer srv.Close()

	svc := testXenditService(srv.URL)
	_, err := svc.CreateQRPayment(context.Background(), "order-1", 22000)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, http.StatusServiceUnavailable, gatewayErr.Status)
	assert.False(t, errors.Is(err, ErrDuplicateRequest))
}

func TestCreateQRPaymentTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	svc := testXenditService(srv.URL)
	svc.client = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := svc.CreateQRPayment(context.Background(), "order-1", 22000)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.NotNil(t, gatewayErr.Err)
}

func TestSimulatePayment(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status": "PENDING"}`))
	}))
	defer srv.Close()

	svc := testXenditService(srv.URL)
	err := svc.SimulatePayment(context.Background(), "pm-456", 22000)
	require.NoError(t, err)
	assert.Equal(t, "/v2/payment_methods/pm-456/payments/simulate", gotPath)
}

func TestSimulatePaymentWithoutPaymentMethod(t *testing.T) {
	svc := testXenditService("http://127.0.0.1:0")
	err := svc.SimulatePayment(context.Background(), "", 22000)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.ErrorIs(t, err, ErrNoPaymentRequest)
}
