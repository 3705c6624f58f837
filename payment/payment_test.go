package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/payment"
	fakesessionstore "github.com/learnkit/learnkit-go/session/storefakes"
)

func newPayments(t *testing.T, baseURL string) *payment.Client {
	t.Helper()
	api := client.New(baseURL, fakesessionstore.NewFakeStore())
	return payment.New(api, payment.WithFallbackDelay(0))
}

func TestCheckout_BackendResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/checkout", r.URL.Path)
		var order payment.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		require.Equal(t, "WELCOME10", order.CouponCode)
		_ = json.NewEncoder(w).Encode(payment.Payment{ID: "p1", OrderID: "o1", Amount: order.Amount, Status: payment.StatusPaid})
	}))
	defer srv.Close()

	receipt, err := newPayments(t, srv.URL).Checkout(context.Background(), payment.Order{
		CourseIDs:  []string{"c1"},
		CouponCode: "WELCOME10",
		Amount:     17100,
	})
	require.NoError(t, err)
	require.Equal(t, payment.StatusPaid, receipt.Status)
	require.Equal(t, 17100, receipt.Amount)
}

func TestCheckout_BackendDownYieldsDemoReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	order := payment.Order{CourseIDs: []string{"c1"}, Amount: 19000}
	c := newPayments(t, srv.URL)

	first, err := c.Checkout(context.Background(), order)
	require.NoError(t, err)
	require.Equal(t, payment.StatusDemo, first.Status, "a synthetic receipt must not look captured")
	require.Equal(t, 19000, first.Amount)

	second, err := c.Checkout(context.Background(), order)
	require.NoError(t, err)
	require.Equal(t, first, second, "receipts are a pure function of the order")
}

func TestHistory_BackendDownServesFixtures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	items, err := newPayments(t, srv.URL).History(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, p := range items {
		require.Equal(t, payment.StatusDemo, p.Status)
	}
}
