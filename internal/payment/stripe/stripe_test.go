package stripe

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func testConfig() *Config {
	cfg := &Config{
		SecretKey:     "sk_test_123456",
		WebhookSecret: "whsec_123456",
		SuccessURL:    "https://baguri.ro/checkout/success",
		CancelURL:     "https://baguri.ro/checkout/cancel",
	}
	cfg.Normalize()
	return cfg
}

func signedHeaders(cfg *Config, body []byte, at time.Time) map[string]string {
	signature := computeSignature(cfg.WebhookSecret, at.Unix(), body)
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", at.Unix(), signature),
	}
}

func TestVerifyAndParseWebhookCheckoutCompleted(t *testing.T) {
	cfg := testConfig()
	now := time.Now()
	body := []byte(`{
		"id": "evt_test_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"object": "checkout.session",
				"id": "cs_test_1",
				"payment_intent": "pi_test_1",
				"client_reference_id": "BG20260831TEST",
				"currency": "ron",
				"amount_total": 54990,
				"payment_status": "paid",
				"status": "complete",
				"metadata": {"order_id": "42", "order_no": "BG20260831TEST"}
			}
		}
	}`)

	result, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg, body, now), body, now)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.EventID != "evt_test_1" || result.Status != "success" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.OrderID != 42 || result.OrderNo != "BG20260831TEST" {
		t.Fatalf("order metadata not parsed: %+v", result)
	}
	if result.SessionID != "cs_test_1" || result.PaymentIntentID != "pi_test_1" {
		t.Fatalf("session not parsed: %+v", result)
	}
	if result.Amount != "549.90" || result.Currency != "RON" {
		t.Fatalf("amount not parsed: %s %s", result.Amount, result.Currency)
	}
}

func TestVerifyAndParseWebhookBadSignature(t *testing.T) {
	cfg := testConfig()
	now := time.Now()
	body := []byte(`{"id":"evt_test_2","type":"checkout.session.completed","data":{"object":{"object":"checkout.session","id":"cs_test_2"}}}`)

	headers := map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=deadbeef", now.Unix()),
	}
	if _, err := VerifyAndParseWebhook(cfg, headers, body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature error, got: %v", err)
	}

	if _, err := VerifyAndParseWebhook(cfg, nil, body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature error on missing header, got: %v", err)
	}
}

func TestVerifyAndParseWebhookStaleTimestamp(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookToleranceSeconds = 300
	now := time.Now()
	stale := now.Add(-time.Hour)
	body := []byte(`{"id":"evt_test_3","type":"checkout.session.expired","data":{"object":{"object":"checkout.session","id":"cs_test_3"}}}`)

	if _, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg, body, stale), body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected tolerance error, got: %v", err)
	}
}

func TestMapEventTypeStatus(t *testing.T) {
	cases := map[string]string{
		"checkout.session.completed":            "success",
		"checkout.session.expired":              "expired",
		"checkout.session.async_payment_failed": "failed",
		"payment_intent.succeeded":              "success",
		"payment_intent.processing":             "pending",
	}
	for eventType, want := range cases {
		got, ok := mapEventTypeStatus(eventType)
		if !ok || got != want {
			t.Fatalf("event %s: expected %s, got %s (ok=%v)", eventType, want, got, ok)
		}
	}
	if _, ok := mapEventTypeStatus("customer.created"); ok {
		t.Fatalf("unrelated event mapped to a payment status")
	}
}

func TestMinorAmountConversion(t *testing.T) {
	minor, err := toMinorAmount("549.90", "RON")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if minor != 54990 {
		t.Fatalf("unexpected minor amount: %d", minor)
	}

	if _, err := toMinorAmount("0", "RON"); err == nil {
		t.Fatalf("zero amount accepted")
	}
	if _, err := toMinorAmount("abc", "RON"); err == nil {
		t.Fatalf("garbage amount accepted")
	}

	// Sub-minor-unit precision cannot be charged and must be rejected,
	// never silently rounded.
	if _, err := toMinorAmount("549.999", "RON"); err == nil {
		t.Fatalf("sub-cent amount accepted")
	}
	if _, err := toMinorAmount("500.5", "JPY"); err == nil {
		t.Fatalf("fractional zero-decimal amount accepted")
	}

	// Zero-decimal currencies keep major units.
	minor, err = toMinorAmount("500", "JPY")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if minor != 500 {
		t.Fatalf("unexpected JPY amount: %d", minor)
	}

	if got := fromMinorAmount(54990, "RON"); got != "549.90" {
		t.Fatalf("unexpected major amount: %s", got)
	}
}
