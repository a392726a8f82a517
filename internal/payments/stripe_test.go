package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test"

func signedEvent(t *testing.T, body string) ([]byte, string) {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(body),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func checkoutCompleted(userID, tier string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"customer": "cus_123",
			"subscription": "sub_456",
			"metadata": {"userId": %q, "tier": %q}
		}}
	}`, userID, tier)
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	s := NewStripe(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	userID := uuid.New()

	payload, header := signedEvent(t, checkoutCompleted(userID.String(), "pro"))

	change, err := s.ParseWebhook(payload, header)
	require.NoError(t, err)
	require.NotNil(t, change)

	assert.Equal(t, userID, change.UserID)
	assert.Equal(t, models.TierPro, change.Tier)
	assert.Equal(t, "cus_123", change.CustomerID)
	assert.Equal(t, "sub_456", change.SubscriptionID)
}

func TestParseWebhook_IgnoresOtherEvents(t *testing.T) {
	s := NewStripe(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})

	payload, header := signedEvent(t, `{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{}}}`)

	change, err := s.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Nil(t, change)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	s := NewStripe(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})

	_, err := s.ParseWebhook([]byte(checkoutCompleted(uuid.NewString(), "pro")), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhook_UnknownTier(t *testing.T) {
	s := NewStripe(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})

	payload, header := signedEvent(t, checkoutCompleted(uuid.NewString(), "platinum"))

	_, err := s.ParseWebhook(payload, header)
	assert.Error(t, err)
}
