package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func TestVerifySignatureAcceptsValidHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	header := SignatureHeaderValue(time.Now(), payload, testSecret)

	err := VerifySignature(payload, header, testSecret, DefaultTolerance)
	assert.NoError(t, err)
}

func TestVerifySignatureRejectsMissingHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "", testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","amount":50}`)
	header := SignatureHeaderValue(time.Now(), payload, testSecret)

	tampered := []byte(`{"id":"evt_1","amount":5000}`)
	err := VerifySignature(tampered, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignatureHeaderValue(time.Now(), payload, "whsec_other")

	err := VerifySignature(payload, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignatureHeaderValue(time.Now().Add(-10*time.Minute), payload, testSecret)

	err := VerifySignature(payload, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrStaleSignature)
}

func TestVerifySignatureRejectsGarbageHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "not-a-signature", testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEventParsesVerifiedPayload(t *testing.T) {
	payload := []byte(`{
		"id": "evt_42",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "payment_intent": "pi_1", "amount_total": 5000,
			"metadata": {"courseId": "3", "userId": "7"}}}
	}`)
	header := SignatureHeaderValue(time.Now(), payload, testSecret)

	event, err := ConstructEvent(payload, header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_42", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
}

func TestConstructEventRejectsBeforeParsing(t *testing.T) {
	payload := []byte(`this is not even json`)
	_, err := ConstructEvent(payload, "t=1,v1=deadbeef", testSecret)
	assert.Error(t, err)
}

func TestParticipantIDs(t *testing.T) {
	session := CheckoutSessionEvent{Metadata: map[string]string{"courseId": "3", "userId": "7"}}
	courseID, userID, ok := session.ParticipantIDs()
	require.True(t, ok)
	assert.Equal(t, uint(3), courseID)
	assert.Equal(t, uint(7), userID)

	for _, metadata := range []map[string]string{
		nil,
		{"courseId": "3"},
		{"userId": "7"},
		{"courseId": "abc", "userId": "7"},
		{"courseId": "0", "userId": "7"},
	} {
		_, _, ok := CheckoutSessionEvent{Metadata: metadata}.ParticipantIDs()
		assert.False(t, ok, "metadata %v should not resolve", metadata)
	}
}
