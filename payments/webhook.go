package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature on every delivery
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance is how far a delivery timestamp may drift before the
// signature is rejected as stale
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("signature verification failed")
	ErrStaleSignature   = errors.New("signature timestamp outside tolerance")
)

// Event is a verified webhook delivery
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSessionEvent is the data object of checkout.session.completed
type CheckoutSessionEvent struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"` // minor units
	Metadata      map[string]string `json:"metadata"`
}

// ParticipantIDs extracts the course and user the session was created
// for from its metadata. ok is false when either is absent or malformed.
func (s CheckoutSessionEvent) ParticipantIDs() (courseID, userID uint, ok bool) {
	course, err1 := strconv.ParseUint(s.Metadata["courseId"], 10, 32)
	user, err2 := strconv.ParseUint(s.Metadata["userId"], 10, 32)
	if err1 != nil || err2 != nil || course == 0 || user == 0 {
		return 0, 0, false
	}
	return uint(course), uint(user), true
}

// PaymentIntentEvent is the data object of payment_intent.* events
type PaymentIntentEvent struct {
	ID string `json:"id"`
}

// ComputeSignature computes the hex HMAC-SHA256 of "<unix ts>.<payload>"
// with the shared webhook secret. This is the v1 scheme the gateway signs
// deliveries with.
func ComputeSignature(t time.Time, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", t.Unix())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue renders a full signature header for a payload,
// in the "t=<unix>,v1=<hex>" wire format
func SignatureHeaderValue(t time.Time, payload []byte, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", t.Unix(), ComputeSignature(t, payload, secret))
}

// VerifySignature checks a signature header against the raw, unparsed
// request body. The payload must be the exact bytes received on the wire;
// any re-serialization breaks the HMAC.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	signedAt := time.Unix(timestamp, 0)
	if tolerance > 0 {
		drift := time.Since(signedAt)
		if drift < 0 {
			drift = -drift
		}
		if drift > tolerance {
			return ErrStaleSignature
		}
	}

	expected := ComputeSignature(signedAt, payload, secret)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// ConstructEvent verifies the signature and parses the payload into an
// Event. Nothing is parsed before the signature checks out.
func ConstructEvent(payload []byte, header, secret string) (*Event, error) {
	if err := VerifySignature(payload, header, secret, DefaultTolerance); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %v", err)
	}

	return &event, nil
}
