package payment

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

// Webhook event types sent by the payment provider.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventCheckoutFailed    = "checkout.failed"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleSignature   = errors.New("webhook timestamp outside tolerance")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// Event is the subset of the provider payload the marketplace reads.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		CheckoutRef string            `json:"checkoutRef"`
		AmountCents int64             `json:"amountCents"`
		Metadata    map[string]string `json:"metadata"`
	} `json:"data"`
}

// OrderID returns metadata.orderId.
func (e *Event) OrderID() string {
	return e.Data.Metadata["orderId"]
}

// Verifier checks "t=<unix>,v1=<hex hmac-sha256>" signature headers computed
// over "<t>.<body>".
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

func (v *Verifier) Verify(payload []byte, header string) error {
	if header == "" {
		return ErrMissingSignature
	}
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = val
		case "v1":
			signatures = append(signatures, val)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if v.tolerance > 0 && (age > v.tolerance || age < -v.tolerance) {
		return ErrStaleSignature
	}

	expected := v.sign(timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignatureHeader builds a header value for payload at ts.
func (v *Verifier) SignatureHeader(payload []byte, ts time.Time) string {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, v.sign(timestamp, payload))
}

func (v *Verifier) sign(timestamp string, payload []byte) string {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// ParseEvent decodes a verified payload.
func ParseEvent(payload []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.Type == "" {
		return nil, ErrMalformedEvent
	}
	return &evt, nil
}
