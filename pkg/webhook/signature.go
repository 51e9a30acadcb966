package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Signature headers set on every signed batch.
const (
	HeaderSignature = "X-Logrelay-Signature"
	HeaderTimestamp = "X-Logrelay-Timestamp"
	HeaderBatchID   = "X-Logrelay-Batch-Id"
)

// Signature authenticates a batch body.
// Sig is hex(HMAC-SHA256(secret, timestamp + "." + body)).
type Signature struct {
	Sig       string
	Timestamp int64
	BatchID   string
}

// Apply sets the signature headers on h.
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderSignature, s.Sig)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	if s.BatchID != "" {
		h.Set(HeaderBatchID, s.BatchID)
	}
}

// Sign signs body at the current time. batchID is passed through untouched
// so receivers can deduplicate retried batches.
func Sign(secret string, body []byte, batchID string) (Signature, error) {
	if secret == "" {
		return Signature{}, fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if len(body) == 0 {
		return Signature{}, fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	ts := time.Now().Unix()
	return Signature{
		Sig:       computeSignature(secret, ts, body),
		Timestamp: ts,
		BatchID:   batchID,
	}, nil
}

// Verify checks sig against body in constant time. When maxAge is positive,
// signatures older than maxAge or more than a minute in the future are rejected.
func Verify(secret string, body []byte, sig Signature, maxAge time.Duration) error {
	if secret == "" {
		return fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if sig.Sig == "" {
		return fmt.Errorf("%w: signature is missing", ErrInvalidSignature)
	}

	if maxAge > 0 {
		age := time.Since(time.Unix(sig.Timestamp, 0))
		if age > maxAge {
			return fmt.Errorf("%w: signature timestamp too old: %v", ErrInvalidSignature, age)
		}
		if age < -time.Minute {
			return fmt.Errorf("%w: signature timestamp is in the future", ErrInvalidSignature)
		}
	}

	expected := computeSignature(secret, sig.Timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(sig.Sig)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

// SignatureFromHeader reads the signature headers of an incoming request.
func SignatureFromHeader(h http.Header) (Signature, error) {
	sig := Signature{
		Sig:     h.Get(HeaderSignature),
		BatchID: h.Get(HeaderBatchID),
	}

	ts := h.Get(HeaderTimestamp)
	if sig.Sig == "" || ts == "" {
		return Signature{}, fmt.Errorf("%w: missing required signature headers", ErrInvalidSignature)
	}

	var err error
	if sig.Timestamp, err = strconv.ParseInt(ts, 10, 64); err != nil {
		return Signature{}, fmt.Errorf("%w: invalid timestamp format", ErrInvalidSignature)
	}
	return sig, nil
}

func computeSignature(secret string, ts int64, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	h.Write([]byte{'.'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
