// Package webhook delivers log event batches to an HTTP endpoint.
//
// BatchSender implements the relay client contract. Every relay attempt
// becomes exactly one POST request with the body
//
//	{"events":[{"id":"...","time":"...","level":"INFO","message":"..."}]}
//
// Retries are left to the relay, so the sender has no backoff of its own.
// Response codes map to relay outcomes:
//
//   - 2xx: delivered.
//   - 409 Conflict: the endpoint already stored the batch (relay.ErrDuplicateAccepted).
//   - 412 Precondition Failed: send the batch again (relay.ErrStaleSequence).
//   - anything else: an error reported to the relay's error handler. 4xx
//     codes other than 408, 425 and 429 additionally match ErrPermanentFailure.
//
// # Signing
//
// WithSignature adds three headers: X-Logrelay-Signature,
// X-Logrelay-Timestamp and X-Logrelay-Batch-Id. The signature is
// hex(HMAC-SHA256(secret, timestamp + "." + body)). The batch ID is the ID
// of the first event and stays the same when a batch is resent, so
// receivers can answer 409 to duplicates. Receivers verify with
// SignatureFromHeader and Verify.
//
// # Circuit breaker
//
// WithCircuitBreaker makes Submit fail fast with ErrCircuitOpen while the
// endpoint keeps failing. 409 and 412 answers count as healthy responses.
//
// # Usage
//
//	cfg, _ := config.Load[webhook.Config]()
//	sink, err := webhook.NewBatchSenderFromConfig(cfg)
//	if err != nil {
//		return err
//	}
//	r, _ := relay.New[logevent.Event](sink)
package webhook
