package webhook

import "time"

// Config holds the settings of a BatchSender.
type Config struct {
	URL              string            `env:"WEBHOOK_URL,required"`                              // URL receives every batch as a POST request.
	Secret           string            `env:"WEBHOOK_SECRET"`                                    // Secret enables HMAC signing when set.
	Timeout          time.Duration     `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`                  // Timeout bounds a single request.
	Headers          map[string]string `env:"WEBHOOK_HEADERS"`                                   // Headers are extra request headers, e.g. "Authorization:Bearer x".
	CircuitBreaker   bool              `env:"WEBHOOK_CIRCUIT_BREAKER" envDefault:"true"`         // CircuitBreaker enables fail-fast while the endpoint is down.
	FailureThreshold int               `env:"WEBHOOK_CIRCUIT_FAILURE_THRESHOLD" envDefault:"5"`  // FailureThreshold is the number of consecutive failures opening the circuit.
	SuccessThreshold int               `env:"WEBHOOK_CIRCUIT_SUCCESS_THRESHOLD" envDefault:"2"`  // SuccessThreshold is the number of successful trials closing it again.
	RecoveryTimeout  time.Duration     `env:"WEBHOOK_CIRCUIT_RECOVERY_TIMEOUT" envDefault:"30s"` // RecoveryTimeout is how long the circuit stays open before probing.
}
