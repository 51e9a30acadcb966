package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/logrelay/pkg/relay"
)

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrNilClient                    = errors.New("redis client cannot be nil")
	ErrEmptyStream                  = errors.New("redis stream key cannot be empty")
	ErrEncodeEvent                  = errors.New("failed to encode log event for redis")
)

// transientPrefixes are server replies meaning "not now": the dataset is
// loading, a script is blocking the server, or a cluster slot is migrating.
var transientPrefixes = []string{"LOADING", "BUSY", "TRYAGAIN", "CLUSTERDOWN"}

// classifyError maps server replies to relay outcomes. Transient replies are
// retried on the next cycle without alerting.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, prefix := range transientPrefixes {
		if redis.HasErrorPrefix(err, prefix) {
			return errors.Join(relay.ErrStaleSequence, err)
		}
	}
	return err
}
