package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Healthcheck returns a check that asks the cluster for its health status.
// A red cluster cannot accept writes for some shards and fails the check;
// yellow is reported healthy.
func Healthcheck(transport opensearchapi.Transport) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := opensearchapi.ClusterHealthRequest{}.Do(ctx, transport)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("%w: status %d", ErrHealthcheckFailed, res.StatusCode)
		}

		var health struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
			return errors.Join(ErrHealthcheckFailed, ErrDecodeResponse, err)
		}
		if health.Status == "red" {
			return errors.Join(ErrHealthcheckFailed, ErrClusterRed)
		}
		return nil
	}
}
