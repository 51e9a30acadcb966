package opensearch

import "errors"

var (
	// ErrConnectionFailed indicates the OpenSearch client could not be created
	// due to configuration or network issues.
	ErrConnectionFailed = errors.New("opensearch connection failed")

	// ErrHealthcheckFailed indicates the cluster is unreachable or unhealthy.
	// Returned by both New() during initialization and Healthcheck() during monitoring.
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")

	ErrClusterRed      = errors.New("opensearch cluster status is red")
	ErrNilTransport    = errors.New("opensearch transport cannot be nil")
	ErrEmptyIndex      = errors.New("opensearch index name cannot be empty")
	ErrBulkRequest     = errors.New("opensearch bulk request failed")
	ErrBulkRejected    = errors.New("opensearch rejected some log events")
	ErrTooManyRequests = errors.New("opensearch is throttling bulk requests")
	ErrDecodeResponse  = errors.New("failed to decode opensearch response")
)
