package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/logrelay/pkg/relay"
)

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrEmptyConnectionURL     = errors.New("empty mongo connection URL")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrNilCollection          = errors.New("mongo collection cannot be nil")
	ErrIndexFailed            = errors.New("failed to create mongo index")
)

// Server codes reported for a document whose _id already exists.
var duplicateCodes = map[int]bool{11000: true, 11001: true, 12582: true}

// classifyError maps insert errors to relay outcomes. An unordered insert in
// which every failed document is a duplicate means the rest of the batch was
// stored, so the batch as a whole is already accepted.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil && len(bwe.WriteErrors) > 0 {
		onlyDuplicates := true
		for _, we := range bwe.WriteErrors {
			if !duplicateCodes[we.Code] {
				onlyDuplicates = false
				break
			}
		}
		if onlyDuplicates {
			return errors.Join(relay.ErrDuplicateAccepted, err)
		}
	}

	var le mongo.LabeledError
	if errors.As(err, &le) && (le.HasErrorLabel("RetryableWriteError") || le.HasErrorLabel("TransientTransactionError")) {
		return errors.Join(relay.ErrStaleSequence, err)
	}

	return err
}
