package file_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/file"
	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

func newArchiver(t *testing.T, client file.S3Client) *file.S3Archiver {
	t.Helper()

	a, err := file.NewS3Archiver(context.Background(), file.S3Config{
		Bucket: "audit",
		Region: "eu-west-1",
		Prefix: "logs",
	}, file.WithS3Client(client))
	require.NoError(t, err)
	return a
}

func TestNewS3Archiver_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := file.NewS3Archiver(context.Background(), file.S3Config{Region: "eu-west-1"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)

	_, err = file.NewS3Archiver(context.Background(), file.S3Config{Bucket: "audit"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}

func TestNewS3Archiver_DefaultClient(t *testing.T) {
	t.Parallel()

	a, err := file.NewS3Archiver(context.Background(), file.S3Config{
		Bucket:         "audit",
		Region:         "us-east-1",
		AccessKeyID:    "key",
		SecretKey:      "secret",
		Endpoint:       "http://localhost:9000",
		ForcePathStyle: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestS3Archiver_Submit(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	var body []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "audit" &&
			*in.Key == "logs/2025/03/10/0190a1b2-0000-7000-8000-000000000001.ndjson" &&
			*in.IfNoneMatch == "*" &&
			*in.ContentType == file.ContentType
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		body, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	a := newArchiver(t, client)
	require.NoError(t, a.Submit(context.Background(), testBatch()))
	client.AssertExpectations(t)

	events, err := logevent.DecodeNDJSON(body)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Message)
	assert.Equal(t, "second", events[1].Message)
}

func TestS3Archiver_SubmitErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		outcome relay.Outcome
		target  error
	}{
		{
			name:    "object exists",
			err:     &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"},
			outcome: relay.OutcomeDuplicate,
			target:  file.ErrObjectExists,
		},
		{
			name:    "concurrent write",
			err:     &smithy.GenericAPIError{Code: "ConditionalRequestConflict"},
			outcome: relay.OutcomeRetry,
			target:  file.ErrObjectConflict,
		},
		{
			name:    "access denied",
			err:     &smithy.GenericAPIError{Code: "AccessDenied"},
			outcome: relay.OutcomeFailed,
			target:  file.ErrAccessDenied,
		},
		{
			name:    "throttled",
			err:     &smithy.GenericAPIError{Code: "SlowDown"},
			outcome: relay.OutcomeFailed,
			target:  file.ErrServiceUnavailable,
		},
		{
			name:    "missing bucket",
			err:     &types.NoSuchBucket{},
			outcome: relay.OutcomeFailed,
			target:  file.ErrBucketNotFound,
		},
		{
			name:    "timeout",
			err:     context.DeadlineExceeded,
			outcome: relay.OutcomeFailed,
			target:  file.ErrOperationTimeout,
		},
		{
			name:    "unknown",
			err:     errors.New("connection reset"),
			outcome: relay.OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &MockS3Client{}
			client.On("PutObject", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			err := newArchiver(t, client).Submit(context.Background(), testBatch())
			require.Error(t, err)
			assert.Equal(t, tt.outcome, relay.Classify(err))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestS3Archiver_SubmitEmpty(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	err := newArchiver(t, client).Submit(context.Background(), nil)
	assert.ErrorIs(t, err, file.ErrEmptyBatch)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestS3Archiver_Healthcheck(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	client.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil).Once()
	client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: "NotFound"}).Once()

	check := newArchiver(t, client).Healthcheck()
	require.NoError(t, check(context.Background()))

	err := check(context.Background())
	assert.ErrorIs(t, err, file.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, file.ErrBucketNotFound)
}

func TestS3Archiver_WithRelay(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	client.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed"})

	r, err := relay.New[logevent.Event](newArchiver(t, client), relay.WithSubmissionInterval(0))
	require.NoError(t, err)
	defer r.Stop()

	results := make(chan error, 2)
	for _, e := range testBatch() {
		r.Submit(relay.Item[logevent.Event]{Payload: e, Done: func(err error) { results <- err }})
	}
	<-r.Flush(5 * time.Second)

	assert.NoError(t, <-results)
	assert.NoError(t, <-results)
	client.AssertExpectations(t)
}
