package operators

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/ports"
)

const S3ReadJSONOperatorName = "s3_read_json"

// S3ReadJSON reads one object, decodes it as UTF-8 JSON and logs the result.
// Expects string inputs "bucket" and "key".
type S3ReadJSON struct {
	store ports.ObjectReader
}

func NewS3ReadJSON(store ports.ObjectReader) *S3ReadJSON {
	return &S3ReadJSON{store: store}
}

func (o *S3ReadJSON) Execute(ctx context.Context, tc *TaskContext) (any, error) {
	bucket, ok := tc.String("bucket")
	if !ok {
		return nil, fmt.Errorf("task %s: input bucket must be a string", tc.TaskID)
	}
	key, ok := tc.String("key")
	if !ok {
		return nil, fmt.Errorf("task %s: input key must be a string", tc.TaskID)
	}

	logger := tc.Logger.With().
		Str("bucket", bucket).
		Str("key", key).
		Logger()

	logger.Info().Msgf("Reading S3 object from bucket %s and key %s", bucket, key)

	data, err := o.store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}

	value, err := DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, err)
	}

	logger.Info().
		Int("bytes", len(data)).
		Interface("value", value).
		Msg("Read S3 object")

	return value, nil
}

// DecodeJSON decodes UTF-8 JSON text of any shape.
func DecodeJSON(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, domain.ErrDecode
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	return value, nil
}
