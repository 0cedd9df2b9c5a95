package publisher

import "context"

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message to a stream under the given field
	Publish(ctx context.Context, field string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// RecordField is the stream field carrying base64 encoded attribute records
const RecordField = "b64_record"
