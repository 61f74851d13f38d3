package ingest

import "errors"

// Domain-specific errors for ingestion.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidTopic is returned when a message arrives on a topic the
	// bridge cannot extract a device MAC from.
	ErrInvalidTopic = errors.New("ingest: invalid topic")

	// ErrInvalidPayload is returned when a message payload cannot be
	// decoded as JSON.
	ErrInvalidPayload = errors.New("ingest: invalid payload")
)
