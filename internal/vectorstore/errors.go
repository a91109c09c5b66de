package vectorstore

import (
	"context"
	"errors"
	"fmt"

	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors for the vectorstore package. Callers branch on these
// with errors.Is; every error leaving the package wraps exactly one.
var (
	// ErrInvalidInput indicates a structurally invalid request that will
	// never succeed (empty batch, non-positive limit).
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the store's configured vector size.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrBackendUnavailable indicates a transient backend failure. Safe to
	// retry.
	ErrBackendUnavailable = errors.New("vector backend unavailable")

	// ErrBackendRejected indicates the backend refused the request for a
	// structural reason. Retrying will not help.
	ErrBackendRejected = errors.New("vector backend rejected request")

	// ErrCollectionNotFound indicates the target collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidCollectionName indicates a collection name that fails the
	// store's naming rules.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrInvalidConfig indicates an invalid store configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the initial connection to the backend
	// could not be established.
	ErrConnectionFailed = errors.New("failed to connect to vector backend")
)

// IsRetryable reports whether err represents a transient failure that a
// caller may retry. The store itself never retries; retry policy belongs
// to the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// classifyBackendError wraps a backend error in the matching sentinel.
// gRPC status codes drive the classification; non-status errors (raw
// network failures, context expiry) count as transient.
func classifyBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err)
	}

	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted, grpccodes.Canceled:
		return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err)
	case grpccodes.NotFound:
		return fmt.Errorf("%w: %s: %v", ErrCollectionNotFound, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrBackendRejected, op, err)
	}
}

// isAlreadyExists reports whether err is the backend's "collection
// already exists" response.
func isAlreadyExists(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == grpccodes.AlreadyExists
}

// isNotFound reports whether err is the backend's NotFound response.
func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == grpccodes.NotFound
}
