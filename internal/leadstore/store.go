// Package leadstore is the boundary between the pipeline and the
// durable lead store. Drivers exist for Notion (the shared team store),
// SQLite (local) and Postgres.
package leadstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ErrorKind classifies a store failure so the ingestion coordinator can
// tell retryable-later failures from fatal-for-this-record ones.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindRateLimit    ErrorKind = "rate_limit"
	KindConnectivity ErrorKind = "connectivity"
	KindNotFound     ErrorKind = "not_found"
)

// StoreError is the typed error surfaced by every driver.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("leadstore: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure could succeed on a later run.
func (e *StoreError) Retryable() bool {
	return e.Kind == KindRateLimit || e.Kind == KindConnectivity
}

// Kind extracts the ErrorKind from an error chain. Errors that are not
// StoreErrors classify as connectivity, the conservative default.
func Kind(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindConnectivity
}

// LeadUpdate carries a partial mutation; nil fields are left untouched.
type LeadUpdate struct {
	Status          *model.LeadStatus
	Email           *string
	Notes           *string
	LastContactedAt *time.Time
}

// Store is the sole persistence interface for the pipeline.
type Store interface {
	// ListExisting reads up to limit leads projected down to the
	// identity-relevant fields, for the per-batch dedup snapshot.
	ListExisting(ctx context.Context, limit int) ([]model.Lead, error)

	// Create persists a lead and returns it with the store-assigned ID.
	Create(ctx context.Context, lead model.Lead) (*model.Lead, error)

	// Update applies a partial mutation to an existing lead.
	Update(ctx context.Context, id string, upd LeadUpdate) error

	// Delete removes a lead.
	Delete(ctx context.Context, id string) error

	// QueryAll reads up to limit full records, for downstream consumers.
	QueryAll(ctx context.Context, limit int) ([]model.Lead, error)

	Close() error
}
