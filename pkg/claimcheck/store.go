package claimcheck

import "context"

// StoreOptions carries the optional tier/encryption hints C4 forwards to
// the payload store adapter at put time.
type StoreOptions struct {
	AccessTier string
	Encryption EncryptionConfig
	OrphanTTL  string
}

// PayloadStore is the capability interface the send/receive pipelines
// depend on instead of any concrete blob SDK type. store/get/delete map
// directly onto spec.md's C5 operations.
type PayloadStore interface {
	// Store writes body under key, idempotently overwriting any prior
	// blob at that key, and returns the pointer record for it. Ensures
	// the backing container exists. Transport errors are never
	// translated into a success return.
	Store(ctx context.Context, key string, body []byte, opts StoreOptions) (Pointer, error)

	// Get fetches the body addressed by pointer. A nil slice with a nil
	// error means the blob was not found and the caller has opted into
	// treating that as an empty body (ignorePayloadNotFound); otherwise
	// a not-found condition surfaces as an error satisfying IsNotFound.
	Get(ctx context.Context, pointer Pointer, ignoreNotFound bool) ([]byte, error)

	// Delete removes the blob addressed by pointer. Not-found is
	// success: delete is at-most-once and idempotent.
	Delete(ctx context.Context, pointer Pointer) error
}

// IsNotFound reports whether err represents a not-found condition from
// a PayloadStore, regardless of adapter.
func IsNotFound(err error) bool {
	return errorHasCode(err, CodeNotFound)
}
