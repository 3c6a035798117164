// Package azureblob adapts Azure Blob Storage into claimcheck.PayloadStore.
package azureblob

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/azsbx/extended-client/pkg/claimcheck"
)

// contentTypeTextPlain is the fixed content-type C5 stores offloaded
// bodies under; spec.md scopes bodies to UTF-8 text strings in v1.
const contentTypeTextPlain = "text/plain"

// Store adapts an azblob client to claimcheck.PayloadStore, ensuring
// its container exists once on first use.
type Store struct {
	client    *azblob.Client
	container string

	ensureOnce sync.Once
	ensureErr  error
}

// New creates a Store bound to container on the account the given
// client was constructed for. The container is created lazily on first
// Store call rather than here, so constructing a Store never blocks on
// I/O.
func New(client *azblob.Client, container string) *Store {
	return &Store{client: client, container: container}
}

func (s *Store) ensureContainer(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		_, err := s.client.CreateContainer(ctx, s.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			s.ensureErr = err
		}
	})
	return s.ensureErr
}

// Store implements claimcheck.PayloadStore: upload is an idempotent
// overwrite, with tier/encryption hints applied when configured.
func (s *Store) Store(ctx context.Context, key string, body []byte, opts claimcheck.StoreOptions) (claimcheck.Pointer, error) {
	if err := s.ensureContainer(ctx); err != nil {
		return claimcheck.Pointer{}, claimcheck.ErrBackendFailure("failed to ensure container exists", err)
	}

	uploadOpts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentTypeTextPlain)},
	}
	if opts.AccessTier != "" {
		uploadOpts.AccessTier = (*blob.AccessTier)(to.Ptr(opts.AccessTier))
	}
	if opts.Encryption.EncryptionScope != "" {
		uploadOpts.CPKScopeInfo = &blob.CPKScopeInfo{EncryptionScope: to.Ptr(opts.Encryption.EncryptionScope)}
	}
	if opts.Encryption.CustomerProvidedKey != "" {
		uploadOpts.CPKInfo = &blob.CPKInfo{EncryptionKey: to.Ptr(opts.Encryption.CustomerProvidedKey)}
	}
	if opts.OrphanTTL != "" {
		uploadOpts.Metadata = map[string]*string{"claimcheck-orphan-ttl": to.Ptr(opts.OrphanTTL)}
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, key, body, uploadOpts); err != nil {
		return claimcheck.Pointer{}, claimcheck.ErrBackendFailure("failed to upload blob", err)
	}
	return claimcheck.Pointer{Container: s.container, Key: key}, nil
}

// Get implements claimcheck.PayloadStore: a not-found download is
// promoted to (nil, nil) only when ignoreNotFound is set.
func (s *Store) Get(ctx context.Context, pointer claimcheck.Pointer, ignoreNotFound bool) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, pointer.Container, pointer.Key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			if ignoreNotFound {
				return nil, nil
			}
			return nil, claimcheck.ErrNotFound("blob not found: "+pointer.Key, err)
		}
		return nil, claimcheck.ErrBackendFailure("failed to download blob", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, claimcheck.ErrBackendFailure("failed to read blob body", err)
	}
	return buf.Bytes(), nil
}

// Delete implements claimcheck.PayloadStore: at-most-once, not-found is success.
func (s *Store) Delete(ctx context.Context, pointer claimcheck.Pointer) error {
	_, err := s.client.DeleteBlob(ctx, pointer.Container, pointer.Key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return claimcheck.ErrBackendFailure("failed to delete blob", err)
	}
	return nil
}

// ValidateEncryptionConfig rejects a configuration that sets both an
// encryption scope and a customer-provided key, since azblob's upload
// options reject that combination.
func ValidateEncryptionConfig(cfg claimcheck.EncryptionConfig) error {
	if cfg.EncryptionScope != "" && cfg.CustomerProvidedKey != "" {
		return claimcheck.ErrConfigInvalid("encryption scope and customer-provided key are mutually exclusive", nil)
	}
	return nil
}
