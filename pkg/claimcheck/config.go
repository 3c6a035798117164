package claimcheck

import (
	"sync"
	"time"

	"github.com/azsbx/extended-client/pkg/config"
)

// Reserved property keys, exact strings per the wire protocol. Legacy
// consumers of the predecessor system recognise ReservedSizeKeyLegacy;
// ReservedSizeKeyModern is the greenfield replacement.
const (
	ReservedSizeKeyModern = "ExtendedPayloadSize"
	ReservedSizeKeyLegacy = "ServiceBusLargePayloadSize"
	ReservedPointerKey    = "com.azure.servicebus.extended.BlobPointer"
	ReservedUserAgentKey  = "ExtendedClientUserAgent"

	pointerMarkerValue = "true"
)

// EncryptionConfig forwards customer-managed encryption hints to the
// payload store adapter at put time. Setting both fields is rejected at
// validation time rather than silently preferring one.
type EncryptionConfig struct {
	EncryptionScope    string `env:"CLAIMCHECK_ENCRYPTION_SCOPE"`
	CustomerProvidedKey string `env:"CLAIMCHECK_ENCRYPTION_CPK"`
}

// Config holds every claim-check tunable. Fields carry env tags so a
// zero-value Config loaded through config.Load picks up the same
// defaults spec.md documents.
type Config struct {
	// MessageSizeThreshold: bodies longer than this (UTF-8 octets) are offloaded.
	MessageSizeThreshold int `env:"CLAIMCHECK_SIZE_THRESHOLD" env-default:"262144" validate:"gte=0"`

	// AlwaysThroughBlob forces offload regardless of size.
	AlwaysThroughBlob bool `env:"CLAIMCHECK_ALWAYS_THROUGH_BLOB" env-default:"false"`

	// CleanupBlobOnDelete enables blob reclamation during deletePayload.
	CleanupBlobOnDelete bool `env:"CLAIMCHECK_CLEANUP_ON_DELETE" env-default:"true"`

	// IgnorePayloadNotFound treats a missing blob as an empty body on receive.
	IgnorePayloadNotFound bool `env:"CLAIMCHECK_IGNORE_NOT_FOUND" env-default:"false"`

	// UseLegacyReservedAttributeName chooses the size-marker key.
	UseLegacyReservedAttributeName bool `env:"CLAIMCHECK_USE_LEGACY_ATTR_NAME" env-default:"true"`

	// PayloadSupportEnabled is the master switch; when false, send/receive
	// bypass the offload pipeline entirely.
	PayloadSupportEnabled bool `env:"CLAIMCHECK_PAYLOAD_SUPPORT_ENABLED" env-default:"true"`

	// BlobAccessTier is an optional hint ("Hot"/"Cool"/"Archive") forwarded to C5.
	BlobAccessTier string `env:"CLAIMCHECK_BLOB_ACCESS_TIER" validate:"omitempty,oneof=Hot Cool Archive"`

	// Encryption carries customer-managed encryption hints forwarded to C5.
	Encryption EncryptionConfig

	// MaxAllowedProperties is the ceiling enforced by C3.
	MaxAllowedProperties int `env:"CLAIMCHECK_MAX_PROPERTIES" env-default:"9" validate:"gte=0"`

	// MaxPropertyBytes is the total-octet-size ceiling enforced by C3.
	MaxPropertyBytes int `env:"CLAIMCHECK_MAX_PROPERTY_BYTES" env-default:"65536" validate:"gte=0"`

	// MaxDeliveryCount bounds redelivery attempts before the push
	// processor dead-letters a message whose handler keeps failing.
	MaxDeliveryCount int `env:"CLAIMCHECK_MAX_DELIVERY_COUNT" env-default:"10" validate:"gte=1"`

	// OrphanTTL is an advisory hint forwarded as blob metadata so an
	// external lifecycle policy can reclaim blobs whose pointer never
	// made it onto the queue. Nothing in this repo acts on it directly.
	OrphanTTL time.Duration `env:"CLAIMCHECK_ORPHAN_TTL" env-default:"168h"`

	// UserAgent is stamped on every outgoing message via ReservedUserAgentKey.
	UserAgent string `env:"CLAIMCHECK_USER_AGENT" env-default:"extended-client/1.0"`

	// blobKeyPrefix is mutated only through SetBlobKeyPrefix so C2
	// validation always runs before the new value takes effect.
	mu            sync.RWMutex
	blobKeyPrefix string
}

// LoadConfig reads a Config from a .env file or environment variables,
// applying the env-default values and validate tags above, then runs
// Validate for the cross-field invariants those tags can't express.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, ErrConfigInvalid("failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct-level invariants that span multiple fields and
// are not expressible as a single `validate` tag, then runs the prefix
// validator against any prefix already set.
func (c *Config) Validate() error {
	if c.Encryption.EncryptionScope != "" && c.Encryption.CustomerProvidedKey != "" {
		return ErrConfigInvalid("encryption scope and customer-provided key are mutually exclusive", nil)
	}
	if c.MaxAllowedProperties < 0 {
		return ErrConfigInvalid("maxAllowedProperties must be non-negative", nil)
	}
	return ValidatePrefix(c.BlobKeyPrefix())
}

// BlobKeyPrefix returns the currently configured prefix.
func (c *Config) BlobKeyPrefix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blobKeyPrefix
}

// SetBlobKeyPrefix validates prefix via C2 before applying it. On
// failure the prior prefix remains in effect — the mutation is atomic.
func (c *Config) SetBlobKeyPrefix(prefix string) error {
	if err := ValidatePrefix(prefix); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blobKeyPrefix = prefix
	return nil
}

// ReservedAttributeName returns the size-marker key this configuration
// currently selects: the legacy name when UseLegacyReservedAttributeName
// is true, otherwise the modern one.
func (c *Config) ReservedAttributeName() string {
	if c.UseLegacyReservedAttributeName {
		return ReservedSizeKeyLegacy
	}
	return ReservedSizeKeyModern
}

// reservedKeys returns the full reserved-name set C3 validates user
// properties against: both size-marker spellings (defensive, since a
// caller may flip UseLegacyReservedAttributeName between sends), the
// pointer marker, and the user-agent key.
func reservedKeys() map[string]struct{} {
	return map[string]struct{}{
		ReservedSizeKeyModern: {},
		ReservedSizeKeyLegacy: {},
		ReservedPointerKey:    {},
		ReservedUserAgentKey:  {},
	}
}

// shouldOffload reports whether a body of the given size must be offloaded.
func (c *Config) shouldOffload(size int) bool {
	return c.AlwaysThroughBlob || size > c.MessageSizeThreshold
}
