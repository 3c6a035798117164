package claimcheck_test

import (
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservedAttributeNameFollowsLegacyFlag(t *testing.T) {
	cfg := &claimcheck.Config{UseLegacyReservedAttributeName: true}
	assert.Equal(t, claimcheck.ReservedSizeKeyLegacy, cfg.ReservedAttributeName())

	cfg.UseLegacyReservedAttributeName = false
	assert.Equal(t, claimcheck.ReservedSizeKeyModern, cfg.ReservedAttributeName())
}

func TestSetBlobKeyPrefixRejectsInvalidAndLeavesPriorValue(t *testing.T) {
	cfg := &claimcheck.Config{}
	require.NoError(t, cfg.SetBlobKeyPrefix("valid/prefix"))

	err := cfg.SetBlobKeyPrefix("invalid@prefix")
	assert.Error(t, err)
	assert.Equal(t, "valid/prefix", cfg.BlobKeyPrefix())
}

func TestSetBlobKeyPrefixRejectsTooLong(t *testing.T) {
	cfg := &claimcheck.Config{}
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, cfg.SetBlobKeyPrefix(string(long)))
}

func TestConfigValidateRejectsBothEncryptionFields(t *testing.T) {
	cfg := &claimcheck.Config{
		Encryption: claimcheck.EncryptionConfig{
			EncryptionScope:     "scope1",
			CustomerProvidedKey: "key1",
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigAppliesDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("CLAIMCHECK_SIZE_THRESHOLD", "1024")
	t.Setenv("CLAIMCHECK_MAX_DELIVERY_COUNT", "3")

	cfg, err := claimcheck.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.MessageSizeThreshold)
	assert.Equal(t, 3, cfg.MaxDeliveryCount)
	assert.True(t, cfg.PayloadSupportEnabled, "env-default should apply when unset")
}

func TestLoadConfigRejectsInvalidTier(t *testing.T) {
	t.Setenv("CLAIMCHECK_BLOB_ACCESS_TIER", "Freezing")
	_, err := claimcheck.LoadConfig()
	assert.Error(t, err)
}
