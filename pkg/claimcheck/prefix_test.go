package claimcheck_test

import (
	"strings"
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/stretchr/testify/assert"
)

func TestValidatePrefixAcceptsEmpty(t *testing.T) {
	assert.NoError(t, claimcheck.ValidatePrefix(""))
}

func TestValidatePrefixAcceptsCharset(t *testing.T) {
	assert.NoError(t, claimcheck.ValidatePrefix("orders/2026-07-31._abc"))
}

func TestValidatePrefixRejectsBadCharacters(t *testing.T) {
	assert.Error(t, claimcheck.ValidatePrefix("invalid@prefix"))
}

func TestValidatePrefixRejectsTooLong(t *testing.T) {
	assert.Error(t, claimcheck.ValidatePrefix(strings.Repeat("a", 1000)))
}

func TestValidatePrefixAcceptsMaxLength(t *testing.T) {
	assert.NoError(t, claimcheck.ValidatePrefix(strings.Repeat("a", claimcheck.MaxBlobKeyPrefixLength)))
}
