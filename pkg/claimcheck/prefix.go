package claimcheck

import "regexp"

// identifierLength is the canonical hyphenated length of a v4 UUID, the
// fresh identifier appended to every minted blob key.
const identifierLength = 36

// maxBlobKeyLength is the backing blob store's fixed maximum key length.
const maxBlobKeyLength = 1024

// MaxBlobKeyPrefixLength is the longest prefix that leaves room for a
// fresh identifier under maxBlobKeyLength.
const MaxBlobKeyPrefixLength = maxBlobKeyLength - identifierLength

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]*$`)

// ValidatePrefix rejects blob-key prefixes that would corrupt minted
// keys. An empty prefix is always valid.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if len(prefix) > MaxBlobKeyPrefixLength {
		return ErrConfigInvalid(prefixTooLongMessage(len(prefix)), nil)
	}
	if !prefixPattern.MatchString(prefix) {
		return ErrConfigInvalid("blob key prefix contains characters outside [A-Za-z0-9._/-]", nil)
	}
	return nil
}
