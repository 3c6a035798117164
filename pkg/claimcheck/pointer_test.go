package claimcheck_test

import (
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerRoundTrip(t *testing.T) {
	p := claimcheck.Pointer{Container: "payloads", Key: "orders/2026-07-31/abc"}

	encoded, err := claimcheck.EncodePointer(p)
	require.NoError(t, err)

	decoded, err := claimcheck.DecodePointer(encoded)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestPointerWireShape(t *testing.T) {
	p := claimcheck.Pointer{Container: "c", Key: "b"}
	encoded, err := claimcheck.EncodePointer(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"containerName":"c","blobName":"b"}`, string(encoded))
}

func TestDecodePointerIgnoresExtraFields(t *testing.T) {
	decoded, err := claimcheck.DecodePointer([]byte(`{"containerName":"c","blobName":"b","extra":"field"}`))
	require.NoError(t, err)
	assert.Equal(t, claimcheck.Pointer{Container: "c", Key: "b"}, decoded)
}

func TestDecodePointerRejectsEmptyFields(t *testing.T) {
	_, err := claimcheck.DecodePointer([]byte(`{"containerName":"","blobName":"b"}`))
	assert.Error(t, err)

	_, err = claimcheck.DecodePointer([]byte(`{"containerName":"c","blobName":"   "}`))
	assert.Error(t, err)
}

func TestDecodePointerRejectsMalformedJSON(t *testing.T) {
	_, err := claimcheck.DecodePointer([]byte(`not json`))
	assert.Error(t, err)
}
