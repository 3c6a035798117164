package claimcheck_test

import (
	"context"
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/azsbx/extended-client/pkg/claimcheck/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 5: a pointer with no backing blob resolves to an empty body
// when ignorePayloadNotFound is set, and fails otherwise.
func TestReceiveMissingBlobIgnored(t *testing.T) {
	cfg := &claimcheck.Config{
		PayloadSupportEnabled: true,
		IgnorePayloadNotFound: true,
	}
	broker := memory.NewBroker(8)
	store := memory.NewStore("c")
	client := claimcheck.NewClient(cfg, broker, broker, store, nil)
	ctx := context.Background()

	encoded, err := claimcheck.EncodePointer(claimcheck.Pointer{Container: "c", Key: "b"})
	require.NoError(t, err)
	require.NoError(t, broker.Send(ctx, claimcheck.OutgoingMessage{
		Body: encoded,
		Properties: map[string]string{
			claimcheck.ReservedPointerKey: "true",
		},
	}))

	resolved, err := client.Receive(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, []byte(""), resolved[0].Body)
	assert.True(t, resolved[0].PayloadFromBlob)
	require.NotNil(t, resolved[0].Pointer)
}

func TestReceiveMissingBlobFailsWhenNotIgnored(t *testing.T) {
	cfg := &claimcheck.Config{
		PayloadSupportEnabled: true,
		IgnorePayloadNotFound: false,
	}
	broker := memory.NewBroker(8)
	store := memory.NewStore("c")
	client := claimcheck.NewClient(cfg, broker, broker, store, nil)
	ctx := context.Background()

	encoded, err := claimcheck.EncodePointer(claimcheck.Pointer{Container: "c", Key: "b"})
	require.NoError(t, err)
	require.NoError(t, broker.Send(ctx, claimcheck.OutgoingMessage{
		Body:       encoded,
		Properties: map[string]string{claimcheck.ReservedPointerKey: "true"},
	}))

	_, err = client.Receive(ctx, 1, 0)
	assert.Error(t, err)
}

func TestResolveStripsReservedProperties(t *testing.T) {
	cfg := &claimcheck.Config{PayloadSupportEnabled: true}
	broker := memory.NewBroker(8)
	store := memory.NewStore("c")
	client := claimcheck.NewClient(cfg, broker, broker, store, nil)
	ctx := context.Background()

	require.NoError(t, broker.Send(ctx, claimcheck.OutgoingMessage{
		Body: []byte("hello"),
		Properties: map[string]string{
			"user-key":                        "user-value",
			claimcheck.ReservedUserAgentKey:    "extended-client/1.0",
			claimcheck.ReservedSizeKeyModern:   "5",
			claimcheck.ReservedSizeKeyLegacy:   "5",
		},
	}))

	resolved, err := client.Receive(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, map[string]string{"user-key": "user-value"}, resolved[0].Properties)
}
