package claimcheck_test

import (
	"context"
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/azsbx/extended-client/pkg/claimcheck/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedStorePassesThroughStoreGetDelete(t *testing.T) {
	inner := memory.NewStore("payloads")
	store := claimcheck.NewInstrumentedStore(inner)
	ctx := context.Background()

	pointer, err := store.Store(ctx, "key-1", []byte("payload"), claimcheck.StoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, "payloads", pointer.Container)
	assert.Equal(t, "key-1", pointer.Key)
	assert.True(t, inner.Has("key-1"))

	body, err := store.Get(ctx, pointer, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)

	require.NoError(t, store.Delete(ctx, pointer))
	assert.False(t, inner.Has("key-1"))
}

func TestInstrumentedStoreSurfacesGetError(t *testing.T) {
	inner := memory.NewStore("payloads")
	store := claimcheck.NewInstrumentedStore(inner)
	ctx := context.Background()

	_, err := store.Get(ctx, claimcheck.Pointer{Container: "payloads", Key: "missing"}, false)
	assert.Error(t, err)
}
