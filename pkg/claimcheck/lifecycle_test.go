package claimcheck_test

import (
	"strings"
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/azsbx/extended-client/pkg/claimcheck/adapters/memory"
	"github.com/azsbx/extended-client/pkg/test"
)

// lifecycleSuite exercises DeletePayload/DeletePayloadBatch/RenewLock
// (C8) against a fresh client per test.
type lifecycleSuite struct {
	test.Suite
	client *claimcheck.Client
	store  *memory.Store
}

func (s *lifecycleSuite) newClient(cfg *claimcheck.Config) {
	broker := memory.NewBroker(64)
	s.store = memory.NewStore("payloads")
	s.client = claimcheck.NewClient(cfg, broker, broker, s.store, memory.NewProcessorBuilder(broker))
}

func TestLifecycleSuite(t *testing.T) {
	test.Run(t, new(lifecycleSuite))
}

func (s *lifecycleSuite) TestDeletePayloadReclaimsBlob() {
	s.newClient(&claimcheck.Config{
		MessageSizeThreshold:  10,
		PayloadSupportEnabled: true,
		CleanupBlobOnDelete:   true,
		MaxAllowedProperties:  9,
	})

	body := []byte(strings.Repeat("x", 50))
	s.Require().NoError(s.client.Send(s.Ctx, body, nil))
	s.Equal(1, s.store.Len())

	resolved, err := s.client.Receive(s.Ctx, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(resolved, 1)

	s.client.DeletePayload(s.Ctx, resolved[0])
	s.Equal(0, s.store.Len())
}

func (s *lifecycleSuite) TestDeletePayloadNoopWhenNotFromBlob() {
	s.newClient(&claimcheck.Config{
		MessageSizeThreshold:  1024,
		PayloadSupportEnabled: true,
		CleanupBlobOnDelete:   true,
	})

	s.Require().NoError(s.client.Send(s.Ctx, []byte("small"), nil))
	resolved, err := s.client.Receive(s.Ctx, 1, 0)
	s.Require().NoError(err)

	s.client.DeletePayload(s.Ctx, resolved[0])
	s.Equal(0, s.store.Len())
}

// Batch delete: k blob-backed messages out of n reach the store exactly
// k times, and the tally always sums to n.
func (s *lifecycleSuite) TestDeletePayloadBatchTally() {
	s.newClient(&claimcheck.Config{
		MessageSizeThreshold:  10,
		PayloadSupportEnabled: true,
		CleanupBlobOnDelete:   true,
		MaxAllowedProperties:  9,
	})

	bodies := [][]byte{[]byte("small"), []byte(strings.Repeat("a", 50)), []byte(strings.Repeat("b", 60))}
	s.Require().NoError(s.client.SendBatch(s.Ctx, bodies, nil))
	s.Equal(2, s.store.Len())

	resolved, err := s.client.Receive(s.Ctx, 3, 0)
	s.Require().NoError(err)
	s.Require().Len(resolved, 3)

	tally := s.client.DeletePayloadBatch(s.Ctx, resolved)
	s.Equal(2, tally.Succeeded)
	s.Equal(1, tally.Skipped)
	s.Equal(0, tally.Failed)
	s.Equal(3, tally.Succeeded+tally.Skipped+tally.Failed)
	s.Equal(0, s.store.Len())
}

func (s *lifecycleSuite) TestDeletePayloadBatchSkipsAllWhenCleanupDisabled() {
	s.newClient(&claimcheck.Config{
		MessageSizeThreshold:  10,
		PayloadSupportEnabled: true,
		CleanupBlobOnDelete:   false,
		MaxAllowedProperties:  9,
	})

	s.Require().NoError(s.client.Send(s.Ctx, []byte(strings.Repeat("a", 50)), nil))
	resolved, err := s.client.Receive(s.Ctx, 1, 0)
	s.Require().NoError(err)

	tally := s.client.DeletePayloadBatch(s.Ctx, resolved)
	s.Equal(0, tally.Succeeded)
	s.Equal(1, tally.Skipped)
	s.Equal(1, s.store.Len())
}

func (s *lifecycleSuite) TestRenewLockPassesThrough() {
	s.newClient(&claimcheck.Config{PayloadSupportEnabled: true})

	s.Require().NoError(s.client.Send(s.Ctx, []byte("hello"), nil))
	resolved, err := s.client.Receive(s.Ctx, 1, 0)
	s.Require().NoError(err)

	s.NoError(s.client.RenewLock(s.Ctx, resolved[0]))
}
