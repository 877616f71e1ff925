package server

import (
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemastore/mstore"
	storetesting "github.com/ValentinKolb/dGrid/lib/schemastore/testing"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePeer records replicated schemas and answers with its member id
type fakePeer struct {
	name     string
	err      error
	received []*compact.Schema
}

func (p *fakePeer) Replicate(_ context.Context, schemas []*compact.Schema, _ string) (uuid.UUID, error) {
	if p.err != nil {
		return uuid.Nil, p.err
	}
	p.received = append(p.received, schemas...)
	return common.MemberID(p.name), nil
}

func (p *fakePeer) Close() error { return nil }

func newTestAdapter(peers ...*fakePeer) IRPCServerAdapter {
	config := common.ServerConfig{MemberName: "m1", Peers: map[string]string{}}
	replicators := make(map[string]peerReplicator)
	for _, p := range peers {
		config.Peers[p.name] = "unused"
		replicators[p.name] = p
	}
	return NewSchemaServerAdapter(config, replicators)
}

func TestAdapterPutReplicates(t *testing.T) {
	ok := &fakePeer{name: "m2"}
	broken := &fakePeer{name: "m3", err: errors.New("unreachable")}
	adapter := newTestAdapter(ok, broken)
	store := mstore.NewMemoryStore()
	schema := storetesting.NewTestSchema(t, "point", 2)

	resp := adapter.Handle(common.NewSchemaPutRequest(compact.EncodeSchemas(schema)), store)
	require.Empty(t, resp.Err)
	assert.Equal(t, common.MsgTSchemaPut, resp.MsgType)
	assert.ElementsMatch(t, []uuid.UUID{common.MemberID("m1"), common.MemberID("m2")}, resp.Members)

	stored, found, err := store.Get(schema.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, stored.Equal(schema))
	require.Len(t, ok.received, 1)
	assert.Equal(t, schema.ID(), ok.received[0].ID())
}

func TestAdapterPutRejectsMultipleSchemas(t *testing.T) {
	adapter := newTestAdapter()
	payload := compact.EncodeSchemas(
		storetesting.NewTestSchema(t, "a", 1),
		storetesting.NewTestSchema(t, "b", 1),
	)
	resp := adapter.Handle(common.NewSchemaPutRequest(payload), mstore.NewMemoryStore())
	assert.NotEmpty(t, resp.Err)
}

func TestAdapterPutAll(t *testing.T) {
	peer := &fakePeer{name: "m2"}
	adapter := newTestAdapter(peer)
	store := mstore.NewMemoryStore()
	a := storetesting.NewTestSchema(t, "a", 1)
	b := storetesting.NewTestSchema(t, "b", 3)

	resp := adapter.Handle(common.NewSchemaPutAllRequest(compact.EncodeSchemas(a, b)), store)
	require.Empty(t, resp.Err)
	assert.Equal(t, 2, store.Len())
	assert.Len(t, peer.received, 2)
}

func TestAdapterReplicateDoesNotCascade(t *testing.T) {
	peer := &fakePeer{name: "m2"}
	adapter := newTestAdapter(peer)
	store := mstore.NewMemoryStore()
	schema := storetesting.NewTestSchema(t, "point", 2)

	resp := adapter.Handle(common.NewSchemaReplicateRequest(compact.EncodeSchemas(schema), "m2"), store)
	require.Empty(t, resp.Err)
	assert.Equal(t, []uuid.UUID{common.MemberID("m1")}, resp.Members)
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, peer.received)
}

func TestAdapterFetch(t *testing.T) {
	adapter := newTestAdapter()
	store := mstore.NewMemoryStore()
	schema := storetesting.NewTestSchema(t, "point", 2)

	resp := adapter.Handle(common.NewSchemaFetchRequest(schema.ID()), store)
	require.Empty(t, resp.Err)
	assert.False(t, resp.Ok)

	_, err := store.Put(schema)
	require.NoError(t, err)

	resp = adapter.Handle(common.NewSchemaFetchRequest(schema.ID()), store)
	require.Empty(t, resp.Err)
	require.True(t, resp.Ok)
	schemas, err := compact.DecodeSchemas(resp.Payload)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.True(t, schemas[0].Equal(schema))
}

func TestAdapterMembers(t *testing.T) {
	adapter := newTestAdapter(&fakePeer{name: "m2"}, &fakePeer{name: "m3"})
	resp := adapter.Handle(common.NewMembersRequest(), mstore.NewMemoryStore())
	require.Empty(t, resp.Err)
	assert.Equal(t, []uuid.UUID{common.MemberID("m1"), common.MemberID("m2"), common.MemberID("m3")}, resp.Members)
}

func TestAdapterInvalidRequests(t *testing.T) {
	adapter := newTestAdapter()

	resp := adapter.Handle(common.NewSchemaPutRequest([]byte{1, 2}), mstore.NewMemoryStore())
	assert.NotEmpty(t, resp.Err)

	resp = adapter.Handle(&common.Message{MsgType: common.MsgTSuccess}, mstore.NewMemoryStore())
	assert.Equal(t, common.MsgTError, resp.MsgType)

	resp = adapter.Handle(common.NewMembersRequest(), nil)
	assert.Equal(t, common.MsgTError, resp.MsgType)
}
