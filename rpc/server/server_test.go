package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/lib/schemamgr"
	storetesting "github.com/ValentinKolb/dGrid/lib/schemastore/testing"
	"github.com/ValentinKolb/dGrid/rpc/client"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/serializer"
	"github.com/ValentinKolb/dGrid/rpc/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeEndpoint returns a local endpoint that was free a moment ago
func freeEndpoint(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().String()
}

// startMember starts a member and waits until it accepts connections
func startMember(t *testing.T, name, endpoint string, peers map[string]string, dataDir string) *RPCServer {
	config := common.ServerConfig{
		MemberName:    name,
		ShardID:       common.DefaultSchemaShardID,
		Peers:         peers,
		DataDir:       dataDir,
		TimeoutSecond: 5,
		LogLevel:      "error",
		Transport: common.ServerTransportConfig{
			Endpoint: endpoint,
			TCPConf:  common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		},
	}
	s := NewRPCServer(config, tcp.NewTCPServerTransport(0, 4), tcp.NewTCPClientTransport, serializer.NewBinarySerializer())
	go func() {
		if err := s.Serve(); err != nil {
			t.Errorf("member %s failed: %v", name, err)
		}
	}()
	t.Cleanup(func() { _ = s.Close() })

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", endpoint); err == nil {
			_ = conn.Close()
			return s
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("member %s did not start on %s", name, endpoint)
	return nil
}

// newSchemaService connects a schema service to the member at endpoint
func newSchemaService(t *testing.T, endpoint string, maxRetries int) *schemamgr.Service {
	config := common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			RetryCount:             3,
			Endpoints:              []string{endpoint},
			ConnectionsPerEndpoint: 1,
		},
		Schema: common.SchemaConfig{MaxPutRetries: maxRetries, RetryPauseMillis: 10},
	}
	transport := tcp.NewTCPClientTransport()
	svc, err := client.NewRPCSchemaService(common.DefaultSchemaShardID, config, transport, serializer.NewBinarySerializer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })
	return svc
}

func TestClusterReplication(t *testing.T) {
	a, b := freeEndpoint(t), freeEndpoint(t)
	startMember(t, "a", a, map[string]string{"b": b}, "")
	startMember(t, "b", b, map[string]string{"a": a}, t.TempDir())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	writer := newSchemaService(t, a, 3)
	schema := storetesting.NewTestSchema(t, "point", 3)
	require.NoError(t, writer.Put(ctx, schema))

	cached, ok := writer.GetLocal(schema.ID())
	require.True(t, ok)
	assert.True(t, cached.Equal(schema))

	// a client of the other member learns the schema from the cluster
	reader := newSchemaService(t, b, 3)
	fetched, err := reader.Get(ctx, schema.ID())
	require.NoError(t, err)
	assert.True(t, fetched.Equal(schema))

	_, err = reader.Get(ctx, 12345)
	assert.ErrorIs(t, err, compact.ErrSchemaNotFound)
}

func TestClusterRecordRoundTrip(t *testing.T) {
	a, b := freeEndpoint(t), freeEndpoint(t)
	startMember(t, "a", a, map[string]string{"b": b}, "")
	startMember(t, "b", b, map[string]string{"a": a}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	writer := compact.NewStreamSerializer(newSchemaService(t, a, 3))
	reader := compact.NewStreamSerializer(newSchemaService(t, b, 3))

	rec, err := compact.NewRecordBuilder("employee").
		SetInt32("age", 31).
		SetArrayOfInt64("ids", []int64{1, 2, 3}).
		Build()
	require.NoError(t, err)

	data, err := writer.ToBytes(ctx, rec)
	require.NoError(t, err)

	v, err := reader.FromBytes(ctx, data)
	require.NoError(t, err)
	decoded, ok := v.(*compact.GenericRecord)
	require.True(t, ok)

	age, err := decoded.GetInt32("age")
	require.NoError(t, err)
	assert.Equal(t, int32(31), age)
	ids, err := decoded.GetArrayOfInt64("ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestClusterMissingMember(t *testing.T) {
	a := freeEndpoint(t)
	// b is configured but never started
	startMember(t, "a", a, map[string]string{"b": freeEndpoint(t)}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := newSchemaService(t, a, 2)
	schema := storetesting.NewTestSchema(t, "point", 1)

	err := svc.Put(ctx, schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, compact.ErrSchemaNotReplicated)
	var replErr *schemamgr.ReplicationError
	require.True(t, errors.As(err, &replErr))
	assert.Equal(t, 2, replErr.Attempts)

	_, ok := svc.GetLocal(schema.ID())
	assert.False(t, ok)
}

func TestClusterResendAfterMemberRestart(t *testing.T) {
	endpoint := freeEndpoint(t)
	member := startMember(t, "a", endpoint, nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	svc := newSchemaService(t, endpoint, 3)
	schema := storetesting.NewTestSchema(t, "point", 2)
	require.NoError(t, svc.Put(ctx, schema))

	// the in-memory member forgets everything on restart
	require.NoError(t, member.Close())
	startMember(t, "a", endpoint, nil, "")

	fresh := newSchemaService(t, endpoint, 3)
	assert.Eventually(t, func() bool {
		// any request of the old client restores its connection
		_, _ = svc.Get(ctx, 4242)
		fetched, err := fresh.Get(ctx, schema.ID())
		return err == nil && fetched.Equal(schema)
	}, 10*time.Second, 50*time.Millisecond)
}
