package tcp

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/transport"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// freeEndpoint returns a local endpoint that was free a moment ago
func freeEndpoint(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

// startEchoServer starts a server that answers with shard id and request
func startEchoServer(t *testing.T) string {
	endpoint := freeEndpoint(t)
	startEchoServerOn(t, endpoint)
	return endpoint
}

// startEchoServerOn starts an echo server on endpoint and returns it
func startEchoServerOn(t *testing.T, endpoint string) transport.IRPCServerTransport {
	server := NewTCPServerTransport(0, 4)
	server.RegisterHandler(func(shardId uint64, req []byte) []byte {
		return append([]byte(fmt.Sprintf("%d:", shardId)), req...)
	})

	cfg := common.ServerConfig{
		TimeoutSecond: 5,
		Transport: common.ServerTransportConfig{
			Endpoint: endpoint,
			TCPConf:  common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		},
	}
	go func() {
		if err := server.Listen(cfg); err != nil {
			t.Errorf("listen failed: %v", err)
		}
	}()
	t.Cleanup(func() { _ = server.Close() })

	// wait until the server accepts connections
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", endpoint); err == nil {
			_ = conn.Close()
			return server
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server did not start on %s", endpoint)
	return nil
}

func clientConfig(endpoint string) common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			RetryCount:             2,
			Endpoints:              []string{endpoint},
			ConnectionsPerEndpoint: 2,
			TCPConf:                common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		},
	}
}

func TestTCPRoundTrip(t *testing.T) {
	endpoint := startEchoServer(t)

	client := NewTCPClientTransport()
	if err := client.Connect(clientConfig(endpoint)); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := fmt.Sprintf("req-%d", i)
			resp, err := client.Send(context.Background(), uint64(i%3), []byte(req))
			if err != nil {
				t.Errorf("send %d failed: %v", i, err)
				return
			}
			if expected := fmt.Sprintf("%d:%s", i%3, req); string(resp) != expected {
				t.Errorf("got %q, expected %q", resp, expected)
			}
		}(i)
	}
	wg.Wait()
}

func TestTCPConnectNoEndpoint(t *testing.T) {
	client := NewTCPClientTransport()
	if err := client.Connect(common.ClientConfig{}); err == nil {
		t.Errorf("expected error without endpoints")
	}
	if err := client.Connect(clientConfig(freeEndpoint(t))); err == nil {
		t.Errorf("expected error when nothing listens")
	}
}

func TestTCPSendCanceled(t *testing.T) {
	endpoint := startEchoServer(t)

	client := NewTCPClientTransport()
	if err := client.Connect(clientConfig(endpoint)); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Send(ctx, 1, []byte("x")); err == nil {
		t.Errorf("expected error for canceled context")
	}
}

func TestTCPReconnectAfterServerRestart(t *testing.T) {
	endpoint := freeEndpoint(t)
	server := startEchoServerOn(t, endpoint)

	client := NewTCPClientTransport()
	var reconnects atomic.Int32
	client.OnReconnect(func() { reconnects.Add(1) })

	cfg := clientConfig(endpoint)
	cfg.Transport.ConnectionsPerEndpoint = 1
	cfg.Transport.RetryCount = 5
	if err := client.Connect(cfg); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	if _, err := client.Send(context.Background(), 1, []byte("before")); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if reconnects.Load() != 0 {
		t.Fatalf("initial connect must not count as reconnect")
	}

	// closing the server drops the open connection as well
	_ = server.Close()
	startEchoServerOn(t, endpoint)

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := client.Send(context.Background(), 1, []byte("after"))
		if err == nil {
			if string(resp) != "1:after" {
				t.Fatalf("unexpected response %q", resp)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("client did not recover: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	deadline = time.Now().Add(5 * time.Second)
	for reconnects.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("reconnect callback was not called")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTCPRejectsOversizedRequest(t *testing.T) {
	endpoint := startEchoServer(t)

	client := NewTCPClientTransport()
	cfg := clientConfig(endpoint)
	cfg.Transport.MaxFrameBytes = 8
	cfg.Transport.RetryCount = 1
	if err := client.Connect(cfg); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	if _, err := client.Send(context.Background(), 1, make([]byte, 9)); err == nil {
		t.Errorf("expected error for a request above the frame limit")
	}
}
