package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/serializer"
	"github.com/ValentinKolb/dGrid/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"io"
	"sort"
	"time"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a shard ID, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func invokeRPCRequest(ctx context.Context, shardId uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	start := time.Now()
	defer requestTimer(req.MsgType).UpdateSince(start)

	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := transport.Send(ctx, shardId, reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC %s - Error: %s", req.MsgType, err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, &RemoteError{Op: req.MsgType, Msg: resp.Err, Code: resp.ErrCode}
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC %s - Unexpected message type: %s, expected %s", req.MsgType, resp.MsgType, req.MsgType)
	}

	return resp, nil
}

// RemoteError is an error reported by a member. Errors that were a
// *compact.Error on the member unwrap to one with the same code, so
// errors.Is(err, compact.ErrSchemaCollision) holds on the client.
type RemoteError struct {
	Op   common.MessageType
	Msg  string
	Code compact.ErrCode
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("RPC %s - Error: %s", e.Op, e.Msg)
}

func (e *RemoteError) Unwrap() error {
	if e.Code == compact.ErrCUnknown {
		return nil
	}
	return compact.NewError(e.Code, e.Msg)
}

// --------------------------------------------------------------------------
// Timing
// --------------------------------------------------------------------------

const timerPrefix = "rpc.client."

// requestTimer returns the round trip timer of a message type
func requestTimer(msgType common.MessageType) gometrics.Timer {
	return gometrics.GetOrRegisterTimer(timerPrefix+msgType.String(), nil)
}

// WriteTimings writes count, mean and p99 round trip time of every message
// type sent so far
func WriteTimings(w io.Writer) {
	type row struct {
		name  string
		timer gometrics.Timer
	}
	var rows []row
	gometrics.DefaultRegistry.Each(func(name string, m interface{}) {
		if t, ok := m.(gometrics.Timer); ok && len(name) > len(timerPrefix) && name[:len(timerPrefix)] == timerPrefix {
			rows = append(rows, row{name[len(timerPrefix):], t})
		}
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	for _, r := range rows {
		snap := r.timer.Snapshot()
		_, _ = fmt.Fprintf(w, "%-16s count=%-6d mean=%-12s p99=%s\n",
			r.name, snap.Count(),
			time.Duration(snap.Mean()).Round(time.Microsecond),
			time.Duration(snap.Percentile(0.99)).Round(time.Microsecond))
	}
}
