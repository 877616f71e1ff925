package common

import (
	"fmt"
	"github.com/google/uuid"
	"math"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	// DefaultSchemaShardID is the shard the schema service is registered under
	DefaultSchemaShardID uint64 = 1
	// DefaultMaxPutRetries is the number of attempts to replicate a schema to all members
	DefaultMaxPutRetries = 100
	// DefaultRetryPauseMillis is the pause between two replication attempts
	DefaultRetryPauseMillis = 1000
	// DefaultMaxFrameBytes is the largest frame payload accepted from the wire
	DefaultMaxFrameBytes = 16 << 20
)

// memberNamespace is the name space member ids are derived from
var memberNamespace = uuid.MustParse("6f1c4f7e-4c1b-5d5e-9a5f-0d2c6b1e7a10")

// MemberID derives the stable id of a member from its name
func MemberID(name string) uuid.UUID {
	return uuid.NewSHA1(memberNamespace, []byte(name))
}

// --------------------------------------------------------------------------
// Transport configuration structs
// --------------------------------------------------------------------------

// SocketConf holds the socket buffer settings shared by client and server
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
	// MaxFrameBytes limits the payload of a single frame, 0 selects DefaultMaxFrameBytes
	MaxFrameBytes int
}

// FrameLimit returns the effective frame payload limit
func (c SocketConf) FrameLimit() int {
	if c.MaxFrameBytes <= 0 {
		return DefaultMaxFrameBytes
	}
	return c.MaxFrameBytes
}

// TCPConf holds TCP specific settings shared by client and server
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig configures the client side of the transport layer
type ClientTransportConfig struct {
	RetryCount             int
	Endpoints              []string
	ConnectionsPerEndpoint int
	SocketConf
	TCPConf
}

// ServerTransportConfig configures the server side of the transport layer
type ServerTransportConfig struct {
	Endpoint       string
	WorkersPerConn int
	BufferSize     int
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for a cluster member.
type ServerConfig struct {
	// Identity of this member, the member id is derived from it
	MemberName string

	// ShardID the schema service is served under
	ShardID uint64

	// Peers maps the names of all other members to their RPC endpoints
	Peers map[string]string

	// Storage, an empty DataDir keeps the schemas in memory
	DataDir string

	// timeout for requests and peer replication
	TimeoutSecond int64

	// Admin HTTP api, empty disables it
	AdminEndpoint string

	// Logging configuration
	LogLevel string

	Transport ServerTransportConfig
}

// MemberID returns the id of this member
func (c *ServerConfig) MemberID() uuid.UUID {
	return MemberID(c.MemberName)
}

// PeerNames returns the names of all peers in sorted order
func (c *ServerConfig) PeerNames() []string {
	names := make([]string, 0, len(c.Peers))
	for name := range c.Peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemberIDs returns the ids of all members of the cluster (this member first)
func (c *ServerConfig) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Peers)+1)
	ids = append(ids, c.MemberID())
	for _, name := range c.PeerNames() {
		ids = append(ids, MemberID(name))
	}
	return ids
}

// PeerClientConfig returns the client configuration used to reach the given peer endpoint
func (c *ServerConfig) PeerClientConfig(endpoint string) ClientConfig {
	return ClientConfig{
		TimeoutSecond: int(c.TimeoutSecond),
		Transport: ClientTransportConfig{
			RetryCount:             3,
			Endpoints:              []string{endpoint},
			ConnectionsPerEndpoint: 1,
			SocketConf:             c.Transport.SocketConf,
			TCPConf:                c.Transport.TCPConf,
		},
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Identity
	addSection("Member")
	addField("Name", c.MemberName)
	addField("ID", c.MemberID().String())
	addField("Shard", strconv.FormatUint(c.ShardID, 10))

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.Transport.FrameLimit()))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))

	// Admin
	addSection("Admin")
	if c.AdminEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.AdminEndpoint)
	}

	// Storage
	addSection("Storage")
	if c.DataDir == "" {
		addField("Schema Store", "in memory")
	} else {
		addField("Schema Store", "pebble")
		addField("Data Directory", c.DataDir)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Peers
	addSection("Peers")
	if len(c.Peers) == 0 {
		addField("-", "single member")
	}
	for _, name := range c.PeerNames() {
		addField(name, c.Peers[name])
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// SchemaConfig configures the schema replication of the client
type SchemaConfig struct {
	// MaxPutRetries is the number of attempts to replicate a schema to all members
	MaxPutRetries int
	// RetryPauseMillis is the pause between two attempts
	RetryPauseMillis int
}

type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
	Schema        SchemaConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Conns Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.Transport.FrameLimit()))

	// Schema replication
	addSection("Schema Replication")
	addField("Max Put Retries", strconv.Itoa(c.Schema.MaxPutRetries))
	addField("Retry Pause", fmt.Sprintf("%d ms", c.Schema.RetryPauseMillis))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
