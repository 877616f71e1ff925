package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	SchemaID int64  `json:"schemaId,omitempty"` // Used for: Fetch (request)
	Payload  []byte `json:"payload,omitempty"`  // Encoded schemas. Used for: Put, Replicate, PutAll (request), Fetch (response)

	// Response only fields
	Members []uuid.UUID     `json:"members,omitempty"` // Used for: Put, Replicate, Members responses
	Ok      bool            `json:"ok,omitempty"`      // Used for: Fetch response (schema found)
	Err     string          `json:"err,omitempty"`     // Empty if no error, otherwise contains the error message
	ErrCode compact.ErrCode `json:"errCode,omitempty"` // Code of a compact error, so the client can rebuild it

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Name of the sending member for Replicate requests
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSchemaPutRequest creates a new schema put request. The payload holds
// exactly one encoded schema.
func NewSchemaPutRequest(payload []byte) *Message {
	return &Message{
		MsgType: MsgTSchemaPut,
		Payload: payload,
	}
}

// NewSchemaPutResponse creates a new schema put response listing the members
// that stored the schema
func NewSchemaPutResponse(members []uuid.UUID, err error) *Message {
	msg := &Message{
		MsgType: MsgTSchemaPut,
		Members: members,
	}
	msg.setError(err)
	return msg
}

// NewSchemaReplicateRequest creates a new member to member replication request
func NewSchemaReplicateRequest(payload []byte, origin string) *Message {
	return &Message{
		MsgType: MsgTSchemaReplicate,
		Payload: payload,
		Meta:    []byte(origin),
	}
}

// NewSchemaReplicateResponse creates a new replication response carrying the
// id of the member that stored the schema
func NewSchemaReplicateResponse(member uuid.UUID, err error) *Message {
	msg := &Message{
		MsgType: MsgTSchemaReplicate,
	}
	if err != nil {
		msg.setError(err)
	} else {
		msg.Members = []uuid.UUID{member}
	}
	return msg
}

// NewSchemaFetchRequest creates a new schema fetch request
func NewSchemaFetchRequest(schemaId int64) *Message {
	return &Message{
		MsgType:  MsgTSchemaFetch,
		SchemaID: schemaId,
	}
}

// NewSchemaFetchResponse creates a new schema fetch response
func NewSchemaFetchResponse(payload []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTSchemaFetch,
		Payload: payload,
		Ok:      ok,
	}
	msg.setError(err)
	return msg
}

// NewSchemaPutAllRequest creates a new request that sends many schemas at once
func NewSchemaPutAllRequest(payload []byte) *Message {
	return &Message{
		MsgType: MsgTSchemaPutAll,
		Payload: payload,
	}
}

// NewSchemaPutAllResponse creates a new put all response
func NewSchemaPutAllResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTSchemaPutAll,
	}
	msg.setError(err)
	return msg
}

// NewMembersRequest creates a new membership request
func NewMembersRequest() *Message {
	return &Message{
		MsgType: MsgTMembers,
	}
}

// NewMembersResponse creates a new membership response
func NewMembersResponse(members []uuid.UUID, err error) *Message {
	msg := &Message{
		MsgType: MsgTMembers,
		Members: members,
	}
	msg.setError(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// setError stores err in the message. The code of a *compact.Error anywhere
// in the chain travels along.
func (m *Message) setError(err error) {
	if err == nil {
		return
	}
	m.Err = err.Error()
	var ce *compact.Error
	if errors.As(err, &ce) {
		m.ErrCode = ce.Code
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTSchemaPut:
		return "schemaPut"
	case MsgTSchemaReplicate:
		return "schemaReplicate"
	case MsgTSchemaFetch:
		return "schemaFetch"
	case MsgTSchemaPutAll:
		return "schemaPutAll"
	case MsgTMembers:
		return "members"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "schemaPut":
		*t = MsgTSchemaPut
	case "schemaReplicate":
		*t = MsgTSchemaReplicate
	case "schemaFetch":
		*t = MsgTSchemaFetch
	case "schemaPutAll":
		*t = MsgTSchemaPutAll
	case "members":
		*t = MsgTMembers
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	case "unknown":
		*t = MsgTUnknown
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Schema service operations

	MsgTSchemaPut       // Client sends a schema, answered once all members stored it
	MsgTSchemaReplicate // Member forwards a schema to a peer member
	MsgTSchemaFetch     // Look up a schema by id
	MsgTSchemaPutAll    // Resend all known schemas (after reconnect)

	// Cluster operations

	MsgTMembers // List the ids of all cluster members
)
