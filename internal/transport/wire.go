package transport

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

// MessageType discriminates wire messages
type MessageType string

const (
	MessageHandshake      MessageType = "handshake"
	MessageHandshakeReply MessageType = "handshake-reply"
	MessageCall           MessageType = "call"
	MessageReply          MessageType = "reply"
)

// Message is the single wire frame exchanged with the frame
type Message struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Methods []string        `json:"methods,omitempty"`
	Args    *types.Request  `json:"args,omitempty"`
	Result  *types.Envelope `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Encode serializes a message
func Encode(msg *Message) ([]byte, error) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	return data, nil
}

// Decode parses a message
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to decode message: missing type")
	}
	return &msg, nil
}

// NewCall builds a call message
func NewCall(callID, method string, req types.Request) *Message {
	return &Message{Type: MessageCall, ID: callID, Method: method, Args: &req}
}

// RemoteCallError is a rejection of the remote call itself
type RemoteCallError struct {
	Method  string
	Message string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Method, e.Message)
}

// ReplyEnvelope extracts the result of a reply to method.
// A reply with an error becomes a *RemoteCallError.
func ReplyEnvelope(method string, reply *Message) (types.Envelope, error) {
	if reply.Type != MessageReply {
		return types.Envelope{}, fmt.Errorf("%w: %s", ErrUnexpectedReply, reply.Type)
	}
	if reply.Error != "" {
		return types.Envelope{}, &RemoteCallError{Method: method, Message: reply.Error}
	}
	if reply.Result == nil {
		return types.Envelope{}, fmt.Errorf("%w: reply to %s has no result", ErrUnexpectedReply, method)
	}
	return *reply.Result, nil
}

// NewHandshake builds a handshake message
func NewHandshake(connID string) *Message {
	return &Message{Type: MessageHandshake, ID: connID}
}

// CheckHandshakeReply verifies reply answers a handshake and advertises
// every required method
func CheckHandshakeReply(reply *Message) error {
	if reply.Type != MessageHandshakeReply {
		return fmt.Errorf("%w: %s", ErrUnexpectedReply, reply.Type)
	}
	if reply.Error != "" {
		return fmt.Errorf("handshake refused: %s", reply.Error)
	}
	return CheckMethods(reply.Methods)
}
