package pumproom

import (
	"bytes"
	"encoding/json"
)

// ServiceName is the service discriminator carried by every protocol
// envelope. Messages with any other service value are not protocol messages
// and are silently ignored.
const ServiceName = "pumproom"

// MessageType discriminates protocol messages. The set is closed: the router
// treats any other value as a no-op.
type MessageType string

// The protocol message types.
const (
	MessageGetEnvironment   MessageType = "getEnvironment"
	MessageSetEnvironment   MessageType = "setEnvironment"
	MessageToggleFullscreen MessageType = "toggleFullscreen"
	MessageSetUser          MessageType = "setPumpRoomUser"
	MessageGetUser          MessageType = "getPumpRoomUser"
	MessageSetPrompt        MessageType = "setPrompt"
	MessageGetStatus        MessageType = "getStatus"
	MessageReportStatus     MessageType = "reportStatus"
	MessageTaskLoaded       MessageType = "onTaskLoaded"
	MessageTaskSubmitted    MessageType = "onTaskSubmitted"
	MessageResultReady      MessageType = "onResultReady"
)

// Envelope is the wire form of a protocol message.
type Envelope struct {
	Service string          `json:"service"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds an envelope for the given type, marshaling payload.
// A nil payload produces an envelope without one.
func NewEnvelope(messageType MessageType, payload interface{}) (Envelope, error) {
	env := Envelope{Service: ServiceName, Type: messageType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, err
		}
		env.Payload = data
	}
	return env, nil
}

// PromptParameters is the payload of a setPrompt message.
type PromptParameters struct {
	Content string `json:"content"`
}

// StatusReport is the payload of a reportStatus message.
type StatusReport struct {
	Status TaskStatus `json:"status"`
}

// Message is a validated, decoded protocol message: a tagged union over the
// closed message-type set. Exactly the arm matching Type is populated;
// payload shapes are validated once here and never re-checked downstream.
type Message struct {
	Type MessageType

	Instance      *InstanceContext      // getEnvironment
	Environment   *Environment          // setEnvironment
	Fullscreen    *FullscreenParameters // toggleFullscreen
	User          *User                 // setPumpRoomUser
	Prompt        *PromptParameters     // setPrompt
	Status        *StatusReport         // reportStatus
	TaskLoaded    *LoadedTaskData       // onTaskLoaded
	TaskSubmitted *LoadedTaskData       // onTaskSubmitted
	Result        *ResultData           // onResultReady
}

// ParseMessage validates raw bytes against the protocol contract and decodes
// the payload for the message type. It returns nil unless all of the
// following hold: the data is a JSON object, service equals "pumproom", and
// type is a non-empty string. When expected is non-empty the type must match
// it exactly. Payloads that fail to decode for their type also yield nil.
//
// A nil return is the only signal for rejection; malformed input never
// produces an error.
func ParseMessage(raw []byte, expected MessageType) *Message {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	if env.Service != ServiceName || env.Type == "" {
		return nil
	}
	if expected != "" && env.Type != expected {
		return nil
	}

	msg := &Message{Type: env.Type}
	if err := decodePayload(msg, env.Payload); err != nil {
		return nil
	}
	return msg
}

// decodePayload fills the union arm for the message type. Unknown types
// carry no payload arm and always decode successfully.
func decodePayload(msg *Message, payload json.RawMessage) error {
	switch msg.Type {
	case MessageGetEnvironment:
		msg.Instance = &InstanceContext{}
		return unmarshalPayload(payload, msg.Instance)
	case MessageSetEnvironment:
		msg.Environment = &Environment{}
		return unmarshalPayload(payload, msg.Environment)
	case MessageToggleFullscreen:
		msg.Fullscreen = &FullscreenParameters{}
		return unmarshalPayload(payload, msg.Fullscreen)
	case MessageSetUser:
		msg.User = &User{}
		return unmarshalPayload(payload, msg.User)
	case MessageSetPrompt:
		msg.Prompt = &PromptParameters{}
		return unmarshalPayload(payload, msg.Prompt)
	case MessageReportStatus:
		msg.Status = &StatusReport{}
		return unmarshalPayload(payload, msg.Status)
	case MessageTaskLoaded:
		msg.TaskLoaded = &LoadedTaskData{}
		return unmarshalPayload(payload, msg.TaskLoaded)
	case MessageTaskSubmitted:
		msg.TaskSubmitted = &LoadedTaskData{}
		return unmarshalPayload(payload, msg.TaskSubmitted)
	case MessageResultReady:
		msg.Result = &ResultData{}
		return unmarshalPayload(payload, msg.Result)
	}
	// getPumpRoomUser, getStatus and unknown types carry no payload.
	return nil
}

func unmarshalPayload(payload json.RawMessage, dest interface{}) error {
	if len(payload) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return nil
	}
	return json.Unmarshal(payload, dest)
}
