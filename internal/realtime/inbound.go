package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// MaxMessageLength bounds chat content in runes.
const MaxMessageLength = 2000

// Chat message types accepted by send_message.
const (
	MessageTypeOrder   = "order_message"
	MessageTypePrivate = "private_message"
)

// Inbound is a validated client message. The concrete types are the variants below.
type Inbound interface {
	inbound()
}

// Auth repeats the identity the session was opened with.
type Auth struct {
	ActorID kernel.UUID
	Role    kernel.Role
}

type JoinRoom struct {
	Room string
}

type LeaveRoom struct {
	Room string
}

type Heartbeat struct{}

// UpdateLocation is a worker position report.
type UpdateLocation struct {
	Location kernel.Location
}

// SendMessage is a chat line. OrderID is set for order messages, Target for private ones.
type SendMessage struct {
	Type    string
	OrderID kernel.UUID
	Target  kernel.UUID
	Content string
}

func (Auth) inbound()           {}
func (JoinRoom) inbound()       {}
func (LeaveRoom) inbound()      {}
func (Heartbeat) inbound()      {}
func (UpdateLocation) inbound() {}
func (SendMessage) inbound()    {}

type authData struct {
	ActorID string `json:"actorId"`
	Role    string `json:"role"`
}

type roomData struct {
	RoomName string `json:"roomName"`
}

type locationData struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type messageData struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId"`
	Target  string `json:"target"`
	Content string `json:"content"`
}

// Decode parses a raw frame into one of the Inbound variants. Malformed frames,
// unknown events and invalid payloads yield a validation error.
func Decode(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("frame", err)
	}

	switch env.Event {
	case EventAuth:
		var d authData
		if err := unmarshalData(env, &d); err != nil {
			return nil, err
		}
		id, err := kernel.UUIDFromString(d.ActorID)
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("actorId", err)
		}
		role, err := kernel.ParseRole(d.Role)
		if err != nil {
			return nil, err
		}
		return Auth{ActorID: id, Role: role}, nil

	case EventJoinRoom, EventLeaveRoom:
		var d roomData
		if err := unmarshalData(env, &d); err != nil {
			return nil, err
		}
		room := strings.TrimSpace(d.RoomName)
		if room == "" {
			return nil, errs.NewValueIsRequiredError("roomName")
		}
		if env.Event == EventJoinRoom {
			return JoinRoom{Room: room}, nil
		}
		return LeaveRoom{Room: room}, nil

	case EventHeartbeat:
		return Heartbeat{}, nil

	case EventUpdateLocation:
		var d locationData
		if err := unmarshalData(env, &d); err != nil {
			return nil, err
		}
		if d.Latitude == nil || d.Longitude == nil {
			return nil, errs.NewValueIsRequiredError("latitude/longitude")
		}
		loc, err := kernel.NewLocation(*d.Latitude, *d.Longitude)
		if err != nil {
			return nil, err
		}
		return UpdateLocation{Location: loc}, nil

	case EventSendMessage:
		var d messageData
		if err := unmarshalData(env, &d); err != nil {
			return nil, err
		}
		return decodeMessage(d)

	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("unsupported event %q", env.Event))
	}
}

func decodeMessage(d messageData) (SendMessage, error) {
	content := strings.TrimSpace(d.Content)
	if content == "" {
		return SendMessage{}, errs.NewValueIsRequiredError("content")
	}
	if n := utf8.RuneCountInString(content); n > MaxMessageLength {
		return SendMessage{}, errs.NewValueIsOutOfRangeError("content", n, 1, MaxMessageLength)
	}

	msg := SendMessage{Type: d.Type, Content: content}
	switch d.Type {
	case MessageTypeOrder:
		id, err := kernel.UUIDFromString(d.OrderID)
		if err != nil {
			return SendMessage{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
		}
		msg.OrderID = id
	case MessageTypePrivate:
		id, err := kernel.UUIDFromString(d.Target)
		if err != nil {
			return SendMessage{}, errs.NewValueIsRequiredErrorWithCause("target", err)
		}
		msg.Target = id
	default:
		return SendMessage{}, errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("unsupported message type %q", d.Type))
	}
	return msg, nil
}

func unmarshalData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return errs.NewValueIsRequiredError(string(env.Event) + " data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(string(env.Event)+" data", err)
	}
	return nil
}
