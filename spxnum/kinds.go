package spxnum

import "github.com/pkg/errors"

// MessageEventType says which direction a message event recorded: the
// instrumented process sent the message or received it.
type MessageEventType int8

const (
	MessageEventTypeUnspecified MessageEventType = 0
	MessageEventTypeSent        MessageEventType = 1
	MessageEventTypeReceived    MessageEventType = 2
)

func (t MessageEventType) String() string {
	switch t {
	case MessageEventTypeSent:
		return "sent"
	case MessageEventTypeReceived:
		return "received"
	default:
		return "unspecified"
	}
}

// MessageEventTypeString returns the MessageEventType whose String()
// matches s.
func MessageEventTypeString(s string) (MessageEventType, error) {
	switch s {
	case "sent":
		return MessageEventTypeSent, nil
	case "received":
		return MessageEventTypeReceived, nil
	case "unspecified":
		return MessageEventTypeUnspecified, nil
	}
	return MessageEventTypeUnspecified, errors.Errorf("%s does not belong to MessageEventType values", s)
}

// LinkType is the relation a link asserts between this span and the
// linked span's context.  The relation is fixed when the link is
// appended.
type LinkType int8

const (
	LinkTypeUnspecified LinkType = 0
	LinkTypeChild       LinkType = 1 // the linked span is a child of this one
	LinkTypeParent      LinkType = 2 // the linked span is a parent of this one
)

func (t LinkType) String() string {
	switch t {
	case LinkTypeChild:
		return "child-of"
	case LinkTypeParent:
		return "parent-of"
	default:
		return "unspecified"
	}
}

// LinkTypeString returns the LinkType whose String() matches s.
func LinkTypeString(s string) (LinkType, error) {
	switch s {
	case "child-of":
		return LinkTypeChild, nil
	case "parent-of":
		return LinkTypeParent, nil
	case "unspecified":
		return LinkTypeUnspecified, nil
	}
	return LinkTypeUnspecified, errors.Errorf("%s does not belong to LinkType values", s)
}

// SpanKind marks which side of a remote interaction a span describes,
// if any.
type SpanKind int8

const (
	SpanKindUnspecified SpanKind = 0
	SpanKindServer      SpanKind = 1
	SpanKindClient      SpanKind = 2
)

func (k SpanKind) String() string {
	switch k {
	case SpanKindServer:
		return "server"
	case SpanKindClient:
		return "client"
	default:
		return "unspecified"
	}
}

// SpanKindString returns the SpanKind whose String() matches s.
func SpanKindString(s string) (SpanKind, error) {
	switch s {
	case "server":
		return SpanKindServer, nil
	case "client":
		return SpanKindClient, nil
	case "unspecified":
		return SpanKindUnspecified, nil
	}
	return SpanKindUnspecified, errors.Errorf("%s does not belong to SpanKind values", s)
}
