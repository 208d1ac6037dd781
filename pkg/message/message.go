package message

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
)

// Event identifies the kind of mail server notification
type Event uint8

const (
	FlagsClear Event = iota
	FlagsSet
	MailboxCreate
	MailboxDelete
	MailboxRename
	MailboxSubscribe
	MailboxUnsubscribe
	MessageAppend
	MessageExpunge
	MessageNew
	MessageRead
	MessageTrash
)

// eventNames holds the canonical rendering of each event kind, indexed
// by the Event value itself.
var eventNames = [...]string{
	FlagsClear:         "FlagsClear",
	FlagsSet:           "FlagsSet",
	MailboxCreate:      "MailboxCreate",
	MailboxDelete:      "MailboxDelete",
	MailboxRename:      "MailboxRename",
	MailboxSubscribe:   "MailboxSubscribe",
	MailboxUnsubscribe: "MailboxUnsubscribe",
	MessageAppend:      "MessageAppend",
	MessageExpunge:     "MessageExpunge",
	MessageNew:         "MessageNew",
	MessageRead:        "MessageRead",
	MessageTrash:       "MessageTrash",
}

// ParseEvent parses an event kind name case-insensitively
func ParseEvent(s string) (Event, error) {
	for i, name := range eventNames {
		if strings.EqualFold(s, name) {
			return Event(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// String returns the canonical casing of the event kind
func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

// MarshalJSON renders the event kind with canonical casing
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON parses an event kind from a JSON string, ignoring case
func (e *Event) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEvent(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// UnmarshalYAML parses an event kind from a YAML scalar, ignoring case
func (e *Event) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseEvent(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Message is one notification received from the upstream mail server.
// It is immutable once constructed; the front end stamps RemoteAddr
// before dispatch and handlers only ever read it.
type Message struct {
	// RemoteAddr is the peer that delivered the notification.
	// Not part of the wire payload; zero when unknown.
	RemoteAddr netip.AddrPort `json:"-"`

	Event   Event  `json:"event"`
	User    string `json:"user"`
	Unseen  uint32 `json:"unseen"`
	Folder  string `json:"folder"`
	From    string `json:"from,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Decode parses the JSON wire payload into a Message. The event kind
// and user are required; remaining fields default to empty.
func Decode(data []byte) (*Message, error) {
	var raw struct {
		Event   *Event `json:"event"`
		User    string `json:"user"`
		Unseen  uint32 `json:"unseen"`
		Folder  string `json:"folder"`
		From    string `json:"from"`
		Snippet string `json:"snippet"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	if raw.Event == nil {
		return nil, fmt.Errorf("message has no event")
	}
	if raw.User == "" {
		return nil, fmt.Errorf("message has no user")
	}
	return &Message{
		Event:   *raw.Event,
		User:    raw.User,
		Unseen:  raw.Unseen,
		Folder:  raw.Folder,
		From:    raw.From,
		Snippet: raw.Snippet,
	}, nil
}
