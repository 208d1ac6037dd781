package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseEvent tests case-insensitive event kind parsing
func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Event
		wantErr bool
	}{
		{
			name:  "canonical casing",
			input: "MessageNew",
			want:  MessageNew,
		},
		{
			name:  "lower case",
			input: "messagenew",
			want:  MessageNew,
		},
		{
			name:  "upper case",
			input: "MAILBOXRENAME",
			want:  MailboxRename,
		},
		{
			name:  "mixed case",
			input: "fLaGsClEaR",
			want:  FlagsClear,
		},
		{
			name:    "unknown kind",
			input:   "MessageBounce",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvent(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEventString verifies every kind renders with canonical casing
func TestEventString(t *testing.T) {
	want := []string{
		"FlagsClear", "FlagsSet", "MailboxCreate", "MailboxDelete",
		"MailboxRename", "MailboxSubscribe", "MailboxUnsubscribe",
		"MessageAppend", "MessageExpunge", "MessageNew", "MessageRead",
		"MessageTrash",
	}
	for i, name := range want {
		assert.Equal(t, name, Event(i).String())
	}
}

// TestEventRoundTrip verifies parse(render(e)) == e for every kind
func TestEventRoundTrip(t *testing.T) {
	for i := range eventNames {
		e := Event(i)
		got, err := ParseEvent(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
}

// TestDecode tests wire payload decoding
func TestDecode(t *testing.T) {
	body := []byte(`{"event":"messageNew","user":"freaky","unseen":3,"folder":"INBOX","from":"a@example.com","snippet":"hello"}`)

	msg, err := Decode(body)
	require.NoError(t, err)

	assert.Equal(t, MessageNew, msg.Event)
	assert.Equal(t, "freaky", msg.User)
	assert.Equal(t, uint32(3), msg.Unseen)
	assert.Equal(t, "INBOX", msg.Folder)
	assert.Equal(t, "a@example.com", msg.From)
	assert.Equal(t, "hello", msg.Snippet)
	assert.False(t, msg.RemoteAddr.IsValid())
}

// TestDecodeOptionalFields tests that from and snippet may be absent
func TestDecodeOptionalFields(t *testing.T) {
	body := []byte(`{"event":"MessageExpunge","user":"veron","unseen":0,"folder":"Trash"}`)

	msg, err := Decode(body)
	require.NoError(t, err)

	assert.Equal(t, MessageExpunge, msg.Event)
	assert.Empty(t, msg.From)
	assert.Empty(t, msg.Snippet)
}

// TestDecodeErrors tests rejected payloads
func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "not json",
			body: `not json`,
		},
		{
			name: "unknown event kind",
			body: `{"event":"CalendarUpdate","user":"freaky","unseen":0,"folder":"INBOX"}`,
		},
		{
			name: "missing user",
			body: `{"event":"MessageNew","unseen":0,"folder":"INBOX"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

// TestEventMarshalJSON verifies canonical casing survives re-encoding
func TestEventMarshalJSON(t *testing.T) {
	data, err := json.Marshal(MailboxUnsubscribe)
	require.NoError(t, err)
	assert.Equal(t, `"MailboxUnsubscribe"`, string(data))
}
