/*
Package message defines the notification record delivered by the upstream
mail server and the closed set of event kinds it may carry.

An Event is one of twelve symbolic kinds (FlagsClear through MessageTrash).
Names are parsed case-insensitively from the wire and the config file, and
always rendered with their canonical casing. A Message couples an event kind
with the user it concerns, the unseen count, folder, and optional from and
snippet fields, plus the source address stamped by the front end.

Messages are immutable after construction and shared by pointer between the
front end and every matching handler slot.

# Usage

	msg, err := message.Decode(body)
	if err != nil {
		// 400 to the caller
	}
	msg.RemoteAddr = remote

	kind, err := message.ParseEvent("messagenew") // message.MessageNew
*/
package message
