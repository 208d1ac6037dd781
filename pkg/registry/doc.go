/*
Package registry holds the write-once routing table from (event, user)
keys to handler slots.

The table is a flat ordered sequence scanned in full on every dispatch;
handler counts are tens, not thousands, so O(H) per request is fine and
keeps the useful property that two handlers sharing a key each receive
their own copy of a message through their own slot.

The registry is built once at startup, shared read-only afterwards, and
closed exactly once on shutdown.
*/
package registry
