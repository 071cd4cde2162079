// Package journal keeps an append-only record of every intent applied to a
// session, written as zstd-compressed JSON lines.
//
// Each process run opens one file per session. Its first entry (kind
// "open") holds the seed, seats, world and entropy state the session had
// when the run first touched it, so a file can be replayed on its own:
// rebuild the engine from the open entry and dispatch the intent entries in
// sequence. cmd/replay does exactly that.
package journal
