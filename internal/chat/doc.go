// Package chat implements the conversational front-end of the meeting
// assistant.
//
// A turn flows through three stages: intent detection over the free-text
// input, slot extraction and filling (re-prompting for anything required
// that is still missing), and finally a call against the scheduling API
// whose result is rendered back as a chat message.
//
// Conversation state lives in per-session drafts held by a Store. A draft
// remembers which question the assistant asked last, so a bare answer like
// "jane@example.com" lands in the right field on the next turn. Idle
// sessions are expired in the background.
package chat
