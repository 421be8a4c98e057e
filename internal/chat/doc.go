// Package chat holds the dashboard's assistant conversation.
//
// A Session keeps a bounded transcript and forwards each user message to a
// Replier: the remote chat backend when one is configured, or the built-in
// Scripted replier otherwise. A failed reply is reported as ErrNoReply and
// leaves no bot message in the transcript.
package chat
