// Package command recognizes operator control tokens in inbound messages.
//
// Control tokens flip the session's human-mode flag and are never treated
// as conversational content: they skip the compliance and intent pipeline
// entirely and are never echoed back to the customer.
package command

import "strings"

// Command is a recognized control command.
type Command string

const (
	// None means the message is ordinary conversational content.
	None Command = ""
	// HumanTakeover pauses the assistant so a human attendant replies.
	HumanTakeover Command = "human_takeover"
	// AIResume hands the conversation back to the assistant.
	AIResume Command = "ai_resume"
)

// Control token surface. Matching is case and whitespace insensitive.
const (
	humanToken  = "#humano"
	resumeToken = "#ia"
)

// Detect reports whether the raw message is exactly a control token.
// Tokens embedded in longer sentences are not commands.
func Detect(raw string) Command {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.Join(strings.Fields(token), "")
	switch token {
	case humanToken:
		return HumanTakeover
	case resumeToken:
		return AIResume
	default:
		return None
	}
}
