package agent

import (
	"strings"

	"github.com/tournaija/tournaija/internal/llm"
)

// Conversation is the ordered, session-local list of turns. It is owned by one
// session and discarded when the session ends.
type Conversation []llm.Message

// Append returns a new conversation with msgs added; c is not modified.
func (c Conversation) Append(msgs ...llm.Message) Conversation {
	out := make(Conversation, 0, len(c)+len(msgs))
	out = append(out, c...)
	return append(out, msgs...)
}

// String serializes the conversation for inclusion in a prompt.
func (c Conversation) String() string {
	if len(c) == 0 {
		return noHistory
	}
	var sb strings.Builder
	for _, m := range c {
		switch m.Role {
		case llm.RoleTool:
			for _, r := range m.ToolResults {
				sb.WriteString("tool (" + r.Name + "): " + string(r.Content) + "\n")
			}
		default:
			text := strings.TrimSpace(m.Text)
			if text == "" && len(m.ToolCalls) > 0 {
				names := make([]string, len(m.ToolCalls))
				for i, tc := range m.ToolCalls {
					names[i] = tc.Name
				}
				text = "[called " + strings.Join(names, ", ") + "]"
			}
			if text == "" {
				continue
			}
			sb.WriteString(string(m.Role) + ": " + text + "\n")
		}
	}
	if sb.Len() == 0 {
		return noHistory
	}
	return strings.TrimRight(sb.String(), "\n")
}

const noHistory = "No history yet."
