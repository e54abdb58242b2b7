package conversation

import (
	"fmt"

	"github.com/IGRA27/conversations-api-cloudant/internal/models"
)

// ValidationError reports a request body that cannot yield any messages.
// Handlers map it to an unprocessable-request response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Turn is a raw conversational exchange as produced by the agent: an optional
// user utterance followed by an optional assistant utterance.
type Turn struct {
	UserUtterance      string `json:"user_utterance"`
	AssistantUtterance string `json:"assistant_utterance"`
}

// Normalize converts either accepted input shape into the canonical ordered
// message sequence. When both shapes are supplied, session_history takes
// precedence and messages is ignored; that is a documented policy, not an
// error. Neither shape present, or a shape that yields no messages, is a
// ValidationError.
func Normalize(messages []models.Message, history []Turn) ([]models.Message, error) {
	if len(history) > 0 {
		out := make([]models.Message, 0, len(history)*2)
		for _, turn := range history {
			if turn.UserUtterance != "" {
				out = append(out, models.Message{Role: models.RoleUser, Text: turn.UserUtterance})
			}
			if turn.AssistantUtterance != "" {
				out = append(out, models.Message{Role: models.RoleAssistant, Text: turn.AssistantUtterance})
			}
		}
		if len(out) == 0 {
			return nil, &ValidationError{Reason: "messages or session_history required"}
		}
		return out, nil
	}

	if len(messages) > 0 {
		for _, m := range messages {
			if !m.Role.Valid() {
				return nil, &ValidationError{Reason: fmt.Sprintf("invalid message type %q", m.Role)}
			}
		}
		return messages, nil
	}

	return nil, &ValidationError{Reason: "messages or session_history required"}
}
