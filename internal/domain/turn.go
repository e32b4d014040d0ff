package domain

// Turn roles as sent by clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is a single conversation message. The query path reads only the
// content of the latest turn to form the retrieval query; the full sequence
// is forwarded to the generative model as history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LatestContent returns the content of the last turn, or "" for an empty
// sequence.
func LatestContent(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	return turns[len(turns)-1].Content
}
