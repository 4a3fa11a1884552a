package usecase

import (
	"strings"

	"finrag/internal/domain"
	"finrag/internal/port"
)

// SystemPrompt anchors the assistant to the retrieved context.
const SystemPrompt = "You are a helpful financial assistant. Use only the context provided."

// FallbackMessage is shown to the user when the completion provider fails.
const FallbackMessage = "Sorry, the assistant is temporarily unavailable."

// Answerer combines retrieval and completion into a question-answering flow.
type Answerer struct {
	retriever    *Retriever
	completer    port.Completer
	contextChars int
}

// NewAnswerer creates an answerer. contextChars caps the joined context passed
// to the completion provider.
func NewAnswerer(retriever *Retriever, completer port.Completer, contextChars int) *Answerer {
	if contextChars <= 0 {
		contextChars = 8000
	}
	return &Answerer{
		retriever:    retriever,
		completer:    completer,
		contextChars: contextChars,
	}
}

// Answer retrieves context visible to the role and asks the completion
// provider. Retrieval and completion failures both degrade to the fallback
// message rather than surfacing a raw error to the user; the error is still
// returned for logging.
func (u *Answerer) Answer(question, role, company string) (string, []domain.ScoredChunk, error) {
	results, err := u.retriever.Retrieve(question, role, company, 0)
	if err != nil {
		return FallbackMessage, nil, err
	}

	context := BuildContext(Contents(results), u.contextChars)

	answer, err := u.completer.Complete(SystemPrompt, context, question)
	if err != nil {
		return FallbackMessage, results, err
	}
	return answer, results, nil
}

// BuildContext joins retrieved contents with blank lines and truncates to the
// character cap. An empty result set yields an explicit placeholder so the
// model knows nothing was found.
func BuildContext(contents []string, maxChars int) string {
	if len(contents) == 0 {
		return "No relevant context found."
	}
	joined := strings.Join(contents, "\n\n")
	if maxChars > 0 && len(joined) > maxChars {
		joined = joined[:maxChars]
	}
	return joined
}
