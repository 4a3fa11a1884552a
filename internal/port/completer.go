package port

// Completer is a remote chat-completion service. It is treated as a pure
// function: no side effects are visible to the caller beyond the returned
// text.
type Completer interface {
	// Complete sends a system instruction, a context block and a question,
	// and returns the generated answer verbatim.
	Complete(system, context, question string) (string, error)

	// ModelName returns the name of the completion model.
	ModelName() string
}
