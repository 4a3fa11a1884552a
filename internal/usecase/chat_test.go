package usecase

import (
	"errors"
	"strings"
	"testing"

	"finrag/internal/domain"
)

type fakeCompleter struct {
	answer      string
	err         error
	gotSystem   string
	gotContext  string
	gotQuestion string
}

func (f *fakeCompleter) Complete(system, context, question string) (string, error) {
	f.gotSystem = system
	f.gotContext = context
	f.gotQuestion = question
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeCompleter) ModelName() string { return "fake" }

func TestAnswerPassesRetrievedContext(t *testing.T) {
	pad := strings.Repeat(" pad", 15)
	s := seedStore(t, []domain.Chunk{
		{Content: "revenue table" + pad, Metadata: domain.Metadata{Roles: []string{"ceo"}, Company: "Acme"}},
	})
	retriever := NewRetriever(s, &fakeEmbedder{}, 5)
	completer := &fakeCompleter{answer: "Revenue grew 12%."}
	a := NewAnswerer(retriever, completer, 8000)

	answer, results, err := a.Answer("how did revenue do", "ceo", "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Revenue grew 12%." {
		t.Errorf("unexpected answer %q", answer)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 source chunk, got %d", len(results))
	}
	if completer.gotSystem != SystemPrompt {
		t.Errorf("system prompt not forwarded: %q", completer.gotSystem)
	}
	if !strings.Contains(completer.gotContext, "revenue table") {
		t.Errorf("retrieved chunk missing from context: %q", completer.gotContext)
	}
	if completer.gotQuestion != "how did revenue do" {
		t.Errorf("question not forwarded: %q", completer.gotQuestion)
	}
}

func TestAnswerFallsBackOnCompleterFailure(t *testing.T) {
	pad := strings.Repeat(" pad", 15)
	s := seedStore(t, []domain.Chunk{
		{Content: "margin table" + pad, Metadata: domain.Metadata{Roles: []string{"ceo"}}},
	})
	retriever := NewRetriever(s, &fakeEmbedder{}, 5)
	completer := &fakeCompleter{err: errors.New("upstream 503")}
	a := NewAnswerer(retriever, completer, 8000)

	answer, _, err := a.Answer("question", "ceo", "")
	if err == nil {
		t.Fatal("expected error to surface for logging")
	}
	if answer != FallbackMessage {
		t.Errorf("expected fallback message, got %q", answer)
	}
}

func TestAnswerEmptyCorpusStillAsksModel(t *testing.T) {
	s := seedStore(t, nil)
	retriever := NewRetriever(s, &fakeEmbedder{}, 5)
	completer := &fakeCompleter{answer: "I have no data on that."}
	a := NewAnswerer(retriever, completer, 8000)

	answer, _, err := a.Answer("question", "ceo", "")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "I have no data on that." {
		t.Errorf("unexpected answer %q", answer)
	}
	if completer.gotContext != "No relevant context found." {
		t.Errorf("expected placeholder context, got %q", completer.gotContext)
	}
}

func TestBuildContextTruncates(t *testing.T) {
	long := strings.Repeat("z", 9000)
	got := BuildContext([]string{long}, 8000)
	if len(got) != 8000 {
		t.Errorf("context length %d, want 8000", len(got))
	}

	joined := BuildContext([]string{"one", "two"}, 8000)
	if joined != "one\n\ntwo" {
		t.Errorf("unexpected join: %q", joined)
	}
}
