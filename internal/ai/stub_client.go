package ai

import "context"

var _ Completer = (*StubCompleter)(nil)

// StubCompleter заглушка, которая не делает реальных запросов
type StubCompleter struct {
	Answer string
}

func NewStubCompleter(answer string) *StubCompleter {
	if answer == "" {
		answer = "запрос получен"
	}
	return &StubCompleter{Answer: answer}
}

func (c *StubCompleter) Complete(_ context.Context, _ []Message, _ Params) ([]string, error) {
	return []string{c.Answer}, nil
}
