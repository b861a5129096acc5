package application

import "context"

// TxRunner runs fn atomically. Repository calls made with the ctx passed to
// fn join the transaction.
type TxRunner interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher sends integration events. It never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key, eventType string, data interface{})
}

// AnswerCache remembers generated chat answers.
type AnswerCache interface {
	Get(ctx context.Context, question string) (string, bool, error)
	Set(ctx context.Context, question, answer string) error
}

// TextGenerator produces a free-form answer for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
