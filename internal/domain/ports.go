package domain

import "context"

// RecipeSource provides recipes. Implementations can be in-memory,
// file-based or backed by the recipe producer.
type RecipeSource interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*Recipe, error)
}

// SessionStore durably persists session snapshots, one record per
// session ID. Save must not return before the record is committed.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
	Close() error
}

// Classifier turns a free-form utterance into exactly one Command.
// Implementations can be keyword-based or LLM-powered.
type Classifier interface {
	Classify(ctx context.Context, text string, state SessionView) (Command, error)
}

// Responder answers Ask intents. The engine relays the answer unmodified.
type Responder interface {
	Answer(ctx context.Context, question string, state SessionView) (string, error)
}

// Notifier delivers messages to the presentation layer.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
