package domain

import (
	"context"

	"dadhumor/internal/core/envelope"
	"dadhumor/internal/core/joke"
)

// ContentSource loads the joke batch for a dataset
type ContentSource interface {
	Fetch(ctx context.Context, datasetID int) (joke.Batch, error)
}

// Credentials issues the bearer token used by every delivery of a run
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// Gateway delivers one composed message
type Gateway interface {
	Send(ctx context.Context, projectID, token string, msg envelope.Message) error
}

// DispatcherPort runs one fetch and fan-out cycle
type DispatcherPort interface {
	Run(ctx context.Context, p Params) (Result, error)
}
