package twin

import (
	"context"
	"encoding/json"
	"time"
)

// Backend is the simulator service this client talks to. Implementations
// handle transport details; callers never retry on their own.
type Backend interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)

	CreateSimulation(ctx context.Context, profile1ID, profile2ID string) (*SimulationCreated, error)
	ListSimulations(ctx context.Context) ([]SimulationSummary, error)
	// GetSimulation returns the raw record; its shape varies with the
	// simulation's progress and is resolved by the normalize package.
	GetSimulation(ctx context.Context, id string) (json.RawMessage, error)
	DeleteSimulation(ctx context.Context, id string) error

	StartChat(ctx context.Context, profileID, userName string) (*ChatStarted, error)
	SendMessage(ctx context.Context, chatID, message, msgContext string) (*ChatReply, error)
	ChatHistory(ctx context.Context, chatID string) (*ChatHistory, error)
	EndChat(ctx context.Context, chatID string) (*ChatEnded, error)
}

// Config holds connection settings shared by Backend implementations.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}
