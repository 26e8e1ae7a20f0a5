// Package match starts simulations between two profiles.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/twinsim/pkg/twin"
)

// Validation errors carry the message shown to the user.
var (
	ErrMissingProfile = errors.New("please select two profiles")
	ErrSameProfile    = errors.New("please select two different profiles")
)

// Creator is the subset of twin.Backend needed to start a simulation.
type Creator interface {
	CreateSimulation(ctx context.Context, profile1ID, profile2ID string) (*twin.SimulationCreated, error)
}

// Validate checks a profile pair before anything is sent to the backend.
func Validate(profile1ID, profile2ID string) error {
	p1, p2 := strings.TrimSpace(profile1ID), strings.TrimSpace(profile2ID)
	if p1 == "" || p2 == "" {
		return ErrMissingProfile
	}
	if p1 == p2 {
		return ErrSameProfile
	}
	return nil
}

// Run validates the pair and asks the backend to simulate it.
func Run(ctx context.Context, backend Creator, profile1ID, profile2ID string) (*twin.SimulationCreated, error) {
	if err := Validate(profile1ID, profile2ID); err != nil {
		return nil, err
	}
	created, err := backend.CreateSimulation(ctx, strings.TrimSpace(profile1ID), strings.TrimSpace(profile2ID))
	if err != nil {
		return nil, fmt.Errorf("create simulation: %w", err)
	}
	slog.Info("simulation started", "simulation_id", created.SimulationID, "status", created.Status)
	return created, nil
}
