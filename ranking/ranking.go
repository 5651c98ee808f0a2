// Package ranking turns operator input into the final standings of a tournament.
package ranking

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/google/uuid"
)

// PodiumSize is the number of places an operator may pick explicitly.
const PodiumSize = 3

var (
	ErrNoEligibleParticipants = errors.New("no eligible participants to rank")
	ErrDuplicatePodiumEntry   = errors.New("the same player appears more than once on the podium")
	ErrPodiumTooLarge         = errors.New("podium accepts at most three players")
	ErrUnknownParticipant     = errors.New("player is not an eligible participant")
	ErrIncompleteOrder        = errors.New("ranking must list every eligible participant exactly once")
	ErrUnknownMode            = errors.New("unknown ranking mode")
)

type Mode string

const (
	// ModeFullOrder: the operator supplies the complete order.
	ModeFullOrder Mode = "full_order"
	// ModePodium: up to three places, the rest keep display order.
	ModePodium Mode = "podium"
)

// Input is the operator-supplied ranking.
type Input struct {
	Mode   Mode        `json:"mode" validate:"required,oneof=full_order podium"`
	Order  []uuid.UUID `json:"order,omitempty"`
	Podium []uuid.UUID `json:"podium,omitempty"`
}

// Points awarded to position among n ranked players.
func Points(n, position int) int {
	return max(0, n-(position-1))
}

// Assemble validates in against the eligible players (in display order) and
// returns positions 1..n with points.
func Assemble(eligible []uuid.UUID, in Input) (models.TournamentResults, error) {
	n := len(eligible)
	if n == 0 {
		return nil, ErrNoEligibleParticipants
	}

	known := make(map[uuid.UUID]bool, n)
	for _, id := range eligible {
		known[id] = true
	}

	var order []uuid.UUID
	var err error
	switch in.Mode {
	case ModeFullOrder:
		order, err = fullOrder(known, in.Order)
	case ModePodium:
		order, err = podiumFirst(eligible, known, in.Podium)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, in.Mode)
	}
	if err != nil {
		return nil, err
	}

	results := make(models.TournamentResults, len(order))
	for i, id := range order {
		pos := i + 1
		results[i] = models.TournamentResult{Position: pos, PlayerID: id, Points: Points(n, pos)}
	}
	return results, nil
}

func fullOrder(known map[uuid.UUID]bool, order []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if !known[id] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrIncompleteOrder, id)
		}
		seen[id] = true
	}
	if len(seen) != len(known) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrIncompleteOrder, len(seen), len(known))
	}
	return order, nil
}

func podiumFirst(eligible []uuid.UUID, known map[uuid.UUID]bool, podium []uuid.UUID) ([]uuid.UUID, error) {
	if len(podium) > PodiumSize {
		return nil, ErrPodiumTooLarge
	}

	order := make([]uuid.UUID, 0, len(eligible))
	placed := make(map[uuid.UUID]bool, PodiumSize)
	for _, id := range podium {
		if id == uuid.Nil {
			continue // empty slot
		}
		if placed[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePodiumEntry, id)
		}
		if !known[id] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
		}
		placed[id] = true
		order = append(order, id)
	}

	for _, id := range eligible {
		if !placed[id] {
			order = append(order, id)
		}
	}
	return order, nil
}

// Validate checks that results form a contiguous run of positions 1..n.
func Validate(results models.TournamentResults) error {
	seenPos := make(map[int]bool, len(results))
	seenPlayer := make(map[uuid.UUID]bool, len(results))
	for _, r := range results {
		if r.Position < 1 || r.Position > len(results) || seenPos[r.Position] {
			return fmt.Errorf("%w: invalid position %d", ErrIncompleteOrder, r.Position)
		}
		if seenPlayer[r.PlayerID] {
			return fmt.Errorf("%w: %s ranked twice", ErrIncompleteOrder, r.PlayerID)
		}
		seenPos[r.Position] = true
		seenPlayer[r.PlayerID] = true
	}
	return nil
}
