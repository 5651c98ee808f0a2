package ranking

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func players(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestAssemblePodiumFirst(t *testing.T) {
	p := players(5)
	// Podium picks the fourth and second listed players.
	results, err := Assemble(p, Input{Mode: ModePodium, Podium: []uuid.UUID{p[3], p[1]}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	wantOrder := []uuid.UUID{p[3], p[1], p[0], p[2], p[4]}
	wantPoints := []int{5, 4, 3, 2, 1}
	if len(results) != len(wantOrder) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(wantOrder))
	}
	for i, r := range results {
		if r.Position != i+1 {
			t.Fatalf("results[%d].Position = %d, want %d", i, r.Position, i+1)
		}
		if r.PlayerID != wantOrder[i] {
			t.Fatalf("results[%d].PlayerID = %s, want %s", i, r.PlayerID, wantOrder[i])
		}
		if r.Points != wantPoints[i] {
			t.Fatalf("results[%d].Points = %d, want %d", i, r.Points, wantPoints[i])
		}
	}
	if err := Validate(results); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAssemblePodiumSkipsEmptySlots(t *testing.T) {
	p := players(3)
	results, err := Assemble(p, Input{Mode: ModePodium, Podium: []uuid.UUID{uuid.Nil, p[2], uuid.Nil}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if results[0].PlayerID != p[2] || results[1].PlayerID != p[0] || results[2].PlayerID != p[1] {
		t.Fatalf("unexpected order: %+v", results)
	}
}

func TestAssembleFullOrder(t *testing.T) {
	p := players(4)
	order := []uuid.UUID{p[2], p[0], p[3], p[1]}
	results, err := Assemble(p, Input{Mode: ModeFullOrder, Order: order})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for i, r := range results {
		if r.PlayerID != order[i] || r.Points != 4-i {
			t.Fatalf("results[%d] = %+v", i, r)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	p := players(4)
	stranger := uuid.New()

	tests := []struct {
		name     string
		eligible []uuid.UUID
		in       Input
		want     error
	}{
		{"no eligible participants", nil, Input{Mode: ModePodium}, ErrNoEligibleParticipants},
		{"duplicate podium entry", p, Input{Mode: ModePodium, Podium: []uuid.UUID{p[0], p[0]}}, ErrDuplicatePodiumEntry},
		{"podium too large", p, Input{Mode: ModePodium, Podium: p}, ErrPodiumTooLarge},
		{"podium stranger", p, Input{Mode: ModePodium, Podium: []uuid.UUID{stranger}}, ErrUnknownParticipant},
		{"full order missing player", p, Input{Mode: ModeFullOrder, Order: p[:3]}, ErrIncompleteOrder},
		{"full order duplicate", p, Input{Mode: ModeFullOrder, Order: []uuid.UUID{p[0], p[1], p[2], p[2]}}, ErrIncompleteOrder},
		{"full order stranger", p, Input{Mode: ModeFullOrder, Order: []uuid.UUID{p[0], p[1], p[2], stranger}}, ErrUnknownParticipant},
		{"unknown mode", p, Input{Mode: "random"}, ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.eligible, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	if got := Points(5, 1); got != 5 {
		t.Fatalf("Points(5, 1) = %d, want 5", got)
	}
	if got := Points(5, 5); got != 1 {
		t.Fatalf("Points(5, 5) = %d, want 1", got)
	}
	if got := Points(5, 7); got != 0 {
		t.Fatalf("Points(5, 7) = %d, want 0", got)
	}
}
