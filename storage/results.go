package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tcg-tournaments/models"
	"github.com/gosimple/slug"
)

const resultsContentType = "application/json"

type ResultEntry struct {
	Position int    `json:"position"`
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname,omitempty"`
	Points   int    `json:"points"`
}

// ResultsSnapshot is the public document written when a tournament completes.
type ResultsSnapshot struct {
	TournamentID string        `json:"tournament_id"`
	StoreID      string        `json:"store_id"`
	Name         string        `json:"name"`
	Game         string        `json:"game"`
	Format       string        `json:"format"`
	StartDate    string        `json:"start_date"`
	CompletedAt  time.Time     `json:"completed_at"`
	Results      []ResultEntry `json:"results"`
}

type ResultsPublisher struct {
	uploader FileUploader
}

func NewResultsPublisher(uploader FileUploader) *ResultsPublisher {
	return &ResultsPublisher{uploader: uploader}
}

// ResultsKey builds a readable, unique object key for a tournament's results.
func ResultsKey(t *models.Tournament) string {
	return fmt.Sprintf("results/%s/%s-%s-%s.json",
		t.StoreID.String(), t.StartDate.String(), slug.Make(t.Name), t.ID.String()[:8])
}

// Publish uploads the results of a completed tournament and returns the public URL.
// nicknames maps player ids to display names and may be nil.
func (p *ResultsPublisher) Publish(ctx context.Context, t *models.Tournament, nicknames map[string]string, completedAt time.Time) (string, error) {
	snapshot := ResultsSnapshot{
		TournamentID: t.ID.String(),
		StoreID:      t.StoreID.String(),
		Name:         t.Name,
		Game:         string(t.Game),
		Format:       string(t.Format),
		StartDate:    t.StartDate.String(),
		CompletedAt:  completedAt.UTC(),
		Results:      make([]ResultEntry, 0, len(t.Results)),
	}
	for _, r := range t.Results {
		id := r.PlayerID.String()
		snapshot.Results = append(snapshot.Results, ResultEntry{
			Position: r.Position,
			PlayerID: id,
			Nickname: nicknames[id],
			Points:   r.Points,
		})
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode results snapshot: %w", err)
	}
	res, err := p.uploader.Upload(ctx, ResultsKey(t), resultsContentType, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return res.Location, nil
}
