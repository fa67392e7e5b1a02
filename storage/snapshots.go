package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/Dosada05/championship-draw/draw"
)

const jsonContentType = "application/json"

// SnapshotStore keeps draw sessions as JSON objects in a bucket. It is the
// alternative to the database-backed draw state table.
type SnapshotStore struct {
	objects ObjectStore
	prefix  string
}

var _ draw.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(objects ObjectStore, prefix string) *SnapshotStore {
	if prefix == "" {
		prefix = "draws"
	}
	return &SnapshotStore{objects: objects, prefix: prefix}
}

func (s *SnapshotStore) key(tournamentID string) string {
	return path.Join(s.prefix, tournamentID, "state.json")
}

func (s *SnapshotStore) SaveDrawState(ctx context.Context, tournamentID string, session draw.Session) error {
	body, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode draw state: %w", err)
	}
	if _, err := s.objects.Upload(ctx, s.key(tournamentID), jsonContentType, bytes.NewReader(body)); err != nil {
		return err
	}
	return nil
}

func (s *SnapshotStore) LoadDrawState(ctx context.Context, tournamentID string) (*draw.Session, error) {
	rc, err := s.objects.Download(ctx, s.key(tournamentID))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()

	var session draw.Session
	if err := json.NewDecoder(rc).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode draw state for tournament %s: %w", tournamentID, err)
	}
	return &session, nil
}

func (s *SnapshotStore) DeleteDrawState(ctx context.Context, tournamentID string) error {
	return s.objects.Delete(ctx, s.key(tournamentID))
}

// PublishBracket uploads the final bracket as a public JSON document and
// returns its URL, which is empty when the bucket has no public base URL.
func (s *SnapshotStore) PublishBracket(ctx context.Context, tournamentID string, rounds []draw.RoundPayload) (string, error) {
	body, err := json.Marshal(struct {
		TournamentID string              `json:"tournamentId"`
		Bracket      []draw.RoundPayload `json:"bracket"`
	}{tournamentID, rounds})
	if err != nil {
		return "", fmt.Errorf("failed to encode bracket: %w", err)
	}
	res, err := s.objects.Upload(ctx, path.Join(s.prefix, tournamentID, "bracket.json"), jsonContentType, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return res.Location, nil
}
