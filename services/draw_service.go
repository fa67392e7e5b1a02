package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/repositories"
)

// ChannelFactory returns the broadcast channel of a tournament's draw.
type ChannelFactory func(tournamentID string) draw.Channel

// BracketPublisher exports a saved bracket and returns where it can be read.
type BracketPublisher interface {
	PublishBracket(ctx context.Context, tournamentID string, rounds []draw.RoundPayload) (string, error)
}

type DrawService interface {
	Open(ctx context.Context, tournamentID string) (draw.Session, error)
	Start(ctx context.Context, tournamentID string) (draw.Session, error)
	Redraw(ctx context.Context, tournamentID string) (draw.Session, error)
	Save(ctx context.Context, tournamentID string) (*SaveResult, error)
	Close(ctx context.Context, tournamentID string) error
	// Session returns the live session, or the last mirrored snapshot when
	// this process holds no presenter for the tournament.
	Session(ctx context.Context, tournamentID string) (*draw.Session, error)
	// WithSession calls fn with the current session while no event of the
	// draw can be published, so a viewer already in the room can be handed a
	// snapshot that every later frame follows. Without a local presenter fn
	// gets the mirrored snapshot.
	WithSession(ctx context.Context, tournamentID string, fn func(draw.Session)) error
	Bracket(ctx context.Context, tournamentID string) (*BracketView, error)
	IsOpen(tournamentID string) bool
	Shutdown(ctx context.Context)
}

type SaveResult struct {
	Matches   []models.ScheduledMatch `json:"matches"`
	PublicURL string                  `json:"public_url,omitempty"`
}

type DrawServiceConfig struct {
	Teams     repositories.TeamRepository
	Matches   repositories.MatchRepository
	Snapshots draw.SnapshotStore
	Publisher BracketPublisher
	Channels  ChannelFactory
	Scheduler draw.Scheduler
	Timing    draw.Timing
	Observer  draw.Observer
	Rand      *rand.Rand
	Logger    *slog.Logger
}

type drawService struct {
	cfg    DrawServiceConfig
	logger *slog.Logger

	mu         sync.Mutex
	presenters map[string]*draw.Presenter
	opening    map[string]chan struct{}
}

func NewDrawService(cfg DrawServiceConfig) DrawService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Channels == nil {
		cfg.Channels = func(string) draw.Channel { return draw.NewMemoryChannel() }
	}
	return &drawService{
		cfg:        cfg,
		logger:     logger,
		presenters: make(map[string]*draw.Presenter),
		opening:    make(map[string]chan struct{}),
	}
}

// Open fetches the approved pool and starts an idle session. A snapshot left
// by a session that never closed cleanly is cleared and its viewers are told
// the draw ended. Opening an already open draw returns its session.
func (s *drawService) Open(ctx context.Context, tournamentID string) (draw.Session, error) {
	for {
		s.mu.Lock()
		if p, ok := s.presenters[tournamentID]; ok {
			s.mu.Unlock()
			return p.Session(), nil
		}
		pending, busy := s.opening[tournamentID]
		if !busy {
			done := make(chan struct{})
			s.opening[tournamentID] = done
			s.mu.Unlock()
			return s.open(ctx, tournamentID, done)
		}
		s.mu.Unlock()

		// another caller is loading this tournament; take its result
		select {
		case <-pending:
		case <-ctx.Done():
			return draw.Session{}, ctx.Err()
		}
	}
}

// open loads the pool without holding mu so other tournaments are not held
// up, then publishes the presenter and releases the reservation.
func (s *drawService) open(ctx context.Context, tournamentID string, done chan struct{}) (draw.Session, error) {
	var p *draw.Presenter
	defer func() {
		s.mu.Lock()
		delete(s.opening, tournamentID)
		if p != nil {
			s.presenters[tournamentID] = p
		}
		s.mu.Unlock()
		close(done)
	}()

	var (
		pool  []models.Team
		stale *draw.Session
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.cfg.Teams.ListApproved(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load approved teams: %w", err)
		}
		pool = teams
		return nil
	})
	if s.cfg.Snapshots != nil {
		g.Go(func() error {
			snap, err := s.cfg.Snapshots.LoadDrawState(gCtx, tournamentID)
			if err != nil {
				// a missing snapshot never blocks a new draw
				s.logger.Warn("failed to load previous draw state", slog.String("tournament_id", tournamentID), slog.Any("error", err))
				return nil
			}
			stale = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return draw.Session{}, err
	}

	ch := s.cfg.Channels(tournamentID)
	if stale != nil {
		// even an idle snapshot may follow a redraw whose bracket is still on screen
		s.logger.Info("clearing abandoned draw", slog.String("tournament_id", tournamentID), slog.String("phase", string(stale.Phase)))
		if err := ch.Publish(ctx, draw.Event{Type: draw.EventDrawEnd, Payload: draw.DrawEndPayload{}}); err != nil {
			s.logger.Warn("failed to end abandoned draw", slog.Any("error", err))
		}
		if err := s.cfg.Snapshots.DeleteDrawState(ctx, tournamentID); err != nil {
			s.logger.Warn("failed to clear abandoned draw state", slog.Any("error", err))
		}
	}

	p = draw.NewPresenter(draw.PresenterConfig{
		TournamentID: tournamentID,
		Channel:      ch,
		Scheduler:    s.cfg.Scheduler,
		Rand:         s.cfg.Rand,
		Timing:       s.cfg.Timing,
		Snapshots:    s.cfg.Snapshots,
		Observer:     s.cfg.Observer,
		Logger:       s.logger,
	}, pool)

	s.logger.Info("draw session opened", slog.String("tournament_id", tournamentID), slog.Int("pool", len(pool)))
	return p.Session(), nil
}

func (s *drawService) presenter(tournamentID string) (*draw.Presenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presenters[tournamentID]
	if !ok {
		return nil, ErrDrawNotOpen
	}
	return p, nil
}

func (s *drawService) Start(ctx context.Context, tournamentID string) (draw.Session, error) {
	p, err := s.presenter(tournamentID)
	if err != nil {
		return draw.Session{}, err
	}
	if err := p.StartDraw(ctx); err != nil {
		return draw.Session{}, err
	}
	return p.Session(), nil
}

// Redraw refetches the pool so late approvals or withdrawals are honoured.
func (s *drawService) Redraw(ctx context.Context, tournamentID string) (draw.Session, error) {
	p, err := s.presenter(tournamentID)
	if err != nil {
		return draw.Session{}, err
	}
	if p.Phase() != draw.PhaseComplete {
		return draw.Session{}, fmt.Errorf("%w: redraw from %s", ErrInvalidTransition, p.Phase())
	}
	pool, err := s.cfg.Teams.ListApproved(ctx, tournamentID)
	if err != nil {
		return draw.Session{}, fmt.Errorf("failed to load approved teams: %w", err)
	}
	if err := p.Redraw(ctx, pool); err != nil {
		return draw.Session{}, err
	}
	return p.Session(), nil
}

func (s *drawService) Save(ctx context.Context, tournamentID string) (*SaveResult, error) {
	p, err := s.presenter(tournamentID)
	if err != nil {
		return nil, err
	}
	b, ok := p.Bracket()
	if !ok {
		return nil, ErrDrawNotComplete
	}

	matches := OpeningMatches(tournamentID, b)
	if err := s.cfg.Matches.ReplaceOpeningMatches(ctx, tournamentID, matches); err != nil {
		s.logger.Error("failed to save drawn bracket", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrPersistenceWriteFailure, err)
	}

	res := &SaveResult{Matches: matches}
	if s.cfg.Publisher != nil {
		url, err := s.cfg.Publisher.PublishBracket(ctx, tournamentID, draw.BracketPayload(b))
		if err != nil {
			s.logger.Warn("failed to publish bracket", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		} else {
			res.PublicURL = url
		}
	}
	s.logger.Info("drawn bracket saved", slog.String("tournament_id", tournamentID), slog.Int("matches", len(matches)))
	return res, nil
}

func (s *drawService) Close(ctx context.Context, tournamentID string) error {
	s.mu.Lock()
	p, ok := s.presenters[tournamentID]
	delete(s.presenters, tournamentID)
	s.mu.Unlock()
	if !ok {
		return ErrDrawNotOpen
	}
	return p.Close(ctx)
}

func (s *drawService) Session(ctx context.Context, tournamentID string) (*draw.Session, error) {
	if p, err := s.presenter(tournamentID); err == nil {
		session := p.Session()
		return &session, nil
	}
	if s.cfg.Snapshots == nil {
		return nil, ErrDrawNotOpen
	}
	session, err := s.cfg.Snapshots.LoadDrawState(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draw state: %w", err)
	}
	if session == nil {
		return nil, ErrDrawNotOpen
	}
	return session, nil
}

func (s *drawService) WithSession(ctx context.Context, tournamentID string, fn func(draw.Session)) error {
	if p, err := s.presenter(tournamentID); err == nil {
		p.WithSession(fn)
		return nil
	}
	session, err := s.Session(ctx, tournamentID)
	if err != nil {
		return err
	}
	fn(*session)
	return nil
}

func (s *drawService) Bracket(_ context.Context, tournamentID string) (*BracketView, error) {
	p, err := s.presenter(tournamentID)
	if err != nil {
		return nil, err
	}
	b, ok := p.Bracket()
	if !ok {
		return nil, ErrDrawNotComplete
	}
	return NewBracketView(tournamentID, b), nil
}

func (s *drawService) IsOpen(tournamentID string) bool {
	_, err := s.presenter(tournamentID)
	return err == nil
}

// Shutdown closes every open session, sending draw_end to their viewers.
func (s *drawService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	open := s.presenters
	s.presenters = make(map[string]*draw.Presenter)
	s.mu.Unlock()

	for id, p := range open {
		if err := p.Close(ctx); err != nil && !errors.Is(err, draw.ErrSessionClosed) {
			s.logger.Warn("failed to close draw session", slog.String("tournament_id", id), slog.Any("error", err))
		}
		select {
		case <-p.Done():
		case <-ctx.Done():
			return
		}
	}
}
