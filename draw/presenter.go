package draw

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/models"
)

const snapshotWriteTimeout = 5 * time.Second

// Timing paces the presenter. Zero fields fall back to DefaultTiming.
type Timing struct {
	SpinTick       time.Duration
	SpinIterations int
	RevealTick     time.Duration
	SettleDelay    time.Duration
}

var DefaultTiming = Timing{
	SpinTick:       100 * time.Millisecond,
	SpinIterations: 30,
	RevealTick:     800 * time.Millisecond,
	SettleDelay:    time.Second,
}

func (t Timing) withDefaults() Timing {
	if t.SpinTick <= 0 {
		t.SpinTick = DefaultTiming.SpinTick
	}
	if t.SpinIterations <= 0 {
		t.SpinIterations = DefaultTiming.SpinIterations
	}
	if t.RevealTick <= 0 {
		t.RevealTick = DefaultTiming.RevealTick
	}
	if t.SettleDelay <= 0 {
		t.SettleDelay = DefaultTiming.SettleDelay
	}
	return t
}

// SnapshotWriter mirrors the presenter's session for late joiners.
type SnapshotWriter interface {
	SaveDrawState(ctx context.Context, tournamentID string, s Session) error
	DeleteDrawState(ctx context.Context, tournamentID string) error
}

// SnapshotStore adds the read side used when a viewer reconnects.
// LoadDrawState returns nil and no error when nothing is stored.
type SnapshotStore interface {
	SnapshotWriter
	LoadDrawState(ctx context.Context, tournamentID string) (*Session, error)
}

// Observer is notified of published events and phase changes.
type Observer interface {
	EventPublished(ev EventType, err error)
	PhaseChanged(from, to Phase)
}

type PresenterConfig struct {
	TournamentID string
	Channel      Channel
	Scheduler    Scheduler
	Rand         *rand.Rand
	Timing       Timing
	Snapshots    SnapshotWriter
	Observer     Observer
	Logger       *slog.Logger
}

// Presenter drives one live draw. It is the only writer of draw events for
// its tournament and exclusively owns its timers.
type Presenter struct {
	cfg    PresenterConfig
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	timers  *ownedTimers
	version uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	snapCh chan Session
	done   chan struct{}
}

// NewPresenter opens an idle session over pool.
func NewPresenter(cfg PresenterConfig, pool []models.Team) *Presenter {
	cfg.Timing = cfg.Timing.withDefaults()
	if cfg.Channel == nil {
		cfg.Channel = NewMemoryChannel()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		cfg:    cfg,
		logger: logger.With(slog.String("tournament_id", cfg.TournamentID)),
		state:  Idle{Pool: cloneTeams(pool)},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.timers = newOwnedTimers(cfg.Scheduler, &p.mu)

	if cfg.Snapshots != nil {
		p.snapCh = make(chan Session, 1)
		go p.writeSnapshots(cfg.Snapshots)
	}
	return p
}

// StartDraw leaves idle and begins the spinning phase.
func (p *Presenter) StartDraw(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrSessionClosed
	}

	if err := p.applyLocked(StartDraw{}); err != nil {
		return err
	}
	p.logger.Info("draw started", slog.Int("teams", len(p.state.(Spinning).Pool)))
	p.timers.after(p.cfg.Timing.SpinTick, p.spinLocked)
	return nil
}

// Redraw returns a completed draw to idle over a freshly fetched pool.
func (p *Presenter) Redraw(ctx context.Context, pool []models.Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrSessionClosed
	}
	return p.applyLocked(Redraw{Pool: pool})
}

// Close tears the session down from any phase. Viewers get draw_end if the
// draw had been broadcasting. Close is idempotent.
func (p *Presenter) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}

	err := p.applyLocked(Close{})
	p.timers.cancelAll()
	p.closed = true
	if p.snapCh != nil {
		close(p.snapCh)
	} else {
		close(p.done)
	}
	p.cancel()
	p.logger.Info("draw session closed")
	return err
}

// Done is closed once the session is closed and its snapshot cleared.
func (p *Presenter) Done() <-chan struct{} {
	return p.done
}

func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Presenter) Phase() Phase {
	return p.State().Phase()
}

// Bracket returns the built bracket once the draw is complete.
func (p *Presenter) Bracket() (*brackets.Bracket, bool) {
	c, ok := p.State().(Complete)
	if !ok {
		return nil, false
	}
	return c.Bracket, true
}

func (p *Presenter) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionLocked()
}

// WithSession runs fn with the current session under the presenter's lock.
// Events are published under the same lock, so anything fn queues lands
// between the events the session already reflects and the ones after it.
// fn must not call back into the Presenter.
func (p *Presenter) WithSession(fn func(Session)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.sessionLocked())
}

func (p *Presenter) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Presenter) PendingTimers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timers.count()
}

func (p *Presenter) sessionLocked() Session {
	s := Snapshot(p.state)
	s.TournamentID = p.cfg.TournamentID
	s.Version = p.version
	return s
}

// applyLocked runs one transition: pending timers are cancelled before the
// next phase arms its own.
func (p *Presenter) applyLocked(in Input) error {
	next, events, err := Step(p.state, in)
	if err != nil {
		return err
	}

	from := p.state.Phase()
	p.timers.cancelAll()
	p.state = next
	p.version++

	for _, ev := range events {
		p.publishLocked(ev)
	}
	if p.cfg.Observer != nil && from != next.Phase() {
		p.cfg.Observer.PhaseChanged(from, next.Phase())
	}
	p.mirrorLocked()
	return nil
}

func (p *Presenter) publishLocked(ev Event) {
	err := p.cfg.Channel.Publish(p.ctx, ev)
	if p.cfg.Observer != nil {
		p.cfg.Observer.EventPublished(ev.Type, err)
	}
	if err != nil {
		// broadcast is fire-and-forget: the draw carries on locally
		p.logger.Warn("draw event not broadcast", slog.String("event", string(ev.Type)), slog.Any("error", err))
	}
}

func (p *Presenter) spinLocked() {
	st, ok := p.state.(Spinning)
	if !ok {
		return
	}

	if st.Tick+1 < p.cfg.Timing.SpinIterations {
		if err := p.applyLocked(SpinTick{Pool: brackets.Shuffle(st.Pool, p.cfg.Rand)}); err != nil {
			p.logger.Error("spin tick failed", slog.Any("error", err))
			return
		}
		p.timers.after(p.cfg.Timing.SpinTick, p.spinLocked)
		return
	}

	order := brackets.Shuffle(st.Pool, p.cfg.Rand)
	if err := p.applyLocked(FinishSpin{Order: order}); err != nil {
		p.logger.Error("fixing draw order failed", slog.Any("error", err))
		return
	}
	p.timers.after(p.cfg.Timing.RevealTick, p.revealLocked)
}

func (p *Presenter) revealLocked() {
	if err := p.applyLocked(RevealNext{}); err != nil {
		p.logger.Error("reveal failed", slog.Any("error", err))
		return
	}

	d := p.state.(Drawing)
	if d.Drawn == len(d.Order) {
		p.timers.after(p.cfg.Timing.SettleDelay, p.settleLocked)
		return
	}
	p.timers.after(p.cfg.Timing.RevealTick, p.revealLocked)
}

func (p *Presenter) settleLocked() {
	if err := p.applyLocked(Settle{}); err != nil {
		p.logger.Error("building bracket failed", slog.Any("error", err))
		return
	}
	c := p.state.(Complete)
	p.logger.Info("draw complete",
		slog.Int("teams", len(c.Order)),
		slog.Int("rounds", len(c.Bracket.Rounds)),
		slog.Int("byes", len(c.Bracket.ByeTeams)))
}

// mirrorLocked hands the latest session to the snapshot writer, replacing
// any snapshot it has not picked up yet.
func (p *Presenter) mirrorLocked() {
	if p.snapCh == nil || p.closed {
		return
	}
	s := p.sessionLocked()
	for {
		select {
		case p.snapCh <- s:
			return
		default:
		}
		select {
		case <-p.snapCh:
		default:
		}
	}
}

func (p *Presenter) writeSnapshots(w SnapshotWriter) {
	defer close(p.done)

	for s := range p.snapCh {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
		if err := w.SaveDrawState(ctx, p.cfg.TournamentID, s); err != nil {
			p.logger.Warn("draw snapshot not saved", slog.Uint64("version", s.Version), slog.Any("error", err))
		}
		cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
	defer cancel()
	if err := w.DeleteDrawState(ctx, p.cfg.TournamentID); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("draw snapshot not cleared", slog.Any("error", err))
	}
}
