package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// Projection is the dry-run outcome shown on one rating button: if the user
// picks this rating now, the card comes back at Due.
type Projection struct {
	Rating   domain.Rating `json:"rating"`
	Due      time.Time     `json:"due"`
	Interval string        `json:"interval"`
}

// CurrentEntry is the queue entry a session is presenting, together with
// the four projected outcomes. Computing the projections never mutates
// persisted state.
type CurrentEntry struct {
	Item        catalog.Item `json:"item"`
	Card        domain.Card  `json:"card"`
	Projections []Projection `json:"projections"`
}

// SessionView is a snapshot of a session's externally visible state.
type SessionView struct {
	ID        uuid.UUID     `json:"id"`
	DeckID    uuid.UUID     `json:"deck_id"`
	Remaining int           `json:"remaining"`
	Reviewed  int           `json:"reviewed"`
	Completed bool          `json:"completed"`
	Current   *CurrentEntry `json:"current,omitempty"`
}

// RateResult reports the durable outcome of one rating plus the session
// state after advancing.
type RateResult struct {
	Rating   domain.Rating `json:"rating"`
	Card     domain.Card   `json:"card"`
	Requeued bool          `json:"requeued"`
	Session  SessionView   `json:"session"`
}

// session is the live state of one review session. The queue and reviewed
// counter are owned by the session and guarded by its mutex; persisted
// state is only ever touched inside a committed rating.
type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	deckID   uuid.UUID
	algo     srs.Algorithm
	queue    []Entry
	reviewed int
}

// SessionService runs review sessions. Sessions are in-memory objects held
// in a registry keyed by session ID; at most one session is active per deck,
// and starting a new one replaces the previous session for that deck.
type SessionService struct {
	tx       store.TxRunner
	decks    store.DeckStore
	cards    store.CardStore
	logs     store.ReviewLogStore
	provider srs.Provider
	queues   *QueueBuilder
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	byDeck   map[uuid.UUID]uuid.UUID
}

// NewSessionService creates a SessionService.
// The clock is injectable for tests; pass nil to use time.Now.
// If logger is nil, a default logger will be used.
func NewSessionService(
	tx store.TxRunner,
	decks store.DeckStore,
	cards store.CardStore,
	logs store.ReviewLogStore,
	provider srs.Provider,
	queues *QueueBuilder,
	clock func() time.Time,
	logger *slog.Logger,
) *SessionService {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if decks == nil {
		panic("decks cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if logs == nil {
		panic("logs cannot be nil")
	}
	if provider == nil {
		panic("provider cannot be nil")
	}
	if queues == nil {
		panic("queues cannot be nil")
	}

	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionService{
		tx:       tx,
		decks:    decks,
		cards:    cards,
		logs:     logs,
		provider: provider,
		queues:   queues,
		now:      clock,
		logger:   logger.With(slog.String("component", "session_service")),
		sessions: make(map[uuid.UUID]*session),
		byDeck:   make(map[uuid.UUID]uuid.UUID),
	}
}

// Start builds a queue for the deck and opens a session on it.
// Returns ErrDeckEmpty or ErrNoDueWork without opening a session when there
// is nothing to review. Any previous session for the same deck is replaced.
func (s *SessionService) Start(ctx context.Context, deckID uuid.UUID) (*SessionView, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}

	algo, err := s.provider.ForSettings(deck.Settings)
	if err != nil {
		return nil, fmt.Errorf("configuring algorithm for deck %s: %w", deck.ID, err)
	}

	now := s.now()
	queue, err := s.queues.Build(ctx, deck, now)
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:     uuid.New(),
		deckID: deck.ID,
		algo:   algo,
		queue:  queue,
	}

	s.mu.Lock()
	if prevID, ok := s.byDeck[deck.ID]; ok {
		delete(s.sessions, prevID)
		s.logger.InfoContext(ctx, "replacing active session for deck",
			slog.String("deck_id", deck.ID.String()),
			slog.String("previous_session_id", prevID.String()))
	}
	s.sessions[sess.id] = sess
	s.byDeck[deck.ID] = sess.id
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session started",
		slog.String("session_id", sess.id.String()),
		slog.String("deck_id", deck.ID.String()),
		slog.Int("queue_length", len(queue)))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess, now)
}

// Current returns the session's current entry with its four projected
// intervals. The projection is a dry run: nothing is persisted.
func (s *SessionService) Current(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess, s.now())
}

// Rate applies the chosen rating to the session's current entry: the
// algorithm's outcome for that rating is persisted (card upsert and log
// append in one transaction), the entry is requeued at the back of the
// queue if it is still in a learning state, and the session advances.
//
// Rating is atomic. If the algorithm rejects the card or the write fails,
// the current entry stays current and no state — persisted or in-memory —
// changes.
func (s *SessionService) Rate(
	ctx context.Context,
	sessionID uuid.UUID,
	rating domain.Rating,
) (*RateResult, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRating, rating)
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.queue) == 0 {
		return nil, ErrSessionComplete
	}
	current := sess.queue[0]

	key, err := domain.NewCardKey(sess.deckID, current.Item.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	candidates, err := sess.algo.Preview(current.Card, now)
	if err != nil {
		return nil, fmt.Errorf("evaluating card %s: %w", key, err)
	}
	outcome, err := candidates.ForRating(rating)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cards.WithTx(tx).Save(ctx, key, &outcome.Card); err != nil {
			return err
		}
		return s.logs.WithTx(tx).Append(ctx, key, &outcome.Log)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "rating not committed",
			slog.String("session_id", sess.id.String()),
			slog.String("card_key", key.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	// The rating is durable; only now does the queue advance.
	sess.queue = sess.queue[1:]
	sess.reviewed++

	requeued := outcome.Card.InLearning()
	if requeued {
		sess.queue = append(sess.queue, Entry{Item: current.Item, Card: outcome.Card})
	}

	if len(sess.queue) == 0 {
		s.remove(sess)
		s.logger.InfoContext(ctx, "session complete",
			slog.String("session_id", sess.id.String()),
			slog.String("deck_id", sess.deckID.String()),
			slog.Int("reviewed", sess.reviewed))
	}

	view, err := s.viewLocked(sess, now)
	if err != nil {
		return nil, err
	}

	return &RateResult{
		Rating:   rating,
		Card:     outcome.Card,
		Requeued: requeued,
		Session:  *view,
	}, nil
}

// Quit abandons the session's remaining queue. Ratings already committed
// stay committed; quitting never rolls anything back.
func (s *SessionService) Quit(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	s.remove(sess)
	s.logger.InfoContext(ctx, "session quit",
		slog.String("session_id", sess.id.String()),
		slog.String("deck_id", sess.deckID.String()))
	return nil
}

func (s *SessionService) lookup(sessionID uuid.UUID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) remove(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sess.id)
	if s.byDeck[sess.deckID] == sess.id {
		delete(s.byDeck, sess.deckID)
	}
}

// viewLocked snapshots the session. Caller holds sess.mu.
func (s *SessionService) viewLocked(sess *session, now time.Time) (*SessionView, error) {
	view := &SessionView{
		ID:        sess.id,
		DeckID:    sess.deckID,
		Remaining: len(sess.queue),
		Reviewed:  sess.reviewed,
		Completed: len(sess.queue) == 0,
	}
	if view.Completed {
		return view, nil
	}

	current := sess.queue[0]
	candidates, err := sess.algo.Preview(current.Card, now)
	if err != nil {
		return nil, fmt.Errorf("projecting intervals for item %s: %w", current.Item.ID, err)
	}

	view.Current = &CurrentEntry{
		Item:        current.Item,
		Card:        current.Card,
		Projections: projections(candidates, now),
	}
	return view, nil
}

// projections flattens the four candidate outcomes into display order.
func projections(c srs.Candidates, now time.Time) []Projection {
	out := make([]Projection, 0, 4)
	for _, rating := range domain.Ratings() {
		outcome, err := c.ForRating(rating)
		if err != nil {
			continue
		}
		out = append(out, Projection{
			Rating:   rating,
			Due:      outcome.Card.Due,
			Interval: FormatInterval(outcome.Card.Due.Sub(now)),
		})
	}
	return out
}
