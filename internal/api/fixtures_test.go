package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/auth"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/scheduler"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// In-memory fixtures backing the handler tests. The stores satisfy the
// store interfaces without a database; WithTx returns the receiver and the
// tx runner passes a nil transaction through.

var fixedNow = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

type apiDeckStore struct {
	decks map[uuid.UUID]domain.Deck
}

var _ store.DeckStore = (*apiDeckStore)(nil)

func (s *apiDeckStore) Create(_ context.Context, deck *domain.Deck) error {
	s.decks[deck.ID] = *deck
	return nil
}

func (s *apiDeckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

func (s *apiDeckStore) List(_ context.Context) ([]*domain.Deck, error) {
	out := make([]*domain.Deck, 0, len(s.decks))
	for _, deck := range s.decks {
		d := deck
		out = append(out, &d)
	}
	return out, nil
}

func (s *apiDeckStore) Update(_ context.Context, deck *domain.Deck) error {
	if _, ok := s.decks[deck.ID]; !ok {
		return store.ErrDeckNotFound
	}
	s.decks[deck.ID] = *deck
	return nil
}

func (s *apiDeckStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(s.decks, id)
	return nil
}

func (s *apiDeckStore) WithTx(_ *sql.Tx) store.DeckStore { return s }

type apiCardStore struct {
	cards map[domain.CardKey]domain.Card
}

var _ store.CardStore = (*apiCardStore)(nil)

func (s *apiCardStore) Get(_ context.Context, key domain.CardKey) (*domain.Card, error) {
	card, ok := s.cards[key]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

func (s *apiCardStore) GetByDeck(
	_ context.Context,
	deckID uuid.UUID,
) (map[string]*domain.Card, error) {
	out := make(map[string]*domain.Card)
	for key, card := range s.cards {
		if key.DeckID == deckID {
			c := card
			out[key.ItemID] = &c
		}
	}
	return out, nil
}

func (s *apiCardStore) Save(_ context.Context, key domain.CardKey, card *domain.Card) error {
	s.cards[key] = *card
	return nil
}

func (s *apiCardStore) DeleteByDeck(_ context.Context, deckID uuid.UUID) error {
	for key := range s.cards {
		if key.DeckID == deckID {
			delete(s.cards, key)
		}
	}
	return nil
}

func (s *apiCardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

type apiLogStore struct {
	logs map[domain.CardKey][]*domain.ReviewLog
}

var _ store.ReviewLogStore = (*apiLogStore)(nil)

func (s *apiLogStore) Append(_ context.Context, key domain.CardKey, log *domain.ReviewLog) error {
	entry := *log
	s.logs[key] = append(s.logs[key], &entry)
	return nil
}

func (s *apiLogStore) ListByKey(
	_ context.Context,
	key domain.CardKey,
) ([]*domain.ReviewLog, error) {
	return append([]*domain.ReviewLog(nil), s.logs[key]...), nil
}

func (s *apiLogStore) ListByDeck(
	_ context.Context,
	deckID uuid.UUID,
) (map[string][]*domain.ReviewLog, error) {
	out := make(map[string][]*domain.ReviewLog)
	for key, logs := range s.logs {
		if key.DeckID == deckID {
			out[key.ItemID] = append([]*domain.ReviewLog(nil), logs...)
		}
	}
	return out, nil
}

func (s *apiLogStore) CountIntroducedSince(
	_ context.Context,
	deckID uuid.UUID,
	since time.Time,
) (int, error) {
	count := 0
	for key, logs := range s.logs {
		if key.DeckID != deckID || len(logs) == 0 {
			continue
		}
		first := logs[0].Review
		for _, log := range logs {
			if log.Review.Before(first) {
				first = log.Review
			}
		}
		if !first.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *apiLogStore) DeleteByDeck(_ context.Context, deckID uuid.UUID) error {
	for key := range s.logs {
		if key.DeckID == deckID {
			delete(s.logs, key)
		}
	}
	return nil
}

func (s *apiLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore { return s }

type apiUserStore struct {
	users map[uuid.UUID]domain.User
}

var _ store.UserStore = (*apiUserStore)(nil)

func (s *apiUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *apiUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

func (s *apiUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *apiUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

type apiTxRunner struct{}

var _ store.TxRunner = (*apiTxRunner)(nil)

func (r *apiTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

type apiCatalog struct {
	itemsByFolder map[string][]catalog.Item
	folders       []catalog.Folder
	foldersErr    error
	updates       map[string]catalog.ItemUpdate
	updateErr     error
}

var _ catalog.Catalog = (*apiCatalog)(nil)

func (c *apiCatalog) ListItems(_ context.Context, folderIDs []string) ([]catalog.Item, error) {
	seen := make(map[string]struct{})
	items := make([]catalog.Item, 0)
	for _, folderID := range folderIDs {
		for _, item := range c.itemsByFolder[folderID] {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *apiCatalog) Folders(_ context.Context) ([]catalog.Folder, error) {
	if c.foldersErr != nil {
		return nil, c.foldersErr
	}
	return c.folders, nil
}

func (c *apiCatalog) UpdateItem(_ context.Context, itemID string, update catalog.ItemUpdate) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	if c.updates == nil {
		c.updates = make(map[string]catalog.ItemUpdate)
	}
	c.updates[itemID] = update
	return nil
}

// apiAlgorithm graduates Good/Easy to review and keeps Again/Hard in
// learning, on fixed intervals.
type apiAlgorithm struct{}

var _ srs.Algorithm = (*apiAlgorithm)(nil)

func (a *apiAlgorithm) Preview(card domain.Card, now time.Time) (srs.Candidates, error) {
	log := domain.ReviewLog{
		Review:        now,
		Due:           card.Due,
		State:         card.State,
		Stability:     card.Stability,
		Difficulty:    card.Difficulty,
		ElapsedDays:   card.ElapsedDays,
		ScheduledDays: card.ScheduledDays,
	}

	next := func(rating domain.Rating, state domain.CardState, interval time.Duration) srs.Outcome {
		out := card
		out.State = state
		out.Due = now.Add(interval)
		out.Reps = card.Reps + 1
		reviewed := now
		out.LastReview = &reviewed

		outLog := log
		outLog.Rating = rating
		return srs.Outcome{Card: out, Log: outLog}
	}

	return srs.Candidates{
		Again: next(domain.RatingAgain, domain.CardStateLearning, time.Minute),
		Hard:  next(domain.RatingHard, domain.CardStateLearning, 5*time.Minute),
		Good:  next(domain.RatingGood, domain.CardStateReview, 24*time.Hour),
		Easy:  next(domain.RatingEasy, domain.CardStateReview, 4*24*time.Hour),
	}, nil
}

type apiProvider struct{}

var _ srs.Provider = (*apiProvider)(nil)

func (p *apiProvider) ForSettings(_ domain.DeckSettings) (srs.Algorithm, error) {
	return &apiAlgorithm{}, nil
}

// apiFixture wires real services over the in-memory stores, the way the
// server composes them, so handler tests exercise the full path below the
// HTTP layer.
type apiFixture struct {
	decks    *apiDeckStore
	cards    *apiCardStore
	logs     *apiLogStore
	users    *apiUserStore
	catalog  *apiCatalog
	deckSvc  *service.DeckService
	sessions *scheduler.SessionService
	userSvc  *service.UserService
}

func newAPIFixture(itemsByFolder map[string][]catalog.Item) *apiFixture {
	fix := &apiFixture{
		decks:   &apiDeckStore{decks: make(map[uuid.UUID]domain.Deck)},
		cards:   &apiCardStore{cards: make(map[domain.CardKey]domain.Card)},
		logs:    &apiLogStore{logs: make(map[domain.CardKey][]*domain.ReviewLog)},
		users:   &apiUserStore{users: make(map[uuid.UUID]domain.User)},
		catalog: &apiCatalog{itemsByFolder: itemsByFolder},
	}

	runner := &apiTxRunner{}
	provider := &apiProvider{}
	clock := func() time.Time { return fixedNow }
	day := scheduler.NewDayPolicy(time.UTC)
	quota := scheduler.NewQuotaTracker(fix.logs, day)
	queues := scheduler.NewQueueBuilder(fix.cards, quota, fix.catalog, nil)
	rescheduler := scheduler.NewRescheduler(runner, fix.cards, fix.logs, provider, nil)

	fix.deckSvc = service.NewDeckService(
		runner, fix.decks, fix.cards, fix.logs, fix.catalog,
		rescheduler, quota, clock, nil,
	)
	fix.sessions = scheduler.NewSessionService(
		runner, fix.decks, fix.cards, fix.logs, provider, queues, clock, nil,
	)
	fix.userSvc = service.NewUserService(fix.users, auth.NewBcryptHasher(4), &fixtureJWT{}, nil)
	return fix
}

// newTestRouter mounts every handler on the routes the server uses, minus
// the auth middleware, which has its own tests.
func (fix *apiFixture) newTestRouter() http.Handler {
	deckHandler := NewDeckHandler(fix.deckSvc, nil)
	sessionHandler := NewSessionHandler(fix.sessions, nil)
	catalogHandler := NewCatalogHandler(fix.catalog, nil)
	authHandler := NewAuthHandler(fix.userSvc, nil)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/decks", deckHandler.ListDecks)
		r.Post("/decks", deckHandler.CreateDeck)
		r.Get("/decks/{id}", deckHandler.GetDeck)
		r.Put("/decks/{id}", deckHandler.UpdateDeck)
		r.Delete("/decks/{id}", deckHandler.DeleteDeck)
		r.Post("/decks/{id}/reschedule", deckHandler.RescheduleDeck)
		r.Post("/decks/{id}/session", sessionHandler.StartSession)

		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Post("/sessions/{id}/rate", sessionHandler.RateCard)
		r.Delete("/sessions/{id}", sessionHandler.QuitSession)

		r.Get("/folders", catalogHandler.ListFolders)
		r.Patch("/items/{id}", catalogHandler.UpdateItem)
	})
	return r
}

// fixtureJWT issues predictable tokens for handler tests.
type fixtureJWT struct{}

var _ auth.JWTService = (*fixtureJWT)(nil)

func (s *fixtureJWT) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "token-for-" + userID.String(), nil
}

func (s *fixtureJWT) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}
