package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// In-memory store fakes shared by the service tests. WithTx returns the
// same instance; memTxRunner supplies rollback semantics by snapshotting.

type memDeckStore struct {
	decks map[uuid.UUID]domain.Deck
}

func newMemDeckStore(decks ...*domain.Deck) *memDeckStore {
	s := &memDeckStore{decks: make(map[uuid.UUID]domain.Deck)}
	for _, deck := range decks {
		s.decks[deck.ID] = *deck
	}
	return s
}

var _ store.DeckStore = (*memDeckStore)(nil)

func (s *memDeckStore) Create(_ context.Context, deck *domain.Deck) error {
	if _, exists := s.decks[deck.ID]; exists {
		return store.ErrDuplicate
	}
	s.decks[deck.ID] = *deck
	return nil
}

func (s *memDeckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

func (s *memDeckStore) List(_ context.Context) ([]*domain.Deck, error) {
	out := make([]*domain.Deck, 0, len(s.decks))
	for _, deck := range s.decks {
		d := deck
		out = append(out, &d)
	}
	return out, nil
}

func (s *memDeckStore) Update(_ context.Context, deck *domain.Deck) error {
	if _, ok := s.decks[deck.ID]; !ok {
		return store.ErrDeckNotFound
	}
	s.decks[deck.ID] = *deck
	return nil
}

func (s *memDeckStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(s.decks, id)
	return nil
}

func (s *memDeckStore) WithTx(_ *sql.Tx) store.DeckStore { return s }

type memCardStore struct {
	cards map[domain.CardKey]domain.Card
}

func newMemCardStore() *memCardStore {
	return &memCardStore{cards: make(map[domain.CardKey]domain.Card)}
}

var _ store.CardStore = (*memCardStore)(nil)

func (s *memCardStore) Get(_ context.Context, key domain.CardKey) (*domain.Card, error) {
	card, ok := s.cards[key]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

func (s *memCardStore) GetByDeck(
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

func (s *memCardStore) Save(_ context.Context, key domain.CardKey, card *domain.Card) error {
	s.cards[key] = *card
	return nil
}

func (s *memCardStore) DeleteByDeck(_ context.Context, deckID uuid.UUID) error {
	for key := range s.cards {
		if key.DeckID == deckID {
			delete(s.cards, key)
		}
	}
	return nil
}

func (s *memCardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

type memLogStore struct {
	logs map[domain.CardKey][]*domain.ReviewLog
}

func newMemLogStore() *memLogStore {
	return &memLogStore{logs: make(map[domain.CardKey][]*domain.ReviewLog)}
}

var _ store.ReviewLogStore = (*memLogStore)(nil)

func (s *memLogStore) Append(_ context.Context, key domain.CardKey, log *domain.ReviewLog) error {
	entry := *log
	s.logs[key] = append(s.logs[key], &entry)
	return nil
}

func (s *memLogStore) ListByKey(
	_ context.Context,
	key domain.CardKey,
) ([]*domain.ReviewLog, error) {
	return append([]*domain.ReviewLog(nil), s.logs[key]...), nil
}

func (s *memLogStore) ListByDeck(
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

func (s *memLogStore) CountIntroducedSince(
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

func (s *memLogStore) DeleteByDeck(_ context.Context, deckID uuid.UUID) error {
	for key := range s.logs {
		if key.DeckID == deckID {
			delete(s.logs, key)
		}
	}
	return nil
}

func (s *memLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore { return s }

type memUserStore struct {
	users map[uuid.UUID]domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]domain.User)}
}

var _ store.UserStore = (*memUserStore)(nil)

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

// memTxRunner snapshots the card and log stores and restores them when the
// function fails.
type memTxRunner struct {
	cards *memCardStore
	logs  *memLogStore
}

var _ store.TxRunner = (*memTxRunner)(nil)

func (r *memTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	cardsBefore := make(map[domain.CardKey]domain.Card, len(r.cards.cards))
	for k, v := range r.cards.cards {
		cardsBefore[k] = v
	}
	logsBefore := make(map[domain.CardKey][]*domain.ReviewLog, len(r.logs.logs))
	for k, v := range r.logs.logs {
		logsBefore[k] = append([]*domain.ReviewLog(nil), v...)
	}

	if err := fn(ctx, nil); err != nil {
		r.cards.cards = cardsBefore
		r.logs.logs = logsBefore
		return err
	}
	return nil
}

// memCatalog serves fixed items per folder.
type memCatalog struct {
	itemsByFolder map[string][]catalog.Item
}

var _ catalog.Catalog = (*memCatalog)(nil)

func (c *memCatalog) ListItems(_ context.Context, folderIDs []string) ([]catalog.Item, error) {
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

func (c *memCatalog) Folders(_ context.Context) ([]catalog.Folder, error) { return nil, nil }

func (c *memCatalog) UpdateItem(_ context.Context, _ string, _ catalog.ItemUpdate) error {
	return nil
}

// stubAlgorithm graduates Good/Easy to review and keeps Again/Hard in
// learning, on fixed intervals.
type stubAlgorithm struct{}

var _ srs.Algorithm = (*stubAlgorithm)(nil)

func (a *stubAlgorithm) Preview(card domain.Card, now time.Time) (srs.Candidates, error) {
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

type stubProvider struct {
	err error
}

var _ srs.Provider = (*stubProvider)(nil)

func (p *stubProvider) ForSettings(_ domain.DeckSettings) (srs.Algorithm, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &stubAlgorithm{}, nil
}
