package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/catalog"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain/srs"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// errForcedWrite simulates a persistence failure in atomicity tests.
var errForcedWrite = errors.New("forced write failure")

// fakeCardStore is an in-memory CardStore. failSaves forces every Save to
// fail, for atomicity tests.
type fakeCardStore struct {
	cards     map[domain.CardKey]domain.Card
	failSaves bool
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[domain.CardKey]domain.Card)}
}

var _ store.CardStore = (*fakeCardStore)(nil)

func (s *fakeCardStore) Get(_ context.Context, key domain.CardKey) (*domain.Card, error) {
	card, ok := s.cards[key]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

func (s *fakeCardStore) GetByDeck(
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

func (s *fakeCardStore) Save(_ context.Context, key domain.CardKey, card *domain.Card) error {
	if s.failSaves {
		return errForcedWrite
	}
	s.cards[key] = *card
	return nil
}

func (s *fakeCardStore) DeleteByDeck(_ context.Context, deckID uuid.UUID) error {
	for key := range s.cards {
		if key.DeckID == deckID {
			delete(s.cards, key)
		}
	}
	return nil
}

func (s *fakeCardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

func (s *fakeCardStore) snapshot() map[domain.CardKey]domain.Card {
	copied := make(map[domain.CardKey]domain.Card, len(s.cards))
	for k, v := range s.cards {
		copied[k] = v
	}
	return copied
}

// fakeLogStore is an in-memory ReviewLogStore.
type fakeLogStore struct {
	logs        map[domain.CardKey][]*domain.ReviewLog
	failAppends bool
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{logs: make(map[domain.CardKey][]*domain.ReviewLog)}
}

var _ store.ReviewLogStore = (*fakeLogStore)(nil)

func (s *fakeLogStore) Append(_ context.Context, key domain.CardKey, log *domain.ReviewLog) error {
	if s.failAppends {
		return errForcedWrite
	}
	entry := *log
	s.logs[key] = append(s.logs[key], &entry)
	return nil
}

func (s *fakeLogStore) ListByKey(
	_ context.Context,
	key domain.CardKey,
) ([]*domain.ReviewLog, error) {
	return append([]*domain.ReviewLog(nil), s.logs[key]...), nil
}

func (s *fakeLogStore) ListByDeck(
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

func (s *fakeLogStore) CountIntroducedSince(
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

func (s *fakeLogStore) DeleteByDeck(_ context.Context, deckID uuid.UUID) error {
	for key := range s.logs {
		if key.DeckID == deckID {
			delete(s.logs, key)
		}
	}
	return nil
}

func (s *fakeLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore { return s }

func (s *fakeLogStore) snapshot() map[domain.CardKey][]*domain.ReviewLog {
	copied := make(map[domain.CardKey][]*domain.ReviewLog, len(s.logs))
	for k, v := range s.logs {
		copied[k] = append([]*domain.ReviewLog(nil), v...)
	}
	return copied
}

// fakeTxRunner gives the in-memory stores transactional behavior: state is
// snapshotted before the function runs and restored if it fails.
type fakeTxRunner struct {
	cards *fakeCardStore
	logs  *fakeLogStore
}

var _ store.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	cardsBefore := r.cards.snapshot()
	logsBefore := r.logs.snapshot()

	if err := fn(ctx, nil); err != nil {
		r.cards.cards = cardsBefore
		r.logs.logs = logsBefore
		return err
	}
	return nil
}

// fakeDeckStore is an in-memory DeckStore.
type fakeDeckStore struct {
	decks map[uuid.UUID]domain.Deck
}

func newFakeDeckStore(decks ...*domain.Deck) *fakeDeckStore {
	s := &fakeDeckStore{decks: make(map[uuid.UUID]domain.Deck)}
	for _, deck := range decks {
		s.decks[deck.ID] = *deck
	}
	return s
}

var _ store.DeckStore = (*fakeDeckStore)(nil)

func (s *fakeDeckStore) Create(_ context.Context, deck *domain.Deck) error {
	if _, exists := s.decks[deck.ID]; exists {
		return store.ErrDuplicate
	}
	s.decks[deck.ID] = *deck
	return nil
}

func (s *fakeDeckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

func (s *fakeDeckStore) List(_ context.Context) ([]*domain.Deck, error) {
	out := make([]*domain.Deck, 0, len(s.decks))
	for _, deck := range s.decks {
		d := deck
		out = append(out, &d)
	}
	return out, nil
}

func (s *fakeDeckStore) Update(_ context.Context, deck *domain.Deck) error {
	if _, ok := s.decks[deck.ID]; !ok {
		return store.ErrDeckNotFound
	}
	s.decks[deck.ID] = *deck
	return nil
}

func (s *fakeDeckStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(s.decks, id)
	return nil
}

func (s *fakeDeckStore) WithTx(_ *sql.Tx) store.DeckStore { return s }

// fakeCatalog serves a fixed pool per folder. Folders listed in failing
// report as unavailable.
type fakeCatalog struct {
	itemsByFolder map[string][]catalog.Item
	failing       map[string]bool
}

var _ catalog.Catalog = (*fakeCatalog)(nil)

func (c *fakeCatalog) ListItems(_ context.Context, folderIDs []string) ([]catalog.Item, error) {
	seen := make(map[string]struct{})
	items := make([]catalog.Item, 0)
	for _, folderID := range folderIDs {
		if c.failing[folderID] {
			continue
		}
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

func (c *fakeCatalog) Folders(_ context.Context) ([]catalog.Folder, error) {
	return nil, nil
}

func (c *fakeCatalog) UpdateItem(_ context.Context, _ string, _ catalog.ItemUpdate) error {
	return nil
}

// fakeAlgorithm is a deterministic stand-in for the forgetting-curve
// algorithm: Again and Hard keep the card in a learning state on short
// intervals, Good and Easy graduate it to review. Pure function of
// (card, now), which the replay tests rely on.
type fakeAlgorithm struct{}

var _ srs.Algorithm = (*fakeAlgorithm)(nil)

func (a *fakeAlgorithm) Preview(card domain.Card, now time.Time) (srs.Candidates, error) {
	if !card.State.IsValid() {
		return srs.Candidates{}, srs.ErrInvalidCard
	}

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
		out.Stability = card.Stability + 1
		out.Reps = card.Reps + 1
		if rating == domain.RatingAgain && card.State == domain.CardStateReview {
			out.Lapses = card.Lapses + 1
		}
		reviewed := now
		out.LastReview = &reviewed

		outLog := log
		outLog.Rating = rating
		return srs.Outcome{Card: out, Log: outLog}
	}

	againState := domain.CardStateLearning
	if card.State == domain.CardStateReview {
		againState = domain.CardStateRelearning
	}

	return srs.Candidates{
		Again: next(domain.RatingAgain, againState, time.Minute),
		Hard:  next(domain.RatingHard, domain.CardStateLearning, 5*time.Minute),
		Good:  next(domain.RatingGood, domain.CardStateReview, 24*time.Hour),
		Easy:  next(domain.RatingEasy, domain.CardStateReview, 4*24*time.Hour),
	}, nil
}

// fakeProvider hands out fakeAlgorithm, or fails with err when set.
type fakeProvider struct {
	err error
}

var _ srs.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) ForSettings(_ domain.DeckSettings) (srs.Algorithm, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &fakeAlgorithm{}, nil
}

// testDeck builds a deck with the given limits over one folder, "f1".
func testDeck(newLimit, reviewLimit int) *domain.Deck {
	return &domain.Deck{
		ID:        uuid.New(),
		Name:      "test deck",
		FolderIDs: []string{"f1"},
		Settings: domain.DeckSettings{
			RequestRetention: domain.DefaultRetention,
			MaximumInterval:  domain.DefaultMaximumInterval,
			Limits:           domain.DeckLimits{New: newLimit, Review: reviewLimit},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// poolItems builds n catalog items named item-0..item-(n-1).
func poolItems(ids ...string) []catalog.Item {
	items := make([]catalog.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, catalog.Item{ID: id, Name: "item " + id})
	}
	return items
}
