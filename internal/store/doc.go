// Package store defines the persistence interfaces for the application's
// three logical namespaces — decks, cards, and review logs — plus users.
// Implementations live in internal/platform; services depend only on these
// interfaces so tests can substitute in-memory fakes.
package store
