// Package mock provides test doubles for the ai package interfaces.
// The doubles default to deterministic behavior so tests are repeatable,
// and expose function fields for injecting failures or fixed responses.
package mock
