// Package model defines shared data structures.
package model

// Store kinds accepted by Config.Store.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config defines practice settings.
type Config struct {
	// Store selects the selection backend: StoreFile or StoreSQLite.
	Store         string
	SelectionPath string
	DBPath        string
	// Seed fixes the shuffle order; 0 seeds from the clock.
	Seed int64
}
