package db

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// DB is the narrow transactional interface the engine consumes. Any store
// offering node/edge persistence with bounded-depth traversal and
// cycle-safe transactional writes can sit behind it; the bundled
// implementation uses SQLite.
type DB interface {
	Profiles
	Boosts
	Hierarchy
	Roles
	ClaimHooks
	ClaimLinks
	Credentials
}
