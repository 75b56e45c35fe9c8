package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencreds/boostnet/internal/config"
	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

type AppService struct {
	Config config.Configuration
	DB     db.DB
	Signer service.SigningAuthority
	Notify service.Notifier
}

func New(cfg config.Configuration, database db.DB, signer service.SigningAuthority, notifier service.Notifier) service.Service {
	return &AppService{
		Config: cfg,
		DB:     database,
		Signer: signer,
		Notify: notifier,
	}
}

func (s *AppService) boostURI(id string) string {
	return s.Config.Url.JoinPath("boosts", id).String()
}

func (s *AppService) credentialURI(id string) string {
	return s.Config.Url.JoinPath("credentials", id).String()
}

// idFromURI accepts either a full URI minted by this instance or a bare
// identifier and returns the identifier.
func idFromURI(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func newID() string { return uuid.NewString() }

// now is a variable so tests can run on a deterministic clock.
var now = func() int64 { return time.Now().Unix() }

// mapErr translates storage sentinels into the service error taxonomy;
// anything else passes through untouched.
func mapErr(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return service.ErrNotFound
	case errors.Is(err, db.ErrConflict):
		return service.ErrConflict
	default:
		return err
	}
}

func (s *AppService) loadBoost(ctx context.Context, uri string) (domain.Boost, error) {
	boost, err := s.DB.GetBoost(ctx, idFromURI(uri))
	if err != nil {
		return domain.Boost{}, mapErr(err)
	}
	return boost, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

// cursor is a pagination position: the timestamp and id of the last entry
// of the previous page. Timestamps have second resolution, so the id is
// what keeps entries from the same second reachable across page breaks.
type cursor struct {
	ts int64
	id string
}

func (c cursor) zero() bool { return c.ts == 0 }

// follows reports whether an entry at (ts, id) comes strictly after the
// cursor in newest-first order, ascending ids breaking ties.
func (c cursor) follows(ts int64, id string) bool {
	return ts < c.ts || (ts == c.ts && id > c.id)
}

func formatCursor(ts int64, id string) string {
	return strconv.FormatInt(ts, 10) + ":" + id
}

// afterCursor drops the prefix of a newest-first list that a previous page
// already returned.
func afterCursor(boosts []domain.Boost, after cursor) []domain.Boost {
	if after.zero() {
		return boosts
	}
	for i, b := range boosts {
		if after.follows(b.Created, b.ID) {
			return boosts[i:]
		}
	}
	return nil
}

// parseCursor decodes an opaque pagination cursor. The empty cursor starts
// from the newest entry.
func parseCursor(s string) (cursor, error) {
	if s == "" {
		return cursor{}, nil
	}
	ts, id, ok := strings.Cut(s, ":")
	c, err := strconv.ParseInt(ts, 10, 64)
	if !ok || err != nil || c <= 0 || id == "" {
		return cursor{}, service.ErrBadRequest
	}
	return cursor{ts: c, id: id}, nil
}
