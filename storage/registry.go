package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/nlqengine/core"
)

// Opener opens a Store from the driver-specific part of a database URL.
type Opener func(ctx context.Context, dsn string, pool PoolConfig) (Store, error)

var (
	openersMu sync.RWMutex
	openers   = make(map[string]Opener)
)

// Register makes a driver available under scheme.
// Registering the same scheme twice replaces the earlier opener.
func Register(scheme string, opener Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[strings.ToLower(scheme)] = opener
}

// Schemes returns the registered URL schemes in lexical order.
func Schemes() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()
	schemes := make([]string, 0, len(openers))
	for scheme := range openers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// ParseURL splits a database URL into its scheme and driver DSN.
//
// URLs follow the SQLAlchemy layout: "sqlite:///company.db" names the
// relative path company.db, "sqlite:////var/db/company.db" an absolute
// path, and "sqlite://" or "sqlite:///:memory:" an in-memory database.
// A "+driver" suffix on the scheme is ignored.
func ParseURL(raw string) (scheme, dsn string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrMissingURL
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return "", "", fmt.Errorf("%w: %q has no scheme", ErrInvalidURL, raw)
	}
	scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")

	switch {
	case rest == "", rest == "/", rest == ":memory:", rest == "/:memory:":
		return scheme, "", nil
	case strings.HasPrefix(rest, "/"):
		return scheme, rest[1:], nil
	default:
		return scheme, rest, nil
	}
}

// Open opens a Store for a database URL using the driver registered for its
// scheme. A missing URL or unknown scheme is a configuration error.
func Open(ctx context.Context, rawURL string, pool PoolConfig) (Store, error) {
	scheme, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, core.Wrap(err, core.KindConfiguration, "cannot parse database URL")
	}

	openersMu.RLock()
	opener, ok := openers[scheme]
	openersMu.RUnlock()
	if !ok {
		return nil, core.Wrap(fmt.Errorf("%w: %s (registered: %s)", ErrUnsupportedScheme, scheme, strings.Join(Schemes(), ", ")),
			core.KindConfiguration, "cannot open database")
	}

	return opener(ctx, dsn, pool)
}
