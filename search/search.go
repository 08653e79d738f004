// Package search locates the one backend connection exposing the
// introspection service that matches a set of search criteria.
//
// Criteria are decomposed into an ordered filter chain through a lookup
// table; filters are deduplicated, sorted by descending priority and chained
// into a single short-circuiting AND pass over every candidate connection.
// Candidate enumeration is retried until the search context expires, because
// the application under test is usually still starting up when the search
// begins.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-statetree/statetree/config"
	"github.com/go-statetree/statetree/wire"
)

// Candidate is one discoverable connection, as enumerated by the transport's
// discovery primitives. It is a full backend plus the identifying facts the
// filters match on.
type Candidate interface {
	wire.Backend

	// Name is the connection's unique name on the message bus (or the
	// transport's equivalent).
	Name() string
	// PID is the id of the process owning the connection.
	PID() (int, error)
	// ObjectPath is the path the introspection service is exported at.
	ObjectPath() string
}

// Lister enumerates the currently visible candidate connections.
type Lister interface {
	Candidates(ctx context.Context) ([]Candidate, error)
}

// Criteria is the set of (search parameter, expected value) pairs a
// connection must satisfy. Supported parameters are the keys of
// DefaultFilterLookup.
type Criteria map[string]any

var (
	// ErrNoConnection is returned when the search window closes without any
	// candidate passing every filter.
	ErrNoConnection = errors.New("no connection matched the search criteria")

	// ErrAmbiguousConnection is returned when more than one candidate
	// matches; the criteria are not specific enough to pick a backend.
	ErrAmbiguousConnection = errors.New("search criteria matched more than one connection")
)

// UnknownParameterError reports a search parameter with no corresponding
// filter. Failing fast here beats silently ignoring a misspelled criterion
// and matching the wrong application.
type UnknownParameterError struct {
	Parameter string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("search parameter %q does not have a corresponding filter", e.Parameter)
}

// filterRunner chains filters into one short-circuiting AND pass.
type filterRunner struct {
	filters []Filter
	logger  *zap.Logger
}

func (r *filterRunner) matches(ctx context.Context, c Candidate, crit Criteria) bool {
	for _, f := range r.filters {
		if !f.Matches(ctx, c, crit) {
			r.logger.Debug("candidate rejected",
				zap.String("connection", c.Name()),
				zap.String("filter", f.Name()))
			return false
		}
	}
	return true
}

// FindConnection resolves the single candidate connection matching the
// criteria. Candidates are re-enumerated once per poll interval until one
// matches or the search window (cfg.Timeout, or the caller's context,
// whichever ends first) closes. More than one match is an immediate error:
// waiting would not make ambiguous criteria any more specific.
func FindConnection(ctx context.Context, lister Lister, crit Criteria, cfg config.SearchConfig, logger *zap.Logger) (Candidate, error) {
	if lister == nil {
		return nil, errors.New("lister must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("search").With(zap.String("sessionID", uuid.NewString()))

	filters, err := buildFilters(crit, DefaultFilterLookup)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.Name()
	}
	log.Info("searching for backend connection", zap.Strings("filters", names))

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}

	runner := &filterRunner{filters: filters, logger: log}
	for {
		candidates, err := lister.Candidates(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerating candidate connections: %w", err)
		}

		matched := probeAll(ctx, runner, candidates, crit, cfg.ProbeConcurrency)
		switch len(matched) {
		case 1:
			log.Info("connection found", zap.String("connection", matched[0].Name()))
			return matched[0], nil
		case 0:
			// Keep retrying; the application may not be up yet.
		default:
			names := make([]string, len(matched))
			for i, c := range matched {
				names[i] = c.Name()
			}
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousConnection, strings.Join(names, ", "))
		}

		select {
		case <-time.After(poll):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrNoConnection, ctx.Err())
		}
	}
}

// probeAll runs the filter chain over every candidate, probing in parallel
// but bounded, and returns the matches in enumeration order.
func probeAll(ctx context.Context, runner *filterRunner, candidates []Candidate, crit Criteria, concurrency int) []Candidate {
	results := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			results[i] = runner.matches(gctx, c, crit)
			return nil
		})
	}
	_ = g.Wait()

	matched := make([]Candidate, 0, 1)
	for i, ok := range results {
		if ok {
			matched = append(matched, candidates[i])
		}
	}
	return matched
}
