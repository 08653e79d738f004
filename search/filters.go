package search

import (
	"context"
	"sort"
)

// Filter is one pass/fail check a candidate connection must survive.
// Filters are stateless singletons: the same filter instance may serve
// several search parameters and is deduplicated by identity before running.
type Filter interface {
	Name() string
	// Priority orders filters within a run: higher priorities run first, so
	// cheap in-memory checks can reject a candidate before any filter that
	// has to touch the wire.
	Priority() int
	Matches(ctx context.Context, c Candidate, crit Criteria) bool
}

// Process is the minimal view of a launched process a caller may hand in as
// the "process" search parameter.
type Process interface {
	Pid() int
}

// Filter singletons. Identity matters for deduplication: "pid" and
// "process" both resolve to the same instance.
var (
	filterConnectionName  Filter = connectionNameFilter{}
	filterPID             Filter = pidFilter{}
	filterObjectPath      Filter = objectPathFilter{}
	filterIntrospectable  Filter = introspectableFilter{}
	filterApplicationName Filter = applicationNameFilter{}
)

// DefaultFilterLookup maps search-parameter names to the filter that
// enforces them. An unknown parameter name is rejected up front by
// buildFilters rather than being silently ignored.
var DefaultFilterLookup = map[string]Filter{
	"connection_name":  filterConnectionName,
	"pid":              filterPID,
	"process":          filterPID,
	"object_path":      filterObjectPath,
	"application_name": filterApplicationName,
}

// buildFilters decomposes the criteria into a deduplicated filter list,
// ordered by descending priority. The introspectability probe is always
// included: whatever else the caller asked for, a connection that cannot
// answer a root state query is not a usable backend.
func buildFilters(crit Criteria, lookup map[string]Filter) ([]Filter, error) {
	params := make([]string, 0, len(crit))
	for p := range crit {
		params = append(params, p)
	}
	sort.Strings(params)

	seen := make(map[Filter]bool, len(params)+1)
	filters := make([]Filter, 0, len(params)+1)
	for _, p := range params {
		f, ok := lookup[p]
		if !ok {
			return nil, &UnknownParameterError{Parameter: p}
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		filters = append(filters, f)
	}
	if !seen[filterIntrospectable] {
		filters = append(filters, filterIntrospectable)
	}

	sort.SliceStable(filters, func(i, j int) bool {
		return filters[i].Priority() > filters[j].Priority()
	})
	return filters, nil
}

// connectionNameFilter matches the candidate's unique connection name.
type connectionNameFilter struct{}

func (connectionNameFilter) Name() string  { return "connection_name" }
func (connectionNameFilter) Priority() int { return 12 }

func (connectionNameFilter) Matches(_ context.Context, c Candidate, crit Criteria) bool {
	want, ok := crit["connection_name"].(string)
	return ok && c.Name() == want
}

// objectPathFilter matches the path the candidate exports its introspection
// service at.
type objectPathFilter struct{}

func (objectPathFilter) Name() string  { return "object_path" }
func (objectPathFilter) Priority() int { return 10 }

func (objectPathFilter) Matches(_ context.Context, c Candidate, crit Criteria) bool {
	want, ok := crit["object_path"].(string)
	return ok && c.ObjectPath() == want
}

// pidFilter matches the process id owning the candidate connection. It
// serves both the "pid" parameter (a bare int) and the "process" parameter
// (anything exposing Pid()).
type pidFilter struct{}

func (pidFilter) Name() string  { return "pid" }
func (pidFilter) Priority() int { return 9 }

func (pidFilter) Matches(_ context.Context, c Candidate, crit Criteria) bool {
	want, ok := wantedPID(crit)
	if !ok {
		return false
	}
	pid, err := c.PID()
	if err != nil {
		return false
	}
	return pid == want
}

func wantedPID(crit Criteria) (int, bool) {
	if pid, ok := crit["pid"].(int); ok {
		return pid, true
	}
	if proc, ok := crit["process"].(Process); ok {
		return proc.Pid(), true
	}
	return 0, false
}

// introspectableFilter probes the candidate with a root state query. This is
// the one filter that always runs, and it runs late: it costs a round trip.
type introspectableFilter struct{}

func (introspectableFilter) Name() string  { return "introspectable" }
func (introspectableFilter) Priority() int { return 2 }

func (introspectableFilter) Matches(ctx context.Context, c Candidate, _ Criteria) bool {
	snaps, err := c.GetState(ctx, "/")
	return err == nil && len(snaps) == 1
}

// applicationNameFilter probes the candidate's root object and compares its
// type name. Most expensive check, lowest priority.
type applicationNameFilter struct{}

func (applicationNameFilter) Name() string  { return "application_name" }
func (applicationNameFilter) Priority() int { return 1 }

func (applicationNameFilter) Matches(ctx context.Context, c Candidate, crit Criteria) bool {
	want, ok := crit["application_name"].(string)
	if !ok {
		return false
	}
	snaps, err := c.GetState(ctx, "/")
	if err != nil || len(snaps) != 1 {
		return false
	}
	path := snaps[0].Path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:] == want
		}
	}
	return path == want
}
