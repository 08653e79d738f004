// Package statetree builds a live, typed, navigable object model over a
// remote introspection service that only offers synchronous "give me the
// state at this path" calls.
//
// A test driver resolves a backend connection (package search), roots a
// Client on it, and navigates the application's state tree through Object
// proxies: property reads refresh on demand, values support blocking
// wait-for-value polling (package types), and descendant queries are
// narrowed server-side where the query grammar allows and re-filtered
// client-side always. Discovered type names are mapped to user-registered
// proxy classes through a per-backend Registry, falling back to generic
// state objects for types without a specialization.
package statetree
