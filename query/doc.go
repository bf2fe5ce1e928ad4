// Package query exposes read-only document lookups as go-command queries.
package query
