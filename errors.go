package graphnav

import (
	"errors"

	"github.com/brunobiangulo/graphnav/resolve"
)

var (
	// ErrNotFound is returned when resolution finds no matching node.
	// It is the resolver's sentinel, re-exported so callers only need
	// this package.
	ErrNotFound = resolve.ErrNotFound

	// ErrUnsupportedFormat is returned for unrecognized source formats.
	ErrUnsupportedFormat = errors.New("graphnav: unsupported source format")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("graphnav: invalid configuration")

	// ErrQueryUnsupported is returned when an ad-hoc query is run
	// against the local backend.
	ErrQueryUnsupported = errors.New("graphnav: ad-hoc queries require the remote backend")
)
