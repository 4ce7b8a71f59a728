package lattice

import "github.com/rs/zerolog"

// WorldOption is an option that can be used to configure a world.
type WorldOption func(*World)

// WithLogger replaces the world's no-op logger.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithBTreeOrder sets the default fanout used when a B-tree index is
// registered without an explicit order.
func WithBTreeOrder(order int) WorldOption {
	return func(w *World) {
		w.config.BTreeOrder = order
	}
}

// WithRTreeMaxChildren sets the default node capacity used when an R-tree
// index is registered without an explicit value.
func WithRTreeMaxChildren(maxChildren int) WorldOption {
	return func(w *World) {
		w.config.RTreeMaxChildren = maxChildren
	}
}
