package cache

import (
	"errors"

	"github.com/IvanBrykalov/lrucache/internal/singleflight"
)

var (
	// ErrInvalidCapacity is returned when a cache is created with, or resized
	// to, a capacity below 1. The cache state is left unchanged.
	ErrInvalidCapacity = errors.New("cache: capacity must be at least 1")

	// ErrAbsent is returned by Load when the loader reports that the key has
	// no value and no default was supplied.
	ErrAbsent = errors.New("cache: no value for key")

	// ErrNoLoader is returned by NewLoading/NewDecaying for a nil loader.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrNoPredicate is returned by NewDecaying for a nil freshness predicate.
	ErrNoPredicate = errors.New("cache: no freshness predicate provided")

	// ErrAbandoned is returned to every caller of a load that was in flight
	// when Purge ran. The loaded value, if any, was not stored.
	ErrAbandoned = errors.New("cache: load abandoned by purge")

	// ErrLoaderPanicked is returned to callers waiting on a load whose loader
	// panicked. The goroutine that ran the loader re-panics instead.
	ErrLoaderPanicked = singleflight.ErrPanicked
)
