package main

import (
	"sync"

	"github.com/unifmu/unifmu-go/internal/fmi2"
	"github.com/unifmu/unifmu-go/internal/fmi3"
)

// handleRegistry hands the C caller an opaque integer instead of a raw Go
// pointer: cgo forbids retaining a Go pointer to a Go pointer on the C side
// across calls, and an integer index is the idiomatic way around that
// (the same shape as a database/sql driver's statement handle).
type handleRegistry[T any] struct {
	mu   sync.Mutex
	next uint64
	byID map[uint64]T
}

func newHandleRegistry[T any]() *handleRegistry[T] {
	return &handleRegistry[T]{byID: map[uint64]T{}}
}

func (r *handleRegistry[T]) store(v T) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.byID[id] = v
	return id
}

func (r *handleRegistry[T]) load(id uint64) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	return v, ok
}

func (r *handleRegistry[T]) delete(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

var (
	fmi2Handles = newHandleRegistry[*fmi2.Handle]()
	fmi3Handles = newHandleRegistry[*fmi3.Handle]()
)
