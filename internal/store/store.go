// Package store holds the single published copy of the latest control frame.
//
// The receiver goroutine is the only writer and the render loop the only
// reader. Every publish builds a fresh Frame and swaps it in with one atomic
// pointer store, so a reader sees either the old frame or the new one, never
// a mix of both.
package store

import (
	"sync/atomic"

	"github.com/coreman2200/funtimes-artery/internal/e131"
)

type Store struct {
	cur atomic.Pointer[e131.Frame]
	gen atomic.Uint64
}

// New returns a store holding an all-zero frame.
func New() *Store {
	s := &Store{}
	s.cur.Store(&e131.Frame{})
	return s
}

// Publish validates and copies b, then makes it the current frame. b is not
// retained.
func (s *Store) Publish(b []byte) error {
	f, err := e131.Parse(b)
	if err != nil {
		return err
	}
	s.PublishFrame(f)
	return nil
}

// PublishFrame takes ownership of f. Callers must not modify it afterwards.
func (s *Store) PublishFrame(f *e131.Frame) {
	s.cur.Store(f)
	s.gen.Add(1)
}

// Snapshot returns a private copy of the current frame.
func (s *Store) Snapshot() e131.Frame {
	return *s.cur.Load()
}

// Generation counts publishes since New. Useful to tell whether a controller
// has sent anything yet.
func (s *Store) Generation() uint64 { return s.gen.Load() }
