package pipeline

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"strings"
	"sync"

	"mercator-hq/conduit/pkg/providers"
)

// maxLineSize bounds a single server-sent event line.
const maxLineSize = 1 << 20

// Stream is a lazy, finite, single-consumer sequence of fragments. It cannot
// be restarted: once it has ended, further reads return
// providers.ErrStreamConsumed.
//
// The underlying connection is released when the stream ends, fails, is
// closed, or its context is cancelled. Recv and Close must not be called
// concurrently.
type Stream struct {
	mu      sync.Mutex
	next    func() ([]providers.Fragment, error)
	release func(err error, fragments int)
	pending []providers.Fragment
	count   int
	done    bool
	closed  bool
	started bool
}

func newStream(next func() ([]providers.Fragment, error), release func(error, int)) *Stream {
	return &Stream{next: next, release: release}
}

// Recv returns the next fragment. It returns io.EOF once the provider
// signalled the end of the stream.
func (s *Stream) Recv() (providers.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return providers.Fragment{}, providers.ErrStreamClosed
	}
	if s.done {
		return providers.Fragment{}, providers.ErrStreamConsumed
	}

	for len(s.pending) == 0 {
		frags, err := s.next()
		if err != nil {
			s.done = true
			if err == io.EOF {
				s.release(nil, s.count)
			} else {
				s.release(err, s.count)
			}
			return providers.Fragment{}, err
		}
		s.pending = frags
	}

	f := s.pending[0]
	s.pending = s.pending[1:]
	s.count++
	return f, nil
}

// Close releases the stream. Closing before the end abandons it: nothing is
// cached. Close is idempotent.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if !s.done {
		s.done = true
		s.release(providers.ErrStreamClosed, s.count)
	}
	return nil
}

// All returns an iterator over the remaining fragments. Breaking out of the
// loop closes the stream. A second call yields providers.ErrStreamConsumed.
func (s *Stream) All() iter.Seq2[providers.Fragment, error] {
	return func(yield func(providers.Fragment, error) bool) {
		s.mu.Lock()
		consumed := s.started || s.done
		s.started = true
		s.mu.Unlock()

		if consumed {
			yield(providers.Fragment{}, providers.ErrStreamConsumed)
			return
		}

		for {
			f, err := s.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(providers.Fragment{}, err)
				return
			}
			if !yield(f, nil) {
				s.Close()
				return
			}
		}
	}
}

// Collect drains s into one text per generation slot. The result has at
// least n entries.
func Collect(s *Stream, n int) ([]string, error) {
	var acc accumulator
	for f, err := range s.All() {
		if err != nil {
			return nil, err
		}
		acc.add(f)
	}
	return acc.generations(n), nil
}

// accumulator concatenates fragments per slot.
type accumulator struct {
	slots []strings.Builder
}

func (a *accumulator) add(f providers.Fragment) {
	if f.Index < 0 {
		return
	}
	for len(a.slots) <= f.Index {
		a.slots = append(a.slots, strings.Builder{})
	}
	a.slots[f.Index].WriteString(f.Text)
}

func (a *accumulator) generations(n int) []string {
	out := make([]string, max(n, len(a.slots)))
	for i := range a.slots {
		out[i] = a.slots[i].String()
	}
	return out
}

// newReplayStream serves cached generations as a stream, one fragment per
// non-empty slot.
func newReplayStream(generations []string, release func(error, int)) *Stream {
	var frags []providers.Fragment
	for i, text := range generations {
		if text != "" {
			frags = append(frags, providers.Fragment{Index: i, Text: text})
		}
	}
	sent := false
	return newStream(func() ([]providers.Fragment, error) {
		if sent || len(frags) == 0 {
			return nil, io.EOF
		}
		sent = true
		return frags, nil
	}, release)
}

// newHTTPStream decodes a server-sent event body. The stream is cached only
// when the provider's end marker is reached.
func (r *run) newHTTPStream(body io.ReadCloser) *Stream {
	cfg := r.adapter.Config()
	terminator, _ := r.adapter.(providers.StreamTerminator)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var acc accumulator
	next := func() ([]providers.Fragment, error) {
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if r.capture != nil {
				r.capture.AddPayload(line, r.p.maxCapture)
			}

			payload, ok := parseLine(line)
			if !ok {
				continue
			}
			if cfg.EndOfStreamSentinel != "" && string(payload) == cfg.EndOfStreamSentinel {
				return nil, io.EOF
			}
			if terminator != nil && terminator.EndOfStream(payload) {
				return nil, io.EOF
			}

			texts, err := r.adapter.TransformResponse(payload)
			if err != nil {
				return nil, err
			}

			var frags []providers.Fragment
			for i, text := range texts {
				if text == "" {
					continue
				}
				f := providers.Fragment{Index: i, Text: text}
				acc.add(f)
				frags = append(frags, f)
			}
			if len(frags) > 0 {
				return frags, nil
			}
		}

		cause := scanner.Err()
		if cause == nil {
			cause = providers.ErrStreamTruncated
		}
		return nil, &providers.TransportError{Provider: r.provider, Cause: cause}
	}

	release := func(err error, fragments int) {
		body.Close()
		if err == nil {
			r.store(acc.generations(r.opts.Generations()))
		}
		r.finish(err, fragments)
	}

	return newStream(next, release)
}

// parseLine extracts the payload of one server-sent event line. Field lines
// other than data and comments are skipped. Lines without a field prefix are
// returned as-is for servers that stream bare JSON.
func parseLine(line []byte) ([]byte, bool) {
	line = bytes.TrimRight(line, "\r")
	switch {
	case bytes.HasPrefix(line, []byte("data:")):
		return bytes.TrimSpace(line[len("data:"):]), true
	case bytes.HasPrefix(line, []byte(":")),
		bytes.HasPrefix(line, []byte("event:")),
		bytes.HasPrefix(line, []byte("id:")),
		bytes.HasPrefix(line, []byte("retry:")):
		return nil, false
	default:
		return bytes.TrimSpace(line), true
	}
}
