package pipeline

import (
	"errors"
	"io"
	"testing"

	"mercator-hq/conduit/pkg/providers"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{`data: {"a":1}`, `{"a":1}`, true},
		{`data:{"a":1}`, `{"a":1}`, true},
		{"data: [DONE]\r", "[DONE]", true},
		{"event: content_block_delta", "", false},
		{"id: 42", "", false},
		{"retry: 1000", "", false},
		{": keep-alive", "", false},
		{`{"bare":true}`, `{"bare":true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseLine([]byte(tt.line))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if string(got) != tt.want {
				t.Errorf("payload = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStream_CloseIdempotent(t *testing.T) {
	var releases []error
	s := newStream(func() ([]providers.Fragment, error) {
		return []providers.Fragment{{Text: "x"}}, nil
	}, func(err error, _ int) {
		releases = append(releases, err)
	})

	if _, err := s.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	s.Close()
	s.Close()

	if len(releases) != 1 || !errors.Is(releases[0], providers.ErrStreamClosed) {
		t.Errorf("releases = %v, want one ErrStreamClosed", releases)
	}
}

func TestStream_ReleaseOnEnd(t *testing.T) {
	var released bool
	var count int
	s := newReplayStream([]string{"a", "b"}, func(err error, n int) {
		released = err == nil
		count = n
	})

	for range 2 {
		if _, err := s.Recv(); err != nil {
			t.Fatalf("Recv: %v", err)
		}
	}
	if _, err := s.Recv(); err != io.EOF {
		t.Fatalf("Recv = %v, want io.EOF", err)
	}
	if !released || count != 2 {
		t.Errorf("released = %v count = %d", released, count)
	}

	// Close after the end does not release again.
	s.Close()
	if _, err := s.Recv(); !errors.Is(err, providers.ErrStreamClosed) {
		t.Errorf("Recv after Close = %v", err)
	}
}

func TestCollect(t *testing.T) {
	s := newStream(func() func() ([]providers.Fragment, error) {
		batches := [][]providers.Fragment{
			{{Index: 1, Text: "b"}},
			{{Index: 0, Text: "a"}, {Index: 1, Text: "c"}},
		}
		return func() ([]providers.Fragment, error) {
			if len(batches) == 0 {
				return nil, io.EOF
			}
			b := batches[0]
			batches = batches[1:]
			return b, nil
		}
	}(), func(error, int) {})

	got, err := Collect(s, 3)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "bc" || got[2] != "" {
		t.Errorf("Collect = %q", got)
	}
}
