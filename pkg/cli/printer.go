package cli

import (
	"fmt"
	"io"
	"sync"

	"mercator-hq/conduit/pkg/providers"
)

// FragmentPrinter writes streamed fragments as they arrive. With a single
// generation the text is written as-is; with several, every switch between
// slots starts a new line prefixed with the slot number.
type FragmentPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	multi   bool
	current int
	started bool
}

// NewFragmentPrinter creates a printer for n generations.
func NewFragmentPrinter(w io.Writer, n int) *FragmentPrinter {
	return &FragmentPrinter{w: w, multi: n > 1, current: -1}
}

// Print writes one fragment.
func (p *FragmentPrinter) Print(f providers.Fragment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.multi && f.Index != p.current {
		prefix := fmt.Sprintf("[%d] ", f.Index)
		if p.started {
			prefix = "\n" + prefix
		}
		if _, err := io.WriteString(p.w, prefix); err != nil {
			return err
		}
		p.current = f.Index
	}
	p.started = true
	_, err := io.WriteString(p.w, f.Text)
	return err
}

// Finish terminates the output with a newline if anything was printed.
func (p *FragmentPrinter) Finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	_, err := io.WriteString(p.w, "\n")
	return err
}

// PrintGenerations writes materialized generations in the same layout as a
// stream would produce.
func PrintGenerations(w io.Writer, generations []string) error {
	p := NewFragmentPrinter(w, len(generations))
	for i, g := range generations {
		if err := p.Print(providers.Fragment{Index: i, Text: g}); err != nil {
			return err
		}
	}
	return p.Finish()
}
