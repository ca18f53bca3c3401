package source

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// fakePage is what a fakeSession shows after navigating to a URL.
type fakePage struct {
	text map[string]string
	rows map[string][][]string
	err  error // returned from Navigate
}

// fakeBrowser serves canned pages and tracks session lifecycle.
type fakeBrowser struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	opened  int
	closed  int
	visited []string
	filled  map[string]string
	clicked []string
	hang    bool // Navigate blocks until ctx is done
	openErr error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{pages: map[string]fakePage{}, filled: map[string]string{}}
}

func (b *fakeBrowser) NewSession(context.Context) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opened++
	return &fakeSession{b: b}, nil
}

func (b *fakeBrowser) counts() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.closed
}

type fakeSession struct {
	b       *fakeBrowser
	current fakePage
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.b.mu.Lock()
	s.b.visited = append(s.b.visited, url)
	hang := s.b.hang
	page, ok := s.b.pages[url]
	s.b.mu.Unlock()

	if hang {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
	if !ok {
		return eris.Errorf("net::ERR_NAME_NOT_RESOLVED at %s", url)
	}
	if page.err != nil {
		return page.err
	}
	s.current = page
	return nil
}

func (s *fakeSession) Fill(_ context.Context, selector, value string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.filled[selector] = value
	return nil
}

func (s *fakeSession) Click(_ context.Context, selector string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.clicked = append(s.b.clicked, selector)
	return nil
}

func (s *fakeSession) WaitFor(context.Context, string) error { return nil }

func (s *fakeSession) Rows(_ context.Context, sel string) ([][]string, error) {
	return s.current.rows[sel], nil
}

func (s *fakeSession) Text(_ context.Context, sel string) (string, error) {
	return s.current.text[sel], nil
}

func (s *fakeSession) Close() error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.closed++
	return nil
}
