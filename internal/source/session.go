package source

import (
	"context"
	"io"
)

// Session is one driven browser page. A Session is not safe for concurrent
// use; every adapter call opens its own and closes it before returning.
type Session interface {
	io.Closer

	// Navigate loads url and waits for the page to finish loading.
	Navigate(ctx context.Context, url string) error
	// Fill replaces the value of the input matching selector.
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the element matching selector.
	Click(ctx context.Context, selector string) error
	// WaitFor blocks until an element matching selector exists.
	WaitFor(ctx context.Context, selector string) error
	// Rows returns the cell text of every element matching rowSelector.
	Rows(ctx context.Context, rowSelector string) ([][]string, error)
	// Text returns the trimmed text of the first element matching selector,
	// or "" when none exists.
	Text(ctx context.Context, selector string) (string, error)
}

// Launcher opens Sessions.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}
