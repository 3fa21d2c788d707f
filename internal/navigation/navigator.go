package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

// ErrUnknownRoute is returned for paths missing from the route table.
var ErrUnknownRoute = errors.New("unknown route")

// MarkerReader reads the persisted markers.
type MarkerReader interface {
	Snapshot(ctx context.Context) (model.Markers, error)
}

// Navigator holds the current location of the application shell.
type Navigator struct {
	markers MarkerReader
	logger  *logger.Logger

	mu      sync.Mutex
	current Route
}

// NewNavigator creates a Navigator positioned at the entry route.
func NewNavigator(markers MarkerReader, logger *logger.Logger) *Navigator {
	return &Navigator{
		markers: markers,
		logger:  logger,
		current: Entry(),
	}
}

// Navigate moves to path, or to the guard's redirect target, and returns the
// route reached.
func (n *Navigator) Navigate(ctx context.Context, path string) (Route, error) {
	target, ok := Lookup(path)
	if !ok {
		return n.Current(), fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	markers, err := n.markers.Snapshot(ctx)
	if err != nil {
		return n.Current(), fmt.Errorf("failed to read session markers: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	decision := Decide(target, n.current, markers)
	reached := decision.Target(target)
	if !decision.Proceed() {
		n.logger.Info("Navigator: redirected",
			"from", n.current.Path,
			"requested", target.Path,
			"to", reached.Path)
	}
	n.current = reached
	return reached, nil
}

// HandleUnauthorized returns to the entry route after a forced logout.
func (n *Navigator) HandleUnauthorized(ev httpclient.UnauthorizedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current.Path == PathEntry {
		return
	}
	n.logger.Info("Navigator: session expired, returning to entry",
		"from", n.current.Path,
		"request_id", ev.RequestID)
	n.current = Entry()
}

// Current returns the current route.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
