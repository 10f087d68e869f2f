// Package store keeps the in-memory snapshot of all site content and
// orchestrates every mutation against the content API. After any successful
// mutation the snapshot is rebuilt from a full refresh; nothing is patched
// locally except the about video URL returned by its upload.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/travelsite/internal/client/gateway"
	"github.com/atinyakov/travelsite/internal/models"
)

var (
	// ErrBusy is returned when a mutation is started while another one is in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrValidation wraps presence-check failures; no request was sent.
	ErrValidation = errors.New("validation failed")
	// ErrRemote wraps failures reported by the gateway.
	ErrRemote = errors.New("remote operation failed")
)

// Gateway is everything the store needs from the content API.
type Gateway interface {
	ListEnquiries(ctx context.Context) gateway.Result[[]models.Enquiry]
	CreateEnquiry(ctx context.Context, in models.EnquiryInput) gateway.Result[models.Enquiry]
	DeleteEnquiry(ctx context.Context, id string) gateway.Result[struct{}]
	ExportEnquiries(ctx context.Context) gateway.ExportResult

	ListPackages(ctx context.Context, kind models.PackageKind) gateway.Result[[]models.Package]
	CreatePackage(ctx context.Context, kind models.PackageKind, in models.PackageInput) gateway.Result[models.Package]
	UpdatePackage(ctx context.Context, kind models.PackageKind, id string, in models.PackageInput) gateway.Result[models.Package]
	DeletePackage(ctx context.Context, kind models.PackageKind, id string) gateway.Result[struct{}]
	UploadPackageImage(ctx context.Context, kind models.PackageKind, id string, file models.Upload) gateway.Result[string]

	ListHomeImages(ctx context.Context) gateway.Result[[]models.HomeImage]
	UploadHomeImage(ctx context.Context, file models.Upload) gateway.Result[models.HomeImage]
	DeleteHomeImage(ctx context.Context, id string) gateway.Result[struct{}]

	GetAbout(ctx context.Context) gateway.Result[models.About]
	UpdateAbout(ctx context.Context, about models.About) gateway.Result[models.About]
	UploadAboutVideo(ctx context.Context, file models.Upload) gateway.Result[models.VideoUpload]

	ListUsers(ctx context.Context) gateway.Result[[]models.User]
	CreateUser(ctx context.Context, in models.UserInput) gateway.Result[models.User]
	UpdateUser(ctx context.Context, id string, in models.UserInput) gateway.Result[models.User]
	DeleteUser(ctx context.Context, id string) gateway.Result[struct{}]

	// Authenticated reports whether a credential is held. Enquiries are only
	// fetched when it is.
	Authenticated() bool
}

var _ Gateway = (*gateway.Gateway)(nil)

// Snapshot is the full set of content collections at one point in time.
// Collections are never nil.
type Snapshot struct {
	Enquiries   []models.Enquiry
	HomeImages  []models.HomeImage
	HighSelling []models.Package
	Packages    []models.Package
	About       models.About
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Enquiries:   slices.Clone(s.Enquiries),
		HomeImages:  slices.Clone(s.HomeImages),
		HighSelling: slices.Clone(s.HighSelling),
		Packages:    slices.Clone(s.Packages),
		About:       s.About,
	}
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Enquiries:   []models.Enquiry{},
		HomeImages:  []models.HomeImage{},
		HighSelling: []models.Package{},
		Packages:    []models.Package{},
	}
}

// ContentStore owns the snapshot and the admin form state.
type ContentStore struct {
	gw      Gateway
	confirm Confirmer
	notices *Notifier
	log     *zap.Logger

	mu      sync.RWMutex
	snap    Snapshot
	form    PackageForm
	editing *EditTarget

	busy     atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a ContentStore.
type Option func(*ContentStore)

// WithConfirmer sets the prompt used before destructive calls.
func WithConfirmer(c Confirmer) Option {
	return func(s *ContentStore) { s.confirm = c }
}

// WithNotifier replaces the default notifier.
func WithNotifier(n *Notifier) Option {
	return func(s *ContentStore) { s.notices = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *ContentStore) { s.log = l }
}

// New creates a store with an empty snapshot. Without a confirmer every
// destructive operation is declined.
func New(gw Gateway, opts ...Option) *ContentStore {
	s := &ContentStore{
		gw:      gw,
		confirm: ConfirmFunc(func(string) bool { return false }),
		log:     zap.NewNop(),
		snap:    emptySnapshot(),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notices == nil {
		s.notices = NewNotifier(DefaultDismissAfter)
	}
	return s
}

// Notices exposes the banner state for presentation.
func (s *ContentStore) Notices() *Notifier { return s.notices }

// Snapshot returns a copy of the current snapshot.
func (s *ContentStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Busy reports whether a mutation is in flight.
func (s *ContentStore) Busy() bool { return s.busy.Load() }

// RefreshAll fetches the five collections concurrently and replaces the
// snapshot once all of them have completed. A failed fetch yields an empty
// collection instead of failing the refresh. Without a credential the
// enquiries are left empty and not requested.
func (s *ContentStore) RefreshAll(ctx context.Context) Snapshot {
	next := emptySnapshot()
	var g errgroup.Group

	g.Go(func() error {
		if !s.gw.Authenticated() {
			return nil
		}
		if res := s.gw.ListEnquiries(ctx); res.Success {
			next.Enquiries = nonNil(res.Data)
		} else {
			s.log.Warn("refresh enquiries", zap.String("message", res.Message))
		}
		return nil
	})
	g.Go(func() error {
		if res := s.gw.ListHomeImages(ctx); res.Success {
			next.HomeImages = nonNil(res.Data)
		} else {
			s.log.Warn("refresh home images", zap.String("message", res.Message))
		}
		return nil
	})
	g.Go(func() error {
		if res := s.gw.ListPackages(ctx, models.HighSelling); res.Success {
			next.HighSelling = nonNil(res.Data)
		} else {
			s.log.Warn("refresh high-selling packages", zap.String("message", res.Message))
		}
		return nil
	})
	g.Go(func() error {
		if res := s.gw.ListPackages(ctx, models.Standard); res.Success {
			next.Packages = nonNil(res.Data)
		} else {
			s.log.Warn("refresh packages", zap.String("message", res.Message))
		}
		return nil
	})
	g.Go(func() error {
		if res := s.gw.GetAbout(ctx); res.Success {
			next.About = res.Data
		} else {
			s.log.Warn("refresh about", zap.String("message", res.Message))
		}
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return next.clone()
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// StartAutoRefresh refreshes the snapshot every interval until ctx is done
// or the store is disposed. interval must be positive.
func (s *ContentStore) StartAutoRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive, got %s", ErrValidation, interval)
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.RefreshAll(ctx)
			}
		}
	}()
	return nil
}

// Dispose stops background work. The snapshot stays readable.
func (s *ContentStore) Dispose() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.notices.Stop()
	})
}

// begin marks the store busy; the returned func clears the flag.
func (s *ContentStore) begin() (func(), error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { s.busy.Store(false) }, nil
}

func (s *ContentStore) invalid(msg string) error {
	s.notices.Error(msg)
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func (s *ContentStore) remote(fallback, msg string) error {
	text := fallback
	if msg != "" && msg != fallback {
		text = fallback + ": " + msg
	}
	s.notices.Error(text)
	return wrapRemote(text)
}

func wrapRemote(msg string) error {
	return fmt.Errorf("%w: %s", ErrRemote, msg)
}
