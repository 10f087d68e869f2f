package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/media"
	"github.com/atinyakov/travelsite/internal/models"
	"github.com/atinyakov/travelsite/internal/repository"
)

// ContentRepository defines the persistence operations needed by ContentService.
type ContentRepository interface {
	ListEnquiries(ctx context.Context) ([]models.Enquiry, error)
	CreateEnquiry(ctx context.Context, e models.Enquiry) error
	DeleteEnquiry(ctx context.Context, id string, at time.Time) error

	ListPackages(ctx context.Context, kind models.PackageKind) ([]models.Package, error)
	GetPackage(ctx context.Context, kind models.PackageKind, id string) (*models.Package, error)
	CreatePackage(ctx context.Context, kind models.PackageKind, p models.Package) error
	UpdatePackage(ctx context.Context, kind models.PackageKind, p models.Package) error
	SetPackageImage(ctx context.Context, kind models.PackageKind, id, url string) error
	DeletePackage(ctx context.Context, kind models.PackageKind, id string) error

	ListHomeImages(ctx context.Context) ([]models.HomeImage, error)
	CreateHomeImage(ctx context.Context, img models.HomeImage) error
	DeleteHomeImage(ctx context.Context, id string) (*models.HomeImage, error)

	GetAbout(ctx context.Context) (models.About, error)
	PutAbout(ctx context.Context, a models.About) error
	SetAboutVideo(ctx context.Context, url string, at time.Time) error
}

// ContentService implements the rules for the public site content.
type ContentService struct {
	repo  ContentRepository
	media media.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewContentService constructs a ContentService. Uploaded files go to store.
func NewContentService(repo ContentRepository, store media.Store, log *zap.Logger) *ContentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentService{repo: repo, media: store, log: log, now: time.Now}
}

// ===== enquiries =====

func (s *ContentService) Enquiries(ctx context.Context) ([]models.Enquiry, error) {
	return s.repo.ListEnquiries(ctx)
}

// SubmitEnquiry records a visitor enquiry. A name and one way to reach the
// visitor are required.
func (s *ContentService) SubmitEnquiry(ctx context.Context, in models.EnquiryInput) (*models.Enquiry, error) {
	e := models.Enquiry{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Contact: strings.TrimSpace(in.Contact),
		Package: strings.TrimSpace(in.Package),
		Message: strings.TrimSpace(in.Message),
	}
	if e.Name == "" {
		return nil, fail(ErrInvalidInput, "Name is required")
	}
	if e.Email == "" && e.Contact == "" {
		return nil, fail(ErrInvalidInput, "Email or contact is required")
	}
	if e.Message == "" && e.Package != "" {
		e.Message = "Package enquiry for " + e.Package
	}
	e.ID = uuid.NewString()
	e.Timestamp = s.now().UTC()

	if err := s.repo.CreateEnquiry(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *ContentService) DeleteEnquiry(ctx context.Context, id string) error {
	err := s.repo.DeleteEnquiry(ctx, id, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "Enquiry not found")
	}
	return err
}

// ===== packages =====

// NormalizeIncludes trims every entry and drops the empty ones.
func NormalizeIncludes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// packageFields copies the editable fields of in, keeping only what kind supports.
func packageFields(kind models.PackageKind, p *models.Package, in models.PackageInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = strings.TrimSpace(in.Price)
	p.Description = strings.TrimSpace(in.Description)
	p.Duration, p.Includes = "", nil
	if kind == models.Standard {
		p.Duration = strings.TrimSpace(in.Duration)
		p.Includes = NormalizeIncludes(in.Includes)
	}
}

func (s *ContentService) Packages(ctx context.Context, kind models.PackageKind) ([]models.Package, error) {
	return s.repo.ListPackages(ctx, kind)
}

func (s *ContentService) CreatePackage(ctx context.Context, kind models.PackageKind, in models.PackageInput) (*models.Package, error) {
	p := models.Package{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	packageFields(kind, &p, in)
	if p.Name == "" {
		return nil, fail(ErrInvalidInput, "Package name is required")
	}
	if err := s.repo.CreatePackage(ctx, kind, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePackage replaces the editable fields; id, image and created_at are kept.
func (s *ContentService) UpdatePackage(ctx context.Context, kind models.PackageKind, id string, in models.PackageInput) (*models.Package, error) {
	p, err := s.repo.GetPackage(ctx, kind, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ErrNotFound, "Package not found")
	}
	if err != nil {
		return nil, err
	}
	packageFields(kind, p, in)
	if p.Name == "" {
		return nil, fail(ErrInvalidInput, "Package name is required")
	}
	if err := s.repo.UpdatePackage(ctx, kind, *p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrNotFound, "Package not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *ContentService) DeletePackage(ctx context.Context, kind models.PackageKind, id string) error {
	return s.repo.DeletePackage(ctx, kind, id)
}

// UploadPackageImage stores the file and points the package at it. The
// returned string is the public URL.
func (s *ContentService) UploadPackageImage(ctx context.Context, kind models.PackageKind, id, filename string, r io.Reader) (string, error) {
	key, url, err := s.store(ctx, filename, r)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetPackageImage(ctx, kind, id, url); err != nil {
		s.discard(key)
		if errors.Is(err, repository.ErrNotFound) {
			return "", fail(ErrNotFound, "Package not found")
		}
		return "", err
	}
	return url, nil
}

// ===== home images =====

func (s *ContentService) HomeImages(ctx context.Context) ([]models.HomeImage, error) {
	return s.repo.ListHomeImages(ctx)
}

func (s *ContentService) UploadHomeImage(ctx context.Context, filename string, r io.Reader) (*models.HomeImage, error) {
	key, url, err := s.store(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	img := models.HomeImage{
		ID:         uuid.NewString(),
		URL:        url,
		Filename:   key,
		UploadedAt: s.now().UTC(),
	}
	if err := s.repo.CreateHomeImage(ctx, img); err != nil {
		s.discard(key)
		return nil, err
	}
	return &img, nil
}

// DeleteHomeImage removes the image and its file. Unknown ids succeed.
func (s *ContentService) DeleteHomeImage(ctx context.Context, id string) error {
	img, err := s.repo.DeleteHomeImage(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if key, ok := media.KeyFromURL(img.URL); ok {
		s.discard(key)
	}
	return nil
}

// ===== about =====

func (s *ContentService) About(ctx context.Context) (models.About, error) {
	return s.repo.GetAbout(ctx)
}

// UpdateAbout replaces the about section wholesale.
func (s *ContentService) UpdateAbout(ctx context.Context, a models.About) (*models.About, error) {
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.PutAbout(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *ContentService) UploadAboutVideo(ctx context.Context, filename string, r io.Reader) (*models.VideoUpload, error) {
	key, url, err := s.store(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAboutVideo(ctx, url, s.now().UTC()); err != nil {
		s.discard(key)
		return nil, err
	}
	return &models.VideoUpload{Video: url, URL: url}, nil
}

// ===== media =====

// OpenMedia returns a stored upload by key.
func (s *ContentService) OpenMedia(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.media.Open(ctx, key)
	if errors.Is(err, media.ErrNotFound) {
		return nil, fail(ErrNotFound, "Resource not found")
	}
	return rc, err
}

func (s *ContentService) store(ctx context.Context, filename string, r io.Reader) (key, url string, err error) {
	if strings.TrimSpace(filename) == "" {
		return "", "", fail(ErrInvalidInput, "No file selected")
	}
	key = media.NewKey(filename)
	if err := s.media.Put(ctx, key, r, mime.TypeByExtension(path.Ext(key))); err != nil {
		return "", "", fmt.Errorf("store upload: %w", err)
	}
	return key, media.URL(key), nil
}

// discard removes a blob whose metadata write failed.
func (s *ContentService) discard(key string) {
	if err := s.media.Delete(context.Background(), key); err != nil {
		s.log.Warn("failed to remove upload", zap.String("key", key), zap.Error(err))
	}
}
