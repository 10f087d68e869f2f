package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/atinyakov/travelsite/internal/models"
)

// PostgresContentRepository persists the site content: enquiries, packages,
// home page images and the about section.
type PostgresContentRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresContentRepository creates a new PostgresContentRepository using the provided *sql.DB.
func NewPostgresContentRepository(db *sql.DB) *PostgresContentRepository {
	return &PostgresContentRepository{DB: db}
}

// ===== enquiries =====

// ListEnquiries returns live enquiries in submission order.
func (r *PostgresContentRepository) ListEnquiries(ctx context.Context) ([]models.Enquiry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, email, contact, package, message, created_at
		FROM enquiries WHERE deleted_at IS NULL ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	out := []models.Enquiry{}
	for rows.Next() {
		var e models.Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Contact, &e.Package, &e.Message, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan enquiry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateEnquiry inserts e as submitted.
func (r *PostgresContentRepository) CreateEnquiry(ctx context.Context, e models.Enquiry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO enquiries (id, name, email, contact, package, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Name, e.Email, e.Contact, e.Package, e.Message, e.Timestamp)
	if err != nil {
		return fmt.Errorf("create enquiry: %w", err)
	}
	return nil
}

// DeleteEnquiry marks the enquiry deleted; the cleaner purges it later.
func (r *PostgresContentRepository) DeleteEnquiry(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE enquiries SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("delete enquiry: %w", err)
	}
	return expectOne(res)
}

// ===== packages =====

const packageColumns = `id, name, price, description, image, duration, includes, created_at`

func scanPackage(row interface{ Scan(...any) error }) (models.Package, error) {
	var (
		p        models.Package
		includes []string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Duration,
		pq.Array(&includes), &p.CreatedAt)
	if len(includes) > 0 {
		p.Includes = includes
	}
	return p, err
}

// ListPackages returns the packages of one kind, oldest first.
func (r *PostgresContentRepository) ListPackages(ctx context.Context, kind models.PackageKind) ([]models.Package, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE kind = $1 ORDER BY created_at`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	out := []models.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPackage loads one package of the given kind.
func (r *PostgresContentRepository) GetPackage(ctx context.Context, kind models.PackageKind, id string) (*models.Package, error) {
	p, err := scanPackage(r.DB.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE kind = $1 AND id = $2`, kind.String(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

// CreatePackage inserts p under kind.
func (r *PostgresContentRepository) CreatePackage(ctx context.Context, kind models.PackageKind, p models.Package) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO packages (id, kind, name, price, description, image, duration, includes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, kind.String(), p.Name, p.Price, p.Description, p.Image, p.Duration,
		pq.Array(includesOrEmpty(p.Includes)), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	return nil
}

// UpdatePackage replaces the editable fields of p.ID; image and created_at stay.
func (r *PostgresContentRepository) UpdatePackage(ctx context.Context, kind models.PackageKind, p models.Package) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE packages SET name = $3, price = $4, description = $5, duration = $6, includes = $7
		WHERE kind = $1 AND id = $2
	`, kind.String(), p.ID, p.Name, p.Price, p.Description, p.Duration, pq.Array(includesOrEmpty(p.Includes)))
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	return expectOne(res)
}

// SetPackageImage records the image URL of a package.
func (r *PostgresContentRepository) SetPackageImage(ctx context.Context, kind models.PackageKind, id, url string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE packages SET image = $3 WHERE kind = $1 AND id = $2`, kind.String(), id, url)
	if err != nil {
		return fmt.Errorf("set package image: %w", err)
	}
	return expectOne(res)
}

// DeletePackage removes a package. Deleting a missing id is not an error.
func (r *PostgresContentRepository) DeletePackage(ctx context.Context, kind models.PackageKind, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM packages WHERE kind = $1 AND id = $2`, kind.String(), id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	return nil
}

func includesOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// ===== home images =====

// ListHomeImages returns the slider images in upload order.
func (r *PostgresContentRepository) ListHomeImages(ctx context.Context) ([]models.HomeImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, url, filename, uploaded_at FROM home_images ORDER BY uploaded_at`)
	if err != nil {
		return nil, fmt.Errorf("list home images: %w", err)
	}
	defer rows.Close()

	out := []models.HomeImage{}
	for rows.Next() {
		var img models.HomeImage
		if err := rows.Scan(&img.ID, &img.URL, &img.Filename, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan home image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// CreateHomeImage inserts img.
func (r *PostgresContentRepository) CreateHomeImage(ctx context.Context, img models.HomeImage) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO home_images (id, url, filename, uploaded_at) VALUES ($1, $2, $3, $4)`,
		img.ID, img.URL, img.Filename, img.UploadedAt)
	if err != nil {
		return fmt.Errorf("create home image: %w", err)
	}
	return nil
}

// DeleteHomeImage removes an image row and returns it so the blob can be
// dropped too.
func (r *PostgresContentRepository) DeleteHomeImage(ctx context.Context, id string) (*models.HomeImage, error) {
	var img models.HomeImage
	err := r.DB.QueryRowContext(ctx,
		`DELETE FROM home_images WHERE id = $1 RETURNING id, url, filename, uploaded_at`, id,
	).Scan(&img.ID, &img.URL, &img.Filename, &img.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete home image: %w", err)
	}
	return &img, nil
}

// ===== about =====

// GetAbout returns the singleton about row.
func (r *PostgresContentRepository) GetAbout(ctx context.Context) (models.About, error) {
	var a models.About
	err := r.DB.QueryRowContext(ctx,
		`SELECT content, history, video, updated_at FROM about WHERE id = 1`,
	).Scan(&a.Content, &a.History, &a.Video, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.About{}, nil
	}
	if err != nil {
		return models.About{}, fmt.Errorf("get about: %w", err)
	}
	return a, nil
}

// PutAbout replaces the about section wholesale.
func (r *PostgresContentRepository) PutAbout(ctx context.Context, a models.About) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO about (id, content, history, video, updated_at) VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			history = EXCLUDED.history,
			video = EXCLUDED.video,
			updated_at = EXCLUDED.updated_at
	`, a.Content, a.History, a.Video, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put about: %w", err)
	}
	return nil
}

// SetAboutVideo points the about section at a new video URL.
func (r *PostgresContentRepository) SetAboutVideo(ctx context.Context, url string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE about SET video = $1, updated_at = $2 WHERE id = 1`, url, at)
	if err != nil {
		return fmt.Errorf("set about video: %w", err)
	}
	return nil
}
