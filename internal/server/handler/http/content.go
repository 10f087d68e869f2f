package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/models"
)

// maxUploadBytes caps a single multipart upload.
const maxUploadBytes = 200 << 20

// ContentService defines the site content operations required by ContentHandler.
type ContentService interface {
	Enquiries(ctx context.Context) ([]models.Enquiry, error)
	SubmitEnquiry(ctx context.Context, in models.EnquiryInput) (*models.Enquiry, error)
	DeleteEnquiry(ctx context.Context, id string) error
	ExportEnquiries(ctx context.Context, w io.Writer) error

	Packages(ctx context.Context, kind models.PackageKind) ([]models.Package, error)
	CreatePackage(ctx context.Context, kind models.PackageKind, in models.PackageInput) (*models.Package, error)
	UpdatePackage(ctx context.Context, kind models.PackageKind, id string, in models.PackageInput) (*models.Package, error)
	DeletePackage(ctx context.Context, kind models.PackageKind, id string) error
	UploadPackageImage(ctx context.Context, kind models.PackageKind, id, filename string, r io.Reader) (string, error)

	HomeImages(ctx context.Context) ([]models.HomeImage, error)
	UploadHomeImage(ctx context.Context, filename string, r io.Reader) (*models.HomeImage, error)
	DeleteHomeImage(ctx context.Context, id string) error

	About(ctx context.Context) (models.About, error)
	UpdateAbout(ctx context.Context, a models.About) (*models.About, error)
	UploadAboutVideo(ctx context.Context, filename string, r io.Reader) (*models.VideoUpload, error)

	OpenMedia(ctx context.Context, key string) (io.ReadCloser, error)
}

// ContentHandler serves enquiries, packages, home images, the about
// section and uploaded media.
type ContentHandler struct {
	ContentService ContentService
	// ExportName is the attachment filename of the enquiry export.
	ExportName string
	Log        *zap.Logger
}

// ===== enquiries =====

func (h *ContentHandler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	list, err := h.ContentService.Enquiries(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, list, "")
}

// CreateEnquiry handles the public POST /api/enquiries.
func (h *ContentHandler) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	var in models.EnquiryInput
	if !decode(w, r, &in) {
		return
	}
	e, err := h.ContentService.SubmitEnquiry(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusCreated, e, "Enquiry created successfully")
}

func (h *ContentHandler) DeleteEnquiry(w http.ResponseWriter, r *http.Request) {
	if err := h.ContentService.DeleteEnquiry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, nil, "Enquiry deleted successfully")
}

// ExportEnquiries streams the enquiry workbook as an attachment. The
// workbook is built in memory first so failures still produce JSON.
func (h *ContentHandler) ExportEnquiries(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.ContentService.ExportEnquiries(r.Context(), &buf); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.ExportName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("export write interrupted", zap.Error(err))
	}
}

// ===== packages =====

// PackageRoutes mounts the CRUD and image endpoints of one package kind.
func (h *ContentHandler) PackageRoutes(kind models.PackageKind, protected func(chi.Router)) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			list, err := h.ContentService.Packages(r.Context(), kind)
			if err != nil {
				writeError(w, r, h.Log, err)
				return
			}
			ok(w, r, http.StatusOK, list, "")
		})

		r.Group(func(r chi.Router) {
			protected(r)
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				var in models.PackageInput
				if !decode(w, r, &in) {
					return
				}
				p, err := h.ContentService.CreatePackage(r.Context(), kind, in)
				if err != nil {
					writeError(w, r, h.Log, err)
					return
				}
				ok(w, r, http.StatusCreated, p, "Package created successfully")
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				var in models.PackageInput
				if !decode(w, r, &in) {
					return
				}
				p, err := h.ContentService.UpdatePackage(r.Context(), kind, chi.URLParam(r, "id"), in)
				if err != nil {
					writeError(w, r, h.Log, err)
					return
				}
				ok(w, r, http.StatusOK, p, "Package updated successfully")
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				if err := h.ContentService.DeletePackage(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
					writeError(w, r, h.Log, err)
					return
				}
				ok(w, r, http.StatusOK, nil, "Package deleted successfully")
			})
			r.Post("/{id}/image", func(w http.ResponseWriter, r *http.Request) {
				h.receive(w, r, func(name string, body io.Reader) (any, error) {
					return h.ContentService.UploadPackageImage(r.Context(), kind, chi.URLParam(r, "id"), name, body)
				}, http.StatusOK, "Image uploaded successfully")
			})
		})
	}
}

// ===== home images =====

func (h *ContentHandler) ListHomeImages(w http.ResponseWriter, r *http.Request) {
	list, err := h.ContentService.HomeImages(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, list, "")
}

func (h *ContentHandler) UploadHomeImage(w http.ResponseWriter, r *http.Request) {
	h.receive(w, r, func(name string, body io.Reader) (any, error) {
		return h.ContentService.UploadHomeImage(r.Context(), name, body)
	}, http.StatusCreated, "Image uploaded successfully")
}

func (h *ContentHandler) DeleteHomeImage(w http.ResponseWriter, r *http.Request) {
	if err := h.ContentService.DeleteHomeImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, nil, "Image deleted successfully")
}

// ===== about =====

func (h *ContentHandler) GetAbout(w http.ResponseWriter, r *http.Request) {
	a, err := h.ContentService.About(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, a, "")
}

func (h *ContentHandler) UpdateAbout(w http.ResponseWriter, r *http.Request) {
	var in models.About
	if !decode(w, r, &in) {
		return
	}
	a, err := h.ContentService.UpdateAbout(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, a, "About content updated successfully")
}

func (h *ContentHandler) UploadAboutVideo(w http.ResponseWriter, r *http.Request) {
	h.receive(w, r, func(name string, body io.Reader) (any, error) {
		return h.ContentService.UploadAboutVideo(r.Context(), name, body)
	}, http.StatusOK, "Video uploaded successfully")
}

// ===== media =====

// ServeMedia handles GET /uploads/{name}.
func (h *ContentHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := h.ContentService.OpenMedia(r.Context(), name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("media write interrupted", zap.String("name", name), zap.Error(err))
	}
}

// receive extracts the multipart "file" field and hands it to store.
func (h *ContentHandler) receive(w http.ResponseWriter, r *http.Request,
	store func(name string, body io.Reader) (any, error), status int, msg string,
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		fail(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	if err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err))
		return
	}
	defer file.Close()
	if header.Filename == "" {
		fail(w, r, http.StatusBadRequest, "No file selected")
		return
	}

	data, err := store(header.Filename, file)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, status, data, msg)
}
