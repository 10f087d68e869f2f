// Package gateway is the typed client of the travel content API. Every
// operation folds transport, decoding and HTTP failures into a Result value;
// no Go error crosses the package boundary.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/models"
)

const maxResponseBody = 64 << 20

// errTooLarge reports a response body over maxResponseBody.
var errTooLarge = errors.New("response too large")

// Gateway talks to the content API rooted at origin + "/api".
type Gateway struct {
	client  *http.Client
	origin  string
	session *Session
	log     *zap.Logger
}

// New returns a gateway for the backend at origin (scheme://host[:port]).
// A nil session yields an in-memory one; a nil logger discards output.
func New(client *http.Client, origin string, session *Session, log *zap.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	if session == nil {
		session = NewSession("")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		client:  client,
		origin:  strings.TrimRight(origin, "/"),
		session: session,
		log:     log,
	}
}

// Session exposes the credential holder.
func (g *Gateway) Session() *Session { return g.session }

// Authenticated reports whether a bearer token is held.
func (g *Gateway) Authenticated() bool { return g.session.Token() != "" }

// envelope is the JSON shape every API response is expected to follow.
// Success is a pointer so a missing field can be told apart from false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
}

type reply struct {
	status int
	header http.Header
	raw    []byte
	env    *envelope
}

func (r *reply) message() string {
	if r.env == nil {
		return ""
	}
	return r.env.Message
}

// exchange performs one round trip. The only error it returns is a
// transport failure; HTTP statuses are reported through reply.
func (g *Gateway) exchange(ctx context.Context, method, p string, body io.Reader, contentType string) (*reply, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.origin+apiPrefix+p, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := g.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error("api request failed", zap.String("method", method), zap.String("path", p), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		g.log.Error("read response body", zap.String("path", p), zap.Error(err))
		return nil, err
	}
	if len(raw) > maxResponseBody {
		g.log.Error("response body over limit", zap.String("path", p), zap.Int("limit", maxResponseBody))
		return nil, errTooLarge
	}
	g.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", p),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)

	r := &reply{status: resp.StatusCode, header: resp.Header, raw: raw}
	if isJSON(resp.Header.Get("Content-Type")) && len(bytes.TrimSpace(raw)) > 0 {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			g.log.Warn("undecodable JSON response", zap.String("path", p), zap.Error(err))
		} else {
			r.env = &env
		}
	}
	return r, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// exchangeFailure is the message for an error returned by exchange.
func (g *Gateway) exchangeFailure(err error) string {
	if errors.Is(err, errTooLarge) {
		return msgTooLarge
	}
	return unreachableMessage(g.origin)
}

// call sends payload as JSON (nil for no body) and shapes the reply.
func call[T any](ctx context.Context, g *Gateway, method, p string, payload any) Result[T] {
	var (
		body        io.Reader
		contentType string
	)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return failure[T](fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	r, err := g.exchange(ctx, method, p, body, contentType)
	if err != nil {
		return failure[T](g.exchangeFailure(err))
	}
	return shape[T](g, p, r)
}

// upload sends file as the "file" field of a multipart form.
func upload[T any](ctx context.Context, g *Gateway, p string, file models.Upload) Result[T] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", path.Base(file.Name))
	if err != nil {
		return failure[T](fmt.Sprintf("prepare upload: %v", err))
	}
	if file.Content != nil {
		if _, err := io.Copy(part, file.Content); err != nil {
			return failure[T](fmt.Sprintf("read upload: %v", err))
		}
	}
	if err := mw.Close(); err != nil {
		return failure[T](fmt.Sprintf("prepare upload: %v", err))
	}

	r, err := g.exchange(ctx, http.MethodPost, p, &buf, mw.FormDataContentType())
	if err != nil {
		return failure[T](g.exchangeFailure(err))
	}
	return shape[T](g, p, r)
}

func shape[T any](g *Gateway, p string, r *reply) Result[T] {
	switch {
	case r.status >= 500:
		return failure[T](firstNonEmpty(r.message(), msgBackendError))
	case r.status < 200 || r.status >= 300:
		return failure[T](firstNonEmpty(r.message(), clientErrorMessage(r.status)))
	}

	res := Result[T]{Success: true}
	if r.env == nil {
		return res
	}
	res.Message = r.env.Message
	if r.env.Success != nil && !*r.env.Success {
		return failure[T](firstNonEmpty(r.env.Message, clientErrorMessage(r.status)))
	}
	if len(r.env.Data) > 0 && !bytes.Equal(r.env.Data, []byte("null")) {
		if err := json.Unmarshal(r.env.Data, &res.Data); err != nil {
			g.log.Warn("unexpected data shape", zap.String("path", p), zap.Error(err))
			var zero T
			res.Data = zero
		}
	}
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveMediaURL turns a server-relative media path into an absolute URL.
func (g *Gateway) ResolveMediaURL(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return g.origin + u
}

// ===== authentication =====

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and stores it in the session.
func (g *Gateway) Login(ctx context.Context, username, password string) Result[string] {
	b, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return failure[string](fmt.Sprintf("encode request: %v", err))
	}
	r, err := g.exchange(ctx, http.MethodPost, pathLogin, bytes.NewReader(b), "application/json")
	if err != nil {
		return failure[string](g.exchangeFailure(err))
	}

	switch {
	case r.status >= 500:
		return failure[string](firstNonEmpty(r.message(), msgBackendError))
	case r.status < 200 || r.status >= 300:
		return failure[string](firstNonEmpty(r.message(), loginErrorMessage(r.status)))
	}

	token := loginToken(r.env)
	if token == "" {
		return failure[string](firstNonEmpty(r.message(), msgLoginBadReply))
	}
	if err := g.session.SetToken(token); err != nil {
		g.log.Warn("persist session", zap.Error(err))
	}
	return Result[string]{Success: true, Data: token, Message: r.message()}
}

func loginToken(env *envelope) string {
	if env == nil {
		return ""
	}
	if env.Token != "" {
		return env.Token
	}
	var nested struct {
		Token string `json:"token"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &nested) == nil {
		return nested.Token
	}
	return ""
}

// Logout forgets the stored credential.
func (g *Gateway) Logout() {
	if err := g.session.Clear(); err != nil {
		g.log.Warn("clear session", zap.Error(err))
	}
}

// ===== enquiries =====

func (g *Gateway) ListEnquiries(ctx context.Context) Result[[]models.Enquiry] {
	return call[[]models.Enquiry](ctx, g, http.MethodGet, pathEnquiries, nil)
}

func (g *Gateway) CreateEnquiry(ctx context.Context, in models.EnquiryInput) Result[models.Enquiry] {
	return call[models.Enquiry](ctx, g, http.MethodPost, pathEnquiries, in)
}

func (g *Gateway) DeleteEnquiry(ctx context.Context, id string) Result[struct{}] {
	return call[struct{}](ctx, g, http.MethodDelete, itemPath(pathEnquiries, id), nil)
}

// ExportEnquiries downloads the enquiry spreadsheet.
func (g *Gateway) ExportEnquiries(ctx context.Context) ExportResult {
	r, err := g.exchange(ctx, http.MethodGet, pathEnquiryExport, nil, "")
	if err != nil {
		return ExportResult{Message: g.exchangeFailure(err)}
	}
	switch {
	case r.status >= 500:
		return ExportResult{Message: firstNonEmpty(r.message(), msgBackendError)}
	case r.status < 200 || r.status >= 300:
		msg := r.message()
		if msg == "" {
			msg = fmt.Sprintf("%s (HTTP %d)", msgExportFailed, r.status)
		}
		return ExportResult{Message: msg}
	}
	return ExportResult{
		Success:  true,
		Blob:     r.raw,
		Filename: attachmentName(r.header.Get("Content-Disposition")),
	}
}

// attachmentName extracts the download name from a Content-Disposition
// header, falling back to the default export name.
func attachmentName(disposition string) string {
	if disposition == "" {
		return defaultExportName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return defaultExportName
	}
	name := path.Base(strings.ReplaceAll(params["filename"], `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return defaultExportName
	}
	return name
}

// ===== packages =====

func (g *Gateway) ListPackages(ctx context.Context, kind models.PackageKind) Result[[]models.Package] {
	route, ok := packageRoutes[kind]
	if !ok {
		return failure[[]models.Package](fmt.Sprintf("unsupported package kind %s", kind))
	}
	return call[[]models.Package](ctx, g, http.MethodGet, route.list(), nil)
}

func (g *Gateway) CreatePackage(ctx context.Context, kind models.PackageKind, in models.PackageInput) Result[models.Package] {
	route, ok := packageRoutes[kind]
	if !ok {
		return failure[models.Package](fmt.Sprintf("unsupported package kind %s", kind))
	}
	return call[models.Package](ctx, g, http.MethodPost, route.list(), in)
}

func (g *Gateway) UpdatePackage(ctx context.Context, kind models.PackageKind, id string, in models.PackageInput) Result[models.Package] {
	route, ok := packageRoutes[kind]
	if !ok {
		return failure[models.Package](fmt.Sprintf("unsupported package kind %s", kind))
	}
	return call[models.Package](ctx, g, http.MethodPut, route.item(id), in)
}

func (g *Gateway) DeletePackage(ctx context.Context, kind models.PackageKind, id string) Result[struct{}] {
	route, ok := packageRoutes[kind]
	if !ok {
		return failure[struct{}](fmt.Sprintf("unsupported package kind %s", kind))
	}
	return call[struct{}](ctx, g, http.MethodDelete, route.item(id), nil)
}

// UploadPackageImage attaches an image to a package; Data is the stored URL.
func (g *Gateway) UploadPackageImage(ctx context.Context, kind models.PackageKind, id string, file models.Upload) Result[string] {
	route, ok := packageRoutes[kind]
	if !ok {
		return failure[string](fmt.Sprintf("unsupported package kind %s", kind))
	}
	return upload[string](ctx, g, route.image(id), file)
}

// ===== home images =====

func (g *Gateway) ListHomeImages(ctx context.Context) Result[[]models.HomeImage] {
	return call[[]models.HomeImage](ctx, g, http.MethodGet, pathHomeImages, nil)
}

func (g *Gateway) UploadHomeImage(ctx context.Context, file models.Upload) Result[models.HomeImage] {
	return upload[models.HomeImage](ctx, g, pathHomeImages, file)
}

func (g *Gateway) DeleteHomeImage(ctx context.Context, id string) Result[struct{}] {
	return call[struct{}](ctx, g, http.MethodDelete, itemPath(pathHomeImages, id), nil)
}

// ===== about =====

func (g *Gateway) GetAbout(ctx context.Context) Result[models.About] {
	return call[models.About](ctx, g, http.MethodGet, pathAbout, nil)
}

func (g *Gateway) UpdateAbout(ctx context.Context, about models.About) Result[models.About] {
	return call[models.About](ctx, g, http.MethodPut, pathAbout, about)
}

func (g *Gateway) UploadAboutVideo(ctx context.Context, file models.Upload) Result[models.VideoUpload] {
	return upload[models.VideoUpload](ctx, g, pathAboutVideo, file)
}

// ===== users =====

func (g *Gateway) ListUsers(ctx context.Context) Result[[]models.User] {
	return call[[]models.User](ctx, g, http.MethodGet, pathUsers, nil)
}

func (g *Gateway) CreateUser(ctx context.Context, in models.UserInput) Result[models.User] {
	return call[models.User](ctx, g, http.MethodPost, pathUsers, in)
}

func (g *Gateway) UpdateUser(ctx context.Context, id string, in models.UserInput) Result[models.User] {
	return call[models.User](ctx, g, http.MethodPut, itemPath(pathUsers, id), in)
}

func (g *Gateway) DeleteUser(ctx context.Context, id string) Result[struct{}] {
	return call[struct{}](ctx, g, http.MethodDelete, itemPath(pathUsers, id), nil)
}
