package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/travelsite/internal/client/gateway"
	"github.com/atinyakov/travelsite/internal/models"
)

// fakeGateway keeps server-side state in memory and records every call.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]string

	enquiries  []models.Enquiry
	homeImages []models.HomeImage
	packages   map[models.PackageKind][]models.Package
	about      models.About
	users      []models.User

	lastKind    models.PackageKind
	lastID      string
	lastInput   models.PackageInput
	lastEnquiry models.EnquiryInput
	lastAbout   models.About
	export      gateway.ExportResult

	// anonymous makes Authenticated report false.
	anonymous bool

	// createEntered/createRelease let a test hold CreatePackage in flight.
	createEntered chan struct{}
	createRelease chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		fail: map[string]string{},
		enquiries: []models.Enquiry{
			{ID: "e1", Name: "Asha", Email: "asha@example.com", Package: "Goa"},
		},
		homeImages: []models.HomeImage{{ID: "h1", URL: "/uploads/h1.jpg"}},
		packages: map[models.PackageKind][]models.Package{
			models.Standard:    {{ID: "p1", Name: "Kerala", Price: "₹20000", Includes: []string{"Hotel"}}},
			models.HighSelling: {{ID: "hs1", Name: "Goa", Price: "₹15000"}},
		},
		about: models.About{Content: "About us", History: "Since 1999"},
	}
}

func (f *fakeGateway) record(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	msg, failed := f.fail[name]
	return msg, failed
}

func (f *fakeGateway) setFail(name, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = msg
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeGateway) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.anonymous
}

func (f *fakeGateway) ListEnquiries(context.Context) gateway.Result[[]models.Enquiry] {
	if msg, failed := f.record("ListEnquiries"); failed {
		return gateway.Result[[]models.Enquiry]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return gateway.Result[[]models.Enquiry]{Success: true, Data: append([]models.Enquiry(nil), f.enquiries...)}
}

func (f *fakeGateway) CreateEnquiry(_ context.Context, in models.EnquiryInput) gateway.Result[models.Enquiry] {
	if msg, failed := f.record("CreateEnquiry"); failed {
		return gateway.Result[models.Enquiry]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEnquiry = in
	e := models.Enquiry{ID: "e-new", Name: in.Name, Email: in.Email, Contact: in.Contact, Package: in.Package, Message: in.Message}
	f.enquiries = append(f.enquiries, e)
	return gateway.Result[models.Enquiry]{Success: true, Data: e}
}

func (f *fakeGateway) DeleteEnquiry(_ context.Context, id string) gateway.Result[struct{}] {
	if msg, failed := f.record("DeleteEnquiry"); failed {
		return gateway.Result[struct{}]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID = id
	f.enquiries = nil
	return gateway.Result[struct{}]{Success: true}
}

func (f *fakeGateway) ExportEnquiries(context.Context) gateway.ExportResult {
	if msg, failed := f.record("ExportEnquiries"); failed {
		return gateway.ExportResult{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.export
}

func (f *fakeGateway) ListPackages(_ context.Context, kind models.PackageKind) gateway.Result[[]models.Package] {
	if msg, failed := f.record("ListPackages:" + kind.String()); failed {
		return gateway.Result[[]models.Package]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return gateway.Result[[]models.Package]{Success: true, Data: append([]models.Package(nil), f.packages[kind]...)}
}

func (f *fakeGateway) CreatePackage(_ context.Context, kind models.PackageKind, in models.PackageInput) gateway.Result[models.Package] {
	msg, failed := f.record("CreatePackage")
	if f.createEntered != nil {
		f.createEntered <- struct{}{}
		<-f.createRelease
	}
	if failed {
		return gateway.Result[models.Package]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKind, f.lastInput = kind, in
	p := models.Package{ID: "new", Name: in.Name, Price: in.Price, Description: in.Description, Duration: in.Duration, Includes: in.Includes}
	f.packages[kind] = append(f.packages[kind], p)
	return gateway.Result[models.Package]{Success: true, Data: p}
}

func (f *fakeGateway) UpdatePackage(_ context.Context, kind models.PackageKind, id string, in models.PackageInput) gateway.Result[models.Package] {
	if msg, failed := f.record("UpdatePackage"); failed {
		return gateway.Result[models.Package]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKind, f.lastID, f.lastInput = kind, id, in
	return gateway.Result[models.Package]{Success: true}
}

func (f *fakeGateway) DeletePackage(_ context.Context, kind models.PackageKind, id string) gateway.Result[struct{}] {
	if msg, failed := f.record("DeletePackage"); failed {
		return gateway.Result[struct{}]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKind, f.lastID = kind, id
	f.packages[kind] = nil
	return gateway.Result[struct{}]{Success: true}
}

func (f *fakeGateway) UploadPackageImage(_ context.Context, kind models.PackageKind, id string, _ models.Upload) gateway.Result[string] {
	if msg, failed := f.record("UploadPackageImage"); failed {
		return gateway.Result[string]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKind, f.lastID = kind, id
	return gateway.Result[string]{Success: true, Data: "/uploads/pkg.jpg"}
}

func (f *fakeGateway) ListHomeImages(context.Context) gateway.Result[[]models.HomeImage] {
	if msg, failed := f.record("ListHomeImages"); failed {
		return gateway.Result[[]models.HomeImage]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return gateway.Result[[]models.HomeImage]{Success: true, Data: append([]models.HomeImage(nil), f.homeImages...)}
}

func (f *fakeGateway) UploadHomeImage(_ context.Context, file models.Upload) gateway.Result[models.HomeImage] {
	if msg, failed := f.record("UploadHomeImage"); failed {
		return gateway.Result[models.HomeImage]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	img := models.HomeImage{ID: "h2", URL: "/uploads/" + file.Name}
	f.homeImages = append(f.homeImages, img)
	return gateway.Result[models.HomeImage]{Success: true, Data: img}
}

func (f *fakeGateway) DeleteHomeImage(_ context.Context, id string) gateway.Result[struct{}] {
	if msg, failed := f.record("DeleteHomeImage"); failed {
		return gateway.Result[struct{}]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID = id
	return gateway.Result[struct{}]{Success: true}
}

func (f *fakeGateway) GetAbout(context.Context) gateway.Result[models.About] {
	if msg, failed := f.record("GetAbout"); failed {
		return gateway.Result[models.About]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return gateway.Result[models.About]{Success: true, Data: f.about}
}

func (f *fakeGateway) UpdateAbout(_ context.Context, about models.About) gateway.Result[models.About] {
	if msg, failed := f.record("UpdateAbout"); failed {
		return gateway.Result[models.About]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAbout = about
	f.about = about
	return gateway.Result[models.About]{Success: true, Data: about}
}

func (f *fakeGateway) UploadAboutVideo(context.Context, models.Upload) gateway.Result[models.VideoUpload] {
	if msg, failed := f.record("UploadAboutVideo"); failed {
		return gateway.Result[models.VideoUpload]{Message: msg}
	}
	return gateway.Result[models.VideoUpload]{Success: true, Data: models.VideoUpload{URL: "/uploads/tour.mp4"}}
}

func (f *fakeGateway) ListUsers(context.Context) gateway.Result[[]models.User] {
	if msg, failed := f.record("ListUsers"); failed {
		return gateway.Result[[]models.User]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return gateway.Result[[]models.User]{Success: true, Data: f.users}
}

func (f *fakeGateway) CreateUser(_ context.Context, in models.UserInput) gateway.Result[models.User] {
	if msg, failed := f.record("CreateUser"); failed {
		return gateway.Result[models.User]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{ID: "u-new", Username: in.Username, Email: in.Email, Role: in.Role}
	f.users = append(f.users, u)
	return gateway.Result[models.User]{Success: true, Data: u}
}

func (f *fakeGateway) UpdateUser(_ context.Context, id string, _ models.UserInput) gateway.Result[models.User] {
	if msg, failed := f.record("UpdateUser"); failed {
		return gateway.Result[models.User]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID = id
	return gateway.Result[models.User]{Success: true}
}

func (f *fakeGateway) DeleteUser(_ context.Context, id string) gateway.Result[struct{}] {
	if msg, failed := f.record("DeleteUser"); failed {
		return gateway.Result[struct{}]{Message: msg}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID = id
	return gateway.Result[struct{}]{Success: true}
}

func yes(string) bool { return true }
func no(string) bool  { return false }

func newTestStore(gw *fakeGateway, confirm ConfirmFunc) *ContentStore {
	return New(gw, WithConfirmer(confirm))
}

func TestRefreshAll_LoadsEveryCollection(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)

	snap := s.RefreshAll(context.Background())
	assert.Len(t, snap.Enquiries, 1)
	assert.Len(t, snap.HomeImages, 1)
	assert.Equal(t, "hs1", snap.HighSelling[0].ID)
	assert.Equal(t, "p1", snap.Packages[0].ID)
	assert.Equal(t, "About us", snap.About.Content)
	assert.Len(t, gw.Calls(), 5)
}

func TestRefreshAll_Idempotent(t *testing.T) {
	s := newTestStore(newFakeGateway(), yes)
	first := s.RefreshAll(context.Background())
	second := s.RefreshAll(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, second, s.Snapshot())
}

func TestRefreshAll_DegradesPerCollection(t *testing.T) {
	gw := newFakeGateway()
	gw.setFail("ListPackages:standard", "Backend error. Please check backend server logs.")
	gw.setFail("GetAbout", "boom")
	s := newTestStore(gw, yes)

	snap := s.RefreshAll(context.Background())
	assert.NotNil(t, snap.Packages)
	assert.Empty(t, snap.Packages)
	assert.Equal(t, models.About{}, snap.About)
	assert.Len(t, snap.Enquiries, 1)
	assert.Len(t, snap.HighSelling, 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(newFakeGateway(), yes)
	s.RefreshAll(context.Background())

	snap := s.Snapshot()
	snap.Packages[0].Name = "changed"
	assert.Equal(t, "Kerala", s.Snapshot().Packages[0].Name)
}

func TestParseIncludes(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Flight, Hotel,  Breakfast", []string{"Flight", "Hotel", "Breakfast"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"Sightseeing", []string{"Sightseeing"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIncludes(tt.raw))
		})
	}
}

func TestSavePackage_CreateStandard(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)

	err := s.SavePackage(context.Background(), models.Standard, PackageForm{
		Name: "Himalaya", Price: "₹30000", Description: "Trek", Duration: "7 days",
		Includes: "Flight, Hotel,  Breakfast",
	})
	require.NoError(t, err)

	assert.Equal(t, models.Standard, gw.lastKind)
	assert.Equal(t, "7 days", gw.lastInput.Duration)
	assert.Equal(t, []string{"Flight", "Hotel", "Breakfast"}, gw.lastInput.Includes)

	snap := s.Snapshot()
	require.Len(t, snap.Packages, 2)
	assert.Equal(t, "Himalaya", snap.Packages[1].Name)
	assert.Equal(t, PackageForm{}, s.Form())

	n, ok := s.Notices().Current()
	require.True(t, ok)
	assert.Equal(t, NoticeSuccess, n.Kind)
	assert.Equal(t, "Package created successfully!", n.Text)
}

func TestSavePackage_HighSellingOmitsStandardFields(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)

	err := s.SavePackage(context.Background(), models.HighSelling, PackageForm{
		Name: "Goa", Price: "1", Description: "Beach", Duration: "3 days", Includes: "Hotel",
	})
	require.NoError(t, err)
	assert.Equal(t, models.HighSelling, gw.lastKind)
	assert.Empty(t, gw.lastInput.Duration)
	assert.Nil(t, gw.lastInput.Includes)
}

func TestSavePackage_MissingFieldsSendsNothing(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	form := PackageForm{Name: "", Price: "10", Description: "x"}

	err := s.SavePackage(context.Background(), models.Standard, form)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Empty(t, gw.Calls())
	assert.Equal(t, form, s.Form())

	n, ok := s.Notices().Current()
	require.True(t, ok)
	assert.Equal(t, NoticeError, n.Kind)
	assert.Equal(t, "Please fill all fields", n.Text)
}

func TestSavePackage_EditUsesTargetKind(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)

	s.BeginEdit(models.Package{ID: "hs1", Name: "Goa", Price: "1", Description: "Beach"}, models.HighSelling)
	err := s.SavePackage(context.Background(), models.Standard, PackageForm{
		Name: "Goa 2", Price: "2", Description: "Beach", Includes: "Hotel",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gw.count("UpdatePackage"))
	assert.Equal(t, 0, gw.count("CreatePackage"))
	assert.Equal(t, models.HighSelling, gw.lastKind)
	assert.Equal(t, "hs1", gw.lastID)
	assert.Nil(t, gw.lastInput.Includes)

	_, editing := s.Editing()
	assert.False(t, editing)
	assert.Equal(t, PackageForm{}, s.Form())
}

func TestSavePackage_FailureKeepsForm(t *testing.T) {
	gw := newFakeGateway()
	gw.setFail("UpdatePackage", "Request failed (HTTP 404).")
	s := newTestStore(gw, yes)

	s.BeginEdit(models.Package{ID: "p1", Name: "Kerala", Price: "1", Description: "d", Includes: []string{"A", "B"}}, models.Standard)
	form := s.Form()
	assert.Equal(t, "A, B", form.Includes)

	err := s.SavePackage(context.Background(), models.Standard, form)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.Equal(t, form, s.Form())

	target, editing := s.Editing()
	assert.True(t, editing)
	assert.Equal(t, EditTarget{ID: "p1", Kind: models.Standard}, target)

	n, _ := s.Notices().Current()
	assert.Equal(t, NoticeError, n.Kind)
	assert.Contains(t, n.Text, "Failed to update package")
	assert.Contains(t, n.Text, "HTTP 404")
	assert.Equal(t, 0, gw.count("ListEnquiries"))
}

func TestBeginEditReplacesPreviousTarget(t *testing.T) {
	s := newTestStore(newFakeGateway(), yes)
	s.BeginEdit(models.Package{ID: "p1", Name: "A"}, models.Standard)
	s.BeginEdit(models.Package{ID: "hs1", Name: "B"}, models.HighSelling)

	target, ok := s.Editing()
	require.True(t, ok)
	assert.Equal(t, EditTarget{ID: "hs1", Kind: models.HighSelling}, target)
	assert.Equal(t, "B", s.Form().Name)

	s.CancelEdit()
	_, ok = s.Editing()
	assert.False(t, ok)
	assert.Equal(t, PackageForm{}, s.Form())
}

func TestDelete_DeclinedSendsNothing(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, no)
	ctx := context.Background()

	require.NoError(t, s.DeletePackage(ctx, models.Standard, "p1"))
	require.NoError(t, s.DeleteEnquiry(ctx, "e1"))
	require.NoError(t, s.DeleteHomeImage(ctx, "h1"))
	require.NoError(t, s.DeleteUser(ctx, "u1"))
	assert.Empty(t, gw.Calls())
}

func TestDelete_ConfirmedRefreshes(t *testing.T) {
	gw := newFakeGateway()
	var prompts []string
	s := newTestStore(gw, func(p string) bool {
		prompts = append(prompts, p)
		return true
	})
	ctx := context.Background()
	s.RefreshAll(ctx)

	require.NoError(t, s.DeleteEnquiry(ctx, "e1"))
	assert.Equal(t, "e1", gw.lastID)
	assert.Empty(t, s.Snapshot().Enquiries)
	assert.Equal(t, []string{promptDeleteEnquiry}, prompts)

	require.NoError(t, s.DeletePackage(ctx, models.HighSelling, "hs1"))
	assert.Equal(t, models.HighSelling, gw.lastKind)
	assert.Empty(t, s.Snapshot().HighSelling)

	n, _ := s.Notices().Current()
	assert.Equal(t, "Package deleted successfully!", n.Text)
}

func TestDelete_FailureSurfacesMessage(t *testing.T) {
	gw := newFakeGateway()
	gw.setFail("DeleteEnquiry", "Enquiry not found")
	s := newTestStore(gw, yes)

	err := s.DeleteEnquiry(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRemote)
	n, _ := s.Notices().Current()
	assert.Equal(t, "Failed to delete enquiry: Enquiry not found", n.Text)
	assert.Equal(t, 0, gw.count("ListEnquiries"))
}

func TestBusyRejectsConcurrentMutation(t *testing.T) {
	gw := newFakeGateway()
	gw.createEntered = make(chan struct{})
	gw.createRelease = make(chan struct{})
	s := newTestStore(gw, yes)
	ctx := context.Background()
	form := PackageForm{Name: "A", Price: "1", Description: "d"}

	errc := make(chan error, 1)
	go func() { errc <- s.SavePackage(ctx, models.Standard, form) }()
	<-gw.createEntered
	assert.True(t, s.Busy())

	err := s.SavePackage(ctx, models.Standard, form)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.ExportEnquiries(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	close(gw.createRelease)
	require.NoError(t, <-errc)
	assert.False(t, s.Busy())
	assert.Equal(t, 1, gw.count("CreatePackage"))
	assert.Equal(t, 0, gw.count("ExportEnquiries"))
}

func TestUploadBinary_NilFileIsNoop(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	require.NoError(t, s.UploadBinary(context.Background(), HomeImageTarget(), nil))
	assert.Empty(t, gw.Calls())
}

func TestUploadBinary_Targets(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	ctx := context.Background()

	err := s.UploadBinary(ctx, HomeImageTarget(), &models.Upload{Name: "beach.jpg", Content: strings.NewReader("img")})
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().HomeImages, 2)

	err = s.UploadBinary(ctx, PackageImageTarget(models.HighSelling, "hs1"), &models.Upload{Name: "goa.jpg", Content: strings.NewReader("img")})
	require.NoError(t, err)
	assert.Equal(t, models.HighSelling, gw.lastKind)
	assert.Equal(t, "hs1", gw.lastID)

	n, _ := s.Notices().Current()
	assert.Equal(t, "Image uploaded successfully!", n.Text)
}

func TestUploadBinary_AboutVideoPatchesLocally(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	ctx := context.Background()
	s.RefreshAll(ctx)
	before := len(gw.Calls())

	err := s.UploadBinary(ctx, AboutVideoTarget(), &models.Upload{Name: "tour.mp4", Content: strings.NewReader("vid")})
	require.NoError(t, err)

	assert.Equal(t, "/uploads/tour.mp4", s.Snapshot().About.Video)
	assert.Equal(t, "About us", s.Snapshot().About.Content)
	assert.Len(t, gw.Calls(), before+1)
}

func TestUpdateAbout(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	ctx := context.Background()
	s.RefreshAll(ctx)

	err := s.UpdateAbout(ctx, "   ", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, gw.count("UpdateAbout"))

	require.NoError(t, s.UpdateAbout(ctx, "New content", "/uploads/v.mp4"))
	assert.Equal(t, "New content", gw.lastAbout.Content)
	assert.Equal(t, "Since 1999", gw.lastAbout.History)
	assert.Equal(t, "New content", s.Snapshot().About.Content)
	assert.Equal(t, 2, gw.count("GetAbout"))
}

func TestExportEnquiries(t *testing.T) {
	gw := newFakeGateway()
	gw.export = gateway.ExportResult{Success: true, Blob: []byte("xlsx-bytes"), Filename: "q3.xlsx"}
	s := newTestStore(gw, yes)

	h, err := s.ExportEnquiries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "q3.xlsx", h.Filename)

	var buf bytes.Buffer
	_, err = h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", buf.String())

	dir := t.TempDir()
	path, err := h.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "q3.xlsx"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))

	h.Release()
	h.Release()
	assert.Zero(t, h.Size())
	_, err = h.WriteTo(&buf)
	assert.Error(t, err)
}

func TestExportEnquiries_Failure(t *testing.T) {
	gw := newFakeGateway()
	gw.setFail("ExportEnquiries", "Failed to download enquiries file (HTTP 403)")
	s := newTestStore(gw, yes)

	h, err := s.ExportEnquiries(context.Background())
	assert.Nil(t, h)
	require.ErrorIs(t, err, ErrRemote)
	n, _ := s.Notices().Current()
	assert.Equal(t, "Failed to download enquiries file (HTTP 403)", n.Text)
}

func TestSubmitEnquiry(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	ctx := context.Background()

	err := s.SubmitEnquiry(ctx, models.EnquiryInput{Email: "a@b.c"})
	require.ErrorIs(t, err, ErrValidation)
	err = s.SubmitEnquiry(ctx, models.EnquiryInput{Name: "Ravi"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, gw.Calls())

	require.NoError(t, s.SubmitEnquiry(ctx, models.EnquiryInput{Name: "Ravi", Contact: "98765", Package: "Goa"}))
	assert.Equal(t, "Book enquiry for Goa", gw.lastEnquiry.Message)
	assert.Len(t, s.Snapshot().Enquiries, 2)

	n, _ := s.Notices().Current()
	assert.Equal(t, "Enquiry submitted successfully!", n.Text)
}

func TestSubmitEnquiry_AnonymousSkipsEnquiryFetch(t *testing.T) {
	gw := newFakeGateway()
	gw.anonymous = true
	s := newTestStore(gw, yes)

	require.NoError(t, s.SubmitEnquiry(context.Background(), models.EnquiryInput{Name: "Ravi", Email: "r@example.com"}))
	assert.Equal(t, 1, gw.count("CreateEnquiry"))
	assert.Zero(t, gw.count("ListEnquiries"), "visitors cannot list enquiries")
	assert.Equal(t, 1, gw.count("GetAbout"))

	snap := s.Snapshot()
	assert.Empty(t, snap.Enquiries)
	assert.NotNil(t, snap.Enquiries)
	assert.Len(t, snap.Packages, 1)
}

func TestStartAutoRefresh_NonPositiveInterval(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	defer s.Dispose()

	for _, d := range []time.Duration{0, -time.Second} {
		err := s.StartAutoRefresh(context.Background(), d)
		assert.ErrorIs(t, err, ErrValidation)
	}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, gw.Calls())
}

func TestUsers(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	ctx := context.Background()

	require.ErrorIs(t, s.SaveUser(ctx, "", models.UserInput{Username: "x"}), ErrValidation)
	require.NoError(t, s.SaveUser(ctx, "", models.UserInput{Username: "x", Email: "x@y.z", Password: "pw"}))
	require.NoError(t, s.SaveUser(ctx, "u-new", models.UserInput{Role: "admin"}))
	assert.Equal(t, "u-new", gw.lastID)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "x", users[0].Username)

	gw.setFail("ListUsers", "Unauthorized")
	_, err = s.Users(ctx)
	assert.ErrorIs(t, err, ErrRemote)
}

func TestNotifier(t *testing.T) {
	n := NewNotifier(20 * time.Millisecond)
	defer n.Stop()

	n.Success("saved")
	got, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "saved", got.Text)
	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)

	n.Error("broken")
	time.Sleep(50 * time.Millisecond)
	got, ok = n.Current()
	require.True(t, ok)
	assert.Equal(t, NoticeError, got.Kind)

	n.Dismiss()
	_, ok = n.Current()
	assert.False(t, ok)
}

func TestNotifier_ErrorReplacesPendingSuccess(t *testing.T) {
	n := NewNotifier(20 * time.Millisecond)
	n.Success("saved")
	n.Error("broken")
	time.Sleep(50 * time.Millisecond)

	got, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "broken", got.Text)
}

func TestStartAutoRefresh(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw, yes)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.StartAutoRefresh(ctx, 10*time.Millisecond))
	assert.Eventually(t, func() bool {
		return gw.count("GetAbout") >= 2
	}, time.Second, 5*time.Millisecond)

	s.Dispose()
	s.Dispose()
	time.Sleep(30 * time.Millisecond)
	seen := gw.count("GetAbout")
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, seen, gw.count("GetAbout"))
}
