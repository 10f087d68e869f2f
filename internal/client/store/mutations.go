package store

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/models"
)

// TargetKind selects where an uploaded binary goes.
type TargetKind int

const (
	TargetHomeImage TargetKind = iota
	TargetPackageImage
	TargetAboutVideo
)

// UploadTarget names the destination of UploadBinary. Kind and ID are only
// read for TargetPackageImage.
type UploadTarget struct {
	Target TargetKind
	Kind   models.PackageKind
	ID     string
}

// HomeImageTarget uploads a new slider image.
func HomeImageTarget() UploadTarget { return UploadTarget{Target: TargetHomeImage} }

// PackageImageTarget sets the image of the package id of the given kind.
func PackageImageTarget(kind models.PackageKind, id string) UploadTarget {
	return UploadTarget{Target: TargetPackageImage, Kind: kind, ID: id}
}

// AboutVideoTarget replaces the about section video.
func AboutVideoTarget() UploadTarget { return UploadTarget{Target: TargetAboutVideo} }

// SavePackage creates a package of kind from form, or updates the edit
// target when in edit mode. The form is kept on failure.
func (s *ContentStore) SavePackage(ctx context.Context, kind models.PackageKind, form PackageForm) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	s.form = form
	var target *EditTarget
	if s.editing != nil {
		t := *s.editing
		target = &t
	}
	s.mu.Unlock()

	if form.missing() {
		return s.invalid("Please fill all fields")
	}

	if target != nil {
		res := s.gw.UpdatePackage(ctx, target.Kind, target.ID, form.input(target.Kind))
		if !res.Success {
			return s.remote("Failed to update package", res.Message)
		}
		s.finishSave(ctx, "Package updated successfully!")
		return nil
	}

	res := s.gw.CreatePackage(ctx, kind, form.input(kind))
	if !res.Success {
		return s.remote("Failed to create package", res.Message)
	}
	s.finishSave(ctx, "Package created successfully!")
	return nil
}

func (s *ContentStore) finishSave(ctx context.Context, notice string) {
	s.mu.Lock()
	s.form = PackageForm{}
	s.editing = nil
	s.mu.Unlock()
	s.RefreshAll(ctx)
	s.notices.Success(notice)
}

// DeletePackage removes a package after confirmation.
func (s *ContentStore) DeletePackage(ctx context.Context, kind models.PackageKind, id string) error {
	return s.confirmedDelete(ctx, promptDeletePackage, "Package deleted successfully!", "Failed to delete package",
		func() (bool, string) {
			res := s.gw.DeletePackage(ctx, kind, id)
			return res.Success, res.Message
		})
}

// DeleteEnquiry removes an enquiry after confirmation.
func (s *ContentStore) DeleteEnquiry(ctx context.Context, id string) error {
	return s.confirmedDelete(ctx, promptDeleteEnquiry, "Enquiry deleted successfully!", "Failed to delete enquiry",
		func() (bool, string) {
			res := s.gw.DeleteEnquiry(ctx, id)
			return res.Success, res.Message
		})
}

// DeleteHomeImage removes a slider image after confirmation.
func (s *ContentStore) DeleteHomeImage(ctx context.Context, id string) error {
	return s.confirmedDelete(ctx, promptDeleteHomeImage, "Image deleted successfully!", "Failed to delete image",
		func() (bool, string) {
			res := s.gw.DeleteHomeImage(ctx, id)
			return res.Success, res.Message
		})
}

// DeleteUser removes an admin user after confirmation.
func (s *ContentStore) DeleteUser(ctx context.Context, id string) error {
	return s.confirmedDelete(ctx, promptDeleteUser, "User deleted successfully!", "Failed to delete user",
		func() (bool, string) {
			res := s.gw.DeleteUser(ctx, id)
			return res.Success, res.Message
		})
}

// confirmedDelete asks first; a declined prompt sends nothing and is not an error.
func (s *ContentStore) confirmedDelete(ctx context.Context, prompt, ok, failed string, del func() (bool, string)) error {
	if !s.confirm.Confirm(prompt) {
		return nil
	}
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	success, msg := del()
	if !success {
		return s.remote(failed, msg)
	}
	s.RefreshAll(ctx)
	s.notices.Success(ok)
	return nil
}

// UploadBinary sends file to target. A nil file is ignored.
func (s *ContentStore) UploadBinary(ctx context.Context, target UploadTarget, file *models.Upload) error {
	if file == nil || file.Content == nil {
		return nil
	}
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	switch target.Target {
	case TargetHomeImage:
		res := s.gw.UploadHomeImage(ctx, *file)
		if !res.Success {
			return s.remote("Failed to upload image", res.Message)
		}
		s.RefreshAll(ctx)
		s.notices.Success("Image uploaded successfully!")
	case TargetPackageImage:
		res := s.gw.UploadPackageImage(ctx, target.Kind, target.ID, *file)
		if !res.Success {
			return s.remote("Failed to upload image", res.Message)
		}
		s.RefreshAll(ctx)
		s.notices.Success("Image uploaded successfully!")
	case TargetAboutVideo:
		res := s.gw.UploadAboutVideo(ctx, *file)
		if !res.Success {
			return s.remote("Failed to upload video", res.Message)
		}
		video := res.Data.Video
		if video == "" {
			video = res.Data.URL
		}
		s.mu.Lock()
		s.snap.About.Video = video
		s.mu.Unlock()
		s.notices.Success("Video uploaded successfully!")
	default:
		return s.invalid("Unsupported upload target")
	}
	return nil
}

// UpdateAbout replaces the about section. History is carried over from
// the current snapshot.
func (s *ContentStore) UpdateAbout(ctx context.Context, content, video string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if strings.TrimSpace(content) == "" {
		return s.invalid("Please enter content")
	}

	s.mu.RLock()
	about := s.snap.About
	s.mu.RUnlock()
	about.Content = content
	about.Video = video

	res := s.gw.UpdateAbout(ctx, about)
	if !res.Success {
		return s.remote("Failed to update about content", res.Message)
	}
	s.RefreshAll(ctx)
	s.notices.Success("About content updated successfully!")
	return nil
}

// ExportEnquiries downloads the enquiries spreadsheet. The caller owns the
// returned handle and should Release it.
func (s *ContentStore) ExportEnquiries(ctx context.Context) (*DownloadHandle, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	res := s.gw.ExportEnquiries(ctx)
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Failed to download enquiries file"
		}
		s.notices.Error(msg)
		return nil, wrapRemote(msg)
	}
	s.log.Debug("enquiries exported", zap.String("filename", res.Filename), zap.Int("bytes", len(res.Blob)))
	s.notices.Success("Enquiries Excel downloaded successfully!")
	return newDownloadHandle(res.Filename, res.Blob), nil
}

// SubmitEnquiry sends a visitor enquiry from the public site.
func (s *ContentStore) SubmitEnquiry(ctx context.Context, in models.EnquiryInput) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if strings.TrimSpace(in.Name) == "" {
		return s.invalid("Please enter your name")
	}
	if strings.TrimSpace(in.Email) == "" && strings.TrimSpace(in.Contact) == "" {
		return s.invalid("Please enter an email or contact number")
	}
	if in.Message == "" && in.Package != "" {
		in.Message = "Book enquiry for " + in.Package
	}

	res := s.gw.CreateEnquiry(ctx, in)
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Failed to submit enquiry"
		}
		s.notices.Error(msg)
		return wrapRemote(msg)
	}
	s.RefreshAll(ctx)
	s.notices.Success("Enquiry submitted successfully!")
	return nil
}

// Users lists admin accounts. Users are not part of the snapshot.
func (s *ContentStore) Users(ctx context.Context) ([]models.User, error) {
	res := s.gw.ListUsers(ctx)
	if !res.Success {
		return nil, s.remote("Failed to load users", res.Message)
	}
	return nonNil(res.Data), nil
}

// SaveUser creates a user when id is empty and updates it otherwise.
func (s *ContentStore) SaveUser(ctx context.Context, id string, in models.UserInput) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if id == "" {
		if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
			return s.invalid("Please fill all fields")
		}
		res := s.gw.CreateUser(ctx, in)
		if !res.Success {
			return s.remote("Failed to create user", res.Message)
		}
		s.RefreshAll(ctx)
		s.notices.Success("User created successfully!")
		return nil
	}

	res := s.gw.UpdateUser(ctx, id, in)
	if !res.Success {
		return s.remote("Failed to update user", res.Message)
	}
	s.RefreshAll(ctx)
	s.notices.Success("User updated successfully!")
	return nil
}
