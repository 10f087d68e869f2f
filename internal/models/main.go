// Package models defines the records shared by the content API and its clients.
package models

import (
	"fmt"
	"io"
	"time"
)

// User is an account allowed to sign in to the admin panel.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name.
	Username string `json:"username"`
	// Email is the contact address; unique across users.
	Email string `json:"email"`
	// Role is a free-form role label ("admin", "user").
	Role string `json:"role"`
	// PasswordHash is the bcrypt hash; never serialized.
	PasswordHash []byte `json:"-"`
}

// UserInput carries the fields accepted when creating or updating a user.
// Empty strings mean "not provided" on update.
type UserInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Enquiry is a visitor request submitted from the public site.
type Enquiry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact,omitempty"`
	Package   string    `json:"package,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EnquiryInput is the body of a public enquiry submission.
type EnquiryInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Package string `json:"package"`
	Message string `json:"message"`
}

// PackageKind selects one of the two package collections.
type PackageKind int

const (
	// Standard packages carry a duration and an includes list.
	Standard PackageKind = iota
	// HighSelling packages are the featured subset shown first on the site.
	HighSelling
)

// String returns the wire name of the kind.
func (k PackageKind) String() string {
	switch k {
	case Standard:
		return "standard"
	case HighSelling:
		return "high_selling"
	default:
		return fmt.Sprintf("PackageKind(%d)", int(k))
	}
}

// ParsePackageKind maps a user-facing name to a PackageKind.
func ParsePackageKind(s string) (PackageKind, error) {
	switch s {
	case "standard", "all", "package", "packages":
		return Standard, nil
	case "high_selling", "high-selling", "hs", "featured":
		return HighSelling, nil
	}
	return 0, fmt.Errorf("unknown package kind %q", s)
}

// Package is a tour package of either kind. Duration and Includes are
// only meaningful for Standard packages.
type Package struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Includes    []string  `json:"includes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PackageInput is the body of a package create or update call.
type PackageInput struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Duration    string   `json:"duration,omitempty"`
	Includes    []string `json:"includes,omitempty"`
}

// HomeImage is one slide of the home page slider.
type HomeImage struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// About is the singleton about/history section.
type About struct {
	Content   string    `json:"content"`
	History   string    `json:"history,omitempty"`
	Video     string    `json:"video,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VideoUpload is returned after the about video has been stored.
type VideoUpload struct {
	Video string `json:"video"`
	URL   string `json:"url"`
}

// Upload is a file picked for upload. Content is consumed once.
type Upload struct {
	Name    string
	Content io.Reader
}
