package store

import (
	"strings"

	"github.com/atinyakov/travelsite/internal/models"
)

// PackageForm is the admin package form. Includes is the raw
// comma-separated text as typed.
type PackageForm struct {
	Name        string
	Price       string
	Description string
	Duration    string
	Includes    string
}

// missing reports whether a required field is blank.
func (f PackageForm) missing() bool {
	return strings.TrimSpace(f.Name) == "" ||
		strings.TrimSpace(f.Price) == "" ||
		strings.TrimSpace(f.Description) == ""
}

func (f PackageForm) input(kind models.PackageKind) models.PackageInput {
	in := models.PackageInput{
		Name:        f.Name,
		Price:       f.Price,
		Description: f.Description,
	}
	if kind == models.Standard {
		in.Duration = f.Duration
		in.Includes = ParseIncludes(f.Includes)
	}
	return in
}

// EditTarget identifies the package being edited.
type EditTarget struct {
	ID   string
	Kind models.PackageKind
}

// ParseIncludes splits comma-separated text into trimmed, non-empty items.
// The result is never nil.
func ParseIncludes(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// JoinIncludes renders an includes list for display or editing.
func JoinIncludes(items []string) string {
	return strings.Join(items, ", ")
}

// BeginEdit loads pkg into the form and makes it the edit target,
// replacing any previous target.
func (s *ContentStore) BeginEdit(pkg models.Package, kind models.PackageKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = PackageForm{
		Name:        pkg.Name,
		Price:       pkg.Price,
		Description: pkg.Description,
		Duration:    pkg.Duration,
		Includes:    JoinIncludes(pkg.Includes),
	}
	s.editing = &EditTarget{ID: pkg.ID, Kind: kind}
}

// CancelEdit clears the form and leaves edit mode.
func (s *ContentStore) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = PackageForm{}
	s.editing = nil
}

// Editing returns the current edit target, if any.
func (s *ContentStore) Editing() (EditTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editing == nil {
		return EditTarget{}, false
	}
	return *s.editing, true
}

// Form returns the current form contents.
func (s *ContentStore) Form() PackageForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}
