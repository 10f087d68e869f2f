// Package surface renders the public site and the admin panel in a terminal
// and turns operator input into store calls.
package surface

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/atinyakov/travelsite/internal/client/store"
	"github.com/atinyakov/travelsite/internal/models"
)

// Prompter reads line-based answers from in and writes labels to out.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
	eof     bool
}

// NewPrompter wraps in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, scanner: bufio.NewScanner(in)}
}

var _ store.Confirmer = (*Prompter)(nil)

// Line prints label and returns the trimmed answer, empty at end of input.
func (p *Prompter) Line(label string) string {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		p.eof = true
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}

func (p *Prompter) more() bool { return !p.eof }

// Password reads a secret without echo when in is a terminal.
func (p *Prompter) Password(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(label), nil
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a yes/no question; anything but y or yes declines.
func (p *Prompter) Confirm(prompt string) bool {
	switch strings.ToLower(p.Line(prompt + " [y/N]: ")) {
	case "y", "yes":
		return true
	}
	return false
}

// keep returns answer, or current when the answer is empty.
func (p *Prompter) keep(label, current string) string {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	if answer := p.Line(label + ": "); answer != "" {
		return answer
	}
	return current
}

// PackageForm asks for the package fields, defaulting to initial. Duration
// and includes are only asked for standard packages.
func (p *Prompter) PackageForm(initial store.PackageForm, kind models.PackageKind) store.PackageForm {
	form := store.PackageForm{
		Name:        p.keep("Package Name", initial.Name),
		Price:       p.keep("Price", initial.Price),
		Description: p.keep("Description", initial.Description),
	}
	if kind == models.Standard {
		form.Duration = p.keep("Duration (e.g., 5 Days / 4 Nights)", initial.Duration)
		form.Includes = p.keep("Includes (comma separated)", initial.Includes)
	}
	return form
}

// EnquiryForm asks for the visitor's contact details.
func (p *Prompter) EnquiryForm(pkg string) models.EnquiryInput {
	return models.EnquiryInput{
		Name:    p.Line("Your Name: "),
		Email:   p.Line("Your Email: "),
		Contact: p.Line("Contact Number: "),
		Package: p.keep("Package", pkg),
	}
}

// OpenUpload opens path for upload. An empty path yields a nil upload.
// The caller closes the returned file.
func OpenUpload(path string) (*models.Upload, io.Closer, error) {
	if path == "" {
		return nil, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return &models.Upload{Name: filepath.Base(path), Content: f}, f, nil
}
