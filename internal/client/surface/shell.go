package surface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/travelsite/internal/client/store"
	"github.com/atinyakov/travelsite/internal/models"
)

const shellHelp = `Available commands:
  show [enquiries|high-selling|all-packages|home-images|about]
  refresh
  add <standard|high-selling>          create a package
  edit <standard|high-selling> <id>    edit a package
  cancel                               leave edit mode
  delete <standard|high-selling> <id>
  delete-enquiry <id>
  upload-image <path>                  add a home page image
  delete-image <id>
  package-image <standard|high-selling> <id> <path>
  about                                edit about content and video
  video <path>                         upload the about video
  export [dir]                         download enquiries.xlsx
  users | user-add | user-edit <id> | user-delete <id>
  exit`

// Shell is the admin panel driven by typed commands.
type Shell struct {
	store    *store.ContentStore
	prompt   *Prompter
	render   *Renderer
	out      io.Writer
	tab      Tab
	download string
}

// NewShell wires the admin shell. downloadDir receives exported files.
func NewShell(s *store.ContentStore, p *Prompter, r *Renderer, out io.Writer, downloadDir string) *Shell {
	return &Shell{store: s, prompt: p, render: r, out: out, tab: TabEnquiries, download: downloadDir}
}

// Run reads commands until exit or end of input.
func (sh *Shell) Run(ctx context.Context) {
	sh.render.Admin(sh.store.RefreshAll(ctx), sh.tab)
	for {
		line := sh.prompt.Line("admin> ")
		args := strings.Fields(line)
		if len(args) == 0 {
			if ctx.Err() != nil || !sh.prompt.more() {
				return
			}
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(sh.out, "Bye")
			return
		}
		sh.Exec(ctx, args)
	}
}

// Exec runs a single command and prints the resulting notice.
func (sh *Shell) Exec(ctx context.Context, args []string) {
	err := sh.exec(ctx, args)
	switch {
	case errors.Is(err, store.ErrBusy):
		fmt.Fprintln(sh.out, "Another operation is in progress.")
	case errors.Is(err, errUsage):
		fmt.Fprintln(sh.out, err.Error())
	case err != nil && !errors.Is(err, store.ErrValidation) && !errors.Is(err, store.ErrRemote):
		fmt.Fprintf(sh.out, "Error: %v\n", err)
	}
	sh.render.Notice(sh.store.Notices().Current())
}

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func (sh *Shell) exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "show":
		if len(args) > 1 {
			tab, ok := ParseTab(args[1])
			if !ok {
				return usage("show [enquiries|high-selling|all-packages|home-images|about]")
			}
			sh.tab = tab
		}
		sh.render.Admin(sh.store.Snapshot(), sh.tab)
	case "refresh":
		sh.render.Admin(sh.store.RefreshAll(ctx), sh.tab)
	case "add":
		if len(args) < 2 {
			return usage("add <standard|high-selling>")
		}
		kind, err := models.ParsePackageKind(args[1])
		if err != nil {
			return err
		}
		sh.store.CancelEdit()
		return sh.savePackage(ctx, kind)
	case "edit":
		if len(args) < 3 {
			return usage("edit <standard|high-selling> <id>")
		}
		kind, err := models.ParsePackageKind(args[1])
		if err != nil {
			return err
		}
		pkg, ok := findPackage(sh.store.Snapshot(), kind, args[2])
		if !ok {
			fmt.Fprintln(sh.out, "Package not found")
			return nil
		}
		sh.store.BeginEdit(pkg, kind)
		return sh.savePackage(ctx, kind)
	case "cancel":
		sh.store.CancelEdit()
	case "delete":
		if len(args) < 3 {
			return usage("delete <standard|high-selling> <id>")
		}
		kind, err := models.ParsePackageKind(args[1])
		if err != nil {
			return err
		}
		return sh.store.DeletePackage(ctx, kind, args[2])
	case "delete-enquiry":
		if len(args) < 2 {
			return usage("delete-enquiry <id>")
		}
		return sh.store.DeleteEnquiry(ctx, args[1])
	case "delete-image":
		if len(args) < 2 {
			return usage("delete-image <id>")
		}
		return sh.store.DeleteHomeImage(ctx, args[1])
	case "upload-image":
		if len(args) < 2 {
			return usage("upload-image <path>")
		}
		return sh.upload(ctx, store.HomeImageTarget(), args[1])
	case "package-image":
		if len(args) < 4 {
			return usage("package-image <standard|high-selling> <id> <path>")
		}
		kind, err := models.ParsePackageKind(args[1])
		if err != nil {
			return err
		}
		return sh.upload(ctx, store.PackageImageTarget(kind, args[2]), args[3])
	case "video":
		if len(args) < 2 {
			return usage("video <path>")
		}
		return sh.upload(ctx, store.AboutVideoTarget(), args[1])
	case "about":
		current := sh.store.Snapshot().About
		content := sh.prompt.keep("About Content", current.Content)
		video := sh.prompt.keep("Video URL", current.Video)
		return sh.store.UpdateAbout(ctx, content, video)
	case "export":
		dir := sh.download
		if len(args) > 1 {
			dir = args[1]
		}
		h, err := sh.store.ExportEnquiries(ctx)
		if err != nil {
			return err
		}
		defer h.Release()
		path, err := h.Save(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Saved %s\n", path)
	case "users":
		users, err := sh.store.Users(ctx)
		if err != nil {
			return err
		}
		sh.render.Users(users)
	case "user-add":
		in := models.UserInput{
			Username: sh.prompt.Line("Username: "),
			Email:    sh.prompt.Line("Email: "),
		}
		pw, err := sh.prompt.Password("Password: ")
		if err != nil {
			return err
		}
		in.Password = pw
		in.Role = sh.prompt.keep("Role", "admin")
		return sh.store.SaveUser(ctx, "", in)
	case "user-edit":
		if len(args) < 2 {
			return usage("user-edit <id>")
		}
		in := models.UserInput{
			Username: sh.prompt.Line("Username (blank keeps): "),
			Email:    sh.prompt.Line("Email (blank keeps): "),
			Role:     sh.prompt.Line("Role (blank keeps): "),
		}
		pw, err := sh.prompt.Password("Password (blank keeps): ")
		if err != nil {
			return err
		}
		in.Password = pw
		return sh.store.SaveUser(ctx, args[1], in)
	case "user-delete":
		if len(args) < 2 {
			return usage("user-delete <id>")
		}
		return sh.store.DeleteUser(ctx, args[1])
	default:
		fmt.Fprintln(sh.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (sh *Shell) savePackage(ctx context.Context, kind models.PackageKind) error {
	form := sh.prompt.PackageForm(sh.store.Form(), kind)
	if err := sh.store.SavePackage(ctx, kind, form); err != nil {
		return err
	}
	sh.render.Admin(sh.store.Snapshot(), sh.tab)
	return nil
}

func (sh *Shell) upload(ctx context.Context, target store.UploadTarget, path string) error {
	file, closer, err := OpenUpload(path)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	return sh.store.UploadBinary(ctx, target, file)
}

func findPackage(snap store.Snapshot, kind models.PackageKind, id string) (models.Package, bool) {
	list := snap.Packages
	if kind == models.HighSelling {
		list = snap.HighSelling
	}
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return models.Package{}, false
}
