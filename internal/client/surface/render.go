package surface

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/atinyakov/travelsite/internal/client/store"
	"github.com/atinyakov/travelsite/internal/models"
)

// Tab is one section of the admin panel.
type Tab string

const (
	TabEnquiries   Tab = "enquiries"
	TabHighSelling Tab = "high-selling"
	TabPackages    Tab = "all-packages"
	TabHomeImages  Tab = "home-images"
	TabAbout       Tab = "about"
)

// Tabs lists the admin sections in display order.
var Tabs = []Tab{TabEnquiries, TabHighSelling, TabPackages, TabHomeImages, TabAbout}

// ParseTab accepts a tab name as typed in the shell.
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Renderer writes snapshots as plain text.
type Renderer struct {
	out     io.Writer
	resolve func(string) string
	ok      *color.Color
	fail    *color.Color
	heading *color.Color
}

// NewRenderer writes to out; resolve turns stored media paths into URLs.
func NewRenderer(out io.Writer, resolve func(string) string) *Renderer {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	return &Renderer{
		out:     out,
		resolve: resolve,
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		heading: color.New(color.Bold),
	}
}

func (r *Renderer) section(title string) {
	fmt.Fprintln(r.out)
	r.heading.Fprintf(r.out, "== %s ==\n", title)
}

// Notice prints the current banner, if any.
func (r *Renderer) Notice(n store.Notice, visible bool) {
	if !visible {
		return
	}
	if n.Kind == store.NoticeError {
		r.fail.Fprintf(r.out, "✗ %s\n", n.Text)
		return
	}
	r.ok.Fprintf(r.out, "✓ %s\n", n.Text)
}

// Public renders the visitor site with the slider at slide.
func (r *Renderer) Public(snap store.Snapshot, slide int) {
	images := SlideImages(snap.HomeImages, r.resolve)
	r.section("Home")
	fmt.Fprintf(r.out, "[%d/%d] %s\n", slide%len(images)+1, len(images), images[slide%len(images)])

	r.section("High Selling Packages")
	r.packages(snap.HighSelling, models.HighSelling)

	r.section("All Packages")
	r.packages(snap.Packages, models.Standard)

	r.section("About Us")
	fmt.Fprintln(r.out, snap.About.Content)
	if snap.About.History != "" {
		r.section("Our History")
		fmt.Fprintln(r.out, snap.About.History)
	}
	if snap.About.Video != "" {
		fmt.Fprintf(r.out, "Video: %s\n", r.resolve(snap.About.Video))
	}
}

// Admin renders one admin tab.
func (r *Renderer) Admin(snap store.Snapshot, tab Tab) {
	switch tab {
	case TabEnquiries:
		r.section(fmt.Sprintf("Enquiries (%d)", len(snap.Enquiries)))
		r.enquiries(snap.Enquiries)
	case TabHighSelling:
		r.section("High Selling Packages")
		r.packages(snap.HighSelling, models.HighSelling)
	case TabPackages:
		r.section("All Packages")
		r.packages(snap.Packages, models.Standard)
	case TabHomeImages:
		r.section("Home Page Images")
		r.homeImages(snap.HomeImages)
	case TabAbout:
		r.section("About Content")
		fmt.Fprintln(r.out, snap.About.Content)
		if snap.About.Video != "" {
			fmt.Fprintf(r.out, "Video: %s\n", r.resolve(snap.About.Video))
		}
	}
}

func (r *Renderer) packages(list []models.Package, kind models.PackageKind) {
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No packages yet.")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	if kind == models.Standard {
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDURATION\tINCLUDES\tIMAGE")
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Price, p.Duration, store.JoinIncludes(p.Includes), r.resolve(p.Image))
		}
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION\tIMAGE")
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Price, oneLine(p.Description), r.resolve(p.Image))
		}
	}
	_ = tw.Flush()
}

func (r *Renderer) enquiries(list []models.Enquiry) {
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No enquiries yet.")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCONTACT\tPACKAGE\tMESSAGE\tDATE")
	for _, e := range list {
		date := ""
		if !e.Timestamp.IsZero() {
			date = e.Timestamp.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, e.Email, e.Contact, e.Package, oneLine(e.Message), date)
	}
	_ = tw.Flush()
}

func (r *Renderer) homeImages(list []models.HomeImage) {
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No images uploaded.")
		return
	}
	for _, img := range list {
		fmt.Fprintf(r.out, "%s  %s\n", img.ID, r.resolve(img.URL))
	}
}

// Users renders the admin user list.
func (r *Renderer) Users(list []models.User) {
	r.section("Users")
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
	}
	_ = tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
