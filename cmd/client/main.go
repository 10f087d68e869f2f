// Package main is travelctl, the terminal client of the travel site: it
// shows the public site, submits enquiries and runs the admin shell.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/client/gateway"
	"github.com/atinyakov/travelsite/internal/client/store"
	"github.com/atinyakov/travelsite/internal/client/surface"
	"github.com/atinyakov/travelsite/internal/config"
	"github.com/atinyakov/travelsite/internal/logger"
)

var (
	version   string
	buildDate string
)

var errNotLoggedIn = errors.New("not logged in, run `travelctl login` first")

// app holds the objects shared by all subcommands. They are built once
// the flags are parsed.
type app struct {
	in  io.Reader
	out io.Writer

	opts   *config.ClientOptions
	log    *zap.Logger
	gw     *gateway.Gateway
	store  *store.ContentStore
	prompt *surface.Prompter
	render *surface.Renderer
}

func (a *app) init(cmd *cobra.Command) error {
	opts, err := config.LoadClient(cmd)
	if err != nil {
		return err
	}
	a.opts = opts

	l := logger.New()
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	if err := l.Init(level); err != nil {
		return err
	}
	a.log = l.Log

	client, err := gateway.NewHTTPClient(opts.CAFile, opts.Timeout)
	if err != nil {
		return err
	}
	session := gateway.NewSession(opts.SessionFile)
	if err := session.Load(); err != nil {
		a.log.Warn("ignoring stored session", zap.Error(err))
	}
	a.gw = gateway.New(client, opts.APIBase, session, a.log)
	a.prompt = surface.NewPrompter(a.in, a.out)
	a.store = store.New(a.gw, store.WithConfirmer(a.prompt), store.WithLogger(a.log))
	a.render = surface.NewRenderer(a.out, a.gw.ResolveMediaURL)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Dispose()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) requireLogin() error {
	if a.gw.Session().Token() == "" {
		return errNotLoggedIn
	}
	return nil
}

// notice prints the banner left by the last store call.
func (a *app) notice() {
	n, ok := a.store.Notices().Current()
	a.render.Notice(n, ok)
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:           "travelctl",
		Short:         "Travel site client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	config.AddClientFlags(root)

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.siteCmd(),
		a.enquireCmd(),
		a.exportCmd(),
		a.shellCmd(),
		versionCmd(out),
	)
	return root
}

func (a *app) loginCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				username = a.prompt.Line("Username: ")
			}
			password, err := a.prompt.Password("Password: ")
			if err != nil {
				return err
			}
			res := a.gw.Login(cmd.Context(), username, password)
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(a.out, cmp.Or(res.Message, "Login successful"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			a.gw.Logout()
			fmt.Fprintln(a.out, "Logged out")
		},
	}
}

func (a *app) siteCmd() *cobra.Command {
	var (
		watch   bool
		refresh time.Duration
	)
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Show the public site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch && refresh <= 0 {
				return fmt.Errorf("--refresh must be positive, got %s", refresh)
			}
			ctx := cmd.Context()
			snap := a.store.RefreshAll(ctx)
			a.render.Public(snap, 0)
			if !watch {
				return nil
			}

			// Redraw on every slide; the snapshot is refreshed in the background.
			var mu sync.Mutex
			slider := surface.NewSlider(len(surface.SlideImages(snap.HomeImages, a.gw.ResolveMediaURL)))
			defer slider.Stop()
			if err := a.store.StartAutoRefresh(ctx, refresh); err != nil {
				return err
			}
			slider.Start(ctx, surface.SlideInterval, func(i int) {
				mu.Lock()
				defer mu.Unlock()
				cur := a.store.Snapshot()
				slider.SetCount(len(surface.SlideImages(cur.HomeImages, a.gw.ResolveMediaURL)))
				a.render.Public(cur, i)
			})
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running, advancing the slider")
	cmd.Flags().DurationVar(&refresh, "refresh", 30*time.Second, "content refresh interval with --watch")
	return cmd
}

func (a *app) enquireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enquire [package]",
		Short: "Send an enquiry about a package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pkg string
			if len(args) == 1 {
				pkg = args[0]
			}
			err := a.store.SubmitEnquiry(cmd.Context(), a.prompt.EnquiryForm(pkg))
			a.notice()
			return err
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Download the enquiries spreadsheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			dir := a.opts.DownloadDir
			if len(args) == 1 {
				dir = args[0]
			}
			h, err := a.store.ExportEnquiries(cmd.Context())
			a.notice()
			if err != nil {
				return err
			}
			defer h.Release()
			path, err := h.Save(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, h.Size())
			return nil
		},
	}
}

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open the admin panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			surface.NewShell(a.store, a.prompt, a.render, a.out, a.opts.DownloadDir).Run(cmd.Context())
			return nil
		},
	}
}

func versionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(out, "travelctl\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
