package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/ff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/receiptly/internal/auth"
	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/navigation"
	"github.com/mmeshcher/receiptly/internal/refresh"
	"github.com/mmeshcher/receiptly/internal/render"
	"github.com/mmeshcher/receiptly/internal/screen"
)

var errMissingID = errors.New("receipt id is required")

func (a *App) signInCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("signin").SetParent(parent)
	email := fs.StringLong("email", "", "account email")
	password := fs.StringLong("password", "", "account password")

	return &ff.Command{
		Name:      "signin",
		Usage:     "receiptly signin --email EMAIL --password PASSWORD",
		ShortHelp: "sign in to an existing account",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			s, err := a.Sessions.SignIn(ctx, *email, *password)
			if err != nil {
				return err
			}
			return a.welcome(s)
		},
	}
}

func (a *App) signUpCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("signup").SetParent(parent)
	name := fs.StringLong("name", "", "display name")
	email := fs.StringLong("email", "", "account email")
	password := fs.StringLong("password", "", "account password")

	return &ff.Command{
		Name:      "signup",
		Usage:     "receiptly signup --name NAME --email EMAIL --password PASSWORD",
		ShortHelp: "create an account",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			s, err := a.Sessions.SignUp(ctx, *email, *password, *name)
			if err != nil {
				return err
			}
			return a.welcome(s)
		},
	}
}

func (a *App) welcome(s auth.Authenticated) error {
	fmt.Fprintf(a.Stdout, "Signed in as %s <%s>\n", s.User.DisplayName, s.User.Email)
	if !s.Onboarded {
		fmt.Fprintln(a.Stdout, "Run `receiptly onboard` to finish setting up.")
	}
	return nil
}

func (a *App) signOutCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "signout",
		ShortHelp: "sign out and forget the session",
		Flags:     ff.NewFlagSet("signout").SetParent(parent),
		Exec: func(context.Context, []string) error {
			if err := a.Sessions.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(a.Stdout, "Signed out.")
			return nil
		},
	}
}

func (a *App) onboardCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "onboard",
		ShortHelp: "show the introduction and finish onboarding",
		Flags:     ff.NewFlagSet("onboard").SetParent(parent),
		Exec: func(context.Context, []string) error {
			if _, err := a.gate(navigation.ScreenOnboarding); err != nil {
				return err
			}
			if err := render.Slides(a.Stdout, screen.OnboardingSlides); err != nil {
				return err
			}
			if _, err := a.Sessions.CompleteOnboarding(); err != nil {
				return err
			}
			fmt.Fprintln(a.Stdout, "You're all set.")
			return nil
		},
	}
}

func (a *App) settingsCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "settings",
		ShortHelp: "show the signed-in profile",
		Flags:     ff.NewFlagSet("settings").SetParent(parent),
		Exec: func(context.Context, []string) error {
			st, err := a.gate(navigation.ScreenSettings)
			if err != nil {
				return err
			}
			u, _ := navigation.UserOf(st)
			return render.Profile(a.Stdout, screen.ProfileOf(u), true)
		},
	}
}

func (a *App) dashboardCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("dashboard").SetParent(parent)
	watch := fs.DurationLong("watch", 0, "refresh every interval until interrupted")

	return &ff.Command{
		Name:      "dashboard",
		ShortHelp: "show the spending overview",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			st, err := a.gate(navigation.ScreenDashboard)
			if err != nil {
				return err
			}
			u, _ := navigation.UserOf(st)
			d := screen.NewDashboard(a.Receipts, u, a.Now)

			if *watch <= 0 {
				v, err := d.Refresh(ctx)
				if err != nil {
					return err
				}
				return render.Dashboard(a.Stdout, v)
			}
			return a.watchDashboard(ctx, d, *watch)
		},
	}
}

// watchDashboard обновляет дашборд по таймеру. Обновления не ждут друг друга,
// устаревший ответ отбрасывается защитой от гонок внутри Dashboard.
func (a *App) watchDashboard(ctx context.Context, d *screen.Dashboard, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var out sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	tick := func() error {
		v, err := d.Refresh(ctx)
		switch {
		case errors.Is(err, refresh.ErrSuperseded), errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			a.logger().Warn("dashboard refresh failed", zap.Error(err))
			return nil
		}

		out.Lock()
		defer out.Unlock()
		return render.Dashboard(a.Stdout, v)
	}

	g.Go(tick)
	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case <-ticker.C:
			g.Go(tick)
		}
	}
}

func (a *App) listCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("list").SetParent(parent)
	query := fs.String('q', "query", "", "filter by vendor, amount or date")

	return &ff.Command{
		Name:      "list",
		Usage:     "receiptly list [-q QUERY]",
		ShortHelp: "list transactions, newest first",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			if _, err := a.gate(navigation.ScreenTransactions); err != nil {
				return err
			}

			tr := screen.NewTransactions(a.Receipts)
			if _, err := tr.Refresh(ctx); err != nil {
				return err
			}
			return render.Transactions(a.Stdout, tr.Search(*query), strings.TrimSpace(*query))
		},
	}
}

func (a *App) showCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("show").SetParent(parent)
	imageOut := fs.StringLong("image", "", "save the receipt image to this file")

	return &ff.Command{
		Name:      "show",
		Usage:     "receiptly show [--image FILE] ID",
		ShortHelp: "show receipt details",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if _, err := a.gate(navigation.ScreenTransactionDetail); err != nil {
				return err
			}
			id, err := receiptID(args)
			if err != nil {
				return err
			}

			detail := screen.NewDetail(a.Receipts)
			det, err := detail.Load(ctx, id)
			if err != nil {
				return err
			}
			if err := render.Detail(a.Stdout, det, a.now()); err != nil {
				return err
			}

			if *imageOut == "" {
				return nil
			}
			data, _, err := detail.Image(ctx, id)
			if err != nil {
				return err
			}
			if err := os.WriteFile(*imageOut, data, 0o600); err != nil {
				return fmt.Errorf("save image: %w", err)
			}
			fmt.Fprintf(a.Stdout, "Image saved to %s\n", *imageOut)
			return nil
		},
	}
}

type draftFlags struct {
	vendor   *string
	date     *string
	total    *string
	imageRef *string
}

func newDraftFlags(fs *ff.FlagSet) draftFlags {
	return draftFlags{
		vendor:   fs.StringLong("vendor", "", "store or vendor name"),
		date:     fs.StringLong("date", "", "receipt date, YYYY-MM-DD (default today)"),
		total:    fs.StringLong("total", "", "receipt total"),
		imageRef: fs.StringLong("image-ref", "", "reference to the receipt image"),
	}
}

// apply переносит заданные флаги в черновик, пустые значения не меняют поле.
func (f draftFlags) apply(d screen.Draft) screen.Draft {
	if *f.vendor != "" {
		d.Vendor = *f.vendor
	}
	if *f.date != "" {
		d.Date = *f.date
	}
	if *f.total != "" {
		d.Total = *f.total
	}
	if *f.imageRef != "" {
		d.ImageRef = *f.imageRef
	}
	return d
}

func (f draftFlags) empty() bool {
	return *f.vendor == "" && *f.date == "" && *f.total == "" && *f.imageRef == ""
}

func (a *App) addCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("add").SetParent(parent)
	flags := newDraftFlags(fs)

	return &ff.Command{
		Name:      "add",
		Usage:     "receiptly add --vendor NAME --total AMOUNT [--date YYYY-MM-DD]",
		ShortHelp: "enter a receipt manually",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			if _, err := a.gate(navigation.ScreenReviewReceipt); err != nil {
				return err
			}
			return a.save(ctx, flags.apply(screen.Draft{}))
		},
	}
}

func (a *App) editCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("edit").SetParent(parent)
	flags := newDraftFlags(fs)

	return &ff.Command{
		Name:      "edit",
		Usage:     "receiptly edit [--vendor NAME] [--total AMOUNT] [--date YYYY-MM-DD] ID",
		ShortHelp: "correct a saved receipt",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if _, err := a.gate(navigation.ScreenReviewReceipt); err != nil {
				return err
			}
			id, err := receiptID(args)
			if err != nil {
				return err
			}

			r, err := a.Receipts.GetReceipt(ctx, id)
			if err != nil {
				return fmt.Errorf("load receipt %s: %w", id, err)
			}
			return a.save(ctx, flags.apply(screen.DraftFrom(*r)))
		},
	}
}

func (a *App) save(ctx context.Context, d screen.Draft) error {
	saved, err := screen.NewReview(a.Receipts, a.Now).Save(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Saved %s %s on %s (%s)\n", saved.DisplayVendor(), render.Money(saved.Amount()), render.CardDate(*saved), saved.ID)
	return nil
}

func (a *App) deleteCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("delete").SetParent(parent)
	yes := fs.BoolLong("yes", "confirm deletion")

	return &ff.Command{
		Name:      "delete",
		Usage:     "receiptly delete --yes ID",
		ShortHelp: "delete a receipt",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if _, err := a.gate(navigation.ScreenTransactionDetail); err != nil {
				return err
			}
			id, err := receiptID(args)
			if err != nil {
				return err
			}
			if !*yes {
				return errors.New("this cannot be undone, pass --yes to delete the receipt")
			}

			if err := screen.NewDetail(a.Receipts).Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.Stdout, "Deleted %s\n", id)
			return nil
		},
	}
}

func (a *App) scanCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("scan").SetParent(parent)
	flags := newDraftFlags(fs)

	return &ff.Command{
		Name:      "scan",
		Usage:     "receiptly scan [--vendor NAME] [--total AMOUNT] [--date YYYY-MM-DD] FILE",
		ShortHelp: "upload a receipt photo, correct the extracted fields if given",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if _, err := a.gate(navigation.ScreenScan); err != nil {
				return err
			}
			if len(args) != 1 {
				return errors.New("exactly one image file is required")
			}

			res, err := screen.NewScan(a.Receipts, a.logger()).Upload(ctx, args[0])
			if err != nil {
				return err
			}

			if !res.Uploaded {
				fmt.Fprintf(a.Stderr, "Upload failed: %v\n", res.Err)
				if flags.empty() {
					fmt.Fprintf(a.Stdout, "Enter the details manually: receiptly add --image-ref %s --vendor NAME --total AMOUNT\n", args[0])
					return nil
				}
				return a.save(ctx, flags.apply(res.Draft))
			}

			if flags.empty() {
				fmt.Fprintf(a.Stdout, "Scanned %s %s (%s)\n", model.Receipt{Vendor: res.Draft.Vendor}.DisplayVendor(), res.Draft.Total, res.Draft.ID)
				return nil
			}
			return a.save(ctx, flags.apply(res.Draft))
		},
	}
}

func receiptID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errMissingID
	}
	return strings.TrimSpace(args[0]), nil
}
