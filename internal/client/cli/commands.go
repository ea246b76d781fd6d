package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/KaityXD/choas-lib/internal/client/client"
	"github.com/KaityXD/choas-lib/internal/common"
)

var errUsage = errors.New("usage")

func (a *App) report(err error) error {
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
	case errors.Is(err, common.ErrorUnauthorized):
		fmt.Fprintln(a.out, "Not authorized, run login first")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

func (a *App) Login(ctx context.Context) error {
	pw, err := GetPassword(a.out)
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.Login(ctx, string(pw)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Fprintln(a.out, "Wrong password")
			return err
		}
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.Logout(ctx); err != nil && !errors.Is(err, client.ErrNotLoggedIn) {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Upload sends a local file. The stored name defaults to the file's base
// name; a second argument overrides it.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: upload <path> [name]")
		return errUsage
	}

	name := filepath.Base(args[0])
	if len(args) == 2 {
		name = args[1]
	}

	f, err := a.openFn(args[0])
	if err != nil {
		return a.report(err)
	}
	defer f.Close()

	u, err := a.client.Upload(ctx, name, f)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, u)
	return nil
}

// List prints one page of the library: list [page] [name|date|size] [asc|desc].
func (a *App) List(ctx context.Context, args []string) error {
	var q client.ListQuery
	if len(args) > 3 {
		fmt.Fprintln(a.out, "Usage: list [page] [name|date|size] [asc|desc]")
		return errUsage
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fmt.Fprintln(a.out, "Page must be a positive number")
			return errUsage
		}
		q.Page = n
	}
	if len(args) > 1 {
		q.SortBy = args[1]
	}
	if len(args) > 2 {
		q.Order = args[2]
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	page, err := a.client.List(ctx, q)
	if err != nil {
		return a.report(err)
	}

	if len(page.Files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}
	for _, f := range page.Files {
		fmt.Fprintf(a.out, "%-40s %10s  %s\n", f.Name, humanSize(f.Size), f.Modified.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "page %d/%d, %d files\n", page.Page, page.TotalPages, page.Total)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: delete <name>")
		return errUsage
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s?", args[0]), a.out)
	if err != nil {
		return a.report(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.Delete(ctx, args[0]); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}

func humanSize(n int64) string {
	const mib = 1 << 20
	if n > mib {
		return fmt.Sprintf("%.2f MB", float64(n)/mib)
	}
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
