package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vbonduro/branchadmin/internal/domain"
	"github.com/vbonduro/branchadmin/internal/menu"
)

var errNotSignedIn = errors.New("not signed in")

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		a.session.Logout(ctx)
		return nil
	case "whoami":
		return a.whoami()
	case "branches":
		return a.branches()
	case "can":
		return a.can(rest)
	case "menu":
		return a.menuCommand(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: login takes <username> <password>", errUsage)
	}
	user, err := a.session.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return a.print(user)
}

func (a *app) whoami() error {
	user := a.session.User()
	if user == nil {
		return errNotSignedIn
	}
	return a.print(user)
}

func (a *app) branches() error {
	if !a.session.IsAuthenticated() {
		return errNotSignedIn
	}
	return a.print(a.session.UserBranches())
}

func (a *app) can(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: can takes <branch-id> <view_only|full_access>", errUsage)
	}
	branchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: branch id must be an integer: %q", errUsage, args[0])
	}
	level := domain.PermissionLevel(strings.ToLower(strings.TrimSpace(args[1])))
	if !level.Valid() {
		return fmt.Errorf("%w: permission level must be view_only or full_access: %q", errUsage, args[1])
	}
	return a.print(map[string]any{
		"branch_id":        branchID,
		"permission_level": level,
		"allowed":          a.session.HasPermission(branchID, level),
	})
}

func (a *app) menuCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: menu takes list, create, update or delete", errUsage)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.menuList(ctx, rest)
	case "create":
		return a.menuCreate(ctx, rest)
	case "update":
		return a.menuUpdate(ctx, rest)
	case "delete":
		return a.menuDelete(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown menu command %q", errUsage, sub)
	}
}

func (a *app) menuList(ctx context.Context, args []string) error {
	positional, flags, err := splitArgs(args, 1, "menu list <branch-id>")
	if err != nil {
		return err
	}

	fs := a.newFlagSet("menu list")
	category := fs.String("category", "", "only items in this category")
	available := fs.Bool("available", false, "only available items")
	if err := fs.Parse(flags); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	items, err := a.menu.List(ctx, positional[0])
	if err != nil {
		return err
	}
	return a.print(menu.Filter(items, menu.FilterOptions{Category: *category, AvailableOnly: *available}))
}

func (a *app) menuCreate(ctx context.Context, args []string) error {
	positional, flags, err := splitArgs(args, 1, "menu create <branch-id>")
	if err != nil {
		return err
	}

	form, err := a.parseItemForm("menu create", flags)
	if err != nil {
		return err
	}
	if _, ok := form["name"]; !ok {
		return fmt.Errorf("%w: menu create requires -name", errUsage)
	}
	if _, ok := form["price"]; !ok {
		return fmt.Errorf("%w: menu create requires -price", errUsage)
	}
	if _, ok := form["is_available"]; !ok {
		form["is_available"] = true
	}

	item, err := a.menu.Create(ctx, form, positional[0])
	if err != nil {
		return err
	}
	return a.print(item)
}

func (a *app) menuUpdate(ctx context.Context, args []string) error {
	positional, flags, err := splitArgs(args, 2, "menu update <branch-id> <item-id>")
	if err != nil {
		return err
	}

	form, err := a.parseItemForm("menu update", flags)
	if err != nil {
		return err
	}

	item, err := a.menu.Update(ctx, form, positional[1], positional[0])
	if err != nil {
		return err
	}
	return a.print(item)
}

func (a *app) menuDelete(ctx context.Context, args []string) error {
	positional, extra, err := splitArgs(args, 2, "menu delete <branch-id> <item-id>")
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, extra)
	}
	if err := a.menu.Delete(ctx, positional[1], positional[0]); err != nil {
		return err
	}
	return a.print(map[string]any{"deleted": positional[1], "branch_id": positional[0]})
}

// parseItemForm turns item flags into a create/update body. Only flags given
// on the command line end up in the form.
func (a *app) parseItemForm(name string, args []string) (map[string]any, error) {
	fs := a.newFlagSet(name)
	fs.String("name", "", "item name")
	fs.Float64("price", 0, "item price")
	fs.String("description", "", "item description")
	fs.String("image-url", "", "image URL")
	fs.String("category", "", "menu category")
	fs.Bool("available", true, "whether the item can be ordered")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	keys := map[string]string{
		"name":        "name",
		"price":       "price",
		"description": "description",
		"image-url":   "image_url",
		"category":    "category",
		"available":   "is_available",
	}
	form := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		form[keys[f.Name]] = f.Value.(flag.Getter).Get()
	})
	return form, nil
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) print(v any) error {
	return writeJSON(a.stdout, v)
}

// splitArgs takes n leading positional arguments, leaving the rest for flag
// parsing.
func splitArgs(args []string, n int, usage string) ([]string, []string, error) {
	if len(args) < n {
		return nil, nil, fmt.Errorf("%w: %s", errUsage, usage)
	}
	for _, arg := range args[:n] {
		if arg == "" || arg[0] == '-' {
			return nil, nil, fmt.Errorf("%w: %s", errUsage, usage)
		}
	}
	return args[:n], args[n:], nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
