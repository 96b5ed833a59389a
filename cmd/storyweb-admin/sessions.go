package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
	"github.com/target/storyweb/internal/service"
)

const defaultListLimit = 50

type sessionShowOptions struct {
	ID      string
	RawJSON bool
}

type sessionClearOptions struct {
	ID   string
	Keys []domainauth.Key
	Yes  bool
}

type sessionListOptions struct {
	Limit int
}

type sessionPurgeOptions struct {
	Yes bool
}

func runSessionShow(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionShowFlags(args)
	if err != nil {
		return err
	}
	return withSessionStore(cmdCtx, defaultCommandTimeout, func(ctx context.Context, store ports.SessionStore) error {
		return showSession(ctx, os.Stdout, store, opts)
	})
}

func runSessionClear(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionClearFlags(args)
	if err != nil {
		return err
	}
	if len(opts.Keys) == 0 {
		if confirmErr := confirm(os.Stdin, os.Stdout, fmt.Sprintf("Delete session %q?", opts.ID), opts.Yes); confirmErr != nil {
			return confirmErr
		}
	}
	return withSessionStore(cmdCtx, defaultCommandTimeout, func(ctx context.Context, store ports.SessionStore) error {
		return clearSession(ctx, os.Stdout, store, opts)
	})
}

func runSessionList(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionListFlags(args)
	if err != nil {
		return err
	}
	return withSessionStore(cmdCtx, defaultCommandTimeout, func(ctx context.Context, store ports.SessionStore) error {
		return listSessions(ctx, os.Stdout, store, opts)
	})
}

func runSessionPurge(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionPurgeFlags(args)
	if err != nil {
		return err
	}
	if confirmErr := confirm(os.Stdin, os.Stdout, "Delete every expired session record?", opts.Yes); confirmErr != nil {
		return confirmErr
	}
	return withSessionStore(cmdCtx, defaultCommandTimeout, func(ctx context.Context, store ports.SessionStore) error {
		return purgeSessions(ctx, os.Stdout, store)
	})
}

func showSession(ctx context.Context, w io.Writer, store ports.SessionStore, opts sessionShowOptions) error {
	sess, err := store.Get(ctx, opts.ID)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("session %q not found", opts.ID)
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	sess.Token = maskToken(sess.Token)

	if opts.RawJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", sess.ID},
		{"Role", string(sess.Role)},
		{"Token", orDash(sess.Token)},
		{"Expires", formatExpiry(sess.ExpiresAt, time.Now())},
	}
	if sess.User != nil {
		rows = append(rows, [2]string{"User", fmt.Sprintf("%s (public=%t)", sess.User.Email, sess.User.Public)})
	}
	if sess.Admin != nil {
		rows = append(rows, [2]string{"Admin", orDash(sess.Admin.Email)})
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return fmt.Errorf("write session row: %w", err)
		}
	}
	return tw.Flush()
}

func clearSession(ctx context.Context, w io.Writer, store ports.SessionStore, opts sessionClearOptions) error {
	sessions := service.NewSessionService(service.SessionServiceOptions{Store: store})
	if len(opts.Keys) == 0 {
		if err := sessions.ClearAll(ctx, opts.ID); err != nil {
			return err
		}
		return writef(w, "Deleted session %s.\n", opts.ID)
	}
	if err := sessions.Clear(ctx, opts.ID, opts.Keys...); err != nil {
		return err
	}
	names := make([]string, len(opts.Keys))
	for i, k := range opts.Keys {
		names[i] = string(k)
	}
	return writef(w, "Cleared %s from session %s.\n", strings.Join(names, ", "), opts.ID)
}

func listSessions(ctx context.Context, w io.Writer, store ports.SessionStore, opts sessionListOptions) error {
	lister, ok := store.(ports.SessionLister)
	if !ok {
		return errors.New("session store cannot enumerate sessions")
	}
	ids, err := lister.List(ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		return writeln(w, "  (no sessions)")
	}

	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tROLE\tSIGNED IN\tEXPIRES"); err != nil {
		return fmt.Errorf("write list header: %w", err)
	}
	for _, id := range ids {
		sess, getErr := store.Get(ctx, id)
		if errors.Is(getErr, ports.ErrSessionNotFound) {
			continue
		}
		if getErr != nil {
			return fmt.Errorf("get session %s: %w", id, getErr)
		}
		if err := writef(tw, "%s\t%s\t%t\t%s\n", id, sess.Role, sess.Authenticated(), formatExpiry(sess.ExpiresAt, now)); err != nil {
			return fmt.Errorf("write list row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush list: %w", err)
	}
	if opts.Limit > 0 && len(ids) == opts.Limit {
		return writeln(w, "More sessions may exist; increase --limit to view additional entries.")
	}
	return nil
}

func purgeSessions(ctx context.Context, w io.Writer, store ports.SessionStore) error {
	purger, ok := store.(ports.SessionPurger)
	if !ok {
		return writeln(w, "Session store expires records natively; nothing to purge.")
	}
	n, err := purger.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	return writef(w, "Purged %d expired sessions.\n", n)
}

// maskToken keeps the last four characters so operators can correlate tokens.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func formatExpiry(at, now time.Time) string {
	if at.IsZero() {
		return "-"
	}
	if !at.After(now) {
		return at.UTC().Format(time.RFC3339) + " (expired)"
	}
	return at.UTC().Format(time.RFC3339) + " (in " + at.Sub(now).Round(time.Second).String() + ")"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func parseKeys(raw string) ([]domainauth.Key, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var keys []domainauth.Key
	for part := range strings.SplitSeq(raw, ",") {
		name := domainauth.Key(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		switch name {
		case domainauth.KeyToken, domainauth.KeyUser, domainauth.KeyAdmin:
			keys = append(keys, name)
		default:
			return nil, fmt.Errorf("invalid key %q (valid options: token, user, admin)", name)
		}
	}
	return keys, nil
}

// splitPositional pulls the leading session id off args so flags may follow it.
func splitPositional(name string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("usage: storyweb-admin %s <session-id> [flags]", name)
	}
	return strings.TrimSpace(args[0]), args[1:], nil
}

func parseSessionShowFlags(args []string) (sessionShowOptions, error) {
	id, rest, err := splitPositional("session-show", args)
	if err != nil {
		return sessionShowOptions{}, err
	}
	fs := flag.NewFlagSet("session-show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := sessionShowOptions{ID: id}
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the record as JSON")
	if err := fs.Parse(rest); err != nil {
		return sessionShowOptions{}, err
	}
	return opts, nil
}

func parseSessionClearFlags(args []string) (sessionClearOptions, error) {
	id, rest, err := splitPositional("session-clear", args)
	if err != nil {
		return sessionClearOptions{}, err
	}
	fs := flag.NewFlagSet("session-clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := sessionClearOptions{ID: id}
	var rawKeys string
	fs.StringVar(&rawKeys, "keys", "", "Comma-separated flags to clear (token,user,admin); empty deletes the session")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(rest); err != nil {
		return sessionClearOptions{}, err
	}
	if opts.Keys, err = parseKeys(rawKeys); err != nil {
		return sessionClearOptions{}, err
	}
	return opts, nil
}

func parseSessionListFlags(args []string) (sessionListOptions, error) {
	fs := flag.NewFlagSet("session-list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := sessionListOptions{}
	fs.IntVar(&opts.Limit, "limit", defaultListLimit, "Maximum number of sessions to list (0 for all)")
	if err := fs.Parse(args); err != nil {
		return sessionListOptions{}, err
	}
	if opts.Limit < 0 {
		return sessionListOptions{}, errors.New("--limit must be zero or greater")
	}
	return opts, nil
}

func parseSessionPurgeFlags(args []string) (sessionPurgeOptions, error) {
	fs := flag.NewFlagSet("session-purge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := sessionPurgeOptions{}
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return sessionPurgeOptions{}, err
	}
	return opts, nil
}
