// tracker-cli
//
// Command-line client for the tracker service. It keeps a local view of the
// user's applications and reconciles every change against the service.
//
// Usage:
//
//	tracker-cli list [-q query]
//	tracker-cli add -company C -role R [-status S] [-applied YYYY-MM-DD] [-follow-up YYYY-MM-DD] [-notes N] [-location L]
//	tracker-cli status <id> <Applied|Interview|Offer|Rejected>
//	tracker-cli rm [-y] <id>
//	tracker-cli dashboard
//	tracker-cli search            (reads queries from stdin, one per line)
//	tracker-cli token <user-id>   (signs a development token with JWT_SECRET)
//
// Environment: TRACKER_URL (default http://localhost:8082), TRACKER_TOKEN or
// TRACKER_USER_ID, LOG_LEVEL.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/logger"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
	"github.com/NavDevs/AI-InternShip/internal/trackerclient"
	"github.com/NavDevs/AI-InternShip/internal/view"
)

const dateLayout = "2006-01-02"

func main() {
	level, err := logger.ParseLevel(envOr("LOG_LEVEL", "warn"))
	if err != nil {
		level = slog.LevelWarn
	}
	logger.Setup(os.Stderr, "text", level)

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, in io.Reader, out io.Writer) error {
	if cmd == "token" {
		return issueToken(args, out)
	}

	p := auth.Principal{
		UserID: os.Getenv("TRACKER_USER_ID"),
		Token:  os.Getenv("TRACKER_TOKEN"),
	}
	if p.UserID == "" && p.Token != "" {
		sub, err := tokenSubject(p.Token)
		if err != nil {
			return err
		}
		p.UserID = sub
	}
	if p.UserID == "" {
		return errors.New("set TRACKER_TOKEN or TRACKER_USER_ID")
	}
	client := trackerclient.New(envOr("TRACKER_URL", "http://localhost:8082"), p, nil)

	stdin := bufio.NewReader(in)
	lv := view.New(client, p.UserID,
		view.WithNotifier(func(msg string) { fmt.Fprintln(os.Stderr, msg) }),
		view.WithConfirmer(promptConfirm(stdin, out)),
	)

	switch cmd {
	case "list":
		return cmdList(ctx, lv, args, out)
	case "add":
		return cmdAdd(ctx, lv, args, out)
	case "status":
		return cmdStatus(ctx, lv, args, out)
	case "rm":
		return cmdRemove(ctx, lv, args, out)
	case "dashboard":
		return cmdDashboard(ctx, lv, out)
	case "search":
		return cmdSearch(ctx, client, p.UserID, stdin, out)
	}
	usage(os.Stderr)
	return fmt.Errorf("unknown command %q", cmd)
}

// ─── Commands ────────────────────────────────────────────────────────────────

func cmdList(ctx context.Context, lv *view.ListView, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	query := fs.String("q", "", "filter by company or role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := lv.Reload(ctx); err != nil {
		return err
	}
	printApplications(out, lv.Filtered(*query))
	return nil
}

func cmdAdd(ctx context.Context, lv *view.ListView, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	company := fs.String("company", "", "company name")
	role := fs.String("role", "", "role title")
	status := fs.String("status", "", "initial status (default Applied)")
	applied := fs.String("applied", "", "applied date, YYYY-MM-DD (default today)")
	followUp := fs.String("follow-up", "", "follow-up date, YYYY-MM-DD")
	notes := fs.String("notes", "", "free-text notes")
	location := fs.String("location", "", "job location")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := tracker.NewApplication{
		Company:  *company,
		Role:     *role,
		Status:   tracker.Status(*status),
		Notes:    *notes,
		Location: *location,
	}
	var err error
	if in.AppliedDate, err = parseDate("applied", *applied); err != nil {
		return err
	}
	if in.FollowUpDate, err = parseDate("follow-up", *followUp); err != nil {
		return err
	}

	if err := lv.Reload(ctx); err != nil {
		return err
	}
	app, err := lv.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s: %s at %s (%s)\n", app.ID, app.Role, app.Company, app.Status)
	return nil
}

func cmdStatus(ctx context.Context, lv *view.ListView, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: status <id> <status>")
	}
	if err := lv.Reload(ctx); err != nil {
		return err
	}
	app, err := lv.UpdateStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is now %s\n", app.ID, app.Status)
	return nil
}

func cmdRemove(ctx context.Context, lv *view.ListView, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	yes := fs.Bool("y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: rm [-y] <id>")
	}
	id := fs.Arg(0)
	if *yes {
		view.WithConfirmer(func(string) bool { return true })(lv)
	}

	if err := lv.Reload(ctx); err != nil {
		return err
	}
	switch lv.Delete(ctx, id) {
	case view.DeleteRemoved:
		fmt.Fprintf(out, "removed %s\n", id)
	case view.DeleteCancelled:
		fmt.Fprintln(out, "cancelled")
	case view.DeleteNotInView:
		return fmt.Errorf("no application %s", id)
	case view.DeleteFailed:
		return errors.New("delete failed")
	case view.DeleteNotLoaded:
		return view.ErrNotLoaded
	}
	return nil
}

func cmdDashboard(ctx context.Context, lv *view.ListView, out io.Writer) error {
	if err := lv.Reload(ctx); err != nil {
		return err
	}
	d := lv.Dashboard()

	fmt.Fprintf(out, "Total applications: %d\n", d.Total)
	for _, st := range tracker.Statuses() {
		fmt.Fprintf(out, "  %-10s %d\n", st, d.StatusCounts[st])
	}
	fmt.Fprintln(out, "\nRecent:")
	printApplications(out, d.Recent)
	fmt.Fprintln(out, "\nUpcoming follow-ups:")
	printApplications(out, d.FollowUps)
	return nil
}

// cmdSearch reads queries line by line and prints the matches once typing
// pauses; only the latest query's results are shown.
func cmdSearch(ctx context.Context, client *trackerclient.Client, userID string, in *bufio.Reader, out io.Writer) error {
	results := make(chan []tracker.Application, 1)
	d := view.NewDebouncer(ctx, view.DefaultSearchDelay,
		func(ctx context.Context, q string) ([]tracker.Application, error) {
			apps, err := client.ListApplications(ctx, userID)
			if err != nil {
				return nil, err
			}
			return tracker.FilterByText(apps, q), nil
		},
		func(q string, apps []tracker.Application, err error) {
			if err != nil {
				slog.Warn("search failed", "query", q, "err", err)
				return
			}
			select {
			case <-results:
			default:
			}
			results <- apps
		},
	)
	defer d.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// Give the last query time to settle before exiting.
				select {
				case apps := <-results:
					printApplications(out, apps)
				case <-time.After(view.DefaultSearchDelay + 30*time.Second):
				case <-ctx.Done():
				}
				return nil
			}
			d.Submit(line)
		case apps := <-results:
			printApplications(out, apps)
		}
	}
}

func issueToken(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: token <user-id>")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	tok, err := auth.IssueToken(secret, args[0], 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok)
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func printApplications(out io.Writer, apps []tracker.Application) {
	if len(apps) == 0 {
		fmt.Fprintln(out, "(none)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tROLE\tSTATUS\tAPPLIED\tFOLLOW-UP")
	for _, a := range apps {
		followUp := "-"
		if a.FollowUpDate != nil {
			followUp = a.FollowUpDate.Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Company, a.Role, a.Status, a.AppliedDate.Format(dateLayout), followUp)
	}
	tw.Flush()
}

// tokenSubject reads the subject of a token without verifying it; the
// service verifies the signature on every request.
func tokenSubject(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("TRACKER_TOKEN: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("TRACKER_TOKEN has no subject")
	}
	return claims.Subject, nil
}

func promptConfirm(in *bufio.Reader, out io.Writer) view.Confirmer {
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func parseDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("-%s must be YYYY-MM-DD: %w", name, err)
	}
	return &t, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: tracker-cli <list|add|status|rm|dashboard|search|token> [args]")
}
