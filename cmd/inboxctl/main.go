// Command inboxctl drives an inbox session against the notification API.
//
//	inboxctl -user bob -workspace ws1 list -pages 2
//	inboxctl -user bob -workspace ws1 read <notification-id>
//	inboxctl -user bob badge
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/anonto42/reelnote/backend/internal/inbox"
	"github.com/anonto42/reelnote/backend/internal/logger"
	"github.com/anonto42/reelnote/backend/pkg/inboxclient"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("INBOX_API_URL", "http://localhost:8080"), "inbox API base URL")
	idToken := flag.String("token", os.Getenv("INBOX_ID_TOKEN"), "Firebase ID token")
	userID := flag.String("user", "", "signed-in user id")
	workspaceID := flag.String("workspace", "", "workspace id")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	if *idToken == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: inboxctl -token <id-token> -user <uid> [-workspace <id>] list|read|badge")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := inboxclient.New(*apiURL, *idToken)
	session := inbox.NewSession(*userID, *workspaceID, inbox.SessionDeps{
		Pager:   client,
		Lookups: client,
		Marker:  client,
		Counter: client,
		Logger:  logger.New("development", *logLevel),
	})

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "", "list":
		err = list(ctx, session, flag.Args())
	case "read":
		if flag.NArg() < 2 {
			log.Fatal("read requires a notification id")
		}
		err = session.MarkAsRead(ctx, *userID, flag.Arg(1))
		if err == nil {
			fmt.Println("marked as read:", flag.Arg(1))
		}
	case "badge":
		err = badge(ctx, session)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func list(ctx context.Context, session *inbox.Session, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	pages := fs.Int("pages", 1, "number of pages to load")
	if len(args) > 1 {
		_ = fs.Parse(args[1:])
	}

	if err := session.LoadNotifications(ctx, true); err != nil {
		return err
	}
	for i := 1; i < *pages && session.CanLoadMore(); i++ {
		if err := session.LoadNotifications(ctx, false); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tFROM\tVIDEO\tREAD\tCREATED\tCONTENT")
	for _, it := range session.Items() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			it.NotificationID, it.Kind, it.SenderName, it.VideoTitle, it.IsRead,
			it.CreatedAt.Local().Format(time.DateTime), it.Content)
	}
	if session.CanLoadMore() {
		fmt.Fprintln(w, "…\t\t\t\t\t\t(more available)")
	}
	return w.Flush()
}

func badge(ctx context.Context, session *inbox.Session) error {
	if err := session.RefreshBadge(ctx); err != nil {
		return err
	}
	snap := session.Badge().Snapshot()
	fmt.Printf("unread: %d (confirmed %s)\n", snap.Count, snap.ConfirmedAt.Local().Format(time.DateTime))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
