package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/miccroten/mtadmin/internal/backend/rowstore"
	"github.com/miccroten/mtadmin/internal/config"
	"github.com/miccroten/mtadmin/internal/inbox"
	"go.uber.org/zap"
)

func main() {
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := rowstore.Open(ctx, cfg.DatabaseURL, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot reach message store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch args[0] {
	case "submit":
		cmdSubmit(ctx, store, args[1:])
	case "list":
		cmdList(ctx, store, *jsonFlag)
	case "stats":
		cmdStats(ctx, store, *jsonFlag)
	case "read":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: mtctl read <id>")
			os.Exit(1)
		}
		cmdRead(ctx, store, args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: mtctl [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  submit --name <n> --email <e> --message <m> [--phone <p>] [--subject <s>]")
	fmt.Fprintln(os.Stderr, "                   Submit a contact message")
	fmt.Fprintln(os.Stderr, "  list             List inbox messages")
	fmt.Fprintln(os.Stderr, "  stats            Show inbox statistics")
	fmt.Fprintln(os.Stderr, "  read <id>        Mark a message as read")
}

func cmdSubmit(ctx context.Context, store *rowstore.Store, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	name := fs.String("name", "", "sender name")
	email := fs.String("email", "", "sender email")
	phone := fs.String("phone", "", "sender phone")
	subject := fs.String("subject", "", "message subject")
	body := fs.String("message", "", "message body")
	_ = fs.Parse(args)

	msg := inbox.Message{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Subject: *subject,
		Body:    *body,
	}
	if err := store.Insert(ctx, &msg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("submitted message %d\n", msg.ID)
}

func cmdList(ctx context.Context, store *rowstore.Store, asJSON bool) {
	msgs, err := store.ListMessages(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		printJSON(msgs)
		return
	}

	for _, m := range msgs {
		marker := " "
		if !m.Read {
			marker = "*"
		}
		subject := m.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		fmt.Printf("%s %6d  %-19s  %-28s  %s\n",
			marker, m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04:05"), m.Email, subject)
	}
}

func cmdStats(ctx context.Context, store *rowstore.Store, asJSON bool) {
	stats, err := inbox.CollectStats(ctx, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		printJSON(stats)
		return
	}

	fmt.Printf("senders:  %d\n", stats.UniqueSenders)
	fmt.Printf("messages: %d\n", stats.TotalMessages)
	fmt.Printf("unread:   %d\n", stats.UnreadMessages)
}

func cmdRead(ctx context.Context, store *rowstore.Store, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid message id %q\n", rawID)
		os.Exit(1)
	}
	if err := store.MarkRead(ctx, id); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("marked message %d as read\n", id)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
