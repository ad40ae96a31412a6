package main

import (
	"batepapo/backend/internal/chathub"
	"batepapo/backend/internal/chatroom"
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/localization"
	"batepapo/backend/internal/storage"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const usage = `Usage: admin <command> [args]

Commands:
  participants           list active participants
  feed <name> [limit]    print the feed as seen by name
  sweep                  evict stale participants now`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}

	texts := localization.Default().StatusTexts(cfg.StatusLang)
	var opts []chatroom.Option
	if store.HasBroker() {
		// Leave messages still reach live clients on the running servers.
		opts = append(opts, chatroom.WithNotifier(chathub.NewManagerService(store, texts.Left, logger)))
	}
	room := chatroom.NewService(store, texts, logger, opts...)

	err = dispatch(ctx, os.Stdout, room, cfg, os.Args[1:])
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage.Service, error) {
	db, err := storage.OpenDatabase(cfg.DBDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = storage.OpenRedis(ctx, cfg.RedisURL); err != nil {
			return nil, err
		}
	}
	return storage.NewStorageService(db, rdb, logger), nil
}

func dispatch(ctx context.Context, out io.Writer, room *chatroom.Service, cfg *config.Config, args []string) error {
	switch args[0] {
	case "participants":
		return listParticipants(ctx, out, room)

	case "feed":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: admin feed <name> [limit]")
		}
		limit := 0
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid limit %q: please provide an integer", args[2])
			}
			limit = n
		}
		return printFeed(ctx, out, room, args[1], limit)

	case "sweep":
		supervisor := chatroom.NewSupervisor(room, cfg.ParticipantTimeout, cfg.SweepInterval, nil)
		report, err := supervisor.Sweep(ctx)
		if err != nil {
			return err
		}
		printReport(out, report)
		if !report.OK() {
			return fmt.Errorf("%d eviction(s) failed", len(report.Failures))
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func listParticipants(ctx context.Context, out io.Writer, room *chatroom.Service) error {
	participants, err := room.ListActive(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tLAST STATUS")
	for _, p := range participants {
		last := time.UnixMilli(p.LastStatus).Format(time.DateTime)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.ID, last)
	}
	return tw.Flush()
}

func printFeed(ctx context.Context, out io.Writer, room *chatroom.Service, viewer string, limit int) error {
	feed, err := room.GetFeed(ctx, viewer, limit)
	if err != nil {
		return err
	}

	for _, msg := range feed {
		fmt.Fprintf(out, "(%s) %s -> %s [%s]: %s\n", msg.Time, msg.From, msg.To, msg.Type, msg.Text)
	}
	return nil
}

func printReport(out io.Writer, report chatroom.SweepReport) {
	fmt.Fprintf(out, "scanned %d participant(s) at %s\n", report.Scanned, report.StartedAt.Format(time.TimeOnly))
	for _, name := range report.Evicted {
		fmt.Fprintf(out, "evicted  %s\n", name)
	}
	for _, name := range report.Skipped {
		fmt.Fprintf(out, "skipped  %s\n", name)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "failed   %s (%s): %v\n", f.Name, f.Stage, f.Err)
	}
}
