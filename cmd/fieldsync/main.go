// Command fieldsync is the field device's offline queue tool.
//
//	fieldsync enqueue -shipment ID -phase "Start Loading" [-drop ID -drop-seq N -remarks ...]
//	fieldsync process [-watch 10s]
//	fieldsync status -shipment ID
//	fieldsync ack -shipment ID
//
// FIELDSYNC_DB, FIELDSYNC_API and FIELDSYNC_TOKEN configure the store path,
// API base URL and bearer token.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-fleetpay/internal/offlinequeue"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := offlinequeue.NewHTTPClient(
		env("FIELDSYNC_API", "http://localhost:3000/api/v1"),
		os.Getenv("FIELDSYNC_TOKEN"),
		15*time.Second,
	)
	q, err := offlinequeue.Open(env("FIELDSYNC_DB", "fieldsync.db"), client, logger)
	if err != nil {
		logger.Fatal("open queue failed", zap.Error(err))
	}
	defer q.Close()

	if err := run(ctx, q, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal(os.Args[1]+" failed", zap.Error(err))
	}
}

func run(ctx context.Context, q *offlinequeue.Queue, cmd string, args []string) error {
	switch cmd {
	case "enqueue":
		fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
		shipment := fs.String("shipment", "", "shipment id")
		phaseName := fs.String("phase", "", "phase display name")
		drop := fs.String("drop", "", "drop id (store phases)")
		dropSeq := fs.Int("drop-seq", 0, "drop sequence (store phases)")
		remarks := fs.String("remarks", "", "remarks")
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		_ = fs.Parse(args)

		in := offlinequeue.EnqueueInput{
			ShipmentID: *shipment,
			Phase:      *phaseName,
			DropSeq:    *dropSeq,
			DropID:     optional(*drop),
			Remarks:    optional(*remarks),
		}
		if isSet(fs, "lat") && isSet(fs, "lng") {
			in.Latitude, in.Longitude = lat, lng
		}
		a, err := q.Enqueue(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(a)

	case "process":
		fs := flag.NewFlagSet("process", flag.ExitOnError)
		watch := fs.Duration("watch", 0, "keep processing at this interval")
		_ = fs.Parse(args)

		report, err := q.Process(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(report); err != nil || *watch <= 0 {
			return err
		}

		ticker := time.NewTicker(*watch)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				report, err := q.Process(ctx)
				if err != nil {
					zap.L().Error("process pass failed", zap.Error(err))
					continue
				}
				if report.Sent+report.Dropped+report.Retained > 0 {
					_ = printJSON(report)
				}
			}
		}

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		shipment := fs.String("shipment", "", "shipment id")
		offline := fs.Bool("offline", false, "show the local projection without contacting the API")
		_ = fs.Parse(args)

		if !*offline {
			if _, err := q.Sync(ctx, *shipment); err != nil {
				zap.L().Warn("server status unavailable, showing local projection", zap.Error(err))
			}
		}
		proj, err := q.Projection(ctx, *shipment)
		if err != nil {
			return err
		}
		pending, err := q.Pending(ctx)
		if err != nil {
			return err
		}
		acked, err := q.IsAcknowledged(ctx, *shipment)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"projection":   proj,
			"pending":      len(pending),
			"acknowledged": acked,
		})

	case "ack":
		fs := flag.NewFlagSet("ack", flag.ExitOnError)
		shipment := fs.String("shipment", "", "shipment id")
		_ = fs.Parse(args)
		return q.Acknowledge(ctx, *shipment)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fieldsync <enqueue|process|status|ack> [flags]")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
