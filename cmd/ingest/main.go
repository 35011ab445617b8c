package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/invoice-ingest-backend/internal/app"
	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices"
)

// ingest runs the pipeline once for a single object, e.g. to backfill uploads that missed
// their storage notification.
func main() {
	bucket := flag.String("bucket", "", "source bucket (defaults to GCS_BUCKET)")
	name := flag.String("name", "", "object name")
	generation := flag.String("generation", "", "object generation")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -name <object> [-bucket <bucket>] [-generation <gen>]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if *bucket == "" {
		*bucket = a.Cfg.Bucket
	}
	out, err := a.Services.Invoices.Ingest(ctx, invoices.IngestInput{
		Source: types.Source{Bucket: *bucket, Name: *name, Generation: *generation},
	})
	if err != nil {
		a.Log.Error("Ingest failed", "bucket", *bucket, "name", *name, "error", err)
		a.Close()
		os.Exit(1)
	}
	_ = json.NewEncoder(os.Stdout).Encode(out)
}
