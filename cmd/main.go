package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/invoice-ingest-backend/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		a.Log.Error("Server failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
