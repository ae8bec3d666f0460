package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zots0127/codepoint/pkg/config"
	"github.com/zots0127/codepoint/pkg/importer"
	"github.com/zots0127/codepoint/pkg/ingest"
	"github.com/zots0127/codepoint/pkg/queue"
	"github.com/zots0127/codepoint/pkg/store"
)

func main() {
	var usePrevious, force bool

	cmd := &cobra.Command{
		Use:          "import",
		Short:        "Fetch the latest postcode archive and load it into the store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(usePrevious, force)
		},
	}
	cmd.Flags().BoolVar(&usePrevious, "use-previous", false, "skip the remote check and reuse the staged archive")
	cmd.Flags().BoolVar(&force, "force", false, "reimport even if this archive was seen before")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(usePrevious, force bool) error {
	cfg := config.Load()

	st, err := store.Open(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		return err
	}

	pool := queue.New(cfg.Ingest.Workers, func(task queue.Task) error {
		return ingest.NewWorker(st, cfg.Ingest.BatchSize).Ingest(task.File)
	})
	pool.Start()

	orchestrator, err := importer.FromConfig(cfg, st, pool)
	if err != nil {
		return err
	}

	result, err := orchestrator.Run(importer.Options{UsePrevious: usePrevious, Force: force})
	if err != nil {
		pool.Drain()
		return err
	}

	if result.AlreadyImported {
		fmt.Println("already imported")
		pool.Drain()
		return nil
	}

	fmt.Printf("extracted %d CSV files\n", result.Extracted)

	// The orchestrator only enqueues; a single-shot run still has to wait
	// for the pool before the process may exit.
	pool.Drain()
	done, failed := pool.Stats()
	fmt.Printf("ingestion finished: %d files loaded, %d failed\n", done, failed)
	if failed > 0 {
		return fmt.Errorf("%d ingestion tasks failed", failed)
	}
	return nil
}
