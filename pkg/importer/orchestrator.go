package importer

import (
	"log"
	"strings"

	"github.com/zots0127/codepoint/pkg/archive"
	"github.com/zots0127/codepoint/pkg/config"
	"github.com/zots0127/codepoint/pkg/types"
)

// Dispatcher hands extracted files to the ingestion pool.
type Dispatcher interface {
	Enqueue(file string) string
}

// Ledger is the slice of the store the orchestrator needs.
type Ledger interface {
	SeenImport(hash string) (bool, error)
	RecordImport(hash string, size int64) error
}

// Extractor produces CSV files from a staged archive.
type Extractor interface {
	Extract(zipPath string) ([]string, error)
}

// Options control one import run.
type Options struct {
	// UsePrevious skips the remote check and extracts the staged archive.
	UsePrevious bool
	// Force bypasses the "already imported" short-circuit.
	Force bool
}

// Result summarizes one import run. The orchestrator returns as soon as
// every extracted file is enqueued; it never waits for ingestion.
type Result struct {
	AlreadyImported bool     `json:"already_imported"`
	Fetched         bool     `json:"fetched"`
	Extracted       int      `json:"extracted"`
	TaskIDs         []string `json:"task_ids,omitempty"`
}

// Orchestrator drives one import: check remote, compare the ledger, fetch
// and register, then always extract and dispatch whatever is staged.
type Orchestrator struct {
	Client        *Client
	Ledger        Ledger
	Stage         *Stage
	Extractor     Extractor
	Dispatcher    Dispatcher
	TrustedPrefix string
	Mirror        *Mirror
}

// FromConfig wires an orchestrator from the application config.
func FromConfig(cfg *config.Config, ledger Ledger, dispatcher Dispatcher) (*Orchestrator, error) {
	o := &Orchestrator{
		Client:        NewClient(cfg.Source.BaseURL, cfg.Source.ProductPath, cfg.Source.Key),
		Ledger:        ledger,
		Stage:         NewStage(cfg.Storage.Path),
		Extractor:     archive.NewExtractor(cfg.Storage.Path),
		Dispatcher:    dispatcher,
		TrustedPrefix: cfg.Source.TrustedPrefix,
	}
	if cfg.S3.Enabled {
		mirror, err := NewMirror(cfg.S3)
		if err != nil {
			return nil, err
		}
		o.Mirror = mirror
	}
	return o, nil
}

func (o *Orchestrator) Run(opts Options) (*Result, error) {
	result := &Result{}

	if opts.UsePrevious {
		if !o.Stage.Exists() && o.Mirror != nil {
			if err := o.Mirror.Restore(o.Stage.Path()); err != nil {
				return nil, err
			}
			log.Printf("restored %s from mirror", ArchiveKey)
		}
	} else {
		descriptor, err := o.Client.Latest()
		if err != nil {
			return nil, err
		}

		seen, err := o.Ledger.SeenImport(descriptor.MD5)
		if err != nil {
			return nil, err
		}
		if seen && !opts.Force {
			log.Printf("archive %s already imported", descriptor.MD5)
			result.AlreadyImported = true
			return result, nil
		}

		if err := o.fetch(descriptor, result); err != nil {
			return nil, err
		}
	}

	files, err := o.Extractor.Extract(o.Stage.Path())
	if err != nil {
		return nil, err
	}
	result.Extracted = len(files)
	if len(files) == 0 {
		log.Printf("no CSV files extracted from %s", o.Stage.Path())
	}

	for _, file := range files {
		result.TaskIDs = append(result.TaskIDs, o.Dispatcher.Enqueue(file))
	}
	return result, nil
}

// fetch downloads and registers a new archive. A descriptor pointing
// outside the trusted origin is refused: the download is skipped and the
// run falls through to whatever archive is already staged.
func (o *Orchestrator) fetch(descriptor *types.ProductDescriptor, result *Result) error {
	if !strings.HasPrefix(descriptor.URL, o.TrustedPrefix) {
		log.Printf("refusing download from untrusted origin: %s", descriptor.URL)
		return nil
	}

	body, err := o.Client.Fetch(descriptor.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	written, err := o.Stage.Put(body)
	if err != nil {
		return err
	}
	if err := o.Ledger.RecordImport(descriptor.MD5, descriptor.Size); err != nil {
		return err
	}
	if o.Mirror != nil {
		if err := o.Mirror.Put(o.Stage.Path()); err != nil {
			log.Printf("mirror upload failed: %v", err)
		}
	}

	log.Printf("fetched %d bytes to %s", written, o.Stage.Path())
	result.Fetched = true
	return nil
}
