package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zots0127/codepoint/pkg/store"
	"github.com/zots0127/codepoint/pkg/types"
)

// DefaultBatchSize bounds memory per insert round trip.
const DefaultBatchSize = 1000

// Worker loads one area CSV into the store. Source rows have fixed column
// positions: postcode first, eastings third, northings fourth. That layout
// is a documented fragility of the source format, not to be generalized.
type Worker struct {
	store     *store.Store
	batchSize int
}

func NewWorker(st *store.Store, batchSize int) *Worker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Worker{store: st, batchSize: batchSize}
}

// Ingest parses the CSV at path and reconciles it against the store rows
// sharing the file's 2-character area prefix. Unknown postcodes are staged
// and inserted in batches; known postcodes are updated only when their
// coordinates changed, so a clean re-import writes nothing. Rows that fail
// normalization or validation are skipped silently. A missing input file
// is fatal for the task.
func (w *Worker) Ingest(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("cannot find input %s: %w", path, err)
		}
		return err
	}
	defer f.Close()

	existing, err := w.store.ByPrefix(areaPrefix(path))
	if err != nil {
		return err
	}
	lookup := make(map[string]types.Postcode, len(existing))
	for _, p := range existing {
		lookup[p.Postcode] = p
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// staged spans the whole run so a postcode repeated within one file,
	// or already flushed in an earlier batch, is never inserted twice.
	staged := make(map[string]struct{})
	batch := make([]types.Postcode, 0, w.batchSize)
	now := time.Now()
	var inserted, updated, skipped int

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(record) < 4 {
			skipped++
			continue
		}

		postcode := Normalize(record[0])
		if !Valid(postcode) {
			skipped++
			continue
		}
		eastings, eastErr := strconv.Atoi(strings.TrimSpace(record[2]))
		northings, northErr := strconv.Atoi(strings.TrimSpace(record[3]))
		if eastErr != nil || northErr != nil {
			skipped++
			continue
		}

		if current, ok := lookup[postcode]; ok {
			if current.Eastings != eastings || current.Northings != northings {
				if err := w.store.UpdateCoordinates(postcode, eastings, northings); err != nil {
					return err
				}
				updated++
			}
			continue
		}

		if _, ok := staged[postcode]; ok {
			continue
		}
		staged[postcode] = struct{}{}
		batch = append(batch, types.Postcode{
			Postcode:  postcode,
			Eastings:  eastings,
			Northings: northings,
			CreatedAt: now,
			UpdatedAt: now,
		})

		if len(batch) >= w.batchSize {
			if err := w.store.InsertBatch(batch); err != nil {
				return err
			}
			inserted += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := w.store.InsertBatch(batch); err != nil {
			return err
		}
		inserted += len(batch)
	}

	log.Printf("ingested %s: %d inserted, %d updated, %d skipped",
		filepath.Base(path), inserted, updated, skipped)
	return nil
}

// areaPrefix derives the reconciliation prefix from an "areacode.csv"
// style filename.
func areaPrefix(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(name) > 2 {
		name = name[:2]
	}
	return name
}
