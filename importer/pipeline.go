// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package importer loads vector data into a collection in bulk.
//
// Input is JSON lines, one record per line. A record either carries its
// vector directly or carries text, in which case the vector is resolved
// cache-first: a previously computed embedding is reused, otherwise the
// configured provider computes one and the result is written back to the
// cache. Records are inserted concurrently on a worker pool.
package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vectorview/ai"
	"github.com/poiesic/vectorview/cache"
	"github.com/poiesic/vectorview/events"
	"github.com/poiesic/vectorview/vset"
)

// Record is one line of import input.
type Record struct {
	Element string    `json:"element"`
	Text    string    `json:"text,omitempty"`
	Vector  []float32 `json:"vector,omitempty"`
}

// Result summarizes a finished import.
type Result struct {
	Total   int `json:"total"`
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Importer runs bulk imports into vector sets.
type Importer struct {
	client   *vset.Client
	embedder ai.Embedder
	cache    *cache.Cache
	config   *ai.Config

	pool           *ants.Pool
	broker         *events.Broker // may be nil
	reportInterval int
	addOpts        vset.AddOptions
	logger         *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent inserts.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(imp *Importer) error {
		if size < 1 {
			size = 1
		}
		if imp.pool != nil {
			imp.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		imp.pool = pool
		return nil
	}
}

// WithBroker publishes import progress events on the given broker.
func WithBroker(broker *events.Broker) Option {
	return func(imp *Importer) error {
		imp.broker = broker
		return nil
	}
}

// WithReportInterval publishes a progress event every n processed records.
// Default is 100.
func WithReportInterval(n int) Option {
	return func(imp *Importer) error {
		if n < 1 {
			n = 1
		}
		imp.reportInterval = n
		return nil
	}
}

// WithAddOptions applies the given VADD options to every inserted record.
func WithAddOptions(opts vset.AddOptions) Option {
	return func(imp *Importer) error {
		imp.addOpts = opts
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		imp.logger = logger
		return nil
	}
}

// New creates an importer. embCache may be nil to disable caching;
// embedder may be nil if every record carries its own vector.
func New(client *vset.Client, embedder ai.Embedder, embCache *cache.Cache, config *ai.Config, opts ...Option) (*Importer, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	imp := &Importer{
		client:         client,
		embedder:       embedder,
		cache:          embCache,
		config:         config,
		reportInterval: 100,
		logger:         slog.Default().With("component", "importer"),
	}

	for _, opt := range opts {
		if err := opt(imp); err != nil {
			if imp.pool != nil {
				imp.pool.Release()
			}
			return nil, err
		}
	}

	if imp.pool == nil {
		size := runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, err
		}
		imp.pool = pool
	}

	return imp, nil
}

// Run reads JSON-lines records from r and inserts them into collection.
// Records that fail to parse, embed or insert are counted and logged, not
// fatal; Run only errors on input read failure or context cancellation.
func (imp *Importer) Run(ctx context.Context, collection string, r io.Reader) (*Result, error) {
	imp.publish(events.TypeImportStart, map[string]any{"collection": collection})

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		result    Result
		processed int
	)

	fail := func(line int, err error) {
		mu.Lock()
		result.Failed++
		mu.Unlock()
		imp.logger.Warn("record import failed", "collection", collection, "line", line, "err", err)
	}

	// complete runs after a record's insert has finished (or failed), so the
	// processed count never runs ahead of the actual inserts.
	complete := func() {
		mu.Lock()
		processed++
		n := processed
		mu.Unlock()
		if n%imp.reportInterval == 0 {
			imp.publish(events.TypeImportBatch, map[string]any{
				"collection": collection,
				"processed":  n,
			})
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	line := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		default:
		}

		line++
		raw := make([]byte, len(scanner.Bytes()))
		copy(raw, scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		mu.Lock()
		result.Total++
		mu.Unlock()

		lineNo := line
		wg.Add(1)
		err := imp.pool.Submit(func() {
			defer wg.Done()
			defer complete()
			added, err := imp.importRecord(ctx, collection, raw)
			if err != nil {
				fail(lineNo, err)
				return
			}
			mu.Lock()
			if added {
				result.Added++
			} else {
				result.Updated++
			}
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(lineNo, err)
			complete()
		}
	}
	if err := scanner.Err(); err != nil {
		wg.Wait()
		return nil, fmt.Errorf("reading import input: %w", err)
	}

	wg.Wait()

	imp.publish(events.TypeImportDone, map[string]any{
		"collection": collection,
		"result":     result,
	})
	imp.logger.Info("import finished",
		"collection", collection,
		"total", result.Total,
		"added", result.Added,
		"updated", result.Updated,
		"failed", result.Failed)
	return &result, nil
}

// importRecord resolves a record's vector and inserts it.
func (imp *Importer) importRecord(ctx context.Context, collection string, raw []byte) (bool, error) {
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return false, fmt.Errorf("parsing record: %w", err)
	}

	vector := record.Vector
	if len(vector) == 0 {
		if record.Text == "" {
			return false, ErrNoVectorSource
		}
		v, err := imp.resolveEmbedding(ctx, record.Text)
		if err != nil {
			return false, err
		}
		vector = v
	}

	return imp.client.Add(ctx, collection, record.Element, vector, imp.addOpts)
}

// resolveEmbedding returns the embedding for text, cache-first.
func (imp *Importer) resolveEmbedding(ctx context.Context, text string) ([]float32, error) {
	if imp.cache != nil {
		if vector, ok := imp.cache.Get(ctx, []byte(text), imp.config); ok {
			return vector, nil
		}
	}

	if imp.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	vector, err := imp.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}

	if imp.cache != nil {
		imp.cache.Set(ctx, []byte(text), vector, imp.config)
	}
	return vector, nil
}

func (imp *Importer) publish(eventType string, data any) {
	if imp.broker != nil {
		imp.broker.Publish(eventType, data)
	}
}

// Close releases the worker pool.
func (imp *Importer) Close() {
	imp.pool.Release()
}
