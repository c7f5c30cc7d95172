// Copyright 2025 Tessella Labs
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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tessella/docpipe/ai"
	"github.com/tessella/docpipe/ai/openai"
	"github.com/tessella/docpipe/audit"
	"github.com/tessella/docpipe/chunk"
	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/engine"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/metadata"
	"github.com/tessella/docpipe/pipeline"
	"github.com/tessella/docpipe/storage/badger"
	"github.com/tessella/docpipe/vector"
)

func main() {
	app := &cli.App{
		Name:  "docpipe",
		Usage: "Document ingestion and vector indexing pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Extract, normalize, chunk and index documents",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append(indexFlags(),
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk window size in characters",
						Value: chunk.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between consecutive chunks",
						Value: chunk.DefaultChunkOverlap,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent documents (0 = half the CPUs)",
					},
					&cli.StringFlag{
						Name:  "audit-db",
						Usage: "Path to BadgerDB directory for audit events",
					},
					&cli.StringFlag{
						Name:  "audit-log",
						Usage: "Path to a JSONL audit log file",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Query the vector index",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(indexFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (1-100)",
						Value:   vector.DefaultSearchLimit,
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Remove a document from the vector index",
				ArgsUsage: "DOCUMENT_ID",
				Action:    deleteCommand,
				Flags:     indexFlags(),
			},
			{
				Name:   "events",
				Usage:  "Query recorded audit events",
				Action: eventsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "audit-db",
						Usage:    "Path to BadgerDB directory for audit events",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "workflow",
						Usage: "Filter by workflow id",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Filter by category (document_processing, vector_store, system_event, workflow)",
					},
					&cli.TimestampFlag{
						Name:   "since",
						Usage:  "Start of the time range (RFC 3339)",
						Layout: time.RFC3339,
					},
					&cli.TimestampFlag{
						Name:   "until",
						Usage:  "End of the time range (RFC 3339)",
						Layout: time.RFC3339,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of events (0 = all)",
						Value: 50,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// indexFlags are shared by every command that touches the vector index.
func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "vector-db",
			Aliases: []string{"d"},
			Usage:   "Path to the vector store directory (empty = in-memory)",
			Value:   "./docpipe_db",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Vector collection name",
			Value: vector.DefaultCollection,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (empty = simulated index operations)",
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one file path is required")
	}

	index, err := buildIndex(c)
	if err != nil {
		return err
	}

	events, err := buildAuditLogger(c)
	if err != nil {
		return err
	}
	defer events.Close()

	registry := engine.NewDefaultRegistry(
		extract.NewRegistry(),
		metadata.NewNormalizer(),
		index,
		events,
	)

	opts := []pipeline.Option{
		pipeline.WithChunkConfig(c.Int("chunk-size"), c.Int("chunk-overlap")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, pipeline.WithPoolSize(workers))
	}

	p, err := pipeline.NewPipeline(registry, opts...)
	if err != nil {
		return err
	}
	defer p.Release()

	results := p.IngestFiles(ctx, paths)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", result.FilePath, result.Err)
			continue
		}
		fmt.Printf("%s: %s (%d chunks) %s\n",
			result.FilePath, result.Status, result.ChunkCount, result.DocumentID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	index, err := buildIndex(c)
	if err != nil {
		return err
	}

	result := index.Search(ctx, query, c.Int("limit"))
	if result.Status == vector.StatusError {
		return fmt.Errorf("search failed: %s", result.Error)
	}

	fmt.Printf("Found %d hits\n", result.TotalFound)
	for i, hit := range result.Results {
		fmt.Printf("%d: '%s' (%s)[%0.3f]\n", i, hit.Text, hit.ID, hit.Distance)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	documentID := c.Args().First()
	if documentID == "" {
		return fmt.Errorf("a document id is required")
	}

	index, err := buildIndex(c)
	if err != nil {
		return err
	}

	result := index.Delete(ctx, documentID, nil)
	if result.Status == vector.StatusError {
		return fmt.Errorf("delete failed: %s", result.Error)
	}

	fmt.Printf("Deleted %d chunks of %s\n", result.DeletedCount, documentID)
	return nil
}

func eventsCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := badger.NewEventStore(c.String("audit-db"))
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}
	defer store.Close()

	var events []*core.Event
	switch {
	case c.String("workflow") != "":
		events, err = store.EventsByWorkflow(ctx, c.String("workflow"))
	case c.String("category") != "":
		events, err = store.EventsByCategory(ctx, c.String("category"), c.Int("limit"))
	case c.Timestamp("since") != nil:
		until := time.Now()
		if t := c.Timestamp("until"); t != nil {
			until = *t
		}
		events, err = store.EventsByTimeRange(ctx, *c.Timestamp("since"), until)
	default:
		return fmt.Errorf("one of --workflow, --category or --since is required")
	}
	if err != nil {
		return err
	}

	for _, event := range events {
		fmt.Printf("%s %s [%s/%s] %v\n",
			event.Timestamp.Format(time.RFC3339),
			event.EventID,
			event.Level,
			event.Category,
			event.Payload)
	}
	fmt.Fprintf(os.Stderr, "%d events\n", len(events))
	return nil
}

// buildIndex opens the vector index with an embedder when a model is
// configured. Without a model the index runs degraded and reports
// simulated results.
func buildIndex(c *cli.Context) (*vector.Index, error) {
	var embedder ai.Embedder
	if model := c.String("embedding-model"); model != "" {
		config := ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(model),
		)
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid embedding configuration: %w", err)
		}

		var err error
		embedder, err = openai.NewEmbedder(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
	}

	opts := []vector.IndexOption{
		vector.WithCollectionName(c.String("collection")),
	}
	if path := c.String("vector-db"); path != "" {
		opts = append(opts, vector.WithPersistPath(path))
	}
	return vector.NewIndex(embedder, opts...), nil
}

// buildAuditLogger wires the configured sinks. With no sinks events
// still mirror to slog.
func buildAuditLogger(c *cli.Context) (*audit.Logger, error) {
	var opts []audit.Option

	if path := c.String("audit-db"); path != "" {
		store, err := badger.NewEventStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		opts = append(opts, audit.WithSink(audit.NewStoreSink(store)))
	}

	if path := c.String("audit-log"); path != "" {
		sink, err := audit.NewStreamSink(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		opts = append(opts, audit.WithSink(sink))
	}

	return audit.NewLogger(opts...), nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
