package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dora-ryukyu/word2vec3d/config"
	"github.com/dora-ryukyu/word2vec3d/corpus"
	"github.com/dora-ryukyu/word2vec3d/dataimport"
	"github.com/dora-ryukyu/word2vec3d/embedding"
	"github.com/dora-ryukyu/word2vec3d/huggingface"
	"github.com/dora-ryukyu/word2vec3d/ollama"
	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/qdrant"
)

// importCategory labels imported texts whose file gives no category.
const importCategory = "imported"

// entryStore is the persistence the commands need. *qdrant.Client satisfies it.
type entryStore interface {
	GetAll(ctx context.Context) ([]qdrant.Point, error)
	Save(ctx context.Context, entry corpus.Entry) (string, error)
}

// datasetFetcher is the part of the Hugging Face dataset client used here.
type datasetFetcher interface {
	ResolveSplit(ctx context.Context, dataset, config, split string) (huggingface.Split, error)
	FetchTexts(ctx context.Context, dataset, config, split, column string, maxRows int) ([]string, error)
}

// Swapped out in tests.
var (
	newEmbedder = func(cfg *config.Config) (embedding.Embedder, error) {
		switch cfg.Backend {
		case config.BackendOllama:
			return ollama.NewClient(cfg.Ollama.URL, cfg.Ollama.Model), nil
		case config.BackendHuggingFace:
			return huggingface.NewEmbeddingsClient(cfg.HuggingFace.Model, cfg.HuggingFace.Token), nil
		default:
			return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
		}
	}

	openStore = func(ctx context.Context, cfg *config.Config) (entryStore, func(), error) {
		if !cfg.Qdrant.Enabled {
			return nil, func() {}, nil
		}
		client, err := qdrant.NewClient(ctx, cfg.Qdrant.Address, cfg.Qdrant.Collection, cfg.Qdrant.Dimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("qdrant at %s (is it running? docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant): %w", cfg.Qdrant.Address, err)
		}
		return client, func() { _ = client.Close() }, nil
	}

	newDatasetClient = func() datasetFetcher {
		return huggingface.NewClient()
	}
)

type datasetOptions struct {
	name    string
	config  string
	split   string
	column  string
	maxRows int
}

func datasetOptionsFromFlags() datasetOptions {
	return datasetOptions{name: hfDataset, config: hfConfig, split: hfSplit, column: hfColumn, maxRows: hfMaxRows}
}

func sourceOptionsFromFlags(embedder embedding.Embedder, store entryStore, logger *slog.Logger, progressOut io.Writer) sourceOptions {
	return sourceOptions{
		embedder:   embedder,
		store:      store,
		presets:    !noPresets,
		importPath: importPath,
		dataset:    datasetOptionsFromFlags(),
		logger:     logger,
		progress:   progressPrinter(progressOut),
	}
}

type sourceOptions struct {
	embedder   embedding.Embedder
	store      entryStore
	presets    bool
	importPath string
	dataset    datasetOptions
	logger     *slog.Logger
	progress   func(stage string) embedding.Progress
}

// collectEntries gathers the initial corpus in a fixed order: presets, then
// stored entries, then the import file, then the dataset. Imported and
// dataset entries are persisted when a store is configured.
func collectEntries(ctx context.Context, opts sourceOptions) ([]corpus.Entry, error) {
	logger := opts.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	progress := opts.progress
	if progress == nil {
		progress = func(string) embedding.Progress { return nil }
	}

	var entries []corpus.Entry

	if opts.presets {
		words, categories := preload.Words()
		presetEntries, err := embedding.EmbedEntries(ctx, opts.embedder, words, categories, progress("presets"))
		if err != nil {
			return nil, fmt.Errorf("embed presets: %w", err)
		}
		entries = append(entries, presetEntries...)
		logger.Info("presets embedded", "count", len(presetEntries))
	}

	if opts.store != nil {
		points, err := opts.store.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load stored entries: %w", err)
		}
		for _, point := range points {
			entries = append(entries, point.Entry())
		}
		logger.Info("stored entries loaded", "count", len(points))
	}

	var fresh []corpus.Entry

	if opts.importPath != "" {
		imported, err := importEntries(ctx, opts.embedder, opts.importPath, progress("import"))
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, imported...)
		logger.Info("file imported", "path", opts.importPath, "count", len(imported))
	}

	if opts.dataset.name != "" {
		fromDataset, err := datasetEntries(ctx, opts.embedder, opts.dataset, progress("dataset"))
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, fromDataset...)
		logger.Info("dataset imported", "dataset", opts.dataset.name, "count", len(fromDataset))
	}

	if opts.store != nil {
		for _, entry := range fresh {
			if _, err := opts.store.Save(ctx, entry); err != nil {
				return nil, fmt.Errorf("save %q: %w", entry.Label, err)
			}
		}
	}

	return append(entries, fresh...), nil
}

func importEntries(ctx context.Context, embedder embedding.Embedder, path string, progress embedding.Progress) ([]corpus.Entry, error) {
	records, err := dataimport.LoadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	pending, embedded := dataimport.Split(records)

	var entries []corpus.Entry
	if len(pending) > 0 {
		texts := make([]string, len(pending))
		categories := make([]string, len(pending))
		for i, record := range pending {
			texts[i] = record.Text
			categories[i] = record.Category
			if categories[i] == "" {
				categories[i] = importCategory
			}
		}
		entries, err = embedding.EmbedEntries(ctx, embedder, texts, categories, progress)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", path, err)
		}
	}

	for _, record := range embedded {
		entries = append(entries, record.Entry(importCategory))
	}
	return entries, nil
}

func datasetEntries(ctx context.Context, embedder embedding.Embedder, opts datasetOptions, progress embedding.Progress) ([]corpus.Entry, error) {
	client := newDatasetClient()

	split, err := client.ResolveSplit(ctx, opts.name, opts.config, opts.split)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset %s: %w", opts.name, err)
	}

	texts, err := client.FetchTexts(ctx, opts.name, split.Config, split.Split, opts.column, opts.maxRows)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", opts.name, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("dataset %s has no texts in column %q", opts.name, opts.column)
	}

	category := opts.name
	if slash := strings.LastIndex(category, "/"); slash >= 0 {
		category = category[slash+1:]
	}
	categories := make([]string, len(texts))
	for i := range categories {
		categories[i] = category
	}

	entries, err := embedding.EmbedEntries(ctx, embedder, texts, categories, progress)
	if err != nil {
		return nil, fmt.Errorf("embed dataset %s: %w", opts.name, err)
	}
	return entries, nil
}

// progressPrinter rewrites one status line per stage on w.
func progressPrinter(w io.Writer) func(stage string) embedding.Progress {
	return func(stage string) embedding.Progress {
		return func(done, total int) {
			fmt.Fprintf(w, "\r%s [%d/%d]", stage, done, total)
			if done == total {
				fmt.Fprintln(w)
			}
		}
	}
}
