// Package commands implements the word2vec3d command line.
package commands

import (
	"context"
	"fmt"

	"github.com/dora-ryukyu/word2vec3d/config"
	"github.com/dora-ryukyu/word2vec3d/session"
	"github.com/dora-ryukyu/word2vec3d/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags, defaults to "dev" for local builds
var version = "dev"

var (
	// Global flags
	cfgFile    string
	backend    string
	verbose    bool
	useQdrant  bool
	importPath string
	hfDataset  string
	hfConfig   string
	hfSplit    string
	hfColumn   string
	hfMaxRows  int
	noPresets  bool

	// Global configuration
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "word2vec3d",
	Short: "Explore word embeddings as a 3D PCA scatter in the terminal",
	Long: `word2vec3d embeds a preset vocabulary, fits a three-component PCA basis
and renders the projected words as a rotating 3D scatter.

Words typed into the viewer are embedded with the configured backend and
projected through the frozen basis, so the existing layout never reshuffles.

Examples:
  # Start the viewer with a local Ollama server
  word2vec3d

  # Use the Hugging Face Inference API and add words from a file
  word2vec3d --backend huggingface --import words.csv

  # Print the projection without a terminal UI
  word2vec3d project --json tiger lion
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runViewer,
}

// ExecuteContext runs the root command. main cancels ctx on SIGINT/SIGTERM.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, default: built-in settings)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "embedding backend: ollama or huggingface")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&useQdrant, "qdrant", false, "load and persist entries in Qdrant")
	rootCmd.PersistentFlags().StringVar(&importPath, "import", "", "CSV or JSON file of texts to add to the initial corpus")
	rootCmd.PersistentFlags().StringVar(&hfDataset, "hf-dataset", "", "Hugging Face dataset to take texts from")
	rootCmd.PersistentFlags().StringVar(&hfConfig, "hf-config", "", "dataset config (default: first available)")
	rootCmd.PersistentFlags().StringVar(&hfSplit, "hf-split", "", "dataset split (default: first available)")
	rootCmd.PersistentFlags().StringVar(&hfColumn, "hf-column", "text", "dataset column holding the texts")
	rootCmd.PersistentFlags().IntVar(&hfMaxRows, "hf-max-rows", 200, "maximum dataset rows to embed, 0 for all")
	rootCmd.PersistentFlags().BoolVar(&noPresets, "no-presets", false, "skip the preset vocabulary")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("backend") {
		cfg.Backend = backend
	}
	if cmd.Flags().Changed("qdrant") {
		cfg.Qdrant.Enabled = useQdrant
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	globalConfig = cfg
	return nil
}

// getConfig returns the global configuration
func getConfig() *config.Config {
	if globalConfig == nil {
		return config.Default()
	}
	return globalConfig
}

func runViewer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := getConfig()

	logger, closeLog, err := viewerLogger(cfg.LogFile, verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := collectEntries(ctx, sourceOptionsFromFlags(embedder, store, logger, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	sess, err := session.New(entries, session.Options{
		Solver:   cfg.Projection.Solver,
		Tunables: cfg.Projection.Tunables,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	var tuiStore tui.Store
	if store != nil {
		tuiStore = store
	}

	model := tui.NewModel(sess, embedder, tuiStore, version)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
