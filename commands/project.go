package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dora-ryukyu/word2vec3d/corpus"
	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/projection"
	"github.com/dora-ryukyu/word2vec3d/session"

	"github.com/spf13/cobra"
)

var projectJSON bool

var projectCmd = &cobra.Command{
	Use:   "project [words...]",
	Short: "Print the projected corpus without starting the viewer",
	Long: `Fit the corpus, add any words given as arguments through the frozen
basis, and print every point's PCA coordinates, normalized position and colour.`,
	RunE: runProject,
}

func init() {
	projectCmd.Flags().BoolVar(&projectJSON, "json", false, "output as JSON (for piping)")
}

type pointOutput struct {
	Index      int                `json:"index"`
	Label      string             `json:"label"`
	Category   string             `json:"category"`
	Projection projection.Point3D `json:"projection"`
	Normalized projection.Point3D `json:"normalized"`
	Color      string             `json:"color"`
}

type projectOutput struct {
	Count             int                           `json:"count"`
	Dimension         int                           `json:"dimension"`
	Eigenvalues       [projection.Dimensions]float64 `json:"eigenvalues"`
	ExplainedVariance [projection.Dimensions]float64 `json:"explained_variance"`
	Points            []pointOutput                 `json:"points"`
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := getConfig()
	logger := newLogger(cmd.ErrOrStderr(), verbose)

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

	for _, word := range args {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		vector, err := embedder.Embed(ctx, word)
		if err != nil {
			return fmt.Errorf("embed %q: %w", word, err)
		}
		entry := corpus.NewEntry(word, preload.UserCategory, vector)
		if _, err := sess.Add(entry); err != nil {
			return err
		}
		if store != nil {
			if _, err := store.Save(ctx, entry); err != nil {
				return fmt.Errorf("save %q: %w", word, err)
			}
		}
	}

	if projectJSON {
		return writeProjectJSON(cmd.OutOrStdout(), sess)
	}
	return writeProjectTable(cmd.OutOrStdout(), sess)
}

func writeProjectJSON(w io.Writer, sess *session.Session) error {
	stats := sess.Stats()
	output := projectOutput{
		Count:             stats.Count,
		Dimension:         stats.Dimension,
		Eigenvalues:       stats.Eigenvalues,
		ExplainedVariance: stats.ExplainedVariance,
	}
	for _, point := range sess.Points() {
		output.Points = append(output.Points, pointOutput(point))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func writeProjectTable(w io.Writer, sess *session.Session) error {
	stats := sess.Stats()
	fmt.Fprintf(w, "%d entries, dimension %d, explained PC1 %.1f%% PC2 %.1f%% PC3 %.1f%%\n\n",
		stats.Count, stats.Dimension,
		stats.ExplainedVariance[0]*100, stats.ExplainedVariance[1]*100, stats.ExplainedVariance[2]*100)

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "#\tLABEL\tCATEGORY\tX\tY\tZ\tCOLOR")
	for _, point := range sess.Points() {
		fmt.Fprintf(table, "%d\t%s\t%s\t%.4f\t%.4f\t%.4f\t%s\n",
			point.Index, point.Label, point.Category,
			point.Normalized[0], point.Normalized[1], point.Normalized[2], point.Color)
	}
	return table.Flush()
}
