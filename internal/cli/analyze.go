package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Codewiz19/legallens/internal/backend"
	"github.com/Codewiz19/legallens/internal/config"
	"github.com/Codewiz19/legallens/internal/document"
	"github.com/Codewiz19/legallens/internal/report"
	"github.com/Codewiz19/legallens/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a document and print the report",
	Long: `Run the full pipeline without the TUI: upload, summarize, extract
risks, normalize, and print the report. The result is also saved as the
current session, so "legallens --resume" and "legallens export" pick it up.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the report as JSON instead of text")
	analyzeCmd.Flags().StringP("output", "o", "", "also write the JSON report to a file")
	analyzeCmd.Flags().Bool("local", false, "skip the backend and use local heuristics only")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var snapshot session.Snapshot
	if local, _ := cmd.Flags().GetBool("local"); local {
		snapshot = analyzeLocally(doc, cfg)
	} else {
		snapshot, err = runPipeline(ctx, newBackend(cfg), cfg, doc)
		if err != nil {
			return err
		}
	}

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("opening session cache: %w", err)
	}
	if err := store.Save(snapshot); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := session.Export(snapshot, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSONReport(cmd.OutOrStdout(), snapshot)
	}
	writeTextReport(cmd.OutOrStdout(), snapshot)
	return nil
}

// runPipeline is the strictly sequential backend flow: upload, then
// summarize, then risks. The pacer inside the client spaces the calls; order
// is enforced here because each step needs the previous one's output.
func runPipeline(ctx context.Context, client backend.Client, cfg config.Config, doc *document.Document) (session.Snapshot, error) {
	upload, err := client.Upload(ctx, doc.DisplayName, doc.Data)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("upload: %w", err)
	}

	rawSummary, err := client.Summarize(ctx, upload.DocID, doc.DisplayName)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("summarize: %w", err)
	}
	summary := report.NormalizeSummary(rawSummary, cfg.SplitConfig())
	if summary.DocumentID == "" {
		summary.DocumentID = upload.DocID
	}

	rawRisks, err := client.ExtractRisks(ctx, upload.DocID)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("extract risks: %w", err)
	}
	assessment := report.NormalizeRisks(rawRisks)
	if len(assessment.Items) == 0 {
		assessment = report.Synthesize(summary, cfg.SynthesisConfig())
	}

	return session.Snapshot{
		DocumentID:  upload.DocID,
		DisplayName: doc.DisplayName,
		SavedAt:     time.Now(),
		Summary:     &summary,
		Assessment:  &assessment,
	}, nil
}

// analyzeLocally builds a report from the document text alone, for offline
// use or backends that are down. The summary is marked as fallback output.
func analyzeLocally(doc *document.Document, cfg config.Config) session.Snapshot {
	text := doc.Text
	excerpt := text
	if len(excerpt) > 600 {
		excerpt = strings.TrimSpace(excerpt[:600]) + "…"
	}
	summary := report.DocumentSummary{
		ExecutiveSummary:       excerpt,
		Points:                 report.SplitPoints(text, cfg.SplitConfig()),
		UsedFallbackProcessing: true,
	}
	if summary.Points == nil {
		summary.Points = []string{}
	}
	assessment := report.Synthesize(summary, cfg.SynthesisConfig())
	return session.Snapshot{
		DisplayName: doc.DisplayName,
		SavedAt:     time.Now(),
		Summary:     &summary,
		Assessment:  &assessment,
	}
}

func writeJSONReport(w io.Writer, snapshot session.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"document": map[string]any{
			"id":          snapshot.DocumentID,
			"displayName": snapshot.DisplayName,
			"analyzedAt":  snapshot.SavedAt,
		},
		"summary":    snapshot.Summary,
		"assessment": snapshot.Assessment,
	})
}

func writeTextReport(w io.Writer, snapshot session.Snapshot) {
	fmt.Fprintf(w, "Document: %s\n", snapshot.DisplayName)
	if summary := snapshot.Summary; summary != nil {
		fmt.Fprintf(w, "\nSummary\n  %s\n", summary.ExecutiveSummary)
		if len(summary.Points) > 0 {
			fmt.Fprintln(w, "\nKey points")
			for i, point := range summary.Points {
				fmt.Fprintf(w, "  %d. %s\n", i+1, point)
			}
		}
		if summary.UsedFallbackProcessing {
			fmt.Fprintln(w, "\n(generated with local fallback processing)")
		}
	}
	if assessment := snapshot.Assessment; assessment != nil {
		level := assessment.DocumentLevel
		fmt.Fprintf(w, "\nRisk: %s (%d/100), %d high / %d medium / %d low\n",
			level.Tier, level.ComputedScore, level.Counts.High, level.Counts.Medium, level.Counts.Low)
		for _, item := range assessment.Items {
			fmt.Fprintf(w, "\n  [%s %d] %s\n", item.SeverityLabel, item.SeverityScore, item.ShortDescription)
			if item.Snippet != "" {
				fmt.Fprintf(w, "    %s\n", item.Snippet)
			}
			if item.Explanation != "" {
				fmt.Fprintf(w, "    %s\n", item.Explanation)
			}
			for _, rec := range item.Recommendations {
				fmt.Fprintf(w, "    - %s\n", rec)
			}
		}
	}
}
