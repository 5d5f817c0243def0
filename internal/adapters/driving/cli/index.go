package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/normalisers/pdf"
)

var (
	indexOutput     string
	indexNoProgress bool
)

// checkPDFTool reports whether pdftotext is installed.
var checkPDFTool = pdf.CheckAvailable

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and inspect the knowledge index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [document]",
	Short: "Build the index from a source document",
	Long: `Loads the source document, splits it into overlapping chunks, embeds
every chunk and writes the index artifact.

The document defaults to paths.source_document and the artifact to
paths.index. The previous artifact is only replaced once the new one has
been written completely.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexBuild,
}

var indexInfoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show the manifest of an index artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexInfo,
}

func init() {
	indexBuildCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "index artifact path (default paths.index)")
	indexBuildCmd.Flags().BoolVar(&indexNoProgress, "no-progress", false, "disable the progress bar")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	req := driving.BuildRequest{
		SourcePath: settings.Paths.SourceDocument,
		OutputPath: settings.Paths.Index,
	}
	if len(args) > 0 {
		req.SourcePath = args[0]
	}
	if indexOutput != "" {
		req.OutputPath = indexOutput
	}
	if req.SourcePath == "" {
		return fmt.Errorf("%w: no document given and paths.source_document is not set", domain.ErrInvalidInput)
	}

	if strings.EqualFold(filepath.Ext(req.SourcePath), ".pdf") {
		if err := checkPDFTool(); err != nil {
			cmd.PrintErrln(out.Warning.Render("Warning: pdftotext not found, using the built-in PDF reader"))
		}
	}

	builder, err := getIndexBuilder(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer closeServices()

	progress := newBuildProgress(!indexNoProgress && term.IsTerminal(int(os.Stderr.Fd())))
	req.Progress = progress.update
	defer progress.finish()

	report, err := builder.Build(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	progress.finish()

	cmd.Println(out.Success.Render("Index built"))
	printManifest(cmd, report.OutputPath, &report.Manifest)
	cmd.Println(out.KeyValue("Duration", report.Duration.Round(time.Millisecond)))
	return nil
}

func runIndexInfo(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		path = settings.Paths.Index
	}

	idx, err := getIndexStore().Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	printManifest(cmd, path, &idx.Manifest)
	return nil
}

func printManifest(cmd *cobra.Command, path string, m *domain.Manifest) {
	cmd.Println(out.KeyValue("Path", path))
	cmd.Println(out.KeyValue("Source", m.SourcePath))
	if m.SourceSHA256 != "" {
		cmd.Println(out.KeyValue("Source SHA-256", m.SourceSHA256))
	}
	cmd.Println(out.KeyValue("Pages", m.PageCount))
	cmd.Println(out.KeyValue("Chunks", m.ChunkCount))
	cmd.Println(out.KeyValue("Chunking", fmt.Sprintf("%d chars, %d overlap", m.ChunkSize, m.ChunkOverlap)))
	cmd.Println(out.KeyValue("Embedding model", m.EmbeddingModel))
	cmd.Println(out.KeyValue("Dimensions", m.Dimensions))
	cmd.Println(out.KeyValue("Format version", m.FormatVersion))
	if !m.BuiltAt.IsZero() {
		cmd.Println(out.KeyValue("Built at", m.BuiltAt.Format(time.RFC3339)))
	}
}

// buildProgress renders embedding progress on stderr.
// A disabled buildProgress ignores every call.
type buildProgress struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

func newBuildProgress(enabled bool) *buildProgress {
	return &buildProgress{enabled: enabled}
}

func (p *buildProgress) update(done, total int) {
	if !p.enabled || total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("embedding"),
			progressbar.OptionSetWidth(32),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	_ = p.bar.Set(done)
}

func (p *buildProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
