package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/services"
)

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the knowledge index",
	Long: `Embeds the query text and prints the most similar chunks of the
knowledge document, best match first.

When the index cannot be loaded the command still succeeds and reports
the knowledge base as unavailable.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to return (default retrieval.top_k)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the outcome as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	svc := getRetrievalService(cmd.Context(), settings)
	outcome := svc.Query(cmd.Context(), args[0], queryTopK)

	if queryJSON {
		return outputQueryJSON(cmd, outcome)
	}
	outputQueryText(cmd, outcome)
	return nil
}

// queryHit is the JSON form of a scored chunk.
type queryHit struct {
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
	ChunkID   string  `json:"chunk_id"`
	Position  int     `json:"position"`
	PageStart int     `json:"page_start"`
	PageEnd   int     `json:"page_end"`
	Content   string  `json:"content"`
}

type queryResult struct {
	Status string     `json:"status"`
	Hits   []queryHit `json:"hits"`
	Error  string     `json:"error,omitempty"`
}

func outputQueryJSON(cmd *cobra.Command, outcome domain.QueryOutcome) error {
	res := queryResult{
		Status: string(outcome.Status),
		Hits:   make([]queryHit, 0, len(outcome.Hits)),
	}
	for i, h := range outcome.Hits {
		res.Hits = append(res.Hits, queryHit{
			Rank:      i + 1,
			Score:     h.Score,
			ChunkID:   h.Chunk.ID,
			Position:  h.Chunk.Position,
			PageStart: h.Chunk.PageStart,
			PageEnd:   h.Chunk.PageEnd,
			Content:   h.Chunk.Content,
		})
	}
	if outcome.Err != nil {
		res.Error = outcome.Err.Error()
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, outcome domain.QueryOutcome) {
	cmd.Println(out.Status(outcome.Status).Render(string(outcome.Status)))

	if !outcome.OK() {
		cmd.Println(out.Muted.Render(services.RenderOutcome(outcome)))
		if outcome.Err != nil {
			cmd.Println(out.Muted.Render(outcome.Err.Error()))
		}
		return
	}

	for i, h := range outcome.Hits {
		cmd.Println()
		cmd.Printf("[%d] %s\n", i+1, out.Muted.Render(
			fmt.Sprintf("score %.3f, pages %d-%d", h.Score, h.Chunk.PageStart, h.Chunk.PageEnd)))
		cmd.Println(out.Passage.Render(h.Chunk.Content))
	}
}
