package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Peleke/MindMirror-sub002/internal/vectorstore"
)

var (
	searchTradition string
	searchUserID    string
	searchLimit     int
	searchScope     string
	searchSince     string
	searchUntil     string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a semantic search",
	Long: `Embed the query and search one or both collection scopes.

Scopes:
  knowledge  shared tradition documents only
  personal   the user's journal entries only
  hybrid     both, fused under one ranking pass (default)

Examples:
  # Hybrid search for a user
  mindmirrord search --tradition stoicism --user user-42 "dealing with anger"

  # Knowledge only
  mindmirrord search --tradition stoicism --scope knowledge "what is virtue"

  # Journal entries from June 2024
  mindmirrord search --tradition stoicism --user user-42 --scope personal \
    --since 2024-06-01T00:00:00Z --until 2024-06-30T23:59:59Z "morning practice"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchTradition, "tradition", "", "tradition to search (required)")
	searchCmd.Flags().StringVar(&searchUserID, "user", "", "user ID for personal/hybrid scope")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (0 = configured default)")
	searchCmd.Flags().StringVar(&searchScope, "scope", "hybrid", "knowledge, personal, or hybrid")
	searchCmd.Flags().StringVar(&searchSince, "since", "", "RFC 3339 lower bound for personal scope")
	searchCmd.Flags().StringVar(&searchUntil, "until", "", "RFC 3339 upper bound for personal scope")
	_ = searchCmd.MarkFlagRequired("tradition")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()

	queryVector, err := a.embedder.EmbedQuery(ctx, args[0])
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}

	var results []vectorstore.SearchResult
	switch searchScope {
	case "knowledge":
		results, err = a.engine.SearchKnowledge(ctx, searchTradition, queryVector, searchLimit)
	case "personal":
		if searchUserID == "" {
			return fmt.Errorf("--user is required for personal scope")
		}
		if searchSince != "" || searchUntil != "" {
			var start, end time.Time
			if start, end, err = parseWindow(searchSince, searchUntil); err != nil {
				return err
			}
			results, err = a.engine.SearchPersonalByDateRange(ctx, searchTradition, searchUserID, queryVector, start, end, searchLimit)
		} else {
			results, err = a.engine.SearchPersonal(ctx, searchTradition, searchUserID, queryVector, searchLimit)
		}
	case "hybrid":
		if searchUserID == "" {
			return fmt.Errorf("--user is required for hybrid scope")
		}
		results, err = a.engine.HybridSearch(ctx, searchTradition, searchUserID, queryVector, true, true, searchLimit)
	default:
		return fmt.Errorf("unknown scope %q", searchScope)
	}
	if err != nil {
		return err
	}

	return printJSON(toViews(results))
}

func parseWindow(since, until string) (time.Time, time.Time, error) {
	if since == "" || until == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--since and --until must be given together")
	}
	start, err := time.Parse(time.RFC3339, since)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing --since: %w", err)
	}
	end, err := time.Parse(time.RFC3339, until)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing --until: %w", err)
	}
	return start, end, nil
}
