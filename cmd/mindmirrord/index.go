package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	indexTradition string
	indexUserID    string
	indexSource    string
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Embed and index a document",
	Long: `Embed a document and write it to the right collection.

With --user the document is treated as a journal entry and lands in the
user's private collection; without it, the document is shared knowledge.

Examples:
  # Index a knowledge document for a tradition
  mindmirrord index --tradition stoicism meditations.txt

  # Index a journal entry from stdin
  echo "practiced negative visualization" | mindmirrord index --tradition stoicism --user user-42 -`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexTradition, "tradition", "", "tradition the document belongs to (required)")
	indexCmd.Flags().StringVar(&indexUserID, "user", "", "user ID; marks the document as a journal entry")
	indexCmd.Flags().StringVar(&indexSource, "source", "", "optional source label stored in the payload")
	_ = indexCmd.MarkFlagRequired("tradition")
}

func runIndex(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()

	embedding, err := a.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embedding document: %w", err)
	}

	metadata := map[string]any{}
	if indexSource != "" {
		metadata["source"] = indexSource
	}

	var id string
	if indexUserID != "" {
		id, err = a.indexer.IndexPersonalDocument(ctx, indexTradition, indexUserID, text, embedding[0], metadata)
	} else {
		id, err = a.indexer.IndexKnowledgeDocument(ctx, indexTradition, text, embedding[0], metadata)
	}
	if err != nil {
		return err
	}

	return printJSON(map[string]string{"id": id})
}

// readInput reads the document from a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
