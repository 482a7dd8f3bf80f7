package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"ppdrag/config"
	"ppdrag/internal/adapter/embedding"
	"ppdrag/internal/adapter/store"
	"ppdrag/internal/domain"
	"ppdrag/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Project directory holding ppdrag.yaml and the index")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 5, "Number of results")
	self := flag.Int("self", 0, "Self-retrieval check: query with the first N chunks and report recall@1")
	flag.Parse()

	if *query == "" && *self <= 0 {
		fmt.Println("Usage: go run ./cmd/benchmark -dir . -q \"query\"")
		fmt.Println("       go run ./cmd/benchmark -dir . -self 50")
		fmt.Println("\nTests:")
		fmt.Println("  1. Index loading (manifest, embedding identity)")
		fmt.Println("  2. Semantic similarity (query vs results)")
		fmt.Println("  3. Self-retrieval (each chunk finds itself first)")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedder init failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	indexDir := cfg.IndexDir(*dir)

	start := time.Now()
	handle, err := usecase.OpenHandle(ctx, indexDir, embedder, usecase.HandleOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(start)

	m := handle.Manifest()
	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Chunks indexed: %d (build %s)\n", m.Count, m.BuildID)
	fmt.Printf("Model: %s (%s)\n", m.EmbeddingModel, m.EmbeddingProvider)
	fmt.Printf("Dimension: %d\n", m.Dimension)
	fmt.Printf("Load time: %s\n", loadTime.Round(time.Millisecond))
	fmt.Println()

	if *query != "" {
		runQuery(ctx, handle, *query, *topK)
	}
	if *self > 0 {
		runSelfCheck(ctx, handle, indexDir, *self)
	}
}

func runQuery(ctx context.Context, handle *usecase.Handle, query string, topK int) {
	fmt.Printf("Query: \"%s\"\n", query)
	fmt.Println(strings.Repeat("-", 70))

	start := time.Now()
	results, err := handle.Retrieve(ctx, query, topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	fmt.Printf("Top %d semantic matches (%s):\n\n", len(results), elapsed.Round(time.Microsecond))

	totalScore := 0.0
	for i, r := range results {
		totalScore += r.Score
		fmt.Printf("%d. [%s %.3f] %s\n", i+1, rating(r.Score), r.Score, r.Meta.Citation())
		fmt.Printf("   %s\n\n", preview(r))
	}

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)

	if avgScore > 0.5 {
		fmt.Println("  Status: GOOD - retrieval working well")
	} else if avgScore > 0.3 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - may need a different embedding model or re-ingestion")
	}
	fmt.Println()
}

// runSelfCheck queries with the text of the first n chunks; each should come back first.
func runSelfCheck(ctx context.Context, handle *usecase.Handle, indexDir string, n int) {
	idx, err := store.LoadIndex(ctx, indexDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading chunks: %v\n", err)
		os.Exit(1)
	}
	if n > idx.ChunkCount() {
		n = idx.ChunkCount()
	}

	hits := 0
	var total time.Duration
	for pos := 0; pos < n; pos++ {
		chunk, _ := idx.Chunk(pos)

		start := time.Now()
		results, err := handle.Retrieve(ctx, chunk.Text, 1)
		total += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}

		if len(results) > 0 && results[0].Text == chunk.Text {
			hits++
		} else {
			fmt.Printf("  miss: %s\n", chunk.Meta.Citation())
		}
	}
	if n == 0 {
		fmt.Println("Index holds no chunks.")
		return
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("SELF-RETRIEVAL:\n")
	fmt.Printf("  Queries:       %d\n", n)
	fmt.Printf("  Recall@1:      %.3f\n", float64(hits)/float64(n))
	fmt.Printf("  Mean latency:  %s\n", (total / time.Duration(n)).Round(time.Microsecond))
}

func rating(score float64) string {
	switch {
	case score > 0.7:
		return "HIGH"
	case score > 0.5:
		return "GOOD"
	case score > 0.3:
		return "OK"
	default:
		return "LOW"
	}
}

func preview(r domain.RetrievalResult) string {
	text := []rune(r.Text)
	if len(text) > 150 {
		text = append(text[:150], []rune("...")...)
	}
	return strings.ReplaceAll(string(text), "\n", " ")
}
