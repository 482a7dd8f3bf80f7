package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"ppdrag/config"
	"ppdrag/internal/adapter/cache"
	"ppdrag/internal/adapter/retriever"
	"ppdrag/internal/adapter/store"
	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// HandleOptions tune handles built by a Registry.
type HandleOptions struct {
	QueryCacheSize    int            // 0 disables the query embedding cache
	MinScoreThreshold float64        // Filter results below this score (0 = disabled)
	Config            *config.Config // when set, a stale index config is logged
}

// Handle is a loaded index paired with the embedder that queries it.
// It is read-only after construction apart from its query cache.
type Handle struct {
	indexDir          string
	index             *store.Index
	retriever         *retriever.SemanticRetriever
	queryCache        *cache.QueryCache
	minScoreThreshold float64
}

// OpenHandle loads the index in indexDir and checks that it was built by embedder.
func OpenHandle(ctx context.Context, indexDir string, embedder port.Embedder, opts HandleOptions) (*Handle, error) {
	idx, err := store.LoadIndex(ctx, indexDir)
	if err != nil {
		return nil, err
	}
	if err := store.CheckCompatibility(idx.Manifest, embedder.ModelName(), embedder.Dimension()); err != nil {
		return nil, err
	}
	if opts.Config != nil {
		if stale, reason := store.NeedsRebuild(idx.Manifest, opts.Config); stale {
			log.FromContext(ctx).Warn("index may be stale, re-run ppdrag ingest", "reason", reason)
		}
	}

	h := &Handle{
		indexDir:          indexDir,
		index:             idx,
		minScoreThreshold: opts.MinScoreThreshold,
	}
	queryEmbedder := embedder
	if opts.QueryCacheSize > 0 {
		h.queryCache, err = cache.NewQueryCache(opts.QueryCacheSize)
		if err != nil {
			return nil, err
		}
		queryEmbedder = cache.NewCachedEmbedder(embedder, h.queryCache)
	}
	h.retriever = retriever.NewSemanticRetriever(idx, queryEmbedder)

	log.FromContext(ctx).Debug("index loaded",
		"dir", indexDir,
		"build", idx.Manifest.BuildID,
		"vectors", idx.Flat.Len(),
		"model", idx.Manifest.EmbeddingModel,
	)
	return h, nil
}

// Retrieve searches for chunks matching the trimmed query. A blank query
// returns no results.
func (h *Handle) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RetrievalResult{}, nil
	}

	results, err := h.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if h.minScoreThreshold > 0 {
		results = h.filterByThreshold(results)
	}
	return results, nil
}

// filterByThreshold removes results below the minimum score threshold.
func (h *Handle) filterByThreshold(results []domain.RetrievalResult) []domain.RetrievalResult {
	filtered := make([]domain.RetrievalResult, 0, len(results))
	for _, r := range results {
		if r.Score >= h.minScoreThreshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (h *Handle) Manifest() domain.Manifest { return h.index.Manifest }
func (h *Handle) IndexDir() string          { return h.indexDir }

// QueryCache returns the handle's query embedding cache, or nil when disabled.
func (h *Handle) QueryCache() *cache.QueryCache { return h.queryCache }

type handleKey struct {
	indexDir string
	model    string
}

// Registry memoizes handles per (index directory, embedding model) so the index
// is loaded at most once per process. It is safe for concurrent use.
type Registry struct {
	embedder port.Embedder
	opts     HandleOptions

	mu      sync.Mutex
	handles map[handleKey]*Handle
	loads   int
}

func NewRegistry(embedder port.Embedder, opts HandleOptions) *Registry {
	return &Registry{
		embedder: embedder,
		opts:     opts,
		handles:  make(map[handleKey]*Handle),
	}
}

// Handle returns the memoized handle for indexDir, loading it on first use.
// Failed loads are not memoized.
func (r *Registry) Handle(ctx context.Context, indexDir string) (*Handle, error) {
	abs, err := filepath.Abs(indexDir)
	if err != nil {
		return nil, fmt.Errorf("invalid index dir: %w", err)
	}
	key := handleKey{indexDir: abs, model: r.embedder.ModelName()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[key]; ok {
		return h, nil
	}

	h, err := OpenHandle(ctx, abs, r.embedder, r.opts)
	if err != nil {
		return nil, err
	}
	r.loads++
	r.handles[key] = h
	return h, nil
}

// Loads reports how many times an index has been loaded from disk.
func (r *Registry) Loads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

// Retriever returns a port.Retriever bound to indexDir. The index is loaded
// lazily on the first non-blank query.
func (r *Registry) Retriever(indexDir string) port.Retriever {
	return &registryRetriever{registry: r, indexDir: indexDir}
}

type registryRetriever struct {
	registry *Registry
	indexDir string
}

func (rr *registryRetriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RetrievalResult{}, nil
	}
	h, err := rr.registry.Handle(ctx, rr.indexDir)
	if err != nil {
		return nil, err
	}
	return h.Retrieve(ctx, query, topK)
}
