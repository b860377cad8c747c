package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/repository"
)

// Embedder is the slice of the model client the embedding service needs.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type EmbeddingService struct {
	embedder   Embedder
	repo       *repository.EmbeddingRepo
	chunkSize  int
	overlap    int
	llmTimeout time.Duration
}

func NewEmbeddingService(embedder Embedder, repo *repository.EmbeddingRepo, chunkSize, overlap int, llmTimeout time.Duration) *EmbeddingService {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	if llmTimeout <= 0 {
		llmTimeout = defaultLLMTimeout
	}
	return &EmbeddingService{
		embedder:   embedder,
		repo:       repo,
		chunkSize:  chunkSize,
		overlap:    overlap,
		llmTimeout: llmTimeout,
	}
}

// embed runs one embedding call under the configured deadline.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &UpstreamError{Message: "Embedding model did not respond within the time limit", Err: err}
		}
		return nil, err
	}
	return vectors, nil
}

// ChunkText splits text into overlapping windows. Sizes are in runes, not
// bytes, so multi-byte scripts chunk evenly.
func ChunkText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{string(runes)}
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)/step)+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// IndexMarkdown chunks the markdown rendering of a file, embeds every chunk,
// and replaces the stored vectors.
func (s *EmbeddingService) IndexMarkdown(ctx context.Context, fileID uuid.UUID, markdown string) (int, error) {
	chunks := ChunkText(markdown, s.chunkSize, s.overlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return 0, err
	}

	embeddings := make([]models.Embedding, len(chunks))
	for i := range chunks {
		embeddings[i] = models.Embedding{
			ChunkIndex: i,
			ChunkText:  chunks[i],
			Vector:     vectors[i],
		}
	}

	if err := s.repo.CreateBatch(ctx, fileID, embeddings); err != nil {
		return 0, fmt.Errorf("failed to store embeddings: %w", err)
	}
	return len(embeddings), nil
}

// Query embeds the query text and returns the topK most similar chunks of
// the file, best first.
func (s *EmbeddingService) Query(ctx context.Context, fileID uuid.UUID, query string, topK int) ([]models.Embedding, error) {
	if topK <= 0 {
		topK = 5
	}

	vectors, err := s.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	queryVec := vectors[0]

	stored, err := s.repo.ListByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		emb   models.Embedding
		score float64
	}
	results := make([]scored, 0, len(stored))
	for _, e := range stored {
		results = append(results, scored{emb: e, score: cosineSimilarity(queryVec, e.Vector)})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })

	if topK > len(results) {
		topK = len(results)
	}
	top := make([]models.Embedding, topK)
	for i := 0; i < topK; i++ {
		top[i] = results[i].emb
	}
	return top, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
