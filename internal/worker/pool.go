package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/services"
)

// Pool consumes embedding index jobs from Redis. Uploads enqueue a job per
// file; workers chunk the stored markdown, embed it, and persist the
// vectors. Indexing is best effort: quiz and flashcard generation never
// wait on it.
type Pool struct {
	redis       *redis.Client
	embedding   *services.EmbeddingService
	storage     *services.LocalStorage
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	embedding *services.EmbeddingService,
	storage *services.LocalStorage,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		embedding:   embedding,
		storage:     storage,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d embedding worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, handlers.IndexQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job handlers.IndexJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse index job: %v", id, err)
			continue
		}

		fileID, err := uuid.Parse(job.FileID)
		if err != nil {
			log.Printf("Worker %d: invalid file ID in index job: %q", id, job.FileID)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("index_lock:%s", fileID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this file
		}

		if err := p.process(ctx, fileID); err != nil {
			log.Printf("Worker %d: failed to index file %s: %v", id, fileID, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) process(ctx context.Context, fileID uuid.UUID) error {
	markdown, err := p.storage.ReadMarkdown(fileID.String())
	if err != nil {
		// The file may have been deleted between enqueue and pickup.
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	count, err := p.embedding.IndexMarkdown(ctx, fileID, markdown)
	if err != nil {
		return err
	}

	log.Printf("Indexed file %s: %d chunks", fileID, count)
	return nil
}
