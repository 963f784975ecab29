package main

import (
	"context"
	"log"

	"blogcast-backend/internal/ai"
	"blogcast-backend/internal/config"
	"blogcast-backend/internal/logger"
	"blogcast-backend/internal/media"
	"blogcast-backend/internal/queue"
	"blogcast-backend/internal/store"
	"blogcast-backend/internal/transcribe"
	"blogcast-backend/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Open SQLite store
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	// Build the pipeline collaborators
	summarizer, err := ai.NewSummarizer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize summarizer:", err)
	}
	defer summarizer.Close()

	downloader := media.NewDownloader(cfg)
	transcriber := transcribe.NewClient(cfg)
	blogService := services.NewBlogService(st, downloader, transcriber, summarizer)

	// Redis options for Asynq
	redisOpt := config.AsynqRedisOpt(cfg)

	// Create Asynq server. Generation jobs run yt-dlp and ffmpeg, keep
	// concurrency modest.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("Task failed: %s, error: %v", task.Type(), err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(st, blogService)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskGenerateBlog, processor.ProcessGenerateBlog)

	log.Println("Starting Asynq worker...")
	log.Printf("   Concurrency: 4")
	log.Printf("   Redis: %s", redisOpt.Addr)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
