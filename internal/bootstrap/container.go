package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"ai-docqa-be/internal/config"
	"ai-docqa-be/internal/controller"
	"ai-docqa-be/internal/handler"
	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/internal/repository/implementation"
	"ai-docqa-be/internal/repository/memory"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/internal/repository/vectorindex"
	"ai-docqa-be/internal/service"
	"ai-docqa-be/internal/websocket"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/llm/factory"
	"ai-docqa-be/pkg/rag/retrieve"
	"ai-docqa-be/pkg/rag/workflow"
	"ai-docqa-be/pkg/rerank"

	pktNats "ai-docqa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	IngestController controller.IIngestController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	// Shared facades
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	wsLogger := logger.NewIsolatedLogger("ws." + cfg.App.LogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	sessionRepo := memory.NewSessionRepository()

	hub := websocket.NewHub(wsLogger)
	go hub.Run()

	// 5. Workflow
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	index := vectorindex.NewAdapter(chunkRepo)
	scorer := rerank.NewLexicalScorer(cfg.Ai.RerankWorkers)

	llmLogger := initLLMLogger()

	retriever := retrieve.NewRetriever(
		embeddingProvider,
		index,
		scorer,
		retrieve.Config{TopK: cfg.Ai.RetrieveTopK, TopN: cfg.Ai.RetrieveTopN},
		llmLogger,
	)

	orchestrator := workflow.NewOrchestrator(
		llmProvider,
		retriever,
		workflow.Config{
			MaxRetries:       cfg.Ai.MaxRetries,
			GradeParallelism: cfg.Ai.GradeParallelism,
		},
		llmLogger,
		hub,
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.ReembedTopic, pubSub)
	ingestionService := service.NewIngestionService(
		uowFactory,
		embeddingProvider,
		publisherService,
		natsPub,
		cfg.Ingest,
		sysLogger,
	)
	chatService := service.NewChatService(orchestrator, sessionRepo, natsPub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.ReembedTopic, uowFactory, embeddingProvider)

	// 7. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		IngestController: controller.NewIngestController(ingestionService),
		ConsumerService:  consumerService,
		ProgressHandler:  handler.NewProgressHandler(hub, wsLogger),
		WebSocketHub:     hub,
		Logger:           sysLogger,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
