package bootstrap

import (
	"context"
	"log"

	"ai-supportdesk-be/internal/config"
	"ai-supportdesk-be/internal/controller"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/pkg/mailer"
	"ai-supportdesk-be/internal/repository/memory"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/internal/service"
	"ai-supportdesk-be/internal/websocket"
	"ai-supportdesk-be/pkg/agent"
	"ai-supportdesk-be/pkg/blob"
	"ai-supportdesk-be/pkg/embedding"
	"ai-supportdesk-be/pkg/extract"
	"ai-supportdesk-be/pkg/llm/factory"
	"ai-supportdesk-be/pkg/secrets"

	pktNats "ai-supportdesk-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WidgetController       controller.IWidgetController
	ConversationController controller.IConversationController
	KnowledgeController    controller.IKnowledgeController
	PluginController       controller.IPluginController
	WsController           *controller.WsController

	// Background services, run by main.go
	KnowledgeConsumer    service.IKnowledgeConsumerService
	EventNotifierService *service.EventNotifierService

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// In-process job bus for knowledge ingestion
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Model providers
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
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	readerModel := cfg.Ai.LLMModel
	if cfg.Ai.LLMProvider != "gemini" {
		readerModel = "gemini-2.0-flash"
	}
	documentReader := extract.NewGeminiDocumentReader(cfg.Keys.GoogleGemini, readerModel)
	extractor := extract.NewExtractor(llmProvider, documentReader)

	blobStore, err := blob.NewLocalStore(cfg.App.UploadDir, cfg.App.BaseURL+"/uploads")
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob store: %v", err)
	}

	vault, err := secrets.NewVault(cfg.Secrets.MasterKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize secrets vault: %v", err)
	}

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	var eventPublisher service.IEventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Session layer
	sessionCache := memory.NewSessionCache()
	sessionService := service.NewContactSessionService(
		uowFactory,
		sessionCache,
		sysLogger,
		cfg.Session.Duration,
		cfg.Session.RefreshThreshold,
	)

	// Conversation layer
	transcript := service.NewThreadTranscript(uowFactory)
	conversationService := service.NewConversationService(
		uowFactory,
		sessionService,
		eventPublisher,
		wsHub,
		emailService,
		sysLogger,
		cfg.SMTP.AlertsInbox,
	)

	// Knowledge layer
	ingestPublisher := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	knowledgeService := service.NewKnowledgeService(
		uowFactory,
		blobStore,
		embeddingProvider,
		ingestPublisher,
		sysLogger,
	)
	knowledgeConsumer := service.NewKnowledgeConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		uowFactory,
		blobStore,
		extractor,
		embeddingProvider,
		eventPublisher,
		sysLogger,
	)

	// Agent loop
	dispatcher := agent.NewDispatcher(
		llmProvider,
		transcript,
		conversationService,
		knowledgeService,
		sysLogger,
		cfg.Ai.MaxToolSteps,
	)

	messageService := service.NewMessageService(
		uowFactory,
		sessionService,
		transcript,
		dispatcher,
		wsHub,
		sysLogger,
		cfg.Messages.MaxPagesPerCall,
	)

	pluginService := service.NewPluginService(uowFactory, vault, sysLogger)

	var eventNotifier *service.EventNotifierService
	if natsSub != nil {
		eventNotifier = service.NewEventNotifierService(natsSub, wsHub, wsLogger)
	}

	return &Container{
		WidgetController:       controller.NewWidgetController(sessionService, conversationService, messageService),
		ConversationController: controller.NewConversationController(conversationService, messageService),
		KnowledgeController:    controller.NewKnowledgeController(knowledgeService),
		PluginController:       controller.NewPluginController(pluginService),
		WsController:           controller.NewWsController(wsHub, sessionService, wsLogger),

		KnowledgeConsumer:    knowledgeConsumer,
		EventNotifierService: eventNotifier,

		WebSocketHub: wsHub,
	}
}
