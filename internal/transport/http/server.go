package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"studyrag/internal/ai"
	appsvc "studyrag/internal/app"
	"studyrag/internal/bootstrap"
	"studyrag/internal/cache"
	"studyrag/internal/platform/rabbitmq"
	"studyrag/internal/rag"
	"studyrag/internal/repository"
	"studyrag/internal/transport/http/handler"
	"studyrag/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login", "web/login.html")
	router.StaticFile("/register", "web/register.html")
	router.StaticFile("/chat", "web/chat.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	workspaceRepo := repository.NewWorkspaceRepository(app.MySQL)
	uploadRepo := repository.NewUploadRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	chunker, err := rag.NewChunker()
	if err != nil {
		return nil, fmt.Errorf("init chunker failed: %w", err)
	}

	llmClient := ai.NewOllamaClient()
	embedder := rag.NewEmbedder(appsvc.NewEmbeddingClient(llmClient, ai.EmbeddingConfig{
		BaseURL: app.Config.LLM.BaseURL,
		Model:   app.Config.LLM.EmbeddingModel,
	}))
	retriever := rag.NewRetriever(embedder, rag.RetrievalPolicy{
		TopK:       app.Config.RAG.TopK,
		AllResults: app.Config.RAG.AllResults,
	})

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)

	workspaceService := appsvc.NewWorkspaceService(workspaceRepo, uploadRepo, messageRepo, historyCache)
	ingestService := appsvc.NewIngestService(workspaceRepo, uploadRepo, chunker, embedder, app.Config.RAG)
	chatService := appsvc.NewChatService(
		workspaceRepo,
		messageRepo,
		publisher,
		historyCache,
		retriever,
		llmClient,
		ai.ChatConfig{
			BaseURL:     app.Config.LLM.BaseURL,
			Model:       app.Config.LLM.ChatModel,
			Temperature: app.Config.LLM.Temperature,
		},
		app.Config.LLM.MaxContextMessage,
	)

	authHandler := handler.NewAuthHandler(authService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	uploadHandler := handler.NewUploadHandler(ingestService)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	wsGroup := v1.Group("/workspaces")
	wsGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	wsGroup.POST("", workspaceHandler.Create)
	wsGroup.GET("", workspaceHandler.List)
	wsGroup.GET("/:id", workspaceHandler.Get)
	wsGroup.DELETE("/:id", workspaceHandler.Delete)
	wsGroup.POST("/:id/uploads", uploadHandler.Upload)
	wsGroup.GET("/:id/uploads", uploadHandler.List)
	wsGroup.POST("/:id/actions/:action", chatHandler.QuickAction)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.POST("/messages/stream", chatHandler.StreamMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)

	return router, nil
}
