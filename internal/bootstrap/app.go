package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/documents"
	"docsearch-backend/internal/embedding"
	embeddingopenai "docsearch-backend/internal/embedding/openai"
	"docsearch-backend/internal/llm"
	llmopenai "docsearch-backend/internal/llm/openai"
	"docsearch-backend/internal/shared/config"
	"docsearch-backend/internal/shared/metrics"
	"docsearch-backend/internal/shared/server/middleware"
	"docsearch-backend/internal/shared/server/respond"
	"docsearch-backend/internal/shared/storage/db"
	"docsearch-backend/internal/shared/storage/object"
	localstore "docsearch-backend/internal/shared/storage/object/local"
	s3store "docsearch-backend/internal/shared/storage/object/s3"
	"docsearch-backend/internal/vectorindex"
	memoryindex "docsearch-backend/internal/vectorindex/memory"
	"docsearch-backend/internal/vectorindex/pinecone"
)

// App holds shared dependencies, constructed once at startup and passed into
// handlers instead of living as package globals.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Embedder         embedding.Embedder
	Index            vectorindex.Index
	LLM              llm.Completer
	DocumentsRepo    documents.DocumentsRepo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Embedder: buildEmbedder(cfg),
		Index:    buildIndex(cfg),
		LLM:      buildCompleter(cfg),
	}

	if sqlDB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
	}

	app.DocumentsService = &documents.Service{
		Repo:     app.DocumentsRepo,
		Store:    app.Store,
		Embedder: app.Embedder,
		Index:    app.Index,
		LLM:      app.LLM,
	}
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.Router = buildRouter(cfg, app.DocumentsHandler)

	return app, nil
}

func buildRouter(cfg config.Config, docHandler *documents.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())
	docHandler.RegisterRoutes(r)

	return r
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, errConfig("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildEmbedder(cfg config.Config) embedding.Embedder {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Printf("bootstrap: OPENAI_API_KEY empty; embeddings disabled")
		return embedding.Placeholder{}
	}
	client, err := embeddingopenai.NewClient(embeddingopenai.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.EmbeddingModel,
	})
	if err != nil {
		log.Printf("bootstrap: embeddings client unavailable: %v", err)
		return embedding.Placeholder{}
	}
	return client
}

func buildIndex(cfg config.Config) vectorindex.Index {
	if strings.TrimSpace(cfg.PineconeIndexURL) == "" || strings.TrimSpace(cfg.PineconeAPIKey) == "" {
		log.Printf("bootstrap: pinecone not configured; using in-memory vector index")
		return memoryindex.New()
	}
	client, err := pinecone.NewClient(pinecone.Config{
		IndexURL: cfg.PineconeIndexURL,
		APIKey:   cfg.PineconeAPIKey,
	})
	if err != nil {
		log.Printf("bootstrap: pinecone client unavailable; using in-memory vector index: %v", err)
		return memoryindex.New()
	}
	return client
}

func buildCompleter(cfg config.Config) llm.Completer {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Printf("bootstrap: OPENAI_API_KEY empty; completions disabled")
		return llm.Placeholder{}
	}
	client, err := llmopenai.NewClient(llmopenai.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.CompletionModel,
	})
	if err != nil {
		log.Printf("bootstrap: completions client unavailable: %v", err)
		return llm.Placeholder{}
	}
	return client
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

type errConfig string

func (e errConfig) Error() string { return string(e) }
