package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Abraxas-365/careerqr/career/analysis/analysisapi"
	"github.com/Abraxas-365/careerqr/career/analysis/analysisinfra"
	"github.com/Abraxas-365/careerqr/career/analysis/analysissrv"
	"github.com/Abraxas-365/careerqr/career/analysis/worker"
	"github.com/Abraxas-365/careerqr/career/scan/scanapi"
	"github.com/Abraxas-365/careerqr/career/scan/scansrv"
	"github.com/Abraxas-365/careerqr/internal/ai/advisor"
	"github.com/Abraxas-365/careerqr/internal/ai/docintel"
	"github.com/Abraxas-365/careerqr/internal/ai/embeddings"
	"github.com/Abraxas-365/careerqr/internal/ai/speech"
	"github.com/Abraxas-365/careerqr/internal/ai/visionparser"
	"github.com/Abraxas-365/careerqr/internal/qr"
	"github.com/Abraxas-365/careerqr/pkg/auth"
	"github.com/Abraxas-365/careerqr/pkg/fsx"
	"github.com/Abraxas-365/careerqr/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/careerqr/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/careerqr/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

const (
	analysisQueueName  = "careerqr:analysis:jobs"
	defaultWorkerCount = 3
)

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Services
	AnalysisService *analysissrv.Service
	ScanService     *scansrv.Service
	TokenService    *auth.TokenService

	// Workers
	AnalysisWorker *worker.AnalysisWorker

	// API Handlers
	AnalysisHandlers *analysisapi.AnalysisHandlers
	ScanHandlers     *scanapi.ScanHandlers

	// Middleware
	APIKeyMiddleware fiber.Handler
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. File Storage (S3 or local disk)
	if bucket := os.Getenv("AWS_BUCKET"); bucket != "" {
		awsRegion := os.Getenv("AWS_REGION")
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
		if err != nil {
			logx.Fatalf("unable to load SDK config, %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, bucket, "uploads")
	} else {
		storageDir := os.Getenv("STORAGE_DIR")
		if storageDir == "" {
			storageDir = "./data"
		}
		logx.Warnf("AWS_BUCKET not set, storing files on local disk at %s", storageDir)
		c.FileSystem = fsxlocal.NewLocalFileSystem(storageDir)
	}

	// 4. File Token Signing
	tokenSecret := os.Getenv("FILE_TOKEN_SECRET")
	if tokenSecret == "" {
		logx.Warn("FILE_TOKEN_SECRET is not set, using default (unsafe for production)")
		tokenSecret = "super-secret-key-please-change-me-in-production"
	}
	c.TokenService = auth.NewTokenService(tokenSecret, "careerqr")
}

func (c *Container) initServices() {
	// --- Repositories & Queue ---
	analysisRepo := analysisinfra.NewPostgresAnalysisRepository(c.DB)
	jobRepo := analysisinfra.NewPostgresJobRepository(c.DB)
	jobQueue := analysisinfra.NewRedisQueue(c.Redis, analysisQueueName)

	// --- AI Clients ---
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		logx.Fatal("OPENAI_API_KEY is required")
	}

	adviceModel := os.Getenv("OPENAI_ADVICE_MODEL")
	adviceGen := advisor.NewAdvisor(openaiKey, adviceModel)
	pageParser := visionparser.NewVisionParser(openaiKey)
	synthesizer := speech.NewSynthesizer(openaiKey, os.Getenv("OPENAI_TTS_MODEL"))
	embedder := embeddings.NewEmbeddingsGenerator(openaiKey)

	// Document AI is optional; without it every extraction uses the
	// vision parser fallback.
	var extractor analysissrv.DocumentExtractor
	if cfg, err := docintel.ConfigFromEnv(); err != nil {
		logx.Warnf("Document analysis disabled: %v", err)
	} else {
		ext, err := docintel.NewExtractor(context.Background(), cfg)
		if err != nil {
			logx.Warnf("Document analysis disabled: %v", err)
		} else {
			extractor = ext
		}
	}

	// --- Domain Services ---
	c.AnalysisService = analysissrv.NewService(
		analysisRepo,
		jobRepo,
		jobQueue,
		extractor,
		pageParser,
		adviceGen,
		synthesizer,
		embedder,
		c.FileSystem,
		c.TokenService,
		adviceGen.Model(),
	)

	c.ScanService = scansrv.NewService(
		newQRDecoder(),
		c.AnalysisService,
		c.FileSystem,
	)

	// --- Workers ---
	workerCount := defaultWorkerCount
	if raw := os.Getenv("WORKER_COUNT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			workerCount = n
		}
	}
	c.AnalysisWorker = worker.NewAnalysisWorker(c.AnalysisService, jobQueue, workerCount)

	// --- Handlers ---
	c.AnalysisHandlers = analysisapi.NewAnalysisHandlers(c.AnalysisService, c.FileSystem)
	c.ScanHandlers = scanapi.NewScanHandlers(c.ScanService)

	// --- Middleware ---
	var keyHashes []string
	if raw := os.Getenv("API_KEY_HASHES"); raw != "" {
		for _, hash := range strings.Split(raw, ",") {
			if hash = strings.TrimSpace(hash); hash != "" {
				keyHashes = append(keyHashes, hash)
			}
		}
	}
	if len(keyHashes) == 0 {
		logx.Warn("API_KEY_HASHES is not set, API endpoints are unauthenticated")
	}
	c.APIKeyMiddleware = auth.APIKeyMiddleware(keyHashes)
}

// qrDecoder adapts the enhancement cascade engine to the scan decoder port
type qrDecoder struct {
	engine *qr.Engine
}

func newQRDecoder() *qrDecoder {
	return &qrDecoder{engine: qr.NewEngine()}
}

func (d *qrDecoder) DecodeImage(data []byte) (string, string, error) {
	result, err := d.engine.DecodeBytes(data)
	if err != nil {
		return "", "", err
	}
	return result.Text, result.Pass, nil
}
