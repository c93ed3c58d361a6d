package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api"
	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	apimiddleware "github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/adapter/api/router"
	"github.com/Elmalamb/vdm/internal/adapter/repository"
	"github.com/Elmalamb/vdm/internal/domain/inbox"
	"github.com/Elmalamb/vdm/internal/domain/service"
	"github.com/Elmalamb/vdm/internal/infrastructure/cache"
	"github.com/Elmalamb/vdm/internal/infrastructure/classifier"
	"github.com/Elmalamb/vdm/internal/infrastructure/firebase"
	"github.com/Elmalamb/vdm/internal/infrastructure/notify"
	"github.com/Elmalamb/vdm/internal/infrastructure/ratelimit"
	"github.com/Elmalamb/vdm/internal/infrastructure/storage"
	"github.com/Elmalamb/vdm/internal/infrastructure/websocket"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/config"
	"github.com/Elmalamb/vdm/pkg/logger"
)

func main() {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	policy, err := inbox.ParseAssignmentPolicy(cfg.AssignmentPolicy)
	if err != nil {
		logger.Fatal("Invalid ASSIGNMENT_POLICY: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := credentialsOption(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject, StorageBucket: cfg.StorageBucket}, opt)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		logger.Fatal("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
	if err != nil {
		logger.Fatal("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	adRepo := repository.NewFirestoreAdRepository(firestoreClient)
	mediaRepo := repository.NewFirestoreMediaRepository(firestoreClient)
	convRepo := repository.NewFirestoreConversationRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	var roleCache service.RoleCache = cache.NoopRoleCache{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisRoleCache(cfg.RedisURL, cfg.RoleCacheTTL)
		if err != nil {
			logger.Warn("Redis unavailable, role cache disabled: %v", err)
		} else {
			defer redisCache.Close()
			roleCache = redisCache
		}
	}

	var sellerNotifier service.SellerNotifier = notify.LogNotifier{}
	if cfg.NatsURL != "" {
		natsNotifier, err := notify.NewNatsNotifier(cfg.NatsURL, cfg.NatsSellerSubject)
		if err != nil {
			logger.Warn("NATS unavailable, seller notifications will only be logged: %v", err)
		} else {
			defer natsNotifier.Close()
			sellerNotifier = natsNotifier
		}
	}

	spamClassifier, err := classifier.New(cfg.LLMBaseURL, cfg.LLMApiKey, cfg.LLMModel)
	if err != nil {
		logger.Fatal("Failed to initialize message classifier: %v", err)
	}

	sendLimiter := ratelimit.NewRateLimiter(cfg.SendRatePerMinute)
	sendLimiter.StartCleanupRoutine(ctx)
	relayLimiter := ratelimit.NewRateLimiter(cfg.RelayRatePerMinute)
	relayLimiter.StartCleanupRoutine(ctx)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, roleCache)
	adUseCase := usecase.NewAdUseCase(adRepo, mediaRepo, storageClient, cfg.MaxMediaBytes)
	threadUseCase := usecase.NewThreadUseCase(convRepo, adRepo, policy, sendLimiter)
	relayUseCase := usecase.NewRelayUseCase(convRepo, spamClassifier, sellerNotifier)

	handler.Setup(authUseCase, adUseCase, threadUseCase, relayUseCase)
	handler.SetupHealthHandler(firebaseAuthClient)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxMediaBytes)))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, threadUseCase)

	router.Setup(e, authMiddleware, relayLimiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s (assignment policy: %s)", cfg.ServerPort, policy)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}

// credentialsOption prefers inline service account JSON (production) over
// the key file used in local development.
func credentialsOption(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	}

	if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
		logger.Fatal("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
	}
	logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
	return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
}

// bodyLimit leaves room for both media files of a submission.
func bodyLimit(maxMediaBytes int64) string {
	return strconv.FormatInt(2*maxMediaBytes/(1024*1024)+1, 10) + "M"
}
