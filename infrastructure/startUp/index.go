package startup

import (
	"context"
	"errors"
	"time"

	"rollcall.io/application/controller"
	"rollcall.io/application/repository"
	"rollcall.io/application/services/catalog"
	"rollcall.io/application/services/ledger"
	attendance_usecases "rollcall.io/application/usecases/attendance"
	auth_usecases "rollcall.io/application/usecases/auth"
	identity_usecases "rollcall.io/application/usecases/identity"
	liveness_usecases "rollcall.io/application/usecases/liveness"
	"rollcall.io/infrastructure/auth"
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/cryptography"
	"rollcall.io/infrastructure/database"
	redisConnection "rollcall.io/infrastructure/database/connection/cache"
	"rollcall.io/infrastructure/database/repository/cache"
	"rollcall.io/infrastructure/env"
	"rollcall.io/infrastructure/logger"
	messagequeue "rollcall.io/infrastructure/message_queue"
	queue_tasks "rollcall.io/infrastructure/message_queue/tasks"
)

// Version is reported by /healthz.
var Version = "dev"

// Services is everything the http layer needs once start up is done.
type Services struct {
	Config     env.Config
	Controller *controller.Controller
	Tokens     *auth.TokenIssuer
}

// Used to start services such as loggers, databases, queues, etc.
func StartServices(cfg env.Config) (*Services, error) {
	logger.InitializeLogger()
	if cfg.JWTSigningKey == "" {
		return nil, errors.New("JWT_SIGNING_KEY is not set")
	}
	if err := database.SetUpDatabase(cfg); err != nil {
		return nil, err
	}
	conn, err := redisConnection.GetInstance()
	if err != nil {
		return nil, err
	}
	redisRepo := &cache.RedisRepository{Client: conn.Client}

	faces := biometric.InitialiseBiometricService(cfg)
	messagequeue.StartQueue(cfg, redisRepo)

	identities := catalog.New(
		repository.IdentityStore{Repo: repository.IdentityRepo()},
		repository.CatalogVersion{Cache: redisRepo},
		cfg.EmbeddingDim,
		cfg.CatalogRefresh,
	)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := identities.Reload(ctx); err != nil {
		// the catalog retries on the next request
		logger.Warning("could not preload identity catalog", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}

	attendance := &attendance_usecases.AttendanceUseCase{
		Faces:             faces,
		Catalog:           identities,
		Ledger:            ledger.New(repository.AttendanceRepo()),
		Events:            messagequeue.AttendanceEvents{Broker: messagequeue.TaskQueue},
		Location:          cfg.Location(),
		RequireSpoofCheck: cfg.RequireSpoofCheck,
	}
	tokens := &auth.TokenIssuer{
		SigningKey: []byte(cfg.JWTSigningKey),
		Issuer:     cfg.JWTIssuer,
		TTL:        cfg.TokenTTL,
	}

	return &Services{
		Config: cfg,
		Tokens: tokens,
		Controller: &controller.Controller{
			Identity: &identity_usecases.IdentityUseCase{
				Faces:             faces,
				Catalog:           identities,
				RequireSpoofCheck: cfg.RequireSpoofCheck,
			},
			Attendance: attendance,
			Liveness: &liveness_usecases.LivenessUseCase{
				Faces:      faces,
				Challenges: repository.ChallengeStore{Cache: redisRepo},
				Attendance: attendance,
				TTL:        cfg.ChallengeTTL,
			},
			Operators: &auth_usecases.OperatorUseCase{
				Store:  repository.OperatorStore{Repo: repository.OperatorRepo()},
				Hasher: cryptography.CryptoHahser,
				Tokens: tokens,
			},
			Counts:  &queue_tasks.AttendanceCounter{Cache: redisRepo},
			Health:  faces,
			Version: Version,
		},
	}, nil
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	messagequeue.StopQueue()
	biometric.CleanUp()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	database.CleanUp(ctx)
	logger.Flush()
}
