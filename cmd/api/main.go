package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"littlelemon/internal/config"
	"littlelemon/internal/handler"
	"littlelemon/internal/infra/cache"
	"littlelemon/internal/infra/db"
	infraRepo "littlelemon/internal/infra/repository"
	"littlelemon/internal/infra/token"
	"littlelemon/internal/logger"
	"littlelemon/internal/middleware"
	"littlelemon/internal/repository"
	"littlelemon/internal/server"
	"littlelemon/internal/usecase"
	auth "littlelemon/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	bcryptCost        = 12
	throttleKeyExpiry = 10 * time.Minute
)

func main() {
	// .envは任意（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.GoEnv)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	roleRepo := infraRepo.NewRoleGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	var menuRepo repository.MenuItemRepository = infraRepo.NewMenuItemGormRepository(gormDB)

	// REDIS_URLがあればメニューをキャッシュする
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		menuRepo = cache.NewMenuItemCache(menuRepo, client, cfg.MenuCacheTTL, log)
		log.Info("menu item cache enabled", zap.Duration("ttl", cfg.MenuCacheTTL))
	}

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(bcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	if cfg.AdminUsername != "" {
		created, err := auth.NewBootstrapAdminUsecase(userRepo, roleRepo, hasher, clock).Execute(ctx, auth.BootstrapAdminInput{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Email:    cfg.AdminEmail,
		})
		if err != nil {
			return err
		}
		log.Info("admin ready", zap.String("username", cfg.AdminUsername), zap.Bool("created", created))
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	logoutUC := auth.NewLogoutAllUsecase(userRepo)
	menuUC := usecase.NewMenuUsecase(menuRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, menuRepo)
	orderUC := usecase.NewOrderUsecase(txManager, menuRepo, roleRepo, clock)
	groupUC := usecase.NewGroupUsecase(userRepo, roleRepo)

	guards := handler.Guards{
		Tokens: issuer,
		Users:  userRepo,
		Roles:  roleRepo,
		Throttle: middleware.RateLimit(
			middleware.NewRateLimiter(cfg.ThrottleAnonPerMin, throttleKeyExpiry),
			middleware.NewRateLimiter(cfg.ThrottleUserPerMin, throttleKeyExpiry),
		),
	}

	//Handler生成
	e := server.New(log)
	server.RegisterRoutes(e, server.Handlers{
		Auth:     handler.NewAuthHandler(registerUC, loginUC, logoutUC),
		Category: handler.NewCategoryHandler(menuUC),
		MenuItem: handler.NewMenuItemHandler(menuUC),
		Cart:     handler.NewCartHandler(cartUC),
		Order:    handler.NewOrderHandler(orderUC),
		Group:    handler.NewGroupHandler(groupUC),
	}, guards)

	//Server起動
	return server.Start(ctx, e, cfg.Addr(), log)
}
