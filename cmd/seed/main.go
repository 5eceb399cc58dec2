package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"jobboard/internal/config"
	"jobboard/internal/db"
	"jobboard/internal/handler"
	"jobboard/internal/logger"
	"jobboard/internal/model"
	"jobboard/internal/repository"
	"jobboard/internal/router"
	"jobboard/internal/service"
)

// adminInput reads the SEED_ADMIN_* variables and applies the same validation as
// the user creation routes.
func adminInput(getenv func(string) string) (service.CreateUserInput, error) {
	req := handler.CreateUserRequest{
		Email:       getenv("SEED_ADMIN_EMAIL"),
		Password:    getenv("SEED_ADMIN_PASSWORD"),
		Name:        getenv("SEED_ADMIN_NAME"),
		Role:        model.RoleAdmin,
		CompanyName: getenv("SEED_ADMIN_COMPANY"),
	}
	if err := router.NewValidator().Validate(&req); err != nil {
		return service.CreateUserInput{}, fmt.Errorf("invalid seed admin: %w", err)
	}
	return service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		CompanyName: req.CompanyName,
	}, nil
}

// seed creates the bootstrap administrator unless a user with that email exists.
func seed(ctx context.Context, store repository.Store, users service.UserService, input service.CreateUserInput) (*model.User, bool, error) {
	existing, err := store.Users().FindByEmail(ctx, input.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	input.Role = model.RoleAdmin
	created, err := users.CreateUserWithRole(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	input, err := adminInput(os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must form a valid user")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	store := repository.NewStore(gormDB)
	users := service.NewUserService(store, service.NewCompanyService(store), nil)

	ctx := log.WithContext(context.Background())
	admin, created, err := seed(ctx, store, users, input)
	if err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	if created {
		log.Info().Str("user_id", admin.ID.String()).Str("email", admin.Email).Msg("admin created")
	} else {
		log.Info().Str("user_id", admin.ID.String()).Msg("admin already exists, nothing to do")
	}
}
