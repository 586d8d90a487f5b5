package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"asha/internal/auth"
	"asha/internal/cache"
	"asha/internal/config"
	"asha/internal/db"
	apperrors "asha/internal/errors"
	"asha/internal/logging"
	"asha/internal/model"
	"asha/internal/repository"
	"asha/internal/service"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// seedResult counts what a run did.
type seedResult struct {
	Created  int
	Existing int
	Skipped  int
}

func main() {
	source := flag.String("from", "data/seed_users.json", "path or http(s) URL of a JSON array of {name,email,password}")
	flag.Parse()

	cfg := config.Load()
	logging.Init(cfg.Environment)
	slog.Info("starting user seed", slog.String("from", *source))

	var (
		repo repository.UserRepository
		err  error
	)
	if cfg.MySQLDSN != "" {
		gormDB, dbErr := db.NewMySQL(cfg.MySQLDSN)
		if dbErr != nil {
			slog.Error("connect database", slog.Any("error", dbErr))
			os.Exit(1)
		}
		repo = repository.NewGormUserRepository(gormDB)
	} else {
		repo, err = repository.NewFileUserRepository(cfg.UsersFile)
		if err != nil {
			slog.Error("open user file", slog.Any("error", err))
			os.Exit(1)
		}
	}

	users, err := loadSeedUsers(*source)
	if err != nil {
		slog.Error("load seed users", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("loaded seed users", slog.Int("count", len(users)))

	cacheClient := cache.New("", "", 0)
	authService := service.NewAuthService(repo, auth.NewJWTService(cfg.JWTSecret), auth.NewTokenStore(cacheClient))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := seedUsers(ctx, repo, authService, users)
	if err != nil {
		slog.Error("seed users", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("seed completed",
		slog.Int("created", res.Created),
		slog.Int("existing", res.Existing),
		slog.Int("skipped", res.Skipped),
	)
}

// loadSeedUsers reads the seed list from a local file or an http(s) URL.
func loadSeedUsers(source string) ([]SeedUser, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()
	return decodeSeedUsers(r)
}

func decodeSeedUsers(r io.Reader) ([]SeedUser, error) {
	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("parse seed users: %w", err)
	}
	return users, nil
}

// seedUsers registers each user through the auth service. Already registered
// emails are counted, incomplete entries skipped, and the run stops cleanly
// once the user ceiling is reached.
func seedUsers(ctx context.Context, repo repository.UserRepository, authService service.AuthService, users []SeedUser) (seedResult, error) {
	var res seedResult

	registered, err := repo.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count users: %w", err)
	}
	slog.Info("registered users before seed", slog.Int("count", registered), slog.Int("max", model.MaxUsers))
	if registered >= model.MaxUsers {
		slog.Warn("user limit already reached, nothing to seed")
		return res, nil
	}

	for _, u := range users {
		if u.Email == "" || u.Password == "" {
			slog.Warn("skipping incomplete seed user", slog.String("email", u.Email))
			res.Skipped++
			continue
		}
		_, err := authService.CreateUser(ctx, u.Name, u.Email, u.Password)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, apperrors.ErrEmailRegistered):
			res.Existing++
		case errors.Is(err, apperrors.ErrUserLimitReached):
			slog.Warn("user limit reached, stopping seed", slog.String("email", u.Email))
			return res, nil
		default:
			return res, fmt.Errorf("create %s: %w", u.Email, err)
		}
	}
	return res, nil
}
