// Command superuser creates an administrator account or grants an existing
// account administrator rights.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/internal/config"
	"github.com/novy-stil/service-atelier/internal/repository"
	"github.com/novy-stil/service-atelier/pkg/auth"
	"github.com/novy-stil/service-atelier/pkg/database"
	"github.com/novy-stil/service-atelier/pkg/logger"
)

func main() {
	email := flag.String("email", "", "administrator email")
	password := flag.String("password", "", "administrator password")
	force := flag.Bool("force-password", false, "reset the password of an existing account")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "atelier-superuser")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, time.Duration(cfg.JWTConfig.AccessTTL)*time.Minute)
	service := application.NewAuthService(repository.NewGormUserRepository(db), jwtManager, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := service.EnsureSuperuser(ctx, *email, *password, *force)
	if err != nil {
		log.Fatal("failed to ensure superuser", zap.Error(err))
	}

	fmt.Printf("superuser ready: id=%d email=%s\n", user.ID, user.Email)
}
