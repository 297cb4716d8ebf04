package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"taskDesk/internal/app"
	"taskDesk/internal/config"
	"taskDesk/internal/middleware"
	"taskDesk/internal/models/user"
)

func main() {
	configPath := flag.String("config", os.Getenv("TASKDESK_CONFIG"), "путь к config.yml")
	issueToken := flag.String("issue-token", "", "выпустить JWT для user_id:role и выйти")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("конфиг: %v", err)
	}

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		log.Fatalf("инициализация: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("остановка с ошибкой: %v", err)
	}
}

// printToken нужен для локальной разработки без внешнего провайдера входа
func printToken(cfg *config.Config, spec string) error {
	userID, role, ok := strings.Cut(spec, ":")
	if !ok || userID == "" || !user.Role(role).Valid() {
		return fmt.Errorf("ожидается user_id:role, получено %q", spec)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret не задан")
	}

	tok, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), userID, user.Role(role), 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
