package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"bot-restock/config"
	"bot-restock/internal/activitylog"
	"bot-restock/internal/api"
	"bot-restock/internal/database"
	"bot-restock/internal/monitor"
	"bot-restock/internal/notifier"
	"bot-restock/internal/scraper"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializar banco de dados
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Erro ao inicializar banco de dados: %v", err)
	}
	defer db.Close()

	args := os.Args[1:]
	if len(args) > 0 && args[0] != "serve" {
		runCommand(cfg, db, args)
		return
	}

	runServer(cfg, db)
}

func runServer(cfg *config.Config, db *database.DB) {
	if err := cfg.ValidateNotifier(); err != nil {
		log.Fatalf("Erro na configuração de notificação: %v", err)
	}

	// Inicializar canal de notificação
	notif, err := buildNotifier(cfg)
	if err != nil {
		log.Fatalf("Erro ao inicializar canal de notificação: %v", err)
	}

	activity := activitylog.New(cfg.ActivityLogSize)

	// Criar gerenciador de monitoramento
	mon := monitor.New(db, scraper.New(cfg.FetchTimeout), notif, activity, monitor.Options{
		Interval:      cfg.CheckInterval,
		MaxRetries:    cfg.MaxRetries,
		MaxConcurrent: cfg.MaxConcurrentChecks,
	})

	// Iniciar monitoramento em background
	if err := mon.Start(); err != nil {
		log.Fatalf("Erro ao iniciar monitoramento: %v", err)
	}

	// Servir a API administrativa
	server := api.NewServer(db, mon, activity, notif, cfg.SMTPUsername)
	go func() {
		log.Printf("API administrativa disponível em %s", cfg.HTTPAddr)
		if err := server.Start(cfg.HTTPAddr); err != nil {
			log.Fatalf("Erro no servidor HTTP: %v", err)
		}
	}()

	// Aguardar sinal de interrupção
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Encerrando bot...")
	if err := mon.Stop(); err != nil {
		log.Printf("Erro ao parar monitoramento: %v", err)
	}
}

func buildNotifier(cfg *config.Config) (notifier.Notifier, error) {
	if cfg.NotifyChannel == config.ChannelTelegram {
		return notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	}
	return notifier.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
}
