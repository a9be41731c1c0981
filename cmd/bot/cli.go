package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bot-restock/config"
	"bot-restock/internal/database"
	"bot-restock/internal/models"
	"bot-restock/internal/notifier"
	"bot-restock/internal/scraper"

	"github.com/fatih/color"
)

// runCommand executa os comandos administrativos de linha de comando
func runCommand(cfg *config.Config, db *database.DB, args []string) {
	switch args[0] {
	case "add":
		runAdd(db, args[1:])
	case "list":
		runList(db)
	case "test":
		runTest(cfg, db, args[1:])
	case "test-email":
		runTestEmail(cfg, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Uso: bot-restock [comando]")
	fmt.Println()
	fmt.Println("Comandos:")
	fmt.Println("  serve       Inicia o monitoramento e a API administrativa (padrão)")
	fmt.Println("  add         Adiciona um produto ao monitoramento")
	fmt.Println("  list        Lista todos os produtos")
	fmt.Println("  test        Testa a verificação de um produto")
	fmt.Println("  test-email  Envia uma notificação de teste pelo canal configurado")
}

func runAdd(db *database.DB, args []string) {
	flags := flag.NewFlagSet("add", flag.ExitOnError)
	name := flags.String("name", "", "Nome do produto")
	url := flags.String("url", "", "URL da página do produto")
	selector := flags.String("selector", "", "Seletor CSS do elemento de disponibilidade")
	expectedText := flags.String("expected-text", "", "Texto que indica que o produto está sem estoque")
	email := flags.String("email", "", "Destino da notificação")
	flags.Parse(args)

	product := models.Product{
		Name:         *name,
		URL:          *url,
		Selector:     *selector,
		ExpectedText: *expectedText,
		Email:        *email,
	}

	if err := db.AddProduct(&product); err != nil {
		color.Red("❌ Erro ao adicionar produto: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Produto %q adicionado ao monitoramento (ID: %s)", product.Name, product.ID)
}

func runList(db *database.DB) {
	products, err := db.ListProducts()
	if err != nil {
		color.Red("❌ Erro ao listar produtos: %v", err)
		os.Exit(1)
	}

	if len(products) == 0 {
		fmt.Println("Nenhum produto cadastrado.")
		return
	}

	fmt.Println("PRODUTOS MONITORADOS")
	fmt.Println("====================")

	for _, p := range products {
		fmt.Println()
		fmt.Println("ID:", p.ID)
		fmt.Println("Nome:", p.Name)
		fmt.Println("URL:", p.URL)
		if p.Active {
			color.Green("Status: ATIVO")
		} else {
			color.Red("Status: SUSPENSO")
		}
		fmt.Println("Notificar:", p.Email)
		fmt.Println("Criado em:", p.CreatedAt.Format("02/01/2006 15:04"))
		if p.LastChecked != nil {
			fmt.Println("Última verificação:", p.LastChecked.Format("02/01/2006 15:04"))
		} else {
			fmt.Println("Última verificação: Nunca")
		}
		if p.LastError != "" {
			color.Yellow("Último erro: %s", p.LastError)
		}
	}
}

func runTestEmail(cfg *config.Config, args []string) {
	flags := flag.NewFlagSet("test-email", flag.ExitOnError)
	to := flags.String("to", "", "Destino da notificação de teste (padrão: remetente configurado)")
	flags.Parse(args)

	if err := cfg.ValidateNotifier(); err != nil {
		color.Red("❌ Configuração de notificação incompleta: %v", err)
		os.Exit(1)
	}

	notif, err := buildNotifier(cfg)
	if err != nil {
		color.Red("❌ Erro ao inicializar canal de notificação: %v", err)
		os.Exit(1)
	}

	recipient := *to
	if recipient == "" {
		recipient = cfg.SMTPUsername
	}

	subject, body := notifier.RestockMessage(models.Product{
		Name: "Produto de Teste",
		URL:  "https://example.com",
	})
	if err := notif.Send(recipient, subject, body); err != nil {
		color.Red("❌ Falha ao enviar notificação de teste via %s: %v", notif.Channel(), err)
		os.Exit(1)
	}

	color.Green("✅ Notificação de teste enviada via %s", notif.Channel())
}

func runTest(cfg *config.Config, db *database.DB, args []string) {
	flags := flag.NewFlagSet("test", flag.ExitOnError)
	id := flags.String("id", "", "ID do produto a testar")
	flags.Parse(args)

	product, err := db.GetProductByID(*id)
	if err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}

	fmt.Printf("🧪 Testando produto: %s\n", product.Name)
	fmt.Printf("URL: %s\n", product.URL)
	fmt.Printf("Seletor: %s\n", product.Selector)
	fmt.Printf("Texto esperado: %s\n\n", product.ExpectedText)

	result := scraper.New(cfg.FetchTimeout).Check(context.Background(), *product)
	if err := db.RecordCheck(product.ID, result.CheckedAt, result.Detail); err != nil {
		color.Red("❌ Erro ao registrar verificação: %v", err)
	}

	switch result.Status {
	case models.StatusInStock:
		color.Green("✅ Produto DISPONÍVEL")
	case models.StatusOutOfStock:
		color.Yellow("❌ Produto SEM ESTOQUE")
	default:
		color.Red("⚠️ Falha na verificação: %s", result.Detail)
	}
}
