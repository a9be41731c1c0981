package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bot-restock/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("erro ao abrir banco de teste: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func validProduct() models.Product {
	return models.Product{
		Name:         "Console XYZ",
		URL:          "https://example.com/console-xyz",
		Selector:     "#availability span",
		ExpectedText: "Currently unavailable",
		Email:        "alguem@example.com",
	}
}

func TestAddProductAssignsID(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if p.ID == "" {
		t.Error("ID deveria ser atribuído na criação")
	}
	if !p.Active {
		t.Error("produto novo deveria estar ativo")
	}

	got, err := db.GetProductByID(p.ID)
	if err != nil {
		t.Fatalf("erro ao buscar produto: %v", err)
	}
	if got.LastChecked != nil {
		t.Error("produto novo nunca foi verificado")
	}
	if got.ExpectedText != p.ExpectedText {
		t.Errorf("expected_text = %q", got.ExpectedText)
	}
}

func TestAddProductRejectsInvalidConfiguration(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name   string
		mutate func(*models.Product)
	}{
		{"nome vazio", func(p *models.Product) { p.Name = " " }},
		{"URL sem esquema", func(p *models.Product) { p.URL = "example.com/produto" }},
		{"esquema não http", func(p *models.Product) { p.URL = "ftp://example.com/produto" }},
		{"seletor malformado", func(p *models.Product) { p.Selector = "div[" }},
		{"marcador vazio", func(p *models.Product) { p.ExpectedText = "" }},
		{"destino vazio", func(p *models.Product) { p.Email = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			if err := db.AddProduct(&p); err == nil {
				t.Error("configuração malformada deveria ser rejeitada")
			}
		})
	}
}

func TestAddProductRejectsDuplicateURL(t *testing.T) {
	db := newTestDB(t)

	p1 := validProduct()
	if err := db.AddProduct(&p1); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	p2 := validProduct()
	if err := db.AddProduct(&p2); !errors.Is(err, ErrDuplicateURL) {
		t.Errorf("esperado ErrDuplicateURL, veio %v", err)
	}
}

func TestSuspendRemovesFromActiveSet(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	active, err := db.GetActiveProducts()
	if err != nil || len(active) != 1 {
		t.Fatalf("esperado 1 produto ativo, há %d (err: %v)", len(active), err)
	}

	if err := db.Suspend(p.ID); err != nil {
		t.Fatalf("erro ao suspender: %v", err)
	}

	active, _ = db.GetActiveProducts()
	if len(active) != 0 {
		t.Errorf("produto suspenso não pode aparecer entre os ativos")
	}

	got, _ := db.GetProductByID(p.ID)
	if got.Active {
		t.Error("produto deveria estar suspenso")
	}

	if err := db.Suspend("inexistente"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("esperado ErrProductNotFound, veio %v", err)
	}
}

func TestSuspendOnRestockClaimsAtMostOnce(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	now := time.Now()
	won, err := db.SuspendOnRestock(p.ID, now)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !won {
		t.Fatal("primeira reivindicação deveria vencer")
	}

	// Resultado atrasado: o produto já está suspenso, ninguém mais vence
	won, err = db.SuspendOnRestock(p.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if won {
		t.Error("segunda reivindicação não pode vencer")
	}
}

func TestSuspendOnRestockLosesToExternalDeactivation(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	// Desativação externa chega antes do resultado da verificação
	if err := db.Suspend(p.ID); err != nil {
		t.Fatalf("erro ao suspender: %v", err)
	}

	won, err := db.SuspendOnRestock(p.ID, time.Now())
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if won {
		t.Error("desativação externa deveria vencer a corrida")
	}
}

func TestRecordCheckUpdatesTimestampAndError(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	first := time.Now().Add(-time.Minute)
	if err := db.RecordCheck(p.ID, first, "timeout ao buscar página"); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	got, _ := db.GetProductByID(p.ID)
	if got.LastChecked == nil {
		t.Fatal("last_checked deveria estar preenchido")
	}
	if got.LastError != "timeout ao buscar página" {
		t.Errorf("last_error = %q", got.LastError)
	}
	if !got.Active {
		t.Error("falha de verificação não muda o ciclo de vida")
	}

	// Verificação bem-sucedida limpa o último erro
	second := time.Now()
	if err := db.RecordCheck(p.ID, second, ""); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	got, _ = db.GetProductByID(p.ID)
	if got.LastError != "" {
		t.Errorf("last_error deveria ser limpo, veio %q", got.LastError)
	}
	if got.LastChecked.Before(first) {
		t.Error("last_checked deve ser monotônico")
	}
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if err := db.DeleteProduct(p.ID); err != nil {
		t.Fatalf("erro ao remover: %v", err)
	}
	if _, err := db.GetProductByID(p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("esperado ErrProductNotFound, veio %v", err)
	}
	if err := db.DeleteProduct(p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("remover duas vezes deveria falhar, veio %v", err)
	}
}

func TestNotificationLogAndCounts(t *testing.T) {
	db := newTestDB(t)

	p := validProduct()
	if err := db.AddProduct(&p); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	count, err := db.CountNotifications()
	if err != nil || count != 0 {
		t.Fatalf("esperadas 0 notificações, há %d (err: %v)", count, err)
	}

	if err := db.LogNotification(p.ID, "email", "notificação enviada"); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	count, _ = db.CountNotifications()
	if count != 1 {
		t.Errorf("esperada 1 notificação, há %d", count)
	}

	total, active, err := db.CountProducts()
	if err != nil || total != 1 || active != 1 {
		t.Errorf("contagens erradas: total=%d active=%d err=%v", total, active, err)
	}
}
