package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"bot-restock/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Scraper verifica a disponibilidade de produtos em páginas de terceiros
type Scraper struct {
	client *http.Client
}

// New cria uma nova instância do scraper com timeout de busca limitado
func New(timeout time.Duration) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Check busca a página do produto, extrai o texto configurado e classifica o
// estado de estoque. Falhas de transporte e de extração são devolvidas como
// desfecho da verificação, nunca como erro.
func (s *Scraper) Check(ctx context.Context, p models.Product) models.CheckResult {
	result := models.CheckResult{
		ProductID: p.ID,
		CheckedAt: time.Now(),
	}

	body, err := s.fetch(ctx, p.URL)
	if err != nil {
		result.Status = models.StatusFetchFailed
		result.Detail = err.Error()
		return result
	}

	extracted, found := Extract(body, p.Selector)
	result.Status = Evaluate(extracted, found, p.ExpectedText)
	if result.Status == models.StatusExtractFailed {
		result.Detail = fmt.Sprintf("nenhum elemento encontrado para o seletor %q", p.Selector)
	}

	return result
}

// fetch busca o conteúdo da página do produto
func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
