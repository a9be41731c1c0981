package models

import "time"

// StockStatus representa o resultado de uma verificação de estoque
type StockStatus string

const (
	StatusInStock       StockStatus = "IN_STOCK"
	StatusOutOfStock    StockStatus = "OUT_OF_STOCK"
	StatusFetchFailed   StockStatus = "FETCH_FAILED"
	StatusExtractFailed StockStatus = "EXTRACT_FAILED"
)

// Product representa um produto sendo monitorado
type Product struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Selector     string     `json:"selector"`      // Seletor CSS do elemento de disponibilidade
	ExpectedText string     `json:"expected_text"` // Texto que indica "sem estoque"
	Email        string     `json:"email"`         // Destino da notificação
	Active       bool       `json:"is_active"`
	LastChecked  *time.Time `json:"last_checked"`
	LastError    string     `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CheckResult representa o desfecho de uma única verificação
type CheckResult struct {
	ProductID string      `json:"product_id"`
	Status    StockStatus `json:"status"`
	Detail    string      `json:"detail,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Failed indica se a verificação terminou em falha de busca ou extração
func (r CheckResult) Failed() bool {
	return r.Status == StatusFetchFailed || r.Status == StatusExtractFailed
}

// Status representa o estado geral do monitoramento
type Status struct {
	IsRunning         bool `json:"is_running"`
	TotalProducts     int  `json:"total_products"`
	ActiveProducts    int  `json:"active_products"`
	NotificationsSent int  `json:"notifications_sent"`
}
