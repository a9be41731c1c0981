package scraper

import (
	"strings"

	"bot-restock/internal/models"
)

// Evaluate decide o estado de estoque a partir do texto extraído.
// Texto não encontrado indica seletor quebrado ou página alterada, não um
// sinal de estoque. A comparação com o marcador de indisponibilidade é
// exata (sensível a maiúsculas, apenas com espaços aparados): qualquer
// texto diferente do marcador é tratado como produto disponível.
func Evaluate(extracted string, found bool, expectedText string) models.StockStatus {
	if !found {
		return models.StatusExtractFailed
	}

	if strings.TrimSpace(extracted) == strings.TrimSpace(expectedText) {
		return models.StatusOutOfStock
	}

	return models.StatusInStock
}
