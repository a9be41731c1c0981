package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract localiza o texto de um elemento na página usando um seletor CSS.
// Quando múltiplos elementos casam com o seletor, o primeiro na ordem do
// documento é usado. Retorna ok=false quando nenhum elemento casa ou quando
// o documento não pôde ser interpretado; marcação malformada nunca gera
// pânico, o parser de HTML é tolerante.
func Extract(body string, selector string) (text string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	return strings.TrimSpace(sel.Text()), true
}
