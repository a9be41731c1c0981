package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bot-restock/internal/database"
	"bot-restock/internal/models"
	"bot-restock/internal/monitor"
	"bot-restock/internal/notifier"
)

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.monitor.Status()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.db.ListProducts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name         string `json:"name"`
		URL          string `json:"url"`
		Selector     string `json:"selector"`
		ExpectedText string `json:"expected_text"`
		Email        string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := models.Product{
		Name:         input.Name,
		URL:          input.URL,
		Selector:     input.Selector,
		ExpectedText: input.ExpectedText,
		Email:        input.Email,
	}

	// Configuração malformada ou URL duplicada é rejeitada aqui e nunca
	// chega ao monitor
	if err := s.db.AddProduct(&product); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.activity.Infof("Produto %q adicionado ao monitoramento", product.Name)
	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "Produto '" + product.Name + "' adicionado com sucesso",
		ID:      product.ID,
	})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := s.db.GetProductByID(id)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("permanent") == "1" {
		if err := s.db.DeleteProduct(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.monitor.ClearFailures(id)
		s.activity.Infof("Produto %q removido definitivamente", product.Name)
		writeJSON(w, http.StatusOK, messageResponse{Message: "Produto '" + product.Name + "' removido com sucesso"})
		return
	}

	if err := s.db.Suspend(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.monitor.ClearFailures(id)
	s.activity.Infof("Produto %q desativado manualmente", product.Name)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Produto '" + product.Name + "' desativado com sucesso"})
}

func (s *Server) handleTestProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := s.monitor.CheckNow(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrProductNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, monitor.ErrCheckInFlight):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	to := s.testRecipient
	var input struct {
		To string `json:"to"`
	}
	// Corpo é opcional; sem ele o destino configurado é usado
	if err := json.NewDecoder(r.Body).Decode(&input); err == nil && input.To != "" {
		to = input.To
	}

	subject, body := notifier.RestockMessage(models.Product{
		Name: "Produto de Teste",
		URL:  "https://example.com",
	})
	if err := s.notifier.Send(to, subject, body); err != nil {
		s.activity.Warningf("Falha no teste de notificação via %s: %v", s.notifier.Channel(), err)
		writeError(w, http.StatusInternalServerError, "Falha ao enviar notificação de teste: "+err.Error())
		return
	}

	s.activity.Infof("Notificação de teste enviada via %s", s.notifier.Channel())
	writeJSON(w, http.StatusOK, messageResponse{Message: "Notificação de teste enviada com sucesso"})
}

func (s *Server) handleStartMonitoring(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.Start(); err != nil {
		if errors.Is(err, monitor.ErrAlreadyRunning) {
			writeJSON(w, http.StatusOK, messageResponse{Message: "Monitoramento já está em execução"})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Monitoramento iniciado com sucesso"})
}

func (s *Server) handleStopMonitoring(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.Stop(); err != nil {
		if errors.Is(err, monitor.ErrNotRunning) {
			writeJSON(w, http.StatusOK, messageResponse{Message: "Monitoramento já está parado"})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Monitoramento interrompido com sucesso"})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": s.activity.Recent(n)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
