package api

import (
	"net/http"

	"bot-restock/internal/activitylog"
	"bot-restock/internal/database"
	"bot-restock/internal/monitor"
	"bot-restock/internal/notifier"
)

// Server expõe a API administrativa do bot
type Server struct {
	router        *http.ServeMux
	db            *database.DB
	monitor       *monitor.Monitor
	activity      *activitylog.Log
	notifier      notifier.Notifier
	testRecipient string // destino padrão do teste de notificação
}

// NewServer cria o servidor da API administrativa
func NewServer(db *database.DB, mon *monitor.Monitor, activity *activitylog.Log, n notifier.Notifier, testRecipient string) *Server {
	server := &Server{
		router:        http.NewServeMux(),
		db:            db,
		monitor:       mon,
		activity:      activity,
		notifier:      n,
		testRecipient: testRecipient,
	}

	server.router.HandleFunc("GET /api/status", server.handleStatus)
	server.router.HandleFunc("GET /api/products", server.handleListProducts)
	server.router.HandleFunc("POST /api/products", server.handleAddProduct)
	server.router.HandleFunc("DELETE /api/products/{id}", server.handleDeleteProduct)
	server.router.HandleFunc("POST /api/products/{id}/test", server.handleTestProduct)
	server.router.HandleFunc("POST /api/test-email", server.handleTestEmail)
	server.router.HandleFunc("POST /api/monitoring/start", server.handleStartMonitoring)
	server.router.HandleFunc("POST /api/monitoring/stop", server.handleStopMonitoring)
	server.router.HandleFunc("GET /api/logs", server.handleLogs)

	return server
}

// Handler retorna o handler HTTP do servidor
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start inicia o servidor HTTP no endereço informado
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}
