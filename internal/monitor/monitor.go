package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"bot-restock/internal/activitylog"
	"bot-restock/internal/models"
	"bot-restock/internal/notifier"
)

var (
	// ErrAlreadyRunning indica que o monitoramento já está em execução
	ErrAlreadyRunning = errors.New("monitoramento já está em execução")
	// ErrNotRunning indica que o monitoramento não está em execução
	ErrNotRunning = errors.New("monitoramento não está em execução")
	// ErrCheckInFlight indica que o produto já tem uma verificação em andamento
	ErrCheckInFlight = errors.New("produto já tem uma verificação em andamento")
)

// Store define as operações de persistência usadas pelo monitor.
// Implementada pela camada de banco de dados.
type Store interface {
	GetActiveProducts() ([]models.Product, error)
	GetProductByID(id string) (*models.Product, error)
	RecordCheck(id string, checkedAt time.Time, lastErr string) error
	SuspendOnRestock(id string, checkedAt time.Time) (bool, error)
	LogNotification(productID, channel, message string) error
	CountProducts() (total int, active int, err error)
	CountNotifications() (int, error)
}

// Checker define a verificação de estoque de um único produto.
// Implementada pelo scraper.
type Checker interface {
	Check(ctx context.Context, p models.Product) models.CheckResult
}

// Options configura o comportamento do monitor
type Options struct {
	Interval      time.Duration // intervalo entre ciclos de verificação
	MaxRetries    int           // falhas consecutivas toleradas antes do alerta
	MaxConcurrent int           // limite de verificações simultâneas por ciclo
}

// DefaultOptions retorna a configuração padrão do monitor
func DefaultOptions() Options {
	return Options{
		Interval:      5 * time.Minute,
		MaxRetries:    3,
		MaxConcurrent: 5,
	}
}

// Monitor gerencia o monitoramento periódico de produtos
type Monitor struct {
	store    Store
	checker  Checker
	notifier notifier.Notifier
	activity *activitylog.Log
	opts     Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	checksMu sync.Mutex
	inFlight map[string]bool
	failures map[string]int // falhas consecutivas por produto
}

// New cria uma nova instância do monitor
func New(store Store, checker Checker, n notifier.Notifier, activity *activitylog.Log, opts Options) *Monitor {
	def := DefaultOptions()
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = def.MaxRetries
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = def.MaxConcurrent
	}

	return &Monitor{
		store:    store,
		checker:  checker,
		notifier: n,
		activity: activity,
		opts:     opts,
		inFlight: make(map[string]bool),
		failures: make(map[string]int),
	}
}

// Start inicia o monitoramento em background. Retorna ErrAlreadyRunning se o
// monitoramento já estiver em execução.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx, m.done)

	m.activity.Infof("Monitoramento iniciado (intervalo de %v)", m.opts.Interval)
	return nil
}

// Stop interrompe o monitoramento e aguarda as verificações em andamento
// terminarem ou serem abandonadas. Retorna ErrNotRunning se o monitoramento
// não estiver em execução.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	cancel := m.cancel
	done := m.done
	m.running = false
	m.mu.Unlock()

	cancel()
	<-done

	m.activity.Infof("Monitoramento interrompido")
	return nil
}

// IsRunning informa se o monitoramento está em execução
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status retorna o estado geral do monitoramento
func (m *Monitor) Status() (models.Status, error) {
	total, active, err := m.store.CountProducts()
	if err != nil {
		return models.Status{}, err
	}
	sent, err := m.store.CountNotifications()
	if err != nil {
		return models.Status{}, err
	}
	return models.Status{
		IsRunning:         m.IsRunning(),
		TotalProducts:     total,
		ActiveProducts:    active,
		NotificationsSent: sent,
	}, nil
}

// CheckNow executa uma verificação única e imediata de um produto, fora do
// ciclo agendado. Usada para testes manuais: registra o desfecho, mas não
// aplica a transição de reposição nem envia notificação. Respeita a regra de
// no máximo uma verificação em andamento por produto.
func (m *Monitor) CheckNow(ctx context.Context, id string) (models.CheckResult, error) {
	p, err := m.store.GetProductByID(id)
	if err != nil {
		return models.CheckResult{}, err
	}

	if !m.tryAcquire(p.ID) {
		return models.CheckResult{}, ErrCheckInFlight
	}
	defer m.release(p.ID)

	result := m.checker.Check(ctx, *p)
	if err := m.store.RecordCheck(p.ID, result.CheckedAt, result.Detail); err != nil {
		return result, err
	}

	m.activity.Infof("Verificação manual do produto %q: %s", p.Name, result.Status)
	return result, nil
}

// ClearFailures descarta o contador de falhas consecutivas de um produto.
// Chamada quando o produto é suspenso ou removido de fora do ciclo, para que
// o contador não fique retido depois que o produto sai do conjunto ativo.
func (m *Monitor) ClearFailures(id string) {
	m.resetFailures(id)
}

// run executa o loop principal do monitoramento até o contexto ser cancelado
func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Verificar imediatamente na primeira execução
	m.runCycle(ctx)

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// runCycle verifica todos os produtos ativos de forma concorrente, limitada
// por opts.MaxConcurrent. Cada produto é verificado de forma independente:
// uma falha nunca atrasa ou aborta a verificação dos demais.
func (m *Monitor) runCycle(ctx context.Context) {
	products, err := m.store.GetActiveProducts()
	if err != nil {
		m.activity.Errorf("Erro ao buscar produtos ativos: %v", err)
		return
	}

	if len(products) == 0 {
		return
	}

	sem := make(chan struct{}, m.opts.MaxConcurrent)
	var wg sync.WaitGroup

	for _, p := range products {
		if ctx.Err() != nil {
			break
		}

		// No máximo uma verificação em andamento por produto: se a
		// verificação do ciclo anterior ainda não terminou, o produto é
		// pulado neste ciclo, nunca enfileirado em dobro.
		if !m.tryAcquire(p.ID) {
			m.activity.Warningf("Verificação anterior do produto %q ainda em andamento, pulando neste ciclo", p.Name)
			continue
		}

		wg.Add(1)
		go func(p models.Product) {
			defer wg.Done()
			defer m.release(p.ID)

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			m.checkProduct(ctx, p)
		}(p)
	}

	wg.Wait()
}

// checkProduct executa uma verificação e aplica o resultado
func (m *Monitor) checkProduct(ctx context.Context, p models.Product) {
	result := m.checker.Check(ctx, p)

	// Verificação abandonada durante a parada do monitor: não registrar a
	// falha de busca causada pelo próprio cancelamento.
	if result.Failed() && ctx.Err() != nil {
		return
	}

	m.applyResult(p, result)
}

// applyResult aplica a transição de estado correspondente ao desfecho de uma
// verificação e registra o desfecho no registro de atividades.
func (m *Monitor) applyResult(p models.Product, result models.CheckResult) {
	switch result.Status {
	case models.StatusFetchFailed, models.StatusExtractFailed:
		if err := m.store.RecordCheck(p.ID, result.CheckedAt, result.Detail); err != nil {
			m.activity.Errorf("Erro ao registrar verificação do produto %q: %v", p.Name, err)
			return
		}
		count := m.bumpFailures(p.ID)
		if count == m.opts.MaxRetries {
			m.activity.Errorf("Produto %q falhou %d vezes consecutivas: %s", p.Name, count, result.Detail)
		} else {
			m.activity.Warningf("Falha ao verificar produto %q: %s", p.Name, result.Detail)
		}

	case models.StatusOutOfStock:
		m.resetFailures(p.ID)
		if err := m.store.RecordCheck(p.ID, result.CheckedAt, ""); err != nil {
			m.activity.Errorf("Erro ao registrar verificação do produto %q: %v", p.Name, err)
			return
		}
		m.activity.Infof("Produto %q continua sem estoque", p.Name)

	case models.StatusInStock:
		m.resetFailures(p.ID)
		m.applyRestock(p, result)
	}
}

// applyRestock reivindica a transição de reposição e dispara a notificação.
// A suspensão é reivindicada de forma atômica no banco: se uma desativação
// externa chegou antes, a reivindicação falha e nenhuma notificação é
// enviada. A notificação é disparada no máximo uma vez por transição; falha
// de entrega é registrada como aviso e nunca re-tentada, a suspensão
// permanece.
func (m *Monitor) applyRestock(p models.Product, result models.CheckResult) {
	won, err := m.store.SuspendOnRestock(p.ID, result.CheckedAt)
	if err != nil {
		m.activity.Errorf("Erro ao suspender produto %q: %v", p.Name, err)
		return
	}
	if !won {
		m.activity.Infof("Produto %q já estava suspenso, notificação ignorada", p.Name)
		return
	}

	m.activity.Infof("🎉 Produto %q voltou ao estoque! Monitoramento suspenso", p.Name)

	subject, body := notifier.RestockMessage(p)
	if err := m.notifier.Send(p.Email, subject, body); err != nil {
		m.activity.Warningf("Falha ao enviar notificação do produto %q para %s: %v", p.Name, p.Email, err)
		return
	}

	message := "notificação de estoque enviada para " + p.Email
	if err := m.store.LogNotification(p.ID, m.notifier.Channel(), message); err != nil {
		m.activity.Errorf("Erro ao registrar notificação do produto %q: %v", p.Name, err)
		return
	}
	m.activity.Infof("Notificação do produto %q enviada para %s", p.Name, p.Email)
}

// tryAcquire marca o produto como em verificação. Retorna false se já houver
// uma verificação em andamento para o produto.
func (m *Monitor) tryAcquire(id string) bool {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()

	if m.inFlight[id] {
		return false
	}
	m.inFlight[id] = true
	return true
}

// release libera o produto para a próxima verificação
func (m *Monitor) release(id string) {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	delete(m.inFlight, id)
}

func (m *Monitor) bumpFailures(id string) int {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	m.failures[id]++
	return m.failures[id]
}

func (m *Monitor) resetFailures(id string) {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	delete(m.failures, id)
}
