package activitylog

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Level representa a severidade de uma entrada do registro de atividades
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Entry representa um evento registrado pelo monitoramento
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

// Log é um registro de atividades em memória com capacidade limitada.
// Quando a capacidade é excedida, as entradas mais antigas são descartadas.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

const defaultCapacity = 200

// New cria um novo registro de atividades com a capacidade informada
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Log{capacity: capacity}
}

// Record adiciona uma entrada ao registro e espelha no log da aplicação
func (l *Log) Record(level Level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}

	log.Printf("[%s] %s", level, message)
}

// Infof registra uma entrada informativa formatada
func (l *Log) Infof(format string, args ...any) {
	l.Record(LevelInfo, fmt.Sprintf(format, args...))
}

// Warningf registra um aviso formatado
func (l *Log) Warningf(format string, args ...any) {
	l.Record(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf registra um erro formatado
func (l *Log) Errorf(format string, args ...any) {
	l.Record(LevelError, fmt.Sprintf(format, args...))
}

// Recent retorna as n entradas mais recentes, da mais nova para a mais
// antiga. Com n <= 0 ou maior que o registro, retorna todas as entradas.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}

	recent := make([]Entry, n)
	for i := 0; i < n; i++ {
		recent[i] = l.entries[len(l.entries)-1-i]
	}
	return recent
}
