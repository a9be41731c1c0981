package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"bot-restock/internal/models"

	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrProductNotFound indica que o produto não existe no banco
	ErrProductNotFound = errors.New("produto não encontrado")
	// ErrDuplicateURL indica que já existe um produto com a mesma URL
	ErrDuplicateURL = errors.New("já existe um produto com essa URL")
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn *sql.DB
}

// New cria uma nova instância do banco de dados
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Println("Banco de dados inicializado com sucesso")
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		selector TEXT NOT NULL,
		expected_text TEXT NOT NULL,
		email TEXT NOT NULL,
		active BOOLEAN DEFAULT 1,
		last_checked DATETIME,
		last_error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		message TEXT NOT NULL,
		sent_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (product_id) REFERENCES products (id)
	);
	`

	_, err := db.conn.Exec(createTableSQL)
	return err
}

// validateProduct rejeita configurações malformadas antes de chegarem ao monitor
func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("nome do produto é obrigatório")
	}
	if u, err := url.ParseRequestURI(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("URL inválida: %q", p.URL)
	}
	if _, err := cascadia.Parse(p.Selector); err != nil {
		return fmt.Errorf("seletor CSS inválido %q: %v", p.Selector, err)
	}
	if strings.TrimSpace(p.ExpectedText) == "" {
		return errors.New("texto de indisponibilidade é obrigatório")
	}
	if strings.TrimSpace(p.Email) == "" {
		return errors.New("destino da notificação é obrigatório")
	}
	return nil
}

// AddProduct valida e adiciona um novo produto ao banco de dados.
// O ID e a data de criação são atribuídos aqui.
func (db *DB) AddProduct(p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	p.ID = uuid.New().String()
	p.Active = true
	p.CreatedAt = time.Now()

	_, err := db.conn.Exec(
		"INSERT INTO products (id, name, url, selector, expected_text, email, active, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?)",
		p.ID, p.Name, p.URL, p.Selector, p.ExpectedText, p.Email, p.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateURL
		}
		return err
	}
	return nil
}

func scanProduct(scan func(dest ...any) error) (models.Product, error) {
	var p models.Product
	var lastChecked sql.NullTime
	var lastError sql.NullString
	err := scan(&p.ID, &p.Name, &p.URL, &p.Selector, &p.ExpectedText, &p.Email, &p.Active, &lastChecked, &lastError, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		p.LastChecked = &t
	}
	if lastError.Valid {
		p.LastError = lastError.String
	}
	return p, nil
}

const productColumns = "id, name, url, selector, expected_text, email, active, last_checked, last_error, created_at"

// GetActiveProducts retorna todos os produtos ativos
func (db *DB) GetActiveProducts() ([]models.Product, error) {
	return db.queryProducts("SELECT " + productColumns + " FROM products WHERE active = 1")
}

// ListProducts retorna todos os produtos (ativos e suspensos)
func (db *DB) ListProducts() ([]models.Product, error) {
	return db.queryProducts("SELECT " + productColumns + " FROM products ORDER BY created_at DESC")
}

func (db *DB) queryProducts(query string) ([]models.Product, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID retorna um produto pelo ID
func (db *DB) GetProductByID(id string) (*models.Product, error) {
	row := db.conn.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// RecordCheck registra o desfecho de uma verificação sem alterar o ciclo de
// vida do produto. Um lastErr vazio limpa o último erro registrado.
func (db *DB) RecordCheck(id string, checkedAt time.Time, lastErr string) error {
	res, err := db.conn.Exec(
		"UPDATE products SET last_checked = ?, last_error = NULLIF(?, '') WHERE id = ?",
		checkedAt, lastErr, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Suspend desativa um produto incondicionalmente (parada manual)
func (db *DB) Suspend(id string) error {
	res, err := db.conn.Exec("UPDATE products SET active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SuspendOnRestock reivindica a transição de reposição de estoque: suspende o
// produto somente se ainda estiver ativo. Retorna true quando esta chamada
// venceu a transição; uma desativação externa que chegou antes vence e a
// chamada vira no-op.
func (db *DB) SuspendOnRestock(id string, checkedAt time.Time) (bool, error) {
	res, err := db.conn.Exec(
		"UPDATE products SET active = 0, last_checked = ?, last_error = NULL WHERE id = ? AND active = 1",
		checkedAt, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteProduct remove um produto definitivamente
func (db *DB) DeleteProduct(id string) error {
	res, err := db.conn.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// LogNotification registra uma notificação enviada
func (db *DB) LogNotification(productID, channel, message string) error {
	_, err := db.conn.Exec(
		"INSERT INTO notifications (product_id, channel, message) VALUES (?, ?, ?)",
		productID, channel, message,
	)
	return err
}

// CountNotifications retorna o total de notificações enviadas
func (db *DB) CountNotifications() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count)
	return count, err
}

// CountProducts retorna o total de produtos e quantos estão ativos
func (db *DB) CountProducts() (total int, active int, err error) {
	err = db.conn.QueryRow("SELECT COUNT(*), COALESCE(SUM(active), 0) FROM products").Scan(&total, &active)
	return total, active, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
