package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Zenoooe/ai-crm/internal/sales"
)

const (
	customerQuery = `SELECT id, name, COALESCE(company, ''), COALESCE(position, ''), COALESCE(industry, ''),
       COALESCE(priority, 2), COALESCE(latest_notes, '')
FROM customers WHERE id = ?`

	interactionsQuery = `SELECT interaction_date, COALESCE(interaction_type, ''), content
FROM interactions WHERE customer_id = ?
ORDER BY interaction_date DESC LIMIT ?`
)

// Open connects to MySQL. The DSN should carry parseTime=true so DATETIME
// columns scan into time.Time.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// MySQLStore reads customers and interactions from the CRM database.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Customer(ctx context.Context, id int64) (sales.CustomerSnapshot, error) {
	var (
		c        sales.CustomerSnapshot
		priority int
	)
	err := s.db.QueryRowContext(ctx, customerQuery, id).Scan(
		&c.ID, &c.Name, &c.Company, &c.Position, &c.Industry, &priority, &c.ProjectBackground,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sales.CustomerSnapshot{}, ErrCustomerNotFound
	}
	if err != nil {
		return sales.CustomerSnapshot{}, fmt.Errorf("query customer %d: %w", id, err)
	}
	c.Priority = priorityLabel(priority)
	return c, nil
}

func (s *MySQLStore) RecentInteractions(ctx context.Context, customerID int64, limit int) ([]sales.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, interactionsQuery, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query interactions for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var out []sales.Interaction
	for rows.Next() {
		var in sales.Interaction
		if err := rows.Scan(&in.CreatedAt, &in.Kind, &in.Content); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// priorityLabel maps the CRM's 1-3 priority column onto the labels used
// in prompts.
func priorityLabel(p int) string {
	switch p {
	case 1:
		return "高"
	case 3:
		return "低"
	default:
		return "中等"
	}
}
