package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

const (
	createAttempts = 3

	mysqlSchema = `
		CREATE TABLE IF NOT EXISTS inventory (
			id    BIGINT AUTO_INCREMENT PRIMARY KEY,
			name  TEXT NOT NULL,
			price REAL NOT NULL,
			stock INT NOT NULL
		)`
)

// MySQL error numbers worth retrying: lock wait timeout and deadlock. Both
// roll the statement back, so a retried insert cannot duplicate the row. A
// dropped connection leaves the insert's outcome unknown and is not retried.
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

type MySQLAdapter struct {
	db         *sql.DB
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewMySQLAdapter(db *sql.DB, logger *zap.Logger) *MySQLAdapter {
	return &MySQLAdapter{db: db, logger: logger, retryDelay: 2 * time.Second}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create inventory table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error) {
	if err := domain.ValidateItem(price, stock); err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		result, err := m.db.ExecContext(ctx,
			`INSERT INTO inventory (name, price, stock) VALUES (?, ?, ?)`,
			name, price.InexactFloat64(), stock,
		)
		if err == nil {
			id, err := result.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("read inserted id: %w", err)
			}
			return id, nil
		}

		lastErr = err
		if !isTransientError(err) {
			break
		}

		m.logger.Warn("insert inventory failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}

	return 0, fmt.Errorf("insert inventory: %w", lastErr)
}

func (m *MySQLAdapter) Update(ctx context.Context, rec domain.InventoryRecord) (int64, error) {
	if err := domain.ValidateItem(rec.Price, rec.Stock); err != nil {
		return 0, err
	}

	// Without CLIENT_FOUND_ROWS MySQL reports 0 for an unchanged row, so the
	// missing-id case is told apart with an existence check.
	result, err := m.db.ExecContext(ctx,
		`UPDATE inventory SET name = ?, price = ?, stock = ? WHERE id = ?`,
		rec.Name, rec.Price.InexactFloat64(), rec.Stock, rec.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return rows, nil
	}
	return m.exists(ctx, rec.ID)
}

func (m *MySQLAdapter) SetStock(ctx context.Context, id int64, stock int) error {
	if err := domain.ValidateStock(stock); err != nil {
		return err
	}

	if _, err := m.db.ExecContext(ctx, `UPDATE inventory SET stock = ? WHERE id = ?`, stock, id); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete inventory: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (m *MySQLAdapter) ListAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, price, stock
		FROM inventory
		ORDER BY CAST(name AS BINARY) ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return scanRecords(rows)
}

func (m *MySQLAdapter) exists(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query inventory: %w", err)
	}
	return n, nil
}

func isTransientError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errLockWaitTimeout || myErr.Number == errDeadlock
	}
	return false
}

func scanRecords(rows *sql.Rows) ([]domain.InventoryRecord, error) {
	defer rows.Close()

	records := []domain.InventoryRecord{}
	for rows.Next() {
		var r domain.InventoryRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Price, &r.Stock); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return records, nil
}
