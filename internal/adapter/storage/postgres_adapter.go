package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

const postgresSchema = `
	create table if not exists inventory (
		id    bigserial primary key,
		name  text not null,
		price double precision not null,
		stock integer not null
	)`

// PostgresAdapter stores the catalog through the pgx database/sql driver.
type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create inventory table: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error) {
	if err := domain.ValidateItem(price, stock); err != nil {
		return 0, err
	}

	var id int64
	err := p.db.QueryRowContext(ctx, `
		insert into inventory (name, price, stock)
		values ($1, $2, $3)
		returning id`,
		name, price.InexactFloat64(), stock,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert inventory: %w", err)
	}
	return id, nil
}

func (p *PostgresAdapter) Update(ctx context.Context, rec domain.InventoryRecord) (int64, error) {
	if err := domain.ValidateItem(rec.Price, rec.Stock); err != nil {
		return 0, err
	}

	result, err := p.db.ExecContext(ctx, `
		update inventory
		set name = $2, price = $3, stock = $4
		where id = $1`,
		rec.ID, rec.Name, rec.Price.InexactFloat64(), rec.Stock,
	)
	if err != nil {
		return 0, fmt.Errorf("update inventory: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (p *PostgresAdapter) SetStock(ctx context.Context, id int64, stock int) error {
	if err := domain.ValidateStock(stock); err != nil {
		return err
	}

	if _, err := p.db.ExecContext(ctx, `update inventory set stock = $2 where id = $1`, id, stock); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := p.db.ExecContext(ctx, `delete from inventory where id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete inventory: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (p *PostgresAdapter) ListAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		select id, name, price, stock
		from inventory
		order by name collate "C" asc, id asc`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return scanRecords(rows)
}
