package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lavka/internal/app/storefront/entity"

	"github.com/jackc/pgx/v5/pgxpool"
)

type exportRepository struct {
	db *pgxpool.Pool
}

// NewExportRepository создает репозиторий отчётной выгрузки
// Работает напрямую через pgx: один плоский SQL запрос вместо сборки по сущностям
func NewExportRepository(db *pgxpool.Pool) ExportRepository {
	return &exportRepository{db: db}
}

// FlatRows возвращает заказы за период плоскими строками:
// одна строка на позицию заказа, заказ без позиций даёт одну строку
// с пустыми полями позиции (LEFT JOIN)
func (r *exportRepository) FlatRows(ctx context.Context, since time.Time) ([]entity.ExportRow, error) {
	query := `
		SELECT o.order_number, o.created_at, o.status, o.total,
		       COALESCE(u.chat_id, 0), COALESCE(u.name, ''),
		       oi.name, oi.qty, oi.price
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.created_at >= $1
		ORDER BY o.created_at DESC, oi.id
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	var result []entity.ExportRow
	for rows.Next() {
		var row entity.ExportRow
		var itemName sql.NullString
		var qty sql.NullInt64
		var price sql.NullFloat64

		err := rows.Scan(
			&row.OrderNumber,
			&row.CreatedAt,
			&row.Status,
			&row.OrderTotal,
			&row.UserChatID,
			&row.UserName,
			&itemName,
			&qty,
			&price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}

		if itemName.Valid {
			row.HasItem = true
			row.ItemName = itemName.String
			row.Qty = int(qty.Int64)
			row.Price = price.Float64
			row.LineTotal = round2(price.Float64 * float64(qty.Int64))
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}

	return result, nil
}
