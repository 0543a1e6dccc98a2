package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"lavka/internal/app/storefront/repository"
)

// utf8BOM добавляется в начало файла, чтобы Excel корректно открывал кириллицу
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// exportHeader - фиксированный порядок колонок CSV выгрузки
var exportHeader = []string{
	"order_number", "created_at", "status", "user_chat_id", "user_name",
	"item_name", "qty", "price", "line_total", "order_total",
}

// ExportService готовит CSV выгрузку заказов для бухгалтерии
type ExportService struct {
	exportRepo repository.ExportRepository
}

// NewExportService создает новый сервис выгрузки
func NewExportService(exportRepo repository.ExportRepository) *ExportService {
	return &ExportService{exportRepo: exportRepo}
}

// ExportOrdersCSV собирает CSV по заказам за последние days дней
// Одна строка на позицию заказа; заказ без позиций даёт одну строку
// с пустыми полями позиции. Возвращает содержимое файла и имя файла
func (s *ExportService) ExportOrdersCSV(ctx context.Context, days int) ([]byte, string, error) {
	if days <= 0 {
		days = 30
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.exportRepo.FlatRows(ctx, since)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load export rows: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, "", fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.OrderNumber,
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.Status,
			strconv.FormatInt(row.UserChatID, 10),
			row.UserName,
			"", "", "", "",
			formatAmount(row.OrderTotal),
		}
		if row.HasItem {
			record[5] = row.ItemName
			record[6] = strconv.Itoa(row.Qty)
			record[7] = formatAmount(row.Price)
			record[8] = formatAmount(row.LineTotal)
		}
		if err := w.Write(record); err != nil {
			return nil, "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	filename := fmt.Sprintf("orders_%s.csv", time.Now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// formatAmount печатает денежную сумму с двумя знаками после запятой
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
