// Package csvimport implements the bulk partner import pipeline: a header
// schema check, independent per-row validation, and partial-success
// insertion with per-row error accounting, so one malformed row never
// invalidates the rest of the batch.
package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/metrics"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/validation"
)

// RequiredColumns is the header set an uploaded file must contain.
var RequiredColumns = []string{"Name", "LegalAddress", "INN", "DirectorFullName", "Phone", "Email", "Rating"}

// RowError records why one row was skipped. Row numbers are 1-indexed with
// the header as row 1, so data rows start at 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result is the outcome of one upload. A non-empty Errors list alongside a
// positive Inserted count is a normal partial success, not a failure.
type Result struct {
	Inserted int        `json:"inserted"`
	Errors   []RowError `json:"errors,omitempty"`
}

// ErrBadHeader aborts the whole upload before any row is processed.
type ErrBadHeader struct {
	Missing []string
}

func (e *ErrBadHeader) Error() string {
	return fmt.Sprintf("Неверный формат CSV. Ожидаемые столбцы: %s", strings.Join(RequiredColumns, ", "))
}

// Import reads a UTF-8 CSV stream and inserts one partner per valid row.
// Each insert is row-scoped: a duplicate name or INN is recorded against
// that row and the batch continues. Re-importing a file therefore reports
// duplicates for every previously inserted row, which is the intended
// signal.
func Import(ctx context.Context, gdb *gorm.DB, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Result{}, &ErrBadHeader{Missing: RequiredColumns}
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Result{}, &ErrBadHeader{Missing: missing}
	}

	field := func(record []string, name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var result Result
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: fmt.Sprintf("Ошибка: %v", err)})
			continue
		}

		partner, rowErr := parseRow(record, field)
		if rowErr != "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: rowErr})
			continue
		}

		// Row-scoped atomicity: each row commits on its own.
		err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(partner).Error
		})
		switch {
		case err == nil:
			result.Inserted++
		case services.IsDuplicate(err):
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("Партнёр с именем '%s' или ИНН '%s' уже существует", partner.Name, partner.INN),
			})
		default:
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: fmt.Sprintf("Ошибка: %v", err)})
		}
	}

	metrics.ImportRowsInserted.Add(float64(result.Inserted))
	metrics.ImportRowsRejected.Add(float64(len(result.Errors)))
	return result, nil
}

// parseRow validates one record and builds the partner to insert.
// Returns a user-visible message when the row must be skipped.
func parseRow(record []string, field func([]string, string) string) (*models.Partner, string) {
	name := field(record, "Name")
	inn := field(record, "INN")
	phone := field(record, "Phone")
	email := field(record, "Email")
	ratingStr := field(record, "Rating")

	if name == "" {
		return nil, "Поле Name обязательно"
	}
	if inn == "" {
		return nil, "Поле INN обязательно"
	}
	v := make(validation.Violations)
	validation.INN("inn", inn, v)
	if !v.Empty() {
		return nil, "INN должен содержать 10 или 12 цифр"
	}
	validation.Phone("phone", phone, v)
	if !v.Empty() {
		return nil, "Телефон должен содержать 10–15 цифр"
	}
	validation.Email("email", email, v)
	if !v.Empty() {
		return nil, "Неверный формат Email"
	}

	var rating *float64
	if ratingStr != "" {
		val, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil {
			return nil, "Рейтинг должен быть числом"
		}
		if val < 0 || val > 5 {
			return nil, "Рейтинг должен быть от 0 до 5"
		}
		rating = &val
	}

	return &models.Partner{
		Name:             name,
		LegalAddress:     field(record, "LegalAddress"),
		INN:              inn,
		DirectorFullName: field(record, "DirectorFullName"),
		Phone:            phone,
		Email:            email,
		Rating:           rating,
	}, ""
}
