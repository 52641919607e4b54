package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/appraisal/internal/platform/errors"
	"github.com/louisbranch/appraisal/internal/platform/grpc/pagination"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage/filter"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrAlreadyExists indicates a valuation ID was already stored.
var ErrAlreadyExists = errors.New("valuation already exists")

const valuationColumns = `id, property_type, location, area, expert_price, final_price,
		        blend_method, simulated, rules_version, payload, created_at`

// PutValuation inserts one valuation record.
func (s *Store) PutValuation(ctx context.Context, record storage.ValuationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("valuation id is required")
	}
	if len(record.Payload) == 0 {
		return fmt.Errorf("valuation payload is required")
	}
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO valuations (
		   id,
		   property_type,
		   location,
		   area,
		   expert_price,
		   final_price,
		   blend_method,
		   simulated,
		   rules_version,
		   payload,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(record.PropertyType),
		strings.ToLower(strings.TrimSpace(record.Location)),
		record.Area,
		record.ExpertPrice,
		record.FinalPrice,
		record.BlendMethod,
		record.Simulated,
		record.RulesVersion,
		record.Payload,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put valuation: %w", err)
	}
	return nil
}

// GetValuation returns one valuation by ID.
func (s *Store) GetValuation(ctx context.Context, id string) (storage.ValuationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ValuationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ValuationRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.ValuationRecord{}, fmt.Errorf("valuation id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+valuationColumns+`
		   FROM valuations
		  WHERE id = ?`,
		id,
	)
	record, err := scanValuation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ValuationRecord{}, apperrors.ValuationNotFound(id, storage.ErrNotFound)
		}
		return storage.ValuationRecord{}, fmt.Errorf("get valuation: %w", err)
	}
	return record, nil
}

// ListValuations returns one page of valuations matching opts.
func (s *Store) ListValuations(ctx context.Context, opts storage.ListOptions) (storage.ValuationPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ValuationPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ValuationPage{}, fmt.Errorf("storage is not configured")
	}

	pageSize := pagination.ClampPageSize(int32(min(opts.PageSize, storage.MaxPageSize)), pagination.PageSizeConfig{
		Default: storage.DefaultPageSize,
		Max:     storage.MaxPageSize,
	})
	order, err := pagination.NormalizeOrderBy(opts.OrderBy, pagination.OrderByConfig{
		Default: storage.DefaultOrderBy,
		Allowed: []string{storage.OrderCreatedAt, storage.OrderFinalPrice},
	})
	if err != nil {
		return storage.ValuationPage{}, apperrors.InvalidListArgument(apperrors.CodeInvalidOrder, "OrderBy", opts.OrderBy, err)
	}
	filterStr := strings.TrimSpace(opts.Filter)
	cond, err := filter.ParseValuationFilter(filterStr)
	if err != nil {
		return storage.ValuationPage{}, apperrors.InvalidListArgument(apperrors.CodeInvalidFilter, "Filter", filterStr, err)
	}

	offset := 0
	if token := strings.TrimSpace(opts.PageToken); token != "" {
		cursor, err := pagination.Decode(token)
		if err == nil {
			err = cursor.Validate(filterStr, order.String())
		}
		if err != nil {
			return storage.ValuationPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, err.Error(), err)
		}
		offset = cursor.Offset
	}

	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}
	query := `SELECT ` + valuationColumns + `
		   FROM valuations`
	params := make([]any, 0, len(cond.Params)+2)
	if !cond.Empty() {
		query += `
		  WHERE ` + cond.Clause
		params = append(params, cond.Params...)
	}
	// order.Field is restricted to the allowed column names above.
	query += fmt.Sprintf(`
		  ORDER BY %s %s, id %s
		  LIMIT ? OFFSET ?`, order.Field, direction, direction)
	params = append(params, pageSize+1, offset)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.ValuationPage{}, fmt.Errorf("list valuations: %w", err)
	}
	defer rows.Close()

	page := storage.ValuationPage{
		Valuations: make([]storage.ValuationRecord, 0, pageSize),
	}
	for rows.Next() {
		record, err := scanValuation(rows)
		if err != nil {
			return storage.ValuationPage{}, fmt.Errorf("list valuations: %w", err)
		}
		page.Valuations = append(page.Valuations, record)
	}
	if err := rows.Err(); err != nil {
		return storage.ValuationPage{}, fmt.Errorf("list valuations: %w", err)
	}
	if len(page.Valuations) > pageSize {
		page.Valuations = page.Valuations[:pageSize]
		token, err := pagination.Encode(pagination.NewCursor(offset+pageSize, filterStr, order.String()))
		if err != nil {
			return storage.ValuationPage{}, err
		}
		page.NextPageToken = token
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanValuation(row rowScanner) (storage.ValuationRecord, error) {
	var record storage.ValuationRecord
	var createdAt int64
	if err := row.Scan(
		&record.ID,
		&record.PropertyType,
		&record.Location,
		&record.Area,
		&record.ExpertPrice,
		&record.FinalPrice,
		&record.BlendMethod,
		&record.Simulated,
		&record.RulesVersion,
		&record.Payload,
		&createdAt,
	); err != nil {
		return storage.ValuationRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "valuations.id")
}

var _ storage.ValuationStore = (*Store)(nil)
