package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ReadTable runs query and returns the result set with the selected column
// names as header, so a view such as
//
//	SELECT site_id AS "Site ID", lat AS "Latitude", lon AS "Longitude", region AS "Region"
//	FROM tracking.sites
//
// feeds the pipeline exactly like a spreadsheet export. NULL becomes "".
func (s *Store) ReadTable(ctx context.Context, query string) (tabular.Table, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return tabular.Table{}, err
	}
	defer rows.Close()

	return collectTable(rows)
}

func collectTable(rows pgx.Rows) (tabular.Table, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	data := make([][]string, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return tabular.Table{}, err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cellString(v)
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return tabular.Table{}, err
	}
	return tabular.New(columns, data), nil
}

// cellString renders a decoded column value the way a CSV export would.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return ""
		}
		return cellString(dv)
	default:
		return fmt.Sprint(val)
	}
}
