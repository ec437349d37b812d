package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// records es el acceso genérico a la tabla records para un kind.
type records struct {
	q    queryer
	kind string
}

func (r records) insert(ctx context.Context, id, lookup, status string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.kind, err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO records (kind, id, lookup, status, body)
		VALUES (?, ?, ?, ?, ?)
	`, r.kind, id, lookup, status, string(body))
	return err
}

// update devuelve notFound si el id no existe.
func (r records) update(ctx context.Context, id, lookup, status string, v any, notFound error) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.kind, err)
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE records SET lookup = ?, status = ?, body = ?
		WHERE kind = ? AND id = ?
	`, lookup, status, string(body), r.kind, id)
	return affectedOne(res, err, notFound)
}

func (r records) delete(ctx context.Context, id string, notFound error) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, r.kind, id)
	return affectedOne(res, err, notFound)
}

// get decodifica el registro en v; notFound si no existe.
func (r records) get(ctx context.Context, id string, v any, notFound error) error {
	var body string
	err := r.q.QueryRowContext(ctx, `
		SELECT body FROM records WHERE kind = ? AND id = ?
	`, r.kind, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return err
	}
	return r.decode(body, v)
}

func (r records) getBy(ctx context.Context, column, value string, v any, notFound error) error {
	var body string
	err := r.q.QueryRowContext(ctx, `
		SELECT body FROM records WHERE kind = ? AND `+column+` = ? LIMIT 1
	`, r.kind, value).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return err
	}
	return r.decode(body, v)
}

// each llama a fn con el body de cada registro del kind (filtrado por column = value
// si column no es vacío). column solo llega desde constantes del paquete.
func (r records) each(ctx context.Context, column, value string, fn func(body string) error) error {
	query := `SELECT body FROM records WHERE kind = ?`
	args := []any{r.kind}
	if column != "" {
		query += ` AND ` + column + ` = ?`
		args = append(args, value)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return err
		}
		if err := fn(body); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r records) decode(body string, v any) error {
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode %s: %w", r.kind, err)
	}
	return nil
}

func affectedOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound
	}
	return nil
}
