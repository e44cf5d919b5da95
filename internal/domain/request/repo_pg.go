package request

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbms/bbms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const requestCols = `id, patient_id, requester_id, blood_type, component, units_requested,
	fulfilled_units, urgency, status, reason, required_by, notes, created_at, updated_at`

func (r *repoPG) scanRequest(row pgx.Row) (*BloodRequest, error) {
	var br BloodRequest
	err := row.Scan(&br.ID, &br.PatientID, &br.RequesterID, &br.BloodType, &br.Component,
		&br.UnitsRequested, &br.FulfilledUnits, &br.Urgency, &br.Status, &br.Reason,
		&br.RequiredBy, &br.Notes, &br.CreatedAt, &br.UpdatedAt)
	return &br, err
}

func (r *repoPG) Create(ctx context.Context, br *BloodRequest) error {
	br.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blood_request (id, patient_id, requester_id, blood_type, component,
			units_requested, fulfilled_units, urgency, status, reason, required_by, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		br.ID, br.PatientID, br.RequesterID, br.BloodType, br.Component,
		br.UnitsRequested, br.FulfilledUnits, br.Urgency, br.Status, br.Reason,
		br.RequiredBy, br.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*BloodRequest, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM blood_request WHERE id = $1`, id))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*BloodRequest, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM blood_request WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, br *BloodRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE blood_request SET blood_type=$2, component=$3, units_requested=$4,
			fulfilled_units=$5, urgency=$6, status=$7, reason=$8, required_by=$9,
			notes=$10, updated_at=NOW()
		WHERE id = $1`,
		br.ID, br.BloodType, br.Component, br.UnitsRequested,
		br.FulfilledUnits, br.Urgency, br.Status, br.Reason, br.RequiredBy, br.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_request WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*BloodRequest, int, error) {
	query := `SELECT ` + requestCols + ` FROM blood_request WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM blood_request WHERE 1=1`
	var args []interface{}
	idx := 1

	for param, col := range map[string]string{
		"patient_id": "patient_id",
		"requester":  "requester_id",
		"blood_type": "blood_type",
		"component":  "component",
		"status":     "status",
		"urgency":    "urgency",
	} {
		if p, ok := params[param]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BloodRequest
	for rows.Next() {
		br, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, br)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type transfusionRepoPG struct{ pool *pgxpool.Pool }

func NewTransfusionRepoPG(pool *pgxpool.Pool) TransfusionRepository {
	return &transfusionRepoPG{pool: pool}
}

func (r *transfusionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const transfusionCols = `id, request_id, patient_id, performed_by, transfused_at, notes, created_at`

func (r *transfusionRepoPG) Create(ctx context.Context, t *Transfusion) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO transfusion (id, request_id, patient_id, performed_by, transfused_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.RequestID, t.PatientID, t.PerformedBy, t.TransfusedAt, t.Notes)
	return err
}

func (r *transfusionRepoPG) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Transfusion, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+transfusionCols+` FROM transfusion WHERE request_id = $1 ORDER BY transfused_at ASC`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Transfusion
	for rows.Next() {
		var t Transfusion
		if err := rows.Scan(&t.ID, &t.RequestID, &t.PatientID, &t.PerformedBy,
			&t.TransfusedAt, &t.Notes, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, rows.Err()
}

func (r *transfusionRepoPG) CountByRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM transfusion WHERE request_id = $1`, requestID).Scan(&n)
	return n, err
}
