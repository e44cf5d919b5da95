package inventory

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

const unitCols = `id, unit_number, donation_id, transfusion_id, blood_type, component, volume_ml,
	status, collected_at, expiry_date, notes, created_at, updated_at`

func (r *repoPG) scanUnit(row pgx.Row) (*BloodUnit, error) {
	var u BloodUnit
	err := row.Scan(&u.ID, &u.UnitNumber, &u.DonationID, &u.TransfusionID, &u.BloodType,
		&u.Component, &u.VolumeML, &u.Status, &u.CollectedAt, &u.ExpiryDate, &u.Notes,
		&u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *BloodUnit) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blood_unit (id, unit_number, donation_id, blood_type, component, volume_ml,
			status, collected_at, expiry_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		u.ID, u.UnitNumber, u.DonationID, u.BloodType, u.Component, u.VolumeML,
		u.Status, u.CollectedAt, u.ExpiryDate, u.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*BloodUnit, error) {
	return r.scanUnit(r.conn(ctx).QueryRow(ctx, `SELECT `+unitCols+` FROM blood_unit WHERE id = $1`, id))
}

func (r *repoPG) GetByUnitNumber(ctx context.Context, unitNumber string) (*BloodUnit, error) {
	return r.scanUnit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+unitCols+` FROM blood_unit WHERE unit_number = $1`, unitNumber))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE blood_unit SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_unit WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*BloodUnit, int, error) {
	query := `SELECT ` + unitCols + ` FROM blood_unit WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM blood_unit WHERE 1=1`
	var args []interface{}
	idx := 1

	for _, col := range []string{"blood_type", "component", "status"} {
		if p, ok := params[col]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, p)
			idx++
		}
	}
	if p, ok := params["donation_id"]; ok {
		query += fmt.Sprintf(` AND donation_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND donation_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["expiring"]; ok && p == "true" {
		cond := ` AND status = 'AVAILABLE' AND expiry_date > NOW() AND expiry_date <= NOW() + INTERVAL '7 days'`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY expiry_date ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BloodUnit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) LockAvailable(ctx context.Context, bloodType, component string, n int) ([]*BloodUnit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+unitCols+` FROM blood_unit
		WHERE blood_type = $1 AND component = $2 AND status = 'AVAILABLE' AND expiry_date > NOW()
		ORDER BY expiry_date ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		bloodType, component, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BloodUnit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *repoPG) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*BloodUnit, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+unitCols+` FROM blood_unit WHERE id = ANY($1) FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BloodUnit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *repoPG) MarkUsed(ctx context.Context, ids []uuid.UUID, transfusionID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE blood_unit SET status = 'USED', transfusion_id = $2, updated_at = NOW()
		WHERE id = ANY($1)`, ids, transfusionID)
	return err
}
