package donation

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

const donationCols = `id, donor_id, scheduled_at, actual_at, volume_ml, hemoglobin_level, status, notes,
	created_at, updated_at`

func (r *repoPG) scanDonation(row pgx.Row) (*Donation, error) {
	var d Donation
	err := row.Scan(&d.ID, &d.DonorID, &d.ScheduledAt, &d.ActualAt, &d.VolumeML,
		&d.HemoglobinLevel, &d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Donation) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donation (id, donor_id, scheduled_at, actual_at, volume_ml, hemoglobin_level, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.DonorID, d.ScheduledAt, d.ActualAt, d.VolumeML, d.HemoglobinLevel, d.Status, d.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return r.scanDonation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+donationCols+` FROM donation WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Donation) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE donation SET scheduled_at=$2, actual_at=$3, volume_ml=$4, hemoglobin_level=$5,
			status=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.ScheduledAt, d.ActualAt, d.VolumeML, d.HemoglobinLevel, d.Status, d.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM donation WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Donation, int, error) {
	query := `SELECT ` + donationCols + ` FROM donation WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM donation WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["donor_id"]; ok {
		query += fmt.Sprintf(` AND donor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND donor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["from"]; ok {
		query += fmt.Sprintf(` AND scheduled_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND scheduled_at >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["to"]; ok {
		query += fmt.Sprintf(` AND scheduled_at < $%d`, idx)
		countQuery += fmt.Sprintf(` AND scheduled_at < $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Donation
	for rows.Next() {
		d, err := r.scanDonation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
