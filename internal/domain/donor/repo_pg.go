package donor

import (
	"context"
	"fmt"
	"time"

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

const donorCols = `id, user_id, first_name, last_name, blood_type, birth_date, gender,
	email, phone, eligible_to_donate_since, created_at, updated_at`

func (r *repoPG) scanDonor(row pgx.Row) (*Donor, error) {
	var d Donor
	err := row.Scan(&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.BloodType, &d.BirthDate,
		&d.Gender, &d.Email, &d.Phone, &d.EligibleToDonateSince, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Donor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donor (id, user_id, first_name, last_name, blood_type, birth_date, gender,
			email, phone, eligible_to_donate_since)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.UserID, d.FirstName, d.LastName, d.BloodType, d.BirthDate, d.Gender,
		d.Email, d.Phone, d.EligibleToDonateSince)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return r.scanDonor(r.conn(ctx).QueryRow(ctx, `SELECT `+donorCols+` FROM donor WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Donor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE donor SET first_name=$2, last_name=$3, blood_type=$4, birth_date=$5,
			gender=$6, email=$7, phone=$8, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.BloodType, d.BirthDate,
		d.Gender, d.Email, d.Phone)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM donor WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Donor, int, error) {
	query := `SELECT ` + donorCols + ` FROM donor WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM donor WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["blood_type"]; ok {
		query += fmt.Sprintf(` AND blood_type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND blood_type = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d)`, idx, idx)
		countQuery += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d)`, idx, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["eligible"]; ok && p == "true" {
		query += ` AND (eligible_to_donate_since IS NULL OR eligible_to_donate_since <= NOW())`
		countQuery += ` AND (eligible_to_donate_since IS NULL OR eligible_to_donate_since <= NOW())`
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
	var items []*Donor
	for rows.Next() {
		d, err := r.scanDonor(rows)
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

func (r *repoPG) EligibleSince(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	var since *time.Time
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT eligible_to_donate_since FROM donor WHERE id = $1`, id).Scan(&since)
	return since, err
}

func (r *repoPG) SetEligibleSince(ctx context.Context, id uuid.UUID, since time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE donor SET eligible_to_donate_since = $2, updated_at = NOW() WHERE id = $1`,
		id, since)
	return err
}
