package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbms/bbms/internal/platform/auth"
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

const userCols = `id, email, full_name, role, active, created_at, updated_at`

func (r *repoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO app_user (id, email, full_name, role, active)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.FullName, u.Role, u.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE app_user SET full_name=$2, active=$3, updated_at=NOW() WHERE id = $1`,
		u.ID, u.FullName, u.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	query := `SELECT ` + userCols + ` FROM app_user WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM app_user WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["role"]; ok {
		query += fmt.Sprintf(` AND role = $%d`, idx)
		countQuery += fmt.Sprintf(` AND role = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["active"]; ok {
		query += fmt.Sprintf(` AND active = $%d`, idx)
		countQuery += fmt.Sprintf(` AND active = $%d`, idx)
		args = append(args, p == "true")
		idx++
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
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
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

func (r *repoPG) CreateProfile(ctx context.Context, p Profile) error {
	switch v := p.(type) {
	case DonorProfile:
		_, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO donor_profile (user_id, donor_id) VALUES ($1,$2)`,
			v.UserID, v.DonorID)
		return err
	case MedicalOfficerProfile:
		_, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO medical_officer_profile (user_id, license_number, department) VALUES ($1,$2,$3)`,
			v.UserID, v.LicenseNumber, v.Department)
		return err
	case TechnicianProfile:
		_, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO technician_profile (user_id, lab_section, certification) VALUES ($1,$2,$3)`,
			v.UserID, v.LabSection, v.Certification)
		return err
	default:
		return fmt.Errorf("unknown profile type %T", p)
	}
}

func (r *repoPG) GetProfile(ctx context.Context, userID uuid.UUID, role string) (Profile, error) {
	switch role {
	case auth.RoleDonor:
		var p DonorProfile
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT user_id, donor_id FROM donor_profile WHERE user_id = $1`, userID).
			Scan(&p.UserID, &p.DonorID)
		if err != nil {
			return nil, err
		}
		return p, nil
	case auth.RoleMedicalOfficer:
		var p MedicalOfficerProfile
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT user_id, license_number, department FROM medical_officer_profile WHERE user_id = $1`, userID).
			Scan(&p.UserID, &p.LicenseNumber, &p.Department)
		if err != nil {
			return nil, err
		}
		return p, nil
	case auth.RoleTechnician:
		var p TechnicianProfile
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT user_id, lab_section, certification FROM technician_profile WHERE user_id = $1`, userID).
			Scan(&p.UserID, &p.LabSection, &p.Certification)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, nil
	}
}
