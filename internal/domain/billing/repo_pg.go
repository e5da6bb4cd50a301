package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odontari/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type treatmentRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentRepoPG(pool *pgxpool.Pool) TreatmentRepository { return &treatmentRepoPG{pool: pool} }

const treatmentCols = `id, name, base_price, active, created_at, updated_at`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.Name, &t.BasePrice, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTreatmentNotFound
	}
	return &t, err
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO treatment (id, name, base_price, active) VALUES ($1,$2,$3,$4)`,
		t.ID, t.Name, t.BasePrice, t.Active)
	return err
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return scanTreatment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatment WHERE id = $1`, id))
}

func (r *treatmentRepoPG) GetByName(ctx context.Context, name string) (*Treatment, error) {
	return scanTreatment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatment WHERE lower(name) = lower($1)`, name))
}

func (r *treatmentRepoPG) Update(ctx context.Context, t *Treatment) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE treatment SET name=$2, base_price=$3, active=$4, updated_at=NOW() WHERE id=$1`,
		t.ID, t.Name, t.BasePrice, t.Active)
	return err
}

func (r *treatmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM treatment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+treatmentCols+` FROM treatment ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, nil
}

type procedureRepoPG struct{ pool *pgxpool.Pool }

func NewProcedureRepoPG(pool *pgxpool.Pool) ProcedureRepository { return &procedureRepoPG{pool: pool} }

func (r *procedureRepoPG) Insert(ctx context.Context, p *ProcedureRecord) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO procedure_record (id, appointment_id, treatment_id, applied_price, performed, dedup_key)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (appointment_id, treatment_id, dedup_key) DO NOTHING`,
		p.ID, p.AppointmentID, p.TreatmentID, p.AppliedPrice, p.Performed, p.DedupKey)
	return err
}

func (r *procedureRepoPG) Exists(ctx context.Context, appointmentID, treatmentID uuid.UUID, dedupKey string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM procedure_record
			WHERE appointment_id = $1 AND treatment_id = $2 AND dedup_key = $3
		)`, appointmentID, treatmentID, dedupKey).Scan(&exists)
	return exists, err
}

func (r *procedureRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ProcedureRecord, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, appointment_id, treatment_id, applied_price, performed, dedup_key, created_at
		FROM procedure_record
		WHERE appointment_id = $1
		ORDER BY created_at`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ProcedureRecord
	for rows.Next() {
		var p ProcedureRecord
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.TreatmentID, &p.AppliedPrice,
			&p.Performed, &p.DedupKey, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, nil
}
