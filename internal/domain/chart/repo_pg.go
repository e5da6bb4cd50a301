package chart

import (
	"context"
	"encoding/json"
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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const revisionCols = `id, patient_id, kind, revision, schema_version, document, editor_id, appointment_id, created_at`

func scanRevision(row pgx.Row) (*Revision, error) {
	var rev Revision
	var doc string
	err := row.Scan(&rev.ID, &rev.PatientID, &rev.Kind, &rev.Revision, &rev.SchemaVersion,
		&doc, &rev.EditorID, &rev.AppointmentID, &rev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoChart
	}
	rev.Document = json.RawMessage(doc)
	return &rev, err
}

func (r *repoPG) InsertRevision(ctx context.Context, rev *Revision) error {
	rev.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO chart_revision (id, patient_id, kind, revision, schema_version, document, editor_id, appointment_id)
		VALUES (
			$1, $2, $3,
			COALESCE((SELECT MAX(revision) FROM chart_revision WHERE patient_id = $2 AND kind = $3), 0) + 1,
			$4, $5, $6, $7
		)
		RETURNING revision`,
		rev.ID, rev.PatientID, rev.Kind, rev.SchemaVersion, string(rev.Document), rev.EditorID, rev.AppointmentID,
	).Scan(&rev.Revision)
}

func (r *repoPG) Latest(ctx context.Context, patientID uuid.UUID, kind Kind) (*Revision, error) {
	return scanRevision(r.conn(ctx).QueryRow(ctx, `
		SELECT `+revisionCols+`
		FROM chart_revision
		WHERE patient_id = $1 AND kind = $2
		ORDER BY revision DESC
		LIMIT 1`, patientID, kind))
}

func (r *repoPG) ListRevisions(ctx context.Context, patientID uuid.UUID, kind Kind, limit, offset int) ([]*Revision, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM chart_revision WHERE patient_id = $1 AND kind = $2`,
		patientID, kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+revisionCols+`
		FROM chart_revision
		WHERE patient_id = $1 AND kind = $2
		ORDER BY revision DESC
		LIMIT $3 OFFSET $4`, patientID, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rev)
	}
	return items, total, nil
}
