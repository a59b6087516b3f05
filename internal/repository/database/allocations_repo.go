package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"loan_allocator/internal/config/connections/postgres"
	"loan_allocator/internal/models"
)

type AllocationsRepo struct {
	pg    *postgres.Postgres
	table string
}

func NewAllocationsRepo(pg *postgres.Postgres) *AllocationsRepo {
	return &AllocationsRepo{
		pg:    pg,
		table: "allocations",
	}
}

// InsertBatch queues one INSERT per allocation record and reports how
// many landed. Individual failures do not abort the batch.
func (r *AllocationsRepo) InsertBatch(ctx context.Context, allocations []models.Allocation) (int, error) {
	if len(allocations) == 0 {
		return 0, nil
	}

	now := time.Now()

	batch := &pgx.Batch{}
	for _, a := range allocations {
		batch.Queue(
			`INSERT INTO `+r.table+` (
				id, run_id, submission_row, collected_row, id_number,
				employee_number, matched_by, amount, created_at
			) VALUES (
				$1::uuid, $2, $3::int, $4::int, $5,
				$6, $7, $8::numeric, $9::timestamp
			)`,
			a.ID, a.RunID, a.SubmissionRow, a.CollectedRow, a.IDNumber,
			a.EmployeeNumber, a.MatchedBy, a.Amount.String(), now,
		)
	}

	br := r.pg.Pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range allocations {
		if _, err := br.Exec(); err == nil {
			inserted++
		}
	}
	return inserted, nil
}
