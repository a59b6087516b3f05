package runs

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"

	mg "loan_allocator/internal/config/connections/mongo"
	"loan_allocator/internal/models"
)

// Logger feeds allocation run progress into Mongo. It satisfies the
// allocator service's RunLog.
type Logger struct {
	MG *mg.Mongo
}

func NewLogger(m *mg.Mongo) *Logger { return &Logger{MG: m} }

func (l *Logger) RowFailed(ctx context.Context, runID, sheet string, row int, payload map[string]string, reason string) {
	LogRowFailed(ctx, l.MG, runID, sheet, row, payload, reason)
}

func (l *Logger) Finished(ctx context.Context, runID string, summary models.Summary) {
	if runID == "" {
		return
	}
	totalPaid := summary.TotalPaid.String()
	unallocated := summary.Unallocated.String()
	err := UpdateRunRecordResult(ctx, l.MG, runID, bson.M{
		"status":      StatusDone,
		"records":     summary.Records,
		"total_paid":  totalPaid,
		"unallocated": unallocated,
	})
	if err != nil {
		log.Printf("[RUNS][ERR] update run %s: %v", runID, err)
	}
}
