package runs

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mg "loan_allocator/internal/config/connections/mongo"
)

const RunItemsCollection = "allocation_run_items"

// Item is one skipped/failed input row remembered for operator review.
type Item struct {
	RunRecordID string    `bson:"run_record_id" json:"run_record_id"`
	Sheet       string    `bson:"sheet" json:"sheet"`
	Row         int       `bson:"row" json:"row"`
	Payload     string    `bson:"payload" json:"payload"`
	Status      string    `bson:"status" json:"status"`
	Errors      string    `bson:"errors" json:"errors"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func InsertItem(ctx context.Context, m *mg.Mongo, item Item) (*mongo.InsertOneResult, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	doc := bson.D{
		{Key: "run_record_id", Value: item.RunRecordID},
		{Key: "sheet", Value: item.Sheet},
		{Key: "row", Value: item.Row},
		{Key: "payload", Value: item.Payload},
		{Key: "status", Value: item.Status},
		{Key: "errors", Value: item.Errors},
		{Key: "created_at", Value: item.CreatedAt},
		{Key: "updated_at", Value: item.UpdatedAt},
	}

	return m.Database.Collection(RunItemsCollection).InsertOne(ctx, doc, options.InsertOne())
}

func LogRowFailed(ctx context.Context, m *mg.Mongo, runRecordID, sheet string, row int, payload map[string]string, reason string) {
	if m == nil || m.Database == nil {
		return
	}

	b, _ := json.Marshal(payload)

	if _, err := InsertItem(ctx, m, Item{
		RunRecordID: runRecordID,
		Sheet:       sheet,
		Row:         row,
		Payload:     string(b),
		Status:      StatusFailed,
		Errors:      reason,
	}); err != nil {
		log.Printf("[RUNS][%s][MONGO][ERR] row=%d err=%v", sheet, row, err)
	}
}
