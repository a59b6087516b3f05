package runs

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mg "loan_allocator/internal/config/connections/mongo"
)

const RunRecordsCollection = "allocation_runs"

// Run statuses.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

type Record struct {
	ID             any        `bson:"_id" json:"id"`
	UserID         *string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Status         string     `bson:"status" json:"status"`
	Errors         *string    `bson:"errors,omitempty" json:"errors,omitempty"`
	SubmissionPath *string    `bson:"submission_path,omitempty" json:"submission_path,omitempty"`
	CollectedPath  *string    `bson:"collected_path,omitempty" json:"collected_path,omitempty"`
	OutputPath     *string    `bson:"output_path,omitempty" json:"output_path,omitempty"`
	OutputBucket   *string    `bson:"output_bucket,omitempty" json:"output_bucket,omitempty"`
	OutputKey      *string    `bson:"output_key,omitempty" json:"output_key,omitempty"`
	Records        int        `bson:"records" json:"records"`
	Allocations    int        `bson:"allocations" json:"allocations"`
	TotalPaid      *string    `bson:"total_paid,omitempty" json:"total_paid,omitempty"`
	Unallocated    *string    `bson:"unallocated,omitempty" json:"unallocated,omitempty"`
	InputsSHA256   *string    `bson:"inputs_sha256,omitempty" json:"inputs_sha256,omitempty"`
	SeenBefore     bool       `bson:"seen_before" json:"seen_before"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

func InsertRunRecord(ctx context.Context, m *mg.Mongo, rec Record) (*mongo.InsertOneResult, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusQueued
	}

	doc := bson.D{
		{Key: "user_id", Value: rec.UserID},
		{Key: "status", Value: rec.Status},
		{Key: "errors", Value: rec.Errors},
		{Key: "submission_path", Value: rec.SubmissionPath},
		{Key: "collected_path", Value: rec.CollectedPath},
		{Key: "output_path", Value: rec.OutputPath},
		{Key: "output_bucket", Value: rec.OutputBucket},
		{Key: "output_key", Value: rec.OutputKey},
		{Key: "records", Value: rec.Records},
		{Key: "allocations", Value: rec.Allocations},
		{Key: "total_paid", Value: rec.TotalPaid},
		{Key: "unallocated", Value: rec.Unallocated},
		{Key: "inputs_sha256", Value: rec.InputsSHA256},
		{Key: "seen_before", Value: rec.SeenBefore},
		{Key: "created_at", Value: rec.CreatedAt},
		{Key: "updated_at", Value: rec.UpdatedAt},
	}

	return m.Database.Collection(RunRecordsCollection).InsertOne(ctx, doc, options.InsertOne())
}

func FindRunRecordByID(ctx context.Context, m *mg.Mongo, id string) (Record, error) {
	var out Record
	if m == nil || m.Database == nil {
		return out, mongo.ErrClientDisconnected
	}
	coll := m.Database.Collection(RunRecordsCollection)

	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&out); err == nil {
			out.ID = oid
			return out, nil
		}
	}

	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return out, fmt.Errorf("not found: %w", err)
	}
	out.ID = id
	return out, nil
}

func ListRunRecords(ctx context.Context, m *mg.Mongo, filter bson.M, limit, skip int64) ([]Record, int64, error) {
	if m == nil || m.Database == nil {
		return nil, 0, mongo.ErrClientDisconnected
	}
	coll := m.Database.Collection(RunRecordsCollection)
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	recs := make([]Record, 0)
	for cur.Next(ctx) {
		var r Record
		if err := cur.Decode(&r); err != nil {
			continue
		}
		recs = append(recs, r)
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		total = int64(len(recs))
	}
	return recs, total, nil
}

func UpdateRunRecordStatus(ctx context.Context, m *mg.Mongo, runRecordID, status string) error {
	return updateRunRecord(ctx, m, runRecordID, bson.M{"status": status})
}

// UpdateRunRecordResult marks a run done and stores its totals.
func UpdateRunRecordResult(ctx context.Context, m *mg.Mongo, runRecordID string, fields bson.M) error {
	return updateRunRecord(ctx, m, runRecordID, fields)
}

func updateRunRecord(ctx context.Context, m *mg.Mongo, runRecordID string, set bson.M) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if runRecordID == "" {
		return fmt.Errorf("empty runRecordID")
	}

	coll := m.Database.Collection(RunRecordsCollection)

	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}

	if oid, err := primitive.ObjectIDFromHex(runRecordID); err == nil {
		res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": runRecordID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no allocation_run found with id %s (tried ObjectId and string)", runRecordID)
	}
	return nil
}
