package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

const (
	ledgerCollection = "ledgers"
	reportCollection = "daily_reports"
)

// ReportRepository stores daily herd reports.
type ReportRepository interface {
	SaveDailyReport(ctx context.Context, report models.HerdReport) error
}

// MongoDBRepository keeps one ledger document per farm and the daily report
// history.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	farmID string
	now    func() time.Time
}

// stateDocument is the stored form of a farm's ledger.
type stateDocument struct {
	FarmID    string       `bson:"_id"`
	State     models.State `bson:"state"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri, dbName, farmID string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		farmID: farmID,
		now:    time.Now,
	}, nil
}

// Load reads the farm's ledger document. A farm never saved loads empty.
func (r *MongoDBRepository) Load(ctx context.Context) (models.State, error) {
	collection := r.client.Database(r.dbName).Collection(ledgerCollection)

	var doc stateDocument
	err := collection.FindOne(ctx, bson.M{"_id": r.farmID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewState(), nil
	}
	if err != nil {
		return models.State{}, fmt.Errorf("failed to load ledger %s: %w", r.farmID, err)
	}
	return doc.State.Normalize(), nil
}

// Save replaces the farm's ledger document, creating it on first save.
func (r *MongoDBRepository) Save(ctx context.Context, state models.State) error {
	collection := r.client.Database(r.dbName).Collection(ledgerCollection)

	doc := newStateDocument(r.farmID, state, r.now())
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": r.farmID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save ledger %s: %w", r.farmID, err)
	}
	return nil
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.HerdReport) error {
	collection := r.client.Database(r.dbName).Collection(reportCollection)
	if report.FarmID == "" {
		report.FarmID = r.farmID
	}
	_, err := collection.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func newStateDocument(farmID string, state models.State, now time.Time) stateDocument {
	return stateDocument{FarmID: farmID, State: state.Normalize(), UpdatedAt: now.UTC()}
}
