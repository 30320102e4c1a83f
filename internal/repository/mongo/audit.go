package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shestoi/GoShop/internal/repository"
)

// AuditCollection коллекция журнала аудита
const AuditCollection = "audit_log"

// AuditDocument документ коллекции audit_log
type AuditDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	ActorID  string             `bson:"actor_id"`
	Action   string             `bson:"action"`
	Entity   string             `bson:"entity"`
	EntityID string             `bson:"entity_id"`
	Payload  bson.M             `bson:"payload,omitempty"`
	At       time.Time          `bson:"at"`
}

// AuditRepository реализует repository.AuditRepository используя MongoDB
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository создаёт репозиторий и индекс (entity, entity_id, at)
func NewAuditRepository(client *mongo.Client, dbName string) *AuditRepository {
	col := client.Database(dbName).Collection(AuditCollection)

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "at", Value: -1}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Если индекс уже существует - игнорируем ошибку
	_, _ = col.Indexes().CreateOne(ctx, indexModel)

	return &AuditRepository{col: col}
}

// Append добавляет запись; журнал только дописывается
func (r *AuditRepository) Append(ctx context.Context, e repository.AuditEntry) error {
	doc := AuditDocument{
		ActorID:  e.ActorID,
		Action:   e.Action,
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Payload:  bson.M(e.Payload),
		At:       e.At,
	}
	if doc.At.IsZero() {
		doc.At = time.Now()
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// List возвращает записи по сущности, новые первыми
func (r *AuditRepository) List(ctx context.Context, f repository.AuditFilter) ([]repository.AuditEntry, error) {
	filter := bson.M{}
	if f.Entity != "" {
		filter["entity"] = f.Entity
	}
	if f.EntityID != "" {
		filter["entity_id"] = f.EntityID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	entries := make([]repository.AuditEntry, 0)
	for cur.Next(ctx) {
		var doc AuditDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, repository.AuditEntry{
			ID:       doc.ID.Hex(),
			ActorID:  doc.ActorID,
			Action:   doc.Action,
			Entity:   doc.Entity,
			EntityID: doc.EntityID,
			Payload:  map[string]any(doc.Payload),
			At:       doc.At,
		})
	}
	return entries, cur.Err()
}
