// Package mongo implements the document store over MongoDB, one collection per record type.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

const (
	ProductsCollection       = "products"
	CategoriesCollection     = "categories"
	AdvertisementsCollection = "advertisements"
	UsersCollection          = "users"
	AuditCollection          = "audit_logs"
	CountersCollection       = "counters"

	adCounterID = "advertisements"
)

// New builds the repositories over db. The client is disconnected on Close.
func New(client *mongo.Client, db *mongo.Database) *store.Store {
	return store.New(
		&productRepo{col: db.Collection(ProductsCollection)},
		&categoryRepo{col: db.Collection(CategoriesCollection)},
		&adRepo{col: db.Collection(AdvertisementsCollection), counters: db.Collection(CountersCollection)},
		&userRepo{col: db.Collection(UsersCollection)},
		&auditRepo{col: db.Collection(AuditCollection)},
		client.Disconnect,
	)
}

// EnsureIndexes creates the indexes the repositories query by.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		ProductsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AdvertisementsCollection: {
			{Keys: bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		AuditCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	default:
		return err
	}
}

func stamp(base *models.BaseModel) {
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	base.CreatedAt = now
	base.UpdatedAt = now
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

// Products

type productRepo struct{ col *mongo.Collection }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	stamp(&p.BaseModel)
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *productRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.col.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.SellerID != "" {
		query["seller_id"] = filter.SellerID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	cursor, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *productRepo) Update(ctx context.Context, id string, patch models.ProductPatch) error {
	fields := bson.M(patch.Fields())
	fields["updated_at"] = time.Now().UTC()

	result, err := r.col.UpdateOne(ctx, byID(id), bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) SetStatus(ctx context.Context, id string, change models.StatusChange) error {
	update := bson.M{
		"$set": bson.M{"status": change.To, "updated_at": time.Now().UTC()},
	}
	if change.Reason != nil {
		update["$set"].(bson.M)["rejection_reason"] = *change.Reason
	} else {
		update["$unset"] = bson.M{"rejection_reason": ""}
	}

	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "status": change.From}, update)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return store.ErrConflict
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) CountByStatus(ctx context.Context) (map[models.ProductStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var rows []struct {
		Status models.ProductStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode product counts: %w", err)
	}

	counts := make(map[models.ProductStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Categories

type categoryRepo struct{ col *mongo.Collection }

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	stamp(&c.BaseModel)
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return translate(err)
	}
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := r.col.FindOne(ctx, byID(id)).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, categoryType models.CategoryType) ([]models.Category, error) {
	query := bson.M{}
	if categoryType != "" {
		query["type"] = categoryType
	}

	cursor, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now().UTC()
	result, err := r.col.UpdateOne(ctx, byID(c.ID), bson.M{"$set": bson.M{
		"name":        c.Name,
		"slug":        c.Slug,
		"type":        c.Type,
		"description": c.Description,
		"updated_at":  c.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Advertisements

// adRepo keeps the number of ads in a counter document so the cap can be
// reserved with a single conditional increment.
type adRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func (r *adRepo) Create(ctx context.Context, ad *models.Advertisement, limit int) error {
	if err := r.seedCounter(ctx); err != nil {
		return err
	}

	filter := bson.M{"_id": adCounterID, "n": bson.M{"$lt": limit}}
	err := r.counters.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"n": 1}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrLimitReached
	}
	if err != nil {
		return fmt.Errorf("failed to reserve advertisement slot: %w", err)
	}

	stamp(&ad.BaseModel)
	if _, err := r.col.InsertOne(ctx, ad); err != nil {
		r.release(ctx)
		return fmt.Errorf("failed to create advertisement: %w", err)
	}
	return nil
}

// seedCounter creates the counter from the current count the first time.
func (r *adRepo) seedCounter(ctx context.Context) error {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count advertisements: %w", err)
	}
	_, err = r.counters.UpdateOne(ctx, bson.M{"_id": adCounterID},
		bson.M{"$setOnInsert": bson.M{"n": count}}, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to seed advertisement counter: %w", err)
	}
	return nil
}

func (r *adRepo) release(ctx context.Context) {
	_, _ = r.counters.UpdateOne(ctx, bson.M{"_id": adCounterID, "n": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"n": -1}})
}

func (r *adRepo) Get(ctx context.Context, id string) (*models.Advertisement, error) {
	var ad models.Advertisement
	if err := r.col.FindOne(ctx, byID(id)).Decode(&ad); err != nil {
		return nil, translate(err)
	}
	return &ad, nil
}

func (r *adRepo) List(ctx context.Context) ([]models.Advertisement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch advertisements: %w", err)
	}

	ads := []models.Advertisement{}
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, fmt.Errorf("failed to decode advertisements: %w", err)
	}
	return ads, nil
}

func (r *adRepo) Update(ctx context.Context, ad *models.Advertisement) error {
	ad.UpdatedAt = time.Now().UTC()
	result, err := r.col.UpdateOne(ctx, byID(ad.ID), bson.M{"$set": bson.M{
		"title":       ad.Title,
		"url":         ad.URL,
		"large_image": ad.LargeImage,
		"small_image": ad.SmallImage,
		"active":      ad.Active,
		"order":       ad.Order,
		"updated_at":  ad.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update advertisement: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *adRepo) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete advertisement: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	r.release(ctx)
	return nil
}

func (r *adRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count advertisements: %w", err)
	}
	return count, nil
}

// Users

type userRepo struct{ col *mongo.Collection }

func (r *userRepo) Upsert(ctx context.Context, u *models.User) error {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}

	update := bson.M{
		"$set": bson.M{"email": u.Email, "display_name": u.DisplayName},
		"$setOnInsert": bson.M{
			"role":       role,
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, byID(u.ID), update, opts).Decode(u); err != nil {
		return fmt.Errorf("failed to upsert user: %w", translate(err))
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, byID(id)).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	result, err := r.col.UpdateOne(ctx, byID(id), bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Audit

type auditRepo struct{ col *mongo.Collection }

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	stamp(&entry.BaseModel)
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *auditRepo) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	entries := []models.AuditLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit logs: %w", err)
	}
	return entries, nil
}
