package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/pkg/metrics"
)

const mongoDriver = "mongo"

// MongoProductRepository stores products in a single MongoDB collection and
// computes statistics with the server's aggregation pipeline.
type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(col *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{col: col}
}

func (r *MongoProductRepository) Find(ctx context.Context, search models.ProductSearch, skip, limit int) (out []models.Product, err error) {
	defer metrics.ObserveStore(mongoDriver, "find", time.Now(), &err)

	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, mongoSearchFilter(search), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find products: %w", err)
	}

	out = make([]models.Product, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode products: %w", err)
	}
	return out, nil
}

func (r *MongoProductRepository) Count(ctx context.Context, search models.ProductSearch) (n int64, err error) {
	defer metrics.ObserveStore(mongoDriver, "count", time.Now(), &err)

	n, err = r.col.CountDocuments(ctx, mongoSearchFilter(search))
	if err != nil {
		return 0, fmt.Errorf("mongo: count products: %w", err)
	}
	return n, nil
}

// mongoSearchFilter ORs a literal case-insensitive match on title and
// description with an exact price match.
func mongoSearchFilter(s models.ProductSearch) bson.M {
	if s.Empty() {
		return bson.M{}
	}

	var or bson.A
	if s.Text != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(s.Text), Options: "i"}
		or = append(or, bson.M{"title": rx}, bson.M{"description": rx})
	}
	if s.Price != nil {
		or = append(or, bson.M{"price": *s.Price})
	}
	return bson.M{"$or": or}
}

type mongoStatsFacet struct {
	Totals []struct {
		TotalSaleAmount   float64 `bson:"totalSaleAmount"`
		TotalSoldItems    int64   `bson:"totalSoldItems"`
		TotalNotSoldItems int64   `bson:"totalNotSoldItems"`
	} `bson:"totals"`
	Distribution []struct {
		Bucket int   `bson:"_id"`
		Count  int64 `bson:"count"`
	} `bson:"distribution"`
}

func (r *MongoProductRepository) StatisticsByMonth(ctx context.Context, month int) (stats models.Statistics, err error) {
	defer metrics.ObserveStore(mongoDriver, "statistics", time.Now(), &err)

	cur, err := r.col.Aggregate(ctx, statisticsPipeline(month))
	if err != nil {
		return models.Statistics{}, fmt.Errorf("mongo: aggregate statistics: %w", err)
	}

	var facets []mongoStatsFacet
	if err := cur.All(ctx, &facets); err != nil {
		return models.Statistics{}, fmt.Errorf("mongo: decode statistics: %w", err)
	}

	counts := make([]int64, len(models.PriceBuckets))
	if len(facets) > 0 {
		f := facets[0]
		if len(f.Totals) > 0 {
			stats.TotalSaleAmount = f.Totals[0].TotalSaleAmount
			stats.TotalSoldItems = f.Totals[0].TotalSoldItems
			stats.TotalNotSoldItems = f.Totals[0].TotalNotSoldItems
		}
		for _, d := range f.Distribution {
			if d.Bucket >= 0 && d.Bucket < len(counts) {
				counts[d.Bucket] = d.Count
			}
		}
	}
	stats.PriceDistribution = models.Distribution(counts)
	return stats, nil
}

// statisticsPipeline matches the month (UTC, any year) and computes the
// totals and the histogram in one $facet. The histogram groups by bucket
// index, so labels are attached by boundary on the client side.
func statisticsPipeline(month int) mongo.Pipeline {
	match := bson.D{{Key: "$match", Value: bson.M{
		"$expr": bson.M{"$eq": bson.A{
			bson.M{"$month": bson.M{"$toDate": "$dateOfSale"}},
			month,
		}},
	}}}

	totals := bson.A{bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "totalSaleAmount", Value: bson.M{"$sum": "$price"}},
		{Key: "totalSoldItems", Value: bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$sold", true}}, 1, 0}}}},
		{Key: "totalNotSoldItems", Value: bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$ne": bson.A{"$sold", true}}, 1, 0}}}},
	}}}}

	distribution := bson.A{bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: bucketSwitch()},
		{Key: "count", Value: bson.M{"$sum": 1}},
	}}}}

	facet := bson.D{{Key: "$facet", Value: bson.D{
		{Key: "totals", Value: totals},
		{Key: "distribution", Value: distribution},
	}}}

	return mongo.Pipeline{match, facet}
}

// bucketSwitch maps $price to its index in models.PriceBuckets.
func bucketSwitch() bson.M {
	last := len(models.PriceBuckets) - 1
	branches := make(bson.A, 0, last)
	for i, b := range models.PriceBuckets[:last] {
		branches = append(branches, bson.M{
			"case": bson.M{"$lte": bson.A{"$price", b.Max}},
			"then": i,
		})
	}
	return bson.M{"$switch": bson.M{"branches": branches, "default": last}}
}

func (r *MongoProductRepository) Upsert(ctx context.Context, products []models.Product) (err error) {
	defer metrics.ObserveStore(mongoDriver, "insert", time.Now(), &err)

	if len(products) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"id": p.ID}).
			SetReplacement(p).
			SetUpsert(true))
	}

	if _, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo: upsert %d products: %w", len(products), err)
	}
	return nil
}

func (r *MongoProductRepository) DeleteAll(ctx context.Context) (n int64, err error) {
	defer metrics.ObserveStore(mongoDriver, "delete", time.Now(), &err)

	res, err := r.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: delete products: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoProductRepository) Migrate(ctx context.Context) (err error) {
	defer metrics.ObserveStore(mongoDriver, "migrate", time.Now(), &err)

	_, err = r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dateOfSale", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create indexes: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, readpref.Primary())
}
