package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/shashiranjanraj/salesdash/app/models"
)

func TestMongoSearchFilter(t *testing.T) {
	price := 42.0

	assert.Equal(t, bson.M{}, mongoSearchFilter(models.ProductSearch{}))

	f := mongoSearchFilter(models.ProductSearch{Text: "a.b*", Price: &price})
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	rx := or[0].(bson.M)["title"].(primitive.Regex)
	assert.Equal(t, `a\.b\*`, rx.Pattern)
	assert.Equal(t, "i", rx.Options)
	assert.Equal(t, bson.M{"price": 42.0}, or[2])
}

func TestBucketSwitchCoversEveryBucket(t *testing.T) {
	sw := bucketSwitch()["$switch"].(bson.M)
	branches := sw["branches"].(bson.A)

	assert.Len(t, branches, len(models.PriceBuckets)-1)
	assert.Equal(t, len(models.PriceBuckets)-1, sw["default"])

	first := branches[0].(bson.M)
	assert.Equal(t, bson.M{"$lte": bson.A{"$price", 100.0}}, first["case"])
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find decodes products", func(mt *mtest.T) {
		repo := NewMongoProductRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "id", Value: int64(1)}, {Key: "title", Value: "Backpack"}, {Key: "price", Value: 109.95}},
			bson.D{{Key: "id", Value: int64(2)}, {Key: "title", Value: "Jacket"}, {Key: "sold", Value: true}},
		))

		got, err := repo.Find(context.Background(), models.ProductSearch{Text: "a"}, 0, 10)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "Backpack", got[0].Title)
		assert.True(mt, got[1].Sold)
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := NewMongoProductRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}},
		))

		n, err := repo.Count(context.Background(), models.ProductSearch{})
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})

	mt.Run("statistics zero-fills missing buckets", func(mt *mtest.T) {
		repo := NewMongoProductRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "totals", Value: bson.A{bson.D{
					{Key: "_id", Value: nil},
					{Key: "totalSaleAmount", Value: 1105.0},
					{Key: "totalSoldItems", Value: int32(2)},
					{Key: "totalNotSoldItems", Value: int32(1)},
				}}},
				{Key: "distribution", Value: bson.A{
					bson.D{{Key: "_id", Value: int32(0)}, {Key: "count", Value: int32(1)}},
					bson.D{{Key: "_id", Value: int32(9)}, {Key: "count", Value: int32(2)}},
				}},
			},
		))

		stats, err := repo.StatisticsByMonth(context.Background(), 3)
		require.NoError(mt, err)
		assert.Equal(mt, 1105.0, stats.TotalSaleAmount)
		assert.Equal(mt, int64(2), stats.TotalSoldItems)
		assert.Equal(mt, int64(1), stats.TotalNotSoldItems)
		require.Len(mt, stats.PriceDistribution, 10)
		assert.Equal(mt, int64(1), stats.PriceDistribution[0].Count)
		assert.Equal(mt, int64(0), stats.PriceDistribution[5].Count)
		assert.Equal(mt, models.PriceRangeCount{PriceRange: "901-above", Count: 2}, stats.PriceDistribution[9])
	})

	mt.Run("delete all", func(mt *mtest.T) {
		repo := NewMongoProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(6)}))

		n, err := repo.DeleteAll(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(6), n)
	})

	mt.Run("server error is wrapped", func(mt *mtest.T) {
		repo := NewMongoProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 11600, Message: "interrupted at shutdown", Name: "InterruptedAtShutdown",
		}))

		_, err := repo.StatisticsByMonth(context.Background(), 1)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "mongo: aggregate statistics")
	})
}
