package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/VitaminP8/bookshelf/models"
)

func bookCursor(mt *mtest.T, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+".books", mtest.FirstBatch, docs...)
}

func TestBookMongoStorage_FindBooks(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Newest first without filter", func(mt *mtest.T) {
		_, books := newMockStorage(mt)
		owner := primitive.NewObjectID()

		newer := newBookDocument(models.Book{BookID: "b", Title: "Emma", Authors: []string{"Jane Austen"}}, fixedNow.AddDate(0, 0, 1))
		newer.UserID = owner
		older := newBookDocument(duneBook(), fixedNow)
		older.UserID = owner
		mt.AddMockResponses(bookCursor(mt, toDoc(mt.T, newer), toDoc(mt.T, older)))

		found, err := books.FindBooks(ctx, models.BookFilter{})
		require.NoError(mt, err)
		require.Len(mt, found, 2)
		assert.Equal(mt, "b", found[0].BookID)
		assert.Equal(mt, "dune-1", found[1].BookID)
		assert.Equal(mt, owner.Hex(), found[0].UserID)

		cmd := mt.GetStartedEvent().Command
		sort := cmd.Lookup("sort").Document()
		keys, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, keys, 2)
		assert.Equal(mt, "createdAt", keys[0].Key())
		assert.Equal(mt, int64(-1), keys[0].Value().AsInt64())
		assert.Equal(mt, "_id", keys[1].Key())
		assert.Equal(mt, int64(-1), keys[1].Value().AsInt64())

		filter := cmd.Lookup("filter").Document()
		elems, err := filter.Elements()
		require.NoError(mt, err)
		assert.Empty(mt, elems)
	})

	mt.Run("Authors filter is sent as an exact sequence", func(mt *mtest.T) {
		_, books := newMockStorage(mt)
		mt.AddMockResponses(bookCursor(mt))

		found, err := books.FindBooks(ctx, models.BookFilter{Authors: []string{"Jane Doe", "John Roe"}})
		require.NoError(mt, err)
		assert.NotNil(mt, found)
		assert.Empty(mt, found)

		authors := mt.GetStartedEvent().Command.Lookup("filter", "authors").Array()
		values, err := authors.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 2)
		assert.Equal(mt, "Jane Doe", values[0].StringValue())
		assert.Equal(mt, "John Roe", values[1].StringValue())
	})
}
