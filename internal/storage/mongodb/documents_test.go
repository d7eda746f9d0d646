package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/VitaminP8/bookshelf/models"
)

func TestBookFilter(t *testing.T) {
	t.Run("No authors means empty filter", func(t *testing.T) {
		assert.Equal(t, bson.M{}, bookFilter(models.BookFilter{}))
	})

	t.Run("Authors are matched as given", func(t *testing.T) {
		f := bookFilter(models.BookFilter{Authors: []string{"Jane Doe"}})
		assert.Equal(t, bson.M{"authors": []string{"Jane Doe"}}, f)
	})
}

func TestSavedPayloadMatch(t *testing.T) {
	m := savedPayloadMatch(models.Book{BookID: "b1", Title: "Dune", UserID: "ignored"})

	assert.Equal(t, "b1", m["bookId"])
	assert.Equal(t, "Dune", m["title"])
	assert.Equal(t, []string{}, m["authors"])
	assert.NotContains(t, m, "userId")
	assert.NotContains(t, m, "createdAt")
}

func TestNewBookDocument(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	doc := newBookDocument(models.Book{BookID: "b1", Title: "Dune"}, created)

	assert.Equal(t, []string{}, doc.Authors)
	assert.Equal(t, created.Truncate(time.Millisecond), doc.CreatedAt)
	assert.True(t, doc.ID.IsZero())
	assert.True(t, doc.UserID.IsZero())
}

func TestEmbeddedEntryOmitsCollectionFields(t *testing.T) {
	doc := newBookDocument(models.Book{BookID: "b1", Title: "Dune"}, time.Now())

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "_id")
	assert.NotContains(t, decoded, "userId")
	assert.Contains(t, decoded, "bookId")
}

func TestUserDocumentToModel(t *testing.T) {
	oid := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	doc := userDocument{
		ID:    oid,
		Email: "reader@example.com",
		SavedBooks: []bookDocument{
			{BookID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}},
			{BookID: "b2", Title: "Emma", UserID: owner},
		},
	}

	u := doc.toModel()
	assert.Equal(t, oid.Hex(), u.ID)
	assert.Empty(t, u.Password)
	assert.Equal(t, 2, u.BookCount())
	assert.Equal(t, []string{"Frank Herbert"}, u.SavedBooks[0].Authors)
	assert.Equal(t, []string{}, u.SavedBooks[1].Authors)
	assert.Empty(t, u.SavedBooks[0].UserID)
	assert.Equal(t, owner.Hex(), u.SavedBooks[1].UserID)
}
