package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

func init() {
	user.PasswordCost = bcrypt.MinCost
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockStorage(mt *mtest.T) (*UserMongoStorage, *BookMongoStorage) {
	db := &DB{Client: mt.Client, Database: mt.DB}
	users := NewUserMongoStorage(db)
	users.now = func() time.Time { return fixedNow }
	return users, NewBookMongoStorage(db)
}

// toDoc turns a document struct into the bson.D a mocked server would send back.
func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)

	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func findAndModifyResponse(value interface{}) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: value})
}

func userCursor(mt *mtest.T, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+".users", mtest.FirstBatch, docs...)
}

func duneBook() models.Book {
	return models.Book{
		BookID:      "dune-1",
		Authors:     []string{"Frank Herbert"},
		Description: "Desert planet",
		Title:       "Dune",
	}
}

func readerWith(oid primitive.ObjectID, books ...models.Book) userDocument {
	doc := userDocument{
		ID:         oid,
		Username:   "reader",
		Email:      "reader@example.com",
		SavedBooks: []bookDocument{},
		CreatedAt:  fixedNow,
	}
	for _, b := range books {
		doc.SavedBooks = append(doc.SavedBooks, newBookDocument(b, fixedNow))
	}
	return doc
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestUserMongoStorage_CreateUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Successful user registration", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		u, err := users.CreateUser(ctx, "reader", "reader@example.com", "password123")
		require.NoError(mt, err)
		assert.NotEmpty(mt, u.ID)
		assert.Equal(mt, "reader@example.com", u.Email)
		assert.Empty(mt, u.Password)
		assert.Equal(mt, 0, u.BookCount())
	})

	mt.Run("Duplicate email", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		_, err := users.CreateUser(ctx, "second", "reader@example.com", "password123")
		require.Error(mt, err)
		assert.ErrorIs(mt, err, apperrors.ErrAlreadyExists)
	})

	mt.Run("Validation runs before insert", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)

		_, err := users.CreateUser(ctx, "bad", "not-an-email", "password123")
		assert.ErrorIs(mt, err, apperrors.ErrValidation)
		assert.Empty(mt, mt.GetAllStartedEvents())
	})
}

func TestUserMongoStorage_GetUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("By id", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(userCursor(mt, toDoc(mt.T, readerWith(oid, duneBook()))))

		u, err := users.GetUserByID(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), u.ID)
		assert.Equal(mt, 1, u.BookCount())
		assert.Equal(mt, []string{"Frank Herbert"}, u.SavedBooks[0].Authors)
	})

	mt.Run("Unknown id", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		mt.AddMockResponses(userCursor(mt))

		_, err := users.GetUserByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, user.ErrUserNotFound)
	})

	mt.Run("Malformed id never reaches the server", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)

		_, err := users.GetUserByID(ctx, "42")
		assert.ErrorIs(mt, err, user.ErrUserNotFound)
		assert.Empty(mt, mt.GetAllStartedEvents())
	})

	mt.Run("By email keeps the hash", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		doc := readerWith(primitive.NewObjectID())
		doc.Password = "$2a$04$hash"
		mt.AddMockResponses(userCursor(mt, toDoc(mt.T, doc)))

		u, err := users.GetUserByEmail(ctx, "reader@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "$2a$04$hash", u.Password)
	})
}

func TestUserMongoStorage_AddSavedBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("New book is pushed and recorded", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			findAndModifyResponse(toDoc(mt.T, readerWith(oid, duneBook()))),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		u, err := users.AddSavedBook(ctx, oid.Hex(), duneBook())
		require.NoError(mt, err)
		assert.Equal(mt, 1, u.BookCount())
		assert.Equal(mt, []string{"findAndModify", "update"}, commandNames(mt))

		record := mt.GetAllStartedEvents()[1].Command
		assert.True(mt, record.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, oid, record.Lookup("updates", "0", "q", "userId").ObjectID())
		assert.Equal(mt, "dune-1", record.Lookup("updates", "0", "q", "bookId").StringValue())
	})

	mt.Run("Identical payload is not pushed twice", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			userCursor(mt, toDoc(mt.T, readerWith(oid, duneBook()))),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		u, err := users.AddSavedBook(ctx, oid.Hex(), duneBook())
		require.NoError(mt, err)
		assert.Equal(mt, 1, u.BookCount())
		// запись в books повторяется как upsert, чтобы довести прерванное сохранение
		assert.Equal(mt, []string{"findAndModify", "find", "update"}, commandNames(mt))
	})

	mt.Run("Failed record write is reported", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			findAndModifyResponse(toDoc(mt.T, readerWith(oid, duneBook()))),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad value"}),
		)

		_, err := users.AddSavedBook(ctx, oid.Hex(), duneBook())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "could not record book")
	})

	mt.Run("Unknown user", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		mt.AddMockResponses(findAndModifyResponse(nil), userCursor(mt))

		_, err := users.AddSavedBook(ctx, primitive.NewObjectID().Hex(), duneBook())
		assert.ErrorIs(mt, err, user.ErrUserNotFound)
		assert.Equal(mt, []string{"findAndModify", "find"}, commandNames(mt))
	})
}

func TestUserMongoStorage_RemoveSavedBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Pulls the entry and deletes records", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			findAndModifyResponse(toDoc(mt.T, readerWith(oid))),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		u, err := users.RemoveSavedBook(ctx, oid.Hex(), "dune-1")
		require.NoError(mt, err)
		assert.Equal(mt, 0, u.BookCount())
		assert.Equal(mt, []string{"findAndModify", "delete"}, commandNames(mt))
	})

	mt.Run("Book not saved", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			userCursor(mt, toDoc(mt.T, readerWith(oid, duneBook()))),
		)

		_, err := users.RemoveSavedBook(ctx, oid.Hex(), "missing")
		require.Error(mt, err)
		assert.ErrorIs(mt, err, user.ErrSavedBookNotFound)
		assert.Equal(mt, "Couldn't find book with this id!", apperrors.MessageOf(err))
	})

	mt.Run("Unknown user", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			userCursor(mt),
		)

		_, err := users.RemoveSavedBook(ctx, primitive.NewObjectID().Hex(), "dune-1")
		assert.ErrorIs(mt, err, user.ErrUserNotFound)
	})

	mt.Run("Leftover records of an interrupted removal are cleaned up", func(mt *mtest.T) {
		users, _ := newMockStorage(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			userCursor(mt, toDoc(mt.T, readerWith(oid))),
		)

		u, err := users.RemoveSavedBook(ctx, oid.Hex(), "dune-1")
		require.NoError(mt, err)
		assert.Equal(mt, 0, u.BookCount())
	})
}
