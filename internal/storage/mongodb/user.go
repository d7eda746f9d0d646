package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

type UserMongoStorage struct {
	db  *DB
	now func() time.Time
}

func NewUserMongoStorage(db *DB) *UserMongoStorage {
	return &UserMongoStorage{db: db, now: time.Now}
}

func (s *UserMongoStorage) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	u, err := user.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	doc := userDocument{
		Username:   u.Username,
		Email:      u.Email,
		Password:   u.Password,
		SavedBooks: []bookDocument{},
		CreatedAt:  u.CreatedAt.Truncate(time.Millisecond),
	}

	res, err := s.db.Users().InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperrors.AlreadyExistsf("user with email %s already exists", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	doc.Password = ""
	return doc.toModel(), nil
}

func (s *UserMongoStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	var doc userDocument
	opts := options.FindOne().SetProjection(publicProjection)
	err = s.db.Users().FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return doc.toModel(), nil
}

func (s *UserMongoStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	err := s.db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}
	return doc.toModel(), nil
}

// AddSavedBook pushes the entry only when no identical payload is embedded yet,
// then records it in the books collection. The record is an upsert keyed on the
// owner and payload, so retrying after a failed record write completes it.
func (s *UserMongoStorage) AddSavedBook(ctx context.Context, userID string, book models.Book) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	entry := newBookDocument(book, s.now())

	var result *models.User
	err = s.db.WithTransaction(ctx, func(ctx context.Context) error {
		filter := bson.M{
			"_id":        oid,
			"savedBooks": bson.M{"$not": bson.M{"$elemMatch": savedPayloadMatch(book)}},
		}
		update := bson.M{"$push": bson.M{"savedBooks": entry}}

		var doc userDocument
		err := s.db.Users().FindOneAndUpdate(ctx, filter, update, updateOptions()).Decode(&doc)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			// либо пользователя нет, либо книга уже сохранена
			u, err := s.GetUserByID(ctx, userID)
			if err != nil {
				return err
			}
			result = u
		case err != nil:
			return fmt.Errorf("could not save book: %w", err)
		default:
			result = doc.toModel()
		}

		return s.recordBook(ctx, oid, book, entry)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *UserMongoStorage) recordBook(ctx context.Context, owner primitive.ObjectID, book models.Book, entry bookDocument) error {
	entry.UserID = owner
	filter := savedPayloadMatch(book)
	filter["userId"] = owner

	opts := options.Update().SetUpsert(true)
	_, err := s.db.Books().UpdateOne(ctx, filter, bson.M{"$setOnInsert": entry}, opts)
	if err != nil {
		return fmt.Errorf("could not record book: %w", err)
	}
	return nil
}

// RemoveSavedBook pulls every entry with bookID and deletes the matching records.
// When nothing was pulled, leftover records of an earlier interrupted removal
// are still cleaned up and count as a successful removal.
func (s *UserMongoStorage) RemoveSavedBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	var result *models.User
	err = s.db.WithTransaction(ctx, func(ctx context.Context) error {
		filter := bson.M{"_id": oid, "savedBooks.bookId": bookID}
		update := bson.M{"$pull": bson.M{"savedBooks": bson.M{"bookId": bookID}}}

		var doc userDocument
		err := s.db.Users().FindOneAndUpdate(ctx, filter, update, updateOptions()).Decode(&doc)
		pulled := err == nil
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("could not remove book: %w", err)
		}

		res, err := s.db.Books().DeleteMany(ctx, bson.M{"userId": oid, "bookId": bookID})
		if err != nil {
			return fmt.Errorf("could not remove book records: %w", err)
		}

		if pulled {
			result = doc.toModel()
			return nil
		}

		u, err := s.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("remove book %s: %w", bookID, user.ErrSavedBookNotFound)
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func updateOptions() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicProjection)
}
