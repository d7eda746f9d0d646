package mongodb

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/VitaminP8/bookshelf/models"
)

type userDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Email      string             `bson:"email"`
	Password   string             `bson:"password,omitempty"`
	SavedBooks []bookDocument     `bson:"savedBooks"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// bookDocument is used both for entries embedded in users.savedBooks
// (no _id or userId) and for the books collection.
type bookDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId,omitempty"`
	BookID      string             `bson:"bookId"`
	Authors     []string           `bson:"authors"`
	Description string             `bson:"description"`
	Title       string             `bson:"title"`
	Image       string             `bson:"image"`
	Link        string             `bson:"link"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// publicProjection hides the password hash and the version key.
var publicProjection = bson.M{"password": 0, "__v": 0}

func newBookDocument(b models.Book, createdAt time.Time) bookDocument {
	authors := slices.Clone(b.Authors)
	if authors == nil {
		authors = []string{}
	}
	return bookDocument{
		BookID:      b.BookID,
		Authors:     authors,
		Description: b.Description,
		Title:       b.Title,
		Image:       b.Image,
		Link:        b.Link,
		// mongo keeps millisecond precision
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func (d *bookDocument) toModel() models.Book {
	b := models.Book{
		BookID:      d.BookID,
		Authors:     slices.Clone(d.Authors),
		Description: d.Description,
		Title:       d.Title,
		Image:       d.Image,
		Link:        d.Link,
		CreatedAt:   d.CreatedAt,
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if !d.UserID.IsZero() {
		b.UserID = d.UserID.Hex()
	}
	return b
}

func (d *userDocument) toModel() *models.User {
	u := &models.User{
		ID:         d.ID.Hex(),
		Username:   d.Username,
		Email:      d.Email,
		Password:   d.Password,
		SavedBooks: make([]models.Book, 0, len(d.SavedBooks)),
		CreatedAt:  d.CreatedAt,
	}
	for i := range d.SavedBooks {
		u.SavedBooks = append(u.SavedBooks, d.SavedBooks[i].toModel())
	}
	return u
}

// savedPayloadMatch matches an embedded saved entry with exactly b's content.
func savedPayloadMatch(b models.Book) bson.M {
	doc := newBookDocument(b, time.Time{})
	return bson.M{
		"bookId":      doc.BookID,
		"authors":     doc.Authors,
		"description": doc.Description,
		"title":       doc.Title,
		"image":       doc.Image,
		"link":        doc.Link,
	}
}

func bookFilter(f models.BookFilter) bson.M {
	if f.Authors == nil {
		return bson.M{}
	}
	return bson.M{"authors": f.Authors}
}
