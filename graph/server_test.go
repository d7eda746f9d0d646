package graph

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/bookshelf/internal/auth"
	"github.com/VitaminP8/bookshelf/internal/library"
	"github.com/VitaminP8/bookshelf/internal/storage/memory"
	"github.com/VitaminP8/bookshelf/internal/user"
)

type gqlError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	user.PasswordCost = bcrypt.MinCost

	books := memory.NewBookMemoryStorage()
	users := memory.NewUserMemoryStorage(books)
	tokens, err := auth.NewTokenService("test_secret_key_for_jwt", time.Hour)
	require.NoError(t, err)

	resolver := &Resolver{Library: library.New(users, books, tokens)}
	return client.New(auth.Middleware(tokens)(NewHandler(resolver)))
}

func decodeErrors(t *testing.T, raw json.RawMessage) []gqlError {
	t.Helper()
	var errs []gqlError
	require.NoError(t, json.Unmarshal(raw, &errs))
	return errs
}

func TestServer_Flow(t *testing.T) {
	c := newTestClient(t)

	var signup struct {
		AddUser struct {
			Token string
			User  struct {
				ID    string
				Email string
			}
		}
	}
	c.MustPost(`mutation($email: String!, $password: String!) {
		addUser(username: "reader", email: $email, password: $password) { token user { id email } }
	}`, &signup, client.Var("email", "reader@example.com"), client.Var("password", "secret"))
	require.NotEmpty(t, signup.AddUser.Token)
	bearer := client.AddHeader("Authorization", "Bearer "+signup.AddUser.Token)

	t.Run("me without token is unauthenticated", func(t *testing.T) {
		resp, err := c.RawPost(`{ me { id } }`)
		require.NoError(t, err)
		errs := decodeErrors(t, resp.Errors)
		require.Len(t, errs, 1)
		assert.Equal(t, "Not logged in", errs[0].Message)
		assert.Equal(t, "UNAUTHENTICATED", errs[0].Extensions["code"])
	})

	t.Run("save the same book twice", func(t *testing.T) {
		const saveBook = `mutation {
			saveBook(saveBookInput: {bookId: "dune-1", authors: ["Frank Herbert"], description: "Desert planet", title: "Dune"}) {
				bookCount
				savedBooks { bookId title authors }
			}
		}`

		var resp struct {
			SaveBook struct {
				BookCount  int
				SavedBooks []struct {
					BookID  string
					Title   string
					Authors []string
				}
			}
		}
		c.MustPost(saveBook, &resp, bearer)
		c.MustPost(saveBook, &resp, bearer)

		assert.Equal(t, 1, resp.SaveBook.BookCount)
		require.Len(t, resp.SaveBook.SavedBooks, 1)
		assert.Equal(t, "dune-1", resp.SaveBook.SavedBooks[0].BookID)
	})

	t.Run("savedBooks with and without filter", func(t *testing.T) {
		var all struct {
			SavedBooks []struct{ BookID string }
		}
		c.MustPost(`{ savedBooks { bookId } }`, &all)
		assert.Len(t, all.SavedBooks, 1)

		var none struct {
			SavedBooks []struct{ BookID string }
		}
		c.MustPost(`{ savedBooks(authors: ["Jane Doe"]) { bookId } }`, &none)
		assert.Empty(t, none.SavedBooks)
	})

	t.Run("login returns the same user", func(t *testing.T) {
		var resp struct {
			Login struct {
				Token string
				User  struct{ ID string }
			}
		}
		c.MustPost(`mutation { login(email: "reader@example.com", password: "secret") { token user { id } } }`, &resp)
		assert.NotEmpty(t, resp.Login.Token)
		assert.Equal(t, signup.AddUser.User.ID, resp.Login.User.ID)
	})

	t.Run("bad credentials", func(t *testing.T) {
		resp, err := c.RawPost(`mutation { login(email: "reader@example.com", password: "wrong") { token } }`)
		require.NoError(t, err)
		errs := decodeErrors(t, resp.Errors)
		require.Len(t, errs, 1)
		assert.Equal(t, "Incorrect credentials", errs[0].Message)
	})

	t.Run("remove a book that is not saved", func(t *testing.T) {
		resp, err := c.RawPost(`mutation { removeBook(bookId: "missing") { bookCount } }`, bearer)
		require.NoError(t, err)
		errs := decodeErrors(t, resp.Errors)
		require.Len(t, errs, 1)
		assert.Equal(t, "NOT_FOUND", errs[0].Extensions["code"])

		var me struct {
			Me struct{ BookCount int }
		}
		c.MustPost(`{ me { bookCount } }`, &me, bearer)
		assert.Equal(t, 1, me.Me.BookCount)
	})

	t.Run("remove without token", func(t *testing.T) {
		resp, err := c.RawPost(`mutation { removeBook(bookId: "dune-1") { bookCount } }`)
		require.NoError(t, err)
		errs := decodeErrors(t, resp.Errors)
		require.Len(t, errs, 1)
		assert.Equal(t, "You need to be logged in!", errs[0].Message)
	})

	t.Run("remove the book", func(t *testing.T) {
		var resp struct {
			RemoveBook struct{ BookCount int }
		}
		c.MustPost(`mutation { removeBook(bookId: "dune-1") { bookCount } }`, &resp, bearer)
		assert.Equal(t, 0, resp.RemoveBook.BookCount)
	})
}
