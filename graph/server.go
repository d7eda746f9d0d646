package graph

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"

	"github.com/VitaminP8/bookshelf/graph/generated"
)

// NewHandler creates the GraphQL HTTP handler for the resolver.
func NewHandler(resolver *Resolver) http.Handler {
	srv := handler.NewDefaultServer(generated.NewExecutableSchema(generated.Config{
		Resolvers: resolver,
	}))
	srv.SetErrorPresenter(ErrorPresenter)
	return srv
}

// NewPlaygroundHandler creates the GraphQL playground page.
func NewPlaygroundHandler(endpoint string) http.Handler {
	return playground.Handler("Bookshelf GraphQL", endpoint)
}
