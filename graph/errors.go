package graph

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
)

// ErrorPresenter exposes domain errors with their code under extensions.code.
// Internal causes are not leaked; anything else is presented as gqlgen does by default.
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return gqlErr
	}

	gqlErr.Message = appErr.Message
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]interface{}{}
	}
	gqlErr.Extensions["code"] = string(appErr.Code)
	return gqlErr
}
