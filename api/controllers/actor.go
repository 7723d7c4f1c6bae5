package controllers

import (
	"net/http"

	"github.com/arcacommerce/arca-backend/api/middleware"
	"github.com/arcacommerce/arca-backend/api/responses"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	pkgerrors "github.com/arcacommerce/arca-backend/pkg/errors"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (auth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return auth.Actor{}, false
	}
	return actor, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, name+" service unavailable"))
}
