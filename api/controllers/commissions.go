package controllers

import (
	"net/http"
	"strings"

	"github.com/arcacommerce/arca-backend/api/responses"
	"github.com/arcacommerce/arca-backend/api/validators"
	"github.com/arcacommerce/arca-backend/internal/commissions"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

func CommissionList(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "commission")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListForBeneficiary(r.Context(), actor, userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CommissionSummary returns a beneficiary's totals grouped by status.
func CommissionSummary(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "commission")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func AdminCommissionList(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "commission")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		beneficiaryID, err := validators.ParseOptionalUUIDQuery(r, "beneficiary_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListAll(r.Context(), actor, commissions.ListAllInput{
			Params:        params,
			Status:        strings.TrimSpace(r.URL.Query().Get("status")),
			BeneficiaryID: beneficiaryID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
