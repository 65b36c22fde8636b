package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylesense/stylesense-backend/api/middleware"
	"github.com/stylesense/stylesense-backend/api/responses"
	"github.com/stylesense/stylesense-backend/api/validators"
	"github.com/stylesense/stylesense-backend/internal/closet"
	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
)

// ClosetCreate adds an item to the caller's closet.
func ClosetCreate(svc closet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "closet service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body closet.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ClosetList returns the caller's closet newest first.
func ClosetList(svc closet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "closet service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ClosetGet returns one of the caller's items.
func ClosetGet(svc closet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "closet service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), chi.URLParam(r, "itemID"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ClosetUpdate applies a partial update to one of the caller's items.
func ClosetUpdate(svc closet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "closet service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body closet.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), chi.URLParam(r, "itemID"), middleware.UserIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ClosetDelete removes one of the caller's items.
func ClosetDelete(svc closet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "closet service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.Delete(r.Context(), chi.URLParam(r, "itemID"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
