package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylesense/stylesense-backend/api/middleware"
	"github.com/stylesense/stylesense-backend/api/responses"
	"github.com/stylesense/stylesense-backend/api/validators"
	"github.com/stylesense/stylesense-backend/internal/outfits"
	"github.com/stylesense/stylesense-backend/internal/vision"
	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
)

// multipartMemoryLimit bounds how much of the upload is buffered in memory
// before spilling to disk. The size cap itself is enforced in the service.
const multipartMemoryLimit = 10 << 20

// multipartOverhead leaves room for boundaries and form fields beyond the
// image itself when bounding the request body.
const multipartOverhead = 64 << 10

// OutfitAnalyze accepts a multipart upload with optional occasion and
// weather fields and runs the analysis pipeline. Request bodies beyond
// maxUploadBytes plus form overhead are cut off mid-read.
func OutfitAnalyze(svc outfits.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		analysis, err := svc.Analyze(r.Context(), outfits.AnalyzeParams{
			UserID:   middleware.UserIDFromContext(r.Context()),
			File:     file,
			Filename: header.Filename,
			Occasion: r.FormValue("occasion"),
			Weather:  r.FormValue("weather"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, analysis)
	}
}

// OutfitGet returns one of the caller's analyses.
func OutfitGet(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		analysis, err := svc.Get(r.Context(), chi.URLParam(r, "analysisID"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, analysis)
	}
}

// OutfitList returns one page of the caller's analyses.
func OutfitList(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, skip, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), limit, skip)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// OutfitDelete removes one of the caller's analyses.
func OutfitDelete(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.Delete(r.Context(), chi.URLParam(r, "analysisID"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "analysis deleted"})
	}
}

// ChatRequest is the payload for a stylist chat turn.
type ChatRequest struct {
	Message string               `json:"message" validate:"required"`
	History []vision.ChatMessage `json:"history" validate:"dive"`
}

// OutfitChat forwards a chat turn about one analysis to the stylist model.
func OutfitChat(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ChatRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.Chat(r.Context(),
			chi.URLParam(r, "analysisID"),
			middleware.UserIDFromContext(r.Context()),
			body.Message,
			body.History,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": reply})
	}
}

func paginationFromQuery(r *http.Request) (int, int, error) {
	limit, err := validators.QueryInt(r, "limit", 50)
	if err != nil {
		return 0, 0, err
	}
	skip, err := validators.QueryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, skip, nil
}
