package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylesense/stylesense-backend/api/middleware"
	"github.com/stylesense/stylesense-backend/api/responses"
	"github.com/stylesense/stylesense-backend/api/validators"
	"github.com/stylesense/stylesense-backend/internal/outfits"
	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
	"github.com/stylesense/stylesense-backend/pkg/logger"
)

// TogglePublicRequest optionally replaces the tag list when going public.
type TogglePublicRequest struct {
	Tags []string `json:"tags,omitempty"`
}

// OutfitTogglePublic flips an analysis between private and public.
func OutfitTogglePublic(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tags, err := decodeTagsBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visible, err := svc.TogglePublic(r.Context(),
			chi.URLParam(r, "analysisID"),
			middleware.UserIDFromContext(r.Context()),
			tags,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"is_public": visible})
	}
}

// decodeTagsBody reads the optional tag payload. Clients send either a bare
// JSON array of tags or an object {"tags": [...]}; both are accepted, and an
// empty body means no tags.
func decodeTagsBody(r *http.Request) ([]string, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
		}
		return tags, nil
	}

	var body TogglePublicRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return body.Tags, nil
}

// OutfitToggleLike adds or removes the caller's like on an analysis.
func OutfitToggleLike(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return reactionHandler(svc, logg, "liked", func(r *http.Request, svc outfits.Service) (bool, error) {
		return svc.ToggleLike(r.Context(), chi.URLParam(r, "analysisID"), middleware.UserIDFromContext(r.Context()))
	})
}

// OutfitToggleDislike adds or removes the caller's dislike on an analysis.
func OutfitToggleDislike(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return reactionHandler(svc, logg, "disliked", func(r *http.Request, svc outfits.Service) (bool, error) {
		return svc.ToggleDislike(r.Context(), chi.URLParam(r, "analysisID"), middleware.UserIDFromContext(r.Context()))
	})
}

func reactionHandler(svc outfits.Service, logg *logger.Logger, field string, toggle func(*http.Request, outfits.Service) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := toggle(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{field: state})
	}
}

// CommentRequest is the payload for commenting on an analysis.
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// OutfitAddComment appends a comment to an analysis.
func OutfitAddComment(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "outfit service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body CommentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.AddComment(r.Context(),
			chi.URLParam(r, "analysisID"),
			middleware.UserIDFromContext(r.Context()),
			middleware.UsernameFromContext(r.Context()),
			body.Text,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"message": "comment added"})
	}
}

// CommunityFeed returns one page of public analyses.
func CommunityFeed(svc outfits.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.Feed(r.Context(), limit, skip)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
