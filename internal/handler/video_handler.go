package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"edushare-server/internal/middleware"
	"edushare-server/internal/model"
	"edushare-server/internal/service"
	"edushare-server/pkg/apierror"
)

type VideoHandler struct {
	service *service.VideoService
}

func NewVideoHandler(service *service.VideoService) *VideoHandler {
	return &VideoHandler{service: service}
}

// OwnerResolver adapts the video service into the ownership guard.
func (h *VideoHandler) OwnerResolver() middleware.OwnerResolver {
	return func(r *http.Request) (string, error) {
		return h.service.OwnerID(r.Context(), chi.URLParam(r, "id"))
	}
}

func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := requireClaims(w, r.Context())
	if !ok {
		return
	}

	var payload model.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	video, err := h.service.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, video, nil)
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	videos, err := h.service.List(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.VideoList{Videos: videos}, nil)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, nil)
}

func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	video, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, nil)
}

func (h *VideoHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r.Context())
	if !ok {
		return
	}

	video, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, nil)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
