package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mgpai22/tala/internal/logging"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
)

// bodies above this are rejected before parsing
const maxBodyBytes = 8 << 20

type versionHandler struct {
	store  VersionStore
	logger *logging.Logger
}

type saveRequest struct {
	Subtitles   string            `json:"subtitles"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Complete    bool              `json:"complete"`
}

type saveResponse struct {
	VersionNumber int  `json:"versionNumber"`
	IsComplete    bool `json:"isComplete"`
}

type versionResponse struct {
	store.Version
	IsComplete bool `json:"isComplete"`
}

func health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *versionHandler) list(w http.ResponseWriter, r *http.Request) {
	videoID, lang := chi.URLParam(r, "videoID"), chi.URLParam(r, "lang")

	versions, err := h.store.ListVersions(r.Context(), videoID, lang)
	if err != nil {
		h.logger.Errorw("failed to list versions", "video", videoID, "language", lang, "error", err)
		jsonError(w, "failed to list versions", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, versions, http.StatusOK)
}

func (h *versionHandler) fetch(w http.ResponseWriter, r *http.Request) {
	videoID, lang := chi.URLParam(r, "videoID"), chi.URLParam(r, "lang")

	n := 0
	if param := chi.URLParam(r, "version"); param != "latest" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed <= 0 {
			jsonError(w, "version must be a positive number or \"latest\"", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	v, err := h.store.FetchVersion(r.Context(), videoID, lang, n)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "version not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Errorw("failed to fetch version", "video", videoID, "language", lang, "version", n, "error", err)
		jsonError(w, "failed to fetch version", http.StatusInternalServerError)
		return
	}

	list := subtitle.NewList()
	if err := list.LoadXMLString(v.Subtitles); err != nil {
		h.logger.Warnw("stored version does not parse", "video", videoID, "language", lang, "version", v.Number, "error", err)
	}
	jsonResponse(w, versionResponse{Version: *v, IsComplete: list.IsComplete()}, http.StatusOK)
}

func (h *versionHandler) save(w http.ResponseWriter, r *http.Request) {
	videoID, lang := chi.URLParam(r, "videoID"), chi.URLParam(r, "lang")

	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	list := subtitle.NewList()
	if err := list.LoadXMLString(req.Subtitles); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := list.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	complete := list.IsComplete()
	if req.Complete && !complete {
		jsonError(w, "subtitles are not complete", http.StatusUnprocessableEntity)
		return
	}

	n, err := h.store.SaveVersion(r.Context(), store.SaveRequest{
		VideoID:     videoID,
		Language:    lang,
		Subtitles:   req.Subtitles,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
		Complete:    req.Complete,
	})
	if err != nil {
		h.logger.Errorw("failed to save version", "video", videoID, "language", lang, "error", err)
		jsonError(w, "failed to save version", http.StatusInternalServerError)
		return
	}

	h.logger.Infow("saved version",
		"video", videoID,
		"language", lang,
		"version", n,
		"subtitles", list.Len(),
		"complete", req.Complete,
	)
	jsonResponse(w, saveResponse{VersionNumber: n, IsComplete: complete}, http.StatusCreated)
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
