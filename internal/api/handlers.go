package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nyberg/lagu/internal/apperr"
	"github.com/nyberg/lagu/internal/models"
	"github.com/nyberg/lagu/internal/notestore"
)

// Handler holds API route handlers over the note store.
type Handler struct {
	store *notestore.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *notestore.Store) *Handler {
	return &Handler{store: store}
}

// pathParam extracts and decodes a chi URL parameter. Filenames may
// carry spaces and arrive percent-encoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetDirectory handles GET /dir. Listing failures degrade to an empty
// result inside the store, so this always answers 200.
func (h *Handler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	loc := r.URL.Query().Get("path")
	writeJSON(w, http.StatusOK, h.store.DirectoryContents(r.Context(), loc))
}

// Navigate handles POST /dir/navigate.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var contents *models.DirectoryContents
	switch req.Action {
	case "into":
		if req.Folder == nil {
			writeJSON(w, http.StatusBadRequest, errorBody("folder is required for action 'into'"))
			return
		}
		contents = h.store.NavigateInto(r.Context(), *req.Folder)
	case "up":
		contents = h.store.NavigateUp(r.Context())
		if contents == nil {
			// Already at the root.
			w.WriteHeader(http.StatusNoContent)
			return
		}
	case "root":
		contents = h.store.NavigateToRoot(r.Context())
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("action must be one of into, up, root"))
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

// GetNote handles GET /notes/{filename}. The store reports every
// failure as a missing note, so the only error answer is 404.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	filename := pathParam(r, "filename")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("filename is required"))
		return
	}
	folder := r.URL.Query().Get("folder")

	note := h.store.GetNote(r.Context(), filename, folder)
	if note == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// SaveNote handles PUT /notes/{filename}.
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	filename := pathParam(r, "filename")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("filename is required"))
		return
	}

	var req SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note := &models.Note{Filename: filename, Content: req.Content}
	saved, err := h.store.SaveNote(r.Context(), note, req.PreviousFilename, req.Folder)
	if err != nil {
		slog.Error("save note failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("save failed"))
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteNote handles DELETE /notes/{filename}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	filename := pathParam(r, "filename")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("filename is required"))
		return
	}
	if err := h.store.DeleteNote(r.Context(), filename, r.URL.Query().Get("folder")); err != nil {
		slog.Error("delete note failed",
			slog.String("filename", filename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("delete failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFolder handles DELETE /folders/{name}.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.store.DeleteFolder(r.Context(), name, r.URL.Query().Get("parent")); err != nil {
		slog.Error("delete folder failed",
			slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("delete failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var result models.BatchResult
	switch {
	case req.Tree != "":
		result = h.store.ImportFromTree(r.Context(), req.Tree)
	case len(req.Files) > 0:
		result = h.store.ImportFiles(r.Context(), req.Files)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("tree or files is required"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Export handles POST /export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	result, dest := h.store.ExportNotes(r.Context(), req.Dest)
	writeJSON(w, http.StatusOK, ExportResponse{BatchResult: result, Dest: dest})
}

// GetLocation handles GET /location.
func (h *Handler) GetLocation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.StorageLocation())
}

// GetRoot handles GET /root.
func (h *Handler) GetRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{Root: h.store.Root()})
}

// SetRoot handles PUT /root.
func (h *Handler) SetRoot(w http.ResponseWriter, r *http.Request) {
	var req SetRootRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.SetRoot(req.Locator)
	writeJSON(w, http.StatusOK, RootResponse{Root: h.store.Root()})
}

// GetPrefs handles GET /prefs.
func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	p := h.store.Prefs()
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorBody("preferences unavailable"))
		return
	}
	ctx := r.Context()
	writeJSON(w, http.StatusOK, PrefsResponse{
		ShowTimestamps:   p.ShowTimestamps(ctx),
		WelcomeCompleted: p.WelcomeCompleted(ctx),
		QuickNote:        p.QuickNote(ctx),
		AutoSaveOnExit:   p.AutoSaveOnExit(ctx),
		FABLeft:          p.FABLeft(ctx),
	})
}

// SetPref handles PUT /prefs/{key}.
func (h *Handler) SetPref(w http.ResponseWriter, r *http.Request) {
	p := h.store.Prefs()
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorBody("preferences unavailable"))
		return
	}

	var req SetPrefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ctx := r.Context()
	key := pathParam(r, "key")

	var err error
	switch key {
	case "quick_note":
		err = p.SetQuickNote(ctx, req.Value)
	case "show_timestamps", "welcome_completed", "auto_save_on_exit", "fab_left":
		v, parseErr := strconv.ParseBool(req.Value)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("value must be a boolean"))
			return
		}
		switch key {
		case "show_timestamps":
			err = p.SetShowTimestamps(ctx, v)
		case "welcome_completed":
			err = p.SetWelcomeCompleted(ctx, v)
		case "auto_save_on_exit":
			err = p.SetAutoSaveOnExit(ctx, v)
		case "fab_left":
			err = p.SetFABLeft(ctx, v)
		}
	default:
		writeJSON(w, http.StatusNotFound, errorBody("unknown preference key"))
		return
	}

	if err != nil {
		if errors.Is(err, apperr.ErrTimeout) {
			writeJSON(w, http.StatusGatewayTimeout, errorBody("preference store timed out"))
			return
		}
		slog.Error("set preference failed",
			slog.String("key", key), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

