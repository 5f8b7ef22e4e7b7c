package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/jobtrack/internal/csvio"
	"github.com/kalambet/jobtrack/internal/tracker"
)

const (
	maxRequestBodySize   = 1 << 20 // 1MB
	defaultMaxImportSize = 5 << 20 // 5MB
)

type AppDeps struct {
	State *tracker.State
	Token string
	// MaxImportSize caps a CSV upload in bytes; zero means defaultMaxImportSize.
	MaxImportSize int64
}

// NewAppHandler returns the tracker REST API. Every route except /health
// requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.MaxImportSize <= 0 {
		deps.MaxImportSize = defaultMaxImportSize
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/export/{kind}", handleExport(deps))
		r.Get("/samples/{kind}", handleSample())
		r.Post("/import/{kind}", handleImport(deps))

		r.Get("/{kind}", handleList(deps))
		r.Post("/{kind}", handleSave(deps))
		r.Delete("/{kind}/{id}", handleDelete(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// kindParam resolves the {kind} URL parameter, writing a 404 when it is not
// a known collection.
func kindParam(w http.ResponseWriter, r *http.Request) (tracker.Kind, bool) {
	kind, err := tracker.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
		return "", false
	}
	return kind, true
}

func handleList(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}
		records, err := listRecords(deps.State, kind)
		if err != nil {
			writeTrackerError(w, err, "listing records")
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleSave(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			readError(w, err)
			return
		}

		saved, err := saveRecord(deps.State, kind, body)
		if errors.Is(err, errBadJSON) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err != nil {
			writeTrackerError(w, err, "saving record")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleDelete(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")

		res, err := deps.State.Delete(kind, id)
		if err != nil {
			writeTrackerError(w, err, "deleting record")
			return
		}
		if res.Total() == 0 {
			httpError(w, http.StatusNotFound, "not_found", "%s %q not found", kind, id)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "deleted",
			"removed": res,
		})
	}
}

func handleExport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}
		f, err := deps.State.Export(kind)
		if err != nil {
			writeTrackerError(w, err, "exporting")
			return
		}
		writeCSV(w, f)
	}
}

func handleSample() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}
		f, err := tracker.Sample(kind)
		if err != nil {
			writeTrackerError(w, err, "building sample")
			return
		}
		writeCSV(w, f)
	}
}

func handleImport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, deps.MaxImportSize)
		defer r.Body.Close()
		text, err := readUpload(r)
		if err != nil {
			readError(w, err)
			return
		}

		res, err := deps.State.Import(kind, text)
		if err != nil {
			slog.Warn("import rejected", "kind", kind, "error", err)
			writeTrackerError(w, err, "importing")
			return
		}
		slog.Info("import applied", "kind", kind, "applied", res.Applied, "created", res.Created, "updated", res.Updated)
		writeJSON(w, http.StatusOK, res)
	}
}

// readUpload returns the CSV text of an import request: the "file" part of
// a multipart form, or the raw body otherwise.
func readUpload(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		b, err := io.ReadAll(r.Body)
		return string(b), err
	}

	f, _, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("reading form file: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	return string(b), err
}

func readError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "request body exceeds %d bytes", tooLarge.Limit)
		return
	}
	httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
}

// writeTrackerError maps tracker and CSV errors onto typed API errors.
func writeTrackerError(w http.ResponseWriter, err error, action string) {
	var (
		fe *csvio.FormatError
		ve *tracker.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		httpError(w, http.StatusBadRequest, "format_error", "%v", err)
	case errors.As(err, &ve):
		httpError(w, http.StatusBadRequest, "validation_error", "%v", err)
	case errors.Is(err, tracker.ErrUnknownKind):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%s: %v", action, err)
	}
}

func writeCSV(w http.ResponseWriter, f tracker.File) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, f.Content)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
