package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/invoiceflow/importer/internal/invoice"
	"github.com/invoiceflow/importer/internal/logging"
	"github.com/invoiceflow/importer/internal/store"
)

// ImportResponse is the body returned by a successful import.
type ImportResponse struct {
	ImportID uuid.UUID       `json:"import_id"`
	Filename string          `json:"filename"`
	Result   *invoice.Result `json:"result"`
}

// ImportDetailResponse pairs an import record with its warnings.
type ImportDetailResponse struct {
	Import   *store.ImportRecord `json:"import"`
	Warnings []invoice.Warning   `json:"warnings"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImport accepts a multipart upload ("file" field), runs the import
// engine on it, and persists the result.
//
// A structural failure (empty file, undecodable bytes, no recognizable
// headers) is a 422; files that import with warnings are a 201 with the
// warnings in the body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errors.New(`missing multipart field "file"`), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	filename := filepath.Base(header.Filename)
	log := logging.WithFields(r.Context(), "file", filename, "size", len(data))
	log.Info("import started")

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	result, err := s.engine.Import(ctx, data, filename)
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	importID, err := s.db.SaveImport(ctx, filename, result)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	log.Info("import saved",
		"import_id", importID,
		"invoices", len(result.Invoices),
		"warnings", len(result.Warnings),
	)

	writeJSON(w, r, http.StatusCreated, ImportResponse{
		ImportID: importID,
		Filename: filename,
		Result:   result,
	})
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.ListImports(r.Context(), queryLimit(r))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.ImportRecord{}
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rec, warnings, err := s.db.GetImport(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if warnings == nil {
		warnings = []invoice.Warning{}
	}
	writeJSON(w, r, http.StatusOK, ImportDetailResponse{Import: rec, Warnings: warnings})
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.db.ListInvoices(r.Context(), queryLimit(r))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if invoices == nil {
		invoices = []*invoice.Draft{}
	}
	writeJSON(w, r, http.StatusOK, invoices)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	inv, err := s.db.GetInvoice(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, inv)
}

// queryLimit parses an optional ?limit= parameter; 0 means the store default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
