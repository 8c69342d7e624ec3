package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/transcriptr/internal/export"
	"github.com/dgallion1/transcriptr/internal/parser"
	"github.com/dgallion1/transcriptr/internal/storage"
)

func (s *Server) indexPage(errMsg string) pageData {
	exts := make([]string, 0, len(parser.SupportedExtensions))
	for ext := range parser.SupportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return pageData{
		Page:    "index",
		Title:   "Transcript to spreadsheet",
		Error:   errMsg,
		Accept:  strings.Join(exts, ","),
		Format:  string(s.cfg.ExportFormat),
		Formats: []string{string(export.FormatCSV), string(export.FormatXLSX)},
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, s.indexPage(""))
}

// handleUpload converts the upload synchronously and redirects to the
// success page.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, err := s.readUpload(w, r)
	if err != nil {
		code := uploadStatus(err)
		if code == http.StatusInternalServerError {
			s.log.Error("upload failed", "error", err)
		}
		renderPage(w, code, s.indexPage(err.Error()))
		return
	}

	stored, err := s.save(u)
	if err != nil {
		s.log.Error("upload failed", "error", err)
		renderPage(w, http.StatusInternalServerError, s.indexPage("could not store the upload"))
		return
	}

	conv, err := s.converter.Convert(r.Context(), stored, u.data, u.format)
	if err != nil {
		s.log.Warn("conversion failed", "upload", stored, "error", err)
		renderPage(w, http.StatusUnprocessableEntity, s.indexPage("could not read a transcript from "+u.filename+": "+err.Error()))
		return
	}

	s.log.Info("transcript converted",
		"upload", stored,
		"output", conv.OutputName,
		"records", len(conv.Records),
		"content_hash", conv.ContentHash)
	http.Redirect(w, r, successURL(conv.OutputName), http.StatusSeeOther)
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	format, err := export.ParseFormat(filepath.Ext(name))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, _, err := s.store.OpenOutput(name)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("open output failed", "output", name, "error", err)
		http.Error(w, "failed to open export", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	records, err := export.Read(f, format)
	if err != nil {
		s.log.Error("read output failed", "output", name, "error", err)
		http.Error(w, "failed to read export", http.StatusInternalServerError)
		return
	}

	body, err := renderMarkdown(successMarkdown(name, records))
	if err != nil {
		s.log.Error("render failed", "output", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	renderPage(w, http.StatusOK, pageData{Page: "success", Title: "Extraction complete", Body: body})
}

// handleDownload serves an export as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	f, info, err := s.store.OpenOutput(name)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("open output failed", "output", name, "error", err)
		http.Error(w, "failed to open export", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if format, err := export.ParseFormat(filepath.Ext(name)); err == nil {
		w.Header().Set("Content-Type", format.ContentType())
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}
