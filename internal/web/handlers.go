package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JonMunkholm/locsort/internal/callnumber"
	"github.com/JonMunkholm/locsort/internal/core"
	"github.com/JonMunkholm/locsort/internal/history"
	"github.com/JonMunkholm/locsort/internal/logging"
	"github.com/JonMunkholm/locsort/internal/tableio"
	"github.com/JonMunkholm/locsort/internal/web/templates"
)

const (
	// multipart framing allowed on top of the file itself
	multipartOverhead = 1 << 20

	maxKeysBody    = 1 << 20
	maxKeysPerCall = 1000

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runs, err := s.service.History(ctx, 0)
	if err != nil {
		logging.FromContext(ctx).Warn("index: history unavailable", "error", err)
		runs = []history.Run{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = templates.Index(templates.IndexParams{
		DefaultColumn: s.service.DefaultColumn(),
		MaxFileSizeMB: s.cfg.Sort.MaxFileSize >> 20,
		Runs:          runs,
	}).Render(ctx, w)
	if err != nil {
		logging.FromContext(ctx).Warn("render index", "error", err)
	}
}

// handleSort accepts a multipart upload (file, column, sheet, output) and
// responds with the sorted table as an attachment.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Sort.MaxFileSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, uploadError(err))
		return
	}
	defer file.Close()

	if header.Size > s.cfg.Sort.MaxFileSize {
		s.respondError(w, r, fmt.Errorf("%w: %d bytes exceeds %d", errFileTooLarge, header.Size, s.cfg.Sort.MaxFileSize))
		return
	}

	outFormat, err := outputFormat(r.FormValue("output"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req := core.SortRequest{
		Source:       header.Filename,
		Column:       strings.TrimSpace(r.FormValue("column")),
		Sheet:        r.FormValue("sheet"),
		OutputFormat: outFormat,
	}

	var buf bytes.Buffer
	res, err := s.service.SortStream(ctx, req, file, &buf)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if outFormat == tableio.FormatXLSX {
		contentType = xlsxContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": sortedFileName(header.Filename, outFormat),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", res.RunID.String())
	w.Header().Set("X-Sort-Column", res.Column)
	w.Header().Set("X-Sort-Rows", strconv.Itoa(res.Stats.Rows))
	w.Header().Set("X-Sort-Fallback", strconv.Itoa(res.Stats.Fallback))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(ctx).Warn("write sorted output", "error", err)
	}
}

func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return errNoFile
	case errors.As(err, &maxBytes):
		return fmt.Errorf("%w: %w", errFileTooLarge, err)
	default:
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
}

func outputFormat(v string) (tableio.Format, error) {
	switch strings.ToLower(v) {
	case "", "csv":
		return tableio.FormatCSV, nil
	case "xlsx":
		return tableio.FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: output %q", tableio.ErrUnsupportedFormat, v)
	}
}

// sortedFileName turns "C:\exports\items.xlsx" into "items-sorted.csv".
func sortedFileName(upload string, f tableio.Format) string {
	base := path.Base(strings.ReplaceAll(upload, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "table"
	}
	return base + "-sorted." + string(f)
}

type keysRequest struct {
	CallNumbers []string `json:"call_numbers"`
}

type keysResponse struct {
	Keys []callnumber.Explanation `json:"keys"`
}

func (s *Server) handlePreviewKeys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxKeysBody))
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if len(req.CallNumbers) > maxKeysPerCall {
		s.respondError(w, r, fmt.Errorf("%w: at most %d call numbers per request", errBadRequest, maxKeysPerCall))
		return
	}

	writeJSON(w, r, http.StatusOK, keysResponse{Keys: s.service.PreviewKeys(req.CallNumbers)})
}

type historyResponse struct {
	Runs []history.Run `json:"runs"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, r, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
		limit = n
	}

	runs, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, historyResponse{Runs: runs})
}

type statusResponse struct {
	Jobs          core.LimiterStatus `json:"jobs"`
	DefaultColumn string             `json:"default_column"`
	MaxFileSize   int64              `json:"max_file_size"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, statusResponse{
		Jobs:          s.service.LimiterStatus(),
		DefaultColumn: s.service.DefaultColumn(),
		MaxFileSize:   s.cfg.Sort.MaxFileSize,
	})
}
