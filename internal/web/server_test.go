package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/locsort/internal/config"
	"github.com/JonMunkholm/locsort/internal/core"
	"github.com/JonMunkholm/locsort/internal/history"
	"github.com/JonMunkholm/locsort/internal/tableio"
)

const shelfCSV = "title,call_number\n" +
	"Programming,QA76.73.C15 S73 2000\n" +
	"Poems,PS3566 A1\n" +
	"Older edition,QA76.73.C15 S73 1996\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Sort: config.SortConfig{
			DefaultColumn: "call_number",
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   100 * time.Millisecond,
			Timeout:       time.Minute,
		},
		History:  config.HistoryConfig{Backend: "memory", Capacity: 10, ListLimit: 10},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	svc := core.NewService(history.NewMemoryStore(10), cfg)
	s := NewServer(svc, cfg)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

// uploadRequest builds a multipart POST to /api/sort.
func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(content)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/sort", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body is not JSON: %v (%q)", err, rec.Body.String())
	}
	return e
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `action="/api/sort"`) || !strings.Contains(body, `value="call_number"`) {
		t.Errorf("index page missing form: %s", body)
	}
}

func TestSort_CSV(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, uploadRequest(t, "shelf.csv", []byte(shelfCSV), map[string]string{"column": "call_number"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	want := "title,call_number\n" +
		"Poems,PS3566 A1\n" +
		"Older edition,QA76.73.C15 S73 1996\n" +
		"Programming,QA76.73.C15 S73 2000\n"
	if rec.Body.String() != want {
		t.Errorf("body =\n%s\nwant\n%s", rec.Body.String(), want)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "shelf-sorted.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Header().Get("X-Run-ID") == "" {
		t.Error("X-Run-ID missing")
	}
	if rec.Header().Get("X-Sort-Rows") != "3" {
		t.Errorf("X-Sort-Rows = %q, want 3", rec.Header().Get("X-Sort-Rows"))
	}
}

func TestSort_XLSXOutput(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, uploadRequest(t, "shelf.csv", []byte(shelfCSV), map[string]string{"output": "xlsx"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}

	got, err := tableio.Read(rec.Body, tableio.ReadOptions{Format: tableio.FormatXLSX})
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if len(got.Rows) != 3 || got.Rows[0][0] != "Poems" {
		t.Errorf("rows = %v", got.Rows)
	}
}

func TestSort_ColumnNotFound(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, uploadRequest(t, "shelf.csv", []byte(shelfCSV), map[string]string{"column": "callnum"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "COL001" {
		t.Errorf("code = %q, want COL001", e.Code)
	}
}

func TestSort_ColumnNotFoundHTML(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := uploadRequest(t, "shelf.csv", []byte(shelfCSV), map[string]string{"column": "callnum"})
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := serve(s, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "COL001") {
		t.Errorf("body missing code: %s", rec.Body.String())
	}
}

func TestSort_BadUploads(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		maxSize    int64
		wantStatus int
		wantCode   string
	}{
		{"missing file", "", "", 1 << 20, http.StatusBadRequest, "FILE004"},
		{"unsupported type", "scan.pdf", "%PDF", 1 << 20, http.StatusBadRequest, "FILE003"},
		{"empty file", "empty.csv", "", 1 << 20, http.StatusBadRequest, "FILE005"},
		{"not a workbook", "book.xlsx", "plain text", 1 << 20, http.StatusBadRequest, "FILE006"},
		{"too large", "big.csv", strings.Repeat("x", 64), 16, http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Sort.MaxFileSize = tt.maxSize
			s := newTestServer(t, cfg)

			rec := serve(s, uploadRequest(t, tt.filename, []byte(tt.content), nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if e := decodeError(t, rec); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestPreviewKeys(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := strings.NewReader(`{"call_numbers":["QA 76.73 .C15","PS3566 A1"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/keys", body)
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Keys []struct {
			Normalized string `json:"normalized"`
			Parsed     bool   `json:"parsed"`
			Key        string `json:"key"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Keys) != 2 {
		t.Fatalf("keys = %d, want 2", len(resp.Keys))
	}
	if resp.Keys[0].Normalized != "QA76.73.C15" || !resp.Keys[0].Parsed {
		t.Errorf("first = %+v", resp.Keys[0])
	}
	if resp.Keys[1].Key != "PS 3566000A00001000000000" {
		t.Errorf("second key = %q", resp.Keys[1].Key)
	}
}

func TestPreviewKeys_BadJSON(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/keys", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "REQ001" {
		t.Errorf("code = %q, want REQ001", e.Code)
	}
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, testConfig())

	serve(s, uploadRequest(t, "one.csv", []byte(shelfCSV), nil))
	serve(s, uploadRequest(t, "two.csv", []byte(shelfCSV), map[string]string{"column": "nope"}))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(resp.Runs))
	}
	if resp.Runs[0].Source != "two.csv" || resp.Runs[0].Status != history.StatusFailed {
		t.Errorf("newest run = %+v", resp.Runs[0])
	}
	if resp.Runs[1].Source != "one.csv" || resp.Runs[1].Status != history.StatusSucceeded {
		t.Errorf("older run = %+v", resp.Runs[1])
	}

	bad := serve(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil))
	if bad.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", bad.Code)
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Jobs.MaxConcurrent != 2 || resp.Jobs.Available != 2 || resp.DefaultColumn != "call_number" {
		t.Errorf("status = %+v", resp)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-API-Key", "secret")
	if rec := serve(s, req); rec.Code != http.StatusOK {
		t.Errorf("with key status = %d, want 200", rec.Code)
	}

	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("index should not need a key, status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, cfg)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if e := decodeError(t, last); e.Code != "RATE001" {
		t.Errorf("code = %q, want RATE001", e.Code)
	}
}

func TestSortedFileName(t *testing.T) {
	tests := []struct {
		in   string
		f    tableio.Format
		want string
	}{
		{"items.csv", tableio.FormatCSV, "items-sorted.csv"},
		{`C:\exports\items.xlsx`, tableio.FormatCSV, "items-sorted.csv"},
		{"/tmp/holdings.tsv", tableio.FormatXLSX, "holdings-sorted.xlsx"},
		{"", tableio.FormatCSV, "table-sorted.csv"},
	}
	for _, tt := range tests {
		if got := sortedFileName(tt.in, tt.f); got != tt.want {
			t.Errorf("sortedFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if ok, _ := rl.allow("192.0.2.1"); !ok {
		t.Fatal("first request refused")
	}
	ok, retry := rl.allow("192.0.2.1")
	if ok {
		t.Fatal("second request allowed")
	}
	if retry != time.Minute {
		t.Errorf("retry = %v, want 1m", retry)
	}
	if ok, _ := rl.allow("192.0.2.2"); !ok {
		t.Error("other client refused")
	}

	now = now.Add(time.Minute)
	if ok, _ := rl.allow("192.0.2.1"); !ok {
		t.Error("request after window refused")
	}
}
