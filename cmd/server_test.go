package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/media-import/internal/config"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		MaxUploadMB:    1,
		RatePerSec:     100,
		Burst:          100,
		AllowedOrigins: []string{"*"},
	}
}

func uploadRequest(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(uploadField, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestServer_Health(t *testing.T) {
	h := newRouter(newTestEnv(t, false), testServerConfig())

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])
}

func TestServer_Import(t *testing.T) {
	h := newRouter(newTestEnv(t, false), testServerConfig())

	rr := serve(h, uploadRequest(t, "/v1/imports", "leads.csv", leadsCSV, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	body := decodeBody(t, rr)
	assert.Equal(t, "leads.csv", body["file_name"])
	summary, ok := body["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, summary["contacts"])
	assert.EqualValues(t, 1, summary["valid_contacts"])
}

func TestServer_ImportCommit(t *testing.T) {
	env := newTestEnv(t, true)
	h := newRouter(env, testServerConfig())

	rr := serve(h, uploadRequest(t, "/v1/imports", "leads.csv", leadsCSV, map[string]string{"commit": "true"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/v1/companies", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var companies []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &companies))
	assert.Len(t, companies, 2)

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/v1/imports?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)

	id, _ := runs[0]["id"].(string)
	require.NotEmpty(t, id)
	rr = serve(h, httptest.NewRequest(http.MethodGet, "/v1/imports/"+id, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_Contacts(t *testing.T) {
	h := newRouter(newTestEnv(t, false), testServerConfig())

	csv := "first_name,last_name,email,title,company\nBob,Ray,bob@acme.com,Media Buyer,Acme\n"
	rr := serve(h, uploadRequest(t, "/v1/imports/contacts", "contacts.csv", csv, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	summary, ok := decodeBody(t, rr)["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, summary["total"])
	assert.EqualValues(t, 1, summary["valid"])
}

func TestServer_UploadErrors(t *testing.T) {
	h := newRouter(newTestEnv(t, false), testServerConfig())

	t.Run("unsupported format", func(t *testing.T) {
		rr := serve(h, uploadRequest(t, "/v1/imports", "notes.txt", "hello", nil))
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["error"], "unsupported")
	})

	t.Run("malformed json", func(t *testing.T) {
		rr := serve(h, uploadRequest(t, "/v1/imports", "bad.json", "{not json", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/imports", strings.NewReader("a,b"))
		req.Header.Set("Content-Type", "text/csv")
		rr := serve(h, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("commit", "true"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/v1/imports", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rr := serve(h, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "file field is required", decodeBody(t, rr)["error"])
	})

	t.Run("oversized upload", func(t *testing.T) {
		big := strings.Repeat("x", 2<<20)
		rr := serve(h, uploadRequest(t, "/v1/imports", "big.csv", big, nil))
		assert.NotEqual(t, http.StatusOK, rr.Code)
	})
}

func TestServer_RateLimit(t *testing.T) {
	sc := testServerConfig()
	sc.RatePerSec = 0.001
	sc.Burst = 1
	h := newRouter(newTestEnv(t, false), sc)

	rr := serve(h, uploadRequest(t, "/v1/imports", "leads.csv", leadsCSV, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h, uploadRequest(t, "/v1/imports", "leads.csv", leadsCSV, nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// reads are not limited
	rr = serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_StoreEndpoints(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		h := newRouter(newTestEnv(t, false), testServerConfig())
		for _, path := range []string{"/v1/imports", "/v1/imports/abc", "/v1/companies"} {
			rr := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotImplemented, rr.Code, path)
		}
	})

	t.Run("unknown import", func(t *testing.T) {
		h := newRouter(newTestEnv(t, true), testServerConfig())
		rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/imports/does-not-exist", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_CORS(t *testing.T) {
	h := newRouter(newTestEnv(t, false), testServerConfig())

	req := httptest.NewRequest(http.MethodOptions, "/v1/imports", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := serve(h, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
