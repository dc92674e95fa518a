package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/media-import/internal/config"
	"github.com/sells-group/media-import/internal/parser"
	"github.com/sells-group/media-import/internal/store"
)

const uploadField = "file"

type apiServer struct {
	env       *pipelineEnv
	maxUpload int64
}

// newRouter builds the upload API. Uploads share one token bucket.
func newRouter(env *pipelineEnv, sc config.ServerConfig) http.Handler {
	s := &apiServer{env: env, maxUpload: int64(sc.MaxUploadMB) << 20}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(sc.RatePerSec), sc.Burst)))
			r.Post("/imports", s.handleImport)
			r.Post("/imports/contacts", s.handleContacts)
		})
		r.Get("/imports", s.handleListImports)
		r.Get("/imports/{id}", s.handleGetImport)
		r.Get("/companies", s.handleListCompanies)
	})
	return r
}

func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *apiServer) handleImport(w http.ResponseWriter, r *http.Request) {
	data, name, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, err := s.env.Pipeline.Run(data, name)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	if st := s.env.Store; st != nil {
		if commit, _ := strconv.ParseBool(r.FormValue("commit")); commit {
			if _, err := st.SaveCompanies(r.Context(), res.ValidCompanies()); err != nil {
				zap.L().Error("serve: save companies failed", zap.String("file", name), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "could not save companies")
				return
			}
		}
		if err := recordRun(r.Context(), st, res); err != nil {
			zap.L().Warn("serve: record run failed", zap.Error(err))
		}
	}

	writeJSONResponse(w, http.StatusOK, res)
}

func (s *apiServer) handleContacts(w http.ResponseWriter, r *http.Request) {
	data, name, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, err := runContacts(r.Context(), s.env, data, name)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

func (s *apiServer) handleListImports(w http.ResponseWriter, r *http.Request) {
	if s.env.Store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.env.Store.ListImports(r.Context(), limit)
	if err != nil {
		zap.L().Error("serve: list imports failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list imports")
		return
	}
	writeJSONResponse(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetImport(w http.ResponseWriter, r *http.Request) {
	if s.env.Store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	run, err := s.env.Store.GetImport(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "import not found")
		return
	}
	if err != nil {
		zap.L().Error("serve: get import failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load import")
		return
	}
	writeJSONResponse(w, http.StatusOK, run)
}

func (s *apiServer) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	if s.env.Store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	companies, err := s.env.Store.ListCompanies(r.Context())
	if err != nil {
		zap.L().Error("serve: list companies failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list companies")
		return
	}
	writeJSONResponse(w, http.StatusOK, companies)
}

// readUpload reads the multipart file field, enforcing the size cap. On
// failure it writes the response and returns ok=false.
func (s *apiServer) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, name string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, "", false
	}

	f, hdr, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return nil, "", false
	}
	defer f.Close() //nolint:errcheck

	data, err = io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return nil, "", false
	}
	return data, hdr.Filename, true
}

func writePipelineError(w http.ResponseWriter, err error) {
	var ufe *parser.UnsupportedFormatError
	if errors.As(err, &ufe) {
		writeError(w, http.StatusUnsupportedMediaType, ufe.Error())
		return
	}
	zap.L().Warn("serve: import failed", zap.Error(err))
	msg := err.Error()
	if i := strings.Index(msg, "\n"); i >= 0 {
		msg = msg[:i]
	}
	writeError(w, http.StatusUnprocessableEntity, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, map[string]string{"error": msg})
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response", zap.Error(err))
	}
}
