package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"emotion-prep-go/internal/config"
	"emotion-prep-go/internal/logger"
	"emotion-prep-go/internal/pipeline"
	"emotion-prep-go/internal/processor"
	"emotion-prep-go/internal/types"
)

func main() {
	log := logger.New()
	cfg, err := config.Load() // loads .env
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.WithField("service", "emotion-prep-go").WithField("bounds", cfg.Bounds.String()).Info("starting service")

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(pipeline.New(), cfg.Bounds),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func newMux(p *pipeline.Pipeline, defaults types.Bounds) *http.ServeMux {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/clean", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "clean")
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.Header().Set("Allow", "GET, POST")
			writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed", Code: "method_not_allowed"})
			return
		}

		req, err := decodeCleanRequest(r)
		if err != nil {
			reqLog.WithField("error", err.Error()).Warn("bad request")
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error(), Code: "bad_request"})
			return
		}
		b := defaults
		if req.MinLength != nil {
			b.Min = *req.MinLength
		}
		if req.MaxLength != nil {
			b.Max = *req.MaxLength
		}

		res, err := processor.CleanText(p, req.Text, b)
		reqLog = reqLog.WithField("duration_ms", res.DurationMs).WithField("bounds", b.String())
		if err != nil {
			status, body := errorBody(err)
			reqLog.WithField("error", err.Error()).WithField("status", status).Info("text rejected")
			writeJSON(w, status, body)
			return
		}
		reqLog.WithField("length", res.Length).Info("text cleaned")
		writeJSON(w, http.StatusOK, res)
	})

	return mux
}

func decodeCleanRequest(r *http.Request) (types.CleanRequest, error) {
	var req types.CleanRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
	default:
		q := r.URL.Query()
		req.Text = q.Get("text")
		for name, dst := range map[string]**int{"min_length": &req.MinLength, "max_length": &req.MaxLength} {
			v := q.Get(name)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, fmt.Errorf("%s must be an integer, got %q", name, v)
			}
			*dst = &n
		}
	}
	return req, nil
}

func errorBody(err error) (int, types.ErrorResponse) {
	body := types.ErrorResponse{Error: err.Error()}
	var lerr *pipeline.LengthOutOfRangeError
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		body.Code = "empty_input"
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &lerr):
		body.Code = "length_out_of_range"
		body.Length = &lerr.Length
		body.Bounds = &types.Bounds{Min: lerr.Min, Max: lerr.Max}
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, pipeline.ErrInvalidBounds):
		body.Code = "invalid_bounds"
		return http.StatusBadRequest, body
	}
	body.Code = "internal"
	return http.StatusInternalServerError, body
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
