package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"croprec/internal/predictor"
	"croprec/internal/registry"
	"croprec/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Models() (map[string]types.FeatureSet, error)
	Features() (map[string]registry.FeatureInfo, error)
	Crops() ([]string, error)
	ModelNames() (map[string]string, error)
	Datasets() ([]string, error)
	Status() types.StatusResponse
	Ready() bool
	Predict(ctx context.Context, modelName string, values map[string]string) (string, error)
}

var _ Service = (*predictor.Service)(nil)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(MetricsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.HealthResponse{Status: "ok"})
	})
	r.Get("/models", catalogHandler(svc.Models))
	r.Get("/features", catalogHandler(svc.Features))
	r.Get("/crops", catalogHandler(svc.Crops))
	r.Get("/models-names", catalogHandler(svc.ModelNames))
	r.Get("/datasets", catalogHandler(func() (types.DatasetsResponse, error) {
		ds, err := svc.Datasets()
		return types.DatasetsResponse{Datasets: ds}, err
	}))
	r.Post("/predict/{modelName}", predictHandler(svc))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

// catalogHandler serves a read-only catalog view as JSON.
func catalogHandler[T any](get func() (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		v, err := get()
		if err != nil {
			status, msg := statusFor(err)
			writeJSONError(w, status, msg)
			logRequest(r, requestLogLevel(r), LevelInfo, "catalog", "", status, start, err)
			return
		}
		writeJSON(w, v)
	}
}

// predictHandler godoc
//
//	@Summary	Predict the crop for one instance
//	@Description	Body is form-encoded, multipart or a JSON object mapping every feature of the model's feature set to a number.
//	@Tags		predict
//	@Accept		x-www-form-urlencoded,mpfd,json
//	@Produce	json
//	@Param		modelName	path		string	true	"Model name, e.g. s1_RF"
//	@Success	200			{object}	types.PredictionResponse
//	@Failure	400			{object}	types.ErrorResponse
//	@Failure	500			{object}	types.ErrorResponse
//	@Failure	503			{object}	types.ErrorResponse
//	@Router		/predict/{modelName} [post]
func predictHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		model := chi.URLParam(r, "modelName")
		lvl := requestLogLevel(r)

		values, err := readValues(w, r)
		if err != nil {
			IncrementRejected("invalid_body")
			writeJSONError(w, http.StatusBadRequest, "invalid_body")
			logRequest(r, lvl, LevelInfo, "predict", model, http.StatusBadRequest, start, err)
			return
		}

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if predictTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, predictTimeout)
			defer tcancel()
		}

		label, err := svc.Predict(ctx, model, values)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status, msg := statusFor(err)
			if status == http.StatusBadRequest {
				IncrementRejected(msg)
			}
			writeJSONError(w, status, msg)
			logRequest(r, lvl, LevelInfo, "predict", model, status, start, err)
			return
		}
		writeJSON(w, types.PredictionResponse{Prediction: label})
		logRequest(r, lvl, LevelInfo, "predict", model, http.StatusOK, start, nil)
	}
}

// readValues collects feature values from a JSON object, multipart form or
// urlencoded form body. Repeated form keys keep their first value.
func readValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var body map[string]any
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		out := make(map[string]string, len(body))
		for k, v := range body {
			switch t := v.(type) {
			case nil:
				out[k] = ""
			case string:
				out[k] = t
			case json.Number:
				out[k] = t.String()
			default:
				out[k] = fmt.Sprint(t)
			}
		}
		return out, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("parse multipart: %w", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
	}
	out := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
