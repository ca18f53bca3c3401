package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/pipeline"
)

var servePort int

// tierHeader carries the caller's subscription tier, set by the upstream
// auth layer.
const tierHeader = "X-Subscription-Tier"

const (
	maxBodyBytes = 5 << 20
	maxBatchSize = 1000
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if cfg.Server.AllowTierOverride {
			zap.L().Warn("tier override enabled: ?pro=true is honored on every request")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env.Pipeline, cfg.Server.AllowTierOverride),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// service is the pipeline surface the API exposes. *pipeline.Pipeline
// satisfies it.
type service interface {
	ValidateLeads(ctx context.Context, leads []model.Lead, opts pipeline.Options) ([]model.ValidatedLead, error)
	SearchProperties(ctx context.Context, opts pipeline.SearchOptions) ([]model.PropertyCandidate, error)
	GetPropertyDetails(ctx context.Context, opts pipeline.DetailOptions) (*model.PropertyRecord, error)
	BatchValidateProperties(ctx context.Context, refs []model.PropertyRef, opts pipeline.Options) ([]model.PropertyValidation, error)
	GetCounties(includeComing bool) []model.JurisdictionSummary
	GetCountiesByState() map[string][]model.JurisdictionSummary
}

type validateRequest struct {
	Leads            []model.Lead `json:"leads"`
	IncludeDocuments bool         `json:"include_documents"`
}

type searchRequest struct {
	JurisdictionID string `json:"jurisdiction_id"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
	OwnerName      string `json:"owner_name"`
}

type detailsRequest struct {
	JurisdictionID string `json:"jurisdiction_id"`
	ExternalID     string `json:"external_id"`
}

type batchRequest struct {
	Properties []model.PropertyRef `json:"properties"`
}

// buildRouter mounts the API. allowTierOverride honors ?pro=true in addition
// to the tier header.
func buildRouter(svc service, allowTierOverride bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", tierHeader},
		MaxAge:         300,
	}))

	isPro := func(req *http.Request) bool {
		if strings.EqualFold(strings.TrimSpace(req.Header.Get(tierHeader)), "pro") {
			return true
		}
		return allowTierOverride && req.URL.Query().Get("pro") == "true"
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/leads/validate", func(w http.ResponseWriter, req *http.Request) {
			var body validateRequest
			if !decode(w, req, &body) {
				return
			}
			if len(body.Leads) > maxBatchSize {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d leads per request", maxBatchSize))
				return
			}
			out, err := svc.ValidateLeads(req.Context(), body.Leads, pipeline.Options{
				IsPro:            isPro(req),
				IncludeDocuments: body.IncludeDocuments,
			})
			if err != nil {
				writePipelineError(w, err)
				return
			}
			writeResponse(w, http.StatusOK, map[string]any{"leads": out})
		})

		r.Post("/properties/search", func(w http.ResponseWriter, req *http.Request) {
			var body searchRequest
			if !decode(w, req, &body) {
				return
			}
			out, err := svc.SearchProperties(req.Context(), pipeline.SearchOptions{
				JurisdictionID: body.JurisdictionID,
				Address:        body.Address,
				City:           body.City,
				State:          body.State,
				Zip:            body.Zip,
				OwnerName:      body.OwnerName,
				IsPro:          isPro(req),
			})
			if err != nil {
				writePipelineError(w, err)
				return
			}
			if out == nil {
				out = []model.PropertyCandidate{}
			}
			writeResponse(w, http.StatusOK, map[string]any{"properties": out})
		})

		r.Post("/properties/details", func(w http.ResponseWriter, req *http.Request) {
			var body detailsRequest
			if !decode(w, req, &body) {
				return
			}
			rec, err := svc.GetPropertyDetails(req.Context(), pipeline.DetailOptions{
				JurisdictionID: body.JurisdictionID,
				ExternalID:     body.ExternalID,
				IsPro:          isPro(req),
			})
			if err != nil {
				writePipelineError(w, err)
				return
			}
			writeResponse(w, http.StatusOK, rec)
		})

		r.Post("/properties/batch", func(w http.ResponseWriter, req *http.Request) {
			var body batchRequest
			if !decode(w, req, &body) {
				return
			}
			if len(body.Properties) > maxBatchSize {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d properties per request", maxBatchSize))
				return
			}
			out, err := svc.BatchValidateProperties(req.Context(), body.Properties, pipeline.Options{IsPro: isPro(req)})
			if err != nil {
				writePipelineError(w, err)
				return
			}
			writeResponse(w, http.StatusOK, map[string]any{"properties": out})
		})

		r.Get("/counties", func(w http.ResponseWriter, req *http.Request) {
			includeComing := req.URL.Query().Get("include_coming") == "true"
			writeResponse(w, http.StatusOK, map[string]any{"counties": svc.GetCounties(includeComing)})
		})

		r.Get("/counties/by-state", func(w http.ResponseWriter, _ *http.Request) {
			writeResponse(w, http.StatusOK, map[string]any{"states": svc.GetCountiesByState()})
		})
	})

	return r
}

func decode(w http.ResponseWriter, req *http.Request, v any) bool {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writePipelineError maps caller errors to status codes.
func writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, pipeline.ErrInvalidInput):
		status = http.StatusBadRequest
	case eris.Is(err, pipeline.ErrUnsupported):
		status = http.StatusNotFound
	case eris.Is(err, pipeline.ErrTierRequired):
		status = http.StatusForbidden
	case eris.Is(err, pipeline.ErrComingSoon):
		status = http.StatusNotImplemented
	case eris.Is(err, context.Canceled), eris.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]string{"error": msg})
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
