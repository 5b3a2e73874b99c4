// Package webhook exposes the lineage resolver as a CSPM notification
// endpoint. It is a thin surface: decode, resolve, gate, write labels.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/DrSkyle/imagetrail/pkg/lineage"
	"github.com/DrSkyle/imagetrail/pkg/policy"
)

// Compute is the provider surface the webhook needs: lineage lookups plus
// the label write-back.
type Compute interface {
	lineage.Lookup
	SetDiskLabels(ctx context.Context, project, zone, name string, labels map[string]string, fingerprint string) error
}

// Config wires a Server.
type Config struct {
	Addr    string
	Compute Compute
	// Gate may be nil; labels are then always applied.
	Gate    *policy.Gate
	Logger  *slog.Logger
	MaxHops int
}

// Server handles posture notifications.
type Server struct {
	addr     string
	compute  Compute
	resolver *lineage.Resolver
	gate     *policy.Gate
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewServer builds the webhook server around a compute binding.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = lineage.DefaultMaxHops
	}
	return &Server{
		addr:    cfg.Addr,
		compute: cfg.Compute,
		resolver: lineage.NewResolver(cfg.Compute,
			lineage.WithLogger(logger),
			lineage.WithMaxHops(maxHops),
		),
		gate:   cfg.Gate,
		logger: logger,
		tracer: otel.Tracer("imagetrail/webhook"),
	}
}

// Handler returns the HTTP routes. Split from Serve so tests can drive the
// mux through httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/v1/notify", s.handleNotify)
	return r
}

// Serve runs the server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("webhook listening", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

type sourceSummary struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Project string `json:"project"`
}

type notifyResponse struct {
	Status    string            `json:"status"`
	Truncated bool              `json:"truncated"`
	Hops      int               `json:"hops"`
	Source    sourceSummary     `json:"source"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleNotify(w http.ResponseWriter, req *http.Request) {
	ctx, span := s.tracer.Start(req.Context(), "webhook.notify")
	defer span.End()

	var n Notification
	if err := json.NewDecoder(req.Body).Decode(&n); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	trig, err := n.Trigger()
	if err != nil {
		// Abort before any lookup; CSPM routes notifications for resource
		// types this service does not handle.
		if errors.Is(err, lineage.ErrUnsupportedAsset) {
			s.logger.Info("ignoring unsupported asset", "entity", n.Entity.Name)
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported asset: no provenance field"})
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("entity.project", trig.Target.Project),
		attribute.String("entity.name", trig.Target.Name),
	)

	res, err := s.resolver.Resolve(ctx, trig.Start)
	if err != nil {
		s.fail(ctx, span, w, http.StatusBadGateway, "lineage resolution failed", err)
		return
	}

	set, err := lineage.BuildLabelSet(res.Record, trig.LabelFingerprint)
	if err != nil {
		s.fail(ctx, span, w, http.StatusBadGateway, "unexpected provider record shape", err)
		return
	}

	allow, err := s.gate.Allow(policy.Input{
		Name:       set.Name,
		Project:    set.Project,
		Kind:       string(res.Record.Kind),
		Created:    set.CreatedEpoch,
		AgeDays:    time.Since(time.Unix(set.CreatedEpoch, 0)).Hours() / 24,
		Deprecated: set.Deprecated,
		Truncated:  res.Truncated(),
	})
	if err != nil {
		s.fail(ctx, span, w, http.StatusInternalServerError, "policy evaluation failed", err)
		return
	}

	resp := notifyResponse{
		Truncated: res.Truncated(),
		Hops:      res.Hops,
		Source: sourceSummary{
			Kind:    string(res.Record.Kind),
			Name:    set.Name,
			Project: set.Project,
		},
	}

	if !allow {
		resp.Status = "skipped"
		s.logger.Info("policy gate skipped label write",
			"entity", trig.Target.Name, "source", set.Name)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	labels := set.Labels()
	if err := s.compute.SetDiskLabels(ctx, trig.Target.Project, trig.Target.Zone, trig.Target.Name, labels, set.Fingerprint); err != nil {
		s.fail(ctx, span, w, http.StatusInternalServerError, "label write-back failed", err)
		return
	}

	s.logger.Info("labels applied",
		"entity", trig.Target.Name,
		"source", set.Name,
		"source_project", set.Project,
		"truncated", res.Truncated(),
		"hops", res.Hops,
	)

	resp.Status = "applied"
	resp.Labels = labels
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(ctx context.Context, span trace.Span, w http.ResponseWriter, status int, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.ErrorContext(ctx, msg, "error", err)
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}
