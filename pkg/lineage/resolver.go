package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Lookup fetches provider records for lineage nodes. Implementations
// return *LookupError on provider failures; the resolver interprets those.
type Lookup interface {
	GetDisk(ctx context.Context, project, zone, name string) (*Record, error)
	GetImage(ctx context.Context, project, name string) (*Record, error)
	GetSnapshot(ctx context.Context, project, name string) (*Record, error)
}

// DefaultMaxHops bounds the walk. Real chains are short; the limit only
// guards against a provenance cycle in provider metadata.
const DefaultMaxHops = 32

// Resolver drives the backward walk from a starting reference to the
// earliest readable ancestor. One Resolve call is one isolated traversal;
// the resolver itself holds no per-invocation state.
type Resolver struct {
	lookup  Lookup
	logger  *slog.Logger
	tracer  trace.Tracer
	maxHops int
}

// Option overrides a resolver default.
type Option func(*Resolver)

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithMaxHops replaces the hop safety valve.
func WithMaxHops(n int) Option {
	return func(r *Resolver) {
		r.maxHops = n
	}
}

// NewResolver builds a resolver over the given lookup service.
func NewResolver(lookup Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  lookup,
		logger:  slog.Default(),
		tracer:  otel.Tracer("imagetrail/lineage"),
		maxHops: DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// fetch dispatches a lookup on the reference kind. Pure dispatch; provider
// errors surface verbatim for Resolve to interpret.
func (r *Resolver) fetch(ctx context.Context, ref Reference) (*Record, error) {
	switch ref.Kind {
	case KindDisk:
		return r.lookup.GetDisk(ctx, ref.Project, ref.Zone, ref.Name)
	case KindImage:
		return r.lookup.GetImage(ctx, ref.Project, ref.Name)
	case KindSnapshot:
		return r.lookup.GetSnapshot(ctx, ref.Project, ref.Name)
	}
	return nil, fmt.Errorf("unknown resource kind %q", ref.Kind)
}

// Resolve walks the provenance chain starting at start. It ends in one of
// two success states: OutcomeTerminal when a record carries no provenance
// field, or OutcomeBoundary when an image lookup is denied and the walk
// keeps the last readable record. Every other lookup failure is fatal.
//
// Image reads are the one tolerated denial because provenance chains cross
// project boundaries and cross-project image access is routinely
// restricted even when the caller owns the downstream resource. Disk and
// snapshot denials do not have that excuse and abort the walk.
func (r *Resolver) Resolve(ctx context.Context, start Reference) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "lineage.resolve", trace.WithAttributes(
		attribute.String("lineage.start.kind", string(start.Kind)),
		attribute.String("lineage.start.project", start.Project),
		attribute.String("lineage.start.name", start.Name),
	))
	defer span.End()

	current, err := r.fetch(ctx, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("starting lookup failed: %w", err)
	}

	hops := 0
	for {
		src, ok := DetectSource(current)
		if !ok {
			span.SetAttributes(attribute.Int("lineage.hops", hops))
			return &Result{Outcome: OutcomeTerminal, Record: current, Hops: hops}, nil
		}
		if hops >= r.maxHops {
			err := fmt.Errorf("%w after %d hops from %s/%s", ErrHopLimit, hops, start.Project, start.Name)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		ref, err := src.Reference()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		next, err := r.fetch(ctx, ref)
		if err != nil {
			var le *LookupError
			if ref.Kind == KindImage && errors.As(err, &le) && le.PermissionDenied() {
				r.logger.Warn("image read denied, treating as lineage boundary",
					"project", ref.Project, "image", ref.Name, "hops", hops)
				span.SetAttributes(
					attribute.Bool("lineage.truncated", true),
					attribute.Int("lineage.hops", hops),
				)
				return &Result{Outcome: OutcomeBoundary, Record: current, Hops: hops}, nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("lookup at hop %d failed: %w", hops+1, err)
		}

		r.logger.Debug("lineage hop", "kind", ref.Kind, "project", ref.Project, "name", ref.Name)
		current = next
		hops++
	}
}
