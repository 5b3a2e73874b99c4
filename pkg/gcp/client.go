// Package gcp binds the Compute Engine API for lineage lookups and label
// writes.
package gcp

import (
	"context"
	"errors"
	"fmt"

	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/DrSkyle/imagetrail/pkg/lineage"
)

// Client wraps the compute v1 service. Credentials come from Application
// Default Credentials unless overridden via options.
type Client struct {
	svc *compute.Service
}

// NewClient builds an authenticated compute client.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to build compute service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// GetDisk fetches a zonal disk record.
func (c *Client) GetDisk(ctx context.Context, project, zone, name string) (*lineage.Record, error) {
	d, err := c.svc.Disks.Get(project, zone, name).Context(ctx).Do()
	if err != nil {
		return nil, lookupError(lineage.KindDisk, project, name, err)
	}
	return &lineage.Record{
		Kind:              lineage.KindDisk,
		Name:              d.Name,
		SelfLink:          d.SelfLink,
		CreationTimestamp: d.CreationTimestamp,
		SourceImage:       d.SourceImage,
		SourceSnapshot:    d.SourceSnapshot,
		SourceDisk:        d.SourceDisk,
		LabelFingerprint:  d.LabelFingerprint,
	}, nil
}

// GetImage fetches a global image record.
func (c *Client) GetImage(ctx context.Context, project, name string) (*lineage.Record, error) {
	img, err := c.svc.Images.Get(project, name).Context(ctx).Do()
	if err != nil {
		return nil, lookupError(lineage.KindImage, project, name, err)
	}
	return &lineage.Record{
		Kind:              lineage.KindImage,
		Name:              img.Name,
		SelfLink:          img.SelfLink,
		CreationTimestamp: img.CreationTimestamp,
		SourceImage:       img.SourceImage,
		SourceSnapshot:    img.SourceSnapshot,
		SourceDisk:        img.SourceDisk,
		Deprecated:        img.Deprecated != nil,
		LabelFingerprint:  img.LabelFingerprint,
	}, nil
}

// GetSnapshot fetches a global snapshot record.
func (c *Client) GetSnapshot(ctx context.Context, project, name string) (*lineage.Record, error) {
	s, err := c.svc.Snapshots.Get(project, name).Context(ctx).Do()
	if err != nil {
		return nil, lookupError(lineage.KindSnapshot, project, name, err)
	}
	return &lineage.Record{
		Kind:              lineage.KindSnapshot,
		Name:              s.Name,
		SelfLink:          s.SelfLink,
		CreationTimestamp: s.CreationTimestamp,
		SourceDisk:        s.SourceDisk,
		LabelFingerprint:  s.LabelFingerprint,
	}, nil
}

// SetDiskLabels applies labels to the triggering disk. The fingerprint must
// match the disk's current one or the provider rejects the write.
func (c *Client) SetDiskLabels(ctx context.Context, project, zone, name string, labels map[string]string, fingerprint string) error {
	req := &compute.ZoneSetLabelsRequest{
		Labels:           labels,
		LabelFingerprint: fingerprint,
	}
	if _, err := c.svc.Disks.SetLabels(project, zone, name, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("setLabels on disk %s/%s/%s: %w", project, zone, name, err)
	}
	return nil
}

// lookupError converts a provider failure into the typed error the
// traversal engine matches on.
func lookupError(kind lineage.Kind, project, name string, err error) error {
	status := 0
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		status = gerr.Code
	}
	return &lineage.LookupError{Kind: kind, Project: project, Name: name, Status: status, Err: err}
}
