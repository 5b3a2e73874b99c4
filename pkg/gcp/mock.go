package gcp

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/DrSkyle/imagetrail/pkg/lineage"
)

// Mock serves an in-memory lineage graph. It backs --mock mode and the
// webhook tests; keys are project/zone/name for disks and project/name for
// global resources.
type Mock struct {
	mu sync.Mutex

	Disks     map[string]*lineage.Record
	Images    map[string]*lineage.Record
	Snapshots map[string]*lineage.Record

	// DeniedImages maps project/name keys to simulated 403 responses.
	DeniedImages map[string]bool

	// Applied collects every label write for assertions.
	Applied []AppliedLabels

	// Calls logs every operation in order.
	Calls []string
}

// AppliedLabels is one recorded SetDiskLabels call.
type AppliedLabels struct {
	Project     string            `json:"project"`
	Zone        string            `json:"zone"`
	Resource    string            `json:"resource"`
	Labels      map[string]string `json:"labels"`
	Fingerprint string            `json:"labelFingerprint"`
}

// NewMock returns an empty mock graph.
func NewMock() *Mock {
	return &Mock{
		Disks:        map[string]*lineage.Record{},
		Images:       map[string]*lineage.Record{},
		Snapshots:    map[string]*lineage.Record{},
		DeniedImages: map[string]bool{},
	}
}

// NewDemoMock seeds a small chain for --mock runs: a disk built from a
// snapshot of a disk built from a deprecated 2012 base image.
func NewDemoMock() *Mock {
	m := NewMock()
	m.Disks["demo-project/us-central1-a/demo-disk"] = &lineage.Record{
		Kind: lineage.KindDisk, Name: "demo-disk",
		SelfLink:          "https://www.googleapis.com/compute/v1/projects/demo-project/zones/us-central1-a/disks/demo-disk",
		CreationTimestamp: "2024-06-01T09:30:00.000000-07:00",
		SourceSnapshot:    "https://www.googleapis.com/compute/v1/projects/demo-project/global/snapshots/demo-snap",
		LabelFingerprint:  "demo-fp==",
	}
	m.Snapshots["demo-project/demo-snap"] = &lineage.Record{
		Kind: lineage.KindSnapshot, Name: "demo-snap",
		SelfLink:          "https://www.googleapis.com/compute/v1/projects/demo-project/global/snapshots/demo-snap",
		CreationTimestamp: "2021-02-10T04:00:00.000000Z",
		SourceDisk:        "https://www.googleapis.com/compute/v1/projects/demo-project/zones/us-central1-a/disks/golden-disk",
	}
	m.Disks["demo-project/us-central1-a/golden-disk"] = &lineage.Record{
		Kind: lineage.KindDisk, Name: "golden-disk",
		SelfLink:          "https://www.googleapis.com/compute/v1/projects/demo-project/zones/us-central1-a/disks/golden-disk",
		CreationTimestamp: "2020-11-20T16:45:00.000000Z",
		SourceImage:       "https://www.googleapis.com/compute/v1/projects/demo-base/global/images/golden-base",
	}
	m.Images["demo-base/golden-base"] = &lineage.Record{
		Kind: lineage.KindImage, Name: "golden-base",
		SelfLink:          "https://www.googleapis.com/compute/v1/projects/demo-base/global/images/golden-base",
		CreationTimestamp: "2012-01-01T00:00:00.000000Z",
		Deprecated:        true,
	}
	return m
}

func (m *Mock) GetDisk(ctx context.Context, project, zone, name string) (*lineage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := project + "/" + zone + "/" + name
	m.Calls = append(m.Calls, "disks.get "+key)
	if rec, ok := m.Disks[key]; ok {
		return rec, nil
	}
	return nil, &lineage.LookupError{
		Kind: lineage.KindDisk, Project: project, Name: name,
		Status: http.StatusNotFound, Err: errors.New("disk not found"),
	}
}

func (m *Mock) GetImage(ctx context.Context, project, name string) (*lineage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := project + "/" + name
	m.Calls = append(m.Calls, "images.get "+key)
	if m.DeniedImages[key] {
		return nil, &lineage.LookupError{
			Kind: lineage.KindImage, Project: project, Name: name,
			Status: http.StatusForbidden, Err: errors.New("required compute.images.get permission"),
		}
	}
	if rec, ok := m.Images[key]; ok {
		return rec, nil
	}
	return nil, &lineage.LookupError{
		Kind: lineage.KindImage, Project: project, Name: name,
		Status: http.StatusNotFound, Err: errors.New("image not found"),
	}
}

func (m *Mock) GetSnapshot(ctx context.Context, project, name string) (*lineage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := project + "/" + name
	m.Calls = append(m.Calls, "snapshots.get "+key)
	if rec, ok := m.Snapshots[key]; ok {
		return rec, nil
	}
	return nil, &lineage.LookupError{
		Kind: lineage.KindSnapshot, Project: project, Name: name,
		Status: http.StatusNotFound, Err: errors.New("snapshot not found"),
	}
}

func (m *Mock) SetDiskLabels(ctx context.Context, project, zone, name string, labels map[string]string, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "disks.setLabels "+project+"/"+zone+"/"+name)
	m.Applied = append(m.Applied, AppliedLabels{
		Project:     project,
		Zone:        zone,
		Resource:    name,
		Labels:      labels,
		Fingerprint: fingerprint,
	})
	return nil
}
