package lineage

import (
	"errors"
	"testing"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		wantKind Kind
		terminal bool
	}{
		{
			name:     "image source",
			rec:      Record{SourceImage: "projects/p/global/images/i"},
			wantKind: KindImage,
		},
		{
			name:     "snapshot source",
			rec:      Record{SourceSnapshot: "projects/p/global/snapshots/s"},
			wantKind: KindSnapshot,
		},
		{
			name:     "disk source",
			rec:      Record{SourceDisk: "projects/p/zones/z/disks/d"},
			wantKind: KindDisk,
		},
		{
			name:     "terminal",
			rec:      Record{Name: "root-image"},
			terminal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, ok := DetectSource(&tt.rec)
			if tt.terminal {
				if ok {
					t.Fatalf("expected terminal, got %T", src)
				}
				return
			}
			if !ok {
				t.Fatal("expected a source variant")
			}
			ref, err := src.Reference()
			if err != nil {
				t.Fatalf("reference: %v", err)
			}
			if ref.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", ref.Kind, tt.wantKind)
			}
		})
	}
}

// Precedence is image, then snapshot, then disk. A record with multiple
// source fields violates the provider invariant, but detection must still
// be deterministic.
func TestDetectSourcePrecedence(t *testing.T) {
	rec := Record{
		SourceImage:    "projects/p/global/images/i",
		SourceSnapshot: "projects/p/global/snapshots/s",
		SourceDisk:     "projects/p/zones/z/disks/d",
	}
	src, ok := DetectSource(&rec)
	if !ok {
		t.Fatal("expected a source variant")
	}
	if _, isImage := src.(ImageSource); !isImage {
		t.Errorf("expected ImageSource, got %T", src)
	}
}

// Provider snapshot records are global and never carry a zone, whatever
// the original Cloud Function thought.
func TestSnapshotSourceHasNoZone(t *testing.T) {
	src, ok := DetectSource(&Record{SourceSnapshot: "projects/p9/global/snapshots/nightly"})
	if !ok {
		t.Fatal("expected snapshot source")
	}
	ref, err := src.Reference()
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	if ref.Zone != "" {
		t.Errorf("snapshot reference has zone %q, want none", ref.Zone)
	}
	if ref.Project != "p9" || ref.Name != "nightly" {
		t.Errorf("unexpected reference: %+v", ref)
	}
}

func TestNormalizeTrigger(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		ent       TriggerEntity
		wantStart Reference
		wantErr   error
	}{
		{
			name:      "image sourced disk",
			accountID: "p1",
			ent: TriggerEntity{
				Zone:             "https://www.googleapis.com/compute/v1/projects/p1/zones/us-central1-a",
				Name:             "d1",
				LabelFingerprint: "abc123==",
				SourceImage:      "https://www.googleapis.com/compute/v1/projects/p2/global/images/img-old",
			},
			wantStart: Reference{Kind: KindImage, Project: "p2", Name: "img-old"},
		},
		{
			name:      "snapshot sourced disk",
			accountID: "p1",
			ent: TriggerEntity{
				Zone:           "projects/p1/zones/us-east1-b",
				Name:           "d2",
				SourceSnapshot: "projects/p1/global/snapshots/snap-7",
			},
			wantStart: Reference{Kind: KindSnapshot, Project: "p1", Name: "snap-7"},
		},
		{
			name:      "disk sourced disk takes entity zone",
			accountID: "p1",
			ent: TriggerEntity{
				Zone:       "projects/p1/zones/us-central1-f",
				Name:       "clone",
				SourceDisk: "projects/p1/zones/us-central1-a/disks/parent",
			},
			wantStart: Reference{Kind: KindDisk, Project: "p1", Zone: "us-central1-f", Name: "parent"},
		},
		{
			name:      "no provenance field",
			accountID: "p1",
			ent:       TriggerEntity{Zone: "projects/p1/zones/us-central1-a", Name: "d3"},
			wantErr:   ErrUnsupportedAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trig, err := NormalizeTrigger(tt.accountID, tt.ent)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := trig.Start
			if got.Kind != tt.wantStart.Kind || got.Project != tt.wantStart.Project ||
				got.Zone != tt.wantStart.Zone || got.Name != tt.wantStart.Name {
				t.Errorf("start = %+v, want %+v", got, tt.wantStart)
			}
			if trig.Target.Project != tt.accountID {
				t.Errorf("target project = %q, want %q", trig.Target.Project, tt.accountID)
			}
			if trig.Target.Name != tt.ent.Name {
				t.Errorf("target name = %q, want %q", trig.Target.Name, tt.ent.Name)
			}
			if trig.LabelFingerprint != tt.ent.LabelFingerprint {
				t.Errorf("fingerprint = %q, want %q", trig.LabelFingerprint, tt.ent.LabelFingerprint)
			}
		})
	}
}
