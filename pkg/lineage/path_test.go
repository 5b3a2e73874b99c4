package lineage

import (
	"errors"
	"testing"
)

func TestParseDiskPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    Reference
		wantErr bool
	}{
		{
			name: "full selfLink",
			path: "https://www.googleapis.com/compute/v1/projects/p1/zones/us-central1-a/disks/d1",
			want: Reference{Kind: KindDisk, Project: "p1", Zone: "us-central1-a", Name: "d1"},
		},
		{
			name: "bare path",
			path: "projects/p1/zones/europe-west1-b/disks/data-disk",
			want: Reference{Kind: KindDisk, Project: "p1", Zone: "europe-west1-b", Name: "data-disk"},
		},
		{
			name:    "image path rejected",
			path:    "projects/p1/global/images/img",
			wantErr: true,
		},
		{
			name:    "missing name segment",
			path:    "projects/p1/zones/us-central1-a/disks",
			wantErr: true,
		},
		{
			name:    "no projects marker",
			path:    "zones/us-central1-a/disks/d1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDiskPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected parse error, got %+v", got)
				}
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("expected *ParseError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind != tt.want.Kind || got.Project != tt.want.Project ||
				got.Zone != tt.want.Zone || got.Name != tt.want.Name {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.SourcePath != tt.path {
				t.Errorf("SourcePath = %q, want original path", got.SourcePath)
			}
		})
	}
}

func TestParseGlobalPaths(t *testing.T) {
	img, err := ParseImagePath("https://www.googleapis.com/compute/v1/projects/p2/global/images/img-old")
	if err != nil {
		t.Fatalf("image parse: %v", err)
	}
	if img.Kind != KindImage || img.Project != "p2" || img.Name != "img-old" || img.Zone != "" {
		t.Errorf("unexpected image reference: %+v", img)
	}

	snap, err := ParseSnapshotPath("projects/p3/global/snapshots/snap-1")
	if err != nil {
		t.Fatalf("snapshot parse: %v", err)
	}
	if snap.Kind != KindSnapshot || snap.Project != "p3" || snap.Name != "snap-1" || snap.Zone != "" {
		t.Errorf("unexpected snapshot reference: %+v", snap)
	}

	// Image family paths carry an extra segment and are out of grammar.
	if _, err := ParseImagePath("projects/p2/global/images/family/debian-12"); err == nil {
		t.Error("expected family path to fail image grammar")
	}
	// Cross-plural confusion must fail, not silently misparse.
	if _, err := ParseSnapshotPath("projects/p2/global/images/img-old"); err == nil {
		t.Error("expected image path to fail snapshot grammar")
	}
}

func TestParseAnyPath(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
	}{
		{"projects/p1/zones/us-central1-a/disks/d1", KindDisk},
		{"projects/p2/global/images/img-old", KindImage},
		{"projects/p3/global/snapshots/snap-1", KindSnapshot},
	}
	for _, tt := range tests {
		ref, err := ParseAnyPath(tt.path)
		if err != nil {
			t.Errorf("ParseAnyPath(%q): %v", tt.path, err)
			continue
		}
		if ref.Kind != tt.kind {
			t.Errorf("ParseAnyPath(%q) kind = %q, want %q", tt.path, ref.Kind, tt.kind)
		}
	}

	if _, err := ParseAnyPath("projects/p1/regions/us-central1/subnetworks/sn"); err == nil {
		t.Error("expected unsupported path to fail")
	}
}

func TestProjectFromSelfLink(t *testing.T) {
	project, err := ProjectFromSelfLink("https://www.googleapis.com/compute/v1/projects/p2/global/images/img-old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project != "p2" {
		t.Errorf("project = %q, want p2", project)
	}

	if _, err := ProjectFromSelfLink("https://example.com/no/marker/here"); err == nil {
		t.Error("expected error for link without projects marker")
	}
}

func TestLastSegment(t *testing.T) {
	if got := LastSegment("https://www.googleapis.com/compute/v1/projects/p1/zones/us-central1-a"); got != "us-central1-a" {
		t.Errorf("got %q", got)
	}
	if got := LastSegment("us-central1-a"); got != "us-central1-a" {
		t.Errorf("bare segment: got %q", got)
	}
}
