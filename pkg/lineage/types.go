// Package lineage resolves the true origin image of a GCP compute resource
// by walking its provenance references (sourceImage, sourceSnapshot,
// sourceDisk) backwards until the chain ends or an authorization boundary
// is hit.
package lineage

// Kind identifies a compute resource type in the lineage graph.
type Kind string

const (
	KindDisk     Kind = "disk"
	KindImage    Kind = "image"
	KindSnapshot Kind = "snapshot"
)

// Reference is the normalized view of one node in the lineage graph.
// Zone is populated only for disks.
type Reference struct {
	Kind    Kind
	Project string
	Zone    string
	Name    string

	// SourcePath is the raw path the reference was parsed from. Kept for
	// provenance in logs; never consumed downstream.
	SourcePath string
}

// Record is the shared shape of disk, image, and snapshot provider records.
// At most one of the Source fields is set; all empty marks a terminal node.
type Record struct {
	Kind              Kind
	Name              string
	SelfLink          string
	CreationTimestamp string
	SourceImage       string
	SourceSnapshot    string
	SourceDisk        string
	Deprecated        bool
	LabelFingerprint  string
}

// Outcome classifies how a traversal ended.
type Outcome int

const (
	// OutcomeTerminal means the final record has no provenance fields.
	OutcomeTerminal Outcome = iota
	// OutcomeBoundary means an image lookup was denied and the walk kept
	// the last readable record.
	OutcomeBoundary
)

// Result is the output of a completed traversal.
type Result struct {
	Outcome Outcome
	Record  *Record
	// Hops counts successful predecessor fetches beyond the starting record.
	Hops int
}

// Truncated reports whether traversal stopped at an authorization boundary
// rather than a true terminal node.
func (r *Result) Truncated() bool {
	return r.Outcome == OutcomeBoundary
}

// Target names the resource labels are written back to. It is always the
// triggering resource, never the resolved ancestor.
type Target struct {
	Project string
	Zone    string
	Name    string
}

// Trigger is the normalized traversal input built from one CSPM notification.
type Trigger struct {
	Target           Target
	Start            Reference
	LabelFingerprint string
}
