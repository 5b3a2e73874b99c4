package lineage

import (
	"fmt"
	"strconv"
	"time"
)

// Label keys written back to the triggering resource.
const (
	LabelCreationTimestamp = "cloudguard_source_image_creation_timestamp"
	LabelSourceName        = "cloudguard_source_image_name"
	LabelSourceProject     = "cloudguard_source_image_project"
	LabelDeprecated        = "deprecated_source"
)

// LabelSet is the final output of a resolution: the earliest discoverable
// ancestor's identity, rendered as resource labels.
type LabelSet struct {
	CreatedEpoch int64
	Name         string
	Project      string
	Deprecated   bool

	// Fingerprint is carried through from the trigger unchanged. The
	// write-back API rejects stale fingerprints, which is what prevents
	// lost label updates.
	Fingerprint string
}

// BuildLabelSet converts the final traversal record into a LabelSet.
// Missing or unparseable fields are fatal; they mean the provider returned
// a shape this walk does not understand.
func BuildLabelSet(rec *Record, fingerprint string) (*LabelSet, error) {
	if rec.Name == "" {
		return nil, fmt.Errorf("final record has no name")
	}
	created, err := ParseCreationTimestamp(rec.CreationTimestamp)
	if err != nil {
		return nil, err
	}
	project, err := ProjectFromSelfLink(rec.SelfLink)
	if err != nil {
		return nil, fmt.Errorf("final record %q: %w", rec.Name, err)
	}
	return &LabelSet{
		CreatedEpoch: created.Unix(),
		Name:         rec.Name,
		Project:      project,
		Deprecated:   rec.Deprecated,
		Fingerprint:  fingerprint,
	}, nil
}

// ParseCreationTimestamp parses the provider's RFC3339 creation timestamps,
// which carry fractional seconds and either a UTC offset or Z.
func ParseCreationTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable creation timestamp %q: %w", s, err)
	}
	return t, nil
}

// Labels renders the set as GCP resource labels. Epoch seconds go out as a
// decimal string; label values are strings on the provider side.
func (s *LabelSet) Labels() map[string]string {
	m := map[string]string{
		LabelCreationTimestamp: strconv.FormatInt(s.CreatedEpoch, 10),
		LabelSourceName:        s.Name,
		LabelSourceProject:     s.Project,
	}
	if s.Deprecated {
		m[LabelDeprecated] = "deprecated"
	}
	return m
}
