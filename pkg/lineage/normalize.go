package lineage

// Source is the provenance variant a record carries. Each variant owns the
// parse rule for its own path grammar, so normalization is a type switch
// rather than key probing.
type Source interface {
	// Reference parses the variant's path into the predecessor reference.
	Reference() (Reference, error)
}

// ImageSource is a sourceImage provenance field.
type ImageSource struct {
	Path string
}

func (s ImageSource) Reference() (Reference, error) {
	return ParseImagePath(s.Path)
}

// SnapshotSource is a sourceSnapshot provenance field. Snapshots are global
// resources; the original Cloud Function read a zone segment here from the
// disk grammar, which was a bug, not a rule.
type SnapshotSource struct {
	Path string
}

func (s SnapshotSource) Reference() (Reference, error) {
	return ParseSnapshotPath(s.Path)
}

// DiskSource is a sourceDisk provenance field. The zone comes from the
// path itself; provider disk paths always carry one.
type DiskSource struct {
	Path string
}

func (s DiskSource) Reference() (Reference, error) {
	return ParseDiskPath(s.Path)
}

// DetectSource returns the provenance variant carried by rec, or false for
// a terminal record. Precedence is image, then snapshot, then disk; a
// well-formed record only ever carries one.
func DetectSource(rec *Record) (Source, bool) {
	switch {
	case rec.SourceImage != "":
		return ImageSource{Path: rec.SourceImage}, true
	case rec.SourceSnapshot != "":
		return SnapshotSource{Path: rec.SourceSnapshot}, true
	case rec.SourceDisk != "":
		return DiskSource{Path: rec.SourceDisk}, true
	}
	return nil, false
}

// TriggerEntity is the relevant subset of a CSPM notification entity.
// Its layout differs from provider records: the zone arrives as a separate
// path field, and the owning account is reported outside the entity. The
// two shapes share the Reference output but not the normalization rules.
type TriggerEntity struct {
	Zone             string
	Name             string
	LabelFingerprint string
	SourceImage      string
	SourceSnapshot   string
	SourceDisk       string
}

// NormalizeTrigger builds traversal input from a CSPM entity notification.
// accountID is the project owning the triggering resource and receives the
// label write-back. Returns ErrUnsupportedAsset when the entity names no
// provenance field.
func NormalizeTrigger(accountID string, ent TriggerEntity) (Trigger, error) {
	target := Target{
		Project: accountID,
		Zone:    LastSegment(ent.Zone),
		Name:    ent.Name,
	}

	src, ok := DetectSource(&Record{
		SourceImage:    ent.SourceImage,
		SourceSnapshot: ent.SourceSnapshot,
		SourceDisk:     ent.SourceDisk,
	})
	if !ok {
		return Trigger{}, ErrUnsupportedAsset
	}

	start, err := src.Reference()
	if err != nil {
		return Trigger{}, err
	}
	// The payload variant locates disk ancestors through the entity's own
	// zone field, not the source path. Provider records do the opposite.
	if start.Kind == KindDisk && target.Zone != "" {
		start.Zone = target.Zone
	}

	return Trigger{
		Target:           target,
		Start:            start,
		LabelFingerprint: ent.LabelFingerprint,
	}, nil
}
