package lineage

import (
	"strings"
)

// GCP resource paths embed a fixed grammar after the "projects" marker:
//
//	.../projects/{project}/zones/{zone}/disks/{name}
//	.../projects/{project}/global/images/{name}
//	.../projects/{project}/global/snapshots/{name}
//
// Everything before "projects" (scheme, host, API prefix) varies between
// selfLinks, partial URLs, and bare paths, so parsing anchors on the marker
// and validates every segment after it instead of slicing fixed offsets.

// projectSegments locates the "projects" marker and returns it plus all
// following segments.
func projectSegments(path string) ([]string, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		if s == "projects" {
			if i+1 >= len(segs) || segs[i+1] == "" {
				return nil, &ParseError{Path: path, Reason: "no project after \"projects\" marker"}
			}
			return segs[i:], nil
		}
	}
	return nil, &ParseError{Path: path, Reason: "no \"projects\" marker"}
}

// ParseDiskPath parses a zonal disk path.
func ParseDiskPath(path string) (Reference, error) {
	segs, err := projectSegments(path)
	if err != nil {
		return Reference{}, err
	}
	if len(segs) != 6 || segs[2] != "zones" || segs[4] != "disks" {
		return Reference{}, &ParseError{Path: path, Reason: "want projects/{project}/zones/{zone}/disks/{name}"}
	}
	return Reference{
		Kind:       KindDisk,
		Project:    segs[1],
		Zone:       segs[3],
		Name:       segs[5],
		SourcePath: path,
	}, nil
}

// ParseImagePath parses a global image path.
func ParseImagePath(path string) (Reference, error) {
	return parseGlobalPath(path, KindImage, "images")
}

// ParseSnapshotPath parses a global snapshot path.
func ParseSnapshotPath(path string) (Reference, error) {
	return parseGlobalPath(path, KindSnapshot, "snapshots")
}

func parseGlobalPath(path string, kind Kind, plural string) (Reference, error) {
	segs, err := projectSegments(path)
	if err != nil {
		return Reference{}, err
	}
	if len(segs) != 5 || segs[2] != "global" || segs[3] != plural {
		return Reference{}, &ParseError{Path: path, Reason: "want projects/{project}/global/" + plural + "/{name}"}
	}
	return Reference{
		Kind:       kind,
		Project:    segs[1],
		Name:       segs[4],
		SourcePath: path,
	}, nil
}

// ParseAnyPath dispatches on the kind-plural segment and parses the path
// under the matching grammar. Used by the CLI, where the caller names an
// arbitrary resource.
func ParseAnyPath(path string) (Reference, error) {
	segs, err := projectSegments(path)
	if err != nil {
		return Reference{}, err
	}
	switch {
	case len(segs) > 2 && segs[2] == "zones":
		return ParseDiskPath(path)
	case len(segs) > 3 && segs[3] == "images":
		return ParseImagePath(path)
	case len(segs) > 3 && segs[3] == "snapshots":
		return ParseSnapshotPath(path)
	}
	return Reference{}, &ParseError{Path: path, Reason: "not a disk, image, or snapshot path"}
}

// ProjectFromSelfLink extracts the owning project from a record's
// self-referencing URL.
func ProjectFromSelfLink(link string) (string, error) {
	segs, err := projectSegments(link)
	if err != nil {
		return "", err
	}
	return segs[1], nil
}

// LastSegment returns the final path segment. CSPM reports zones as full
// paths while the compute API wants the bare zone name.
func LastSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
