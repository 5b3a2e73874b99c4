package webhook

import (
	"github.com/DrSkyle/imagetrail/pkg/lineage"
)

// Notification is the CloudGuard CSPM posture notification this service is
// subscribed to. Only the fields the resolver needs are decoded.
type Notification struct {
	Account Account `json:"account"`
	Entity  Entity  `json:"entity"`
}

// Account identifies the GCP project owning the reported entity.
type Account struct {
	ID string `json:"id"`
}

// Entity is the reported compute resource. At most one of the source
// fields is present.
type Entity struct {
	Zone             string `json:"zone"`
	Name             string `json:"name"`
	LabelFingerprint string `json:"labelFingerprint"`
	SourceImage      string `json:"sourceImage,omitempty"`
	SourceSnapshot   string `json:"sourceSnapshot,omitempty"`
	SourceDisk       string `json:"sourceDisk,omitempty"`
}

// Trigger normalizes the notification into traversal input.
func (n Notification) Trigger() (lineage.Trigger, error) {
	return lineage.NormalizeTrigger(n.Account.ID, lineage.TriggerEntity{
		Zone:             n.Entity.Zone,
		Name:             n.Entity.Name,
		LabelFingerprint: n.Entity.LabelFingerprint,
		SourceImage:      n.Entity.SourceImage,
		SourceSnapshot:   n.Entity.SourceSnapshot,
		SourceDisk:       n.Entity.SourceDisk,
	})
}
