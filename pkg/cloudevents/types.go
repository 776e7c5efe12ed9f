// Package cloudevents builds CloudEvents v1.0 envelopes for the domain
// events the service publishes. Envelopes are staged in the outbox as
// structured JSON and relayed to Kafka in binary content mode, with the
// ce-* attributes promoted to message headers.
package cloudevents

import "time"

// Event types minted by this package rather than the domain layer.
const (
	ReadinessEvaluated  = "readiness.unit.evaluated"
	ExpiryScanCompleted = "readiness.certifications.expiry-scan-completed"
)

// CloudEvent is a CloudEvents v1.0 envelope. The rds* fields are
// extension attributes used for routing and trace stitching downstream.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	CorrelationID string `json:"rdscorrelationid,omitempty"`
	UnitID        string `json:"rdsunitid,omitempty"`
	StationID     string `json:"rdsstationid,omitempty"`
}

// ReadinessEvaluatedData is the payload of a ReadinessEvaluated event.
type ReadinessEvaluatedData struct {
	UnitID         string    `json:"unit_id"`
	ReadinessScore int       `json:"readiness_score"`
	StaffRequired  int       `json:"staff_required"`
	StaffPresent   int       `json:"staff_present"`
	IsUnderstaffed bool      `json:"is_understaffed"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// ExpiryScanCompletedData is the payload of an ExpiryScanCompleted event.
type ExpiryScanCompletedData struct {
	ExpiredCertifications int       `json:"expired_certifications"`
	MarkedUnqualified     int       `json:"marked_unqualified"`
	AffectedUnits         []string  `json:"affected_units"`
	CompletedAt           time.Time `json:"completed_at"`
}
