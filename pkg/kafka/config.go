// Package kafka publishes the service's CloudEvents to Kafka, layering
// tracing, metrics, and circuit breaking over segmentio/kafka-go.
package kafka

import "time"

// Config holds broker and producer settings.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	BatchSize    int
	BatchTimeout time.Duration

	// RequiredAcks: 0 none, 1 leader, -1 all replicas.
	RequiredAcks int
}

// Topics names the service's event streams. Aggregate changes go to their
// own topics; computed readiness reports get a separate, shorter-retention
// stream.
var Topics = struct {
	PersonnelEvents      string
	UnitsEvents          string
	AssignmentsEvents    string
	ReadinessEvents      string
	CertificationsEvents string
}{
	PersonnelEvents:      "readiness.personnel.events",
	UnitsEvents:          "readiness.units.events",
	AssignmentsEvents:    "readiness.assignments.events",
	ReadinessEvents:      "readiness.units.readiness",
	CertificationsEvents: "readiness.certifications.events",
}
