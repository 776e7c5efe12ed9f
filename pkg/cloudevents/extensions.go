package cloudevents

// Extension attribute names as they appear in the JSON envelope and,
// prefixed with ce-, on Kafka message headers.
const (
	ExtCorrelationID = "rdscorrelationid"
	ExtUnitID        = "rdsunitid"
	ExtStationID     = "rdsstationid"
)

// WithUnit tags the event with the unit it concerns.
func (e *CloudEvent) WithUnit(unitID string) *CloudEvent {
	e.UnitID = unitID
	return e
}

// WithStation tags the event with the station the unit belongs to.
func (e *CloudEvent) WithStation(stationID string) *CloudEvent {
	e.StationID = stationID
	return e
}
