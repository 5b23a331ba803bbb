package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ForecastSnapshot is the archival side artifact produced whenever a
// forecast is fetched: the raw payload plus the derived vigilance, stamped
// with the fetch time. Snapshots are published to the archive sinks (disk,
// optionally Kafka); they are not domain state.
type ForecastSnapshot struct {
	ID        string          `json:"id"`
	Location  Location        `json:"location"`
	FetchedAt time.Time       `json:"fetched_at"`
	Vigilance Vigilance       `json:"vigilance"`
	Payload   ForecastPayload `json:"payload"`
}

// NewForecastSnapshot stamps a fetched payload into an archive artifact.
func NewForecastSnapshot(loc Location, p ForecastPayload) ForecastSnapshot {
	fetchedAt := clock.Now().UTC()
	return ForecastSnapshot{
		ID:        snapshotID(loc, fetchedAt),
		Location:  loc,
		FetchedAt: fetchedAt,
		Vigilance: ComputeVigilance(p),
		Payload:   p,
	}
}

// snapshotID produces a deterministic ID from the snapshot's key fields.
// Refetching the same location at the same instant produces the same ID,
// so replayed archive messages deduplicate downstream.
func snapshotID(loc Location, fetchedAt time.Time) string {
	input := fmt.Sprintf("%.4f|%.4f|%s", loc.Latitude, loc.Longitude, fetchedAt.Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	return loc.Slug() + "-" + hex.EncodeToString(hash[:8])
}
