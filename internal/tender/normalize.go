package tender

import (
	"log/slog"
	"strings"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
)

// TimestampLayout is the layout of every date-time emitted by the remote API
const TimestampLayout = "2006-01-02T15:04:05"

// ResolveCloseDate returns the raw close date of a remote record, preferring
// the nested Fechas value over the flat field. Blank means absent.
func ResolveCloseDate(t *mercadopublico.Tender) string {
	if t == nil {
		return ""
	}
	if t.Fechas != nil && strings.TrimSpace(t.Fechas.FechaCierre) != "" {
		return t.Fechas.FechaCierre
	}
	return strings.TrimSpace(t.FechaCierre)
}

// ResolvePublicationDate is ResolveCloseDate for the publication date
func ResolvePublicationDate(t *mercadopublico.Tender) string {
	if t == nil {
		return ""
	}
	if t.Fechas != nil && strings.TrimSpace(t.Fechas.FechaPublicacion) != "" {
		return t.Fechas.FechaPublicacion
	}
	return strings.TrimSpace(t.FechaPublicacion)
}

// ParseTimestamp parses a remote date-time in loc. The API is inconsistent about
// sub-second precision so anything from the first '.' on is dropped, never rounded.
// Bad input is logged and reported through ok.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	normalized := raw
	if i := strings.IndexByte(normalized, '.'); i >= 0 {
		normalized = normalized[:i]
	}

	ts, err := time.ParseInLocation(TimestampLayout, normalized, loc)
	if err != nil {
		slog.Warn("Failed to parse timestamp", "value", raw, "error", err)
		return time.Time{}, false
	}
	return ts, true
}

// Normalizer resolves and parses the dates of remote records in a fixed location
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a Normalizer for loc; nil means time.Local
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Location returns the location timestamps are interpreted in
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// CloseDate returns the parsed close date of t, if any
func (n *Normalizer) CloseDate(t *mercadopublico.Tender) (time.Time, bool) {
	raw := ResolveCloseDate(t)
	if raw == "" {
		return time.Time{}, false
	}
	return ParseTimestamp(raw, n.loc)
}

// PublicationDate returns the parsed publication date of t, if any
func (n *Normalizer) PublicationDate(t *mercadopublico.Tender) (time.Time, bool) {
	raw := ResolvePublicationDate(t)
	if raw == "" {
		return time.Time{}, false
	}
	return ParseTimestamp(raw, n.loc)
}
