package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyVehicle    = "vehicle"
	KeyFolder     = "folder"
	KeySlug       = "slug"
	KeyPage       = "page"
	KeySlot       = "slot"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Vehicle(name string) slog.Attr      { return slog.String(KeyVehicle, name) }
func Folder(name string) slog.Attr       { return slog.String(KeyFolder, name) }
func Slug(s string) slog.Attr            { return slog.String(KeySlug, s) }
func Page(p string) slog.Attr            { return slog.String(KeyPage, p) }
func Slot(name string) slog.Attr         { return slog.String(KeySlot, name) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func File(f string) slog.Attr            { return slog.String(KeyFile, f) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr         { return slog.String(KeyOutcome, o) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Milliseconds())) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
