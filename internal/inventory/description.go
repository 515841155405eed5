package inventory

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/lotbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// fieldTag binds a description key to the record field it sets.
type fieldTag struct {
	prefix string
	set    func(rec *vehicle.Record, value string)
}

// fieldTags lists the recognised keys. Matching is by lowercase prefix
// followed by a colon, so the order only matters for keys that share a
// prefix, of which there are none.
var fieldTags = []fieldTag{
	{"name", func(r *vehicle.Record, v string) {
		if v != "" {
			r.Name = v
		}
	}},
	{"price", func(r *vehicle.Record, v string) { r.Price = v }},
	{"mileage", func(r *vehicle.Record, v string) { r.Mileage = v }},
	{"year", func(r *vehicle.Record, v string) { r.Year = v }},
	{"transmission", func(r *vehicle.Record, v string) { r.Transmission = v }},
	{"type", func(r *vehicle.Record, v string) { r.BodyType = v }},
	{"fuel", func(r *vehicle.Record, v string) { r.Fuel = v }},
	{"location", func(r *vehicle.Record, v string) { r.Location = v }},
	{"status", func(r *vehicle.Record, v string) {
		if strings.EqualFold(v, "SOLD") {
			r.Sold = true
		}
	}},
	{"read more", func(r *vehicle.Record, v string) { r.Note = v }},
}

// frontmatterKeys lists the frontmatter spellings accepted for each tag,
// in the order they are applied.
var frontmatterKeys = map[string][]string{
	"read more":    {"read more", "note"},
	"transmission": {"transmission", "trans"},
}

// Parser reads description files.
type Parser struct {
	// TruncateAtSecondColon stops a value at the next colon, the way older
	// inventories were read. By default the value is the rest of the line.
	TruncateAtSecondColon bool
}

// ParseDescription applies a description file to rec using the default parser.
func ParseDescription(content []byte, rec *vehicle.Record) {
	Parser{}.Parse(content, rec)
}

// Parse applies content to rec. Frontmatter fields are applied first, then
// every "Key: value" line in order, so later lines win. Lines that match no
// key are collected into rec.Body. Parsing never fails.
func (p Parser) Parse(content []byte, rec *vehicle.Record) {
	body := content
	front, rest, had, err := frontmatter.Split(content)
	switch {
	case err != nil:
		slog.Debug("Ignoring malformed frontmatter", "folder", rec.Folder, "error", err)
	case had:
		if fields, ferr := frontmatter.Fields(front); ferr != nil {
			slog.Debug("Ignoring malformed frontmatter", "folder", rec.Folder, "error", ferr)
		} else {
			applyFrontmatter(fields, rec)
			body = rest
		}
	}

	var unmatched []string
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if !p.applyLine(trimmed, rec) {
			unmatched = append(unmatched, strings.TrimRight(line, "\r"))
		}
	}
	if extra := strings.TrimSpace(strings.Join(unmatched, "\n")); extra != "" {
		rec.Body = extra
	}
	rec.PriceValue = vehicle.ParsePriceValue(rec.Price)
}

func (p Parser) applyLine(line string, rec *vehicle.Record) bool {
	if line == "" {
		return false
	}
	lower := strings.ToLower(line)
	for _, tag := range fieldTags {
		if !strings.HasPrefix(lower, tag.prefix+":") {
			continue
		}
		_, afterKey, _ := strings.Cut(line, ":")
		tag.set(rec, p.value(afterKey))
		return true
	}
	return false
}

// value extracts the field value from the text after the key's colon.
func (p Parser) value(afterKey string) string {
	if p.TruncateAtSecondColon {
		afterKey, _, _ = strings.Cut(afterKey, ":")
	}
	return strings.TrimSpace(afterKey)
}

func applyFrontmatter(fields map[string]string, rec *vehicle.Record) {
	if v, ok := fields["sold"]; ok && strings.EqualFold(strings.TrimSpace(v), "true") {
		rec.Sold = true
	}
	for _, tag := range fieldTags {
		keys, ok := frontmatterKeys[tag.prefix]
		if !ok {
			keys = []string{tag.prefix}
		}
		for _, key := range keys {
			if value, found := fields[key]; found {
				tag.set(rec, strings.TrimSpace(value))
			}
		}
	}
}

// isDescription reports whether name has one of the configured text extensions.
func isDescription(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
