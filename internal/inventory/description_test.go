package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

func TestParseDescription_Tags(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		check func(t *testing.T, r vehicle.Record)
	}{
		{"name", "Name: Honda Fit", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Honda Fit", r.Name) }},
		{"price", "PRICE: $12,500", func(t *testing.T, r vehicle.Record) {
			require.Equal(t, "$12,500", r.Price)
			require.Equal(t, int64(12500), r.PriceValue)
		}},
		{"mileage", "mileage:  84 000 km ", func(t *testing.T, r vehicle.Record) { require.Equal(t, "84 000 km", r.Mileage) }},
		{"year", "Year: 2014", func(t *testing.T, r vehicle.Record) { require.Equal(t, "2014", r.Year) }},
		{"transmission", "Transmission: Automatic", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Automatic", r.Transmission) }},
		{"type", "Type: SUV", func(t *testing.T, r vehicle.Record) { require.Equal(t, "SUV", r.BodyType) }},
		{"fuel", "Fuel: Diesel", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Diesel", r.Fuel) }},
		{"location", "Location: Harare", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Harare", r.Location) }},
		{"status sold", "Status: sold", func(t *testing.T, r vehicle.Record) { require.True(t, r.Sold) }},
		{"status other", "Status: Available", func(t *testing.T, r vehicle.Record) { require.False(t, r.Sold) }},
		{"read more", "Read more: Full service history", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Full service history", r.Note) }},
		{"leading whitespace", "   year: 2010", func(t *testing.T, r vehicle.Record) { require.Equal(t, "2010", r.Year) }},
		{"value keeps later colons", "Read more: Ready: yes", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Ready: yes", r.Note) }},
		{"empty name ignored", "Name:", func(t *testing.T, r vehicle.Record) { require.Equal(t, "Mazda Demio", r.Name) }},
		{"no colon is not a tag", "Price $4000", func(t *testing.T, r vehicle.Record) {
			require.Equal(t, vehicle.DefaultPrice, r.Price)
			require.Equal(t, "Price $4000", r.Body)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := vehicle.New("Mazda Demio", "Bulawayo")
			ParseDescription([]byte(tt.line), &rec)
			tt.check(t, rec)
		})
	}
}

func TestParseDescription_LastWriteWins(t *testing.T) {
	rec := vehicle.New("Nissan Navara", "Bulawayo")
	ParseDescription([]byte("Price: $9,000\nYear: 2012\nPrice: $8,500\r\n"), &rec)

	require.Equal(t, "$8,500", rec.Price)
	require.Equal(t, int64(8500), rec.PriceValue)
	require.Equal(t, "2012", rec.Year)
}

func TestParseDescription_StatusNeverUnsets(t *testing.T) {
	rec := vehicle.New("Honda Fit - SOLD", "Bulawayo")
	ParseDescription([]byte("Status: Available\n"), &rec)
	require.True(t, rec.Sold)
}

func TestParseDescription_ValuesWithColons(t *testing.T) {
	rec := vehicle.New("Mazda Demio", "Bulawayo")
	ParseDescription([]byte("Read more: Viewing hours: 09:00-17:00\nLocation: Bulawayo CBD: Fife St\n"), &rec)
	require.Equal(t, "Viewing hours: 09:00-17:00", rec.Note)
	require.Equal(t, "Bulawayo CBD: Fife St", rec.Location)
	require.Empty(t, rec.Body)
}

func TestParser_TruncateAtSecondColon(t *testing.T) {
	rec := vehicle.New("Mazda Demio", "Bulawayo")
	Parser{TruncateAtSecondColon: true}.Parse([]byte("Read more: Ready: yes, call 10:30"), &rec)
	require.Equal(t, "Ready", rec.Note)
}

func TestParseDescription_Body(t *testing.T) {
	rec := vehicle.New("Toyota Hilux", "Bulawayo")
	ParseDescription([]byte("Price: $20,000\n\nOne owner.\n\n* Tow bar\n* Canopy\n"), &rec)
	require.Equal(t, "One owner.\n\n* Tow bar\n* Canopy", rec.Body)
}

func TestParseDescription_FrontmatterOverriddenByLines(t *testing.T) {
	content := "---\nname: Toyota Hilux D4D\nprice: 21000\nyear: 2015\nnote: Canopy fitted\nsold: false\n---\nPrice: $19,500\n"
	rec := vehicle.New("Hilux", "Bulawayo")
	ParseDescription([]byte(content), &rec)

	require.Equal(t, "Toyota Hilux D4D", rec.Name)
	require.Equal(t, "$19,500", rec.Price)
	require.Equal(t, int64(19500), rec.PriceValue)
	require.Equal(t, "2015", rec.Year)
	require.Equal(t, "Canopy fitted", rec.Note)
	require.False(t, rec.Sold)
	require.Empty(t, rec.Body)
}

func TestParseDescription_FrontmatterSold(t *testing.T) {
	rec := vehicle.New("Hilux", "Bulawayo")
	ParseDescription([]byte("---\nsold: true\n---\n"), &rec)
	require.True(t, rec.Sold)

	rec = vehicle.New("Hilux", "Bulawayo")
	ParseDescription([]byte("---\nstatus: SOLD\n---\n"), &rec)
	require.True(t, rec.Sold)
}

func TestParseDescription_MalformedFrontmatterFallsBackToLines(t *testing.T) {
	rec := vehicle.New("Hilux", "Bulawayo")
	ParseDescription([]byte("---\nyear: 2011\n"), &rec)
	require.Equal(t, "2011", rec.Year)

	rec = vehicle.New("Hilux", "Bulawayo")
	ParseDescription([]byte("---\nmodel: [broken\n---\nYear: 2009\n"), &rec)
	require.Equal(t, "Hilux", rec.Name)
	require.Equal(t, "2009", rec.Year)
}
