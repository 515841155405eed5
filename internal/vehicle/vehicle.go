// Package vehicle defines the record extracted for each vehicle folder.
package vehicle

import (
	"math"
	"strings"
)

// Body types recognised by inference. Any other non-empty value supplied by
// an author is kept verbatim.
const (
	BodySUV       = "SUV"
	BodySedan     = "Sedan"
	BodyTruck     = "Truck"
	BodyHatchback = "Hatchback"
	BodyVanBus    = "Van/Bus"
	BodyOther     = "Other"
)

// Fuel types.
const (
	FuelPetrol = "Petrol"
	FuelDiesel = "Diesel"
	FuelHybrid = "Hybrid"
)

// Field defaults used when a description omits a value.
const (
	DefaultPrice = "Contact for Price"
	NotAvailable = "N/A"
	DefaultNote  = "Contact for more details"
	DefaultName  = "Vehicle"
)

// Record is one vehicle as read from its folder.
type Record struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	PriceValue   int64  `json:"price_value"`
	Mileage      string `json:"mileage"`
	Year         string `json:"year"`
	Transmission string `json:"transmission"`
	BodyType     string `json:"body_type"`
	Fuel         string `json:"fuel"`
	Location     string `json:"location"`
	Note         string `json:"note"`
	// Body holds description lines that did not match a known field.
	Body string `json:"body,omitempty"`
	Sold bool   `json:"sold"`

	MainImage string   `json:"main_image"`
	Images    []string `json:"images"`
	Thumbs    []string `json:"thumbs"`
	Slug      string   `json:"slug"`

	Folder          string `json:"folder"`
	Dir             string `json:"-"`
	DescriptionFile string `json:"description_file,omitempty"`
	// Files lists the regular files of the folder in enumeration order.
	Files []string `json:"-"`
}

// New returns a record for folder with every default applied.
func New(folder, location string) Record {
	return Record{
		Name:         NameFromFolder(folder),
		Price:        DefaultPrice,
		Mileage:      NotAvailable,
		Year:         NotAvailable,
		Transmission: NotAvailable,
		BodyType:     BodyOther,
		Fuel:         FuelPetrol,
		Location:     location,
		Note:         DefaultNote,
		Sold:         FolderMarksSold(folder),
		Folder:       folder,
	}
}

// NameFromFolder is the display name used when no Name line exists: the text
// before the first '-', or the whole folder name when that part is empty.
// A blank folder name yields DefaultName.
func NameFromFolder(folder string) string {
	before, _, _ := strings.Cut(folder, "-")
	if name := strings.TrimSpace(before); name != "" {
		return name
	}
	if name := strings.TrimSpace(folder); name != "" {
		return name
	}
	return DefaultName
}

// FolderMarksSold reports whether a folder name carries the SOLD marker.
func FolderMarksSold(folder string) bool {
	return strings.Contains(strings.ToUpper(folder), "SOLD")
}

// ParsePriceValue concatenates every ASCII digit in price into an integer.
// No digits, or a value that overflows int64, yields 0.
func ParsePriceValue(price string) int64 {
	var v int64
	seen := false
	for _, r := range price {
		if r < '0' || r > '9' {
			continue
		}
		d := int64(r - '0')
		if v > (math.MaxInt64-d)/10 {
			return 0
		}
		v = v*10 + d
		seen = true
	}
	if !seen {
		return 0
	}
	return v
}

// HasOpenBodyType reports whether inference may still choose a body type.
func (r *Record) HasOpenBodyType() bool {
	t := strings.TrimSpace(r.BodyType)
	return t == "" || strings.EqualFold(t, BodyOther)
}

// Label is the vehicle name with its model year when one is known.
func (r *Record) Label() string {
	if r.Year == "" || r.Year == NotAvailable {
		return r.Name
	}
	return r.Name + " (" + r.Year + ")"
}
