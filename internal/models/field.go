// fieldbook/internal/models/field.go
package models

import (
	"math"
	"strings"
	"time"

	"fieldbook/internal/validation"
)

// Document keys as stored in the fields collection.
const (
	KeyID           = "_id"
	KeyName         = "name"
	KeyLocation     = "location"
	KeyCapacity     = "capacity"
	KeyPricePerHour = "pricePerHour"
	KeyStatus       = "status"
	KeyDescription  = "description"
	KeyCreatedAt    = "createdAt"
	KeyUpdatedAt    = "updatedAt"
)

// Keys written by the desktop release of the app.
const (
	legacyKeyPricePerHour = "price_per_hour"
	legacyKeyCreatedAt    = "created_at"
	legacyKeyUpdatedAt    = "updated_at"
)

// Defaults applied to new fields and to documents missing a value.
const (
	DefaultCapacity     = 10
	DefaultPricePerHour = 20.0
	DefaultStatus       = StatusAvailable
)

// Document is one stored field as a plain key/value mapping. The gateway hands
// the id over as its hex string under KeyID.
type Document map[string]any

// Field is a bookable football field.
type Field struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Capacity     int       `json:"capacity"`
	PricePerHour float64   `json:"pricePerHour"`
	Status       Status    `json:"status"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Mongo keeps milliseconds, so timestamps are truncated to survive a round trip.
var nowFunc = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewField returns an unsaved field with default values and its creation time fixed.
func NewField(name, location string) Field {
	return Field{
		Name:         name,
		Location:     location,
		Capacity:     DefaultCapacity,
		PricePerHour: DefaultPricePerHour,
		Status:       DefaultStatus,
		CreatedAt:    nowFunc(),
	}
}

// IsNew reports whether the field has not been persisted yet.
func (f Field) IsNew() bool {
	return f.ID == ""
}

// Validate returns every rule the field breaks, in a fixed order. An empty
// result means the field can be written.
func (f Field) Validate() []string {
	var errs []string

	if err := validation.RequireNonEmpty(f.Name, "Name"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validation.RequireNonEmpty(f.Location, "Location"); err != nil {
		errs = append(errs, err.Error())
	}
	if f.Capacity <= 0 {
		errs = append(errs, "Capacity must be a positive integer")
	}
	if f.PricePerHour < 0 || math.IsNaN(f.PricePerHour) || math.IsInf(f.PricePerHour, 0) {
		errs = append(errs, "Price per hour must be a non-negative number")
	}
	if err := validation.RequireMember(string(f.Status), "Status", Statuses()); err != nil {
		errs = append(errs, err.Error())
	}

	return errs
}

// Check is Validate as an error. It returns nil for a valid field and
// validation.Errors otherwise.
func (f Field) Check() error {
	if errs := f.Validate(); len(errs) > 0 {
		return validation.Errors(errs)
	}
	return nil
}

// ToDocument builds the write payload. The id is never part of it, updatedAt
// is always refreshed and createdAt is only sent for a field that has not been
// stored yet, so updates keep the original creation time.
func (f Field) ToDocument() Document {
	now := nowFunc()
	doc := Document{
		KeyName:         f.Name,
		KeyLocation:     f.Location,
		KeyCapacity:     f.Capacity,
		KeyPricePerHour: f.PricePerHour,
		KeyStatus:       string(f.Status),
		KeyDescription:  f.Description,
		KeyUpdatedAt:    now,
	}

	if f.IsNew() {
		createdAt := f.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		doc[KeyCreatedAt] = createdAt
	}

	return doc
}

// FromDocument rebuilds a field from a stored document. Missing values fall
// back to the defaults so partially written documents still load.
func FromDocument(doc Document) Field {
	f := Field{
		ID:           stringValue(doc[KeyID]),
		Name:         stringValue(doc[KeyName]),
		Location:     stringValue(doc[KeyLocation]),
		Capacity:     DefaultCapacity,
		PricePerHour: DefaultPricePerHour,
		Status:       DefaultStatus,
		Description:  stringValue(doc[KeyDescription]),
	}

	if v, ok := doc[KeyCapacity]; ok && v != nil {
		f.Capacity = intValue(v)
	}
	if v, ok := lookup(doc, KeyPricePerHour, legacyKeyPricePerHour); ok {
		f.PricePerHour = floatValue(v)
	}
	if v, ok := doc[KeyStatus]; ok && v != nil {
		f.Status = Status(stringValue(v))
	}
	if v, ok := lookup(doc, KeyCreatedAt, legacyKeyCreatedAt); ok {
		f.CreatedAt = timeValue(v)
	}
	if v, ok := lookup(doc, KeyUpdatedAt, legacyKeyUpdatedAt); ok {
		f.UpdatedAt = timeValue(v)
	}

	return f
}

func lookup(doc Document, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

type hexer interface {
	Hex() string
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case hexer:
		return s.Hex()
	}
	return ""
}

// intValue accepts any numeric type. A fractional number is not a capacity and
// comes back as 0 so Validate rejects it on the next save.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			return 0
		}
		return int(n)
	case float32:
		return intValue(float64(n))
	}
	return 0
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return math.NaN()
}

// Layouts for timestamps stored as text by older releases.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
