package models

import (
	"strconv"
	"strings"

	"fieldbook/internal/validation"
)

// FieldForm is a field as typed by an operator, before any parsing.
type FieldForm struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	Capacity     string `json:"capacity"`
	PricePerHour string `json:"pricePerHour"`
	Status       string `json:"status"`
	Description  string `json:"description"`
}

type parsedForm struct {
	capacity int
	price    float64
}

func (in FieldForm) parse() (parsedForm, []string) {
	var (
		out  parsedForm
		errs []string
		err  error
	)

	if err = validation.RequireNonEmpty(in.Name, "Field name"); err != nil {
		errs = append(errs, err.Error())
	}
	if err = validation.RequireNonEmpty(in.Location, "Location"); err != nil {
		errs = append(errs, err.Error())
	}
	if out.capacity, err = validation.RequireIntegerInRange(in.Capacity, "Capacity", validation.Bound(1), nil); err != nil {
		errs = append(errs, err.Error())
	}
	if out.price, err = validation.RequireNumberInRange(in.PricePerHour, "Price per hour", validation.Bound(0.0), nil); err != nil {
		errs = append(errs, err.Error())
	}
	if err = validation.RequireMember(in.Status, "Status", Statuses()); err != nil {
		errs = append(errs, err.Error())
	}

	return out, errs
}

// Validate returns every problem with the raw input, all at once.
func (in FieldForm) Validate() []string {
	_, errs := in.parse()
	return errs
}

// Field converts a form into a new, unsaved field. It returns validation.Errors
// when the input is rejected.
func (in FieldForm) Field() (Field, error) {
	f := NewField("", "")
	if err := in.Apply(&f); err != nil {
		return Field{}, err
	}
	return f, nil
}

// Apply copies the form onto an existing field, keeping its id and timestamps.
// The field is left untouched when the input is rejected.
func (in FieldForm) Apply(f *Field) error {
	parsed, errs := in.parse()
	if len(errs) > 0 {
		return validation.Errors(errs)
	}

	f.Name = strings.TrimSpace(in.Name)
	f.Location = strings.TrimSpace(in.Location)
	f.Capacity = parsed.capacity
	f.PricePerHour = parsed.price
	f.Status = Status(in.Status)
	f.Description = strings.TrimSpace(in.Description)
	return nil
}

// FormFromField fills a form with the current values of f, for editing.
func FormFromField(f Field) FieldForm {
	return FieldForm{
		Name:         f.Name,
		Location:     f.Location,
		Capacity:     strconv.Itoa(f.Capacity),
		PricePerHour: strconv.FormatFloat(f.PricePerHour, 'f', -1, 64),
		Status:       string(f.Status),
		Description:  f.Description,
	}
}
