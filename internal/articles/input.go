// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package articles

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"newsbombs/internal/models"
)

// CreateInput is the accepted shape of a create request.
type CreateInput struct {
	Title   string   `json:"title"`
	Summary *string  `json:"summary"`
	Content string   `json:"content"`
	Slug    *string  `json:"slug"`
	Date    string   `json:"date"`
	Lastmod *string  `json:"lastmod"`
	Tags    []string `json:"tags"`
	Images  []string `json:"images"`
	Draft   *bool    `json:"draft"`
	Layout  *string  `json:"layout"`
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Title   *string   `json:"title"`
	Summary *string   `json:"summary"`
	Content *string   `json:"content"`
	Slug    *string   `json:"slug"`
	Date    *string   `json:"date"`
	Lastmod *string   `json:"lastmod"`
	Tags    *[]string `json:"tags"`
	Images  *[]string `json:"images"`
	Draft   *bool     `json:"draft"`
	Layout  *string   `json:"layout"`
}

var (
	notEmpty   = validation.Required.Error("should not be empty")
	titleLen   = validation.RuneLength(0, 255).Error("must be shorter than or equal to 255 characters")
	slugLen    = validation.RuneLength(0, 255).Error("must be shorter than or equal to 255 characters")
	layoutLen  = validation.RuneLength(0, 50).Error("must be shorter than or equal to 50 characters")
	dateString = validation.By(isDateString)
	notBlank   = validation.By(isNotBlank)
	listItems  = validation.Each(validation.Required.Error("each value should not be empty"))
)

func isDateString(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := models.ParseDate(s); err != nil {
		return errInvalidDate
	}
	return nil
}

// isNotBlank rejects strings made only of whitespace. Nil pointers pass.
func isNotBlank(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_required", "should not be empty")
	}
	return nil
}

// errInvalidDate is the message used for any unparsable date field.
var errInvalidDate = validation.NewError("validation_is_date", "must be a valid ISO 8601 date string")

// parseDate parses a validated date field, reporting failures as a
// *ValidationError on field.
func parseDate(field, value string) (models.Date, error) {
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, &ValidationError{Fields: validation.Errors{field: errInvalidDate}}
	}
	return d, nil
}

// parseLastmod parses an optional lastmod. Nil or blank yields nil.
func parseLastmod(value *string) (*models.Date, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := parseDate("lastmod", *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks a create request.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, notEmpty, titleLen),
		validation.Field(&in.Content, notEmpty),
		validation.Field(&in.Date, notEmpty, notBlank, dateString),
		validation.Field(&in.Lastmod, dateString),
		validation.Field(&in.Slug, slugLen),
		validation.Field(&in.Layout, layoutLen),
		validation.Field(&in.Tags, listItems),
		validation.Field(&in.Images, listItems),
	)
}

// Validate checks an update request. Fields that are present obey the same
// rules as on create.
func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.When(in.Title != nil, notEmpty, titleLen)),
		validation.Field(&in.Content, validation.When(in.Content != nil, notEmpty)),
		validation.Field(&in.Date, validation.When(in.Date != nil, notEmpty, notBlank, dateString)),
		validation.Field(&in.Lastmod, dateString),
		validation.Field(&in.Slug, slugLen),
		validation.Field(&in.Layout, layoutLen),
		validation.Field(&in.Tags, validation.When(in.Tags != nil, validation.By(eachNotEmpty))),
		validation.Field(&in.Images, validation.When(in.Images != nil, validation.By(eachNotEmpty))),
	)
}

func eachNotEmpty(value any) error {
	list, ok := value.(*[]string)
	if !ok || list == nil {
		return nil
	}
	for _, s := range *list {
		if s == "" {
			return validation.NewError("validation_each_required", "each value should not be empty")
		}
	}
	return nil
}

// nonEmpty dereferences p, treating nil and "" alike.
func nonEmpty(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}
