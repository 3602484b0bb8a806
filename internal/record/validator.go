package record

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/vgridasov/WebRegLog/internal/models"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// typeCheckers maps a field type to its value check. Types missing here
// (checkbox, file) are accepted as opaque once the presence check passes.
var typeCheckers = map[string]func(models.JournalField, interface{}) []ValidationError{
	models.FieldNumber: checkNumber,
	models.FieldDate:   checkDate,
	models.FieldSelect: checkChoice,
	models.FieldRadio:  checkChoice,
	models.FieldText:   checkText,
}

// ValidateRecordData checks a record payload against a journal schema and
// returns every applicable error, ordered by the schema's display order.
// An empty result means the payload is accepted. Payload keys that don't
// appear in the schema pass through unvalidated.
//
// Pure function: same inputs always yield the same error sequence.
func ValidateRecordData(data map[string]interface{}, fields []models.JournalField) []ValidationError {
	ordered := make([]models.JournalField, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Order < ordered[b].Order
	})

	var errs []ValidationError

	for _, field := range ordered {
		value, exists := data[field.FieldID]

		if !exists || value == nil || value == "" {
			if field.Required {
				errs = append(errs, ValidationError{
					Field:   field.Label,
					Message: fmt.Sprintf("%s is required", field.Label),
				})
			}
			// optional and empty is always valid
			continue
		}

		if check, ok := typeCheckers[field.Type]; ok {
			errs = append(errs, check(field, value)...)
		}
	}

	return errs
}

func checkNumber(field models.JournalField, value interface{}) []ValidationError {
	num, ok := parseNumber(value)
	if !ok || math.IsNaN(num) || math.IsInf(num, 0) {
		return []ValidationError{{
			Field:   field.Label,
			Message: fmt.Sprintf("%s must be a number", field.Label),
		}}
	}

	var errs []ValidationError
	if field.Min != nil && num < *field.Min {
		errs = append(errs, ValidationError{
			Field:   field.Label,
			Message: fmt.Sprintf("%s must be at least %s", field.Label, formatBound(*field.Min)),
		})
	}
	if field.Max != nil && num > *field.Max {
		errs = append(errs, ValidationError{
			Field:   field.Label,
			Message: fmt.Sprintf("%s must not exceed %s", field.Label, formatBound(*field.Max)),
		})
	}
	return errs
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func checkDate(field models.JournalField, value interface{}) []ValidationError {
	invalid := []ValidationError{{
		Field:   field.Label,
		Message: fmt.Sprintf("%s must be a valid date", field.Label),
	}}

	strVal, ok := value.(string)
	if !ok {
		return invalid
	}

	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, strVal); err == nil {
			return nil
		}
	}
	return invalid
}

func checkChoice(field models.JournalField, value interface{}) []ValidationError {
	options := field.OptionValues()
	if len(options) == 0 {
		return nil
	}

	if strVal, ok := value.(string); ok {
		for _, option := range options {
			if option == strVal {
				return nil
			}
		}
	}

	return []ValidationError{{
		Field:   field.Label,
		Message: fmt.Sprintf("invalid value for %s", field.Label),
	}}
}

func checkText(field models.JournalField, value interface{}) []ValidationError {
	if field.Pattern == "" {
		return nil
	}

	re, err := regexp.Compile(field.Pattern)
	if err != nil {
		return []ValidationError{{
			Field:   field.Label,
			Message: fmt.Sprintf("%s has an invalid validation pattern", field.Label),
		}}
	}

	strVal, ok := value.(string)
	if !ok || !re.MatchString(strVal) {
		return []ValidationError{{
			Field:   field.Label,
			Message: fmt.Sprintf("%s does not match the required format", field.Label),
		}}
	}
	return nil
}

// parseNumber accepts the numeric shapes a JSON payload can carry: native
// numbers, json.Number, and numeric strings from form submissions.
func parseNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		num, err := v.Float64()
		return num, err == nil
	case string:
		num, err := strconv.ParseFloat(v, 64)
		return num, err == nil
	}
	return 0, false
}

func formatBound(bound float64) string {
	return strconv.FormatFloat(bound, 'f', -1, 64)
}
