package console

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FilterKind describes how a filter field is edited and validated.
type FilterKind string

const (
	FilterText   FilterKind = "text"
	FilterDate   FilterKind = "date"
	FilterSelect FilterKind = "select"
)

const filterDateLayout = "2006-01-02"

var (
	errUnknownFilter = errors.New("console: unknown filter field")
	errInvalidFilter = errors.New("console: invalid filter value")
)

// FilterOption is a selectable value for select filters.
type FilterOption struct {
	Value string
	Label string
}

// FilterField declares one filter input. Values equal to AnyValue (for example
// "ALL") mean "no constraint" and are never sent to the backend.
type FilterField struct {
	Key      string
	Label    string
	Kind     FilterKind
	Options  []FilterOption
	Default  string
	AnyValue string
}

// FilterValue pairs a field with its current value for rendering.
type FilterValue struct {
	FilterField
	Value string
}

// FilterState is the mutable filter-field to value mapping of a list view.
type FilterState struct {
	fields []FilterField
	values map[string]string
}

// NewFilterState initializes every field to its default.
func NewFilterState(fields []FilterField) FilterState {
	state := FilterState{
		fields: append([]FilterField(nil), fields...),
		values: make(map[string]string, len(fields)),
	}
	state.Reset()
	return state
}

// Get returns the current value for key.
func (s FilterState) Get(key string) string {
	return s.values[key]
}

// Set assigns value to key and reports whether the state changed.
func (s *FilterState) Set(key, value string) (bool, error) {
	field, ok := s.field(key)
	if !ok {
		return false, fmt.Errorf("%w: %s", errUnknownFilter, key)
	}
	value = strings.TrimSpace(value)
	if err := field.validate(value); err != nil {
		return false, err
	}
	if s.values[key] == value {
		return false, nil
	}
	s.values[key] = value
	return true, nil
}

// Reset restores every field to its default value.
func (s *FilterState) Reset() {
	if s.values == nil {
		s.values = make(map[string]string, len(s.fields))
	}
	for _, field := range s.fields {
		s.values[field.Key] = field.Default
	}
}

// Clone returns an independent copy.
func (s FilterState) Clone() FilterState {
	out := FilterState{
		fields: append([]FilterField(nil), s.fields...),
		values: make(map[string]string, len(s.values)),
	}
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether both states hold the same values.
func (s FilterState) Equal(other FilterState) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		if other.values[k] != v {
			return false
		}
	}
	return true
}

// Active returns the values that constrain a query: empty and "any" values are omitted.
func (s FilterState) Active() map[string]string {
	out := map[string]string{}
	for _, field := range s.fields {
		value := s.values[field.Key]
		if value == "" || (field.AnyValue != "" && value == field.AnyValue) {
			continue
		}
		out[field.Key] = value
	}
	return out
}

// Values returns every field with its current value, in declaration order.
func (s FilterState) Values() []FilterValue {
	out := make([]FilterValue, 0, len(s.fields))
	for _, field := range s.fields {
		out = append(out, FilterValue{FilterField: field, Value: s.values[field.Key]})
	}
	return out
}

// Fields returns the declared filter fields.
func (s FilterState) Fields() []FilterField {
	return append([]FilterField(nil), s.fields...)
}

func (s FilterState) field(key string) (FilterField, bool) {
	for _, field := range s.fields {
		if field.Key == key {
			return field, true
		}
	}
	return FilterField{}, false
}

func (f FilterField) validate(value string) error {
	if value == "" {
		return nil
	}
	switch f.Kind {
	case FilterDate:
		if _, err := time.Parse(filterDateLayout, value); err != nil {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD", errInvalidFilter, f.Key)
		}
	case FilterSelect:
		if len(f.Options) == 0 {
			return nil
		}
		for _, opt := range f.Options {
			if opt.Value == value {
				return nil
			}
		}
		return fmt.Errorf("%w: %s does not accept %q", errInvalidFilter, f.Key, value)
	}
	return nil
}
