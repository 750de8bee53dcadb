package mapview

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/models"
)

type criterionKind int

const (
	kindString criterionKind = iota
	kindNumber
	kindBool
	kindOpaque
)

type attribute struct {
	kind  criterionKind
	str   func(m models.Marker) string
	num   func(m models.Marker) float64
	flag  func(m models.Marker) bool
	value func(m models.Marker) any
}

// attributes lists every marker field a filter can constrain, keyed by its
// JSON name.
var attributes = map[string]attribute{
	"id":            {kind: kindString, str: func(m models.Marker) string { return m.ID }},
	"poleID":        {kind: kindString, str: func(m models.Marker) string { return m.PoleID }},
	"label":         {kind: kindString, str: func(m models.Marker) string { return m.Label }},
	"poleOwner":     {kind: kindString, str: func(m models.Marker) string { return m.PoleOwner }},
	"lightbulbType": {kind: kindString, str: func(m models.Marker) string { return m.LightbulbType }},
	"wattage":       {kind: kindNumber, num: func(m models.Marker) float64 { return m.Wattage }},
	"lat":           {kind: kindNumber, num: func(m models.Marker) float64 { return m.Lat }},
	"lng":           {kind: kindNumber, num: func(m models.Marker) float64 { return m.Lng }},
	"wireless":      {kind: kindBool, flag: func(m models.Marker) bool { return m.Wireless }},
	"attachedTech":  {kind: kindOpaque, value: func(m models.Marker) any { return m.AttachedTech }},
}

// Attributes returns the filterable attribute names in sorted order.
func Attributes() []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// criterion is an equality constraint on one marker attribute. The field
// used depends on the attribute's kind.
type criterion struct {
	attr   string
	kind   criterionKind
	text   string
	number float64
	flag   bool
}

// newCriterion parses value for the named attribute.
func newCriterion(attr string, value any) (criterion, error) {
	def, ok := attributes[attr]
	if !ok {
		return criterion{}, fmt.Errorf("%w: unknown attribute %q", ErrInvalidFilterValue, attr)
	}
	if value == nil {
		return criterion{}, fmt.Errorf("%w: %s has no value", ErrInvalidFilterValue, attr)
	}

	c := criterion{attr: attr, kind: def.kind}
	switch def.kind {
	case kindString:
		text, ok := scalarText(value)
		if !ok {
			return criterion{}, fmt.Errorf("%w: %s expects text, got %T", ErrInvalidFilterValue, attr, value)
		}
		c.text = text
	case kindNumber:
		n, ok := toNumber(value)
		if !ok {
			return criterion{}, fmt.Errorf("%w: %s expects a number, got %v", ErrInvalidFilterValue, attr, value)
		}
		c.number = n
	case kindBool:
		b, ok := toBool(value)
		if !ok {
			return criterion{}, fmt.Errorf("%w: %s expects true or false, got %v", ErrInvalidFilterValue, attr, value)
		}
		c.flag = b
	case kindOpaque:
		c.text = opaqueText(value)
	}
	return c, nil
}

// matches reports whether the marker's attribute equals the criterion value.
func (c criterion) matches(m models.Marker) bool {
	def := attributes[c.attr]
	switch c.kind {
	case kindString:
		return def.str(m) == c.text
	case kindNumber:
		return def.num(m) == c.number
	case kindBool:
		return def.flag(m) == c.flag
	case kindOpaque:
		return opaqueText(def.value(m)) == c.text
	}
	return false
}

// value returns the criterion value in its typed form.
func (c criterion) value() any {
	switch c.kind {
	case kindNumber:
		return c.number
	case kindBool:
		return c.flag
	default:
		return c.text
	}
}

// FilterState is an immutable set of constraints on the visible markers.
// Every transition returns a new value and leaves the receiver untouched.
type FilterState struct {
	criteria    map[string]criterion
	poleIDQuery *string
	bounds      *geo.Bounds
}

func NewFilterState() FilterState {
	return FilterState{}
}

// With sets the constraint for attr, replacing any previous one. A nil value
// removes it. Invalid input leaves the state unchanged and returns
// ErrInvalidFilterValue.
func (f FilterState) With(attr string, value any) (FilterState, error) {
	if value == nil {
		return f.Without(attr), nil
	}

	c, err := newCriterion(attr, value)
	if err != nil {
		return f, err
	}

	next := f
	next.criteria = make(map[string]criterion, len(f.criteria)+1)
	for k, v := range f.criteria {
		next.criteria[k] = v
	}
	next.criteria[attr] = c
	return next, nil
}

// Without removes the constraint for attr; removing an unset one is a no-op.
func (f FilterState) Without(attr string) FilterState {
	if _, ok := f.criteria[attr]; !ok {
		return f
	}
	next := f
	next.criteria = nil
	if len(f.criteria) > 1 {
		next.criteria = make(map[string]criterion, len(f.criteria)-1)
		for k, v := range f.criteria {
			if k != attr {
				next.criteria[k] = v
			}
		}
	}
	return next
}

// WithPoleIDQuery sets the pole id substring; nil clears it.
func (f FilterState) WithPoleIDQuery(q *string) FilterState {
	next := f
	next.poleIDQuery = nil
	if q != nil {
		s := *q
		next.poleIDQuery = &s
	}
	return next
}

// WithBounds restricts markers to the box; nil clears it.
func (f FilterState) WithBounds(b *geo.Bounds) (FilterState, error) {
	next := f
	next.bounds = nil
	if b != nil {
		if err := b.Validate(); err != nil {
			return f, err
		}
		box := *b
		next.bounds = &box
	}
	return next, nil
}

// Cleared returns the empty state.
func (f FilterState) Cleared() FilterState {
	return FilterState{}
}

func (f FilterState) Len() int {
	return len(f.criteria)
}

func (f FilterState) IsEmpty() bool {
	return len(f.criteria) == 0 && f.poleIDQuery == nil && f.bounds == nil
}

// Criteria returns attribute -> typed value for every set constraint.
func (f FilterState) Criteria() map[string]any {
	out := make(map[string]any, len(f.criteria))
	for k, c := range f.criteria {
		out[k] = c.value()
	}
	return out
}

func (f FilterState) PoleIDQuery() (string, bool) {
	if f.poleIDQuery == nil {
		return "", false
	}
	return *f.poleIDQuery, true
}

func (f FilterState) Bounds() (geo.Bounds, bool) {
	if f.bounds == nil {
		return geo.Bounds{}, false
	}
	return *f.bounds, true
}

// Matches reports whether the marker passes every constraint.
func (f FilterState) Matches(m models.Marker) bool {
	if f.poleIDQuery != nil && !strings.Contains(m.PoleID, *f.poleIDQuery) {
		return false
	}
	for _, c := range f.criteria {
		if !c.matches(m) {
			return false
		}
	}
	if f.bounds != nil && !f.bounds.Contains(m.Lat, m.Lng) {
		return false
	}
	return true
}

// Filter returns the markers passing f, in their original order.
func Filter(markers []models.Marker, f FilterState) []models.Marker {
	out := make([]models.Marker, 0, len(markers))
	for _, m := range markers {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return formatNumber(t), true
	case float32:
		return formatNumber(float64(t)), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	}
	return "", false
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case int32:
		n = float64(t)
	case uint:
		n = float64(t)
	case uint64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

// opaqueText gives attached-tech values a stable text form: scalars print
// as themselves, structured values as compact JSON with sorted keys.
func opaqueText(v any) string {
	if v == nil {
		return ""
	}
	if text, ok := scalarText(v); ok {
		return text
	}
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
