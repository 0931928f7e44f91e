package internal

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptyNeighborSet  = errors.New("empty neighbor set")
	ErrEmptyTestSet      = errors.New("empty test set")
	ErrInvalidK          = errors.New("k must be a positive integer")
	ErrEmptyRecord       = errors.New("empty record")
	ErrNonNumericFeature = errors.New("non-numeric feature")
)

type ValueKind uint8

const (
	KindAbsent ValueKind = iota
	KindNumber
	KindText
)

// Value is a label: either a number or a text, never both. The zero Value is
// an absent label.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

// ParseValue turns a raw field into a number when it is a plain decimal and
// keeps it as text otherwise. NaN, Inf, hex and exponent forms stay text.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if f, ok := parseNumber(s); ok {
		return NumberValue(f)
	}
	return TextValue(s)
}

// parseNumber accepts an optional sign followed by digits with at most one
// decimal point.
func parseNumber(s string) (float64, bool) {
	if !isPlainDecimal(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isPlainDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

// Equal reports whether both values hold the same variant and the same content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindText:
		return v.text == o.text
	default:
		return true
	}
}

// key is a comparable form of v. Equal values share a key, NaN included.
func (v Value) key() valueKey {
	switch v.kind {
	case KindNumber:
		n := v.num
		if n == 0 {
			n = 0 // fold -0
		}
		return valueKey{kind: v.kind, repr: strconv.FormatFloat(n, 'g', -1, 64)}
	case KindText:
		return valueKey{kind: v.kind, repr: v.text}
	default:
		return valueKey{}
	}
}

type valueKey struct {
	kind ValueKind
	repr string
}

// Compare orders absent before numbers before texts.
func (v Value) Compare(o Value) int {
	if c := cmp.Compare(v.kind, o.kind); c != 0 {
		return c
	}
	switch v.kind {
	case KindNumber:
		return cmp.Compare(v.num, o.num)
	case KindText:
		return strings.Compare(v.text, o.text)
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

func (v Value) scalar() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.scalar())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Value{}
	case float64:
		*v = NumberValue(x)
	case string:
		*v = TextValue(x)
	default:
		return fmt.Errorf("unsupported label %s", string(data))
	}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	return v.scalar(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		*v = Value{}
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("parse label %q: %w", node.Value, err)
		}
		*v = NumberValue(f)
	default:
		*v = TextValue(node.Value)
	}
	return nil
}

// FeatureVector is one observation: numeric features plus a trailing label.
type FeatureVector struct {
	Features []float64 `json:"features" yaml:"features"`
	Label    Value     `json:"label" yaml:"label"`
}

func NewFeatureVector(features []float64, label Value) FeatureVector {
	return FeatureVector{
		Features: slices.Clone(features),
		Label:    label,
	}
}

func (fv FeatureVector) Arity() int { return len(fv.Features) }

func (fv FeatureVector) HasLabel() bool { return !fv.Label.IsAbsent() }

func (fv FeatureVector) String() string {
	parts := make([]string, 0, len(fv.Features)+1)
	for _, f := range fv.Features {
		parts = append(parts, strconv.FormatFloat(f, 'g', -1, 64))
	}
	if fv.HasLabel() {
		parts = append(parts, fv.Label.String())
	}
	return strings.Join(parts, ",")
}

type Dataset []FeatureVector

// Arity returns the shared numeric arity of the dataset, 0 when empty.
func (d Dataset) Arity() (int, error) {
	if len(d) == 0 {
		return 0, nil
	}
	arity := d[0].Arity()
	for i, fv := range d[1:] {
		if fv.Arity() != arity {
			return 0, fmt.Errorf("%w: row %d has %d features, expected %d", ErrDimensionMismatch, i+2, fv.Arity(), arity)
		}
	}
	return arity, nil
}

// Labels returns the distinct labels in first-seen order.
func (d Dataset) Labels() []Value {
	var labels []Value
	for _, fv := range d {
		if !slices.ContainsFunc(labels, fv.Label.Equal) {
			labels = append(labels, fv.Label)
		}
	}
	return labels
}

type NeighborResult struct {
	Distance float64 `json:"distance" yaml:"distance"`
	Label    Value   `json:"label" yaml:"label"`
}

type Prediction struct {
	Vector    FeatureVector `json:"input" yaml:"input"`
	Actual    Value         `json:"actual" yaml:"actual"`
	Predicted Value         `json:"predicted" yaml:"predicted"`
	Correct   bool          `json:"correct" yaml:"correct"`
}

type EvaluationResult struct {
	Accuracy    float64      `json:"accuracy" yaml:"accuracy"`
	Correct     int          `json:"correct" yaml:"correct"`
	Total       int          `json:"total" yaml:"total"`
	Predictions []Prediction `json:"predictions" yaml:"predictions"`
}
