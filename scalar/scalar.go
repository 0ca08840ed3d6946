package scalar

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
)

// Value is a single typed scalar over an Arrow data type. The zero Value is
// invalid; use the constructors. A Value with no payload (see Null) stands
// for "no information": interval code treats it as an unbounded endpoint.
type Value struct {
	dt    arrow.DataType
	valid bool

	i int64
	u uint64
	f float64
	b bool
	s string
}

type family int8

const (
	familyInvalid family = iota
	familyBool
	familyInt
	familyUint
	familyFloat
	familyString
)

func familyOf(dt arrow.DataType) family {
	if dt == nil {
		return familyInvalid
	}
	switch dt.ID() {
	case arrow.BOOL:
		return familyBool
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return familyInt
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return familyUint
	case arrow.FLOAT32, arrow.FLOAT64:
		return familyFloat
	case arrow.STRING:
		return familyString
	default:
		return familyInvalid
	}
}

// Supported reports whether dt can be represented as a Value.
func Supported(dt arrow.DataType) bool {
	return familyOf(dt) != familyInvalid
}

// Null returns the typed null of dt. It does not validate dt; use Default
// when the type comes from an untrusted schema.
func Null(dt arrow.DataType) Value {
	return Value{dt: dt}
}

// Default returns the "no information" scalar for a schema field type: the
// typed null. It fails for types this library cannot order, which is how a
// malformed schema surfaces to callers.
func Default(dt arrow.DataType) (Value, error) {
	if !Supported(dt) {
		return Value{}, errors.Wrapf(cerr.ErrUnsupportedType, "no default scalar for %v", dt)
	}
	return Null(dt), nil
}

func NewBool(v bool) Value {
	return Value{dt: arrow.FixedWidthTypes.Boolean, valid: true, b: v}
}

func NewInt8(v int8) Value   { return newInt(arrow.PrimitiveTypes.Int8, int64(v)) }
func NewInt16(v int16) Value { return newInt(arrow.PrimitiveTypes.Int16, int64(v)) }
func NewInt32(v int32) Value { return newInt(arrow.PrimitiveTypes.Int32, int64(v)) }
func NewInt64(v int64) Value { return newInt(arrow.PrimitiveTypes.Int64, v) }

func NewUint8(v uint8) Value   { return newUint(arrow.PrimitiveTypes.Uint8, uint64(v)) }
func NewUint16(v uint16) Value { return newUint(arrow.PrimitiveTypes.Uint16, uint64(v)) }
func NewUint32(v uint32) Value { return newUint(arrow.PrimitiveTypes.Uint32, uint64(v)) }
func NewUint64(v uint64) Value { return newUint(arrow.PrimitiveTypes.Uint64, v) }

func NewFloat32(v float32) Value {
	return Value{dt: arrow.PrimitiveTypes.Float32, valid: true, f: float64(v)}
}

func NewFloat64(v float64) Value {
	return Value{dt: arrow.PrimitiveTypes.Float64, valid: true, f: v}
}

func NewString(v string) Value {
	return Value{dt: arrow.BinaryTypes.String, valid: true, s: v}
}

func NewDate32(v arrow.Date32) Value {
	return newInt(arrow.FixedWidthTypes.Date32, int64(v))
}

func NewDate64(v arrow.Date64) Value {
	return newInt(arrow.FixedWidthTypes.Date64, int64(v))
}

func NewTimestamp(v arrow.Timestamp, dt *arrow.TimestampType) Value {
	return newInt(dt, int64(v))
}

func newInt(dt arrow.DataType, v int64) Value {
	return Value{dt: dt, valid: true, i: v}
}

func newUint(dt arrow.DataType, v uint64) Value {
	return Value{dt: dt, valid: true, u: v}
}

// Make builds a Value of dt from a raw Go value. The raw kind must agree
// with dt's family: int64 for signed/temporal types, uint64 for unsigned,
// float64 for floats, bool and string for theirs.
func Make(dt arrow.DataType, raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case int64:
		switch familyOf(dt) {
		case familyInt:
			return newInt(dt, v), nil
		case familyUint:
			if v < 0 {
				return Value{}, errors.Wrapf(cerr.ErrUnsupportedType, "negative value for %v", dt)
			}
			return newUint(dt, uint64(v)), nil
		}
	case uint64:
		if familyOf(dt) == familyUint {
			return newUint(dt, v), nil
		}
	case float64:
		if familyOf(dt) == familyFloat {
			return Value{dt: dt, valid: true, f: v}, nil
		}
	case bool:
		if familyOf(dt) == familyBool {
			return Value{dt: dt, valid: true, b: v}, nil
		}
	case string:
		if familyOf(dt) == familyString {
			return Value{dt: dt, valid: true, s: v}, nil
		}
	}
	return Value{}, errors.Wrapf(cerr.ErrUnsupportedType, "cannot make %v from %T", dt, raw)
}

func (v Value) DataType() arrow.DataType { return v.dt }

// IsNull reports whether v is a typed null, i.e. carries no value.
func (v Value) IsNull() bool { return !v.valid }

// IsTrue reports whether v is the boolean constant true.
func (v Value) IsTrue() bool {
	return v.valid && familyOf(v.dt) == familyBool && v.b
}

// IsFalse reports whether v is the boolean constant false.
func (v Value) IsFalse() bool {
	return v.valid && familyOf(v.dt) == familyBool && !v.b
}

func (v Value) Bool() (bool, bool) {
	if !v.valid || familyOf(v.dt) != familyBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Int64() (int64, bool) {
	if !v.valid || familyOf(v.dt) != familyInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) Uint64() (uint64, bool) {
	if !v.valid || familyOf(v.dt) != familyUint {
		return 0, false
	}
	return v.u, true
}

func (v Value) Float64() (float64, bool) {
	if !v.valid || familyOf(v.dt) != familyFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) Str() (string, bool) {
	if !v.valid || familyOf(v.dt) != familyString {
		return "", false
	}
	return v.s, true
}

// Equal reports strict equality: same type family, same validity, same value.
func Equal(a, b Value) bool {
	fa, fb := familyOf(a.dt), familyOf(b.dt)
	if fa != fb || fa == familyInvalid {
		return false
	}
	if a.valid != b.valid {
		return false
	}
	if !a.valid {
		return true
	}
	switch fa {
	case familyBool:
		return a.b == b.b
	case familyInt:
		return a.i == b.i
	case familyUint:
		return a.u == b.u
	case familyFloat:
		return a.f == b.f
	case familyString:
		return a.s == b.s
	}
	return false
}

// Compare orders two non-null values of the same type family. The result is
// negative, zero, or positive in the usual way.
func Compare(a, b Value) (int, error) {
	fa, fb := familyOf(a.dt), familyOf(b.dt)
	if fa == familyInvalid || fa != fb {
		return 0, errors.Wrapf(cerr.ErrIncompatibleIntervals, "cannot compare %v and %v", a.dt, b.dt)
	}
	if !a.valid || !b.valid {
		return 0, errors.Wrap(cerr.ErrIncompatibleIntervals, "cannot compare null scalars")
	}
	switch fa {
	case familyBool:
		return btoi(a.b) - btoi(b.b), nil
	case familyInt:
		return cmpInt64(a.i, b.i), nil
	case familyUint:
		return cmpUint64(a.u, b.u), nil
	case familyFloat:
		return cmpFloat64(a.f, b.f), nil
	case familyString:
		switch {
		case a.s < b.s:
			return -1, nil
		case a.s > b.s:
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.Wrapf(cerr.ErrIncompatibleIntervals, "cannot compare %v", a.dt)
}

// IsBoolean reports whether dt is the boolean type.
func IsBoolean(dt arrow.DataType) bool {
	return familyOf(dt) == familyBool
}

// IsNumeric reports whether values of dt support Add/Sub/Distance.
func IsNumeric(dt arrow.DataType) bool {
	switch familyOf(dt) {
	case familyInt, familyUint, familyFloat:
		return true
	}
	return false
}

// IsDiscrete reports whether dt has a countable domain with a unit step.
// Floats and strings are continuous/uncountable for our purposes.
func IsDiscrete(dt arrow.DataType) bool {
	switch familyOf(dt) {
	case familyInt, familyUint, familyBool:
		return true
	}
	return false
}

// Add returns a+b for numeric values of the same family. The result carries
// a's data type.
func Add(a, b Value) (Value, error) {
	if err := checkArith(a, b); err != nil {
		return Value{}, err
	}
	out := a
	switch familyOf(a.dt) {
	case familyInt:
		out.i = a.i + b.i
	case familyUint:
		out.u = a.u + b.u
	case familyFloat:
		out.f = a.f + b.f
	}
	return out, nil
}

// Sub returns a-b for numeric values of the same family. Unsigned results
// clamp at zero instead of wrapping.
func Sub(a, b Value) (Value, error) {
	if err := checkArith(a, b); err != nil {
		return Value{}, err
	}
	out := a
	switch familyOf(a.dt) {
	case familyInt:
		out.i = a.i - b.i
	case familyUint:
		if b.u > a.u {
			out.u = 0
		} else {
			out.u = a.u - b.u
		}
	case familyFloat:
		out.f = a.f - b.f
	}
	return out, nil
}

func checkArith(a, b Value) error {
	fa, fb := familyOf(a.dt), familyOf(b.dt)
	if fa != fb || !IsNumeric(a.dt) {
		return errors.Wrapf(cerr.ErrIncompatibleIntervals, "no arithmetic over %v and %v", a.dt, b.dt)
	}
	if !a.valid || !b.valid {
		return errors.Wrap(cerr.ErrIncompatibleIntervals, "no arithmetic over null scalars")
	}
	return nil
}

// Step returns the smallest positive increment of a discrete numeric domain,
// in dt's own representation. ok is false for continuous or non-numeric types.
func Step(dt arrow.DataType) (Value, bool) {
	switch familyOf(dt) {
	case familyInt:
		return newInt(dt, 1), true
	case familyUint:
		return newUint(dt, 1), true
	}
	return Value{}, false
}

// Distance returns b-a as a float64. Used for interval widths, so precision
// loss on huge int64 ranges is acceptable.
func Distance(a, b Value) (float64, error) {
	if err := checkArith(a, b); err != nil {
		return 0, err
	}
	switch familyOf(a.dt) {
	case familyInt:
		return float64(b.i) - float64(a.i), nil
	case familyUint:
		return float64(b.u) - float64(a.u), nil
	case familyFloat:
		return b.f - a.f, nil
	}
	return 0, errors.Wrapf(cerr.ErrIncompatibleIntervals, "no distance over %v", a.dt)
}

func (v Value) String() string {
	if v.dt == nil {
		return "invalid"
	}
	if !v.valid {
		return fmt.Sprintf("null[%v]", v.dt)
	}
	switch familyOf(v.dt) {
	case familyBool:
		return strconv.FormatBool(v.b)
	case familyInt:
		return strconv.FormatInt(v.i, 10)
	case familyUint:
		return strconv.FormatUint(v.u, 10)
	case familyFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case familyString:
		return strconv.Quote(v.s)
	}
	return "invalid"
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
