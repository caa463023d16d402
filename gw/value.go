package gw

import "strings"

// Tag is a single-ASCII-character wire type tag.
type Tag byte

// Value type tags, one per wire type.
const (
	TagReference      Tag = 'r'
	TagInt32          Tag = 'i'
	TagInt64          Tag = 'L'
	TagDouble         Tag = 'd'
	TagDecimal        Tag = 'D'
	TagBool           Tag = 'b'
	TagString         Tag = 's'
	TagBytes          Tag = 'j'
	TagNull           Tag = 'n'
	TagVoid           Tag = 'v'
	TagCallbackProxy  Tag = 'f'
	TagList           Tag = 'l'
	TagSet            Tag = 'h'
	TagMap            Tag = 'a'
	TagArray          Tag = 't'
	TagIterator       Tag = 'g'
)

// Reserved identifiers.
const (
	// EntryPointID denotes the gateway's entry-point object.
	EntryPointID = "t"
	// DefaultNamespaceID denotes the default namespace view.
	DefaultNamespaceID = "rj"
	// staticDispatchPrefix marks a target ID as a fully-qualified class
	// name routed by static dispatch rather than by object reference.
	staticDispatchPrefix = "z:"
)

// StaticTargetID builds the static-dispatch target ID for a fully
// qualified class name. Static-dispatch IDs are constructed only from
// fully-qualified names the client itself produces.
func StaticTargetID(fqn string) string {
	return staticDispatchPrefix + fqn
}

// IsStaticTargetID reports whether id is a static-dispatch reference,
// and if so returns the fully-qualified class name it names.
func IsStaticTargetID(id string) (fqn string, ok bool) {
	if strings.HasPrefix(id, staticDispatchPrefix) {
		return id[len(staticDispatchPrefix):], true
	}
	return "", false
}

// ValueKind enumerates the variants of the tagged-union Value.
type ValueKind int

const (
	// KindNull represents the null/absent value.
	KindNull ValueKind = iota
	// KindVoid represents the absence of a return value.
	KindVoid
	// KindBool represents a boolean.
	KindBool
	// KindInt32 represents a 32-bit signed integer.
	KindInt32
	// KindInt64 represents a 64-bit signed integer.
	KindInt64
	// KindBigInt represents an arbitrary-precision integer that could
	// not be represented losslessly as a native 64-bit integer.
	KindBigInt
	// KindDouble represents a floating point double.
	KindDouble
	// KindDecimal represents an arbitrary-precision decimal preserved as
	// opaque text.
	KindDecimal
	// KindString represents a text string.
	KindString
	// KindBytes represents a raw byte sequence.
	KindBytes
	// KindProxy represents a reference to a host object, wrapped as a
	// Proxy of the kind the host tagged it with.
	KindProxy
	// KindLocalProxy represents a local object registered for inbound
	// host callback.
	KindLocalProxy
)

// Value is the tagged union. Only the field(s) relevant to Kind are
// meaningful.
type Value struct {
	Kind ValueKind

	Bool    bool
	Int32   int32
	Int64   int64
	BigInt  string // base-10 digits, used only when Int64 would lose precision
	Double  float64
	Decimal string // opaque textual form, preserved byte-for-byte
	Str     string
	Bytes   []byte
	Proxy   Proxy
	Local   *LocalProxy
}

// LocalProxy is the local-interface-implementation sum-type variant: a
// local object plus the set of host interface names it implements, to
// be registered with a ProxyPool and encoded with tag `f`.
type LocalProxy struct {
	Impl       interface{}
	Interfaces []string
}

// NullValue returns the null Value.
func NullValue() Value { return Value{Kind: KindNull} }

// VoidValue returns the void Value.
func VoidValue() Value { return Value{Kind: KindVoid} }

// BoolValue wraps a boolean as a Value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int32Value wraps a signed 32-bit integer as a Value.
func Int32Value(i int32) Value { return Value{Kind: KindInt32, Int32: i} }

// Int64Value wraps a signed 64-bit integer as a Value.
func Int64Value(i int64) Value { return Value{Kind: KindInt64, Int64: i} }

// DoubleValue wraps a float64 as a Value.
func DoubleValue(d float64) Value { return Value{Kind: KindDouble, Double: d} }

// DecimalValue wraps an opaque decimal string as a Value.
func DecimalValue(s string) Value { return Value{Kind: KindDecimal, Decimal: s} }

// StringValue wraps a string as a Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// BytesValue wraps a byte slice as a Value.
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// ProxyValue wraps a Proxy as a Value.
func ProxyValue(p Proxy) Value { return Value{Kind: KindProxy, Proxy: p} }

// LocalProxyValue wraps a local callback implementation as a Value.
func LocalProxyValue(impl interface{}, interfaces ...string) Value {
	return Value{Kind: KindLocalProxy, Local: &LocalProxy{Impl: impl, Interfaces: interfaces}}
}

// IsAbsent reports whether the Value is null or void — the two variants
// the callback server encodes as `!yv\n` with no further payload.
func (v Value) IsAbsent() bool {
	return v.Kind == KindNull || v.Kind == KindVoid
}
