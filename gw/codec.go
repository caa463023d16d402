package gw

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeValue emits a single command part — a type tag followed by a tag-specific
// payload — terminated by one newline. pool may be nil unless v carries
// a KindLocalProxy variant, in which case the local object is registered
// with pool and its assigned ID is encoded with tag `f`.
func EncodeValue(v Value, pool *ProxyPool) (string, error) {
	switch v.Kind {
	case KindNull, KindVoid:
		return "n\n", nil
	case KindBool:
		if v.Bool {
			return "btrue\n", nil
		}
		return "bfalse\n", nil
	case KindInt32:
		return fmt.Sprintf("i%d\n", v.Int32), nil
	case KindInt64:
		if v.Int64 >= math.MinInt32 && v.Int64 <= math.MaxInt32 {
			return fmt.Sprintf("i%d\n", v.Int64), nil
		}
		return fmt.Sprintf("L%d\n", v.Int64), nil
	case KindBigInt:
		// The wire format defines no arbitrary-precision integer tag.
		// Reject at the encoder boundary rather than silently truncate.
		return "", newUnsupportedLocalType(v.BigInt)
	case KindDouble:
		return "d" + strconv.FormatFloat(v.Double, 'g', -1, 64) + "\n", nil
	case KindDecimal:
		return "D" + v.Decimal + "\n", nil
	case KindString:
		return "s" + EscapeString(v.Str) + "\n", nil
	case KindBytes:
		return "j" + base64.StdEncoding.EncodeToString(v.Bytes) + "\n", nil
	case KindProxy:
		if v.Proxy == nil {
			return "n\n", nil
		}
		return "r" + v.Proxy.TargetID() + "\n", nil
	case KindLocalProxy:
		if pool == nil {
			return "", newUsageError("cannot encode a local callback proxy without a ProxyPool")
		}
		id := pool.Register(v.Local.Impl, v.Local.Interfaces...)
		return "f" + id + ";" + strings.Join(v.Local.Interfaces, ";") + "\n", nil
	default:
		return "", newUnsupportedLocalType(v)
	}
}

// EscapeString transforms s so that a literal backslash becomes `\\` and
// a literal newline becomes the two characters `\n`.
// It is a single left-to-right pass with no other escape sequences
// introduced, making it trivially injective.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// UnescapeString reverses EscapeString in a single left-to-right pass:
// `\\` unescapes to `\`, `\n` unescapes to a newline. Any other escape
// sequence is an error.
func UnescapeString(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", newProtocolDecodeError('\\')
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", s[i+1])
		}
		i++
	}
	return b.String(), nil
}

// wrapper is the minimal surface Decode needs from a Client to turn a
// reference-tagged payload into a concrete Proxy. Callback-proxy IDs are
// resolved separately, through the *ProxyPool passed to the decoder.
type wrapper interface {
	Wrap(targetID string, tag Tag) Proxy
}

// DecodeResponse decodes one response line (without its trailing
// newline) into a Value. client supplies
// Wrap() for reference-tagged payloads and pool is used for callback
// lookups.
func DecodeResponse(line string, client wrapper, pool *ProxyPool) (Value, error) {
	if len(line) == 0 {
		return Value{}, newNetworkError("empty response", nil)
	}
	line = strings.TrimPrefix(line, "!")
	if len(line) == 0 {
		return Value{}, newNetworkError("empty response", nil)
	}
	switch line[0] {
	case 'y':
		if len(line) < 2 {
			return Value{}, newProtocolFramingError(line)
		}
		return decodeTagged(Tag(line[1]), line[2:], client, pool)
	case 'x':
		remainder := line[1:]
		hostExc, _ := decodeBestEffort(remainder, client, pool)
		return Value{}, &HostInvocationError{Payload: remainder, HostException: hostExc}
	case 'z':
		return Value{}, newFatalProtocolError(line[1:])
	default:
		return Value{}, newProtocolFramingError(line)
	}
}

// decodeBestEffort attempts to decode an error payload (commonly a
// reference tag followed by an object ID) to a Proxy, swallowing
// failures — the payload is usually a typed value but that is not
// guaranteed.
func decodeBestEffort(payload string, client wrapper, pool *ProxyPool) (Proxy, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty error payload")
	}
	v, err := decodeTagged(Tag(payload[0]), payload[1:], client, pool)
	if err != nil {
		return nil, err
	}
	if v.Kind == KindProxy {
		return v.Proxy, nil
	}
	return nil, fmt.Errorf("error payload did not decode to a proxy")
}

func decodeTagged(tag Tag, payload string, client wrapper, pool *ProxyPool) (Value, error) {
	switch tag {
	case 'v', 'n':
		return NullValue(), nil
	case TagBool:
		return BoolValue(strings.EqualFold(payload, "true")), nil
	case TagInt32:
		i, err := strconv.ParseInt(payload, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("malformed int32 payload %q: %w", payload, err)
		}
		return Int32Value(int32(i)), nil
	case TagInt64:
		i, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				// Falls outside the 64-bit range the host's "L" tag can
				// actually represent; promote to arbitrary precision
				// rather than lose digits.
				return Value{Kind: KindBigInt, BigInt: payload}, nil
			}
			return Value{}, fmt.Errorf("malformed int64 payload %q: %w", payload, err)
		}
		return Int64Value(i), nil
	case TagDouble:
		d, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return Value{}, fmt.Errorf("malformed double payload %q: %w", payload, err)
		}
		return DoubleValue(d), nil
	case TagDecimal:
		return DecimalValue(payload), nil
	case TagString:
		s, err := UnescapeString(payload)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case TagBytes:
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Value{}, fmt.Errorf("malformed bytes payload: %w", err)
		}
		return BytesValue(b), nil
	case TagReference, TagList, TagSet, TagMap, TagArray, TagIterator:
		if client == nil {
			return Value{}, fmt.Errorf("no client available to wrap target %q", payload)
		}
		return ProxyValue(client.Wrap(payload, tag)), nil
	case TagCallbackProxy:
		if pool == nil {
			return NullValue(), nil
		}
		impl, ok := pool.Lookup(payload)
		if !ok {
			return NullValue(), nil
		}
		return Value{Kind: KindLocalProxy, Local: &LocalProxy{Impl: impl}}, nil
	default:
		return Value{}, newProtocolDecodeError(byte(tag))
	}
}
