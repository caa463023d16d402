package gw

import "testing"

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain text",
		"line1\nline2",
		`back\slash`,
		"mixed\\and\nnewlines\\here",
	}
	for _, s := range cases {
		escaped := EscapeString(s)
		got, err := UnescapeString(escaped)
		if err != nil {
			t.Fatalf("UnescapeString(%q) returned error: %s", escaped, err)
		}
		if got != s {
			t.Errorf("round trip mismatch: original %q, escaped %q, got %q", s, escaped, got)
		}
	}
}

func TestUnescapeInvalidSequence(t *testing.T) {
	if _, err := UnescapeString(`\q`); err == nil {
		t.Error("expected an error for an unrecognized escape sequence")
	}
	if _, err := UnescapeString(`\`); err == nil {
		t.Error("expected an error for a trailing backslash")
	}
}

func TestEncodeDecodeBasicTypes(t *testing.T) {
	cases := []Value{
		NullValue(),
		BoolValue(true),
		BoolValue(false),
		Int32Value(42),
		Int32Value(-7),
		DoubleValue(3.5),
		StringValue("hello\nworld"),
		BytesValue([]byte{1, 2, 3, 255}),
	}
	for _, v := range cases {
		part, err := EncodeValue(v, nil)
		if err != nil {
			t.Fatalf("EncodeValue(%+v) failed: %s", v, err)
		}
		if len(part) == 0 || part[len(part)-1] != '\n' {
			t.Fatalf("encoded part %q is not newline-terminated", part)
		}
		tag := Tag(part[0])
		decoded, err := decodeTagged(tag, part[1:len(part)-1], nil, nil)
		if err != nil {
			t.Fatalf("decodeTagged(%q) failed: %s", part, err)
		}
		if decoded.Kind != v.Kind {
			// null/void both round-trip through tag 'n', acceptable.
			if !(v.Kind == KindVoid && decoded.Kind == KindNull) {
				t.Errorf("kind mismatch for %+v: got %+v", v, decoded)
			}
		}
	}
}

func TestIntegerSizing(t *testing.T) {
	// In signed-32-bit range: encodes with tag 'i'.
	part, err := EncodeValue(Int64Value(100), nil)
	if err != nil {
		t.Fatal(err)
	}
	if Tag(part[0]) != TagInt32 {
		t.Errorf("expected int64 value 100 to encode as i, got tag %q", part[0])
	}

	// Outside signed-32-bit range but fits 64-bit: encodes with tag 'L'.
	part, err = EncodeValue(Int64Value(1<<40), nil)
	if err != nil {
		t.Fatal(err)
	}
	if Tag(part[0]) != TagInt64 {
		t.Errorf("expected int64 value 2^40 to encode as L, got tag %q", part[0])
	}
}

func TestDecodeIntegerOverflowPromotesToBigInt(t *testing.T) {
	huge := "99999999999999999999999999999"
	v, err := decodeTagged(TagInt64, huge, nil, nil)
	if err != nil {
		t.Fatalf("decodeTagged failed: %s", err)
	}
	if v.Kind != KindBigInt {
		t.Errorf("expected KindBigInt for overflowing L payload, got kind %d", v.Kind)
	}
	if v.BigInt != huge {
		t.Errorf("expected digits preserved verbatim, got %q", v.BigInt)
	}
}

func TestDecodeResponseSuccessVoid(t *testing.T) {
	v, err := DecodeResponse("yv", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !v.IsAbsent() {
		t.Errorf("expected absent value for void response, got %+v", v)
	}
}

func TestDecodeResponseFatal(t *testing.T) {
	_, err := DecodeResponse("zboom", nil, nil)
	if _, ok := err.(*FatalProtocolError); !ok {
		t.Errorf("expected *FatalProtocolError, got %T (%v)", err, err)
	}
}

func TestDecodeResponseFraming(t *testing.T) {
	_, err := DecodeResponse("qgarbage", nil, nil)
	if _, ok := err.(*ProtocolFramingError); !ok {
		t.Errorf("expected *ProtocolFramingError, got %T (%v)", err, err)
	}
}

func TestDecodeResponseEmpty(t *testing.T) {
	_, err := DecodeResponse("", nil, nil)
	if _, ok := err.(*NetworkError); !ok {
		t.Errorf("expected *NetworkError, got %T (%v)", err, err)
	}
}

func TestEncodeUnsupportedBigInt(t *testing.T) {
	v := Value{Kind: KindBigInt, BigInt: "123"}
	_, err := EncodeValue(v, nil)
	if _, ok := err.(*UnsupportedLocalType); !ok {
		t.Errorf("expected *UnsupportedLocalType, got %T (%v)", err, err)
	}
}

func TestStaticTargetID(t *testing.T) {
	id := StaticTargetID("java.util.Math")
	if id != "z:java.util.Math" {
		t.Errorf("unexpected static target ID: %q", id)
	}
	fqn, ok := IsStaticTargetID(id)
	if !ok || fqn != "java.util.Math" {
		t.Errorf("IsStaticTargetID round trip failed: fqn=%q ok=%v", fqn, ok)
	}
	if _, ok := IsStaticTargetID("o17"); ok {
		t.Error("expected an ordinary instance ID to not be recognized as static")
	}
}
