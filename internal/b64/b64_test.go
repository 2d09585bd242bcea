package b64

import (
	"bytes"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello world")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}},
		{"one byte", []byte{0x2a}},
		{"two bytes", []byte{0x2a, 0x2b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.data)
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("round trip = %v, want %v", decoded, tt.data)
			}
		})
	}
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"padding", "aGVsbG8="},
		{"padding only", "="},
		{"standard alphabet plus", "a+b"},
		{"standard alphabet slash", "a/b"},
		{"whitespace", "aGVs bG8"},
		{"non-canonical trailing bits", "ab"},
		{"impossible length", "aGVsbG9h1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.input); err == nil {
				t.Errorf("Decode(%q) = nil error, want rejection", tt.input)
			}
		})
	}
}
