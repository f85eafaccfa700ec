package codec_test

import (
	"testing"

	"github.com/gsarma/judgepad/internal/codec"
)

func TestDecodeEncode_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"hello",
		"3\n3 2\n1 2 5\n",
		"naïve café ☕",
		"日本語のテキスト",
		"tabs\tand  spaces\r\n",
	}
	for _, s := range cases {
		if got := codec.Decode(codec.Encode(s)); got != s {
			t.Errorf("round trip of %q: got %q", s, got)
		}
	}
}

func TestEncode_KnownValue(t *testing.T) {
	if got := codec.Encode("print(1)"); got != "cHJpbnQoMSk=" {
		t.Errorf("expected cHJpbnQoMSk=, got %s", got)
	}
}

func TestDecode_WrappedLines(t *testing.T) {
	// Judge0 inserts a newline every 60 characters in base64 output.
	if got := codec.Decode("aGVs\nbG8="); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
}

func TestDecode_InvalidInputIsReturnedUnchanged(t *testing.T) {
	if got := codec.Decode("not base64!!"); got != "not base64!!" {
		t.Errorf("expected input back, got %q", got)
	}
}

func TestDecodePtr_Nil(t *testing.T) {
	if got := codec.DecodePtr(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
