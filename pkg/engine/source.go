package engine

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeSource transcodes raw script bytes into the UTF-8 text Evaluate
// expects, the way a host reading a file from disk needs to before handing
// it to the engine. A UTF-16 byte-order mark (LE or BE) selects that
// encoding; anything else is assumed to already be UTF-8 (internal/lexer
// strips a stray UTF-8 BOM itself). Script source text is not large enough
// in practice to warrant streaming, so this reads data fully into memory.
func DecodeSource(data []byte) (string, error) {
	enc, ok := detectUTF16(data)
	if !ok {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// detectUTF16 reports the UTF-16 variant a leading BOM selects, if any.
func detectUTF16(data []byte) (encoding.Encoding, bool) {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), true
	default:
		return nil, false
	}
}
