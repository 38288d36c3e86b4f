package plaintext

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Extractor decodes UTF-8 text, silently dropping undecodable bytes.
// Files that start with a UTF-16 byte order mark are transcoded first.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractBytes(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, utf16LEBOM) || bytes.HasPrefix(raw, utf16BEBOM) {
		decoded, _, err := transform.Bytes(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), raw)
		if err != nil {
			return "", fmt.Errorf("decode utf-16 text: %w", err)
		}
		raw = decoded
	}
	text := strings.ToValidUTF8(string(raw), "")
	text = strings.TrimPrefix(text, utf8BOM)
	return strings.TrimSpace(text), nil
}
