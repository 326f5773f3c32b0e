package seed

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLen = 4096

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// utf8Body wraps the feed body in a reader that yields UTF-8.
//
// The charset is taken from, in order: the Content-Type header, a byte order
// mark, a UTF-8 validity check on the first bytes, chardet's best guess.
// Anything still unknown is read as Windows-1252.
func utf8Body(body io.Reader, contentType string) (io.Reader, error) {
	br := bufio.NewReaderSize(body, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("sniffing feed encoding: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE}), bytes.HasPrefix(buf, []byte{0xFE, 0xFF}):
		return decodeWith(br, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)), nil
	}

	if enc := declaredEncoding(contentType); enc != nil {
		return decodeWith(br, enc), nil
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return br, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if enc, err := htmlindex.Get(res.Charset); err == nil {
			return decodeWith(br, enc), nil
		}
	}

	return decodeWith(br, charmap.Windows1252), nil
}

// declaredEncoding returns the charset named by a Content-Type header, or nil
// when none is declared or it is already UTF-8.
func declaredEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}

	name := strings.TrimSpace(params["charset"])
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}

	return enc
}

func decodeWith(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == unicode.UTF8 {
		return r
	}

	return transform.NewReader(r, enc.NewDecoder())
}

// trimPartialRune drops a multi-byte sequence cut off at the end of the sniff
// window so it does not count against UTF-8 validity.
func trimPartialRune(buf []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.RuneStart(buf[len(buf)-i]) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}

			break
		}
	}

	return buf
}
