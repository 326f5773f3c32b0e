package seed

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDeclaredEncoding(t *testing.T) {
	type testCase struct {
		name        string
		contentType string
		wantNil     bool
	}

	tests := []testCase{
		{name: "NoHeader", contentType: "", wantNil: true},
		{name: "NoCharset", contentType: "application/json", wantNil: true},
		{name: "UTF8", contentType: "application/json; charset=UTF-8", wantNil: true},
		{name: "Malformed", contentType: "application/json; charset", wantNil: true},
		{name: "Unknown", contentType: "application/json; charset=klingon", wantNil: true},
		{name: "Latin1", contentType: "text/plain; charset=iso-8859-1"},
		{name: "Windows1252", contentType: "application/json; charset=\"windows-1252\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := declaredEncoding(tt.contentType)
			if tt.wantNil {
				assert.Nil(t, enc)
				return
			}

			assert.NotNil(t, enc)
		})
	}
}

func TestUTF8Body_DeclaredCharsetWins(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte(`{"title":"Jóia €"}`))
	require.NoError(t, err)

	r, err := utf8Body(bytes.NewReader(raw), "application/json; charset=windows-1252")
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Jóia €"}`, string(got))
}

func TestUTF8Body_PassesLongUTF8Through(t *testing.T) {
	// Long enough that the sniff window ends inside a multi-byte rune.
	input := append([]byte("a"), bytes.Repeat([]byte("ç"), sniffLen)...)

	r, err := utf8Body(bytes.NewReader(input), "")
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestTrimPartialRune(t *testing.T) {
	euro := []byte("€") // three bytes

	assert.Equal(t, []byte("ab"), trimPartialRune(append([]byte("ab"), euro[:2]...)))
	assert.Equal(t, append([]byte("ab"), euro...), trimPartialRune(append([]byte("ab"), euro...)))
	assert.Equal(t, []byte("abc"), trimPartialRune([]byte("abc")))
	assert.Empty(t, trimPartialRune(nil))
}
