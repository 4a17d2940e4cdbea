package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"default", "", "utf-8", false},
		{"utf8 upper", "UTF-8", "utf-8", false},
		{"windows code page", "windows-1252", "windows-1252", false},
		{"utf16", "utf-16le", "utf-16le", false},
		{"unknown", "klingon-8", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := Lookup(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownEncoding)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, dec.Name())
		})
	}
}

func TestDecoder_Decode(t *testing.T) {
	utf8Dec, err := Lookup("utf-8")
	require.NoError(t, err)

	latin, err := Lookup("windows-1252")
	require.NoError(t, err)

	t.Run("plain utf-8", func(t *testing.T) {
		text, used, err := utf8Dec.Decode([]byte("var s = \"é\";"))
		require.NoError(t, err)
		assert.Equal(t, "var s = \"é\";", text)
		assert.Equal(t, "utf-8", used)
	})

	t.Run("utf-8 bom is stripped", func(t *testing.T) {
		text, used, err := latin.Decode([]byte{0xef, 0xbb, 0xbf, 'a'})
		require.NoError(t, err)
		assert.Equal(t, "a", text)
		assert.Equal(t, "utf-8", used)
	})

	t.Run("utf-16le bom overrides declared encoding", func(t *testing.T) {
		text, used, err := utf8Dec.Decode([]byte{0xff, 0xfe, 'h', 0, 'i', 0})
		require.NoError(t, err)
		assert.Equal(t, "hi", text)
		assert.Equal(t, "utf-16le", used)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, _, err := utf8Dec.Decode([]byte{'a', 0xff, 'b'})
		require.ErrorIs(t, err, ErrInvalidText)
	})

	t.Run("single byte code page", func(t *testing.T) {
		text, used, err := latin.Decode([]byte{'c', 0xe9})
		require.NoError(t, err)
		assert.Equal(t, "cé", text)
		assert.Equal(t, "windows-1252", used)
	})
}
