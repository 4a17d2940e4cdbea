package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHashAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    HashAlgorithm
		wantErr bool
	}{
		{"lower name", "sha256", HashSHA256, false},
		{"dashed upper name", "SHA-256", HashSHA256, false},
		{"sha1", "sha1", HashSHA1, false},
		{"blake3", "BLAKE3", HashBLAKE3, false},
		{"pdb sha1 guid", "ff1816ec-aa5e-4d10-87f7-6f4963833460", HashSHA1, false},
		{"pdb sha256 guid braces", "{8829d00f-11b8-4213-878b-770e8597ac16}", HashSHA256, false},
		{"pdb md5 guid", "406EA660-64CF-4C82-B6F0-42D48172A799", HashMD5, false},
		{"unknown guid", "00000000-0000-0000-0000-000000000001", HashUnknown, true},
		{"unknown name", "crc32", HashUnknown, true},
		{"empty", "", HashUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHashAlgorithm(tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRecord)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSourceRecord(t *testing.T) {
	hash := bytes.Repeat([]byte{0xab}, 32)

	t.Run("valid on-disk record", func(t *testing.T) {
		record, err := NewSourceRecord("/src/a.cs", HashSHA256, hash)
		require.NoError(t, err)
		assert.Equal(t, Path("/src/a.cs"), record.Path())
		assert.Equal(t, HashSHA256, record.Algorithm())
		assert.Equal(t, hash, record.Hash())
		assert.False(t, record.Embedded())
		assert.IsType(t, OnDiskContent{}, record.Content())
	})

	t.Run("hash length must match algorithm", func(t *testing.T) {
		_, err := NewSourceRecord("/src/a.cs", HashSHA1, hash)
		require.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := NewSourceRecord("/src/a.cs", HashUnknown, hash)
		require.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSourceRecord("", HashSHA256, hash)
		require.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("record does not alias caller bytes", func(t *testing.T) {
		input := bytes.Repeat([]byte{0x01}, 32)
		record, err := NewSourceRecord("/src/a.cs", HashSHA256, input)
		require.NoError(t, err)

		input[0] = 0xff
		got := record.Hash()
		assert.Equal(t, byte(0x01), got[0])

		got[1] = 0xff
		assert.Equal(t, byte(0x01), record.Hash()[1])
	})
}

func TestNewEmbeddedSourceRecord(t *testing.T) {
	hash := bytes.Repeat([]byte{0x01}, 20)

	record, err := NewEmbeddedSourceRecord("/build/a.cs", HashSHA1, hash, "class A {}")
	require.NoError(t, err)
	assert.True(t, record.Embedded())

	content, ok := record.Content().(EmbeddedContent)
	require.True(t, ok)
	assert.Equal(t, "class A {}", content.Text)
}

func TestZeroRecordIsOnDisk(t *testing.T) {
	var record SourceRecord
	assert.IsType(t, OnDiskContent{}, record.Content())
}

func TestLinkRule(t *testing.T) {
	_, err := NewLinkRule("", "https://example.invalid/*")
	require.ErrorIs(t, err, ErrInvalidRecord)

	rule, err := NewLinkRule("/build/obj/", "")
	require.NoError(t, err)
	assert.True(t, rule.Matches("/build/obj/a.cs"))
	assert.False(t, rule.Matches("/build/a.cs"))
	assert.False(t, rule.Matches("/BUILD/obj/a.cs"))
	assert.False(t, LinkRule{}.Matches("/anything"))
}

func TestResolvedSource_DisplayPath(t *testing.T) {
	record, err := NewEmbeddedSourceRecord("/build/a.cs", HashSHA256, bytes.Repeat([]byte{0}, 32), "S")
	require.NoError(t, err)

	embedded := ResolvedSource{Record: record}
	assert.False(t, embedded.HasDiskPath())
	assert.Equal(t, "[embedded]/build/a.cs", embedded.DisplayPath())

	onDisk := ResolvedSource{OnDiskPath: "/repo/a.cs", Record: record}
	assert.True(t, onDisk.HasDiskPath())
	assert.Equal(t, "/repo/a.cs", onDisk.DisplayPath())
}
