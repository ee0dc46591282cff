package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	in := []Entry{
		{Name: "abc123.enc", Data: []byte{0x01, 0x02, 0x03}},
		{Name: "readme.txt", Data: []byte("hello")},
	}

	packed, err := Pack(in)
	require.NoError(t, err)

	out, err := Unpack(packed)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])
}

func TestFindBySuffix(t *testing.T) {
	entries := []Entry{
		{Name: "notes.txt", Data: []byte("x")},
		{Name: "payload-7f.enc", Data: []byte("y")},
	}

	e, err := FindBySuffix(entries, ".enc")
	require.NoError(t, err)
	assert.Equal(t, "payload-7f.enc", e.Name)

	_, err = FindBySuffix(entries[:1], ".enc")
	assert.ErrorIs(t, err, ErrPayloadNotFound)
}

func TestUnpackRejectsGarbage(t *testing.T) {
	_, err := Unpack([]byte("this is not a zip"))
	assert.ErrorIs(t, err, ErrArchiveFormat)
}
