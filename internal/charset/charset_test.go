package charset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllUTF8DropsBOM(t *testing.T) {
	s, err := ReadAll(bytes.NewReader([]byte("\xef\xbb\xbfint x;")), "")
	require.NoError(t, err)
	assert.Equal(t, "int x;", s)
}

func TestReadAllLatin1(t *testing.T) {
	s, err := ReadAll(bytes.NewReader([]byte{'c', 0xe9}), "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "cé", s)
}

func TestUnknownCharset(t *testing.T) {
	_, err := ReadAll(strings.NewReader("x"), "no-such-charset")
	assert.Error(t, err)
}
