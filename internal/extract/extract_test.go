package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_PlainText(t *testing.T) {
	out, err := Text("contract.txt", []byte("Section 1. The parties agree."))

	require.NoError(t, err)
	assert.Equal(t, "Section 1. The parties agree.", out)
}

func TestText_UnknownExtensionTreatedAsPlainText(t *testing.T) {
	out, err := Text("notes.md", []byte("# Terms\nSome markdown."))

	require.NoError(t, err)
	assert.Equal(t, "# Terms\nSome markdown.", out)
}

func TestText_ImagesYieldEmptyText(t *testing.T) {
	for _, name := range []string{"scan.png", "scan.JPG", "scan.jpeg", "scan.gif", "scan.webp"} {
		out, err := Text(name, []byte{0x89, 0x50, 0x4e, 0x47})

		require.NoError(t, err)
		assert.Empty(t, out, name)
	}
}

func TestText_CorruptPDFYieldsEmptyText(t *testing.T) {
	out, err := Text("contract.pdf", []byte("definitely not a pdf"))

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestText_CorruptDocxYieldsEmptyText(t *testing.T) {
	out, err := Text("contract.docx", []byte("not a zip archive"))

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestText_ExtensionIsCaseInsensitive(t *testing.T) {
	out, err := Text("CONTRACT.TXT", []byte("upper case name"))

	require.NoError(t, err)
	assert.Equal(t, "upper case name", out)
}
