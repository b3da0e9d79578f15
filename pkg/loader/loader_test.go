package loader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "faq.txt", "How do I join the fund?")
	writeFile(t, root, "guides/member_benefits.md", "# Benefits\nMembers receive a pension.")
	writeFile(t, root, "guides/deep/contact-us.html", "<html><body><p>Call 02 049 9000</p></body></html>")
	writeFile(t, root, ".hidden/secret.txt", "should be skipped")
	writeFile(t, root, ".env", "GOOGLE_API_KEY=nope")
	writeFile(t, root, "empty.txt", "   \n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0xff, 0xfe, 0x00, 0x01}, 0o644))

	docs, err := NewDirectoryLoader(root, nil).Load(context.Background())
	require.NoError(t, err)

	paths := make([]string, 0, len(docs))
	byPath := map[string]Document{}
	for _, d := range docs {
		paths = append(paths, d.Path)
		byPath[d.Path] = d
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"faq.txt", "guides/deep/contact-us.html", "guides/member_benefits.md"}, paths)

	md := byPath["guides/member_benefits.md"]
	assert.Equal(t, "member benefits", md.Title)
	assert.Equal(t, "md", md.FileType)
	assert.Contains(t, md.Content, "Members receive a pension.")
	assert.NotEmpty(t, md.ID)

	html := byPath["guides/deep/contact-us.html"]
	assert.Contains(t, html.Content, "Call 02 049 9000")
	assert.NotContains(t, html.Content, "<p>")
}

func TestLoadIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "alpha")

	first, err := NewDirectoryLoader(root, nil).Load(context.Background())
	require.NoError(t, err)
	second, err := NewDirectoryLoader(root, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestLoadNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.txt", "top")
	writeFile(t, root, "nested/inner.txt", "inner")

	l := NewDirectoryLoader(root, nil)
	l.Recursive = false
	docs, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "top.txt", docs[0].Path)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := NewDirectoryLoader(filepath.Join(t.TempDir(), "nope"), nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestLoadEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitkeep", "")

	_, err := NewDirectoryLoader(root, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestLoadMergesPDFPages(t *testing.T) {
	root := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.pdf"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "manual.pdf"), data, 0o644))

	docs, err := NewDirectoryLoader(root, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "pdf", doc.FileType)
	assert.Equal(t, 2, doc.Metadata["pages"])
	assert.Contains(t, doc.Content, "Continued on page 2")
	assert.Contains(t, doc.Content, "...continued from page 1")
	assert.Less(t, strings.Index(doc.Content, "A Simple PDF File"), strings.Index(doc.Content, "Simple PDF File 2"))
	assert.Contains(t, doc.Content, "\n\n")
}

func TestLoadHTMLStripsMarkup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "branches.htm", `<html>
  <head><title>Branches</title><script>console.log("tracking")</script></head>
  <body>
    <h1>Branch offices</h1>
    <p>Open <b>Monday</b> to Friday.</p>
  </body>
</html>`)

	docs, err := NewDirectoryLoader(root, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "htm", doc.FileType)
	assert.Equal(t, "branches", doc.Title)
	assert.Contains(t, doc.Content, "Branch offices")
	assert.Contains(t, doc.Content, "Monday")
	assert.NotContains(t, doc.Content, "<b>")
	assert.NotContains(t, doc.Content, "tracking")
}
