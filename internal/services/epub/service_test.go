package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

func testArtifact() *models.BookArtifact {
	return &models.BookArtifact{
		Metadata: models.BookMetadata{
			Title:    "Field Notes",
			Author:   "Test Author",
			Language: "en",
		},
		Chapters: []models.Chapter{
			{
				Index: 1,
				Title: "First",
				Blocks: []models.Block{
					{Kind: models.BlockHeading, Level: 1, Text: "First"},
					{Kind: models.BlockParagraph, Text: "Opening paragraph."},
					{Kind: models.BlockList, Items: []string{"one", "two"}},
				},
				WordCount: 5,
			},
			{
				Index: 2,
				Title: "Second",
				Blocks: []models.Block{
					{Kind: models.BlockParagraph, Text: "More & <escaped> text."},
					{Kind: models.BlockImage, AssetName: "image_001.png", Text: "diagram"},
				},
				WordCount: 4,
			},
		},
		Images: []models.ImageAsset{
			{Name: "image_001.png", MediaType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
		},
		StyleName: "default",
	}
}

func TestPackageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(common.OutputConfig{Dir: dir, Style: "default"}, arbor.NewLogger())

	path, err := svc.Package(testArtifact())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, ".epub"))

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer reader.Close()

	// The mimetype entry must come first and be stored uncompressed.
	require.NotEmpty(t, reader.File)
	first := reader.File[0]
	assert.Equal(t, "mimetype", first.Name)
	assert.Equal(t, zip.Store, first.Method)
	assert.Equal(t, "application/epub+zip", readEntry(t, first))

	entries := map[string]*zip.File{}
	for _, f := range reader.File {
		entries[f.Name] = f
	}

	// container.xml points at the package document.
	var container struct {
		RootFiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	require.NoError(t, xml.Unmarshal([]byte(readEntry(t, entries["META-INF/container.xml"])), &container))
	require.Len(t, container.RootFiles, 1)
	assert.Equal(t, "OEBPS/content.opf", container.RootFiles[0].FullPath)

	// The package document's spine covers every chapter, and every
	// manifest item exists in the archive.
	var pkg struct {
		Metadata struct {
			Title string `xml:"title"`
		} `xml:"metadata"`
		Manifest struct {
			Items []struct {
				Href string `xml:"href,attr"`
			} `xml:"item"`
		} `xml:"manifest"`
		Spine struct {
			ItemRefs []struct {
				IDRef string `xml:"idref,attr"`
			} `xml:"itemref"`
		} `xml:"spine"`
	}
	require.NoError(t, xml.Unmarshal([]byte(readEntry(t, entries["OEBPS/content.opf"])), &pkg))
	assert.Equal(t, "Field Notes", pkg.Metadata.Title)
	assert.Len(t, pkg.Spine.ItemRefs, 2)
	for _, item := range pkg.Manifest.Items {
		_, ok := entries["OEBPS/"+item.Href]
		assert.True(t, ok, "manifest item %s missing from archive", item.Href)
	}

	// Chapter content survives with escaping applied.
	ch2 := readEntry(t, entries["OEBPS/chapter_002.xhtml"])
	assert.Contains(t, ch2, "More &amp; &lt;escaped&gt; text.")
	assert.Contains(t, ch2, `<img src="images/image_001.png"`)
}

func TestPackageCollisionSuffix(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(common.OutputConfig{Dir: dir, Style: "minimal"}, arbor.NewLogger())

	first, err := svc.Package(testArtifact())
	require.NoError(t, err)
	second, err := svc.Package(testArtifact())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPackageLeavesNoPartialFileOnStyleError(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(common.OutputConfig{
		Dir:        dir,
		Stylesheet: dir + "/does-not-exist.css",
	}, arbor.NewLogger())

	_, err := svc.Package(testArtifact())
	require.Error(t, err)
	assert.Equal(t, models.ErrKindPackagingIO, models.KindOf(err))

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left, "failed run must not leave files in the output dir")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Simple Title", "Simple Title"},
		{"a/b\\c:d", "a_b_c_d"},
		{"", "Untitled"},
		{strings.Repeat("x", 150), strings.Repeat("x", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeFilename(tt.in))
	}
}

func TestResolveStyle(t *testing.T) {
	name, css, err := ResolveStyle("modern", "")
	require.NoError(t, err)
	assert.Equal(t, "modern", name)
	assert.Contains(t, css, "Merriweather")

	name, css, err = ResolveStyle("nope", "")
	require.NoError(t, err)
	assert.Equal(t, "default", name)
	assert.Contains(t, css, "Georgia")
}

func readEntry(t *testing.T, f *zip.File) string {
	t.Helper()
	require.NotNil(t, f)
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
