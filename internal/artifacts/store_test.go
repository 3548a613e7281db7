package artifacts

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rel, err := s.Save(KindVideo, "../../etc/answer.WEBM", strings.NewReader("frames"), 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "videos/"))
	assert.True(t, strings.HasSuffix(rel, ".webm"))

	f, err := s.Open(rel)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))
}

func TestSave_TooLarge(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(KindResume, "cv.pdf", strings.NewReader("0123456789"), 4)

	var tooLarge *TooLargeError
	assert.ErrorAs(t, err, &tooLarge)
}

func TestOpen_RejectsTraversal(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../secret", "/etc/passwd", ""} {
		_, err := s.Open(p)
		assert.Error(t, err, p)
	}
}

func TestRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	rel, err := s.Save(KindAudio, "clip.mp3", strings.NewReader("id3"), 100)
	require.NoError(t, err)

	require.NoError(t, s.Remove(rel))
	require.NoError(t, s.Remove(rel), "removing twice is fine")
	_, err = s.Open(rel)
	assert.Error(t, err)
}
