package telegram

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByBytes(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitByBytes("short", 10))

	parts := splitByBytes(strings.Repeat("a", 25), 10)
	assert.Equal(t, []string{"aaaaaaaaaa", "aaaaaaaaaa", "aaaaa"}, parts)

	// Multi-byte runes are never cut in half.
	parts = splitByBytes(strings.Repeat("é", 5), 3)
	assert.Equal(t, []string{"é", "é", "é", "é", "é"}, parts)
}

func TestTruncateByBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateByBytes("abc", 10))
	assert.Equal(t, "ab", truncateByBytes("abc", 2))
	assert.Equal(t, "é", truncateByBytes("éé", 3))
}

func TestParseDataURL(t *testing.T) {
	mimeType, data, err := parseDataURL("data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, "AAAA", data)

	mimeType, data, err = parseDataURL("AAAA")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, "AAAA", data)

	_, _, err = parseDataURL("data:image/png;base64")
	assert.Error(t, err)

	_, _, err = parseDataURL("  ")
	assert.Error(t, err)
}

func TestPhotoFileURL(t *testing.T) {
	file, err := photoFile("https://img.test/image/a?seed=1", 0)
	require.NoError(t, err)
	assert.Equal(t, tgbotapi.FileURL("https://img.test/image/a?seed=1"), file)
}

func TestPhotoFileDataURI(t *testing.T) {
	file, err := photoFile("data:image/png;base64,YWJj", 1)
	require.NoError(t, err)

	fb, ok := file.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "influencer-2.png", fb.Name)
	assert.Equal(t, []byte("abc"), fb.Bytes)

	_, err = photoFile("data:image/png;base64,!!!", 0)
	assert.Error(t, err)
}

func TestIsNotModified(t *testing.T) {
	assert.True(t, isNotModified(errors.New("Bad Request: message is not modified: specified new message content")))
	assert.False(t, isNotModified(errors.New("Forbidden")))
}
