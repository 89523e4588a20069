package desiredstate

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/idenc"
	"github.com/MKhiriev/key-collection/models"
)

func hexKey(b byte) string {
	return hex.EncodeToString([]byte(strings.Repeat(string(rune(b)), idenc.KeyLength)))
}

func z32(b byte) string {
	return idenc.MustNormalize(hexKey(b))
}

// ── Parse ──

func TestParse_WorkedExample(t *testing.T) {
	doc := hexKey('a') + ":\n  name: user1\n" + hexKey('b') + ":\n  name: user2\n"

	got, err := Parse(strings.NewReader(doc))

	require.NoError(t, err)
	assert.Equal(t, models.KeyMap{
		z32('a'): {Key: z32('a'), Name: "user1"},
		z32('b'): {Key: z32('b'), Name: "user2"},
	}, got)
}

func TestParse_EmptyDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":        "",
		"whitespace":   "  \n\n",
		"comment only": "# nothing here\n",
		"explicit nil": "~\n",
		"null":         "null\n",
		"empty map":    "{}\n",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(doc))

			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestParse_MissingOrNullName(t *testing.T) {
	doc := strings.Join([]string{
		hexKey('a') + ":",
		hexKey('b') + ": ~",
		hexKey('c') + ":\n  name: null",
		hexKey('d') + ": {}",
		hexKey('e') + ":\n  other: field",
	}, "\n")

	got, err := Parse(strings.NewReader(doc))

	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, rec := range got {
		assert.Empty(t, rec.Name, rec.Key)
	}
}

func TestParse_NonStringNameIsKeptAsText(t *testing.T) {
	got, err := Parse(strings.NewReader(hexKey('a') + ":\n  name: 42\n"))

	require.NoError(t, err)
	assert.Equal(t, "42", got[z32('a')].Name)
}

func TestParse_EncodingsCollapse(t *testing.T) {
	lower := hex.EncodeToString(bytes.Repeat([]byte{0xab}, idenc.KeyLength))
	upper := strings.ToUpper(lower)
	zbase := idenc.MustNormalize(lower)
	require.NotEqual(t, lower, upper)

	names := map[string]string{lower: "lower", upper: "upper", zbase: "zbase"}
	doc := lower + ":\n  name: lower\n" +
		upper + ":\n  name: upper\n" +
		zbase + ":\n  name: zbase\n"

	got, err := Parse(strings.NewReader(doc))

	require.NoError(t, err)
	require.Len(t, got, 1)

	// the spelling that sorts first wins
	spellings := []string{lower, upper, zbase}
	slices.Sort(spellings)
	assert.Equal(t, models.KeyRecord{Key: zbase, Name: names[spellings[0]]}, got[zbase])
}

func TestParse_RepeatedSpellingIsRejected(t *testing.T) {
	doc := hexKey('a') + ":\n  name: first\n" +
		hexKey('b') + ":\n  name: other\n" +
		hexKey('a') + ":\n  name: second\n"

	got, err := Parse(strings.NewReader(doc))

	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "line 5")
	assert.Contains(t, err.Error(), "already defined at line 1")
}

func TestParse_NumericLookingHexKey(t *testing.T) {
	// an all-digit hex key must not be read as a number
	key := strings.Repeat("1", 64)

	got, err := Parse(strings.NewReader(key + ":\n  name: digits\n"))

	require.NoError(t, err)
	assert.Equal(t, "digits", got[idenc.MustNormalize(key)].Name)
}

func TestParse_InvalidKey(t *testing.T) {
	_, err := Parse(strings.NewReader("not-a-key:\n  name: x\n"))

	require.ErrorIs(t, err, idenc.ErrInvalidKeyEncoding)
	assert.Contains(t, err.Error(), "line 1")
}

func TestParse_InvalidDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"sequence":      "- a\n- b\n",
		"scalar":        "just text\n",
		"scalar entry":  hexKey('a') + ": alice\n",
		"list entry":    hexKey('a') + ":\n  - alice\n",
		"list name":     hexKey('a') + ":\n  name: [a, b]\n",
		"complex key":   "? [a, b]\n: {name: x}\n",
		"broken syntax": "key: [unterminated\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))

			require.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

// ── Load ──

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.yml")
	require.NoError(t, os.WriteFile(path, []byte(hexKey('a')+":\n  name: alice\n"), 0o600))

	got, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "alice", got[z32('a')].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

	require.ErrorIs(t, err, ErrReadingDocument)
	require.ErrorIs(t, err, os.ErrNotExist)
}
