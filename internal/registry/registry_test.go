package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/model"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := NewWithBuiltins()

	for _, tag := range []string{
		TypeProfileCard, TypeNote, TypeSticker,
		TypeMediaPlayer, TypeImage, TypeGuestbookWidget,
	} {
		_, ok := r.Lookup(tag)
		assert.True(t, ok, "missing builtin %s", tag)
	}

	_, ok := r.Lookup("marquee")
	assert.False(t, ok)
}

func TestMandatoryTypeIsProfileCard(t *testing.T) {
	r := NewWithBuiltins()
	def := r.Mandatory()
	require.NotNil(t, def)
	assert.Equal(t, TypeProfileCard, def.Type)
	assert.False(t, def.CanDelete)
	assert.Equal(t, 1, def.MaxInstances)
}

func TestRegisterRejectsDuplicatesAndIncomplete(t *testing.T) {
	r := New()
	def := &Definition{
		Type:          "custom",
		DefaultConfig: func() map[string]interface{} { return map[string]interface{}{} },
		Sanitize:      func(raw map[string]interface{}) map[string]interface{} { return map[string]interface{}{} },
	}
	require.NoError(t, r.Register(def))
	assert.Error(t, r.Register(def))
	assert.Error(t, r.Register(&Definition{Type: "half"}))
	assert.Error(t, r.Register(nil))
}

func TestSanitizersAreTotal(t *testing.T) {
	r := NewWithBuiltins()

	hostile := []map[string]interface{}{
		nil,
		{},
		{"text": 42, "fontSize": "huge", "paper": []string{"x"}},
		{"displayName": "<script>alert(1)</script>", "bio": map[string]interface{}{}},
		{"mediaUrl": "javascript:alert(1)", "autoplay": "yes"},
		{"unknownKey": "should vanish"},
	}

	for _, tag := range []string{
		TypeProfileCard, TypeNote, TypeSticker,
		TypeMediaPlayer, TypeImage, TypeGuestbookWidget,
	} {
		def, _ := r.Lookup(tag)
		for _, raw := range hostile {
			clean := def.Sanitize(raw)
			require.NotNil(t, clean, "%s sanitizer returned nil", tag)
			_, leaked := clean["unknownKey"]
			assert.False(t, leaked, "%s sanitizer leaked unknown key", tag)
		}
	}
}

func TestNoteSanitizerClampsAndStrips(t *testing.T) {
	r := NewWithBuiltins()
	def, _ := r.Lookup(TypeNote)

	clean := def.Sanitize(map[string]interface{}{
		"text":     "<script>x</script>hello",
		"paper":    "velvet",
		"fontSize": float64(500),
	})
	assert.Equal(t, "hello", clean["text"])
	assert.Equal(t, "plain", clean["paper"])
	assert.Equal(t, 32, clean["fontSize"])
}

func TestProfileSanitizerBlocksUnsafeURL(t *testing.T) {
	r := NewWithBuiltins()
	def, _ := r.Lookup(TypeProfileCard)

	clean := def.Sanitize(map[string]interface{}{"avatarUrl": "javascript:alert(1)"})
	assert.Equal(t, "", clean["avatarUrl"])

	clean = def.Sanitize(map[string]interface{}{"avatarUrl": "https://img.example/me.png"})
	assert.Equal(t, "https://img.example/me.png", clean["avatarUrl"])
}

func TestSanitizeIdempotent(t *testing.T) {
	r := NewWithBuiltins()
	raw := map[string]interface{}{
		"text":     "<b>hi</b> there",
		"paper":    "grid",
		"fontSize": float64(18),
	}
	def, _ := r.Lookup(TypeNote)
	once := def.Sanitize(raw)
	twice := def.Sanitize(once)
	assert.Equal(t, once, twice)
}

func TestSanitizeIdempotentAtLengthCap(t *testing.T) {
	r := NewWithBuiltins()
	def, _ := r.Lookup(TypeProfileCard)

	// Escaping expands every '&' fivefold, so the bound must hold on the
	// escaped form or a second pass shrinks the text again.
	raw := map[string]interface{}{"bio": strings.Repeat("&", 600)}
	once := def.Sanitize(raw)
	twice := def.Sanitize(once)

	bio, ok := once["bio"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(bio), 600)
	assert.Equal(t, once, twice)
}

func TestSanitizeBoundedNeverSplitsEntity(t *testing.T) {
	r := NewWithBuiltins()
	def, _ := r.Lookup(TypeNote)

	// Mixed markup and ampersands around the cap; the cut must land
	// between entities, never inside one.
	raw := map[string]interface{}{"text": strings.Repeat("<&>", 900)}
	once := def.Sanitize(raw)
	twice := def.Sanitize(once)

	text, ok := once["text"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(text), 2000)
	assert.NotRegexp(t, `&[a-z]*$`, text)
	assert.Equal(t, once, twice)
}

func TestNewElementUsesDefaults(t *testing.T) {
	r := NewWithBuiltins()

	el, err := r.NewElement(TypeNote)
	require.NoError(t, err)
	assert.NotEmpty(t, el.ID)
	assert.Equal(t, TypeNote, el.Type)
	assert.Equal(t, model.Geometry{X: 96, Y: 96, Width: 216, Height: 168, ZIndex: 1}, el.Geometry())
	assert.NotNil(t, el.Config)

	_, err = r.NewElement("marquee")
	assert.Error(t, err)
}

func TestCatalogSortedByTag(t *testing.T) {
	r := NewWithBuiltins()
	cat := r.Catalog()
	require.Len(t, cat, 6)
	for i := 1; i < len(cat); i++ {
		assert.Less(t, cat[i-1].Type, cat[i].Type)
	}
}
