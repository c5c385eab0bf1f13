package registry

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Typed config structs for the built-in element types. The wire format
// stays an open map; these structs are the internal tagged representation
// and their FromMap/ToMap pairs are the only conversion points.

// ProfileCardConfig configures the mandatory profile card.
type ProfileCardConfig struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
	Accent      string `json:"accent"`
}

// NoteConfig configures a free-text note.
type NoteConfig struct {
	Text     string `json:"text"`
	Paper    string `json:"paper"`
	FontSize int    `json:"fontSize"`
}

// StickerConfig references one sticker from the read-only asset catalog.
type StickerConfig struct {
	StickerID string `json:"stickerId"`
	FlipX     bool   `json:"flipX"`
}

// MediaPlayerConfig configures an embedded audio/video player.
type MediaPlayerConfig struct {
	MediaURL string `json:"mediaUrl"`
	Autoplay bool   `json:"autoplay"`
	Loop     bool   `json:"loop"`
}

// ImageConfig configures a placed picture.
type ImageConfig struct {
	ImageURL string `json:"imageUrl"`
	AltText  string `json:"altText"`
	Rounded  bool   `json:"rounded"`
}

// GuestbookWidgetConfig configures the on-canvas guestbook box.
type GuestbookWidgetConfig struct {
	Heading     string `json:"heading"`
	ShowAuthors bool   `json:"showAuthors"`
}

// sanitizers holds the bluemonday policies shared by the built-in
// sanitizer closures. Constructed once per registry, never global.
type sanitizers struct {
	strict *bluemonday.Policy // strips all markup, for titles and names
	ugc    *bluemonday.Policy // allows basic formatting, for note bodies
}

func newSanitizers() *sanitizers {
	return &sanitizers{
		strict: bluemonday.StrictPolicy(),
		ugc:    bluemonday.UGCPolicy(),
	}
}

// Accent colors the profile card may use. Anything else falls back to the
// first entry.
var profileAccents = []string{"coral", "moss", "sky", "plum", "sand"}

// Paper styles for notes.
var notePapers = []string{"plain", "lined", "grid", "kraft"}

func (s *sanitizers) profileCard(raw map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"displayName": sanitizeBounded(s.strict, getString(raw, "displayName", ""), 80),
		"bio":         sanitizeBounded(s.ugc, getString(raw, "bio", ""), 600),
		"avatarUrl":   safeURL(getString(raw, "avatarUrl", "")),
		"accent":      oneOf(getString(raw, "accent", profileAccents[0]), profileAccents),
	}
}

func (s *sanitizers) note(raw map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"text":     sanitizeBounded(s.ugc, getString(raw, "text", ""), 2000),
		"paper":    oneOf(getString(raw, "paper", notePapers[0]), notePapers),
		"fontSize": clampInt(getInt(raw, "fontSize", 14), 10, 32),
	}
}

func (s *sanitizers) sticker(raw map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"stickerId": sanitizeBounded(s.strict, getString(raw, "stickerId", ""), 64),
		"flipX":     getBool(raw, "flipX", false),
	}
}

func (s *sanitizers) mediaPlayer(raw map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"mediaUrl": safeURL(getString(raw, "mediaUrl", "")),
		"autoplay": getBool(raw, "autoplay", false),
		"loop":     getBool(raw, "loop", false),
	}
}

func (s *sanitizers) image(raw map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"imageUrl": safeURL(getString(raw, "imageUrl", "")),
		"altText":  sanitizeBounded(s.strict, getString(raw, "altText", ""), 200),
		"rounded":  getBool(raw, "rounded", false),
	}
}

func (s *sanitizers) guestbookWidget(raw map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"heading":     sanitizeBounded(s.strict, getString(raw, "heading", "Sign my guestbook"), 80),
		"showAuthors": getBool(raw, "showAuthors", true),
	}
}

// --- total extraction helpers ---

func getString(raw map[string]interface{}, key, def string) string {
	if raw == nil {
		return def
	}
	if v, ok := raw[key].(string); ok {
		return v
	}
	return def
}

func getBool(raw map[string]interface{}, key string, def bool) bool {
	if raw == nil {
		return def
	}
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return def
}

// getInt accepts both float64 (JSON numbers) and int (in-process values).
func getInt(raw map[string]interface{}, key string, def int) int {
	if raw == nil {
		return def
	}
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary.
	b := []byte(s[:max])
	for len(b) > 0 && b[len(b)-1]&0xC0 == 0x80 {
		b = b[:len(b)-1]
	}
	return string(b)
}

// sanitizeBounded applies pol to s and enforces max on the sanitized
// output, not the input: escaping expands text, so an input-side bound
// would let the stored form exceed the cap and shrink again on the next
// pass. A cut can also split an entity or leave a tag open, and
// re-sanitizing such a tail can grow the text back, so the cut point
// backs off until the re-sanitized result fits.
func sanitizeBounded(pol *bluemonday.Policy, s string, max int) string {
	out := pol.Sanitize(s)
	for cut := max; len(out) > max && cut > 0; {
		t := truncate(out, cut)
		if i := strings.LastIndexByte(t, '&'); i >= 0 && !strings.ContainsRune(t[i:], ';') {
			t = t[:i]
		}
		if i := strings.LastIndexByte(t, '<'); i >= 0 && !strings.ContainsRune(t[i:], '>') {
			t = t[:i]
		}
		out = pol.Sanitize(t)
		// Next attempt cuts strictly shorter than this candidate.
		cut = len(t) - 1
	}
	if len(out) > max {
		return ""
	}
	return out
}

func oneOf(v string, allowed []string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return allowed[0]
}

// safeURL keeps http(s) URLs and drops anything else (javascript:, data:,
// relative noise). Host allow-listing for audio happens at the service
// layer; this only blocks unsafe schemes inside element configs.
func safeURL(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return truncate(v, 2048)
	}
	return ""
}
