package homoglyph

import (
	"strings"

	"certpipe/helper"

	"github.com/picatz/homoglyphr"
)

// Glyphs maps a Latin letter to the glyphs and digraphs that can pass for it
var Glyphs = map[rune][]string{
	'a': {"à", "á", "â", "ã", "ä", "å", "ɑ", "ạ", "ǎ", "ă", "ȧ", "ą"},
	'b': {"d", "lb", "ʙ", "ɓ", "ḃ", "ḅ", "ḇ", "ƅ"},
	'c': {"e", "ƈ", "ċ", "ć", "ç", "č", "ĉ"},
	'd': {"b", "cl", "dl", "ɗ", "đ", "ď", "ɖ", "ḑ", "ḋ", "ḍ", "ḏ", "ḓ"},
	'e': {"c", "é", "è", "ê", "ë", "ē", "ĕ", "ě", "ė", "ẹ", "ę", "ȩ", "ɇ", "ḛ"},
	'f': {"ƒ", "ḟ"},
	'g': {"q", "ɢ", "ɡ", "ġ", "ğ", "ǵ", "ģ", "ĝ", "ǧ", "ǥ"},
	'h': {"lh", "ĥ", "ȟ", "ħ", "ɦ", "ḧ", "ḩ", "ⱨ", "ḣ", "ḥ", "ḫ", "ẖ"},
	'i': {"1", "l", "í", "ì", "ï", "ı", "ɩ", "ǐ", "ĭ", "ỉ", "ị", "ɨ", "ȋ", "ī"},
	'j': {"ʝ", "ɉ"},
	'k': {"lk", "ik", "lc", "ḳ", "ḵ", "ⱪ", "ķ"},
	'l': {"1", "i", "ɫ", "ł"},
	'm': {"n", "nn", "rn", "rr", "ṁ", "ṃ", "ᴍ", "ɱ", "ḿ"},
	'n': {"m", "r", "ń", "ṅ", "ṇ", "ṉ", "ñ", "ņ", "ǹ", "ň", "ꞑ"},
	'o': {"0", "ȯ", "ọ", "ỏ", "ơ", "ó", "ö"},
	'p': {"ƿ", "ƥ", "ṕ", "ṗ"},
	'q': {"g", "ʠ"},
	'r': {"ʀ", "ɼ", "ɽ", "ŕ", "ŗ", "ř", "ɍ", "ɾ", "ȓ", "ȑ", "ṙ", "ṛ", "ṟ"},
	's': {"ʂ", "ś", "ṣ", "ṡ", "ș", "ŝ", "š"},
	't': {"ţ", "ŧ", "ṫ", "ṭ", "ț", "ƫ"},
	'u': {"ᴜ", "ǔ", "ŭ", "ü", "ʉ", "ù", "ú", "û", "ũ", "ū", "ų", "ư", "ů", "ű", "ȕ", "ȗ", "ụ"},
	'v': {"ṿ", "ⱱ", "ᶌ", "ṽ", "ⱴ"},
	'w': {"vv", "ŵ", "ẁ", "ẃ", "ẅ", "ⱳ", "ẇ", "ẉ", "ẘ"},
	'y': {"ʏ", "ý", "ÿ", "ŷ", "ƴ", "ȳ", "ɏ", "ỿ", "ẏ", "ỵ"},
	'z': {"ʐ", "ż", "ź", "ᴢ", "ƶ", "ẓ", "ẕ", "ⱬ"},
}

// GetHomoglyphPatterns returns the look-alikes of domain. A first pass substitutes
// one character class inside every window of the name, a second pass runs the same
// substitution over each first-pass result; both passes are returned, first pass first.
func GetHomoglyphPatterns(domain string) []string {
	firstPass := helper.NewOrderedSet()
	substitute(domain, firstPass)

	secondPass := helper.NewOrderedSet()
	for _, d := range firstPass.List() {
		substitute(d, secondPass)
	}

	results := append([]string{}, firstPass.List()...)
	results = append(results, secondPass.List()...)
	return helper.RemoveDuplicate(results)
}

// substitute replaces, for every window of domain and every character of that window
// found in Glyphs, all occurrences of the character inside the window by each glyph
func substitute(domain string, results *helper.OrderedSet) {
	runes := []rune(domain)
	n := len(runes)
	for ws := 1; ws <= n; ws++ {
		for i := 0; i+ws <= n; i++ {
			prefix, win, suffix := string(runes[:i]), string(runes[i:i+ws]), string(runes[i+ws:])
			for _, c := range runes[i : i+ws] {
				glyphs, ok := Glyphs[c]
				if !ok {
					continue
				}
				for _, g := range glyphs {
					results.Add(prefix + strings.ReplaceAll(win, string(c), g) + suffix)
				}
			}
		}
	}
}

// GetHomoglyphMap returns a map of every known confusable character to the Latin
// letter it imitates
func GetHomoglyphMap() map[string]string {
	homoglyph := map[string]string{}
	for c := 'a'; c <= 'z'; c++ {
		letter := string(c)
		for i := range homoglyphr.StreamAllRelatedCharacters(letter) {
			// plain lowercase letters stand for themselves
			if len(i) == 1 && i[0] >= 'a' && i[0] <= 'z' {
				continue
			}
			homoglyph[i] = letter
		}
	}
	return homoglyph
}

// ReplaceHomoglyph maps each confusable character of domain back to its Latin letter
func ReplaceHomoglyph(domain string, homoglyphs map[string]string) string {
	var b strings.Builder
	b.Grow(len(domain))
	for _, c := range domain {
		if l, ok := homoglyphs[string(c)]; ok {
			b.WriteString(l)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
