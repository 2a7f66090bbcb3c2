package corpus

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bbalet/stopwords"
	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hickeroar/sentibayes/bayes"
)

var errInvalidEncoding = errors.New("invalid text encoding")

// Normalizer turns a raw sentence into a Document. The zero value lowercases
// and keeps alphabetic tokens only.
type Normalizer struct {
	// Language drives case mapping.
	Language language.Tag
	// StripAccents folds "café" to "cafe".
	StripAccents bool
	// RemoveStopWords drops words listed for StopWordLanguage (ISO 639-1).
	RemoveStopWords  bool
	StopWordLanguage string
	// Stem reduces words with the snowball stemmer for StemLanguage.
	Stem         bool
	StemLanguage string
}

// DefaultNormalizer returns the English normalizer with accent stripping on
// and the optional filters off.
func DefaultNormalizer() Normalizer {
	return Normalizer{
		Language:         language.English,
		StripAccents:     true,
		StopWordLanguage: "en",
		StemLanguage:     "english",
	}
}

// Tokenize normalizes line and splits it on whitespace. Tokens containing
// anything other than letters are dropped.
func (n Normalizer) Tokenize(line string) (bayes.Document, error) {
	text, err := n.normalize(line)
	if err != nil {
		return nil, err
	}

	var doc bayes.Document
	for _, word := range strings.Fields(text) {
		if !isAlpha(word) {
			continue
		}
		if n.RemoveStopWords && isStopWord(word, n.StopWordLanguage) {
			continue
		}
		if n.Stem {
			stemmed, err := snowball.Stem(word, n.StemLanguage, true)
			if err != nil {
				return nil, fmt.Errorf("stem %q: %w", word, err)
			}
			if stemmed == "" {
				continue
			}
			word = stemmed
		}
		doc = append(doc, word)
	}
	return doc, nil
}

func (n Normalizer) normalize(line string) (string, error) {
	if !utf8.ValidString(line) {
		decoded, err := charmap.Windows1252.NewDecoder().String(line)
		if err != nil {
			return "", fmt.Errorf("%w: %v", errInvalidEncoding, err)
		}
		line = decoded
	}

	line = norm.NFKC.String(line)
	if n.StripAccents {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		stripped, _, err := transform.String(t, line)
		if err != nil {
			return "", fmt.Errorf("strip accents: %w", err)
		}
		line = stripped
	}

	// cases.Caser is stateful; one per call keeps Tokenize safe for concurrent use.
	return cases.Lower(n.Language).String(line), nil
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isStopWord(word, lang string) bool {
	return strings.TrimSpace(stopwords.CleanString(word, lang, false)) == ""
}
