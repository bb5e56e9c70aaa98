package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lumina-app/lumina-import-go/internal/domain"
)

const maxTags = 8

// sentenceBoundary marks the end of a sentence: terminal punctuation followed
// by whitespace. The punctuation stays on the preceding sentence.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// SplitSentences segments extract text on sentence boundaries. Re-segmenting
// the joined result yields the same boundaries.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringSubmatchIndex(text, -1) {
		sentences = append(sentences, text[last:loc[3]])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

type yearPattern struct {
	re       *regexp.Regexp
	min, max int
}

// birthYearPatterns is the ordered fallback chain for extracting a birth year
// from prose. Patterns are tried in sequence; the first one that matches and
// yields a year inside its own validity window wins. A match outside the
// window is discarded, never clamped.
var birthYearPatterns = buildBirthYearPatterns(time.Now().Year())

func buildBirthYearPatterns(currentYear int) []yearPattern {
	return []yearPattern{
		// (7 November 1867 – ...   or   (November 7, 1867 – ...   or   (1867 –
		{regexp.MustCompile(`\((?:\d{1,2} )?(?:[A-Za-z]+ )?(?:\d{1,2}, )?(\d{4})\s*[–—-]`), 1000, currentYear},
		// (born June 26, 1993)   or   (born 1993)
		{regexp.MustCompile(`(?i)\(born (?:\d{1,2} )?(?:[A-Za-z]+ )?(?:\d{1,2}, )?(\d{4})\)`), 1000, currentYear},
		// (b. 1867)
		{regexp.MustCompile(`(?i)\(b\.\s*(\d{4})\)`), 1000, currentYear},
		// born 1867   or   born in 1867
		{regexp.MustCompile(`(?i)\bborn (?:in )?(\d{4})`), 1000, currentYear},
		// (1867–1934)   or   (1990–present)
		{regexp.MustCompile(`(?i)\((\d{4})\s*[–—-]\s*(?:\d{4}|present)\)`), 1000, currentYear},
		// Low-confidence last resort: any 4-digit year inside parentheses.
		// Looser window than the rest; can misfire on pages with several
		// bracketed numbers, which is why it runs last.
		{regexp.MustCompile(`\([^)]*\b(\d{4})\b[^)]*\)`), 1800, 2010},
	}
}

// ExtractBirthYear runs the pattern fallback chain over raw extract text.
// Returns nil when no pattern yields an in-window year.
func ExtractBirthYear(text string) *int {
	for _, pattern := range birthYearPatterns {
		match := pattern.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		year, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if year < pattern.min || year > pattern.max {
			continue
		}
		return &year
	}
	return nil
}

// ExtractNationality scans the demonym gazetteer in order and returns the
// first entry contained in the lower-cased intro, or "".
func ExtractNationality(intro string) string {
	lowered := strings.ToLower(intro)
	for _, demonym := range nationalities {
		if strings.Contains(lowered, demonym) {
			return demonym
		}
	}
	return ""
}

// tagSet preserves insertion order and suppresses duplicates.
type tagSet struct {
	tags []string
	seen map[string]struct{}
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]struct{})}
}

func (s *tagSet) add(tag string) {
	if tag == "" {
		return
	}
	if _, dup := s.seen[tag]; dup {
		return
	}
	s.seen[tag] = struct{}{}
	s.tags = append(s.tags, tag)
}

// ExtractTags collects up to maxTags tags in deterministic discovery order:
// occupation patterns over the intro, then the nationality, then achievement
// keywords found inside category labels.
func ExtractTags(intro, nationality string, categories []string) []string {
	set := newTagSet()

	for _, pattern := range occupationPatterns {
		if match := pattern.FindStringSubmatch(intro); match != nil {
			set.add(strings.ToLower(match[1]))
		}
	}

	set.add(nationality)

	for _, keyword := range achievementKeywords {
		for _, category := range categories {
			if strings.Contains(strings.ToLower(category), keyword) {
				set.add(keyword)
				break
			}
		}
	}

	if len(set.tags) > maxTags {
		return set.tags[:maxTags]
	}
	return set.tags
}

// DeriveFields turns raw extract text plus category labels into the structured
// profile fields. The birth year here comes from text patterns only; the
// orchestrator prefers the Wikidata value when one exists.
func DeriveFields(extractText string, categories []string) *domain.ExtractedProfile {
	sentences := SplitSentences(extractText)

	profile := &domain.ExtractedProfile{}

	if len(sentences) > 0 {
		intro := strings.Join(sentences[:minInt(2, len(sentences))], " ")
		profile.Intro = &intro
	}
	if len(sentences) >= 3 {
		accomplishments := strings.Join(sentences[2:minInt(5, len(sentences))], " ")
		profile.Accomplishments = &accomplishments
	}

	profile.BirthYear = ExtractBirthYear(extractText)

	intro := ""
	if profile.Intro != nil {
		intro = *profile.Intro
	}
	profile.Nationality = ExtractNationality(intro)
	profile.Tags = ExtractTags(intro, profile.Nationality, categories)

	return profile
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
