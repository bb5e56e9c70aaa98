package extract

import (
	"fmt"
	"regexp"
)

// Static lookup tables for the field extractor. All of these are built once at
// process start and never mutated.

// nationalities is scanned in order against the lower-cased intro; the first
// entry found as a substring wins. Plain substring containment is the defined
// semantics: no word-boundary check is applied, so compound phrases can match
// ("british" inside "Great British Bake Off"). That imprecision is accepted.
var nationalities = []string{
	"american", "canadian", "mexican", "brazilian", "argentine", "chilean",
	"colombian", "peruvian", "venezuelan", "cuban", "jamaican", "haitian",
	"british", "english", "scottish", "welsh", "irish",
	"polish", "french", "german", "italian", "spanish", "portuguese",
	"dutch", "belgian", "swiss", "austrian", "russian", "ukrainian",
	"czech", "hungarian", "romanian", "greek", "turkish",
	"swedish", "norwegian", "danish", "finnish", "icelandic",
	"chinese", "japanese", "korean", "indian", "pakistani", "bangladeshi",
	"indonesian", "filipino", "vietnamese", "malaysian",
	"australian", "new zealand",
	"egyptian", "nigerian", "kenyan", "ghanaian", "ethiopian",
	"south african", "moroccan", "israeli", "iranian", "lebanese",
}

// occupationTerms feed one regex each; every matching pattern contributes a
// single lower-cased tag, in this order.
var occupationTerms = []string{
	"physicist", "chemist", "biologist", "mathematician",
	"computer scientist", "scientist", "engineer", "astronomer",
	"astronaut", "aviator", "pilot",
	"physician", "surgeon", "doctor", "nurse",
	"psychologist", "economist", "historian", "philosopher",
	"anthropologist", "archaeologist",
	"actress", "singer", "songwriter", "musician", "composer",
	"conductor", "dancer", "choreographer",
	"painter", "sculptor", "photographer", "artist",
	"architect", "designer", "model",
	"writer", "author", "poet", "novelist", "playwright",
	"journalist", "editor", "screenwriter", "director", "producer",
	"politician", "senator", "congresswoman", "governor", "diplomat",
	"lawyer", "judge", "justice",
	"activist", "suffragist",
	"businesswoman", "entrepreneur", "executive", "ceo", "founder",
	"professor", "teacher",
	"athlete", "swimmer", "gymnast", "sprinter", "tennis player", "chef",
}

var occupationPatterns = buildOccupationPatterns(occupationTerms)

func buildOccupationPatterns(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)\b`, term)))
	}
	return patterns
}

// achievementKeywords are matched as substrings of lower-cased category labels.
var achievementKeywords = []string{
	"nobel", "pulitzer", "academy award", "oscar", "emmy", "grammy",
	"tony award", "olympic", "billionaire", "activist", "feminist",
	"suffragist", "entrepreneur", "philanthropist", "civil rights",
	"hall of fame", "medal of freedom", "astronaut", "first lady",
}
