package extract

import (
	"sort"
	"strings"
	"unicode"
)

// MaxSkills caps how many skill tags a single resume can yield.
const MaxSkills = 30

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "to": {}, "of": {}, "in": {},
	"for": {}, "with": {}, "on": {}, "at": {}, "by": {}, "from": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "has": {},
	"have": {}, "had": {}, "this": {}, "that": {}, "it": {}, "its": {}, "or": {},
	"but": {}, "not": {}, "my": {}, "i": {}, "we": {}, "our": {}, "you": {},
	"your": {}, "their": {}, "they": {}, "he": {}, "she": {}, "his": {}, "her": {},
	"using": {}, "used": {}, "use": {}, "also": {}, "all": {}, "other": {},
	"such": {}, "than": {}, "then": {}, "into": {}, "over": {}, "per": {},
	"etc": {}, "via": {}, "where": {}, "which": {}, "while": {}, "during": {},
	"work": {}, "worked": {}, "working": {}, "experience": {}, "years": {},
	"year": {}, "including": {}, "various": {}, "responsible": {},
}

// Skills extracts ranked skill tags from resume text. Alphabetic tokens are
// lowercased, stopwords dropped, then ranked by frequency with first
// occurrence breaking ties. The resulting tags are title-cased, de-duplicated
// and capped at MaxSkills. Empty input yields an empty list, never an error.
func Skills(text string) []string {
	type entry struct {
		word  string
		count int
		first int
	}

	freq := make(map[string]*entry)
	pos := 0
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		pos++
		if len(token) < 2 {
			continue
		}
		word := strings.ToLower(token)
		if _, skip := stopwords[word]; skip {
			continue
		}
		if e, ok := freq[word]; ok {
			e.count++
		} else {
			freq[word] = &entry{word: word, count: 1, first: pos}
		}
	}

	ranked := make([]*entry, 0, len(freq))
	for _, e := range freq {
		ranked = append(ranked, e)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	skills := make([]string, 0, MaxSkills)
	seen := make(map[string]struct{}, MaxSkills)
	for _, e := range ranked {
		tag := titleCase(e.word)
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		skills = append(skills, tag)
		if len(skills) == MaxSkills {
			break
		}
	}
	return skills
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
