package search

// Synonyms maps a normalized title phrase to phrases that describe the same
// role in postings.
var Synonyms = map[string][]string{
	"software engineer": {"software developer", "developer", "programmer"},
	"frontend":          {"front end", "frontend developer", "ui developer"},
	"backend":           {"back end", "server developer"},
	"data scientist":    {"machine learning", "data analyst", "ml engineer"},
	"product manager":   {"product owner", "pm"},
	"devops":            {"site reliability", "sre", "platform engineer"},
}

func GetSynonyms(phrase string) []string {
	v, ok := Synonyms[phrase]
	if !ok {
		return []string{}
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
