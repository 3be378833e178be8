package recommend

import "strings"

// StopwordsFor returns the filter set for a configured language. The set's
// language must match the corpus language; a mismatch does not fail, it just
// leaves every corpus token unfiltered and degrades ranking quality.
func StopwordsFor(language string) map[string]struct{} {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "english":
		return toSet(englishStopwords)
	case "korean":
		return toSet(koreanStopwords)
	default:
		return map[string]struct{}{}
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var englishStopwords = []string{
	"about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "could", "did", "do",
	"does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "if", "in", "into", "is",
	"it", "its", "itself", "just", "me", "more", "most", "my", "myself",
	"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same",
	"she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "themselves", "then", "there", "these", "they",
	"this", "those", "through", "to", "too", "under", "until", "up",
	"very", "was", "we", "were", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "you", "your", "yours",
	"yourself", "yourselves",
}

var koreanStopwords = []string{
	"그리고", "그러나", "그런데", "하지만", "또한", "또는", "즉", "만약",
	"따라서", "그래서", "이것", "저것", "그것", "이런", "저런", "그런",
	"있다", "없다", "되다", "하다", "이다", "아니다", "있는", "없는",
	"하는", "되는", "대한", "위한", "통해", "대해", "같은", "많은",
	"모든", "어떤", "우리", "당신", "자신", "경우", "때문", "함께",
}
