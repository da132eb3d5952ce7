package location

// IncidentWords are action and emotion words that show up next to "county"
// or after "in" in incident narratives and are never place names
var IncidentWords = wordSet(
	"someone", "somebody", "killed", "kill", "hurt", "died", "dead", "murder",
	"murdered", "crime", "bad", "good", "wrong", "person", "people", "time",
	"place", "thing", "stuff", "injured", "shot", "stabbed", "beat", "hit",
	"scared", "angry", "trouble", "pain", "jail", "prison", "court", "custody",
)

// AbbreviationCollisions are postal abbreviations that are also common
// English words; they are only read as states from explicit patterns
var AbbreviationCollisions = wordSet(
	"in", "me", "or", "hi", "oh", "ok", "id", "de", "la", "ma", "pa", "co",
	"al", "mo", "ne", "ga", "wa", "mi", "md",
)

// Stopwords are function words that never start or form a location name
var Stopwords = wordSet(
	"a", "an", "the", "in", "at", "from", "to", "for", "near", "of", "on",
	"by", "and", "or", "but", "so", "my", "our", "your", "their", "his", "her",
	"this", "that", "these", "those", "i", "im", "i'm", "we", "you", "he",
	"she", "they", "it", "is", "am", "are", "was", "were", "be", "been",
	"live", "lives", "living", "located", "actually", "now", "here", "there",
	"got", "get", "getting", "had", "have", "has", "did", "do", "does",
	"need", "want", "lawyer", "attorney", "help", "please", "some", "any",
	"same", "different", "another", "which", "what", "dui", "dwi", "yes", "no",
	"just", "also", "still", "then", "yesterday", "today", "tomorrow", "last",
	"week", "month", "year", "night", "morning", "with", "about", "after",
	"before", "over", "under", "while", "when", "where", "who", "why", "how",
)

// IsStopword reports whether w is a stopword
func IsStopword(w string) bool {
	_, ok := Stopwords[w]
	return ok
}

// IsIncidentWord reports whether w is an incident word
func IsIncidentWord(w string) bool {
	_, ok := IncidentWords[w]
	return ok
}

// IsAbbreviationCollision reports whether abbr doubles as a common word
func IsAbbreviationCollision(abbr string) bool {
	_, ok := AbbreviationCollisions[abbr]
	return ok
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
