package witness

import "strings"

// QuestionStyle is the lexically inferred style of an examination question.
type QuestionStyle string

const (
	StyleOpen       QuestionStyle = "open"
	StyleLeading    QuestionStyle = "leading"
	StyleAggressive QuestionStyle = "aggressive"
	StyleNeutral    QuestionStyle = "neutral"
)

var aggressiveMarkers = []string{
	"admit", "liar", "lying", "lied", "answer the question",
	"isn't it true you", "you expect us to believe", "come on",
	"stop pretending", "perjury",
}

var leadingOpeners = []string{
	"isn't it", "wasn't it", "didn't you", "don't you", "wouldn't you",
	"isn't that", "you agree", "surely",
}

var leadingTags = []string{", correct?", ", right?", ", yes?", ", didn't you?", ", isn't it?"}

var openOpeners = []string{
	"what", "how", "why", "when", "where", "who",
	"describe", "tell us", "tell the court", "explain", "walk us through",
}

// ClassifyQuestion infers the style of a question from simple lexical cues:
// question polarity, tag questions and imperative or accusatory phrasing.
// Aggressive beats leading beats open, since an aggressive question is often
// also leading.
func ClassifyQuestion(text string) QuestionStyle {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return StyleNeutral
	}
	if strings.Contains(q, "!") {
		return StyleAggressive
	}
	for _, m := range aggressiveMarkers {
		if strings.Contains(q, m) {
			return StyleAggressive
		}
	}
	for _, tag := range leadingTags {
		if strings.HasSuffix(q, strings.TrimSuffix(tag, "?")+"?") || strings.Contains(q, tag) {
			return StyleLeading
		}
	}
	for _, op := range leadingOpeners {
		if strings.HasPrefix(q, op) {
			return StyleLeading
		}
	}
	for _, op := range openOpeners {
		if strings.HasPrefix(q, op) {
			return StyleOpen
		}
	}
	return StyleNeutral
}

// factFingerprint is a compact key-assertion record: the significant words
// of one sentence plus its polarity. Fingerprints from chief examination are
// compared against cross-examination answers to catch contradictions.
type factFingerprint struct {
	words   map[string]struct{}
	negated bool
	text    string
}

var negationTokens = map[string]struct{}{
	"not": {}, "never": {}, "no": {}, "didn't": {}, "don't": {},
	"wasn't": {}, "weren't": {}, "isn't": {}, "aren't": {}, "can't": {},
	"couldn't": {}, "wouldn't": {}, "won't": {}, "haven't": {}, "hadn't": {},
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "that": {}, "this": {}, "with": {}, "from": {},
	"have": {}, "were": {}, "been": {}, "they": {}, "there": {}, "their": {},
	"would": {}, "could": {}, "about": {}, "which": {}, "when": {}, "then": {},
	"them": {}, "than": {}, "very": {}, "your": {}, "honor": {},
}

func normalizeWords(sentence string) (map[string]struct{}, bool) {
	words := make(map[string]struct{})
	negated := false
	for _, raw := range strings.Fields(strings.ToLower(sentence)) {
		w := strings.Trim(raw, ".,;:!?\"'()")
		if w == "" {
			continue
		}
		if _, ok := negationTokens[w]; ok {
			negated = true
			continue
		}
		if len(w) <= 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		words[w] = struct{}{}
	}
	return words, negated
}

// fingerprints splits an answer into sentences and fingerprints each one
// that carries enough signal.
func fingerprints(answer string) []factFingerprint {
	var out []factFingerprint
	for _, sentence := range splitSentences(answer) {
		words, negated := normalizeWords(sentence)
		if len(words) < 2 {
			continue
		}
		out = append(out, factFingerprint{words: words, negated: negated, text: strings.TrimSpace(sentence)})
	}
	return out
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// contradicts reports whether two fingerprints assert the same topic with
// opposite polarity. Topic overlap needs at least two shared significant
// words, an intentionally blunt lexical heuristic.
func contradicts(chief, cross factFingerprint) bool {
	if chief.negated == cross.negated {
		return false
	}
	shared := 0
	for w := range cross.words {
		if _, ok := chief.words[w]; ok {
			shared++
			if shared >= 2 {
				return true
			}
		}
	}
	return false
}
