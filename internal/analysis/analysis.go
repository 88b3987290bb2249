// Package analysis — лёгкий морфологический анализ текстов постов и комментариев.
package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"github.com/microcosm-cc/bluemonday"
)

const (
	LangRU      = "ru"
	LangEN      = "en"
	LangMixed   = "mixed"
	LangUnknown = "unknown"
)

const (
	PosNoun      = "noun"
	PosVerb      = "verb"
	PosAdjective = "adjective"
	PosAdverb    = "adverb"
	PosUnknown   = "unknown"
)

const topWordsLimit = 10

var (
	urlRe      = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
	mentionRe  = regexp.MustCompile(`\[(id|club|public)\d+\|([^\]]*)\]|@\w+`)
	sentenceRe = regexp.MustCompile(`[.!?…]+`)

	strict = bluemonday.StrictPolicy()
)

// Суффиксные эвристики: порядок важен, первое совпадение выигрывает.
var posRules = []struct {
	pos string
	re  *regexp.Regexp
}{
	{PosAdjective, regexp.MustCompile(`(?:ый|ий|ой|ая|яя|ое|ее|ые|ие|ого|его|ому|ему|ых|их)$|(?:ful|ous|ive|able|ible|al|less)$`)},
	{PosAdverb, regexp.MustCompile(`(?:о|е)$|ly$`)},
	{PosVerb, regexp.MustCompile(`(?:ть|ти|чь|ться|тся|ет|ют|ут|ит|ат|ят|ешь|ишь|ал|ил|ел|ла|ли)$|(?:ing|ed|ize|ise)$`)},
	{PosNoun, regexp.MustCompile(`(?:ция|ние|ость|тель|ство|изм|ка|а|я|ь)$|(?:tion|ment|ness|ity|er|or|ism)$`)},
}

// Result — итог анализа одного текста.
type Result struct {
	Language        string         `json:"language"`
	WordCount       int            `json:"word_count"`
	CharCount       int            `json:"char_count"`
	SentenceCount   int            `json:"sentence_count"`
	UniqueWords     int            `json:"unique_words"`
	TopWords        []WordFreq     `json:"top_words"`
	PartsOfSpeech   map[string]int `json:"parts_of_speech"`
	MatchedKeywords []string       `json:"matched_keywords"`
}

type WordFreq struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// StripHTML убирает разметку и раскрывает html-сущности.
func StripHTML(s string) string {
	out := strict.Sanitize(s)
	out = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'", "&quot;", `"`).Replace(out)
	return strings.TrimSpace(out)
}

// Tokenize разбивает текст на слова в нижнем регистре. Ссылки и упоминания выбрасываются.
func Tokenize(text string) []string {
	text = urlRe.ReplaceAllString(text, " ")
	text = mentionRe.ReplaceAllString(text, " $2 ")
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f == "" {
			continue
		}
		tokens = append(tokens, strings.ReplaceAll(f, "ё", "е"))
	}
	return tokens
}

// DetectLanguage определяет язык по доле кириллицы и латиницы среди букв.
func DetectLanguage(text string) string {
	var cyr, lat int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyr++
		case unicode.Is(unicode.Latin, r):
			lat++
		}
	}
	total := cyr + lat
	switch {
	case total == 0:
		return LangUnknown
	case float64(cyr)/float64(total) >= 0.8:
		return LangRU
	case float64(lat)/float64(total) >= 0.8:
		return LangEN
	}
	return LangMixed
}

func wordLanguage(word string) string {
	for _, r := range word {
		if unicode.Is(unicode.Cyrillic, r) {
			return "russian"
		}
		if unicode.Is(unicode.Latin, r) {
			return "english"
		}
	}
	return ""
}

// Stem возвращает основу слова. Слова не на русском и не на английском возвращаются как есть.
func Stem(word string) string {
	word = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(word)), "ё", "е")
	lang := wordLanguage(word)
	if lang == "" {
		return word
	}
	stemmed, err := snowball.Stem(word, lang, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// PartOfSpeech грубо угадывает часть речи по окончанию.
func PartOfSpeech(word string) string {
	word = strings.ToLower(word)
	if len([]rune(word)) < 3 || IsStopWord(word) {
		return PosUnknown
	}
	for _, rule := range posRules {
		if rule.re.MatchString(word) {
			return rule.pos
		}
	}
	return PosUnknown
}

func countSentences(text string) int {
	parts := sentenceRe.Split(text, -1)
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// Analyze считает статистику текста и сопоставляет его с ключевыми словами.
func Analyze(text string, keywords []string) Result {
	clean := StripHTML(text)
	tokens := Tokenize(clean)

	res := Result{
		Language:        DetectLanguage(clean),
		WordCount:       len(tokens),
		CharCount:       len([]rune(clean)),
		SentenceCount:   countSentences(clean),
		PartsOfSpeech:   map[string]int{},
		TopWords:        []WordFreq{},
		MatchedKeywords: Match(tokens, keywords),
	}

	freq := map[string]int{}
	for _, t := range tokens {
		freq[t]++
		res.PartsOfSpeech[PartOfSpeech(t)]++
	}
	res.UniqueWords = len(freq)

	for w, c := range freq {
		if IsStopWord(w) || len([]rune(w)) < 2 {
			continue
		}
		res.TopWords = append(res.TopWords, WordFreq{Word: w, Count: c})
	}
	sort.Slice(res.TopWords, func(i, j int) bool {
		if res.TopWords[i].Count != res.TopWords[j].Count {
			return res.TopWords[i].Count > res.TopWords[j].Count
		}
		return res.TopWords[i].Word < res.TopWords[j].Word
	})
	if len(res.TopWords) > topWordsLimit {
		res.TopWords = res.TopWords[:topWordsLimit]
	}
	return res
}

// Match возвращает ключевые слова, встретившиеся среди токенов.
// Однословное совпадает по основе, фраза совпадает как подряд идущие основы.
func Match(tokens []string, keywords []string) []string {
	matched := []string{}
	if len(tokens) == 0 || len(keywords) == 0 {
		return matched
	}
	stems := make([]string, len(tokens))
	set := make(map[string]struct{}, len(tokens))
	for i, t := range tokens {
		stems[i] = Stem(t)
		set[stems[i]] = struct{}{}
	}

	seen := map[string]struct{}{}
	for _, kw := range keywords {
		kwTokens := Tokenize(kw)
		if len(kwTokens) == 0 {
			continue
		}
		key := strings.Join(kwTokens, " ")
		if _, dup := seen[key]; dup {
			continue
		}

		ok := false
		if len(kwTokens) == 1 {
			_, ok = set[Stem(kwTokens[0])]
		} else {
			ok = containsPhrase(stems, kwTokens)
		}
		if ok {
			seen[key] = struct{}{}
			matched = append(matched, key)
		}
	}
	return matched
}

func containsPhrase(stems []string, phrase []string) bool {
	want := make([]string, len(phrase))
	for i, p := range phrase {
		want[i] = Stem(p)
	}
outer:
	for i := 0; i+len(want) <= len(stems); i++ {
		for j := range want {
			if stems[i+j] != want[j] {
				continue outer
			}
		}
		return true
	}
	return false
}
