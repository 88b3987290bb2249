package analysis

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// ru
		"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все", "она", "так",
		"его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по", "только", "ее", "мне", "было",
		"вот", "от", "меня", "еще", "нет", "о", "из", "ему", "теперь", "когда", "даже", "ну", "ли",
		"если", "уже", "или", "ни", "быть", "был", "него", "до", "вас", "нибудь", "опять", "уж", "вам",
		"ведь", "там", "потом", "себя", "ничего", "ей", "может", "они", "тут", "где", "есть", "надо",
		"ней", "для", "мы", "тебя", "их", "чем", "была", "сам", "чтоб", "без", "будто", "чего", "раз",
		"тоже", "себе", "под", "будет", "ж", "тогда", "кто", "этот", "того", "потому", "этого", "какой",
		"совсем", "ним", "здесь", "этом", "один", "почти", "мой", "тем", "чтобы", "нее", "были", "куда",
		"зачем", "всех", "никогда", "можно", "при", "наконец", "два", "об", "другой", "хоть", "после",
		"над", "больше", "тот", "через", "эти", "нас", "про", "всего", "них", "какая", "много", "разве",
		"три", "эту", "моя", "впрочем", "хорошо", "свою", "этой", "перед", "иногда", "лучше", "чуть",
		"том", "нельзя", "такой", "им", "более", "всегда", "конечно", "всю", "между", "это", "так",
		// en
		"a", "an", "the", "and", "or", "but", "if", "of", "at", "by", "for", "with", "about", "to",
		"from", "in", "on", "is", "are", "was", "were", "be", "been", "it", "its", "this", "that",
		"these", "those", "i", "you", "he", "she", "we", "they", "me", "my", "your", "our", "their",
		"not", "no", "so", "as", "do", "does", "did", "have", "has", "had", "will", "would", "can",
	} {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord отсеивает служебные слова, не несущие смысла для статистики.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
