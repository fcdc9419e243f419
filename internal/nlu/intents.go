package nlu

import "strings"

// Intent names shared between the transport layer (which maps platform
// NLU intents onto them) and the game controller (which reacts to them).
const (
	IntentConfirm   = "confirm"
	IntentReject    = "reject"
	IntentRepeat    = "repeat"
	IntentHelp      = "help"
	IntentHint      = "hint"
	IntentHintCount = "hint_count"
)

var confirmWords = map[string]struct{}{
	"да": {}, "давай": {}, "давайте": {}, "конечно": {}, "ладно": {},
	"хорошо": {}, "готов": {}, "готова": {}, "готовы": {}, "поехали": {},
	"начинаем": {}, "начинай": {}, "продолжим": {}, "продолжай": {}, "ок": {},
}

var rejectWords = map[string]struct{}{
	"нет": {}, "хватит": {}, "стоп": {}, "закончи": {}, "закончить": {},
	"выход": {}, "выйти": {}, "отмена": {},
}

// DetectIntents classifies an utterance by keywords. It is the fallback
// for requests where the platform did not supply NLU intents; the two
// sources are merged by the transport layer.
func DetectIntents(utterance string) []string {
	tokens := Tokenize(utterance)
	lower := strings.ToLower(utterance)

	var out []string
	add := func(intent string) { out = append(out, intent) }

	for _, t := range tokens {
		if _, ok := confirmWords[t]; ok {
			add(IntentConfirm)
			break
		}
	}
	for _, t := range tokens {
		if _, ok := rejectWords[t]; ok {
			add(IntentReject)
			break
		}
	}
	if strings.Contains(lower, "повтори") {
		add(IntentRepeat)
	}
	if strings.Contains(lower, "помощь") || strings.Contains(lower, "помоги") ||
		strings.Contains(lower, "что ты умеешь") {
		add(IntentHelp)
	}
	// "подсказ" catches all case forms of «подсказка»/«подскажи».
	if strings.Contains(lower, "подсказ") {
		if strings.Contains(lower, "сколько") {
			add(IntentHintCount)
		} else {
			add(IntentHint)
		}
	}
	return out
}
