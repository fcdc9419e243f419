package httpserver

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/avrorahistoria/lecture-skill/internal/game"
	"github.com/avrorahistoria/lecture-skill/internal/morph"
)

// Canned prompt variants; one is chosen at random per response.
var (
	startPrompts = []string{"Начинаем?", "Готовы начать?", "Поехали?"}
	nextPrompts  = []string{"Продолжим?", "Едем дальше?"}
	factPrompts  = []string{"Хотите послушать интересный факт?"}
)

const greetingText = "Уважаемые студенты, рада видеть вас на своей лекции. " +
	"Я профессор исторических наук, Аврора Хистория. " +
	"Я буду задавать вопросы и предлагать варианты ответов, а вы — зарабатывать баллы. " +
	"Если станет трудно, просите подсказку: их количество ограничено. " +
	"Вы можете узнать больше, если скажете «Помощь»."

const helpText = "Навык «Удивительная лекция» отправит вас в увлекательное путешествие. " +
	"Продвигаясь всё дальше, вы будете отвечать на вопросы и зарабатывать баллы. " +
	"У вас есть возможность взять подсказку, но количество подсказок ограничено."

const farewellText = "Было приятно видеть вас на моей лекции. Заходите почаще, всегда рада."

var defaultButtons = []aliceButton{
	{Title: "Ладно", Hide: true},
	{Title: "Нет", Hide: true},
	{Title: "Повтори", Hide: true},
}

// renderer turns semantic outcomes into platform text/tts/buttons.
type renderer struct {
	morph morph.Analyzer
	pick  func(n int) int // index chooser, swappable for tests
}

func newRenderer(analyzer morph.Analyzer) *renderer {
	return &renderer{morph: analyzer, pick: rand.Intn}
}

func (rd *renderer) choose(options []string) string {
	return options[rd.pick(len(options))]
}

// agree formats "<n> <inflected word>".
func (rd *renderer) agree(n int, word string) string {
	return fmt.Sprintf("%d %s", n, rd.morph.AgreeWithNumber(word, n))
}

func (rd *renderer) greeting() aliceReply {
	text := greetingText + " " + rd.choose(startPrompts)
	return aliceReply{Text: text, Buttons: defaultButtons}
}

func (rd *renderer) help() aliceReply {
	text := helpText + " " + rd.choose(startPrompts)
	return aliceReply{Text: text, Buttons: defaultButtons}
}

func (rd *renderer) apology() aliceReply {
	return aliceReply{Text: "Ой, что-то пошло не так. Повторите, пожалуйста, ещё раз."}
}

// render maps one outcome to a reply. sess is the post-turn snapshot.
func (rd *renderer) render(out game.Outcome, sess *game.Session) aliceReply {
	switch o := out.(type) {
	case game.QuestionPresented:
		return rd.question(o)

	case game.AnswerOutcome:
		return rd.answer(o)

	case game.HintDelivered:
		return rd.hint(o)

	case game.FactDelivered:
		text := "Интересный факт:\n" + o.Fact.Src + "\n" + rd.choose(nextPrompts)
		tts := "Интересный факт.\n" + o.Fact.Spoken() + "\n" + rd.choose(nextPrompts)
		return aliceReply{Text: text, TTS: tts, Buttons: defaultButtons}

	case game.GameEnded:
		score := rd.agree(o.FinalScore, "балл")
		if o.SessionOver {
			return aliceReply{
				Text:       fmt.Sprintf("Ваш итог — %s. %s", score, farewellText),
				EndSession: true,
			}
		}
		return aliceReply{
			Text: fmt.Sprintf("Вопросы закончились! Вы набрали %s за %s. Начнём сначала?",
				score, rd.agree(o.QuestionsAnswered, "вопрос")),
			Buttons: defaultButtons,
		}

	case game.Unrecognized:
		return rd.unrecognized(o)
	}
	return rd.apology()
}

func (rd *renderer) question(o game.QuestionPresented) aliceReply {
	var text, tts strings.Builder
	text.WriteString(o.Question.FullText.Src)
	text.WriteString("\n\nВарианты ответов:")
	tts.WriteString(o.Question.FullText.Spoken())
	tts.WriteString("\nВарианты ответов:")

	buttons := make([]aliceButton, 0, len(o.Answers))
	for i, ref := range o.Answers {
		ans := o.Question.Answers[i]
		fmt.Fprintf(&text, "\n%d: %s", ref.Ordinal, ans.Text.Src)
		fmt.Fprintf(&tts, "\n%d-й — %s", ref.Ordinal, ans.Text.Spoken())
		buttons = append(buttons, aliceButton{
			Title:   ans.Text.Src,
			Payload: buttonPayload{Number: ref.Ordinal, IsTrue: ans.IsCorrect},
			Hide:    true,
		})
	}
	return aliceReply{Text: text.String(), TTS: tts.String(), Buttons: buttons}
}

func (rd *renderer) answer(o game.AnswerOutcome) aliceReply {
	if o.Correct {
		text := "Верно! Вы получаете балл. " + rd.choose(factPrompts)
		return aliceReply{Text: text, Buttons: defaultButtons}
	}
	switch {
	case o.RetryOffered && o.HintOffered:
		return aliceReply{
			Text:    "К сожалению, это неверный ответ. Попробуете ещё раз или возьмёте подсказку?",
			Buttons: defaultButtons,
		}
	case o.RetryOffered:
		return aliceReply{
			Text:    "К сожалению, это неверный ответ. Попробуйте ещё раз.",
			Buttons: defaultButtons,
		}
	default:
		text := fmt.Sprintf("Увы, снова мимо. Правильный ответ: %s. %s",
			o.Revealed, rd.choose(factPrompts))
		return aliceReply{Text: text, Buttons: defaultButtons}
	}
}

func (rd *renderer) hint(o game.HintDelivered) aliceReply {
	switch {
	case o.Depleted:
		return aliceReply{Text: "Увы, подсказки закончились. Попробуйте ответить без них."}
	case o.CountOnly:
		return aliceReply{Text: fmt.Sprintf("У вас осталось %s.", rd.agree(o.Remaining, "подсказка"))}
	default:
		return aliceReply{
			Text: fmt.Sprintf("Подсказка: %s\nОсталось %s.", o.Text, rd.agree(o.Remaining, "подсказка")),
		}
	}
}

func (rd *renderer) unrecognized(o game.Unrecognized) aliceReply {
	switch o.State {
	case game.StateGuessAnswer:
		var b strings.Builder
		b.WriteString("Я вас не поняла. Выберите один из вариантов:")
		for _, a := range o.Answers {
			fmt.Fprintf(&b, "\n%d: %s", a.Ordinal, a.Text)
		}
		return aliceReply{Text: b.String()}
	case game.StateFact:
		return aliceReply{Text: "Так рассказать интересный факт?", Buttons: defaultButtons}
	default:
		return aliceReply{Text: "Повторите, пожалуйста."}
	}
}
