package feedback

import (
	"fmt"
	"strings"

	"github.com/kitobai/kitob/core"
)

const (
	systemPrompt        = "Siz kitobxon bilan bo'lgan suhbatni tahlil qiluvchi ekspertisiz. Suhbatni baholang."
	systemPromptAnswers = "Siz suhbatni tahlil qiluvchi ekspertisiz. Foydalanuvchi javoblarini to'g'ri javoblar bilan solishtiring va baholang."

	resultFormat = `Natijani faqat quyidagi JSON formatida qaytaring:
{
  "totalScore": number,
  "categoryScores": [
    {"name": "Kitob mazmunini tushunish", "score": number, "comment": "Bahoga izoh (O'zbek tilida)"},
    {"name": "Muallif uslubi va g'oyasini tushunish", "score": number, "comment": "Bahoga izoh"},
    {"name": "Qahramonlar tahlili", "score": number, "comment": "Bahoga izoh"},
    {"name": "Tanqidiy fikrlash va shaxsiy munosabat", "score": number, "comment": "Bahoga izoh"},
    {"name": "Nutq ravonligi va so'z boyligi", "score": number, "comment": "Bahoga izoh"}
  ],
  "strengths": string[],
  "areasForImprovement": string[],
  "finalAssessment": string
}
strengths: kuchli tomonlari, areasForImprovement: rivojlantirish kerak bo'lgan tomonlar, finalAssessment: yakuniy xulosa. Hammasi o'zbek tilida.`
)

// Categories are the scoring criteria, in display order.
var Categories = []string{
	"Kitob mazmunini tushunish",
	"Muallif uslubi va g'oyasini tushunish",
	"Qahramonlar tahlili",
	"Tanqidiy fikrlash va shaxsiy munosabat",
	"Nutq ravonligi va so'z boyligi",
}

// FormatTranscript renders transcript as "- role: content" lines.
func FormatTranscript(transcript []core.ChatMessage) string {
	var b strings.Builder
	for _, msg := range transcript {
		fmt.Fprintf(&b, "- %s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

// FormatAnswers numbers the expected answers from 1.
func FormatAnswers(answers []string) string {
	lines := make([]string, 0, len(answers))
	for i, a := range answers {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, a))
	}
	return strings.Join(lines, "\n")
}

// buildPrompt returns the system and user prompts used to score transcript.
func buildPrompt(transcript []core.ChatMessage, answers []string) (string, string) {
	if len(answers) > 0 {
		return systemPromptAnswers, fmt.Sprintf(`Suhbat transkripti:
%s
To'g'ri javoblar:
%s

Iltimos, foydalanuvchi javoblarini to'g'ri javoblar bilan solishtirib, quyidagi mezonlar bo'yicha 0 dan 100 gacha baholang.
Javoblar kitoblar haqida bo'lgani uchun, kitob mazmunini tushunish va bilim darajasini baholang.

%s`, FormatTranscript(transcript), FormatAnswers(answers), resultFormat)
	}
	return systemPrompt, fmt.Sprintf(`Suhbat transkripti:
%s
Iltimos, nomzodni (kitobxonni) quyidagi mezonlar bo'yicha 0 dan 100 gacha baholang.

%s`, FormatTranscript(transcript), resultFormat)
}
