package agent

import (
	"fmt"
	"strings"

	"github.com/kitobai/kitob/core"
)

// Conversation types
const (
	TypeGenerate       = "generate"
	TypeInterview      = "interview"
	TypeAdminInterview = "admin-interview"
)

const (
	GenerateToolName = "generate_book_interview"

	toolSucceeded = "Intervyu muvaffaqiyatli generatsiya qilindi. Bosh sahifada ko'rishingiz mumkin."
	toolFailed    = "Xatolik yuz berdi."

	// GreetingMessage opens every call.
	GreetingMessage = "Salom"

	defaultBookTitle = "Tanlangan kitob"
	defaultBookWord  = "kitob"
)

// GenerateTool collects the book and question type of a new generated interview.
var GenerateTool = core.Tool{
	Name:        GenerateToolName,
	Description: "Ma'lumotlar yig'ilgach, kitob bo'yicha intervyu generatsiya qiladi.",
	Params: []core.ToolParam{
		{Name: "bookName", Description: "Kitob nomi", Required: true},
		{Name: "questionType", Description: "Savol turi (short/mid/long)", Enum: []string{"short", "mid", "long"}, Required: true},
	},
}

func validType(t string) bool {
	return t == TypeGenerate || t == TypeInterview || t == TypeAdminInterview
}

// SystemPrompt returns the instructions of the assistant for conv.
func SystemPrompt(conv Conversation) string {
	switch conv.Type {
	case TypeGenerate:
		return generatePrompt(conv)
	case TypeAdminInterview:
		return adminInterviewPrompt(conv)
	default:
		return interviewPrompt(conv)
	}
}

func generatePrompt(conv Conversation) string {
	return fmt.Sprintf(`Siz kitobxonlar uchun yordamchisiz.

Maqsad: Foydalanuvchidan kitob haqida ma'lumot yig'ish va intervyu generatsiya qilish.
Foydalanuvchi ismi: %s

Kerakli ma'lumotlar:
1. O'qigan kitobining nomi (Book Name)
2. Savol turi (Question Type):
   - Qisqa (short) - faktlarga asoslangan
   - O'rtacha (mid) - jarayon haqida
   - Uzun (long) - shaxsiy fikr va tahlil

Yo'riqnoma:
- Avval salomlashing va qaysi kitobni o'qiganini so'rang.
- Keyin qanday turdagi savollarni xohlashini so'rang (qisqa, o'rtacha yoki uzun).
- Har safar BITTA savol bering.
- Javoblarni qisqa va aniq qiling.
- Barcha ma'lumotlarni yig'ib bo'lgach, DARHOL '%s' funksiyasini chaqiring.
- Funksiyani chaqirgandan so'ng, foydalanuvchiga rahmat aytib xayrlashing.`, conv.UserName, GenerateToolName)
}

func adminInterviewPrompt(conv Conversation) string {
	title, word := conv.BookName, conv.BookName
	if title == "" {
		title, word = defaultBookTitle, defaultBookWord
	}
	count := len(conv.Questions)

	return fmt.Sprintf(`Siz professional suhbatdoshsiz va baholovchisiz.

Ism: %[1]s
Kitob: %[2]s
Jami savollar soni: %[3]d

Vazifa: Quyidagi savollarni ketma-ket so'rang.

Savollar ro'yxati:
%[4]s

Qat'iy Yo'riqnoma:
1. SUHBAT BOSHLANISHI:
   - "Assalamu alaykum, %[1]s. Men sizdan %[5]s kitobi bo'yicha %[3]d ta savol so'rayman. Tayyormisiz?" deb boshlang.

2. TAYYORGARLIKNI TEKSHIRISH:
   - Agar javob "Ha" yoki "Tayyorman" bo'lsa -> Avval "Yaxshi, unda savollarni boshlaymiz" deb aytib, keyin 1-savolni bering.
   - Agar javob "Yo'q" bo'lsa -> "Agar hozir savol-javobni boshlamasangiz va savollarimga javob bermasangiz, siz 0%% natija olasiz. Agar suhbatni boshlasangiz, baho olish uchun uni oxirigacha yetkazish majburiy." deb ogohlantiring. Agar xop boshlaymiz desa, avval "Yaxshi, unda savollarni boshlaymiz" deb aytib, keyin 1-savolni bering.
   - Agar ogohlantirishdan keyin ham rad etsa -> Xayrlashing va suhbatni tugating.

3. SAVOL BERISH TARTIBI:
   - Savollarni faqat BIRMA-BIR bering.
   - Har bir savoldan keyin javobni kuting.
   - Javobni olgach, HECH QANDAY BAHO BERMANG va izohlamang (masalan "To'g'ri" yoki "Yaxshi" demang). Shunchaki "Tushunarli" deb keyingi savolga o'ting yoki to'g'ridan-to'g'ri keyingi savolni bering.
   - Agar foydalanuvchi "Savolni qaytaring" desa -> Savolni qayta o'qing.
   - Agar savol uzun bo'lsa, oxirida "Savol tushunarlimi?" deb qo'shishingiz mumkin.

4. SUHBATNI YAKUNLASH:
   - Agar foydalanuvchi "Davom etmayman" desa -> Xayrlashing.
   - Barcha savollar tugagach -> "%[6]s" deb aytib suhbatni tugating.

Faqat suhbat olib boruvchi bo'ling. Baholashni suhbat tugaganidan keyin tizim amalga oshiradi.`,
		conv.UserName, title, count, numbered(conv.Questions), word, ClosingPhrase)
}

// ClosingPhrase ends admin interviews.
const ClosingPhrase = "Suhbat yakunlandi. Ishtirokingiz uchun rahmat. Endi natijangiz va fikr-mulohazalar bilan tanishishingiz mumkin. Xayr."

func interviewPrompt(conv Conversation) string {
	return fmt.Sprintf(`Siz professional suhbatdoshsiz.

Nomzod: %s
Vazifa: Quyidagi savollar asosida ovozli suhbat o'tkazing:
%s

Yo'riqnoma:
- Ro'yxatdan BITTA savolni bering.
- Javobni tinglang, qisqacha munosabat bildiring (masalan, "Tushunarli", "Yaxshi fikr") va keyingi savolga o'ting.
- Javoblaringiz QISQA bo'lsin (maksimum 1-2 gap).
- Suhbat oxirida rahmat aytib xayrlashing.`, conv.UserName, strings.Join(conv.Questions, "\n"))
}

func numbered(questions []string) string {
	lines := make([]string, 0, len(questions))
	for i, q := range questions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, q))
	}
	return strings.Join(lines, "\n")
}
