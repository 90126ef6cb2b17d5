package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrPhoneTaken         ErrCode = "PHONE_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrRefreshInvalid     ErrCode = "REFRESH_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminOnly            ErrCode = "ADMIN_ONLY"
	ErrSubscriptionRequired ErrCode = "SUBSCRIPTION_REQUIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrMalformedAnswers ErrCode = "MALFORMED_ANSWERS"
	ErrEmptyAnswers     ErrCode = "EMPTY_ANSWERS"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrTicketNotFound ErrCode = "TICKET_NOT_FOUND"

	// ─── Final exam ────────────────────────────────────────────────────
	ErrSessionNotFound       ErrCode = "SESSION_NOT_FOUND"
	ErrExamExpired           ErrCode = "EXAM_EXPIRED"
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrQuestionNotInExam     ErrCode = "QUESTION_NOT_IN_EXAM"

	// ─── Ticket practice / mistakes ────────────────────────────────────
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"
	ErrForeignQuestion    ErrCode = "FOREIGN_QUESTION"
	ErrNoMatchingMistakes ErrCode = "NO_MATCHING_MISTAKES"

	// ─── Subscription ──────────────────────────────────────────────────
	ErrPaymentAmountTooLow ErrCode = "PAYMENT_AMOUNT_TOO_LOW"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Telefon raqami yoki parol xato!"
	case ErrPhoneTaken:
		return "Bu telefon raqami band."
	case ErrTokenRequired:
		return "Token topilmadi, ruxsat berilmadi."
	case ErrTokenInvalid:
		return "Token yaroqsiz yoki muddati o'tgan."
	case ErrRefreshInvalid:
		return "Yaroqsiz refresh token."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrAdminOnly:
		return "Ushbu amalni bajarish uchun admin huquqi kerak!"
	case ErrSubscriptionRequired:
		return "Bu biletni ishlash uchun obuna bo'lishingiz kerak!"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Ma'lumotlar validatsiyadan o'tmadi."
	case ErrInvalidID:
		return "ID formati noto'g'ri."
	case ErrMalformedAnswers:
		return "answers formati noto'g'ri. Masalan: { \"12\": 2, \"14\": 0 }"
	case ErrEmptyAnswers:
		return "answers majburiy. Masalan: { \"12\": 2, \"14\": 0 }"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ma'lumot topilmadi."
	case ErrUserNotFound:
		return "Foydalanuvchi topilmadi."
	case ErrTicketNotFound:
		return "Bilet topilmadi."

	// ─── Final exam ────────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "Faol imtihon topilmadi."
	case ErrExamExpired:
		return "Imtihon vaqti tugadi. Natijalaringiz saqlandi."
	case ErrInsufficientQuestions:
		return "Bazada yetarli savol yo'q."
	case ErrQuestionNotInExam:
		return "Bu savol imtihonda mavjud emas."

	// ─── Ticket practice / mistakes ────────────────────────────────────
	case ErrNoQuestions:
		return "Bu bilet ichida savollar topilmadi."
	case ErrForeignQuestion:
		return "Savol ushbu biletga tegishli emas."
	case ErrNoMatchingMistakes:
		return "Berilgan savollar ichida xatolar bo'limida mavjud savol topilmadi."

	// ─── Subscription ──────────────────────────────────────────────────
	case ErrPaymentAmountTooLow:
		return "Obuna bo'lish uchun minimal summa 50,000 so'm!"

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Fayl yuklash majburiy."
	case ErrUnsupportedFile:
		return "Fayl turi qo'llab-quvvatlanmaydi."
	case ErrFileTooLarge:
		return "Fayl hajmi chegaradan oshdi."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Juda ko'p so'rov. Birozdan keyin qayta urinib ko'ring."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Server xatosi."
	default:
		return "Kutilmagan xato yuz berdi."
	}
}
