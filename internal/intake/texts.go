package intake

// Main menu button labels. Matched by exact text.
const (
	MenuServices = "Услуги"
	MenuAbout    = "О нас"
	MenuReview   = "Отправить отзыв"
)

// Service type menu button labels.
const (
	MenuIndividual = "Физическое лицо"
	MenuCompany    = "Компаниям"
	MenuBack       = "Назад"
)

// Dialogue texts. Kept verbatim so live dialogues read the same across releases.
const (
	textWelcome = "Добро пожаловать! Выберите действие:"

	textChooseServiceType = "Выберите тип услуги:"

	textIndividualIntro = "Мы предоставляем гибкий список услуг... Опишите в сообщении, какая помощь вам требуется."
	textCompanyIntro    = "Мы предоставляем услуги для компаний... Опишите в сообщении, какая помощь вам требуется."

	textAskTaxID   = "Укажите ИНН вашей компании:"
	textAskName    = "Как Вас зовут?"
	textAskPhone   = "Укажите Ваш номер телефона в формате '89991370000'"
	textBadTaxID   = "Некорректный ИНН! Попробуйте снова."
	textBadPhone   = "Некорректный номер телефона! Попробуйте снова."
	textSubmitted  = "Ваша заявка отправлена, с вами свяжутся в ближайшее время"
	textSubmitFail = "Не удалось сохранить заявку, попробуйте позже."

	textAbout = "Home Service - это ключ к качеству и гибкости на рынке услуг ремонтных работ для физических " +
		"и юридических лиц. Телефон для справок: 8-991-053-11-85"

	textAskReview  = "Напишите отзыв."
	textReviewDone = "Отзыв направлен на проверку, спасибо!"
	textReviewFail = "Не удалось отправить отзыв, попробуйте позже."
)
