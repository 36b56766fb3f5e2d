package keyboard

import (
	"github.com/futig/style-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects callback data longer than this
const maxCallbackData = 64

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start the survey", EncodeCallback(ActionCommand, CommandStart)),
		),
	)
}

// QuestionKeyboard renders choice options as buttons and adds a skip button when
// skipping is allowed. It returns nil when there is nothing to show.
func (b *Builder) QuestionKeyboard(q *entity.Question, canSkip bool) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if q.Validation.Type == entity.RuleChoice {
		row := []tgbotapi.InlineKeyboardButton{}
		for _, opt := range q.Validation.Options {
			data := EncodeAnswer(q.ID, opt)
			if len(data) > maxCallbackData {
				// long options are typed by the user instead
				continue
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(opt, data))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	if canSkip {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip question", EncodeCallback(ActionCommand, CommandSkip)),
		))
	}

	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// ReportKeyboard offers the diagnosis report for download
func (b *Builder) ReportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 PDF", EncodeCallback(ActionDownload, string(entity.FormatPDF))),
			tgbotapi.NewInlineKeyboardButtonData("📝 Markdown", EncodeCallback(ActionDownload, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📃 DOCX", EncodeCallback(ActionDownload, string(entity.FormatDOCX))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Start over", EncodeCallback(ActionCommand, CommandStart)),
		),
	)
}

// RetryDiagnosisKeyboard lets the user re-run a diagnosis that failed
func (b *Builder) RetryDiagnosisKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Try again", EncodeCallback(ActionCommand, CommandDiagnose)),
		),
	)
}
