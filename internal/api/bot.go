package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"derma-vision/internal/container"
	"derma-vision/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для анализа состояния кожи лица.

📸 Отправьте мне фото лица, и я найду акне, чёрные точки, пигментные пятна и другие особенности кожи.

📋 Команды:
/check — начать анализ
/history — последние анализы
/threshold — порог уверенности
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото лица
2️⃣ Бот проанализирует изображение
3️⃣ Вы получите результат: отчёт + фото с отмеченными участками

💡 Рекомендации:
• Снимайте при дневном освещении
• Лицо должно занимать большую часть кадра
• Без макияжа и фильтров

📋 Команды:
/check — начать анализ
/history — последние анализы
/threshold 0.4 — задать порог уверенности (0 — по умолчанию)
/cancel — отменить операцию

⚠️ Результат не является медицинским диагнозом.`

	msgAwaitingPhoto   = "📸 Отправьте фото лица для анализа."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для нового анализа."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото лица для анализа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgNoHistory       = "📭 Анализов пока нет."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgBadThreshold    = "⚠️ Порог должен быть числом от 0 до 1, например /threshold 0.4"
)

// Bot представляет Telegram-бота
type Bot struct {
	api  *tgbotapi.BotAPI
	app  *container.Container
	log  *logrus.Entry
	sema chan struct{}
	wg   sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.WithField("component", "telegram")
	log.WithField("account", api.Self.UserName).Info("Authorized")

	workers := app.Workers
	if workers < 1 {
		workers = 1
	}
	return &Bot{
		api:  api,
		app:  app,
		log:  log,
		sema: make(chan struct{}, workers),
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wait()
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// spawn запускает обработчик в отдельной горутине, не более workers одновременно
func (b *Bot) spawn(fn func()) {
	b.sema <- struct{}{}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() { <-b.sema }()
		fn()
	}()
}

// wait ждёт завершения запущенных обработчиков
func (b *Bot) wait() {
	b.wg.Wait()
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.WithError(err).Error("Error getting user")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото или изображения, отправленного файлом
	if fileID, ok := imageFileID(msg); ok {
		if user.State == entity.StateProcessing {
			b.sendMessage(msg.Chat.ID, msgBusy)
			return
		}
		if _, err := b.app.UserService.StartProcessing(ctx, user.ID, user.ChatID); err != nil {
			b.log.WithError(err).Error("Error saving user state")
		}
		b.sendMessage(msg.Chat.ID, msgProcessing)
		threshold := user.ThresholdOr(b.app.DefaultThreshold)
		b.spawn(func() {
			b.handlePhoto(ctx, msg.Chat.ID, user.ID, fileID, threshold)
		})
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		b.setState(ctx, user, entity.StateAwaitingPhoto)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	case "history":
		results, err := b.app.AnalysisService.History(ctx, user.ID, b.app.HistoryLimit)
		if err != nil {
			b.log.WithError(err).Error("Error reading history")
			b.sendMessage(msg.Chat.ID, msgProcessingError)
			return
		}
		b.sendMessage(msg.Chat.ID, FormatHistory(results))

	case "threshold":
		b.handleThreshold(ctx, msg, user)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

func (b *Bot) handleThreshold(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("🎚 Текущий порог уверенности: %.2f", user.ThresholdOr(b.app.DefaultThreshold)))
		return
	}

	value, err := strconv.ParseFloat(strings.Replace(arg, ",", ".", 1), 64)
	if err != nil {
		b.sendMessage(msg.Chat.ID, msgBadThreshold)
		return
	}
	updated, err := b.app.UserService.SetThreshold(ctx, user.ID, user.ChatID, value)
	if err != nil {
		b.sendMessage(msg.Chat.ID, msgBadThreshold)
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Порог уверенности: %.2f", updated.ThresholdOr(b.app.DefaultThreshold)))
}

// handlePhoto скачивает фото, запускает анализ и отправляет результат
func (b *Bot) handlePhoto(ctx context.Context, chatID, userID int64, fileID string, threshold float64) {
	defer b.setStateByID(ctx, userID, chatID, entity.StateMainMenu)

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		b.log.WithError(err).Error("Error downloading photo")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	result := b.app.AnalysisService.AnalyzeForUser(ctx, userID, entity.AnalysisRequest{
		Image:           imageData,
		Threshold:       threshold,
		ReturnAnnotated: b.app.ReturnAnnotated,
		IncludeSummary:  true,
		Options:         entity.DefaultPreprocessingOptions(),
	})
	if !result.Success {
		b.log.WithField("error", result.Error).Warn("Analysis failed")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, FormatResult(result))

	if result.AnnotatedImage == "" {
		return
	}
	annotated, _, err := entity.DecodeDataURI(result.AnnotatedImage)
	if err != nil {
		b.log.WithError(err).Error("Error decoding annotated image")
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: result.ID + ".jpg", Bytes: annotated})
	if _, err := b.api.Send(photo); err != nil {
		b.log.WithError(err).Error("Error sending photo")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	b.setStateByID(ctx, user.ID, user.ChatID, state)
}

func (b *Bot) setStateByID(ctx context.Context, userID, chatID int64, state entity.UserState) {
	if _, err := b.app.UserService.SetState(ctx, userID, chatID, state); err != nil {
		b.log.WithError(err).Error("Error saving user state")
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Error("Error sending message")
	}
}

// imageFileID возвращает файл с максимальным разрешением из фото или документа-изображения
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}
