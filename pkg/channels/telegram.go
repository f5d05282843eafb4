package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/config"
	"github.com/minthantoo333/srttospeech/pkg/logger"
	"github.com/minthantoo333/srttospeech/pkg/utils"
)

const (
	telegramMaxMessageLength = 4096

	// maxDocumentBytes bounds uploaded subtitle files; anything larger
	// is not a subtitle script.
	maxDocumentBytes = 1 << 20
)

type TelegramChannel struct {
	*BaseChannel
	bot    *telego.Bot
	config config.TelegramConfig
}

func NewTelegramChannel(cfg config.TelegramConfig, messageBus *bus.MessageBus) (*TelegramChannel, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramChannel{
		BaseChannel: NewBaseChannel("telegram", messageBus, cfg.AllowFrom),
		bot:         bot,
		config:      cfg,
	}, nil
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	logger.InfoC("telegram", "Starting Telegram bot (polling mode)...")

	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	c.setRunning(true)
	logger.InfoCF("telegram", "Telegram bot connected", map[string]any{
		"username": c.bot.Username(),
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					logger.InfoC("telegram", "Updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(ctx, *update.Message)
				}
				if update.CallbackQuery != nil {
					c.handleCallback(ctx, *update.CallbackQuery)
				}
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	logger.InfoC("telegram", "Stopping Telegram bot...")
	c.setRunning(false)
	return nil
}

func (c *TelegramChannel) handleMessage(ctx context.Context, message telego.Message) {
	user := message.From
	if user == nil {
		return
	}

	senderID := strconv.FormatInt(user.ID, 10)
	if user.Username != "" {
		senderID = fmt.Sprintf("%d|%s", user.ID, user.Username)
	}
	chatID := strconv.FormatInt(message.Chat.ID, 10)

	if message.Document != nil {
		c.handleDocument(ctx, message, senderID, chatID)
		return
	}

	if message.Text == "" {
		return
	}

	logger.DebugCF("telegram", "Received message", map[string]any{
		"sender_id": senderID,
		"chat_id":   chatID,
		"preview":   utils.Truncate(message.Text, 50),
	})

	c.HandleInbound(bus.InboundMessage{
		SenderID: senderID,
		ChatID:   chatID,
		Kind:     bus.KindText,
		Content:  message.Text,
		Metadata: map[string]string{
			"message_id": strconv.Itoa(message.MessageID),
			"username":   user.Username,
		},
	})
}

// handleDocument downloads an uploaded subtitle file and forwards its
// text as a single complete fragment.
func (c *TelegramChannel) handleDocument(ctx context.Context, message telego.Message, senderID, chatID string) {
	doc := message.Document
	if doc.FileSize > maxDocumentBytes {
		c.Send(ctx, bus.OutboundMessage{
			ChatID:  chatID,
			Content: "❌ File is too large. Please upload a subtitle file under 1 MB.",
		})
		return
	}

	content, err := c.downloadDocumentText(ctx, doc.FileID)
	if err != nil {
		logger.ErrorCF("telegram", "Document download failed", map[string]any{
			"file_id": doc.FileID,
			"error":   err.Error(),
		})
		c.Send(ctx, bus.OutboundMessage{
			ChatID:  chatID,
			Content: "❌ Could not read the uploaded file. Please try again.",
		})
		return
	}

	c.HandleInbound(bus.InboundMessage{
		SenderID: senderID,
		ChatID:   chatID,
		Kind:     bus.KindFile,
		Content:  content,
		Metadata: map[string]string{
			"file_name": doc.FileName,
		},
	})
}

func (c *TelegramChannel) downloadDocumentText(ctx context.Context, fileID string) (string, error) {
	file, err := c.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("file %s has no download path", fileID)
	}

	localPath := utils.DownloadFile(c.bot.FileDownloadURL(file.FilePath), file.FilePath, utils.DownloadOptions{
		LoggerPrefix: "telegram",
	})
	if localPath == "" {
		return "", fmt.Errorf("download failed for %s", fileID)
	}
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read downloaded file: %w", err)
	}

	return string(data), nil
}

func (c *TelegramChannel) handleCallback(ctx context.Context, query telego.CallbackQuery) {
	senderID := strconv.FormatInt(query.From.ID, 10)
	if query.From.Username != "" {
		senderID = fmt.Sprintf("%d|%s", query.From.ID, query.From.Username)
	}

	// Ack immediately so the button stops spinning even if handling is slow.
	if err := c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	}); err != nil {
		logger.DebugCF("telegram", "Callback ack failed", map[string]any{
			"error": err.Error(),
		})
	}

	if query.Message == nil {
		logger.WarnC("telegram", "Callback without message context dropped")
		return
	}

	chat := query.Message.GetChat()
	c.HandleInbound(bus.InboundMessage{
		SenderID:   senderID,
		ChatID:     strconv.FormatInt(chat.ID, 10),
		Kind:       bus.KindCallback,
		Content:    query.Data,
		CallbackID: query.ID,
		MessageID:  strconv.Itoa(query.Message.GetMessageID()),
	})
}

func (c *TelegramChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("telegram bot not running")
	}

	chatID, err := parseChatID(msg.ChatID)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	if msg.AudioPath != "" {
		return c.sendAudio(ctx, chatID, msg)
	}

	content := msg.Content
	if len([]rune(content)) > telegramMaxMessageLength {
		content = utils.Truncate(content, telegramMaxMessageLength)
	}
	keyboard := buildKeyboard(msg.Buttons)

	if msg.EditMessageID != "" {
		if err := c.editMessage(ctx, chatID, msg.EditMessageID, content, keyboard); err == nil {
			return nil
		}
		// Edit can fail when the original message is gone; degrade to a
		// fresh message so the user still sees the result.
	}

	params := tu.Message(tu.ID(chatID), content)
	params.ReplyMarkup = keyboard
	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (c *TelegramChannel) editMessage(ctx context.Context, chatID int64, messageID, content string, keyboard *telego.InlineKeyboardMarkup) error {
	mid, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message ID %q: %w", messageID, err)
	}

	params := tu.EditMessageText(tu.ID(chatID), mid, content)
	params.ReplyMarkup = keyboard
	if _, err := c.bot.EditMessageText(ctx, params); err != nil {
		logger.DebugCF("telegram", "Edit failed, falling back to new message", map[string]any{
			"message_id": messageID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// sendAudio delivers a synthesized artifact as an audio message, then
// removes the placeholder message if one is referenced. The artifact file
// is owned by the caller.
func (c *TelegramChannel) sendAudio(ctx context.Context, chatID int64, msg bus.OutboundMessage) error {
	if err := c.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(chatID), telego.ChatActionUploadVoice)); err != nil {
		logger.DebugCF("telegram", "Chat action failed", map[string]any{
			"error": err.Error(),
		})
	}

	f, err := os.Open(msg.AudioPath)
	if err != nil {
		return fmt.Errorf("open audio artifact: %w", err)
	}
	defer f.Close()

	params := tu.Audio(tu.ID(chatID), tu.File(f))
	params.Title = msg.AudioTitle
	params.Caption = msg.Content
	if _, err := c.bot.SendAudio(ctx, params); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}

	if msg.DeleteMessageID != "" {
		c.deleteMessage(ctx, chatID, msg.DeleteMessageID)
	}
	return nil
}

// deleteMessage is best effort: a placeholder that is already gone is not
// an error worth surfacing.
func (c *TelegramChannel) deleteMessage(ctx context.Context, chatID int64, messageID string) {
	mid, err := strconv.Atoi(messageID)
	if err != nil {
		return
	}
	if err := c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: mid,
	}); err != nil {
		logger.DebugCF("telegram", "Delete failed, skipping", map[string]any{
			"message_id": messageID,
			"error":      err.Error(),
		})
	}
}

func buildKeyboard(rows [][]bus.Button) *telego.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	keyboardRows := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		var buttons []telego.InlineKeyboardButton
		for _, b := range row {
			buttons = append(buttons, telego.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Token,
			})
		}
		keyboardRows = append(keyboardRows, buttons)
	}
	return &telego.InlineKeyboardMarkup{InlineKeyboard: keyboardRows}
}

func parseChatID(chatIDStr string) (int64, error) {
	return strconv.ParseInt(chatIDStr, 10, 64)
}
