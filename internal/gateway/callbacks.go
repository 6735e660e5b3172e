package gateway

import (
	"context"
	"strings"

	"viewswap/pkg/telegram"
)

// Callback data prefixes. The task/video id follows the prefix; accept and
// verify carry a trailing decision segment.
const (
	callbackAccept = "accepttask_"
	callbackVerify = "verify_"
	callbackRemove = "removev_"
)

func (g *Gateway) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	user, err := g.users.FindByTelegramID(cb.From.ID)
	if err != nil {
		g.answerCallback(ctx, cb.ID, msgInternalError)
		return
	}

	var answer string
	switch {
	case strings.HasPrefix(cb.Data, callbackAccept):
		answer = g.callbackAcceptTask(ctx, chatID, user.ID, strings.TrimPrefix(cb.Data, callbackAccept))
	case strings.HasPrefix(cb.Data, callbackVerify):
		answer = g.callbackVerify(ctx, chatID, user.ID, strings.TrimPrefix(cb.Data, callbackVerify))
	case strings.HasPrefix(cb.Data, callbackRemove):
		answer = g.callbackRemoveVideo(ctx, chatID, user.ID, strings.TrimPrefix(cb.Data, callbackRemove))
	default:
		answer = msgUnknownCommand
	}
	g.answerCallback(ctx, cb.ID, answer)
}

func (g *Gateway) callbackAcceptTask(ctx context.Context, chatID int64, userID, data string) string {
	taskID, decision, ok := splitDecision(data)
	if !ok {
		return msgUnknownCommand
	}

	if decision == "yes" {
		g.reply(ctx, chatID, msgTaskAccepted)
		return "Good luck!"
	}

	if err := g.tasks.SkipTask(userID, taskID); err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return ""
	}
	g.reply(ctx, chatID, msgTaskSkipped)
	return "Task skipped"
}

func (g *Gateway) callbackVerify(ctx context.Context, chatID int64, userID, data string) string {
	taskID, decision, ok := splitDecision(data)
	if !ok {
		return msgUnknownCommand
	}

	var err error
	switch decision {
	case "ok":
		err = g.tasks.ReviewAccept(userID, taskID)
	case "fail":
		err = g.tasks.ReviewReject(userID, taskID, "")
	default:
		return msgUnknownCommand
	}
	if err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return ""
	}

	if decision == "ok" {
		g.reply(ctx, chatID, msgReviewAccepted)
		return "Accepted"
	}
	g.reply(ctx, chatID, msgReviewRejected)
	return "Rejected"
}

func (g *Gateway) callbackRemoveVideo(ctx context.Context, chatID int64, userID, videoID string) string {
	if err := g.videos.Remove(userID, videoID); err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return ""
	}
	g.reply(ctx, chatID, msgVideoRemoved)
	return "Removed"
}

// splitDecision separates "<id>_<decision>" callback payloads.
func splitDecision(data string) (id, decision string, ok bool) {
	i := strings.LastIndex(data, "_")
	if i <= 0 || i == len(data)-1 {
		return "", "", false
	}
	return data[:i], data[i+1:], true
}

func (g *Gateway) answerCallback(ctx context.Context, callbackID, text string) {
	err := g.api.AnswerCallbackQuery(ctx, telegram.AnswerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		g.logger.Error("Failed to answer callback %s: %v", callbackID, err)
	}
}
