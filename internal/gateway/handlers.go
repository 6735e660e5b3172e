package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"viewswap/internal/entity"
	"viewswap/pkg/telegram"
)

func (g *Gateway) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.Chat == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	chatID := msg.Chat.ID

	if !g.allowMessage(ctx, chatID) {
		g.reply(ctx, chatID, msgTooFast)
		return
	}

	user, created, err := g.users.Register(msg.From.ID, msg.From.Username)
	if err != nil {
		g.logger.Error("Failed to register telegram user %d: %v", msg.From.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	if created {
		g.logger.Info("Registered new user %s (telegram %d)", user.ID, msg.From.ID)
	}

	if strings.HasPrefix(msg.Text, "/") {
		g.handleCommand(ctx, chatID, user, msg)
		return
	}
	g.handleDialogue(ctx, chatID, user, msg)
}

func (g *Gateway) handleCommand(ctx context.Context, chatID int64, user *entity.User, msg *telegram.Message) {
	fields := strings.Fields(msg.Text)
	command := strings.ToLower(fields[0])
	// Telegram appends "@botname" to commands sent in groups
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}
	args := fields[1:]

	// Any command abandons a dialogue in progress
	g.sessions.Reset(chatID)

	switch command {
	case "/start":
		g.replyMarkup(ctx, chatID, msgWelcome, mainMenuKeyboard())
	case "/rules":
		g.reply(ctx, chatID, msgRules)
	case "/help", "/menu":
		g.replyMarkup(ctx, chatID, msgHelp, mainMenuKeyboard())
	case "/cancel":
		g.reply(ctx, chatID, msgCancelled)
	case "/upload":
		g.startUpload(ctx, chatID, user)
	case "/remove":
		g.listRemovableVideos(ctx, chatID, user)
	case "/pause":
		g.pauseUser(ctx, chatID, user)
	case "/resume":
		g.resumeUser(ctx, chatID, user)
	case "/gettask":
		g.assignTask(ctx, chatID, user)
	case "/submitproof":
		g.startProofSubmission(ctx, chatID, user)
	case "/review":
		g.showReview(ctx, chatID, user)
	case "/status":
		g.showStatus(ctx, chatID, user)
	case "/strikes":
		g.reply(ctx, chatID, fmt.Sprintf(msgStrikesFmt, user.Strikes))
	case "/adminpanel":
		g.showAdminPanel(ctx, chatID, user)
	case "/strike":
		g.adminStrike(ctx, chatID, user, args)
	default:
		g.reply(ctx, chatID, msgUnknownCommand)
	}
}

func (g *Gateway) handleDialogue(ctx context.Context, chatID int64, user *entity.User, msg *telegram.Message) {
	session := g.sessions.Get(chatID)

	switch session.State {
	case StateUploadTitle:
		g.dialogueTitle(ctx, chatID, msg)
	case StateUploadThumbnail:
		g.dialogueThumbnail(ctx, chatID, msg)
	case StateUploadDuration:
		g.dialogueDuration(ctx, chatID, msg)
	case StateUploadLink:
		g.dialogueLink(ctx, chatID, user, msg)
	case StateAwaitProof:
		g.dialogueProof(ctx, chatID, user, msg)
	default:
		g.reply(ctx, chatID, msgIdleHint)
	}
}

// Upload dialogue

func (g *Gateway) startUpload(ctx context.Context, chatID int64, user *entity.User) {
	count, err := g.videos.CountActive(user.ID)
	if err != nil {
		g.logger.Error("Failed to count videos for user %s: %v", user.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	if count >= int64(entity.MaxActiveVideos) {
		g.reply(ctx, chatID, fmt.Sprintf(msgVideoLimitFmt, entity.MaxActiveVideos))
		return
	}

	g.sessions.SetState(chatID, StateUploadTitle)
	g.reply(ctx, chatID, fmt.Sprintf(msgAskTitleFmt, entity.MaxTitleLength))
}

func (g *Gateway) dialogueTitle(ctx context.Context, chatID int64, msg *telegram.Message) {
	title := strings.TrimSpace(msg.Text)
	if title == "" || len(title) > entity.MaxTitleLength {
		g.reply(ctx, chatID, fmt.Sprintf(msgBadTitleFmt, entity.MaxTitleLength))
		return
	}

	g.sessions.UpdateDraft(chatID, func(d *VideoDraft) { d.Title = title })
	g.sessions.SetState(chatID, StateUploadThumbnail)
	g.reply(ctx, chatID, msgAskThumbnail)
}

func (g *Gateway) dialogueThumbnail(ctx context.Context, chatID int64, msg *telegram.Message) {
	fileID := largestPhotoID(msg.Photo)
	if fileID == "" {
		g.reply(ctx, chatID, msgNeedPhoto)
		return
	}

	g.sessions.UpdateDraft(chatID, func(d *VideoDraft) { d.ThumbnailFileID = fileID })
	g.sessions.SetState(chatID, StateUploadDuration)
	g.reply(ctx, chatID, fmt.Sprintf(msgAskDurationFmt, entity.MaxDurationSecs))
}

func (g *Gateway) dialogueDuration(ctx context.Context, chatID int64, msg *telegram.Message) {
	duration, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || duration < 1 || duration > entity.MaxDurationSecs {
		g.reply(ctx, chatID, fmt.Sprintf(msgBadDurationFmt, entity.MaxDurationSecs))
		return
	}

	g.sessions.UpdateDraft(chatID, func(d *VideoDraft) { d.Duration = duration })
	g.sessions.SetState(chatID, StateUploadLink)
	g.reply(ctx, chatID, msgAskLink)
}

func (g *Gateway) dialogueLink(ctx context.Context, chatID int64, user *entity.User, msg *telegram.Message) {
	link := strings.TrimSpace(msg.Text)
	if link == "-" {
		link = ""
	}

	draft := g.sessions.Get(chatID).Draft
	video, err := g.videos.Upload(user.ID, draft.Title, draft.ThumbnailFileID, draft.Duration, link)
	g.sessions.Reset(chatID)
	if err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return
	}
	g.reply(ctx, chatID, fmt.Sprintf(msgVideoUploadedFmt, video.Title))
}

// Removal

func (g *Gateway) listRemovableVideos(ctx context.Context, chatID int64, user *entity.User) {
	videos, err := g.videos.ListActive(user.ID)
	if err != nil {
		g.logger.Error("Failed to list videos for user %s: %v", user.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	if len(videos) == 0 {
		g.reply(ctx, chatID, msgNoVideos)
		return
	}

	rows := make([][]telegram.InlineKeyboardButton, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         v.Title,
			CallbackData: callbackRemove + v.ID,
		}})
	}
	g.replyMarkup(ctx, chatID, msgPickVideoToRemove, telegram.InlineKeyboardMarkup{InlineKeyboard: rows})
}

// Pause / resume

func (g *Gateway) pauseUser(ctx context.Context, chatID int64, user *entity.User) {
	if err := g.users.Pause(user.ID); err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return
	}
	g.reply(ctx, chatID, msgPaused)
}

func (g *Gateway) resumeUser(ctx context.Context, chatID int64, user *entity.User) {
	if err := g.users.Resume(user.ID); err != nil {
		g.logger.Error("Failed to resume user %s: %v", user.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	g.reply(ctx, chatID, msgResumed)
}

// Task flow

func (g *Gateway) assignTask(ctx context.Context, chatID int64, user *entity.User) {
	task, video, err := g.tasks.RequestTask(user.ID)
	if err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return
	}

	caption := fmt.Sprintf(msgTaskCaptionFmt, video.Title, video.Duration)
	if video.Link != "" {
		caption += "\n" + video.Link
	}
	err = g.api.SendPhoto(ctx, telegram.SendPhotoRequest{
		ChatID:      chatID,
		Photo:       video.ThumbnailFileID,
		Caption:     caption,
		ReplyMarkup: acceptTaskKeyboard(task.ID),
	})
	if err != nil {
		g.logger.Error("Failed to send task %s to chat %d: %v", task.ID, chatID, err)
	}
}

func (g *Gateway) startProofSubmission(ctx context.Context, chatID int64, user *entity.User) {
	task, video, err := g.tasks.OpenTaskFor(user.ID)
	if err != nil {
		g.logger.Error("Failed to look up open task for user %s: %v", user.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	if task == nil {
		g.reply(ctx, chatID, msgNoOpenTask)
		return
	}

	g.sessions.SetState(chatID, StateAwaitProof)
	g.reply(ctx, chatID, fmt.Sprintf(msgAskProofFmt, video.Title))
}

func (g *Gateway) dialogueProof(ctx context.Context, chatID int64, user *entity.User, msg *telegram.Message) {
	fileID := largestPhotoID(msg.Photo)
	if fileID == "" && msg.Document != nil {
		fileID = msg.Document.FileID
	}
	if fileID == "" {
		g.reply(ctx, chatID, msgNeedProofFile)
		return
	}

	_, err := g.tasks.SubmitProof(user.ID, fileID)
	g.sessions.Reset(chatID)
	if err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return
	}
	g.reply(ctx, chatID, msgProofSubmitted)
}

// Review flow

func (g *Gateway) showReview(ctx context.Context, chatID int64, user *entity.User) {
	task, video, err := g.tasks.TaskForReview(user.ID)
	if err != nil {
		g.logger.Error("Failed to look up review for user %s: %v", user.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	if task == nil {
		g.reply(ctx, chatID, msgNothingToReview)
		return
	}

	err = g.api.SendPhoto(ctx, telegram.SendPhotoRequest{
		ChatID:      chatID,
		Photo:       task.ProofFileID,
		Caption:     fmt.Sprintf(msgReviewCaptionFmt, video.Title),
		ReplyMarkup: verifyKeyboard(task.ID),
	})
	if err != nil {
		g.logger.Error("Failed to send review for task %s to chat %d: %v", task.ID, chatID, err)
	}
}

// Status

func (g *Gateway) showStatus(ctx context.Context, chatID int64, user *entity.User) {
	status, err := g.users.Status(user.ID)
	if err != nil {
		g.logger.Error("Failed to load status for user %s: %v", user.ID, err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active videos: %d of %d\n", status.ActiveVideos, entity.MaxActiveVideos)
	for _, v := range status.Videos {
		fmt.Fprintf(&b, "  - %s: %d completed views\n", v.Video.Title, v.CompletedViews)
	}
	fmt.Fprintf(&b, "Strikes: %d\n", status.User.Strikes)
	if status.User.Paused {
		b.WriteString("Participation: paused (/resume to rejoin)\n")
	} else {
		b.WriteString("Participation: active\n")
	}
	if g.enforcement.IsBanned(status.User) {
		b.WriteString(msgBannedStatus)
	}
	g.reply(ctx, chatID, b.String())
}

// Admin

func (g *Gateway) showAdminPanel(ctx context.Context, chatID int64, user *entity.User) {
	if !g.isAdmin(user.TelegramID) {
		g.reply(ctx, chatID, msgUnknownCommand)
		return
	}

	strikable, err := g.enforcement.ListStrikable(1)
	if err != nil {
		g.logger.Error("Failed to list strikable users: %v", err)
		g.reply(ctx, chatID, msgInternalError)
		return
	}
	if len(strikable) == 0 {
		g.reply(ctx, chatID, "No users with strikes.")
		return
	}

	var b strings.Builder
	b.WriteString("Users with strikes:\n")
	for _, u := range strikable {
		fmt.Fprintf(&b, "- %s (telegram %d): %d strikes\n", u.Username, u.TelegramID, u.Strikes)
	}
	b.WriteString("\nUse /strike add <telegram_id> or /strike remove <telegram_id>.")
	g.reply(ctx, chatID, b.String())
}

func (g *Gateway) adminStrike(ctx context.Context, chatID int64, user *entity.User, args []string) {
	if !g.isAdmin(user.TelegramID) {
		g.reply(ctx, chatID, msgUnknownCommand)
		return
	}
	if len(args) != 2 {
		g.reply(ctx, chatID, "Usage: /strike add|remove <telegram_id>")
		return
	}

	telegramID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		g.reply(ctx, chatID, "Usage: /strike add|remove <telegram_id>")
		return
	}
	target, err := g.users.FindByTelegramID(telegramID)
	if err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return
	}

	var strikes int
	switch args[0] {
	case "add":
		strikes, err = g.enforcement.Strike(target.ID)
	case "remove":
		strikes, err = g.enforcement.Unstrike(target.ID)
	default:
		g.reply(ctx, chatID, "Usage: /strike add|remove <telegram_id>")
		return
	}
	if err != nil {
		g.reply(ctx, chatID, guidanceFor(err))
		return
	}
	g.reply(ctx, chatID, fmt.Sprintf("User %d now has %d strikes.", telegramID, strikes))
}

// largestPhotoID picks the highest resolution variant Telegram offers.
func largestPhotoID(photos []telegram.PhotoSize) string {
	best := ""
	bestArea := 0
	for _, p := range photos {
		if area := p.Width * p.Height; area >= bestArea {
			best = p.FileID
			bestArea = area
		}
	}
	return best
}
