package gateway

import (
	"errors"
	"fmt"

	"viewswap/internal/entity"
	"viewswap/internal/usecase"
	"viewswap/pkg/telegram"
)

const (
	msgWelcome = "Welcome to ViewSwap! Upload your videos with /upload, then earn views " +
		"for them by watching other members' videos with /gettask. Read /rules first."
	msgRules = "The rules are simple:\n" +
		"1. Watch the assigned video to the end and leave a like.\n" +
		"2. Send a screenshot as proof with /submitproof within 4 hours.\n" +
		"3. Review proofs on your own videos honestly with /review.\n" +
		"4. A rejected proof earns a strike. Four strikes and you are banned from new tasks.\n" +
		"5. Pause any time with /pause (unless someone is waiting for your review)."
	msgHelp = "Commands:\n" +
		"/upload - add a video (up to 5 active)\n" +
		"/remove - take one of your videos down\n" +
		"/gettask - get a video to watch\n" +
		"/submitproof - send the screenshot for your current task\n" +
		"/review - verify proofs submitted for your videos\n" +
		"/status - your videos, strikes and state\n" +
		"/pause and /resume - opt out and back in\n" +
		"/rules - how this works"
	msgCancelled      = "Cancelled."
	msgIdleHint       = "I did not get that. See /help for the available commands."
	msgUnknownCommand = "Unknown command. See /help."
	msgTooFast        = "Slow down a little and try again in a few seconds."
	msgInternalError  = "Something went wrong on our side. Please try again."

	msgAskTitleFmt       = "What is the video's title? (up to %d characters)"
	msgBadTitleFmt       = "The title must be 1-%d characters. Try again."
	msgAskThumbnail      = "Now send the thumbnail as a photo."
	msgNeedPhoto         = "Please send a photo."
	msgAskDurationFmt    = "How long is the video in seconds? (1-%d)"
	msgBadDurationFmt    = "Send a whole number of seconds between 1 and %d."
	msgAskLink           = "Finally, send the video link, or \"-\" to skip."
	msgVideoUploadedFmt  = "\"%s\" is live. Members will start receiving it as a task."
	msgVideoLimitFmt     = "You already have %d active videos. Remove one with /remove first."
	msgNoVideos          = "You have no active videos. Add one with /upload."
	msgPickVideoToRemove = "Which video do you want to remove?"
	msgVideoRemoved      = "The video was removed and will no longer be assigned."

	msgPaused  = "You are paused. You will not receive tasks and your videos will not be assigned. /resume to rejoin."
	msgResumed = "Welcome back! You are active again."

	msgTaskCaptionFmt = "Your task: watch \"%s\" (%d seconds), like it, and send a screenshot with /submitproof."
	msgTaskAccepted   = "Great! Watch the video, then send your screenshot with /submitproof. You have 4 hours."
	msgTaskSkipped    = "Task skipped. Use /gettask when you are ready for another."
	msgNoOpenTask     = "You have no task in progress. Get one with /gettask."
	msgAskProofFmt    = "Send the screenshot proving you watched \"%s\"."
	msgNeedProofFile  = "Please send the screenshot as a photo or file."
	msgProofSubmitted = "Proof received! The video's owner will review it."

	msgNothingToReview  = "No proofs are waiting for your review."
	msgReviewCaptionFmt = "Proof submitted for \"%s\". Did the viewer complete the task?"
	msgReviewAccepted   = "Proof accepted. Thank you for reviewing!"
	msgReviewRejected   = "Proof rejected. The viewer received a strike."

	msgStrikesFmt   = "You have %d strikes."
	msgBannedStatus = "You are banned from new tasks. Contact an admin about your strikes.\n"
)

// guidanceFor turns a use case refusal into the message shown to the member.
func guidanceFor(err error) string {
	switch {
	case errors.Is(err, usecase.ErrPaused):
		return "You are paused. /resume first to receive tasks."
	case errors.Is(err, usecase.ErrBanned):
		return "You are banned from new tasks because of strikes. Contact an admin."
	case errors.Is(err, usecase.ErrMustReviewFirst):
		return "A proof on one of your videos is waiting. Review it with /review before taking a new task."
	case errors.Is(err, usecase.ErrTaskInFlight):
		return "You already have a task in progress. Finish it with /submitproof, or skip it first."
	case errors.Is(err, usecase.ErrNoCandidates):
		return "No videos are available right now. Try again later."
	case errors.Is(err, usecase.ErrReviewInProgress):
		return "You cannot pause while a proof on your video is awaiting your review. Handle it with /review first."
	case errors.Is(err, entity.ErrCapacityExceeded):
		return fmt.Sprintf("You already have %d active videos. Remove one with /remove first.", entity.MaxActiveVideos)
	case errors.Is(err, entity.ErrUnauthorized):
		return "That is not yours to act on."
	case errors.Is(err, entity.ErrInvalidState):
		return "That is no longer possible; the task or video has moved on."
	case errors.Is(err, entity.ErrNotFound):
		return "Not found. It may have been removed already."
	default:
		return msgInternalError
	}
}

func mainMenuKeyboard() telegram.ReplyKeyboardMarkup {
	return telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: "/gettask"}, {Text: "/submitproof"}},
			{{Text: "/upload"}, {Text: "/review"}},
			{{Text: "/status"}, {Text: "/help"}},
		},
		ResizeKeyboard: true,
	}
}

func acceptTaskKeyboard(taskID string) telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Accept", CallbackData: fmt.Sprintf("%s%s_yes", callbackAccept, taskID)},
			{Text: "Skip", CallbackData: fmt.Sprintf("%s%s_no", callbackAccept, taskID)},
		}},
	}
}

func verifyKeyboard(taskID string) telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Looks good", CallbackData: fmt.Sprintf("%s%s_ok", callbackVerify, taskID)},
			{Text: "Reject", CallbackData: fmt.Sprintf("%s%s_fail", callbackVerify, taskID)},
		}},
	}
}

func keyRateLimit(chatID int64) string {
	return fmt.Sprintf("ratelimit:chat:%d", chatID)
}
