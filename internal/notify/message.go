package notify

import (
	"fmt"
	"net/url"
	"strings"
)

// EventKind distinguishes feedback from reply notifications.
type EventKind string

const (
	KindFeedback EventKind = "feedback"
	KindReply    EventKind = "reply"
)

// Locale holds the phrases used to build push titles.
type Locale struct {
	Possessive     string
	FeedbackAction string
	ReplyAction    string
}

var locales = map[string]Locale{
	"en": {Possessive: "'s", FeedbackAction: " new feedback", ReplyAction: " new reply"},
	"ko": {Possessive: "님의", FeedbackAction: " 새 피드백", ReplyAction: " 새 답글"},
}

// LocaleFor returns the phrases for tag, falling back to English.
func LocaleFor(tag string) Locale {
	if l, ok := locales[strings.ToLower(tag)]; ok {
		return l
	}
	return locales["en"]
}

// Title renders "<sender><possessive><action>".
func (l Locale) Title(senderName string, kind EventKind) string {
	action := l.FeedbackAction
	if kind == KindReply {
		action = l.ReplyAction
	}
	return senderName + l.Possessive + action
}

// DeepLink builds scheme://video/view?videoId=..&videoTitle=..&videoURL=..
func DeepLink(scheme, videoID, videoTitle, videoURL string) string {
	return fmt.Sprintf("%s://video/view?videoId=%s&videoTitle=%s&videoURL=%s",
		scheme, componentEscape(videoID), componentEscape(videoTitle), componentEscape(videoURL))
}

// componentEscape percent-encodes s for a query value, spaces as %20.
func componentEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
