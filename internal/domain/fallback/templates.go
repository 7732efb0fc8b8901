package fallback

import (
	"fmt"
	"strings"

	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/text"
)

var translationFamilies = map[string]string{
	"zu":  "[isiZulu/isiXhosa preview]",
	"xh":  "[isiZulu/isiXhosa preview]",
	"ss":  "[isiZulu/isiXhosa preview]",
	"st":  "[Sesotho/Setswana preview]",
	"tn":  "[Sesotho/Setswana preview]",
	"nso": "[Sesotho/Setswana preview]",
	"af":  "[Afrikaans preview]",
	"sw":  "[Kiswahili preview]",
	"fr":  "[French preview]",
	"pt":  "[Portuguese preview]",
}

// TemplateTranslation tags s with a per-family prefix. It is a placeholder,
// not a translation: the original text is carried through unchanged.
func TemplateTranslation(s, targetLanguage string) string {
	lang := strings.ToLower(strings.TrimSpace(targetLanguage))
	prefix, ok := translationFamilies[lang]
	if !ok {
		prefix = fmt.Sprintf("[Translation preview: %s]", lang)
	}
	return prefix + " " + s
}

// CheckinFollowUps are asked after every non-urgent reply.
var CheckinFollowUps = []string{
	"What has been on your mind the most today?",
	"What is one small thing that could help you feel a little better?",
}

// DefaultMood is used when the caller did not state one.
const DefaultMood = "unsure"

// Mood returns a display form of the caller's mood.
func Mood(mood string) string {
	m := strings.ToLower(text.Collapse(mood))
	if m == "" {
		return DefaultMood
	}
	return m
}

// TemplateCheckin is the supportive reply used when generation is unavailable.
func TemplateCheckin(mood string) model.CheckinResult {
	return model.CheckinResult{
		Urgent: false,
		Response: fmt.Sprintf("Thank you for checking in. It sounds like you are feeling %s right now, and that is okay. "+
			"Take a slow breath and be gentle with yourself; campus support services are here whenever you want to talk.", Mood(mood)),
		FollowUps:    followUps(),
		Model:        ModelTemplateCheckin,
		UsedFallback: true,
	}
}

// EmptyCheckin asks for more detail when the message is blank.
func EmptyCheckin() model.CheckinResult {
	return model.CheckinResult{
		Urgent:       false,
		Response:     "I'm here to listen. Could you share a little more about how you are feeling today?",
		FollowUps:    followUps(),
		Model:        model.ModelEmptyInput,
		UsedFallback: true,
	}
}

func followUps() []string {
	return append([]string(nil), CheckinFollowUps...)
}
