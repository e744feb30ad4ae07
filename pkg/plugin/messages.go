package plugin

import (
	"fmt"

	"golang.org/x/text/language"
)

// Message keys. English is the fallback for any language without a
// catalog and for any key missing from a catalog.
const (
	MsgAuth              = "Auth"
	MsgAuthInvalid       = "AuthInvalid"
	MsgAuthIncorrect     = "AuthIncorrect"
	MsgAuthTimeout       = "AuthTimeout"
	MsgAuthFailure       = "AuthFailure"
	MsgAuthSuccess       = "AuthSuccess"
	MsgAuthRegistered    = "AuthRegistered"
	MsgAuthWhitelisted   = "AuthWhitelisted"
	MsgAuthChatForbidden = "AuthChatForbidden"
	MsgSkinDisabled      = "SkinDisabled"
	MsgSkinNotFullHealth = "SkinNotFullHealth"
	MsgSkinNoVariants    = "SkinNoVariants"
)

var supportedLangs = []language.Tag{
	language.English, // index 0 is the fallback
	language.Korean,
}

var messageCatalogs = map[language.Tag]map[string]string{
	language.English: {
		MsgAuth:              "This server requires a password. Use /auth <password> within %d seconds.",
		MsgAuthInvalid:       "Usage: /auth <password>",
		MsgAuthIncorrect:     "Incorrect password. %d attempts remaining.",
		MsgAuthTimeout:       "Authentication timed out.",
		MsgAuthFailure:       "Too many failed authentication attempts.",
		MsgAuthSuccess:       "Authentication successful. Welcome!",
		MsgAuthRegistered:    "Authentication successful. You have been registered and will not be asked again.",
		MsgAuthWhitelisted:   "Welcome back!",
		MsgAuthChatForbidden: "You must authenticate before chatting. Use /auth <password>.",
		MsgSkinDisabled:      "The skin browser is disabled on this server.",
		MsgSkinNotFullHealth: "That object must be at full health to reskin.",
		MsgSkinNoVariants:    "No skin variants are available for %s.",
	},
	language.Korean: {
		MsgAuth:              "이 서버는 비밀번호가 필요합니다. %d초 안에 /auth <비밀번호>를 입력하세요.",
		MsgAuthInvalid:       "사용법: /auth <비밀번호>",
		MsgAuthIncorrect:     "비밀번호가 틀렸습니다. 남은 시도 횟수: %d",
		MsgAuthTimeout:       "인증 시간이 초과되었습니다.",
		MsgAuthFailure:       "인증 실패가 너무 많습니다.",
		MsgAuthSuccess:       "인증되었습니다. 환영합니다!",
		MsgAuthRegistered:    "인증되었습니다. 등록되어 다시 묻지 않습니다.",
		MsgAuthWhitelisted:   "다시 오신 것을 환영합니다!",
		MsgAuthChatForbidden: "채팅하려면 먼저 인증해야 합니다. /auth <비밀번호>를 사용하세요.",
		MsgSkinDisabled:      "이 서버에서는 스킨 브라우저가 비활성화되어 있습니다.",
		MsgSkinNotFullHealth: "스킨을 변경하려면 개체가 최대 내구도여야 합니다.",
		MsgSkinNoVariants:    "%s에 사용할 수 있는 스킨이 없습니다.",
	},
}

// Messages resolves localized message text by user language, falling
// back to English.
type Messages struct {
	matcher language.Matcher
}

func NewMessages() *Messages {
	return &Messages{matcher: language.NewMatcher(supportedLangs)}
}

// Get formats the message for key in the closest supported language to
// lang ("en", "ko", "ko-KR", ...). Unknown keys return the key itself so
// a missing entry is visible rather than silent.
func (m *Messages) Get(lang, key string, args ...any) string {
	_, idx, _ := m.matcher.Match(language.Make(lang))
	text, ok := messageCatalogs[supportedLangs[idx]][key]
	if !ok {
		text, ok = messageCatalogs[language.English][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
