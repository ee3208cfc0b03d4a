package respond

import (
	"regexp"
)

var (
	// Notion のインテグレーショントークン (旧形式 secret_ と新形式 ntn_)
	notionTokenPattern = regexp.MustCompile(`\b(secret|ntn)_[A-Za-z0-9]{16,}`)

	// OMDB の apikey クエリパラメータ
	apiKeyParamPattern = regexp.MustCompile(`(?i)(api_?key=)[^&\s"]+`)

	// Authorization ヘッダーの値 (TMDB の v4 トークン、JWT)
	bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-._~+/]+=*`)

	// Discord webhook URL のトークン部分
	webhookTokenPattern = regexp.MustCompile(`(/api/webhooks/\d+/)[A-Za-z0-9_\-]+`)

	// URL に埋め込まれた認証情報
	userinfoPattern = regexp.MustCompile(`://([^:/\s]+):([^@/\s]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks upstream credentials in msg.
func SanitizeString(msg string) string {
	msg = notionTokenPattern.ReplaceAllString(msg, "${1}_****")
	msg = apiKeyParamPattern.ReplaceAllString(msg, "${1}****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	msg = webhookTokenPattern.ReplaceAllString(msg, "${1}****")
	msg = userinfoPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
