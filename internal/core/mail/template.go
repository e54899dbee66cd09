package mail

import (
	"strings"
	"text/template"
)

const APIKeySubject = "Bookmarks API: Api key"

var apiKeyTpl = template.Must(template.New("api-key").Parse(`Hello {{.Name}},

Here is your Bookmarks API key:

{{.APIKey}}

Send it with every request as a bearer token:

    Authorization: Bearer {{.APIKey}}

Keep it secret. Requesting a new key revokes this one immediately.
`))

// APIKeyMessage 渲染 API key 邮件
func APIKeyMessage(to, name, apiKey string) (Message, error) {
	var b strings.Builder
	err := apiKeyTpl.Execute(&b, struct{ Name, APIKey string }{name, apiKey})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Name: name, Subject: APIKeySubject, Body: b.String()}, nil
}
