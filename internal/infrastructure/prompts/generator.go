package prompts

import (
	"bytes"
	"text/template"

	"taskagent/internal/application/service"
)

type actionInfo struct {
	Signature   string
	Description string
}

type systemPromptData struct {
	Actions       []actionInfo
	SensitiveData string
}

// GenerateSystemPrompt renders the system-prompt template with the
// registered actions (in registration order) and the vault's placeholder
// fragment. The fragment contains placeholder names only, never secrets.
func GenerateSystemPrompt(baseTemplate string, actions []service.Action, sensitiveData string) (string, error) {
	infos := make([]actionInfo, 0, len(actions))
	for _, a := range actions {
		infos = append(infos, actionInfo{
			Signature:   a.Signature(),
			Description: a.Description,
		})
	}

	tmpl, err := template.New("system").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, systemPromptData{Actions: infos, SensitiveData: sensitiveData}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
