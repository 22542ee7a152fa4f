package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"notes-agent/internal/domain"
)

type intentResponse struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

func buildIntentMessages(text string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: buildIntentPrompt()},
		{Role: "user", Content: text},
	}
}

func buildIntentPrompt() string {
	return strings.Join([]string{
		"Role:",
		"You are an intent extraction assistant for a note manager.",
		"",
		"Task:",
		"Understand what the user wants and extract the relevant data.",
		"",
		"Actions:",
		"- create: add a new note; extract its title and text",
		"- retrieve: show an existing note; extract the title the user refers to",
		"- list: show the titles of all notes",
		"If the request matches none of these, use the action the user asked for verbatim.",
		"",
		"Output Contract:",
		"Return JSON only with keys action, title and text (all strings). " +
			"Use an empty string for a value the user did not give.",
	}, "\n")
}

// buildActionMessages wraps an executor instruction. Existing titles are
// listed so a retrieve can be pointed at the closest real one.
func buildActionMessages(instruction string, candidates []string) []domain.ChatMessage {
	messages := []domain.ChatMessage{
		{Role: "system", Content: buildActionPrompt()},
	}
	if candidates != nil {
		messages = append(messages, domain.ChatMessage{Role: "system", Content: buildCandidatesPrompt(candidates)})
	}
	return append(messages, domain.ChatMessage{Role: "user", Content: instruction})
}

func buildActionPrompt() string {
	return strings.Join([]string{
		"You are an action executor for a note management system.",
		"Perform the requested action by calling the tool you are given exactly once.",
		"For a retrieve, pick the existing title that best matches the one requested; " +
			"if none is close, pass the requested title unchanged.",
		"Copy titles and text from the request without rewording them.",
	}, "\n")
}

func buildCandidatesPrompt(candidates []string) string {
	if len(candidates) == 0 {
		return "Existing note titles: none."
	}
	var b strings.Builder
	b.WriteString("Existing note titles:")
	for _, c := range candidates {
		b.WriteString("\n- ")
		b.WriteString(c)
	}
	return b.String()
}

func createInstruction(title, text string) string {
	return fmt.Sprintf("Create a note named '%s' with the text '%s'.", title, text)
}

func retrieveInstruction(title string) string {
	return fmt.Sprintf("Retrieve the note titled '%s'.", title)
}

func listInstruction() string {
	return "List the titles of all notes."
}

// parseIntent validates raw against the intent schema and decodes it
// strictly. Unknown actions survive as-is.
func parseIntent(raw string) (domain.Intent, error) {
	raw = strings.TrimSpace(raw)
	if err := validateDocument(intentSchema, []byte(raw)); err != nil {
		return domain.Intent{}, fmt.Errorf("usecase: validate intent: %w", err)
	}

	var out intentResponse
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return domain.Intent{}, fmt.Errorf("usecase: decode intent: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return domain.Intent{}, errors.New("usecase: decode intent: multiple JSON values")
		}
		return domain.Intent{}, fmt.Errorf("usecase: decode intent trailing data: %w", err)
	}
	return domain.Intent{
		Action: domain.ParseAction(out.Action),
		Title:  strings.TrimSpace(out.Title),
		Text:   strings.TrimSpace(out.Text),
	}, nil
}
