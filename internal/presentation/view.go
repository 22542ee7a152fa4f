// Package presentation turns pipeline results into a surface-neutral View
// that the TUI, CLI and HTTP handlers render.
package presentation

import (
	"fmt"
	"strings"

	"notes-agent/internal/domain"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

const (
	NoticeNoNotes    = "No notes available yet."
	MessageEmptyText = "Please enter something."
)

// View is the rendered form of one response: a banner plus optional note
// fields or title list.
type View struct {
	Kind    Kind     `json:"kind" yaml:"kind"`
	Message string   `json:"message" yaml:"message"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Body    string   `json:"body,omitempty" yaml:"body,omitempty"`
	Items   []string `json:"items,omitempty" yaml:"items,omitempty"`
	Notice  string   `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// Render maps a Response onto a View. A note wins over titles.
func Render(resp domain.Response) View {
	switch {
	case resp.Note != nil:
		return View{
			Kind:    KindSuccess,
			Message: resp.Message,
			Title:   resp.Note.Title,
			Body:    resp.Note.Text,
		}
	case resp.Titles != nil:
		v := View{Kind: KindSuccess, Message: resp.Message}
		if len(resp.Titles) == 0 {
			v.Notice = NoticeNoNotes
			return v
		}
		v.Items = append([]string(nil), resp.Titles...)
		return v
	}
	return View{Kind: KindInfo, Message: resp.Message}
}

func RenderError(err error) View {
	return View{Kind: KindError, Message: fmt.Sprintf("Error: %v", err)}
}

// RenderInputError is shown when the user submits blank text.
func RenderInputError() View {
	return View{Kind: KindError, Message: MessageEmptyText}
}

// Text renders v as plain lines for terminals without styling.
func (v View) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", v.Kind, v.Message)
	if v.Title != "" {
		fmt.Fprintf(&b, "\nNote Title: %s\n", v.Title)
		b.WriteString(v.Body)
		b.WriteString("\n")
	}
	if len(v.Items) > 0 {
		b.WriteString("\nCurrent Titles:\n")
		for _, item := range v.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if v.Notice != "" {
		fmt.Fprintf(&b, "%s\n", v.Notice)
	}
	return b.String()
}
