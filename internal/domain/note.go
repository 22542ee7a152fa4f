package domain

import "strings"

// MaxTitleLength bounds note titles; mirrors the VARCHAR(200) column.
const MaxTitleLength = 200

// Status messages carried by Response.Message.
const (
	MessageCreated       = "CREATED:SUCCESS"
	MessageCreateFailed  = "CREATED:FAILED"
	MessageGetSuccess    = "GET:SUCCESS"
	MessageGetFailed     = "GET:FAILED"
	MessageListSuccess   = "LIST:SUCCESS"
	MessageNotRecognized = "Action not recognized."
)

// Action is the operation a user asked for. Values outside the three known
// actions are kept verbatim and treated as unrecognized.
type Action string

const (
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionList     Action = "list"
)

// ParseAction normalizes a raw action value.
func ParseAction(raw string) Action {
	return Action(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether a is one of create, retrieve or list.
func (a Action) Known() bool {
	switch a {
	case ActionCreate, ActionRetrieve, ActionList:
		return true
	}
	return false
}

// Note is a persisted note keyed by its unique title.
type Note struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

// Intent is the structured reading of one user instruction.
type Intent struct {
	Action Action `json:"action" yaml:"action"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Response is the outcome of one executed intent. At most one of Note and
// Titles is set; Titles may be set and empty.
type Response struct {
	Message string   `json:"message" yaml:"message"`
	Note    *Note    `json:"note" yaml:"note,omitempty"`
	Titles  []string `json:"titles" yaml:"titles,omitempty"`
}
