package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"notes-agent/internal/domain"
)

// Tool names offered to the action agent.
const (
	ToolCreateNote   = "create_note"
	ToolRetrieveNote = "retrieve_note"
	ToolListNotes    = "list_notes"
)

type toolFunc func(ctx context.Context, store NoteStore, args json.RawMessage) (domain.Response, error)

type tool struct {
	def    domain.ToolDef
	schema *gojsonschema.Schema
	run    toolFunc
}

// ToolRegistry holds the note tools and runs a call after checking its
// arguments against the tool's parameter schema.
type ToolRegistry struct {
	store NoteStore
	tools map[string]*tool
}

type createArgs struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type retrieveArgs struct {
	Title string `json:"title"`
}

func NewToolRegistry(store NoteStore) (*ToolRegistry, error) {
	if store == nil {
		return nil, errors.New("usecase: note store must not be nil")
	}
	r := &ToolRegistry{store: store, tools: map[string]*tool{}}
	for _, t := range []struct {
		def domain.ToolDef
		run toolFunc
	}{
		{
			def: domain.ToolDef{
				Name:        ToolCreateNote,
				Description: "Create a new note. An existing title is left untouched.",
				Parameters: json.RawMessage(fmt.Sprintf(`{
					"type": "object",
					"additionalProperties": false,
					"properties": {
						"title": {"type": "string", "minLength": 1, "maxLength": %d},
						"text": {"type": "string", "minLength": 1}
					},
					"required": ["title", "text"]
				}`, domain.MaxTitleLength)),
			},
			run: runCreateNote,
		},
		{
			def: domain.ToolDef{
				Name:        ToolRetrieveNote,
				Description: "Fetch the note with exactly this title.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"additionalProperties": false,
					"properties": {
						"title": {"type": "string"}
					},
					"required": ["title"]
				}`),
			},
			run: runRetrieveNote,
		},
		{
			def: domain.ToolDef{
				Name:        ToolListNotes,
				Description: "List the titles of all notes in ascending order.",
				Parameters:  json.RawMessage(`{"type": "object", "additionalProperties": false, "properties": {}}`),
			},
			run: runListNotes,
		},
	} {
		if err := r.register(t.def, t.run); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *ToolRegistry) register(def domain.ToolDef, run toolFunc) error {
	schema, err := compileSchema(def.Parameters)
	if err != nil {
		return fmt.Errorf("usecase: register %s: %w", def.Name, err)
	}
	r.tools[def.Name] = &tool{def: def, schema: schema, run: run}
	return nil
}

// Definition returns the declaration of a registered tool.
func (r *ToolRegistry) Definition(name string) (domain.ToolDef, bool) {
	t, ok := r.tools[name]
	if !ok {
		return domain.ToolDef{}, false
	}
	return t.def, true
}

func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke validates call.Arguments and runs the named tool once.
func (r *ToolRegistry) Invoke(ctx context.Context, call domain.ToolCall) (domain.Response, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return domain.Response{}, newError(ErrorUpstream, ReasonAgentError, fmt.Errorf("unknown tool %q", call.Name))
	}
	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := validateDocument(t.schema, args); err != nil {
		return domain.Response{}, newError(ErrorUpstream, ReasonToolArgumentsInvalid, fmt.Errorf("%s: %w", call.Name, err))
	}
	return t.run(ctx, r.store, args)
}

func runCreateNote(ctx context.Context, store NoteStore, raw json.RawMessage) (domain.Response, error) {
	var args createArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return domain.Response{}, newError(ErrorUpstream, ReasonToolArgumentsInvalid, err)
	}
	inserted, err := store.InsertIfAbsent(ctx, args.Title, args.Text)
	if err != nil {
		return domain.Response{}, newError(ErrorInternal, ReasonStoreInsertError, err)
	}
	if !inserted {
		return domain.Response{Message: domain.MessageCreateFailed}, nil
	}
	return domain.Response{Message: domain.MessageCreated}, nil
}

func runRetrieveNote(ctx context.Context, store NoteStore, raw json.RawMessage) (domain.Response, error) {
	var args retrieveArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return domain.Response{}, newError(ErrorUpstream, ReasonToolArgumentsInvalid, err)
	}
	// No stored note can have such a title.
	if args.Title == "" || utf8.RuneCountInString(args.Title) > domain.MaxTitleLength {
		return domain.Response{Message: domain.MessageGetFailed}, nil
	}
	note, err := store.FetchByTitle(ctx, args.Title)
	if err != nil {
		return domain.Response{}, newError(ErrorInternal, ReasonStoreFetchError, err)
	}
	if note == nil {
		return domain.Response{Message: domain.MessageGetFailed}, nil
	}
	return domain.Response{Message: domain.MessageGetSuccess, Note: note}, nil
}

func runListNotes(ctx context.Context, store NoteStore, _ json.RawMessage) (domain.Response, error) {
	titles, err := store.ListTitles(ctx)
	if err != nil {
		return domain.Response{}, newError(ErrorInternal, ReasonStoreListError, err)
	}
	if titles == nil {
		titles = []string{}
	}
	return domain.Response{Message: domain.MessageListSuccess, Titles: titles}, nil
}
