// Package announce writes the copy of every message the bot posts.
package announce

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/api/gemini"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

const persona = "You are TaskmasterGPT, the witty announcer of an Old School RuneScape clan on Discord."

//go:embed templates.toml
var templatesFile string

var errMalformed = errors.New("malformed generated content")

type Writer interface {
	// Write never fails. If the generated copy is unavailable, the static
	// template of the event type is rendered instead.
	Write(ctx context.Context, eventType EventType, details any) model.Announcement
}

type templateSpec struct {
	Prompt      string `toml:"prompt"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Color       int    `toml:"color"`
}

type fallback struct {
	spec        templateSpec
	title       *template.Template
	description *template.Template
}

type generatedContent struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Color       int    `mapstructure:"color"`
}

type writer struct {
	generator gemini.IEndpoint
	fallbacks map[EventType]fallback
}

// NewWriter parses the embedded fallback templates. generator may be nil, the
// writer then only uses the templates.
func NewWriter(generator gemini.IEndpoint) (*writer, error) {
	specs := map[string]templateSpec{}
	if _, err := toml.Decode(templatesFile, &specs); err != nil {
		return nil, err
	}

	fallbacks := map[EventType]fallback{}
	for name, spec := range specs {
		title, err := template.New(name + ".title").Parse(spec.Title)
		if err != nil {
			return nil, err
		}

		description, err := template.New(name + ".description").Parse(spec.Description)
		if err != nil {
			return nil, err
		}

		fallbacks[EventType(name)] = fallback{spec: spec, title: title, description: description}
	}

	return &writer{generator: generator, fallbacks: fallbacks}, nil
}

func (w *writer) Write(ctx context.Context, eventType EventType, details any) model.Announcement {
	data := toMap(details)

	fb, ok := w.fallbacks[eventType]
	if !ok {
		xcontext.Logger(ctx).Errorf("No template for event type %s", eventType)
		return model.Announcement{Title: string(eventType)}
	}

	if fb.spec.Prompt != "" && w.generator != nil {
		content, err := w.generate(ctx, fb.spec.Prompt, data)
		if err == nil {
			if content.Color == 0 {
				content.Color = fb.spec.Color
			}

			return model.Announcement{
				Title:       content.Title,
				Description: content.Description,
				Color:       content.Color,
			}
		}

		if !errors.Is(err, gemini.ErrDisabled) {
			xcontext.Logger(ctx).Warnf("Cannot generate %s copy, use the template: %v", eventType, err)
		}
	}

	return model.Announcement{
		Title:       execute(ctx, fb.title, data),
		Description: execute(ctx, fb.description, data),
		Color:       fb.spec.Color,
	}
}

func (w *writer) generate(ctx context.Context, instruction string, data map[string]any) (generatedContent, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return generatedContent{}, err
	}

	prompt := fmt.Sprintf(
		"%s %s\nDetails (JSON): %s\n"+
			"Respond only with a JSON object with the keys \"title\", \"description\" and \"color\" "+
			"(a decimal integer). Keep the description under 1000 characters.",
		persona, instruction, string(b),
	)

	text, err := w.generator.GenerateText(ctx, prompt)
	if err != nil {
		return generatedContent{}, err
	}

	return parseGenerated(text)
}

func parseGenerated(text string) (generatedContent, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return generatedContent{}, errors.Join(errMalformed, err)
	}

	var content generatedContent
	if err := mapstructure.Decode(raw, &content); err != nil {
		return generatedContent{}, errors.Join(errMalformed, err)
	}

	if strings.TrimSpace(content.Title) == "" || strings.TrimSpace(content.Description) == "" {
		return generatedContent{}, errMalformed
	}

	return content, nil
}

func toMap(details any) map[string]any {
	switch t := details.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return t
	default:
		if structs.IsStruct(details) {
			return structs.Map(details)
		}

		return map[string]any{"value": details}
	}
}

func execute(ctx context.Context, tmpl *template.Template, data map[string]any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot render template %s: %v", tmpl.Name(), err)
		return ""
	}

	return buf.String()
}
