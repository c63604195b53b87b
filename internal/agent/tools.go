package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"slideclaw/internal/deck"
	"slideclaw/internal/design"
	"slideclaw/internal/store"
	"slideclaw/internal/types"
)

// NewToolset builds the registry of presentation tools exposed to the
// model. Tool names, argument shapes, and result shapes are part of the
// prompt contract and must stay stable.
func NewToolset(svc *deck.Service, st *store.Store) *Registry {
	r := NewRegistry()

	r.MustRegister(&Tool{
		Name:        "create_presentation",
		Description: "Create a new presentation",
		Schema: ToolSchema{
			Required: []string{"title"},
			Properties: map[string]Property{
				"title":       {Type: "string", Description: "Title of the presentation"},
				"description": {Type: "string", Description: "Optional description"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			p, err := svc.CreatePresentation(stringArg(args, "title"), stringArg(args, "description"))
			if err != nil {
				return "", err
			}
			return marshalResult(map[string]interface{}{"id": p.ID, "title": p.Title})
		},
	})

	r.MustRegister(&Tool{
		Name:        "add_slide",
		Description: "Add a new slide to a presentation",
		Schema: ToolSchema{
			Required: []string{"presentationId", "title", "html"},
			Properties: map[string]Property{
				"presentationId": {Type: "string", Description: "ID of the presentation"},
				"title":          {Type: "string", Description: "Title of the slide"},
				"html":           {Type: "string", Description: "Complete standalone HTML document for the slide"},
				"notes":          {Type: "string", Description: "Optional speaker notes"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			s, err := svc.AddSlide(stringArg(args, "presentationId"), stringArg(args, "title"),
				stringArg(args, "html"), stringArg(args, "notes"))
			if err != nil {
				return "", err
			}
			return marshalResult(map[string]interface{}{"id": s.ID, "title": s.Title, "order": s.Order})
		},
	})

	r.MustRegister(&Tool{
		Name:        "update_slide",
		Description: "Update an existing slide",
		Schema: ToolSchema{
			Required: []string{"presentationId", "slideId"},
			Properties: map[string]Property{
				"presentationId": {Type: "string", Description: "ID of the presentation"},
				"slideId":        {Type: "string", Description: "ID of the slide to update"},
				"title":          {Type: "string", Description: "New title (optional)"},
				"html":           {Type: "string", Description: "New HTML content (optional)"},
				"notes":          {Type: "string", Description: "New speaker notes (optional)"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			patch := deck.SlidePatch{
				Title: optionalStringArg(args, "title"),
				HTML:  optionalStringArg(args, "html"),
				Notes: optionalStringArg(args, "notes"),
			}
			s, err := svc.UpdateSlide(stringArg(args, "presentationId"), stringArg(args, "slideId"), patch)
			if err != nil {
				return "", err
			}
			return marshalResult(map[string]interface{}{"id": s.ID, "title": s.Title})
		},
	})

	r.MustRegister(&Tool{
		Name:        "delete_slide",
		Description: "Delete a slide from a presentation",
		Schema: ToolSchema{
			Required: []string{"presentationId", "slideId"},
			Properties: map[string]Property{
				"presentationId": {Type: "string", Description: "ID of the presentation"},
				"slideId":        {Type: "string", Description: "ID of the slide to delete"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			if err := svc.DeleteSlide(stringArg(args, "presentationId"), stringArg(args, "slideId")); err != nil {
				return "", err
			}
			return marshalResult(map[string]interface{}{"success": true})
		},
	})

	r.MustRegister(&Tool{
		Name:        "reorder_slides",
		Description: "Reorder slides in a presentation",
		Schema: ToolSchema{
			Required: []string{"presentationId", "slideIds"},
			Properties: map[string]Property{
				"presentationId": {Type: "string", Description: "ID of the presentation"},
				"slideIds": {
					Type:        "array",
					Description: "Array of slide IDs in the new order",
					Items:       &PropertyItems{Type: "string"},
				},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			ids, err := stringSliceArg(args, "slideIds")
			if err != nil {
				return "", err
			}
			if _, err := svc.ReorderSlides(stringArg(args, "presentationId"), ids); err != nil {
				return "", err
			}
			return marshalResult(map[string]interface{}{"success": true})
		},
	})

	r.MustRegister(&Tool{
		Name:        "get_presentation",
		Description: "Get a presentation by ID",
		Schema: ToolSchema{
			Required: []string{"presentationId"},
			Properties: map[string]Property{
				"presentationId": {Type: "string", Description: "ID of the presentation"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			p, err := svc.GetPresentation(stringArg(args, "presentationId"))
			if err != nil {
				return "", err
			}
			return marshalResult(p)
		},
	})

	r.MustRegister(&Tool{
		Name:        "list_presentations",
		Description: "List all presentations",
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			presentations, _, err := svc.ListPresentations()
			if err != nil {
				return "", err
			}
			summaries := make([]types.PresentationSummary, 0, len(presentations))
			for i := range presentations {
				summaries = append(summaries, types.Summarize(&presentations[i]))
			}
			return marshalResult(summaries)
		},
	})

	r.MustRegister(&Tool{
		Name:        "get_design_config",
		Description: "Get the user's preferred CSS library and the full catalog of available libraries with their CDN tags. Call this before generating slides.",
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			cfg, err := st.DesignConfig()
			if err != nil {
				return "", err
			}
			instructions := fmt.Sprintf("Use the %q library. Include its CDN tag in every slide's <head>.", cfg.Library)
			if cfg.Library == types.DesignLibraryAuto {
				instructions = "Choose the most appropriate library for the slide content and design."
			}
			return marshalResult(map[string]interface{}{
				"currentLibrary":     cfg.Library,
				"instructions":       instructions,
				"availableLibraries": design.Catalog,
			})
		},
	})

	r.MustRegister(&Tool{
		Name:        "finish",
		Description: "Signal that the task is complete",
		Schema: ToolSchema{
			Required: []string{"presentationId"},
			Properties: map[string]Property{
				"presentationId": {Type: "string", Description: "ID of the final presentation"},
				"message":        {Type: "string", Description: "Summary of what was done"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return marshalResult(map[string]interface{}{
				"done":           true,
				"presentationId": stringArg(args, "presentationId"),
				"message":        stringArg(args, "message"),
			})
		},
	})

	return r
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func optionalStringArg(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func stringSliceArg(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("argument %s must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("argument %s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func marshalResult(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(data), nil
}
