package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"slideclaw/internal/client"
)

type idParams struct {
	ID string `json:"id"`
}

type slideRefParams struct {
	PresentationID string `json:"presentationId"`
	SlideID        string `json:"slideId"`
}

// RegisterGateway binds the slideclaw.* gateway methods on s. Every method
// proxies to the HTTP server through api, so the server must be running for
// calls to succeed.
func RegisterGateway(s *Server, api *client.Client) {
	s.Register("slideclaw.generate", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p struct {
			Prompt         string `json:"prompt"`
			PresentationID string `json:"presentationId"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		result, err := api.Generate(ctx, p.Prompt, p.PresentationID)
		if err != nil {
			return nil, wrap(err)
		}
		return result, nil
	})

	s.Register("slideclaw.listPresentations", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		summaries, err := api.ListPresentations(ctx)
		if err != nil {
			return nil, wrap(err)
		}
		return summaries, nil
	})

	s.Register("slideclaw.getPresentation", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p idParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		presentation, err := api.GetPresentation(ctx, p.ID)
		if err != nil {
			return nil, wrap(err)
		}
		return presentation, nil
	})

	s.Register("slideclaw.createPresentation", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		presentation, err := api.CreatePresentation(ctx, p.Title, p.Description)
		if err != nil {
			return nil, wrap(err)
		}
		return presentation, nil
	})

	s.Register("slideclaw.deletePresentation", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p idParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		if err := api.DeletePresentation(ctx, p.ID); err != nil {
			return nil, wrap(err)
		}
		return map[string]bool{"success": true}, nil
	})

	// Export methods hand back a download URL rather than streaming bytes
	// through the gateway.
	s.Register("slideclaw.exportPdf", exportURLHandler(api, "pdf"))
	s.Register("slideclaw.exportPptx", exportURLHandler(api, "pptx"))

	s.Register("slideclaw.addSlide", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p struct {
			PresentationID string `json:"presentationId"`
			Title          string `json:"title"`
			HTML           string `json:"html"`
			Notes          string `json:"notes"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		slide, err := api.AddSlide(ctx, p.PresentationID, p.Title, p.HTML, p.Notes)
		if err != nil {
			return nil, wrap(err)
		}
		return slide, nil
	})

	s.Register("slideclaw.updateSlide", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p struct {
			PresentationID string  `json:"presentationId"`
			SlideID        string  `json:"slideId"`
			Title          *string `json:"title"`
			HTML           *string `json:"html"`
			Notes          *string `json:"notes"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		slide, err := api.UpdateSlide(ctx, p.PresentationID, p.SlideID, client.SlideUpdate{
			Title: p.Title,
			HTML:  p.HTML,
			Notes: p.Notes,
		})
		if err != nil {
			return nil, wrap(err)
		}
		return slide, nil
	})

	s.Register("slideclaw.deleteSlide", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p slideRefParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		if err := api.DeleteSlide(ctx, p.PresentationID, p.SlideID); err != nil {
			return nil, wrap(err)
		}
		return map[string]bool{"success": true}, nil
	})

	s.Register("slideclaw.reorderSlides", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p struct {
			PresentationID string   `json:"presentationId"`
			SlideIDs       []string `json:"slideIds"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		presentation, err := api.ReorderSlides(ctx, p.PresentationID, p.SlideIDs)
		if err != nil {
			return nil, wrap(err)
		}
		return presentation, nil
	})

	s.Register("slideclaw.getDesignConfig", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		info, err := api.GetDesignConfig(ctx)
		if err != nil {
			return nil, wrap(err)
		}
		return info, nil
	})

	s.Register("slideclaw.setDesignConfig", func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p struct {
			Library string `json:"library"`
		}
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		cfg, err := api.SetDesignConfig(ctx, p.Library)
		if err != nil {
			return nil, wrap(err)
		}
		return cfg, nil
	})
}

func exportURLHandler(api *client.Client, format string) Handler {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
		var p idParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return map[string]string{"url": api.ExportURL(p.ID, format)}, nil
	}
}

func decode(params json.RawMessage, v interface{}) *Error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &Error{Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func wrap(err error) *Error {
	return &Error{Message: err.Error()}
}
