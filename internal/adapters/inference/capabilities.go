package inference

import (
	"context"

	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/registry"
)

var waitForModel = map[string]any{"wait_for_model": true}

// Summarize asks modelID for an abstractive summary of text.
func (c *Client) Summarize(ctx context.Context, modelID, text string) (string, error) {
	capability := string(registry.Summarization)
	body, err := c.Call(ctx, capability, modelID, Request{
		Inputs: text,
		Parameters: map[string]any{
			"max_length": 180,
			"min_length": 40,
			"do_sample":  false,
		},
		Options: waitForModel,
	})
	if err != nil {
		return "", err
	}
	return parsed(ctx, c, capability, modelID, body, ParseSummary)
}

// Translate translates text between two model locale codes.
func (c *Client) Translate(ctx context.Context, modelID, text, srcLocale, tgtLocale string) (string, error) {
	capability := string(registry.Translation)
	body, err := c.Call(ctx, capability, modelID, Request{
		Inputs: text,
		Parameters: map[string]any{
			"src_lang": srcLocale,
			"tgt_lang": tgtLocale,
		},
		Options: waitForModel,
	})
	if err != nil {
		return "", err
	}
	return parsed(ctx, c, capability, modelID, body, ParseTranslation)
}

// Classify returns every class score for text, highest first.
func (c *Client) Classify(ctx context.Context, modelID, text string) ([]model.LabelScore, error) {
	capability := string(registry.Moderation)
	body, err := c.Call(ctx, capability, modelID, Request{
		Inputs:     text,
		Parameters: map[string]any{"top_k": nil},
		Options:    waitForModel,
	})
	if err != nil {
		return nil, err
	}
	return parsed(ctx, c, capability, modelID, body, ParseClassification)
}

// Embed returns a sentence vector for text.
func (c *Client) Embed(ctx context.Context, modelID, text string) ([]float64, error) {
	capability := string(registry.Embeddings)
	body, err := c.Call(ctx, capability, modelID, Request{
		Inputs:  text,
		Options: waitForModel,
	})
	if err != nil {
		return nil, err
	}
	return parsed(ctx, c, capability, modelID, body, ParseEmbedding)
}

// Generate runs a text-to-text model on prompt.
func (c *Client) Generate(ctx context.Context, modelID, prompt string, params map[string]any) (string, error) {
	capability := string(registry.Checkin)
	body, err := c.Call(ctx, capability, modelID, Request{
		Inputs:     prompt,
		Parameters: params,
		Options:    waitForModel,
	})
	if err != nil {
		return "", err
	}
	return parsed(ctx, c, capability, modelID, body, ParseGenerated)
}
