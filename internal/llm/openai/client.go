package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/llm"
)

var _ llm.ItemExtractor = (*Client)(nil)

// ExtractItems implements llm.ItemExtractor over chat/completions.
func (c *Client) ExtractItems(ctx context.Context, text string) ([]entity.ProcurementLine, error) {
	resp, _, err := c.Extract(ctx, llm.ExtractRequest{
		Text:            text,
		FilenameHint:    common.DocumentFromContext(ctx),
		DefaultCurrency: c.cfg.DefaultCurrency,
		MaxChars:        c.cfg.MaxChars,
	})
	if err != nil {
		return nil, err
	}
	return llm.ToProcurementLines(resp.Items), nil
}

// Extract asks the model for line items and returns them with the validated JSON.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (llm.ItemsResponse, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	schema := llm.BuildItemsJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ItemsResponse{}, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ItemsResponse{}, raw, fmt.Errorf("%w: decode openai response: %v", common.ErrUpstream, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ItemsResponse{}, raw, fmt.Errorf("%w: no choices in openai response", common.ErrUpstream)
	}

	content, repaired, err := llm.RepairJSON([]byte(cc.Choices[0].Message.Content))
	if err != nil {
		c.logger.Error("llm.extract.repair_failed", "req_id", rid, "error", err)
		return llm.ItemsResponse{}, nil, fmt.Errorf("%w: %v", common.ErrSchemaViolation, err)
	}
	if repaired {
		c.logger.Warn("llm.extract.json_repaired", "req_id", rid)
	}
	content, _, err = llm.NormalizeAndSanitizeJSON(content, c.logger)
	if err != nil {
		return llm.ItemsResponse{}, nil, fmt.Errorf("%w: %v", common.ErrSchemaViolation, err)
	}

	// Validate strictly first.
	if err := llm.ValidateItems(content); err != nil {
		if !c.cfg.LenientOptional {
			c.logger.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ItemsResponse{}, content, fmt.Errorf("%w: %v", common.ErrSchemaViolation, err)
		}
		// Drop optional offenders and re-validate.
		cleaned, dropped, sErr := llm.SanitizeOptionalFields(content)
		if sErr != nil {
			return llm.ItemsResponse{}, content, fmt.Errorf("%w: sanitize: %v", common.ErrSchemaViolation, sErr)
		}
		if vErr := llm.ValidateItems(cleaned); vErr != nil {
			c.logger.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ItemsResponse{}, cleaned, fmt.Errorf("%w: %v", common.ErrSchemaViolation, vErr)
		}
		c.logger.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		content = cleaned
	}

	var out llm.ItemsResponse
	if err := json.Unmarshal(content, &out); err != nil {
		return llm.ItemsResponse{}, content, fmt.Errorf("%w: unmarshal items: %v", common.ErrSchemaViolation, err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"items", len(out.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
