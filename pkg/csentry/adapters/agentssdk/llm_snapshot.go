// llm_snapshot.go turns LLM requests and responses into breadcrumb data.
// Message text is never copied, only its shape.

package agentssdk

import (
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"
)

// maxMessageSnapshots bounds how many trailing messages are described.
const maxMessageSnapshots = 10

// messageShape describes one message without its content.
type messageShape struct {
	Role          string `json:"role"`
	ContentLength int    `json:"content_length"`
	Parts         int    `json:"parts"`
	HasImage      bool   `json:"has_image,omitempty"`
	HasToolCall   bool   `json:"has_tool_call,omitempty"`
	HasToolResult bool   `json:"has_tool_result,omitempty"`
}

// llmRequestData is the breadcrumb data for OnLLMStart.
type llmRequestData struct {
	Agent        string         `json:"agent,omitempty"`
	Model        string         `json:"model"`
	Provider     string         `json:"provider,omitempty"`
	MessageCount int            `json:"message_count"`
	Messages     []messageShape `json:"messages,omitempty"`
	Temperature  *float32       `json:"temperature,omitempty"`
	TopP         *float32       `json:"top_p,omitempty"`
	MaxTokens    *int           `json:"max_tokens,omitempty"`
	ToolNames    []string       `json:"tool_names,omitempty"`
}

// llmResponseData is the breadcrumb data for OnLLMEnd.
type llmResponseData struct {
	Agent            string   `json:"agent,omitempty"`
	Model            string   `json:"model,omitempty"`
	ResponseID       string   `json:"response_id,omitempty"`
	FinishReason     string   `json:"finish_reason,omitempty"`
	ToolCallNames    []string `json:"tool_call_names,omitempty"`
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	TotalTokens      int      `json:"total_tokens"`
}

func snapshotRequest(agentName string, req llmsdk.Request) llmRequestData {
	data := llmRequestData{
		Agent:        agentName,
		Model:        req.Model,
		Provider:     string(req.Provider),
		MessageCount: len(req.Messages),
		Temperature:  req.Temperature,
		TopP:         req.TopP,
		MaxTokens:    req.MaxTokens,
	}

	for _, tool := range req.Tools {
		data.ToolNames = append(data.ToolNames, tool.Name)
	}

	start := len(req.Messages) - maxMessageSnapshots
	if start < 0 {
		start = 0
	}
	for _, msg := range req.Messages[start:] {
		data.Messages = append(data.Messages, shapeOf(msg))
	}
	return data
}

func shapeOf(msg llmsdk.Message) messageShape {
	shape := messageShape{
		Role:  string(msg.Role),
		Parts: len(msg.Parts),
	}
	for _, part := range msg.Parts {
		shape.ContentLength += len(part.Text)
		if part.ImageData != nil {
			shape.HasImage = true
		}
		if part.ToolCall != nil {
			shape.HasToolCall = true
		}
		if part.ToolResult != nil {
			shape.HasToolResult = true
		}
	}
	return shape
}

func snapshotResponse(agentName string, resp llmsdk.Response) llmResponseData {
	data := llmResponseData{
		Agent:            agentName,
		Model:            resp.Model,
		ResponseID:       resp.ID,
		FinishReason:     string(resp.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	for _, tc := range resp.ToolCalls {
		data.ToolCallNames = append(data.ToolCallNames, tc.Name)
	}
	return data
}
