package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxToolRounds bounds how many tool calls one question may chain.
const maxToolRounds = 5

var ErrNoAPIKey = errors.New("assistant is not configured: GEMINI_API_KEY is empty")

// Agent answers questions about the order book with Gemini function calling.
type Agent struct {
	apiKey string
	model  string
	tools  *Tools
	now    func() time.Time
}

func NewAgent(apiKey, model string, tools *Tools) *Agent {
	if model == "" {
		model = "gemini-2.0-flash-001"
	}
	return &Agent{apiKey: apiKey, model: model, tools: tools, now: time.Now}
}

// Ask runs one question through the model, executing the tools it calls.
func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	if a.apiKey == "" {
		return "", ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: Declarations}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(SystemPrompt(a.now(), userMessage)))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.FunctionResponse{
				Name:     call.Name,
				Response: a.tools.Execute(ctx, call.Name, call.Args),
			})
		}
		if resp, err = session.SendMessage(ctx, parts...); err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

// SystemPrompt frames the user's question for the model.
func SystemPrompt(today time.Time, userMessage string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the dispatch desk assistant of a glass distributor.

	RULES:
	1. ORDERS: To answer anything about orders (status, customer, value, items), call 'list_orders'
	   (optionally with a status) and then 'get_order' for details. Never invent order ids.

	2. SLIPS: For loading slips, vehicles or invoices, call 'list_slips'.

	3. TOTALS: For counts or overall value, call 'get_dashboard'.

	4. You can only read. If asked to approve, edit or dispatch something, explain which screen to use.

	USER: %s`, today.Format("2006-01-02"), userMessage)
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I could not find an answer."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
