package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAIRequestTimeout = 60 * time.Second

const contextSystemPrompt = `You score short social-media texts against candidate context labels.
Respond with a JSON array only, one object per label, like:
[{"label":"...","score":0.93},{"label":"...","score":0.07}]
Scores are probabilities in [0,1] that sum to 1. No prose, no code fences.`

// OpenAIContextClassifier scores hazard context through a chat-completion
// endpoint. It is the remote-inference alternative to the in-process
// zero-shot provider behind the same interface.
type OpenAIContextClassifier struct {
	client *openai.Client
	model  string
	labels []string
}

func NewOpenAIContextClassifier(apiKey string, labels []string) *OpenAIContextClassifier {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	)
	return &OpenAIContextClassifier{
		client: client,
		model:  openai.ChatModelGPT4oMini,
		labels: labels,
	}
}

func (o *OpenAIContextClassifier) Classify(ctx context.Context, text string) ([]Prediction, error) {
	userPrompt := fmt.Sprintf("Candidate labels: %s\nText: %s", strings.Join(o.labels, ", "), text)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(o.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(contextSystemPrompt),
			openai.UserMessage(userPrompt),
		}),
		Temperature: openai.F(0.0),
	})
	if err != nil {
		return nil, fmt.Errorf("context scoring request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("context scoring returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var predictions []Prediction
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &predictions); err != nil {
		return nil, fmt.Errorf("failed to parse context scores: %w", err)
	}
	if len(predictions) == 0 {
		return nil, fmt.Errorf("context scoring returned no labels")
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})
	return predictions, nil
}
