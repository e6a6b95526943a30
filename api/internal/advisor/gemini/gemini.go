package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"encar-copilot/api/internal/advisor"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 게이트웨이. 결과 JSON 복구는 advisor.Extract 쪽 책임이므로
// 여기서는 원문 텍스트만 돌려준다.
type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate는 system 지시와 프롬프트로 한 번 생성한다.
// 전송 오류에는 3회까지 짧은 backoff로 재시도한다.
func (e *Engine) Generate(ctx context.Context, system, prompt string, opt advisor.GenerateOptions) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	model := e.Model
	if strings.TrimSpace(opt.ModelOverride) != "" {
		model = strings.TrimSpace(opt.ModelOverride)
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	cfg := genai.GenerationConfig{
		Temperature:      ptrFloat32(opt.Temperature),
		ResponseMIMEType: "application/json",
	}
	if opt.MaxNewTokens > 0 {
		cfg.MaxOutputTokens = ptrInt32(int32(opt.MaxNewTokens))
	}
	m.GenerationConfig = cfg
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return "", fmt.Errorf("gemini: empty response")
		}
		return txt, nil
	}
	return "", lastErr
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
