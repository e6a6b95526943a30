package midm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"encar-copilot/api/internal/advisor"
)

// Mi:dm 2.0 게이트웨이. 모델 자체는 로컬 서빙 서버(vLLM 등, OpenAI 호환
// chat completions API)가 들고 있고, 이 엔진은 그 서버에 대한 명시적
// 핸들이다. 로딩/캐싱은 전부 서버 쪽 일이다.
type Engine struct {
	BaseURL string // 예: http://127.0.0.1:8001/v1
	Model   string
	httpc   *http.Client
}

func New(baseURL, model string) *Engine {
	return &Engine{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Model:   strings.TrimSpace(model),
		// 로컬 추론은 수 분까지 걸릴 수 있다.
		httpc: &http.Client{Timeout: 300 * time.Second},
	}
}

func (e *Engine) Name() string     { return "midm" }
func (e *Engine) GetModel() string { return e.Model }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature"`
	TopP        float32       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (e *Engine) Generate(ctx context.Context, system, prompt string, opt advisor.GenerateOptions) (string, error) {
	if e.BaseURL == "" {
		return "", fmt.Errorf("MIDM_BASE_URL is empty")
	}
	model := e.Model
	if strings.TrimSpace(opt.ModelOverride) != "" {
		model = strings.TrimSpace(opt.ModelOverride)
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   opt.MaxNewTokens,
		Temperature: opt.Temperature,
		TopP:        1.0,
	}
	payload, _ := json.Marshal(body)

	url := e.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("midm %d: %s", resp.StatusCode, truncateBytes(x, 512))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("midm: empty choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
