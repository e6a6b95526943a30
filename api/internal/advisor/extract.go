package advisor

import (
	"encoding/json"
	"regexp"
	"strings"
)

// 모델 출력에서 결과 JSON을 복구하는 단계별 필터.
// 모델이 <think> 래퍼나 ```json 펜스로 감싸거나, 프롬프트의 매물 JSON을
// 에코하거나, 파이썬 dict 스타일로 출력하는 경우가 실제로 자주 있어서
// 전부 방어한다. Extract는 절대 에러를 내지 않는다.

var (
	reThinkSpan     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reFencedBlock   = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	reTrailingComma = regexp.MustCompile(`,(\s*[\]\}])`)
)

// expectedResultKeys — 이 중 하나라도 있으면 "결과 JSON"으로 본다.
// 프롬프트에 에코된 매물 블록 같은 무관한 JSON 조각을 걸러내는 장치.
var expectedResultKeys = []string{
	"summary",
	"summary_overall",
	"ranked_candidates",
	"fit_score",
	"pros",
	"cons",
	"best_index",
}

func looksLikeResult(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, k := range expectedResultKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// stripReasoningWrappers는 <think>...</think> 스팬과 ``` 펜스를 제거한다.
// 두 래퍼는 서로 독립적으로(겹쳐서도) 나타날 수 있어 둘 다 적용한다.
func stripReasoningWrappers(s string) string {
	s = reThinkSpan.ReplaceAllString(s, "")
	s = reFencedBlock.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// stripCodeFence는 문자열 전체가 하나의 펜스로 시작할 때 내부 내용만 남긴다.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	inner := strings.TrimLeft(parts[1], " \t\r\n")
	if len(inner) >= 4 && strings.EqualFold(inner[:4], "json") {
		inner = inner[4:]
	}
	return strings.TrimSpace(inner)
}

// braceCandidates는 중괄호 깊이를 추적하며 최상위에서 균형이 맞는
// {...} 구간을 전부 모은다. 중괄호는 ASCII라 바이트 단위로 훑어도 안전.
func braceCandidates(s string) []string {
	var candidates []string
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, s[start:i+1])
				}
			}
		}
	}
	return candidates
}

// repairJSON은 흔한 두 가지 결함을 고친다:
// 닫는 괄호 직전의 trailing comma, 그리고 쌍따옴표가 하나도 없으면서
// 홑따옴표만 있는 파이썬 dict 스타일 출력.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = reTrailingComma.ReplaceAllString(s, "$1")
	if !strings.Contains(s, `"`) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}

// Extract는 모델 원문에서 결과 JSON 객체를 최대한 복구한다.
// 실패 시에도 에러 대신 RawText 폴백을 돌려주는 total function이다.
//
// 순서가 중요하다:
//  1. 래퍼/펜스 제거
//  2. 전체 문자열 파싱 시도
//  3. 중괄호 후보 수집
//  4. 마지막 후보부터 복구-파싱 (모델의 마지막 JSON 블록이 보통 진짜 답이고,
//     앞쪽 블록은 프롬프트 에코나 reasoning인 경우가 많다)
func Extract(raw string) Extracted {
	txt := stripReasoningWrappers(raw)
	txt = stripCodeFence(txt)

	var whole any
	if err := json.Unmarshal([]byte(txt), &whole); err == nil && looksLikeResult(whole) {
		return Extracted{Object: whole.(map[string]any)}
	}

	candidates := braceCandidates(txt)
	if len(candidates) == 0 {
		return Extracted{RawText: strings.TrimSpace(txt)}
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		body := repairJSON(candidates[i])
		var obj any
		if err := json.Unmarshal([]byte(body), &obj); err != nil {
			continue
		}
		if looksLikeResult(obj) {
			return Extracted{Object: obj.(map[string]any)}
		}
	}

	// JSON은 있었지만 결과 형태가 아니었다는 뜻 → 원문 통째로 폴백.
	return Extracted{RawText: strings.TrimSpace(txt)}
}
