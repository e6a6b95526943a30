package advisor

import (
	"strings"
	"testing"
)

func TestExtractPlainObject(t *testing.T) {
	raw := `{"summary": "괜찮은 매물", "fit_score": 7.5}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("expected recovered object, got raw text %q", got.RawText)
	}
	if got.Object["summary"] != "괜찮은 매물" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractFencedBlock(t *testing.T) {
	raw := "```json\n{\"summary\": \"ok\", \"pros\": []}\n```"
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("fenced block not recovered: %q", got.RawText)
	}
	if got.Object["summary"] != "ok" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractThinkWrapper(t *testing.T) {
	raw := "<think>음... 이 매물은 가격이 애매하다. {\"draft\": 1}</think>\n" +
		`{"summary": "생각 끝", "cons": ["비쌈"]}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("not recovered: %q", got.RawText)
	}
	if got.Object["summary"] != "생각 끝" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractSurroundingProse(t *testing.T) {
	raw := "알겠습니다. 분석 결과는 다음과 같습니다.\n\n" +
		`{"summary": "본문 속 JSON", "fit_score": 6}` +
		"\n\n도움이 되었길 바랍니다."
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("not recovered: %q", got.RawText)
	}
	if got.Object["summary"] != "본문 속 JSON" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractTrailingComma(t *testing.T) {
	raw := `{"summary": "trailing", "pros": ["a", "b",],}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("trailing comma not repaired: %q", got.RawText)
	}
}

func TestExtractSingleQuotes(t *testing.T) {
	// 파이썬 dict 스타일 출력
	raw := `{'summary': '홑따옴표', 'fit_score': 5}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("single-quote object not repaired: %q", got.RawText)
	}
	if got.Object["summary"] != "홑따옴표" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractNoQuoteSwapWhenDoubleQuotesPresent(t *testing.T) {
	// 쌍따옴표 JSON 내부의 어퍼스트로피는 건드리면 안 된다
	raw := `{"summary": "it's fine", "fit_score": 8}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("not recovered: %q", got.RawText)
	}
	if got.Object["summary"] != "it's fine" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractPrefersLastCandidate(t *testing.T) {
	// 프롬프트 에코(첫 블록)가 결과 키를 갖고 있어도, 마지막 블록이 이긴다
	raw := `{"summary": "echoed draft", "fit_score": 1}` + "\n생각해보니...\n" +
		`{"summary": "final answer", "fit_score": 9}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("not recovered: %q", got.RawText)
	}
	if got.Object["summary"] != "final answer" {
		t.Fatalf("summary = %v, want final answer", got.Object["summary"])
	}
}

func TestExtractSkipsNonResultJSON(t *testing.T) {
	// 매물 에코만 있고 결과 키는 없다 → 폴백
	raw := `{"title": "아반떼", "price_krw": 12000000}`
	got := Extract(raw)
	if got.Recovered() {
		t.Fatalf("vehicle echo should not pass the result gate: %v", got.Object)
	}
	if got.RawText == "" {
		t.Fatal("fallback must carry raw text")
	}
}

func TestExtractLastBlockNotResultFallsBackToEarlier(t *testing.T) {
	raw := `{"summary": "real result", "pros": ["싸다"]}` + "\n" +
		`{"note": "이건 결과가 아님"}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("earlier result block should be found: %q", got.RawText)
	}
	if got.Object["summary"] != "real result" {
		t.Fatalf("summary = %v", got.Object["summary"])
	}
}

func TestExtractNoJSONAtAll(t *testing.T) {
	raw := "죄송하지만 JSON으로 답할 수 없습니다."
	got := Extract(raw)
	if got.Recovered() {
		t.Fatalf("unexpected object: %v", got.Object)
	}
	if got.RawText != strings.TrimSpace(raw) {
		t.Fatalf("RawText = %q", got.RawText)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	got := Extract("   \n\t ")
	if got.Recovered() {
		t.Fatalf("unexpected object: %v", got.Object)
	}
	if got.RawText != "" {
		t.Fatalf("RawText = %q, want empty", got.RawText)
	}
}

func TestExtractUnbalancedBraces(t *testing.T) {
	// 잘린 출력. 절대 패닉하지 않고 폴백해야 한다.
	raw := `{"summary": "잘렸다", "pros": ["a",`
	got := Extract(raw)
	if got.Recovered() {
		t.Fatalf("truncated JSON should not parse: %v", got.Object)
	}
	if got.RawText == "" {
		t.Fatal("fallback must carry raw text")
	}
}

func TestExtractNestedObjectCandidate(t *testing.T) {
	raw := `결과: {"summary_overall": "비교 완료", "best": {"index": 2, "fit_score": 8.0}, "best_index": 2}`
	got := Extract(raw)
	if !got.Recovered() {
		t.Fatalf("nested object not recovered: %q", got.RawText)
	}
	if _, ok := got.Object["best"].(map[string]any); !ok {
		t.Fatalf("best should be an object: %v", got.Object["best"])
	}
}
