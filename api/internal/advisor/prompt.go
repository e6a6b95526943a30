package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// 프롬프트 빌더. 입력만으로 결정되는 순수 함수이며 에러를 내지 않는다.
// 모델이 프롬프트의 출력 규칙을 지키지 않는 경우는 추출기/정규화기가
// 방어하므로, 여기서는 규칙을 명시하는 것까지만 책임진다.

// SystemPrompt — 모든 생성 호출에 함께 보내는 시스템 지시.
// 단일 JSON 객체, 래핑 금지를 강하게 못 박는다.
const SystemPrompt = "너는 중고차 매물 정보를 분석해서 JSON 형식으로만 응답하는 엔카 코파일럿이다. " +
	"반드시 하나의 JSON 객체만 출력해야 하며, '요약', '장점' 같은 제목이나 다른 설명 문장은 " +
	"JSON 바깥에 절대 출력하지 마라. JSON 코드 블록이나 ```json 같은 래핑도 사용하지 마라."

// ---- 예산 감지 ----

// 사용자 메모에서 예산 상한 언급을 찾는 고정 패턴.
// 공백을 전부 제거한 텍스트에 적용한다.
// 예: "1200만원이하", "1500까지", "예산은 1000 정도"
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*만원\s*(이하|까지|정도)`),
	regexp.MustCompile(`예산\s*[:은]\s*\d+\s*만`),
}

// HasBudget은 메모가 수치 예산 상한을 표현하는지 판단한다.
// 모델과 무관한 순수 패턴 매칭이며, 이 결과가 단일/멀티 프롬프트의
// 예산 규칙 블록 선택을 결정한다.
func HasBudget(userNote string) bool {
	if strings.TrimSpace(userNote) == "" {
		return false
	}
	text := strings.ReplaceAll(userNote, " ", "")
	for _, p := range budgetPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ---- 멀티용 매물 압축 ----

const (
	maxMultiOptions   = 6
	maxMultiStringLen = 120
	truncationMarker  = "..."
)

// shrunkVehicle — 멀티 비교 시 프롬프트에 넣는 축약 뷰.
// 허용 목록에 있는 키만, 이 순서대로 직렬화된다.
type shrunkVehicle struct {
	Title           any `json:"title,omitempty"`
	Year            any `json:"year,omitempty"`
	MileageKM       any `json:"mileage_km,omitempty"`
	PriceKRW        any `json:"price_krw,omitempty"`
	Color           any `json:"color,omitempty"`
	AccidentHistory any `json:"accident_history,omitempty"`
	UsageHistory    any `json:"usage_history,omitempty"`
	MarketPriceHint any `json:"market_price_hint,omitempty"`
	Options         any `json:"options,omitempty"`
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + truncationMarker
}

// shrinkVehicle은 컨텍스트 길이를 입력 크기와 무관하게 묶어두기 위해
// 꼭 필요한 필드만 남기고 긴 값을 자른다. 옵션은 앞 6개, 문자열은
// 120자까지. 중첩 객체(inspection 등)는 아예 들어가지 않는다.
func shrinkVehicle(v VehicleRecord) shrunkVehicle {
	pick := func(key string) any {
		val, ok := v[key]
		if !ok {
			return nil
		}
		if s, isStr := val.(string); isStr {
			return truncateRunes(s, maxMultiStringLen)
		}
		return val
	}

	sv := shrunkVehicle{
		Title:           pick("title"),
		Year:            pick("year"),
		MileageKM:       pick("mileage_km"),
		PriceKRW:        pick("price_krw"),
		Color:           pick("color"),
		AccidentHistory: pick("accident_history"),
		UsageHistory:    pick("usage_history"),
		MarketPriceHint: pick("market_price_hint"),
	}

	switch opts := v["options"].(type) {
	case []any:
		if len(opts) > maxMultiOptions {
			opts = opts[:maxMultiOptions]
		}
		sv.Options = opts
	case []string:
		if len(opts) > maxMultiOptions {
			opts = opts[:maxMultiOptions]
		}
		sv.Options = opts
	default:
		sv.Options = v["options"]
	}
	return sv
}

// jsonBlock은 한글이 이스케이프되지 않은 들여쓰기 JSON을 만든다.
func jsonBlock(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ---- 공통 블록 ----

func personaBlock(p Persona) string {
	return fmt.Sprintf("[persona]\nid: %s\nlabel: %s\ndescription: %s", p.ID, p.Label, p.Description)
}

func userNoteBlock(note string) string {
	return "[사용자 메모]\n" +
		"아래 텍스트는 사용자가 직접 적은 메모입니다.\n" +
		"이 사람이 무엇을 걱정하는지/중요하게 보는지를 파악하는 데 사용하세요.\n\n" +
		`"""` + strings.TrimSpace(note) + `"""`
}

// ---- 단일 매물 템플릿 ----

const buySingleInstruction = `당신은 중고차를 처음 보거나 익숙하지 않은 일반 사용자를 도와주는
"중고차 구매 코치"입니다.

아래 [persona]는 이 매물을 보는 사람의 상황/목적/성향을 설명합니다.
아래 [vehicle]은 이 사람이 보고 있는 한 대의 매물에 대한 구조화된 정보입니다.

원칙:
- 항상 persona의 관점에서 설명하세요.
- 자동차/보험/정비 전문 용어는 필요한 만큼만 쓰고, 짧게 풀어서 설명하세요.
- vehicle 데이터에 없는 정보(보험료, 세금, 실제 연비, 정확한 유지비 등)는
  추측해서 단정하지 말고, "이 정보만으로는 정확히 알 수 없다"고 분명히 말하세요.
  다만 일반적인 경향은 "보통 ~인 경우가 많다" 수준으로만 언급하세요.

출력 형식:
반드시 아래 JSON 형식의 "하나의 객체"만 출력하세요.
JSON 코드 블록이나 ` + "```json" + ` 같은 래핑 없이, 순수 JSON만 출력하세요.

{
  "mode": "buy",
  "persona_id": "...",
  "persona_label": "...",

  "summary": "이 매물을 persona 관점에서 한 문단 정도로 요약",
  "fit_score": 0.0,
  "highlights": [
    "persona에게 특히 중요한 핵심 포인트 3~5개"
  ],
  "pros": [
    "persona 입장에서의 장점 (2~5개)"
  ],
  "cons": [
    "persona 입장에서의 주의사항/단점 (2~5개)"
  ],
  "risk_level": "low | medium | high",
  "checklist": [
    "시승/상담 시 꼭 확인해야 할 항목 (3~6개)"
  ],
  "questions_for_seller": [
    "판매자/딜러에게 꼭 물어봐야 할 질문 (3~6개)"
  ],
  "recommendation": "최종적으로 어떻게 하는 게 좋을지에 대한 한두 문장 조언"
}

추가 규칙:
- 불필요하게 장황하게 쓰지 말고, 핵심만 간결하게 정리하세요.
- persona에 따라 정말 중요한 포인트 위주로 정리하세요.`

const buySingleBudgetBlock = `예산 관련 규칙 (중요):
- [vehicle]의 price_krw 필드에는 이 매물의 가격(원 단위)이 들어 있습니다.
- [사용자 메모]에 적힌 예산 상한을 기준으로,
  price_krw가 이 예산을 넘는다면
  "예산보다 비싸다", "예산을 초과한다"라고 분명히 적으세요.
- 예산을 넘더라도 다른 장점 때문에 추천할 수는 있지만,
  그 경우에도 "예산 상으로는 부담"이라는 표현을 반드시 포함하세요.`

const buySingleNoBudgetBlock = `예산 관련 규칙 (중요):
- 이번 질문에서는 [사용자 메모]에 구체적인 예산 정보가 없습니다.
- 사용자 예산을 임의로 추정하거나,
  "예산에 맞지 않는다", "예산을 초과한다" 같은 표현은 사용하지 마세요.
- 대신 동급 평균 시세나 market_price_hint 를 활용하여
  "동급 시세 대비 비싸다/저렴하다" 수준으로만 가격을 평가하세요.`

const sellSingleInstruction = `당신은 중고차를 판매하려는 사람에게 조언해주는 "중고차 판매 코치"입니다.

아래 [persona]는 판매자의 상황/목표/성향을 설명합니다.
아래 [vehicle]은 판매하려는 차량 한 대에 대한 구조화된 정보입니다.

출력 규칙(중요):
- 반드시 하나의 JSON 객체만 출력하세요.
- "요약", "장점" 같은 제목/설명 문장을 JSON 바깥에 쓰지 마세요.
- JSON 코드 블록이나 ` + "```json" + ` 같은 래핑 없이, 순수 JSON만 출력하세요.

JSON 스키마는 아래와 같습니다. key 이름과 구조를 그대로 따르세요.

{
  "mode": "sell",
  "persona_id": "...",
  "persona_label": "...",

  "summary": "이 차량을 어떻게 포지셔닝해서 팔면 좋을지 한 문단 정도로 요약",
  "fit_score": 0.0,
  "pros": ["판매 시 강조하면 좋을 점"],
  "cons": ["솔직하게 밝혀야 할 단점/주의사항"],
  "risk_level": "low | medium | high",
  "recommendation": "가격·채널·전략에 대한 한두 문장 조언",

  "listing_title": "중고차 사이트에 올릴 한 줄 제목 (최대 40자 이내, 과장/허위 없이 사실 위주)",
  "listing_body": "실제 중고차 사이트에 복붙해서 쓸 수 있는 소개 문구 3~6줄. 구매자가 읽는 글이므로 '빠른 판매', '현금화', '빨리 팔고 싶은 분' 같은 표현은 쓰지 말고, '빠르게 구매하고 싶으신 분께 추천드립니다', '편하게 구매를 진행하고 싶으신 분께 적합한 차량입니다'처럼 구매자 입장에서 자연스럽게 작성하세요."
}

추가 규칙:
- listing_title, listing_body는 반드시 비워두지 말고 최소 한 문장 이상 채우세요.
- listing_body 마지막 문장은 가능하면
  "빠르게 구매하고 싶으신 분께 추천드립니다." 또는
  "편하게 구매를 진행하고 싶으신 분께 잘 맞습니다."
  같은 형태로 구매자 시점으로 마무리하세요.`

// BuildPrompt는 단일 매물 프롬프트를 만든다.
// buy 모드는 예산 감지 결과에 따라 상호 배타적인 예산 규칙 블록 중
// 하나가 반드시 포함된다.
func BuildPrompt(vehicle VehicleRecord, persona Persona, userNote string) string {
	hasNote := strings.TrimSpace(userNote) != ""

	var instruction string
	if persona.Mode == ModeSell {
		instruction = sellSingleInstruction
	} else {
		instruction = buySingleInstruction
		if HasBudget(userNote) {
			instruction += "\n\n" + buySingleBudgetBlock
		} else {
			instruction += "\n\n" + buySingleNoBudgetBlock
		}
	}

	blocks := []string{instruction, personaBlock(persona)}
	if hasNote {
		blocks = append(blocks, userNoteBlock(userNote))
	}
	blocks = append(blocks,
		"[vehicle]\n아래는 한 대의 중고차 매물에 대한 구조화된 정보입니다. (JSON 객체 형태)\n\n"+jsonBlock(vehicle))

	return strings.Join(blocks, "\n\n")
}

// ---- 여러 매물 비교 템플릿 ----

const buyMultiInstruction = `당신은 여러 중고차 매물 중에서,
특정 사용자(persona)에게 가장 잘 맞는 매물을 골라주는 "중고차 구매 의사결정 코치"입니다.

아래 persona 는 이 매물을 보는 사람의 상황/목적/성향을 설명합니다.
아래 [매물 목록] 은 서로 다른 매물들의 요약 정보입니다.

원칙:
- 항상 persona 에 나와 있는 관점에서 생각하세요.
- 자동차/보험/정비 전문 용어를 남발하지 말고, 필요하면 짧게 풀어서 설명하세요.
- 각 매물의 장단점을 "persona에게 얼마나 맞는지" 관점에서 비교하세요.
- 매물 정보에 없는 항목(보험료, 세금, 정확한 유지비 등)은 일반적인 경향만 말하고
  구체적인 숫자는 만들지 마세요.

출력 형식 (JSON 하나만, 코드블록 금지):

{
  "mode": "buy",
  "persona_id": "...",
  "persona_label": "...",

  "summary_overall": "여러 매물 비교 요약 (1~2문장, 80자 이내)",

  "best_index": 1,

  "best": {
    "index": 1,
    "title": "가장 잘 맞는 매물 제목",
    "fit_score": 0.0,
    "summary": "이 매물이 persona에게 어떤 느낌인지 1~2문장 (80자 이내)",
    "pros": ["장점 최대 3개"],
    "cons": ["단점/주의사항 최대 3개"],
    "questions_for_seller": ["판매자/딜러에게 물어볼 질문 최대 3개"],
    "risk_level": "low | medium | high"
  },

  "ranking": [
    {
      "index": 1,
      "title": "매물 1의 제목",
      "fit_score": 0.0
    }
  ]
}

규칙:
- best 에 대해서만 pros/cons/questions_for_seller 를 작성합니다.
- ranking 에서는 각 매물의 index, title, fit_score 만 작성합니다.
  (fit_score 가 애매하면 0.0~10.0 범위에서 대략적인 상대값만 줘도 됩니다.)
- index 는 [매물 목록]의 번호입니다.
- 전체 한국어 텍스트는 600자 이내로 쓰세요.
- JSON 구조를 끝까지 완성하는 것이 가장 중요합니다.
  내용이 애매하면 빈 문자열("") 또는 짧은 문장으로 처리하세요.`

const buyMultiBudgetBlock = `예산 하드 가드레일 (매우 중요):

1) 예산 정보
- [사용자 메모]에 적힌 예산 상한을 기준으로,
각 매물의 price_krw 가 예산 이내(<=)인지 예산 초과(>)인지 먼저 판단하세요.

2) 예산 이내 매물이 하나라도 있는 경우
- best_index 는 반드시 예산 이내 매물들 중에서만 선택해야 합니다.
- 예산 이내 매물들끼리 persona 관점에서 비교해서
fit_score 를 0.0~10.0 사이로 주고,
그중 가장 잘 맞는 한 대를 best 로 선택하세요.
- 예산을 초과하는 매물은 ranking 에 포함해도 되지만,
fit_score 는 최대 6.0까지만 주고,
summary_overall 이나 best.summary 에서
"최종 추천"처럼 보이게 쓰지 마세요.
(예: "그래도 이 차가 더 낫다" 같은 표현 금지)

3) 모든 매물이 예산을 초과하는 경우
- summary_overall 첫 문장에
"사용자가 적어주신 예산에 맞는 매물은 없고, 현재 매물은 모두 예산을 초과한다"
는 내용을 반드시 포함하세요.
- 각 매물에 대해 fit_score 를 0.0~10.0 범위에서 모두 부여하고,
그중 상대적으로 조건이 나은 매물을 best_index 로 선택하세요.
- 이때 best.summary 에도
"예산을 초과하지만" 또는 비슷한 표현을 꼭 넣으세요.

4) 표현 규칙
- 예산을 초과하는 매물에 대해서는
summary_overall, best.summary, pros 어디에서도
"예산에 잘 맞는다", "가격이 부담되지 않는다" 같은 표현을 쓰지 마세요.`

const buyMultiNoBudgetBlock = `예산 관련 규칙 (중요):
- 이번 질문에서는 [사용자 메모]에 구체적인 예산 정보가 없습니다.
- 사용자 예산을 추정하거나,
"예산에 맞는다", "예산에 맞지 않는다", "예산을 초과한다" 같은 표현은 사용하지 마세요.
- 가격 언급은 "동급 시세 대비 비싸다/저렴하다"와 같이
상대적인 시세 기준으로만 설명하세요.`

const sellMultiInstruction = `당신은 여러 대의 차량을 가진 판매자가
어떤 차량을 먼저 팔거나 어떻게 전략을 잡으면 좋을지 도와주는
"중고차 판매 전략 코치"입니다.

아래 persona 는 판매자의 상황/목표/성향을 설명합니다.
아래 [매물 목록] 은 판매자가 보유한 서로 다른 차량 정보입니다.

출력 형식 (JSON 하나만, 코드블록 금지):

{
  "mode": "sell",
  "persona_id": "...",
  "persona_label": "...",

  "summary_overall": "여러 차량을 어떤 순서/전략으로 판매하면 좋을지 한두 문장 요약",

  "best_index": 1,

  "best": {
    "index": 1,
    "title": "먼저 팔면 좋은 차량 제목",
    "fit_score": 0.0,
    "summary": "왜 이 차량을 먼저 파는 게 좋은지 1~2문장",
    "pros": ["판매 시 강조하면 좋을 점 (최대 3개)"],
    "cons": ["솔직하게 밝혀야 할 단점/주의사항 (최대 3개)"],
    "questions_for_seller": ["거래 과정에서 특히 확인해야 할 사항 (최대 3개)"],
    "risk_level": "low | medium | high"
  },

  "ranking": [
    {
      "index": 1,
      "title": "차량 제목",
      "fit_score": 0.0
    }
  ]
}

규칙:
- best 에 대해서만 pros/cons/questions_for_seller 를 작성합니다.
- ranking 은 index, title, fit_score 정도만 간단히 적으세요.
- 전체 한국어 텍스트는 600자 이내로 쓰세요.`

const multiUserNoteExtra = `[중요]

아래 [사용자 메모]에 사용자가 직접 적은 걱정/조건이 있다면,
summary_overall, best.summary/pros/cons/questions_for_seller,
ranking[*].fit_score 에 자연스럽게 반영하세요.

단, 매물 정보에 없는 속성에 대해서는
- '정보가 없어서 정확히 비교는 어렵다'고 언급하거나,
- 일반적인 경향 수준으로만 조심스럽게 설명하세요.`

// BuildMultiPrompt는 여러 매물을 비교/랭킹하는 프롬프트를 만든다.
// 각 매물은 shrinkVehicle로 압축되어 [매물 1]..[매물 N] 블록으로 들어간다.
// Top1(best)만 상세 서술을 요구하고 나머지는 index/title/fit_score 수준으로
// 제한해 응답 토큰을 아낀다.
func BuildMultiPrompt(vehicles []VehicleRecord, persona Persona, userNote string) string {
	hasNote := strings.TrimSpace(userNote) != ""

	parts := make([]string, 0, len(vehicles))
	for i, v := range vehicles {
		parts = append(parts, fmt.Sprintf("[매물 %d]\n%s", i+1, jsonBlock(shrinkVehicle(v))))
	}
	vehiclesBlock := strings.Join(parts, "\n\n")

	var instruction string
	if persona.Mode == ModeSell {
		instruction = sellMultiInstruction
	} else {
		instruction = buyMultiInstruction
		if HasBudget(userNote) {
			instruction += "\n\n" + buyMultiBudgetBlock
		} else {
			instruction += "\n\n" + buyMultiNoBudgetBlock
		}
	}
	if hasNote {
		instruction += "\n\n" + multiUserNoteExtra
	}

	blocks := []string{instruction, personaBlock(persona)}
	if hasNote {
		blocks = append(blocks, userNoteBlock(userNote))
	}
	blocks = append(blocks, "[매물 목록]\n"+vehiclesBlock)

	return strings.Join(blocks, "\n\n")
}
