package advisor

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// 정규화기는 추출된 객체를 고정 스키마로 강제한다. 어떤 입력이 와도
// 에러 없이 타입/범위가 보장된 결과를 돌려주는 것이 원칙이다.
// 호출자는 "리스트가 비었는가" 이상의 null 체크를 할 필요가 없어야 한다.

// ---- 공용 강제 변환 ----

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// clampFloat는 v를 숫자로 강제한 뒤 [lo, hi]로 자른다.
// 강제 실패, NaN, ±Inf는 def.
func clampFloat(v any, lo, hi, def float64) float64 {
	f, ok := toFloat64(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// toInt는 정수 강제. 실수는 버림(파이썬 int()와 동일), 문자열은 정수
// 표기만 허용.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// normalizeRiskLevel — 고정 동의어 테이블. 문자열이 아니거나 모르는 값은
// 전부 medium으로 수렴한다.
func normalizeRiskLevel(v any) RiskLevel {
	s, ok := v.(string)
	if !ok {
		return RiskMedium
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "중간이하", "낮음":
		return RiskLow
	case "high", "높음":
		return RiskHigh
	default:
		return RiskMedium
	}
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// toStringList는 리스트가 아니면 빈 슬라이스. 스칼라를 단일 원소로
// 감싸지 않는다. 리스트 안의 비문자열 스칼라는 문자열화하고, 중첩
// 객체/배열/null은 버린다.
func toStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, el := range list {
		switch t := el.(type) {
		case string:
			out = append(out, t)
		case float64, bool:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}

// modeOr — 모델이 돌려준 mode가 유효하면 그것을, 아니면 인자를 쓴다.
func modeOr(v any, def Mode) Mode {
	if s, ok := v.(string); ok {
		switch Mode(s) {
		case ModeBuy, ModeSell:
			return Mode(s)
		}
	}
	return def
}

// ---- 단일 매물 ----

// NormalizeSingle은 추출 결과를 SingleResult 스키마로 강제한다.
// 항상 성공한다. 폴백(Extracted.RawText)이 들어오면 전 필드 기본값에
// RawText만 채워진 결과가 된다.
func NormalizeSingle(ext Extracted, mode Mode, persona Persona) SingleResult {
	obj := ext.Object
	if obj == nil {
		obj = map[string]any{}
	}

	res := SingleResult{
		Mode:         modeOr(obj["mode"], mode),
		PersonaID:    stringOr(obj["persona_id"], persona.ID),
		PersonaLabel: stringOr(obj["persona_label"], persona.Label),
		Summary:      stringOr(obj["summary"], ""),
		FitScore:     clampFloat(obj["fit_score"], 0.0, 10.0, 0.0),
		RiskLevel:    normalizeRiskLevel(obj["risk_level"]),

		Highlights:         toStringList(obj["highlights"]),
		Pros:               toStringList(obj["pros"]),
		Cons:               toStringList(obj["cons"]),
		Checklist:          toStringList(obj["checklist"]),
		QuestionsForSeller: toStringList(obj["questions_for_seller"]),
		Recommendation:     stringOr(obj["recommendation"], ""),

		RawText: ext.RawText,
	}

	// 판매 모드에서는 listing_* 키가 항상 존재해야 한다 (빈 문자열 포함).
	if mode == ModeSell {
		title := stringOr(obj["listing_title"], "")
		body := stringOr(obj["listing_body"], "")
		res.ListingTitle = &title
		res.ListingBody = &body
	}
	return res
}

// ---- 여러 매물 비교 ----

// multiShape — 모델이 돌려줄 수 있는 멀티 응답 형태.
// 정식 스키마는 ranked_candidates지만, 프롬프트상 best + ranking 조합도
// 합법이라 한 번만 판별해서 Phase A에서 정식 형태로 합친다.
// (키 존재 여부로 여기저기서 분기하지 않기 위한 명시적 태그.)
type multiShape int

const (
	shapeUnstructured  multiShape = iota // 둘 다 없음 → 후보 0개
	shapeCandidateList                   // ranked_candidates 직접 제공
	shapeBestRanking                     // best (+ranking) 대체 형태
)

func resolveMultiShape(obj map[string]any) multiShape {
	if list, ok := obj["ranked_candidates"].([]any); ok && len(list) > 0 {
		return shapeCandidateList
	}
	if _, ok := obj["best"]; ok {
		return shapeBestRanking
	}
	if _, ok := obj["ranked_candidates"]; ok {
		return shapeCandidateList
	}
	return shapeUnstructured
}

// best에서 ranking 항목으로 끌어올 수 있는 서술 필드.
var bestMergeKeys = []string{
	"summary",
	"pros",
	"cons",
	"checklist",
	"questions_for_seller",
	"risk_level",
	"why_suitable",
}

// reconcileBestRanking은 best + ranking 형태를 후보 목록으로 합친다.
// ranking의 각 항목이 기본이고, index가 best와 같은 항목에는 best의
// 서술 필드를 항목에 없을 때만 채워 넣는다 (항목 값이 이긴다).
// ranking이 없으면 best 단독이 유일한 후보가 된다.
// 두 번째 반환값은 best.index에서 얻은 잠정 best_index (0 = 없음).
func reconcileBestRanking(obj map[string]any) ([]map[string]any, int) {
	best, _ := obj["best"].(map[string]any)
	ranking, _ := obj["ranking"].([]any)

	provisional := 0
	if best != nil {
		if n, ok := toInt(best["index"]); ok {
			provisional = n
		} else {
			provisional = 1
		}
	}

	var cands []map[string]any
	if len(ranking) > 0 {
		for _, it := range ranking {
			entry, ok := it.(map[string]any)
			if !ok {
				continue
			}
			c := make(map[string]any, len(entry)+len(bestMergeKeys))
			for k, v := range entry {
				c[k] = v
			}
			if best != nil {
				if idx, ok := toInt(c["index"]); ok && idx == provisional {
					for _, k := range bestMergeKeys {
						if bv, has := best[k]; has {
							if _, exists := c[k]; !exists {
								c[k] = bv
							}
						}
					}
				}
			}
			cands = append(cands, c)
		}
	} else if best != nil {
		c := make(map[string]any, len(best))
		for k, v := range best {
			c[k] = v
		}
		cands = append(cands, c)
	}
	return cands, provisional
}

func normalizeCandidate(c map[string]any, pos, vehicleCount int) RankedCandidate {
	idx, ok := toInt(c["index"])
	if !ok {
		idx = pos + 1 // 입력 순서 기준 1-based 위치로 대체
	}
	idx = clampInt(idx, 1, vehicleCount)

	rc := RankedCandidate{
		Index:              idx,
		Title:              stringOr(c["title"], ""),
		Summary:            stringOr(c["summary"], ""),
		Pros:               toStringList(c["pros"]),
		Cons:               toStringList(c["cons"]),
		Checklist:          toStringList(c["checklist"]),
		QuestionsForSeller: toStringList(c["questions_for_seller"]),
		FitScore:           clampFloat(c["fit_score"], 0.0, 10.0, 0.0),
		RiskLevel:          normalizeRiskLevel(c["risk_level"]),
		WhySuitable:        stringOr(c["why_suitable"], ""),
	}

	// 체크리스트가 비면 판매자 질문 앞 3개로 채운다. 실사용에서 둘은
	// 많이 겹쳐서, 비우는 것보다 낫다.
	if len(rc.Checklist) == 0 && len(rc.QuestionsForSeller) > 0 {
		n := len(rc.QuestionsForSeller)
		if n > 3 {
			n = 3
		}
		rc.Checklist = append(rc.Checklist, rc.QuestionsForSeller[:n]...)
	}
	return rc
}

// NormalizeMulti는 추출 결과를 MultiResult 스키마로 강제한다. 항상 성공한다.
//
// Phase A: 응답 형태 판별 + best/ranking 합치기.
// Phase B: 후보별 정규화 → fit_score 내림차순 stable 정렬 → best_index 확정.
//
// best_index는 vehicleCount 기준으로 검증한다. 후보 목록 길이가 아니라
// 원본 매물 번호 공간이 기준이다 (ranked_candidates[i].index도 원본 번호,
// 배열 순서는 랭킹 순서).
func NormalizeMulti(ext Extracted, vehicleCount int, mode Mode, persona Persona) MultiResult {
	if vehicleCount < 1 {
		vehicleCount = 1
	}
	obj := ext.Object
	if obj == nil {
		obj = map[string]any{}
	}

	res := MultiResult{
		Mode:           modeOr(obj["mode"], mode),
		PersonaID:      stringOr(obj["persona_id"], persona.ID),
		PersonaLabel:   stringOr(obj["persona_label"], persona.Label),
		SummaryOverall: stringOr(obj["summary_overall"], ""),
		Tradeoffs:      tradeoffsList(obj),
		RawText:        ext.RawText,
	}

	// Phase A
	var rawCands []map[string]any
	provisionalBest := 0

	switch resolveMultiShape(obj) {
	case shapeCandidateList:
		list, _ := obj["ranked_candidates"].([]any)
		for _, it := range list {
			if m, ok := it.(map[string]any); ok {
				rawCands = append(rawCands, m)
			}
		}
	case shapeBestRanking:
		rawCands, provisionalBest = reconcileBestRanking(obj)
	case shapeUnstructured:
		// 후보 없음. 아래 기본값 처리로 충분하다.
	}

	// 종합 리스크: 최상위 값이 있으면 그것, 없으면 best에서 빌린다.
	if v, ok := obj["risk_level"]; ok {
		res.RiskLevel = normalizeRiskLevel(v)
	} else if best, ok := obj["best"].(map[string]any); ok {
		if bv, has := best["risk_level"]; has {
			if s, isStr := bv.(string); isStr && strings.TrimSpace(s) != "" {
				res.RiskLevel = normalizeRiskLevel(bv)
			}
		}
	}

	// Phase B
	cands := make([]RankedCandidate, 0, len(rawCands))
	for pos, c := range rawCands {
		cands = append(cands, normalizeCandidate(c, pos, vehicleCount))
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].FitScore > cands[j].FitScore
	})
	res.RankedCandidates = cands

	bestIdx := 1
	if v, ok := obj["best_index"]; ok {
		if n, isInt := toInt(v); isInt {
			bestIdx = n
		}
	} else if len(rawCands) > 0 && provisionalBest != 0 {
		bestIdx = provisionalBest
	}
	res.BestIndex = clampInt(bestIdx, 1, vehicleCount)

	return res
}

// tradeoffsList — tradeoffs가 리스트면 그대로, 스칼라면 문자열화해서
// 단일 원소 리스트로, 없거나 null이면 빈 리스트.
func tradeoffsList(obj map[string]any) []string {
	v, ok := obj["tradeoffs"]
	if !ok || v == nil {
		return []string{}
	}
	if _, isList := v.([]any); isList {
		return toStringList(v)
	}
	return []string{fmt.Sprint(v)}
}
