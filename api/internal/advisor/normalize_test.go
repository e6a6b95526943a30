package advisor

import (
	"math"
	"reflect"
	"testing"
)

func testPersona(t *testing.T, mode Mode, id string) Persona {
	t.Helper()
	p, err := GetPersona(mode, id)
	if err != nil {
		t.Fatalf("GetPersona(%s, %s): %v", mode, id, err)
	}
	return p
}

// ---- clamp / 강제 변환 ----

func TestClampFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"in range", 7.5, 7.5},
		{"below", -3.0, 0.0},
		{"above", 15.0, 10.0},
		{"string number", "8.5", 8.5},
		{"string garbage", "높음", 0.0},
		{"nil", nil, 0.0},
		{"bool", true, 0.0},
		{"nan", math.NaN(), 0.0},
		{"pos inf", math.Inf(1), 0.0},
		{"neg inf", math.Inf(-1), 0.0},
	}
	for _, c := range cases {
		if got := clampFloat(c.in, 0, 10, 0); got != c.want {
			t.Errorf("%s: clampFloat(%v) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}

func TestNormalizeRiskLevel(t *testing.T) {
	cases := []struct {
		in   any
		want RiskLevel
	}{
		{"low", RiskLow},
		{" LOW ", RiskLow},
		{"낮음", RiskLow},
		{"중간이하", RiskLow},
		{"high", RiskHigh},
		{"높음", RiskHigh},
		{"medium", RiskMedium},
		{"보통", RiskMedium},
		{"뭔가이상한값", RiskMedium},
		{nil, RiskMedium},
		{3.0, RiskMedium},
	}
	for _, c := range cases {
		if got := normalizeRiskLevel(c.in); got != c.want {
			t.Errorf("normalizeRiskLevel(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestToStringList(t *testing.T) {
	// 스칼라/객체는 버리고, 숫자/불리언은 문자열화
	in := []any{"ok", 3.0, true, nil, map[string]any{"x": 1}, []any{"nested"}}
	got := toStringList(in)
	want := []string{"ok", "3", "true"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("toStringList = %v, want %v", got, want)
	}

	if got := toStringList("스칼라"); len(got) != 0 {
		t.Fatalf("scalar should give empty list, got %v", got)
	}
	if got := toStringList(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil should give empty non-nil list, got %v", got)
	}
}

// ---- 단일 매물 ----

func TestNormalizeSingleDefaults(t *testing.T) {
	p := testPersona(t, ModeBuy, "first_car_student")
	res := NormalizeSingle(Extracted{RawText: "원문"}, ModeBuy, p)

	if res.Mode != ModeBuy {
		t.Errorf("Mode = %v", res.Mode)
	}
	if res.PersonaID != p.ID || res.PersonaLabel != p.Label {
		t.Errorf("persona fields = %q / %q", res.PersonaID, res.PersonaLabel)
	}
	if res.FitScore != 0 {
		t.Errorf("FitScore = %v", res.FitScore)
	}
	if res.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %v", res.RiskLevel)
	}
	for name, l := range map[string][]string{
		"Highlights": res.Highlights, "Pros": res.Pros, "Cons": res.Cons,
		"Checklist": res.Checklist, "QuestionsForSeller": res.QuestionsForSeller,
	} {
		if l == nil {
			t.Errorf("%s is nil, want empty slice", name)
		}
	}
	if res.RawText != "원문" {
		t.Errorf("RawText = %q", res.RawText)
	}
	if res.ListingTitle != nil || res.ListingBody != nil {
		t.Error("buy mode must not carry listing fields")
	}
}

func TestNormalizeSingleCoercion(t *testing.T) {
	p := testPersona(t, ModeBuy, "beginner_driver")
	// fit_score는 문자열이면서 범위 초과, risk_level은 한국어 동의어
	obj := map[string]any{
		"summary":    "괜찮음",
		"fit_score":  "12.5",
		"risk_level": "낮음",
		"pros":       []any{"싸다", 1.0},
		"cons":       "스칼라는 버린다",
	}
	res := NormalizeSingle(Extracted{Object: obj}, ModeBuy, p)

	if res.FitScore != 10.0 {
		t.Errorf("FitScore = %v, want 10", res.FitScore)
	}
	if res.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %v, want low", res.RiskLevel)
	}
	if !reflect.DeepEqual(res.Pros, []string{"싸다", "1"}) {
		t.Errorf("Pros = %v", res.Pros)
	}
	if len(res.Cons) != 0 {
		t.Errorf("Cons = %v, want empty", res.Cons)
	}
}

func TestNormalizeSingleSellListingFields(t *testing.T) {
	p := testPersona(t, ModeSell, "sell_fast")

	// 모델이 listing 필드를 빼먹어도 키는 존재해야 한다 (빈 문자열)
	res := NormalizeSingle(Extracted{Object: map[string]any{"summary": "s"}}, ModeSell, p)
	if res.ListingTitle == nil || res.ListingBody == nil {
		t.Fatal("sell mode must always carry listing fields")
	}
	if *res.ListingTitle != "" || *res.ListingBody != "" {
		t.Errorf("empty listing expected, got %q / %q", *res.ListingTitle, *res.ListingBody)
	}

	res = NormalizeSingle(Extracted{Object: map[string]any{
		"listing_title": "깨끗한 아반떼 판매합니다",
		"listing_body":  "무사고 차량입니다.",
	}}, ModeSell, p)
	if *res.ListingTitle != "깨끗한 아반떼 판매합니다" {
		t.Errorf("ListingTitle = %q", *res.ListingTitle)
	}
}

func TestNormalizeSingleIdempotent(t *testing.T) {
	p := testPersona(t, ModeBuy, "enthusiast")
	obj := map[string]any{
		"summary": "ok", "fit_score": 20.0, "risk_level": "높음",
		"pros": []any{"a"},
	}
	first := NormalizeSingle(Extracted{Object: obj}, ModeBuy, p)

	// 정규화된 결과를 다시 map으로 만들어 한 번 더 돌려도 변하지 않는다
	again := map[string]any{
		"mode": string(first.Mode), "persona_id": first.PersonaID,
		"persona_label": first.PersonaLabel, "summary": first.Summary,
		"fit_score": first.FitScore, "risk_level": string(first.RiskLevel),
		"pros": anyList(first.Pros), "cons": anyList(first.Cons),
		"highlights": anyList(first.Highlights), "checklist": anyList(first.Checklist),
		"questions_for_seller": anyList(first.QuestionsForSeller),
		"recommendation":       first.Recommendation,
	}
	second := NormalizeSingle(Extracted{Object: again}, ModeBuy, p)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func anyList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ---- 여러 매물 비교 ----

func TestNormalizeMultiCandidateList(t *testing.T) {
	p := testPersona(t, ModeBuy, "family_second_car")
	obj := map[string]any{
		"summary_overall": "2번이 제일 낫다",
		"best_index":      2.0,
		"ranked_candidates": []any{
			map[string]any{"index": 1.0, "title": "아반떼", "fit_score": 6.0},
			map[string]any{"index": 2.0, "title": "쏘렌토", "fit_score": 8.5, "risk_level": "low"},
			map[string]any{"index": 3.0, "title": "모닝", "fit_score": 4.0},
		},
	}
	res := NormalizeMulti(Extracted{Object: obj}, 3, ModeBuy, p)

	if res.BestIndex != 2 {
		t.Errorf("BestIndex = %d, want 2", res.BestIndex)
	}
	// fit_score 내림차순
	scores := []float64{res.RankedCandidates[0].FitScore, res.RankedCandidates[1].FitScore, res.RankedCandidates[2].FitScore}
	if !(scores[0] >= scores[1] && scores[1] >= scores[2]) {
		t.Errorf("not sorted desc: %v", scores)
	}
	if res.RankedCandidates[0].Index != 2 {
		t.Errorf("top candidate index = %d, want 2", res.RankedCandidates[0].Index)
	}
	if res.Tradeoffs == nil {
		t.Error("Tradeoffs must be non-nil")
	}
}

func TestNormalizeMultiStableSortOnTies(t *testing.T) {
	p := testPersona(t, ModeBuy, "sales_commute")
	obj := map[string]any{
		"ranked_candidates": []any{
			map[string]any{"index": 1.0, "title": "먼저", "fit_score": 7.0},
			map[string]any{"index": 2.0, "title": "나중", "fit_score": 7.0},
		},
	}
	res := NormalizeMulti(Extracted{Object: obj}, 2, ModeBuy, p)
	if res.RankedCandidates[0].Index != 1 || res.RankedCandidates[1].Index != 2 {
		t.Fatalf("tie order changed: %d, %d", res.RankedCandidates[0].Index, res.RankedCandidates[1].Index)
	}
}

func TestNormalizeMultiBestRankingShape(t *testing.T) {
	p := testPersona(t, ModeBuy, "first_car_student")
	obj := map[string]any{
		"summary_overall": "비교 요약",
		"best": map[string]any{
			"index": 2.0, "title": "쏘나타", "fit_score": 8.0,
			"summary": "베스트 요약", "pros": []any{"편하다"},
			"risk_level": "low",
		},
		"ranking": []any{
			map[string]any{"index": 1.0, "title": "아반떼", "fit_score": 6.0},
			map[string]any{"index": 2.0, "title": "쏘나타", "fit_score": 8.0},
		},
	}
	res := NormalizeMulti(Extracted{Object: obj}, 2, ModeBuy, p)

	if res.BestIndex != 2 {
		t.Errorf("BestIndex = %d, want 2 (from best.index)", res.BestIndex)
	}
	if len(res.RankedCandidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(res.RankedCandidates))
	}
	top := res.RankedCandidates[0]
	if top.Index != 2 {
		t.Fatalf("top index = %d, want 2", top.Index)
	}
	// best의 서술 필드가 ranking 항목으로 합쳐진다
	if top.Summary != "베스트 요약" {
		t.Errorf("merged summary = %q", top.Summary)
	}
	if !reflect.DeepEqual(top.Pros, []string{"편하다"}) {
		t.Errorf("merged pros = %v", top.Pros)
	}
	if top.RiskLevel != RiskLow {
		t.Errorf("merged risk = %v", top.RiskLevel)
	}
	// 최상위 risk_level이 없으므로 best에서 빌린다
	if res.RiskLevel != RiskLow {
		t.Errorf("overall risk = %v, want low (borrowed)", res.RiskLevel)
	}
}

func TestNormalizeMultiRankingEntryWinsOverBest(t *testing.T) {
	p := testPersona(t, ModeBuy, "first_car_student")
	obj := map[string]any{
		"best": map[string]any{"index": 1.0, "summary": "best쪽 요약"},
		"ranking": []any{
			map[string]any{"index": 1.0, "summary": "ranking쪽 요약", "fit_score": 5.0},
		},
	}
	res := NormalizeMulti(Extracted{Object: obj}, 1, ModeBuy, p)
	if res.RankedCandidates[0].Summary != "ranking쪽 요약" {
		t.Fatalf("entry value must win over best: %q", res.RankedCandidates[0].Summary)
	}
}

func TestNormalizeMultiBestOnlyNoRanking(t *testing.T) {
	p := testPersona(t, ModeSell, "sell_best_price")
	obj := map[string]any{
		"best": map[string]any{
			"index": 3.0, "title": "그랜저", "fit_score": 9.0,
			"questions_for_seller": []any{"q1", "q2", "q3", "q4"},
		},
	}
	res := NormalizeMulti(Extracted{Object: obj}, 3, ModeSell, p)

	if len(res.RankedCandidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(res.RankedCandidates))
	}
	c := res.RankedCandidates[0]
	if c.Index != 3 {
		t.Errorf("index = %d", c.Index)
	}
	// 체크리스트 백필: 판매자 질문 앞 3개
	if !reflect.DeepEqual(c.Checklist, []string{"q1", "q2", "q3"}) {
		t.Errorf("checklist backfill = %v", c.Checklist)
	}
	if res.BestIndex != 3 {
		t.Errorf("BestIndex = %d, want 3", res.BestIndex)
	}
}

func TestNormalizeMultiBestIndexClamped(t *testing.T) {
	p := testPersona(t, ModeBuy, "beginner_driver")

	// 범위 초과 → 상한으로
	res := NormalizeMulti(Extracted{Object: map[string]any{"best_index": 99.0}}, 3, ModeBuy, p)
	if res.BestIndex != 3 {
		t.Errorf("BestIndex = %d, want 3", res.BestIndex)
	}
	// 0/음수 → 1
	res = NormalizeMulti(Extracted{Object: map[string]any{"best_index": -2.0}}, 3, ModeBuy, p)
	if res.BestIndex != 1 {
		t.Errorf("BestIndex = %d, want 1", res.BestIndex)
	}
	// 아예 없음 → 1
	res = NormalizeMulti(Extracted{Object: map[string]any{"summary_overall": "x"}}, 3, ModeBuy, p)
	if res.BestIndex != 1 {
		t.Errorf("BestIndex = %d, want 1", res.BestIndex)
	}
}

func TestNormalizeMultiCandidateIndexClamped(t *testing.T) {
	p := testPersona(t, ModeBuy, "enthusiast")
	// 첫 항목은 index 범위 초과, 둘째는 index 누락 (위치+1로 대체)
	obj := map[string]any{
		"ranked_candidates": []any{
			map[string]any{"index": 7.0, "fit_score": 5.0},
			map[string]any{"title": "번호 없음", "fit_score": 3.0},
		},
	}
	res := NormalizeMulti(Extracted{Object: obj}, 2, ModeBuy, p)
	if res.RankedCandidates[0].Index != 2 {
		t.Errorf("clamped index = %d, want 2", res.RankedCandidates[0].Index)
	}
	if res.RankedCandidates[1].Index != 2 {
		t.Errorf("positional index = %d, want 2", res.RankedCandidates[1].Index)
	}
}

func TestNormalizeMultiUnstructuredFallback(t *testing.T) {
	p := testPersona(t, ModeBuy, "first_car_student")
	res := NormalizeMulti(Extracted{RawText: "모델이 JSON을 안 줬다"}, 4, ModeBuy, p)

	if len(res.RankedCandidates) != 0 {
		t.Errorf("candidates = %v, want empty", res.RankedCandidates)
	}
	if res.BestIndex != 1 {
		t.Errorf("BestIndex = %d, want 1", res.BestIndex)
	}
	if res.RawText == "" {
		t.Error("RawText must carry the fallback")
	}
	if res.RiskLevel != "" {
		t.Errorf("RiskLevel = %q, want empty (nothing to borrow)", res.RiskLevel)
	}
}

func TestNormalizeMultiTradeoffs(t *testing.T) {
	p := testPersona(t, ModeBuy, "first_car_student")

	res := NormalizeMulti(Extracted{Object: map[string]any{
		"tradeoffs": []any{"가격 vs 연식", 3.0},
	}}, 1, ModeBuy, p)
	if !reflect.DeepEqual(res.Tradeoffs, []string{"가격 vs 연식", "3"}) {
		t.Errorf("Tradeoffs = %v", res.Tradeoffs)
	}

	// 스칼라 → 단일 원소
	res = NormalizeMulti(Extracted{Object: map[string]any{"tradeoffs": "한 줄"}}, 1, ModeBuy, p)
	if !reflect.DeepEqual(res.Tradeoffs, []string{"한 줄"}) {
		t.Errorf("Tradeoffs = %v", res.Tradeoffs)
	}

	// null → 빈 리스트
	res = NormalizeMulti(Extracted{Object: map[string]any{"tradeoffs": nil}}, 1, ModeBuy, p)
	if res.Tradeoffs == nil || len(res.Tradeoffs) != 0 {
		t.Errorf("Tradeoffs = %v, want empty", res.Tradeoffs)
	}
}

func TestNormalizeMultiVehicleCountFloor(t *testing.T) {
	p := testPersona(t, ModeBuy, "first_car_student")
	res := NormalizeMulti(Extracted{Object: map[string]any{"best_index": 5.0}}, 0, ModeBuy, p)
	if res.BestIndex != 1 {
		t.Fatalf("BestIndex = %d, want 1 (vehicleCount floored to 1)", res.BestIndex)
	}
}
