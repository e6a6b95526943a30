package advisor

// Mode — 구매자/판매자 중 어느 입장에서 보는지.
type Mode string

const (
	ModeBuy  Mode = "buy"
	ModeSell Mode = "sell"
)

// VehicleRecord — 매물 한 건의 개방형 구조. 코어는 필드를 검증하지 않고
// 호출자가 준 그대로 프롬프트에 넣는다.
type VehicleRecord map[string]any

// Extracted — 모델 원문에서 JSON을 추출한 결과.
// Object != nil 이면 결과처럼 생긴 객체를 복구한 것이고,
// 아니면 RawText에 정리된 원문 전체가 들어간다.
type Extracted struct {
	Object  map[string]any
	RawText string
}

// Recovered reports whether extraction produced a structured object.
func (e Extracted) Recovered() bool { return e.Object != nil }

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SingleResult — 단일 매물에 대한 정규화 완료 결과.
// 정규화 후에는 fit_score ∈ [0,10], risk_level은 세 값 중 하나,
// 리스트 필드는 절대 nil이 아니다.
type SingleResult struct {
	Mode         Mode      `json:"mode"`
	PersonaID    string    `json:"persona_id"`
	PersonaLabel string    `json:"persona_label"`
	Summary      string    `json:"summary"`
	FitScore     float64   `json:"fit_score"`
	RiskLevel    RiskLevel `json:"risk_level"`

	Highlights         []string `json:"highlights"`
	Pros               []string `json:"pros"`
	Cons               []string `json:"cons"`
	Checklist          []string `json:"checklist"`
	QuestionsForSeller []string `json:"questions_for_seller"`
	Recommendation     string   `json:"recommendation"`

	// mode=sell 전용. 포인터인 이유: buy에서는 키 자체가 빠지고,
	// sell에서는 빈 문자열이라도 직렬화되어야 한다.
	ListingTitle *string `json:"listing_title,omitempty"`
	ListingBody  *string `json:"listing_body,omitempty"`

	// JSON 추출에 실패했을 때의 모델 원문.
	RawText string `json:"raw_text,omitempty"`
}

// RankedCandidate — 비교 결과의 한 항목.
// Index는 입력 매물 목록에서의 번호(1-based)이며, 정렬 후 배열 위치와는
// 무관하다.
type RankedCandidate struct {
	Index              int       `json:"index"`
	Title              string    `json:"title"`
	Summary            string    `json:"summary"`
	Pros               []string  `json:"pros"`
	Cons               []string  `json:"cons"`
	Checklist          []string  `json:"checklist"`
	QuestionsForSeller []string  `json:"questions_for_seller"`
	FitScore           float64   `json:"fit_score"`
	RiskLevel          RiskLevel `json:"risk_level"`
	WhySuitable        string    `json:"why_suitable"`
}

// MultiResult — 여러 매물 비교의 정규화 완료 결과.
// RankedCandidates는 fit_score 내림차순(stable), BestIndex는 항상
// [1, vehicleCount] 범위.
type MultiResult struct {
	Mode           Mode   `json:"mode"`
	PersonaID      string `json:"persona_id"`
	PersonaLabel   string `json:"persona_label"`
	SummaryOverall string `json:"summary_overall"`

	Tradeoffs []string `json:"tradeoffs"`

	// UI 캡션용 종합 리스크. 모델이 최상위에 주지 않으면 best에서 빌린다.
	// 둘 다 없으면 빈 값.
	RiskLevel RiskLevel `json:"risk_level,omitempty"`

	BestIndex        int               `json:"best_index"`
	RankedCandidates []RankedCandidate `json:"ranked_candidates"`

	RawText string `json:"raw_text,omitempty"`
}
