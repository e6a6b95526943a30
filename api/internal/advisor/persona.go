package advisor

import (
	"errors"
	"fmt"
)

// Persona — 매물을 보는 사람의 상황/목적/성향. 프로세스 시작 시 고정
// 테이블로 만들어지고 이후 변경되지 않는다.
type Persona struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Mode        Mode   `json:"mode"`
	Description string `json:"description"`
}

var ErrPersonaNotFound = errors.New("advisor: persona not found")

var buyPersonas = map[string]Persona{
	"first_car_student": {
		ID:    "first_car_student",
		Label: "첫 차 사는 대학생",
		Mode:  ModeBuy,
		Description: "운전 경력은 많지 않고, 첫 차를 구매하는 대학생이다. " +
			"예산이 넉넉하지 않고, 유지비와 보험료, 주차 난이도가 중요하다. " +
			"안전성과 기본적인 편의 기능은 중요하지만, 고급 옵션이나 출력은 덜 중요하다.",
	},
	"beginner_driver": {
		ID:    "beginner_driver",
		Label: "초보 운전자",
		Mode:  ModeBuy,
		Description: "운전 경력이 짧아 차 폭/길이, 시야, 주차 편의성이 중요하다. " +
			"큰 사고 이력이나 수리비가 많이 나올 수 있는 차량은 피하고 싶다. " +
			"운전이 편하고 실수해도 크게 위험하지 않은 차를 선호한다.",
	},
	"family_second_car": {
		ID:    "family_second_car",
		Label: "가족용 세컨카(30대)",
		Mode:  ModeBuy,
		Description: "아이를 포함한 가족이 함께 타는 세컨카를 찾는 30대 가장/부부다. " +
			"뒷좌석 공간, 유아용 카시트 장착(ISOFIX), 트렁크 적재 공간, 승차감, 안전장비가 매우 중요하다. " +
			"고속 주행 성능보다 편안함과 안전, 유지비의 합리성을 중시한다.",
	},
	"sales_commute": {
		ID:    "sales_commute",
		Label: "영업/출퇴근용",
		Mode:  ModeBuy,
		Description: "하루 평균 주행거리가 길고, 고속도로/시외도로를 자주 타는 직장인 혹은 영업사원이다. " +
			"연비, 내구성, 고속 주행 안정성, 정비 편의성이 매우 중요하다. " +
			"실내 소음/진동도 장거리 피로도에 영향을 준다.",
	},
	"enthusiast": {
		ID:    "enthusiast",
		Label: "차 좀 아는 사람(고수 모드)",
		Mode:  ModeBuy,
		Description: "차량에 대한 지식이 어느 정도 있고, 옵션/트림/사고 이력/감가 등을 세밀하게 본다. " +
			"단순교환과 구조부 손상, 전손/침수, 수리 이력 차이를 구분할 줄 알고, " +
			"시세 대비 메리트가 있는지, 향후 되팔 때 감가까지 고려한다.",
	},
}

var sellPersonas = map[string]Persona{
	"sell_fast": {
		ID:    "sell_fast",
		Label: "빨리 팔고 싶은 사람",
		Mode:  ModeSell,
		Description: "최대한 빠르게 차량을 처분하는 것이 1순위인 판매자다. " +
			"약간의 금전적 손해는 감수할 수 있지만, " +
			"복잡한 협상/네고/직거래 과정은 피하고 싶어 한다.",
	},
	"sell_best_price": {
		ID:    "sell_best_price",
		Label: "제값 이상 받고 싶은 사람",
		Mode:  ModeSell,
		Description: "시간이 조금 더 걸리더라도, 차량 상태/옵션을 잘 어필해서 " +
			"가능한 한 높은 가격으로 판매하고 싶은 판매자다. " +
			"사진과 설명을 공들여 쓰는 것은 괜찮지만, 과장/허위는 피하고 싶다.",
	},
	"sell_easy": {
		ID:    "sell_easy",
		Label: "귀찮은 거 최소화",
		Mode:  ModeSell,
		Description: "서류/탁송/네고 등 복잡한 과정을 최소화하고 싶다. " +
			"가격은 어느 정도만 합리적이면 되고, 내 시간을 많이 쓰고 싶지 않은 판매자다.",
	},
	"sell_safe": {
		ID:    "sell_safe",
		Label: "안전/분쟁 최소화 우선",
		Mode:  ModeSell,
		Description: "나중에 분쟁이 생기지 않도록 사실 기반으로 솔직하게 판매하고 싶다. " +
			"사고 이력/수리 이력을 숨기고 싶지 않고, " +
			"계약 조건과 책임 범위를 명확히 하고 싶어 한다.",
	},
}

// GetPersona는 (mode, id)에 해당하는 페르소나를 돌려준다.
// 해당 모드 테이블에 id가 없으면 ErrPersonaNotFound.
func GetPersona(mode Mode, id string) (Persona, error) {
	table := buyPersonas
	if mode == ModeSell {
		table = sellPersonas
	}
	p, ok := table[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: mode=%s id=%q", ErrPersonaNotFound, mode, id)
	}
	return p, nil
}

// Personas는 모드별 전체 페르소나 목록을 고정된 순서로 돌려준다.
// UI에서 선택지 렌더링용.
func Personas(mode Mode) []Persona {
	table := buyPersonas
	if mode == ModeSell {
		table = sellPersonas
	}
	out := make([]Persona, 0, len(table))
	for _, id := range personaOrder(mode) {
		out = append(out, table[id])
	}
	return out
}

// personaOrder — 선택지 표시 순서 고정용 (map 순회는 비결정적이라).
func personaOrder(mode Mode) []string {
	if mode == ModeSell {
		return []string{"sell_fast", "sell_best_price", "sell_easy", "sell_safe"}
	}
	return []string{"first_car_student", "beginner_driver", "family_second_car", "sales_commute", "enthusiast"}
}
