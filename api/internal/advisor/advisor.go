package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Advisor는 프롬프트 빌더 → 엔진 → 추출기 → 정규화기 파이프라인을
// 묶는 진입점이다. 엔진 호출 실패만 에러로 전파되고, 추출/정규화는
// 어떤 모델 출력에도 실패하지 않는다.

var ErrNoVehicles = errors.New("advisor: vehicle list is empty")

// 생성 한도. 멀티 프롬프트는 512 토큰 안에 응답이 끝나도록
// 압축되어 있다.
const defaultMaxNewTokens = 512

type Advisor struct {
	eng Engine
}

func New(eng Engine) *Advisor {
	return &Advisor{eng: eng}
}

func (a *Advisor) Engine() Engine { return a.eng }

// AdviseSingle — 단일 매물 진입점.
func (a *Advisor) AdviseSingle(ctx context.Context, vehicle VehicleRecord, personaID string, mode Mode, userNote string) (SingleResult, error) {
	persona, err := GetPersona(mode, personaID)
	if err != nil {
		return SingleResult{}, err
	}

	prompt := BuildPrompt(vehicle, persona, userNote)
	raw, err := a.eng.Generate(ctx, SystemPrompt, prompt, GenerateOptions{
		MaxNewTokens: defaultMaxNewTokens,
		Temperature:  0,
	})
	if err != nil {
		return SingleResult{}, fmt.Errorf("advisor: generate: %w", err)
	}
	log.Printf("advise single: engine=%s model=%s raw_len=%d", a.eng.Name(), a.eng.GetModel(), len(raw))

	ext := Extract(raw)
	return NormalizeSingle(ext, mode, persona), nil
}

// AdviseMulti — 여러 매물 비교 진입점. 빈 목록은 ErrNoVehicles.
func (a *Advisor) AdviseMulti(ctx context.Context, vehicles []VehicleRecord, personaID string, mode Mode, userNote string) (MultiResult, error) {
	if len(vehicles) == 0 {
		return MultiResult{}, ErrNoVehicles
	}
	persona, err := GetPersona(mode, personaID)
	if err != nil {
		return MultiResult{}, err
	}

	prompt := BuildMultiPrompt(vehicles, persona, userNote)
	raw, err := a.eng.Generate(ctx, SystemPrompt, prompt, GenerateOptions{
		MaxNewTokens: defaultMaxNewTokens,
		Temperature:  0,
	})
	if err != nil {
		return MultiResult{}, fmt.Errorf("advisor: generate: %w", err)
	}
	log.Printf("advise multi: engine=%s model=%s vehicles=%d raw_len=%d", a.eng.Name(), a.eng.GetModel(), len(vehicles), len(raw))

	ext := Extract(raw)
	return NormalizeMulti(ext, len(vehicles), mode, persona), nil
}
