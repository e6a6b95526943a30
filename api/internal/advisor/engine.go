package advisor

import (
	"context"
	"sync"
)

// GenerateOptions — 생성 파라미터. ModelOverride가 비어 있으면 엔진의
// 기본 모델을 쓴다.
type GenerateOptions struct {
	MaxNewTokens  int
	Temperature   float32
	ModelOverride string
}

// Engine — 모델 게이트웨이. 프롬프트를 받아 원문 텍스트를 돌려주는
// 블랙박스다. 코어는 재시도/타임아웃을 걸지 않는다; 데드라인은 ctx로
// 호출자가 소유한다.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, system, prompt string, opt GenerateOptions) (string, error)
}

// Manager — chatID별 엔진 선택 (봇의 /engine 전환용).
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
