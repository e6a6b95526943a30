package telegram

import (
	"sync"

	"encar-copilot/api/internal/advisor"
)

// 채팅별 대화 상태. 모드/페르소나/메모를 골라두면 이후 보내는 매물
// JSON에 계속 적용된다.
type session struct {
	mu        sync.Mutex
	mode      advisor.Mode
	personaID string
	note      string
}

var sessions sync.Map // chatID -> *session

func getSession(chatID int64) *session {
	if v, ok := sessions.Load(chatID); ok {
		return v.(*session)
	}
	s := &session{mode: advisor.ModeBuy}
	actual, _ := sessions.LoadOrStore(chatID, s)
	return actual.(*session)
}

func (s *session) snapshot() (advisor.Mode, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.personaID, s.note
}

func (s *session) setMode(m advisor.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	// 모드가 바뀌면 페르소나는 다시 골라야 한다 (테이블이 다르다).
	s.personaID = ""
}

func (s *session) setPersona(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personaID = id
}

func (s *session) setNote(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = note
}
