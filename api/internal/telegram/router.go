package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"encar-copilot/api/internal/advisor"
	"encar-copilot/api/internal/store"
	"encar-copilot/api/internal/util"
)

// Engines — 봇이 전환할 수 있는 게이트웨이 구현들.
type Engines struct {
	Midm   advisor.Engine
	Gemini advisor.Engine
}

type Router struct {
	Bot        *tgbotapi.BotAPI
	EngManager *advisor.Manager
	Engines    Engines

	// 결과 캐시. nil이면 캐시 없이 매번 생성한다.
	AdviceRepo *store.AdviceRepo
}

const adviseTimeout = 180 * time.Second
const cacheMaxAge = 24 * time.Hour

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("send error: %v", err)
	}
}

func (r *Router) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		// Markdown 파싱 실패 등은 평문으로 재시도
		plain := tgbotapi.NewMessage(chatID, text)
		if _, err2 := r.Bot.Send(plain); err2 != nil {
			log.Printf("send error: %v (markdown: %v)", err2, err)
		}
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.handleCommand(upd)
		return
	}
	if txt := strings.TrimSpace(upd.Message.Text); txt != "" {
		r.handleListing(upd.Message.Chat.ID, txt)
	}
}

func (r *Router) handleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	sess := getSession(cid)

	switch upd.Message.Command() {
	case "start":
		r.send(cid, "중고차 코파일럿 봇입니다.\n"+
			"1) /mode buy 또는 /mode sell\n"+
			"2) /persona 로 상황 선택\n"+
			"3) (선택) /note 예산은 1500만원 이하\n"+
			"4) 매물 JSON을 메시지로 보내면 분석해 드려요. 배열이면 여러 매물 비교.\n"+
			"기타: /engine midm|gemini, /health")
	case "health":
		r.send(cid, "✅ OK")
	case "mode":
		arg := strings.ToLower(strings.TrimSpace(upd.Message.CommandArguments()))
		switch arg {
		case "buy":
			sess.setMode(advisor.ModeBuy)
			r.send(cid, "구매자 모드로 전환했어요. /persona 로 상황을 골라주세요.")
		case "sell":
			sess.setMode(advisor.ModeSell)
			r.send(cid, "판매자 모드로 전환했어요. /persona 로 상황을 골라주세요.")
		default:
			mode, _, _ := sess.snapshot()
			r.send(cid, "현재 모드: "+string(mode)+"\n사용법: /mode buy 또는 /mode sell")
		}
	case "persona":
		mode, _, _ := sess.snapshot()
		msg := tgbotapi.NewMessage(cid, "어떤 상황에 가까운가요?")
		msg.ReplyMarkup = makePersonaKeyboard(mode)
		if _, err := r.Bot.Send(msg); err != nil {
			log.Printf("send error: %v", err)
		}
	case "note":
		note := strings.TrimSpace(upd.Message.CommandArguments())
		sess.setNote(note)
		if note == "" {
			r.send(cid, "메모를 지웠어요.")
		} else if advisor.HasBudget(note) {
			r.send(cid, "메모 저장. 예산 조건으로 인식했어요: "+note)
		} else {
			r.send(cid, "메모 저장: "+note)
		}
	case "engine":
		arg := strings.ToLower(strings.TrimSpace(upd.Message.CommandArguments()))
		switch arg {
		case "midm":
			r.EngManager.Set(cid, r.Engines.Midm)
			r.send(cid, "엔진을 midm으로 전환했어요.")
		case "gemini":
			r.EngManager.Set(cid, r.Engines.Gemini)
			r.send(cid, "엔진을 gemini로 전환했어요.")
		case "":
			r.send(cid, "현재 엔진: "+r.EngManager.Get(cid).Name()+"\n사용법: /engine midm 또는 /engine gemini")
		default:
			r.send(cid, "모르는 엔진이에요. 사용 가능: midm | gemini")
		}
	default:
		r.send(cid, "모르는 명령이에요. /start 를 참고하세요.")
	}
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	data := cb.Data

	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack error: %v", err)
	}

	if id, ok := strings.CutPrefix(data, "persona:"); ok {
		sess := getSession(cid)
		mode, _, _ := sess.snapshot()
		p, err := advisor.GetPersona(mode, id)
		if err != nil {
			r.send(cid, "그 페르소나는 지금 모드에 없어요. /persona 로 다시 골라주세요.")
			return
		}
		sess.setPersona(p.ID)
		r.send(cid, "선택: "+p.Label+"\n이제 매물 JSON을 보내주세요. 배열이면 여러 매물을 비교해요.")
	}
}

// handleListing은 메시지 본문을 매물 JSON으로 해석해 분석을 돌린다.
// 객체면 단일 분석, 배열이면 비교 분석.
func (r *Router) handleListing(cid int64, text string) {
	sess := getSession(cid)
	mode, personaID, note := sess.snapshot()
	if personaID == "" {
		r.send(cid, "먼저 /persona 로 상황을 골라주세요.")
		return
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		r.send(cid, "매물 JSON을 읽지 못했어요: "+err.Error()+
			"\n{\"title\": ..., \"price_krw\": ...} 형태의 JSON을 보내주세요.")
		return
	}

	eng := r.EngManager.Get(cid)
	adv := advisor.New(eng)

	ctx, cancel := context.WithTimeout(context.Background(), adviseTimeout)
	defer cancel()

	cacheKey := util.SHA256Hex([]byte(string(mode) + "|" + personaID + "|" + note + "|" + text))

	switch v := parsed.(type) {
	case map[string]any:
		if cached, ok := r.findCached(ctx, cacheKey, eng, store.KindSingle); ok {
			var res advisor.SingleResult
			if json.Unmarshal(cached, &res) == nil {
				r.sendMarkdown(cid, formatSingle(res))
				return
			}
		}
		r.send(cid, "분석 중이에요. 잠시만요...")
		res, err := adv.AdviseSingle(ctx, advisor.VehicleRecord(v), personaID, mode, note)
		if err != nil {
			r.send(cid, "분석에 실패했어요: "+err.Error())
			return
		}
		r.upsertCached(cacheKey, eng, store.KindSingle, res)
		r.sendMarkdown(cid, formatSingle(res))

	case []any:
		vehicles := make([]advisor.VehicleRecord, 0, len(v))
		for _, el := range v {
			if m, ok := el.(map[string]any); ok {
				vehicles = append(vehicles, advisor.VehicleRecord(m))
			}
		}
		if len(vehicles) == 0 {
			r.send(cid, "배열 안에 매물 객체가 없어요.")
			return
		}
		if cached, ok := r.findCached(ctx, cacheKey, eng, store.KindMulti); ok {
			var res advisor.MultiResult
			if json.Unmarshal(cached, &res) == nil {
				r.sendMarkdown(cid, formatMulti(res))
				return
			}
		}
		r.send(cid, "매물 비교 중이에요. 잠시만요...")
		res, err := adv.AdviseMulti(ctx, vehicles, personaID, mode, note)
		if err != nil {
			r.send(cid, "비교에 실패했어요: "+err.Error())
			return
		}
		r.upsertCached(cacheKey, eng, store.KindMulti, res)
		r.sendMarkdown(cid, formatMulti(res))

	default:
		r.send(cid, "JSON 객체(단일 매물) 또는 배열(여러 매물)을 보내주세요.")
	}
}

func (r *Router) findCached(ctx context.Context, key string, eng advisor.Engine, kind string) (json.RawMessage, bool) {
	if r.AdviceRepo == nil {
		return nil, false
	}
	js, err := r.AdviceRepo.Find(ctx, key, eng.Name(), eng.GetModel(), kind, cacheMaxAge)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("advice cache find: %v", err)
		}
		return nil, false
	}
	return js, true
}

func (r *Router) upsertCached(key string, eng advisor.Engine, kind string, result any) {
	if r.AdviceRepo == nil {
		return
	}
	// 캐시 저장은 베스트에포트. 응답 경로를 막지 않는다.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.AdviceRepo.Upsert(ctx, key, eng.Name(), eng.GetModel(), kind, result); err != nil {
		log.Printf("advice cache upsert: %v", err)
	}
}
