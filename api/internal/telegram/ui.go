package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"encar-copilot/api/internal/advisor"
)

// 페르소나 선택 인라인 키보드 (한 줄에 버튼 하나, 라벨이 길어서).
func makePersonaKeyboard(mode advisor.Mode) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range advisor.Personas(mode) {
		btn := tgbotapi.NewInlineKeyboardButtonData(p.Label, "persona:"+p.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Markdown 특수문자 최소 이스케이프.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}

func riskLabel(r advisor.RiskLevel) string {
	switch r {
	case advisor.RiskLow:
		return "🟢 낮음"
	case advisor.RiskHigh:
		return "🔴 높음"
	default:
		return "🟡 보통"
	}
}

func bulletList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n*" + title + "*\n")
	for _, it := range items {
		b.WriteString("· " + esc(it) + "\n")
	}
}

func formatSingle(res advisor.SingleResult) string {
	if res.RawText != "" && res.Summary == "" {
		// JSON 복구 실패 → 원문 그대로 보여준다
		return "⚠️ 결과를 구조화하지 못했어요. 모델 응답 원문:\n\n" + esc(res.RawText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* 관점 분석\n", esc(res.PersonaLabel))
	fmt.Fprintf(&b, "적합도 %.1f / 10 · 리스크 %s\n", res.FitScore, riskLabel(res.RiskLevel))
	if res.Summary != "" {
		b.WriteString("\n" + esc(res.Summary) + "\n")
	}
	bulletList(&b, "포인트", res.Highlights)
	bulletList(&b, "장점", res.Pros)
	bulletList(&b, "주의", res.Cons)
	bulletList(&b, "체크리스트", res.Checklist)
	bulletList(&b, "판매자에게 물어보기", res.QuestionsForSeller)
	if res.Recommendation != "" {
		b.WriteString("\n*한 줄 조언*\n" + esc(res.Recommendation) + "\n")
	}
	if res.ListingTitle != nil && *res.ListingTitle != "" {
		b.WriteString("\n*판매글 제목*\n" + esc(*res.ListingTitle) + "\n")
	}
	if res.ListingBody != nil && *res.ListingBody != "" {
		b.WriteString("\n*판매글 본문*\n" + esc(*res.ListingBody) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMulti(res advisor.MultiResult) string {
	if res.RawText != "" && res.SummaryOverall == "" && len(res.RankedCandidates) == 0 {
		return "⚠️ 결과를 구조화하지 못했어요. 모델 응답 원문:\n\n" + esc(res.RawText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* 관점 비교\n", esc(res.PersonaLabel))
	if res.SummaryOverall != "" {
		b.WriteString("\n" + esc(res.SummaryOverall) + "\n")
	}
	for rank, c := range res.RankedCandidates {
		marker := "  "
		if c.Index == res.BestIndex {
			marker = "⭐"
		}
		fmt.Fprintf(&b, "\n%s %d위 — [매물 %d] %s (%.1f점, %s)\n",
			marker, rank+1, c.Index, esc(c.Title), c.FitScore, riskLabel(c.RiskLevel))
		if c.Summary != "" {
			b.WriteString(esc(c.Summary) + "\n")
		}
		bulletList(&b, "장점", c.Pros)
		bulletList(&b, "주의", c.Cons)
		bulletList(&b, "확인할 것", c.Checklist)
	}
	bulletList(&b, "트레이드오프", res.Tradeoffs)
	return strings.TrimRight(b.String(), "\n")
}
