package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gym-panel/internal/assistant"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"go.uber.org/zap"
)

type financeData struct {
	Period  period
	Summary *models.FinanceSummary
}

// FinancePage сводка доходов и расходов за период
func (h *Handler) FinancePage(w http.ResponseWriter, r *http.Request) {
	p := h.periodFrom(r)
	sum, err := h.svc.Finance.Summary(r.Context(), p.From, p.To)
	if err != nil {
		h.logger.Error("Ошибка расчета сводки", zap.Error(err))
		http.Error(w, "Не удалось посчитать сводку", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "finance.html", page{
		Title:  "Финансы",
		Active: "finance",
		Tables: []string{repository.TablePayments, repository.TableRefunds, repository.TableExpenses, repository.TablePTSessions},
		Data:   financeData{Period: p, Summary: sum},
	})
}

// FinanceExport та же сводка в xlsx
func (h *Handler) FinanceExport(w http.ResponseWriter, r *http.Request) {
	p := h.periodFrom(r)
	filename := fmt.Sprintf("finance_%s_%s.xlsx", p.From.Format("2006-01-02"), p.LastDay().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := h.svc.Finance.Export(r.Context(), p.From, p.To, w); err != nil {
		h.logger.Error("Ошибка выгрузки xlsx", zap.Error(err))
		http.Error(w, "Не удалось выгрузить отчет", http.StatusInternalServerError)
	}
}

type assistantData struct {
	Enabled bool
}

func (h *Handler) AssistantPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "assistant.html", page{
		Title:  "Ассистент",
		Active: "assistant",
		Data:   assistantData{Enabled: h.assistant != nil && h.assistant.Enabled()},
	})
}

type askRequest struct {
	Question string `json:"question"`
}

// AskAssistant JSON: {"question": "..."} -> {"markdown", "html"}
func (h *Handler) AskAssistant(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "неверный запрос"})
		return
	}
	if h.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": assistant.ErrDisabled.Error()})
		return
	}

	answer, err := h.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, assistant.ErrDisabled):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message})
		default:
			h.logger.Error("Ошибка ассистента", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "ассистент сейчас недоступен"})
		}
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
