// Package assistant отвечает на вопросы персонала по текущим цифрам клуба.
// Модель вызывается только с сервера, ключ в браузер не попадает.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/service"
	finance_service "gym-panel/internal/service/finance"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var ErrDisabled = errors.New("ассистент отключен: не задан GEMINI_API_KEY")

const maxQuestionLength = 2000

const systemPrompt = `Ты помощник администратора спортивного клуба.
Отвечай кратко, по-русски, в markdown. Опирайся только на цифры из сводки.
Если данных не хватает, так и скажи.`

// Generator превращает промпт в текст ответа
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать клиент Gemini: %w", err)
	}
	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Answer ответ ассистента: исходный markdown и готовый HTML
type Answer struct {
	Markdown string        `json:"markdown"`
	HTML     template.HTML `json:"html"`
}

type Assistant struct {
	gen     Generator
	finance service.FinanceService
	logger  *zap.Logger
	now     func() time.Time
}

// New gen == nil означает, что ассистент выключен.
func New(gen Generator, finance service.FinanceService, logger *zap.Logger) *Assistant {
	return &Assistant{
		gen:     gen,
		finance: finance,
		logger:  logger,
		now:     time.Now,
	}
}

func (a *Assistant) Enabled() bool {
	return a.gen != nil
}

func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, service.Invalid("question", "задайте вопрос")
	}
	if len([]rune(question)) > maxQuestionLength {
		return nil, service.Invalid("question", "вопрос слишком длинный")
	}

	from, to := finance_service.MonthBounds(a.now())
	summary, err := a.finance.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	md, err := a.gen.Generate(ctx, BuildPrompt(question, summary))
	if err != nil {
		a.logger.Error("Ошибка запроса к Gemini", zap.Error(err))
		return nil, fmt.Errorf("ассистент: %w", err)
	}

	html, err := RenderMarkdown(md)
	if err != nil {
		return nil, err
	}
	return &Answer{Markdown: md, HTML: html}, nil
}

// BuildPrompt кладет в промпт текстовую сводку за период и вопрос.
func BuildPrompt(question string, sum *models.FinanceSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Сводка за период %s - %s:\n",
		sum.From.Format("02.01.2006"), sum.To.AddDate(0, 0, -1).Format("02.01.2006"))
	fmt.Fprintf(&b, "- доход: %.2f (платежей: %d)\n", sum.Income, sum.PaymentsCount)
	fmt.Fprintf(&b, "- возвраты: %.2f (%.1f%% дохода)\n", sum.Refunds, sum.RefundPercent)
	fmt.Fprintf(&b, "- расходы: %.2f (%.1f%% дохода)\n", sum.Expenses, sum.ExpensePercent)
	fmt.Fprintf(&b, "- оклады тренеров: %.2f\n", sum.Salaries)
	fmt.Fprintf(&b, "- выплаты за PT: %.2f\n", sum.PTPayouts)
	fmt.Fprintf(&b, "- чистая прибыль: %.2f (рентабельность %.1f%%)\n", sum.Net, sum.ProfitMargin)
	for _, s := range sum.IncomeByMethod {
		fmt.Fprintf(&b, "- доход, %s: %.2f (%.1f%%)\n", s.Label, s.Amount, s.Percent)
	}
	for _, s := range sum.ExpensesByCat {
		fmt.Fprintf(&b, "- расходы, %s: %.2f (%.1f%%)\n", s.Label, s.Amount, s.Percent)
	}
	for _, p := range sum.CoachPayouts {
		fmt.Fprintf(&b, "- PT %s: %d занятий, %.2f\n", p.CoachName, p.Sessions, p.Amount)
	}
	b.WriteString("\nВопрос: ")
	b.WriteString(question)
	return b.String()
}

// сырой HTML в ответе модели экранируется: WithUnsafe не включаем
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func RenderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
