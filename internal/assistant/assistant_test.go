package assistant

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	prompt string
	answer string
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.answer, g.err
}

type stubFinance struct {
	from, to time.Time
}

func (f *stubFinance) Summary(_ context.Context, from, to time.Time) (*models.FinanceSummary, error) {
	f.from, f.to = from, to
	return &models.FinanceSummary{From: from, To: to, Income: 12500, PaymentsCount: 4}, nil
}

func (f *stubFinance) Export(context.Context, time.Time, time.Time, io.Writer) error {
	return nil
}

func TestAskDisabledWithoutKey(t *testing.T) {
	a := New(nil, &stubFinance{}, zap.NewNop())
	assert.False(t, a.Enabled())

	_, err := a.Ask(context.Background(), "сколько заработали?")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestAskSendsCurrentMonthSummary(t *testing.T) {
	gen := &stubGenerator{answer: "**Доход** 12500"}
	fin := &stubFinance{}
	a := New(gen, fin, zap.NewNop())
	a.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }

	answer, err := a.Ask(context.Background(), "  сколько заработали?  ")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), fin.from)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), fin.to)
	assert.Contains(t, gen.prompt, "01.10.2026 - 31.10.2026")
	assert.Contains(t, gen.prompt, "доход: 12500.00 (платежей: 4)")
	assert.Contains(t, gen.prompt, "Вопрос: сколько заработали?")
	assert.Contains(t, string(answer.HTML), "<strong>Доход</strong>")
}

func TestAskValidatesQuestion(t *testing.T) {
	a := New(&stubGenerator{}, &stubFinance{}, zap.NewNop())

	_, err := a.Ask(context.Background(), "   ")
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAskWrapsGeneratorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	a := New(&stubGenerator{err: boom}, &stubFinance{}, zap.NewNop())

	_, err := a.Ask(context.Background(), "привет")
	assert.ErrorIs(t, err, boom)
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	html, err := RenderMarkdown("hi <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}
