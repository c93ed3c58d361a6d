package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

type stubModel struct {
	answer string
	err    error
	prompt string
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt += text.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func notice() *service.VisitorNotice {
	return &service.VisitorNotice{AdTitle: "Vélo de course", VisitorEmail: "v@x.fr", Message: "Est-il toujours disponible ?"}
}

func TestIsAppropriate(t *testing.T) {
	model := &stubModel{answer: " Approprié.\n"}
	ok, err := NewWithModel(model).IsAppropriate(context.Background(), notice())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, model.prompt, "Vélo de course")
	assert.Contains(t, model.prompt, "Est-il toujours disponible ?")
}

func TestIsAppropriate_Rejects(t *testing.T) {
	ok, err := NewWithModel(&stubModel{answer: "inapproprié"}).IsAppropriate(context.Background(), notice())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAppropriate_ModelError(t *testing.T) {
	_, err := NewWithModel(&stubModel{err: errors.New("connection refused")}).IsAppropriate(context.Background(), notice())
	assert.Error(t, err)
}

func TestParseVerdict(t *testing.T) {
	assert.True(t, ParseVerdict("approprié"))
	assert.True(t, ParseVerdict("\"approprie\""))
	assert.False(t, ParseVerdict("inapproprié"))
	assert.False(t, ParseVerdict("Le message est approprié car..."))
	assert.False(t, ParseVerdict(""))
}
