package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

const promptTemplate = `Vous êtes un assistant de modération pour un site de petites annonces.
Un visiteur souhaite contacter un vendeur. Analysez le message suivant et déterminez s'il est approprié et non un spam.

Titre de l'annonce : %s
Email du visiteur : %s
Message du visiteur :
"%s"

Répondez uniquement par "approprié" si le message semble légitime, ou "inapproprié" s'il s'agit de spam, de contenu offensant ou d'une tentative de phishing. Ne donnez aucune autre explication.`

// LLMClassifier asks an OpenAI-compatible model whether a visitor message
// is legitimate.
type LLMClassifier struct {
	llm llms.Model
}

var _ service.SpamClassifier = (*LLMClassifier)(nil)

func New(baseURL, token, model string) (*LLMClassifier, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &LLMClassifier{llm: llm}, nil
}

func NewWithModel(llm llms.Model) *LLMClassifier {
	return &LLMClassifier{llm: llm}
}

func (c *LLMClassifier) IsAppropriate(ctx context.Context, msg *service.VisitorNotice) (bool, error) {
	prompt := fmt.Sprintf(promptTemplate, msg.AdTitle, msg.VisitorEmail, msg.Message)

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return false, fmt.Errorf("classify visitor message: %w", err)
	}
	return ParseVerdict(completion), nil
}

// ParseVerdict accepts only an explicit "approprié". Anything else,
// including an empty or chatty answer, counts as inappropriate.
func ParseVerdict(answer string) bool {
	v := strings.ToLower(strings.TrimSpace(answer))
	v = strings.Trim(v, "\"'.!` \n")
	return v == "approprié" || v == "approprie"
}
