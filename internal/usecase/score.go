package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// ScoreQueryPrefix steers retrieval toward the category rubric and thresholds.
const ScoreQueryPrefix = "postpartum depression symptoms dataset categories mapping thresholds " +
	"severity levels five categories rubric + "

// EmptyInputMessage accompanies the empty_input failure.
const EmptyInputMessage = "Please provide symptoms, thoughts/feelings, or context so I can assess PPD risk."

// ScoreUseCase produces a structured PPD risk assessment.
type ScoreUseCase struct {
	retriever port.Retriever
	llm       port.LLM
	packer    *ContextPacker
	topK      int
}

// NewScoreUseCase creates a new score use case.
func NewScoreUseCase(retriever port.Retriever, llm port.LLM, packer *ContextPacker, topK int) *ScoreUseCase {
	return &ScoreUseCase{
		retriever: retriever,
		llm:       llm,
		packer:    packer,
		topK:      topK,
	}
}

// ScoreResult holds either an assessment or a failure, plus the retrieved chunks.
type ScoreResult struct {
	Assessment *domain.Assessment       `json:"assessment,omitempty"`
	Failure    *domain.ReplyFailure     `json:"failure,omitempty"`
	Results    []domain.RetrievalResult `json:"results"`
}

// Score classifies userText. Blank input and unparseable model replies are
// reported through ScoreResult.Failure; only retrieval and model call failures
// are returned as errors.
func (u *ScoreUseCase) Score(ctx context.Context, userText string, history []domain.Message) (*ScoreResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return &ScoreResult{
			Failure: &domain.ReplyFailure{Code: domain.FailureEmptyInput, Message: EmptyInputMessage},
			Results: []domain.RetrievalResult{},
		}, nil
	}

	results, err := u.retriever.Retrieve(ctx, ScoreQueryPrefix+userText, u.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	packed := u.packer.Pack(results)
	messages, err := buildMessages("score_system.tmpl", "score_user.tmpl", history, promptData{
		Question: userText,
		Context:  packed.Block,
	})
	if err != nil {
		return nil, err
	}

	logger := log.FromContext(ctx)
	logger.Debug("score prompt assembled", "snippets", len(packed.Snippets), "context_tokens", packed.UsedTokens)

	raw, err := u.llm.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	assessment, failure := ParseAssessment(raw)
	if failure != nil {
		logger.Warn("model reply was not valid JSON", "reply_len", len(raw))
		return &ScoreResult{Failure: failure, Results: results}, nil
	}
	if assessment.Urgent() {
		logger.Warn("urgent safety flag raised", "reason", assessment.SafetyFlag.Reason)
	}
	return &ScoreResult{Assessment: &assessment, Results: results}, nil
}
