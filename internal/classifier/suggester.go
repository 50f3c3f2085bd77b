package classifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/parsererror"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Suggestion is an account proposed by an external model.
type Suggestion struct {
	GLCode     string
	FundCode   string
	Module     models.Module
	Confidence float64
	Reason     string
}

// Suggester proposes an account for transactions no other matcher recognized.
type Suggester interface {
	Suggest(ctx context.Context, tx models.Transaction, accounts []models.Account) (Suggestion, error)
}

// SuggestMatcher adapts a Suggester to the cascade. Its confidence never exceeds the
// configured cap, so suggestions always land in review. Failures surface as
// CollaboratorError and never abort classification.
type SuggestMatcher struct {
	suggester Suggester
	accounts  []models.Account
	ceiling   float64
	timeout   time.Duration
	logger    logging.Logger
}

// NewSuggestMatcher wraps s.
func NewSuggestMatcher(s Suggester, accounts []models.Account, opts Options, logger logging.Logger) *SuggestMatcher {
	opts = opts.withDefaults()
	return &SuggestMatcher{
		suggester: s,
		accounts:  accounts,
		ceiling:   opts.SuggestionCap,
		timeout:   opts.SuggestTimeout,
		logger:    logging.OrDefault(logger),
	}
}

// Name implements Matcher.
func (m *SuggestMatcher) Name() string { return MatcherAI }

// Match implements Matcher.
func (m *SuggestMatcher) Match(ctx context.Context, tx models.Transaction) (models.ClassificationResult, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	s, err := m.suggester.Suggest(ctx, tx, m.accounts)
	if err != nil {
		return models.ClassificationResult{}, false, &parsererror.CollaboratorError{
			Collaborator: MatcherAI,
			Operation:    "suggest",
			Err:          err,
		}
	}
	if s.GLCode == "" {
		return models.ClassificationResult{}, false, nil
	}
	if len(m.accounts) > 0 && !knownAccount(m.accounts, s.GLCode) {
		m.logger.Debug("Discarding suggestion for unknown account",
			logging.F(logging.FieldTransactionID, tx.ID),
			logging.F(logging.FieldGLCode, s.GLCode))
		return models.ClassificationResult{}, false, nil
	}

	module := s.Module
	if module == "" || module == models.ModuleUnknown {
		module = moduleForDirection(tx.IsInflow())
	}
	return models.ClassificationResult{
		GLCode:     s.GLCode,
		FundCode:   s.FundCode,
		Module:     module,
		Confidence: clamp(s.Confidence, m.ceiling),
		Category:   s.Reason,
	}, true, nil
}

func knownAccount(accounts []models.Account, code string) bool {
	for _, a := range accounts {
		if a.Code == code {
			return true
		}
	}
	return false
}

// GeminiSuggester asks a Gemini model for an account.
type GeminiSuggester struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logging.Logger
}

// NewGeminiSuggester connects to the Gemini API.
func NewGeminiSuggester(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiSuggester, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	return &GeminiSuggester{client: client, model: m, logger: logging.OrDefault(logger)}, nil
}

// Close releases the client.
func (g *GeminiSuggester) Close() error {
	return g.client.Close()
}

// Suggest implements Suggester.
func (g *GeminiSuggester) Suggest(ctx context.Context, tx models.Transaction, accounts []models.Account) (Suggestion, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(tx, accounts)))
	if err != nil {
		return Suggestion{}, fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Suggestion{}, errors.New("no response from Gemini API")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	s := parseSuggestion(text)
	g.logger.Debug("Gemini suggestion",
		logging.F(logging.FieldTransactionID, tx.ID),
		logging.F(logging.FieldGLCode, s.GLCode),
		logging.F(logging.FieldConfidence, s.Confidence))
	return s, nil
}

func buildPrompt(tx models.Transaction, accounts []models.Account) string {
	var b strings.Builder
	b.WriteString("Assign a general-ledger account to this bank transaction.\n")
	fmt.Fprintf(&b, "Description: %s\n", tx.Description)
	fmt.Fprintf(&b, "Amount: %s\n", tx.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Type: %s\n", tx.Type)
	if len(accounts) > 0 {
		b.WriteString("\nChoose exactly one of these accounts:\n")
		for _, a := range accounts {
			fmt.Fprintf(&b, "%s %s\n", a.Code, a.Name)
		}
	}
	b.WriteString(`
Respond in this format:
GL: [account code]
Fund: [fund code or 1000]
Module: [CR, CD or JV]
Confidence: [0 to 1]
Reason: [short explanation]`)
	return b.String()
}

// parseSuggestion reads the "Key: value" lines of a model response.
func parseSuggestion(text string) Suggestion {
	var s Suggestion
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "[]* ")
		switch strings.ToLower(strings.Trim(key, "* ")) {
		case "gl", "gl code", "account":
			if f := strings.Fields(value); len(f) > 0 {
				s.GLCode = f[0]
			}
		case "fund", "fund code":
			s.FundCode = value
		case "module":
			if m, ok := models.ParseModule(value); ok {
				s.Module = m
			}
		case "confidence":
			if c, err := strconv.ParseFloat(value, 64); err == nil {
				s.Confidence = c
			}
		case "reason":
			s.Reason = value
		}
	}
	return s
}
