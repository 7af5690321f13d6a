package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/gramsetu/loan-advisor/internal/dto"
	"github.com/gramsetu/loan-advisor/internal/model"
	"github.com/gramsetu/loan-advisor/internal/response"
	"github.com/gramsetu/loan-advisor/internal/service"
	"github.com/gramsetu/loan-advisor/internal/util"
	"github.com/pgvector/pgvector-go"
)

const underwriterSystemPrompt = "You are an expert loan underwriter. Always respond with valid JSON only."

// AssessmentStore is the persistence boundary for assessment records.
// Writes are best-effort: a failed save never fails the request.
type AssessmentStore interface {
	CreateAssessment(ctx context.Context, assessment *model.LoanAssessment) error
	FindByUser(ctx context.Context, userID string, page, pageSize int) ([]model.LoanAssessment, int64, error)
}

// ProductStore is the loan product catalog boundary.
type ProductStore interface {
	SearchProducts(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.LoanProduct, error)
	UpsertProduct(ctx context.Context, product *model.LoanProduct) error
	GetProducts(ctx context.Context) ([]model.LoanProduct, error)
}

type AssessmentUsecase struct {
	assessmentRepo AssessmentStore
	productRepo    ProductStore
	gateway        service.AIGatewayServiceInterface
	gemini         service.GeminiServiceInterface
}

func NewAssessmentUsecase(assessmentRepo AssessmentStore, productRepo ProductStore, gateway service.AIGatewayServiceInterface, gemini service.GeminiServiceInterface) *AssessmentUsecase {
	return &AssessmentUsecase{
		assessmentRepo: assessmentRepo,
		productRepo:    productRepo,
		gateway:        gateway,
		gemini:         gemini,
	}
}

// Assess runs the full eligibility pipeline: validate, ask the AI gateway,
// fall back to the rule-based calculator when the answer cannot be decoded,
// derive the debt-to-income ratio locally, persist, respond.
//
// Provider failures (unreachable, non-2xx) abort the request; only a
// malformed answer from an otherwise successful call degrades to the
// deterministic path.
func (uc *AssessmentUsecase) Assess(ctx context.Context, userID string, req dto.AssessmentRequest) (*dto.AssessmentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, util.NewValidationError(err.Error())
	}
	profile := toProfile(req)

	productContext, matchedProducts := uc.productContext(ctx, profile)

	var result service.EligibilityResult
	content, err := uc.gateway.Complete(ctx, underwriterSystemPrompt, buildAssessmentPrompt(profile, productContext))
	switch {
	case err == nil:
		decoded, decodeErr := decodeAssessment(content)
		if decodeErr != nil {
			log.Printf("Warning: undecodable AI assessment, using rule-based fallback: %v", decodeErr)
			result = service.CalculateEligibility(profile)
		} else {
			result = decoded
		}
	case util.IsKind(err, util.KindParse):
		log.Printf("Warning: empty AI assessment, using rule-based fallback: %v", err)
		result = service.CalculateEligibility(profile)
	default:
		return nil, err
	}

	// Invariants hold no matter which path produced the result.
	result.EligibilityScore = service.ClampScore(result.EligibilityScore)
	if result.RecommendedAmount > profile.LoanAmountRequested {
		result.RecommendedAmount = profile.LoanAmountRequested
	}
	if result.RecommendedAmount < 0 {
		result.RecommendedAmount = 0
	}
	if len(result.SuitableProducts) == 0 && len(matchedProducts) > 0 {
		result.SuitableProducts = matchedProducts
	}

	// Never trust an AI-supplied ratio; derive it from the stored loans.
	debtToIncomeRatio := service.DebtToIncomeRatio(profile)
	calculatedAt := time.Now().UTC()

	assessmentID := uc.persist(ctx, userID, req, result, debtToIncomeRatio, calculatedAt)

	return &dto.AssessmentResponse{
		AssessmentID:      assessmentID,
		EligibilityScore:  result.EligibilityScore,
		RecommendedAmount: result.RecommendedAmount,
		RiskLevel:         result.RiskLevel,
		DebtToIncomeRatio: debtToIncomeRatio,
		Suggestions:       result.Suggestions,
		SuitableProducts:  result.SuitableProducts,
		Reasoning:         result.Reasoning,
	}, nil
}

// History returns one page of the user's past assessments. Paging bounds are
// normalized here so the query and the pagination envelope agree.
func (uc *AssessmentUsecase) History(ctx context.Context, userID string, page, pageSize int) ([]dto.AssessmentHistoryItemDTO, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	assessments, total, err := uc.assessmentRepo.FindByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, nil, util.NewPersistenceError("failed to load assessment history", err)
	}
	items := make([]dto.AssessmentHistoryItemDTO, 0, len(assessments))
	for _, a := range assessments {
		items = append(items, dto.AssessmentHistoryItemDTO{
			ID:                  a.ID.String(),
			LoanAmountRequested: a.LoanAmountRequested,
			LoanPurpose:         a.LoanPurpose,
			EligibilityScore:    a.EligibilityScore,
			RecommendedAmount:   a.RecommendedAmount,
			RiskLevel:           a.RiskLevel,
			DebtToIncomeRatio:   a.DebtToIncomeRatio,
			CalculatedAt:        a.CalculatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, response.NewPagination(page, pageSize, len(items), total), nil
}

func (uc *AssessmentUsecase) ListProducts(ctx context.Context) ([]model.LoanProduct, error) {
	return uc.productRepo.GetProducts(ctx)
}

// ReindexProducts embeds the default catalog and upserts it. Mirrors what a
// catalog admin job would do; failures here never affect assessments.
func (uc *AssessmentUsecase) ReindexProducts(ctx context.Context) error {
	for _, product := range defaultProducts() {
		embedding, err := uc.gemini.GenerateEmbedding(ctx, product.Description)
		if err != nil {
			return fmt.Errorf("embed product %q: %w", product.Name, err)
		}
		product.Embedding = pgvector.NewVector(embedding)
		if err := uc.productRepo.UpsertProduct(ctx, &product); err != nil {
			return util.NewPersistenceError(fmt.Sprintf("upsert product %q", product.Name), err)
		}
	}
	return nil
}

// productContext matches catalog entries against the stated loan purpose and
// renders them as prompt context. Best-effort only: any failure leaves the
// assessment untouched.
func (uc *AssessmentUsecase) productContext(ctx context.Context, profile service.ApplicantProfile) (string, []string) {
	if uc.gemini == nil || uc.productRepo == nil || strings.TrimSpace(profile.LoanPurpose) == "" {
		return "", nil
	}
	embedding, err := uc.gemini.GenerateEmbedding(ctx, profile.LoanPurpose)
	if err != nil {
		log.Printf("Warning: product matching skipped, embedding failed: %v", err)
		return "", nil
	}
	products, err := uc.productRepo.SearchProducts(ctx, pgvector.NewVector(embedding), 3)
	if err != nil || len(products) == 0 {
		if err != nil {
			log.Printf("Warning: product matching skipped, search failed: %v", err)
		}
		return "", nil
	}

	var sb strings.Builder
	names := make([]string, 0, len(products))
	sb.WriteString("Available loan products:\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "- %s (₹%.0f to ₹%.0f): %s\n", p.Name, p.MinAmount, p.MaxAmount, p.Description)
		names = append(names, p.Name)
	}
	return sb.String(), names
}

func (uc *AssessmentUsecase) persist(ctx context.Context, userID string, req dto.AssessmentRequest, result service.EligibilityResult, debtToIncomeRatio float64, calculatedAt time.Time) *string {
	existingLoans, err := json.Marshal(req.ExistingLoans)
	if err != nil {
		existingLoans = []byte("[]")
	}
	assessmentResult, err := json.Marshal(map[string]any{
		"eligibilityScore":  result.EligibilityScore,
		"recommendedAmount": result.RecommendedAmount,
		"riskLevel":         result.RiskLevel,
		"suggestions":       result.Suggestions,
		"suitableProducts":  result.SuitableProducts,
		"reasoning":         result.Reasoning,
		"debtToIncomeRatio": debtToIncomeRatio,
		"calculatedAt":      calculatedAt.Format(time.RFC3339),
	})
	if err != nil {
		assessmentResult = []byte("{}")
	}

	record := &model.LoanAssessment{
		UserID:                   userID,
		MonthlyIncome:            req.MonthlyIncome,
		EmploymentType:           req.EmploymentType,
		EmploymentDurationMonths: req.EmploymentDurationMonths,
		ExistingLoans:            string(existingLoans),
		CreditScore:              req.CreditScore,
		LoanAmountRequested:      req.LoanAmountRequested,
		LoanPurpose:              req.LoanPurpose,
		EligibilityScore:         result.EligibilityScore,
		RecommendedAmount:        result.RecommendedAmount,
		RiskLevel:                result.RiskLevel,
		DebtToIncomeRatio:        debtToIncomeRatio,
		AssessmentResult:         string(assessmentResult),
		CalculatedAt:             calculatedAt,
	}
	if err := uc.assessmentRepo.CreateAssessment(ctx, record); err != nil {
		log.Printf("Warning: failed to save assessment: %v", err)
		return nil
	}
	id := record.ID.String()
	return &id
}

func toProfile(req dto.AssessmentRequest) service.ApplicantProfile {
	loans := make([]service.ExistingLoan, 0, len(req.ExistingLoans))
	for _, l := range req.ExistingLoans {
		loans = append(loans, service.ExistingLoan{
			Type:       l.Type,
			Amount:     l.Amount,
			MonthlyEmi: l.MonthlyEmi,
		})
	}
	return service.ApplicantProfile{
		MonthlyIncome:            req.MonthlyIncome,
		EmploymentType:           req.EmploymentType,
		EmploymentDurationMonths: req.EmploymentDurationMonths,
		ExistingLoans:            loans,
		CreditScore:              req.CreditScore,
		LoanAmountRequested:      req.LoanAmountRequested,
		LoanPurpose:              req.LoanPurpose,
	}
}

func buildAssessmentPrompt(profile service.ApplicantProfile, productContext string) string {
	creditScore := "Not provided"
	if profile.CreditScore != nil {
		creditScore = fmt.Sprintf("%d", *profile.CreditScore)
	}
	existingLoans, err := json.Marshal(profile.ExistingLoans)
	if err != nil {
		existingLoans = []byte("[]")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `As a loan eligibility expert, analyze this loan application and provide a detailed assessment:

Applicant Details:
- Monthly Income: ₹%.2f
- Employment Type: %s
- Employment Duration: %d months
- Credit Score: %s
- Requested Loan Amount: ₹%.2f
- Loan Purpose: %s
- Existing Loans: %s
`,
		profile.MonthlyIncome, profile.EmploymentType, profile.EmploymentDurationMonths,
		creditScore, profile.LoanAmountRequested, profile.LoanPurpose, existingLoans)

	if productContext != "" {
		sb.WriteString("\n")
		sb.WriteString(productContext)
	}

	sb.WriteString(`
Please provide:
1. Eligibility score (0-100)
2. Recommended loan amount
3. Risk assessment
4. Improvement suggestions
5. Suitable loan products

Respond in JSON format with these fields: eligibilityScore, recommendedAmount, riskLevel, suggestions, suitableProducts, reasoning
`)
	return sb.String()
}

// providerAssessment is the JSON shape the model is instructed to return.
// Score and amount are pointers so an absent field fails the decode instead
// of silently reading as zero.
type providerAssessment struct {
	EligibilityScore  *float64 `json:"eligibilityScore"`
	RecommendedAmount *float64 `json:"recommendedAmount"`
	RiskLevel         string   `json:"riskLevel"`
	Suggestions       []string `json:"suggestions"`
	SuitableProducts  []string `json:"suitableProducts"`
	Reasoning         string   `json:"reasoning"`
}

func decodeAssessment(content string) (service.EligibilityResult, error) {
	var parsed providerAssessment
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &parsed); err != nil {
		return service.EligibilityResult{}, err
	}
	if parsed.EligibilityScore == nil {
		return service.EligibilityResult{}, fmt.Errorf("missing eligibilityScore")
	}
	if parsed.RecommendedAmount == nil {
		return service.EligibilityResult{}, fmt.Errorf("missing recommendedAmount")
	}
	switch parsed.RiskLevel {
	case service.RiskLow, service.RiskMedium, service.RiskHigh:
	default:
		return service.EligibilityResult{}, fmt.Errorf("invalid riskLevel %q", parsed.RiskLevel)
	}

	suggestions := parsed.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	suitableProducts := parsed.SuitableProducts
	if suitableProducts == nil {
		suitableProducts = []string{}
	}
	return service.EligibilityResult{
		EligibilityScore:  int(math.Round(*parsed.EligibilityScore)),
		RecommendedAmount: *parsed.RecommendedAmount,
		RiskLevel:         parsed.RiskLevel,
		Suggestions:       suggestions,
		SuitableProducts:  suitableProducts,
		Reasoning:         parsed.Reasoning,
	}, nil
}

// extractJSONObject tolerates models wrapping the JSON in prose or markdown
// fences by slicing from the first '{' to the last '}'.
func extractJSONObject(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func defaultProducts() []model.LoanProduct {
	return []model.LoanProduct{
		{
			Name:        "Personal Loan",
			Description: "Unsecured loan for personal needs such as medical expenses, education fees or household purchases. No collateral required.",
			MinAmount:   10000,
			MaxAmount:   500000,
		},
		{
			Name:        "Business Loan",
			Description: "Working capital for small shops, traders and village businesses. Covers inventory, equipment and expansion.",
			MinAmount:   25000,
			MaxAmount:   2000000,
		},
		{
			Name:        "Agriculture Loan",
			Description: "Crop loan for seeds, fertiliser and irrigation, plus financing for farm equipment like tractors and pumps.",
			MinAmount:   10000,
			MaxAmount:   1000000,
		},
		{
			Name:        "Gold Loan",
			Description: "Quick loan secured against gold jewellery, with low interest and same-day disbursal.",
			MinAmount:   5000,
			MaxAmount:   1500000,
		},
		{
			Name:        "Home Loan",
			Description: "Long-tenure loan for building or repairing a house in a rural area, including government subsidy-linked schemes.",
			MinAmount:   100000,
			MaxAmount:   5000000,
		},
	}
}
