package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidProfile wraps every personal profile validation failure.
var ErrInvalidProfile = errors.New("invalid personal profile")

// PersonalFactors are the self-rated factors in presentation order.
var PersonalFactors = []string{
	"Financial Intelligence",
	"Hard Work & Discipline",
	"Analytical & Strategic Thinking",
	"Risk Management",
	"Innovative Thinking",
	"Networking / Connections",
	"Community & Environment",
	"Market Trends & Opportunities",
	"Country Economy & Legislation",
	"Serendipitous Opportunities",
}

var (
	Genders         = []string{"Male", "Female", "Other"}
	EducationLevels = []string{"Primary", "Secondary", "Bachelor", "Master", "PhD"}
	FamilyStatuses  = []string{"Single", "Married", "With Children"}
)

// DefaultFactorRating is used for factors the caller did not rate.
const DefaultFactorRating = 5

const (
	minAge, maxAge       = 10, 100
	minIncome, maxIncome = 0, 5000
	minRating, maxRating = 1, 10
)

type PersonalProfile struct {
	Age          int            `json:"age"`
	Gender       string         `json:"gender"`
	Education    string         `json:"education"`
	FamilyStatus string         `json:"family_status"`
	Income       float64        `json:"income"`
	Factors      map[string]int `json:"factors"`
}

type FactorScore struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Score  int    `json:"score"`
}

type PersonalAssessment struct {
	Profile      PersonalProfile `json:"profile"`
	Scores       []FactorScore   `json:"scores"`
	Average      float64         `json:"average"`
	Strengths    []string        `json:"strengths"`
	Weaknesses   []string        `json:"weaknesses"`
	Advice       string          `json:"advice,omitempty"`
	AdviceStatus string          `json:"advice_status"`
	AdviceError  string          `json:"advice_error,omitempty"`
}

// AssessPersonal validates a profile and scores its factors on a 0..100
// scale. Strengths are the three highest rated factors and weaknesses the
// three lowest; ties keep factor order.
func AssessPersonal(p PersonalProfile) (*PersonalAssessment, error) {
	if p.Age < minAge || p.Age > maxAge {
		return nil, fmt.Errorf("%w: age must be between %d and %d", ErrInvalidProfile, minAge, maxAge)
	}
	if p.Income < minIncome || p.Income > maxIncome {
		return nil, fmt.Errorf("%w: monthly income must be between %d and %d", ErrInvalidProfile, minIncome, maxIncome)
	}
	var err error
	if p.Gender, err = oneOf("gender", p.Gender, Genders); err != nil {
		return nil, err
	}
	if p.Education, err = oneOf("education", p.Education, EducationLevels); err != nil {
		return nil, err
	}
	if p.FamilyStatus, err = oneOf("family status", p.FamilyStatus, FamilyStatuses); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(PersonalFactors))
	for _, f := range PersonalFactors {
		known[f] = true
	}
	for name := range p.Factors {
		if !known[name] {
			return nil, fmt.Errorf("%w: unknown factor %q", ErrInvalidProfile, name)
		}
	}

	factors := make(map[string]int, len(PersonalFactors))
	scores := make([]FactorScore, 0, len(PersonalFactors))
	total := 0
	for _, name := range PersonalFactors {
		rating, ok := p.Factors[name]
		if !ok {
			rating = DefaultFactorRating
		}
		if rating < minRating || rating > maxRating {
			return nil, fmt.Errorf("%w: %s must be rated %d..%d, got %d", ErrInvalidProfile, name, minRating, maxRating, rating)
		}
		factors[name] = rating
		scores = append(scores, FactorScore{Name: name, Rating: rating, Score: rating * 10})
		total += rating * 10
	}
	p.Factors = factors

	ranked := append([]FactorScore(nil), scores...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rating > ranked[j].Rating })
	strengths := names(ranked[:3])

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rating < ranked[j].Rating })
	weaknesses := names(ranked[:3])

	return &PersonalAssessment{
		Profile:      p,
		Scores:       scores,
		Average:      float64(total) / float64(len(scores)),
		Strengths:    strengths,
		Weaknesses:   weaknesses,
		AdviceStatus: AdviceDisabled,
	}, nil
}

// PersonalService attaches advisor recommendations to assessments.
type PersonalService struct {
	advisors *AdvisorHolder
}

func NewPersonalService(h *AdvisorHolder) *PersonalService {
	return &PersonalService{advisors: h}
}

func (s *PersonalService) Assess(ctx context.Context, p PersonalProfile) (*PersonalAssessment, error) {
	a, err := AssessPersonal(p)
	if err != nil {
		return nil, err
	}
	a.Advice, a.AdviceStatus, a.AdviceError = advise(ctx, s.advisors, buildPersonalPrompt(a))
	return a, nil
}

func oneOf(field, value string, allowed []string) (string, error) {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(value), a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s", ErrInvalidProfile, field, strings.Join(allowed, ", "))
}

func names(scores []FactorScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Name
	}
	return out
}
