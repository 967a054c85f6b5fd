package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// PipelineStep is one stage of the verification pipeline display.
type PipelineStep struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// PipelineSteps lists the stages in execution order.
var PipelineSteps = []PipelineStep{
	{ID: "reliability", Name: "Source Reliability"},
	{ID: "relevance", Name: "Relevance Match"},
	{ID: "geo", Name: "Geo Consistency"},
	{ID: "confirm", Name: "Cross-confirmation"},
	{ID: "label", Name: "Label + Confidence"},
}

// VerifiedItem pairs a public item with its pipeline result.
type VerifiedItem struct {
	Item         models.PublicItem         `json:"item"`
	Verification models.VerificationResult `json:"verification"`
}

// VerificationView is the verification tab.
type VerificationView struct {
	Steps        []PipelineStep         `json:"steps"`
	VerifiedOnly bool                   `json:"verifiedOnly"`
	Items        []VerifiedItem         `json:"items"`
	Distribution ConfidenceDistribution `json:"distribution"`
	Counts       LabelCounts            `json:"counts"`
	TotalPublic  int                    `json:"totalPublic"`
}

// VerificationDetail is the side sheet for one item.
type VerificationDetail struct {
	VerifiedItem
	ReasonsTitle string `json:"reasonsTitle"`
}

// VerificationService builds the verification tab.
type VerificationService interface {
	GetVerification(ctx context.Context, projectID string, verifiedOnly bool) (*VerificationView, error)
	GetItem(ctx context.Context, projectID, itemID string) (*VerificationDetail, error)
}

type verificationService struct {
	repo   repositories.ProjectRepository
	logger *zap.Logger
}

// NewVerificationService creates a verification service.
func NewVerificationService(repo repositories.ProjectRepository, logger *zap.Logger) VerificationService {
	return &verificationService{
		repo:   repo,
		logger: logger.Named("verification"),
	}
}

// VerifiedItems returns public items that have a result, in item order.
// Items without a result are never listed.
func VerifiedItems(p *models.Project, verifiedOnly bool) []VerifiedItem {
	out := []VerifiedItem{}
	for _, item := range p.PublicItems {
		v, ok := p.VerificationFor(item.ID)
		if !ok {
			continue
		}
		if verifiedOnly && v.Label != models.LabelVerified {
			continue
		}
		out = append(out, VerifiedItem{Item: item, Verification: *v})
	}
	return out
}

func (s *verificationService) GetVerification(ctx context.Context, projectID string, verifiedOnly bool) (*VerificationView, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	items := VerifiedItems(p, verifiedOnly)
	results := make([]models.VerificationResult, len(items))
	for i, it := range items {
		results[i] = it.Verification
	}

	steps := make([]PipelineStep, len(PipelineSteps))
	for i, st := range PipelineSteps {
		st.Done = true
		steps[i] = st
	}

	return &VerificationView{
		Steps:        steps,
		VerifiedOnly: verifiedOnly,
		Items:        items,
		Distribution: Distribute(results),
		Counts:       CountLabels(p.VerificationResults),
		TotalPublic:  len(p.PublicItems),
	}, nil
}

func (s *verificationService) GetItem(ctx context.Context, projectID, itemID string) (*VerificationDetail, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, it := range VerifiedItems(p, false) {
		if it.Item.ID != itemID {
			continue
		}
		title := "Evidence"
		if it.Verification.Label == models.LabelSuspicious {
			title = "Why Suspicious"
		}
		return &VerificationDetail{VerifiedItem: it, ReasonsTitle: title}, nil
	}
	return nil, fmt.Errorf("verified item %s: %w", itemID, apperrors.ErrNotFound)
}

var _ VerificationService = (*verificationService)(nil)
