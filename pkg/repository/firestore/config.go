package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const configCollection = "config"

type configRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ConfigRepository = &configRepository{}

func newConfigRepository(client *firestore.Client) *configRepository {
	return &configRepository{
		client: client,
	}
}

type eligibilityConfigDoc struct {
	Version                      int       `firestore:"version"`
	MinimumDaysForEligibility    int       `firestore:"minimum_days_for_eligibility"`
	RequireActiveStatus          bool      `firestore:"require_active_status"`
	ExcludedDepartments          []string  `firestore:"excluded_departments"`
	ExcludedTitles               []string  `firestore:"excluded_titles"`
	ExcludedPositions            []string  `firestore:"excluded_positions"`
	AllowedCompanyCodes          []string  `firestore:"allowed_company_codes"`
	ExcludedCompanyCodes         []string  `firestore:"excluded_company_codes"`
	MinDirectReportsForExclusion *int      `firestore:"min_direct_reports_for_exclusion"`
	UpdatedAt                    time.Time `firestore:"updated_at"`
}

// votingGroupConfigDoc keeps the mixed mappings as a JSON string
type votingGroupConfigDoc struct {
	Version          int               `firestore:"version"`
	Strategy         string            `firestore:"strategy"`
	DepartmentGroups map[string]string `firestore:"department_groups"`
	LocationGroups   map[string]string `firestore:"location_groups"`
	MixedMappings    string            `firestore:"mixed_mappings"`
	FallbackStrategy string            `firestore:"fallback_strategy"`
	UpdatedAt        time.Time         `firestore:"updated_at"`
}

func (r *configRepository) doc(key string) *firestore.DocumentRef {
	return r.client.Collection(collectionName(r.collectionPrefix, configCollection)).Doc(key)
}

func (r *configRepository) GetEligibility(ctx context.Context) (*model.EligibilityConfig, error) {
	snap, err := r.doc(model.EligibilityConfigKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "eligibility config not found",
				goerr.V("key", model.EligibilityConfigKey))
		}
		return nil, goerr.Wrap(err, "failed to get eligibility config")
	}

	var d eligibilityConfigDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal eligibility config")
	}

	return &model.EligibilityConfig{
		Version:                   d.Version,
		MinimumDaysForEligibility: d.MinimumDaysForEligibility,
		RequireActiveStatus:       d.RequireActiveStatus,
		ExcludedDepartments:       d.ExcludedDepartments,
		ExcludedTitles:            d.ExcludedTitles,
		ExcludedPositions:         d.ExcludedPositions,
		CustomRules: model.CustomEligibilityRules{
			AllowedCompanyCodes:          d.AllowedCompanyCodes,
			ExcludedCompanyCodes:         d.ExcludedCompanyCodes,
			MinDirectReportsForExclusion: d.MinDirectReportsForExclusion,
		},
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (r *configRepository) SaveEligibility(ctx context.Context, cfg *model.EligibilityConfig) error {
	d := &eligibilityConfigDoc{
		Version:                      cfg.Version,
		MinimumDaysForEligibility:    cfg.MinimumDaysForEligibility,
		RequireActiveStatus:          cfg.RequireActiveStatus,
		ExcludedDepartments:          cfg.ExcludedDepartments,
		ExcludedTitles:               cfg.ExcludedTitles,
		ExcludedPositions:            cfg.ExcludedPositions,
		AllowedCompanyCodes:          cfg.CustomRules.AllowedCompanyCodes,
		ExcludedCompanyCodes:         cfg.CustomRules.ExcludedCompanyCodes,
		MinDirectReportsForExclusion: cfg.CustomRules.MinDirectReportsForExclusion,
		UpdatedAt:                    cfg.UpdatedAt,
	}
	if _, err := r.doc(model.EligibilityConfigKey).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to save eligibility config")
	}
	return nil
}

func (r *configRepository) GetVotingGroup(ctx context.Context) (*model.VotingGroupConfig, error) {
	snap, err := r.doc(model.VotingGroupConfigKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "voting group config not found",
				goerr.V("key", model.VotingGroupConfigKey))
		}
		return nil, goerr.Wrap(err, "failed to get voting group config")
	}

	var d votingGroupConfigDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal voting group config")
	}

	mappings, err := model.DecodeMixedMappings(d.MixedMappings)
	if err != nil {
		// A corrupt mapping blob must not block group assignment
		errutil.Handle(ctx, err, "stored mixed mappings are malformed, treating as empty")
		mappings = nil
	}

	cfg := &model.VotingGroupConfig{
		Version:          d.Version,
		Strategy:         types.GroupingStrategy(d.Strategy),
		DepartmentGroups: d.DepartmentGroups,
		LocationGroups:   d.LocationGroups,
		MixedMappings:    mappings,
		FallbackStrategy: types.FallbackStrategy(d.FallbackStrategy),
		UpdatedAt:        d.UpdatedAt,
	}
	if cfg.DepartmentGroups == nil {
		cfg.DepartmentGroups = map[string]string{}
	}
	if cfg.LocationGroups == nil {
		cfg.LocationGroups = map[string]string{}
	}
	return cfg, nil
}

func (r *configRepository) SaveVotingGroup(ctx context.Context, cfg *model.VotingGroupConfig) error {
	mappings, err := model.EncodeMixedMappings(cfg.MixedMappings)
	if err != nil {
		return goerr.Wrap(err, "failed to save voting group config")
	}

	d := &votingGroupConfigDoc{
		Version:          cfg.Version,
		Strategy:         string(cfg.Strategy),
		DepartmentGroups: cfg.DepartmentGroups,
		LocationGroups:   cfg.LocationGroups,
		MixedMappings:    mappings,
		FallbackStrategy: string(cfg.FallbackStrategy),
		UpdatedAt:        cfg.UpdatedAt,
	}
	if _, err := r.doc(model.VotingGroupConfigKey).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to save voting group config")
	}
	return nil
}
