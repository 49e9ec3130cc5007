package http

import (
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
)

type employeeResponse struct {
	ID                 string     `json:"id"`
	FirstName          string     `json:"firstName"`
	MiddleName         string     `json:"middleName,omitempty"`
	LastName           string     `json:"lastName"`
	FullName           string     `json:"fullName"`
	Email              string     `json:"email"`
	Department         string     `json:"department"`
	JobTitle           string     `json:"jobTitle"`
	PositionID         string     `json:"positionId,omitempty"`
	Location           string     `json:"location"`
	CompanyCode        string     `json:"companyCode,omitempty"`
	ReportsTo          string     `json:"reportsTo,omitempty"`
	DirectReportsCount *int       `json:"directReportsCount"`
	IsActive           bool       `json:"isActive"`
	HireDate           *time.Time `json:"hireDate"`
	RehireDate         *time.Time `json:"rehireDate"`
	Source             string     `json:"source"`
	VotingEligible     bool       `json:"votingEligible"`
	EligibilityRule    string     `json:"eligibilityRule,omitempty"`
	VotingGroup        string     `json:"votingGroup"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func toEmployeeResponse(e *model.Employee) *employeeResponse {
	if e == nil {
		return nil
	}
	return &employeeResponse{
		ID:                 string(e.ID),
		FirstName:          e.FirstName,
		MiddleName:         e.MiddleName,
		LastName:           e.LastName,
		FullName:           e.DisplayName(),
		Email:              e.Email,
		Department:         e.Department,
		JobTitle:           e.JobTitle,
		PositionID:         e.PositionID,
		Location:           e.Location,
		CompanyCode:        e.CompanyCode,
		ReportsTo:          e.ReportsTo,
		DirectReportsCount: e.DirectReportsCount,
		IsActive:           e.IsActive,
		HireDate:           e.HireDate,
		RehireDate:         e.RehireDate,
		Source:             e.Source.String(),
		VotingEligible:     e.VotingEligible,
		EligibilityRule:    string(e.EligibilityRule),
		VotingGroup:        e.VotingGroup,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func toEmployeeResponses(employees []*model.Employee) []*employeeResponse {
	out := make([]*employeeResponse, len(employees))
	for i, e := range employees {
		out[i] = toEmployeeResponse(e)
	}
	return out
}

type customRulesBody struct {
	AllowedCompanyCodes          []string `json:"allowedCompanyCodes"`
	ExcludedCompanyCodes         []string `json:"excludedCompanyCodes"`
	MinDirectReportsForExclusion *int     `json:"minDirectReportsForExclusion"`
}

type eligibilityResponse struct {
	Version                   int             `json:"version"`
	MinimumDaysForEligibility int             `json:"minimumDaysForEligibility"`
	RequireActiveStatus       bool            `json:"requireActiveStatus"`
	ExcludedDepartments       []string        `json:"excludedDepartments"`
	ExcludedTitles            []string        `json:"excludedTitles"`
	ExcludedPositions         []string        `json:"excludedPositions"`
	CustomRules               customRulesBody `json:"customRules"`
	UpdatedAt                 time.Time       `json:"updatedAt"`
}

func toEligibilityResponse(c *model.EligibilityConfig) *eligibilityResponse {
	return &eligibilityResponse{
		Version:                   c.Version,
		MinimumDaysForEligibility: c.MinimumDaysForEligibility,
		RequireActiveStatus:       c.RequireActiveStatus,
		ExcludedDepartments:       nonNil(c.ExcludedDepartments),
		ExcludedTitles:            nonNil(c.ExcludedTitles),
		ExcludedPositions:         nonNil(c.ExcludedPositions),
		CustomRules: customRulesBody{
			AllowedCompanyCodes:          nonNil(c.CustomRules.AllowedCompanyCodes),
			ExcludedCompanyCodes:         nonNil(c.CustomRules.ExcludedCompanyCodes),
			MinDirectReportsForExclusion: c.CustomRules.MinDirectReportsForExclusion,
		},
		UpdatedAt: c.UpdatedAt,
	}
}

type eligibilityUpdateRequest struct {
	MinimumDaysForEligibility *int             `json:"minimumDaysForEligibility"`
	RequireActiveStatus       *bool            `json:"requireActiveStatus"`
	ExcludedDepartments       []string         `json:"excludedDepartments"`
	ExcludedTitles            []string         `json:"excludedTitles"`
	ExcludedPositions         []string         `json:"excludedPositions"`
	CustomRules               *customRulesBody `json:"customRules"`
}

func (req *eligibilityUpdateRequest) toModel() *model.EligibilityConfigUpdate {
	u := &model.EligibilityConfigUpdate{
		MinimumDaysForEligibility: req.MinimumDaysForEligibility,
		RequireActiveStatus:       req.RequireActiveStatus,
		ExcludedDepartments:       req.ExcludedDepartments,
		ExcludedTitles:            req.ExcludedTitles,
		ExcludedPositions:         req.ExcludedPositions,
	}
	if req.CustomRules != nil {
		u.CustomRules = &model.CustomEligibilityRules{
			AllowedCompanyCodes:          req.CustomRules.AllowedCompanyCodes,
			ExcludedCompanyCodes:         req.CustomRules.ExcludedCompanyCodes,
			MinDirectReportsForExclusion: req.CustomRules.MinDirectReportsForExclusion,
		}
	}
	return u
}

type votingGroupResponse struct {
	Version          int                       `json:"version"`
	Strategy         types.GroupingStrategy    `json:"strategy"`
	DepartmentGroups map[string]string         `json:"departmentGroups"`
	LocationGroups   map[string]string         `json:"locationGroups"`
	MixedMappings    []model.MixedGroupMapping `json:"mixedMappings"`
	FallbackStrategy types.FallbackStrategy    `json:"fallbackStrategy"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

func toVotingGroupResponse(c *model.VotingGroupConfig) *votingGroupResponse {
	resp := &votingGroupResponse{
		Version:          c.Version,
		Strategy:         c.Strategy,
		DepartmentGroups: c.DepartmentGroups,
		LocationGroups:   c.LocationGroups,
		MixedMappings:    c.MixedMappings,
		FallbackStrategy: c.FallbackStrategy,
		UpdatedAt:        c.UpdatedAt,
	}
	if resp.DepartmentGroups == nil {
		resp.DepartmentGroups = map[string]string{}
	}
	if resp.LocationGroups == nil {
		resp.LocationGroups = map[string]string{}
	}
	if resp.MixedMappings == nil {
		resp.MixedMappings = []model.MixedGroupMapping{}
	}
	return resp
}

type votingGroupUpdateRequest struct {
	Strategy         *types.GroupingStrategy   `json:"strategy"`
	DepartmentGroups map[string]string         `json:"departmentGroups"`
	LocationGroups   map[string]string         `json:"locationGroups"`
	MixedMappings    []model.MixedGroupMapping `json:"mixedMappings"`
	FallbackStrategy *types.FallbackStrategy   `json:"fallbackStrategy"`
}

func (req *votingGroupUpdateRequest) toModel() *model.VotingGroupConfigUpdate {
	return &model.VotingGroupConfigUpdate{
		Strategy:         req.Strategy,
		DepartmentGroups: req.DepartmentGroups,
		LocationGroups:   req.LocationGroups,
		MixedMappings:    req.MixedMappings,
		FallbackStrategy: req.FallbackStrategy,
	}
}

// configUpdateResponse carries the saved configuration and the outcome of
// re-evaluating every stored employee
type configUpdateResponse struct {
	Config    any                    `json:"config"`
	Recompute *model.RecomputeResult `json:"recompute"`
}

type periodResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	StartsAt  time.Time          `json:"startsAt"`
	EndsAt    time.Time          `json:"endsAt"`
	ClosedAt  *time.Time         `json:"closedAt"`
	Status    types.PeriodStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

func toPeriodResponse(p *model.VotingPeriod, now time.Time) *periodResponse {
	return &periodResponse{
		ID:        string(p.ID),
		Name:      p.Name,
		StartsAt:  p.StartsAt,
		EndsAt:    p.EndsAt,
		ClosedAt:  p.ClosedAt,
		Status:    p.StatusAt(now),
		CreatedAt: p.CreatedAt,
	}
}

type createPeriodRequest struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

type nominateRequest struct {
	NomineeID string `json:"nomineeId"`
	Reason    string `json:"reason"`
}

type nominationResponse struct {
	ID          string    `json:"id"`
	PeriodID    string    `json:"periodId"`
	NomineeID   string    `json:"nomineeId"`
	NominatorID string    `json:"nominatorId"`
	Reason      string    `json:"reason"`
	VotingGroup string    `json:"votingGroup"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toNominationResponse(n *model.Nomination) *nominationResponse {
	return &nominationResponse{
		ID:          string(n.ID),
		PeriodID:    string(n.PeriodID),
		NomineeID:   string(n.NomineeID),
		NominatorID: string(n.NominatorID),
		Reason:      n.Reason,
		VotingGroup: n.VotingGroup,
		CreatedAt:   n.CreatedAt,
	}
}

type winnerResponse struct {
	ID          string    `json:"id"`
	PeriodID    string    `json:"periodId"`
	VotingGroup string    `json:"votingGroup"`
	EmployeeID  string    `json:"employeeId"`
	Score       int       `json:"score"`
	RecordedAt  time.Time `json:"recordedAt"`
}

func toWinnerResponses(winners []*model.Winner) []*winnerResponse {
	out := make([]*winnerResponse, len(winners))
	for i, w := range winners {
		out[i] = &winnerResponse{
			ID:          string(w.ID),
			PeriodID:    string(w.PeriodID),
			VotingGroup: w.VotingGroup,
			EmployeeID:  string(w.EmployeeID),
			Score:       w.Score,
			RecordedAt:  w.RecordedAt,
		}
	}
	return out
}

type singleSyncResponse struct {
	Success             bool              `json:"success"`
	Message             string            `json:"message"`
	Employee            *employeeResponse `json:"employee,omitempty"`
	MatchedWithExternal bool              `json:"matchedWithExternal"`
}

type syncStatusResponse struct {
	Running         bool            `json:"running"`
	LastSyncSuccess *time.Time      `json:"lastSyncSuccess"`
	LastSyncAttempt *time.Time      `json:"lastSyncAttempt"`
	EmployeeCount   int             `json:"employeeCount"`
	LastPhase       types.SyncPhase `json:"lastPhase,omitempty"`
	RosterPath      string          `json:"rosterPath,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func zeroAsNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
