package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	employeesCollection    = "employees"
	syncMetadataCollection = "sync_metadata"
	syncStatusDocument     = "sync_status"
)

type employeeRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.EmployeeRepository = &employeeRepository{}

func newEmployeeRepository(client *firestore.Client) *employeeRepository {
	return &employeeRepository{
		client: client,
	}
}

// employeeDoc is the Firestore persistence model
type employeeDoc struct {
	ID                 string     `firestore:"id"`
	FirstName          string     `firestore:"first_name"`
	MiddleName         string     `firestore:"middle_name"`
	LastName           string     `firestore:"last_name"`
	FullName           string     `firestore:"full_name"`
	Email              string     `firestore:"email"`
	EmailLower         string     `firestore:"email_lower"`
	Department         string     `firestore:"department"`
	JobTitle           string     `firestore:"job_title"`
	PositionID         string     `firestore:"position_id"`
	Location           string     `firestore:"location"`
	CompanyCode        string     `firestore:"company_code"`
	ReportsTo          string     `firestore:"reports_to"`
	DirectReportsCount *int       `firestore:"direct_reports_count"`
	IsActive           bool       `firestore:"is_active"`
	HireDate           *time.Time `firestore:"hire_date"`
	RehireDate         *time.Time `firestore:"rehire_date"`
	Source             string     `firestore:"source"`
	VotingEligible     bool       `firestore:"voting_eligible"`
	EligibilityRule    string     `firestore:"eligibility_rule"`
	VotingGroup        string     `firestore:"voting_group"`
	CreatedAt          time.Time  `firestore:"created_at"`
	UpdatedAt          time.Time  `firestore:"updated_at"`
}

type syncMetadataDoc struct {
	LastSyncSuccess time.Time `firestore:"last_sync_success"`
	LastSyncAttempt time.Time `firestore:"last_sync_attempt"`
	EmployeeCount   int       `firestore:"employee_count"`
	LastPhase       string    `firestore:"last_phase"`
}

func (r *employeeRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, employeesCollection))
}

func (r *employeeRepository) metadataCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, syncMetadataCollection))
}

func (r *employeeRepository) toDoc(e *model.Employee) *employeeDoc {
	return &employeeDoc{
		ID:                 string(e.ID),
		FirstName:          e.FirstName,
		MiddleName:         e.MiddleName,
		LastName:           e.LastName,
		FullName:           e.FullName,
		Email:              e.Email,
		EmailLower:         strings.ToLower(strings.TrimSpace(e.Email)),
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

func (r *employeeRepository) fromDoc(doc *employeeDoc) *model.Employee {
	return &model.Employee{
		ID:                 model.EmployeeID(doc.ID),
		FirstName:          doc.FirstName,
		MiddleName:         doc.MiddleName,
		LastName:           doc.LastName,
		FullName:           doc.FullName,
		Email:              doc.Email,
		Department:         doc.Department,
		JobTitle:           doc.JobTitle,
		PositionID:         doc.PositionID,
		Location:           doc.Location,
		CompanyCode:        doc.CompanyCode,
		ReportsTo:          doc.ReportsTo,
		DirectReportsCount: doc.DirectReportsCount,
		IsActive:           doc.IsActive,
		HireDate:           doc.HireDate,
		RehireDate:         doc.RehireDate,
		Source:             types.EmployeeSource(doc.Source),
		VotingEligible:     doc.VotingEligible,
		EligibilityRule:    types.EligibilityRule(doc.EligibilityRule),
		VotingGroup:        doc.VotingGroup,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

func (r *employeeRepository) Create(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	if _, err := r.collection().Doc(string(e.ID)).Create(ctx, r.toDoc(e)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "employee already exists", goerr.V("id", e.ID))
		}
		return nil, goerr.Wrap(err, "failed to create employee", goerr.V("id", e.ID))
	}
	return e.Clone(), nil
}

func (r *employeeRepository) Update(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	ref := r.collection().Doc(string(e.ID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, r.toDoc(e))
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", e.ID))
		}
		return nil, goerr.Wrap(err, "failed to update employee", goerr.V("id", e.ID))
	}
	return e.Clone(), nil
}

func (r *employeeRepository) FindByID(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get employee", goerr.V("id", id))
	}

	var empDoc employeeDoc
	if err := doc.DataTo(&empDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal employee", goerr.V("id", id))
	}
	return r.fromDoc(&empDoc), nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	lower := strings.ToLower(strings.TrimSpace(email))
	if lower == "" {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("email", email))
	}

	employees, err := r.query(ctx, r.collection().Where("email_lower", "==", lower).Limit(1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find employee by email", goerr.V("email", email))
	}
	if len(employees) == 0 {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("email", email))
	}
	return employees[0], nil
}

func (r *employeeRepository) FindAll(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	q := r.collection().Query
	if filter.Active != nil {
		q = q.Where("is_active", "==", *filter.Active)
	}
	if filter.Eligible != nil {
		q = q.Where("voting_eligible", "==", *filter.Eligible)
	}
	if filter.VotingGroup != nil {
		q = q.Where("voting_group", "==", *filter.VotingGroup)
	}

	employees, err := r.query(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}

	sort.Slice(employees, func(i, j int) bool {
		return employees[i].ID < employees[j].ID
	})
	return employees, nil
}

func (r *employeeRepository) query(ctx context.Context, q firestore.Query) ([]*model.Employee, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	employees := []*model.Employee{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate employees")
		}

		var empDoc employeeDoc
		if err := doc.DataTo(&empDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal employee", goerr.V("docID", doc.Ref.ID))
		}
		employees = append(employees, r.fromDoc(&empDoc))
	}
	return employees, nil
}

func (r *employeeRepository) Delete(ctx context.Context, id model.EmployeeID) error {
	if _, err := r.collection().Doc(string(id)).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to delete employee", goerr.V("id", id))
	}
	return nil
}

// GetSyncMetadata retrieves sync metadata
func (r *employeeRepository) GetSyncMetadata(ctx context.Context) (*model.SyncMetadata, error) {
	doc, err := r.metadataCollection().Doc(syncStatusDocument).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Return zero value if no sync has run yet
			return &model.SyncMetadata{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get sync metadata")
	}

	var metadataDoc syncMetadataDoc
	if err := doc.DataTo(&metadataDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal sync metadata")
	}

	return &model.SyncMetadata{
		LastSyncSuccess: metadataDoc.LastSyncSuccess,
		LastSyncAttempt: metadataDoc.LastSyncAttempt,
		EmployeeCount:   metadataDoc.EmployeeCount,
		LastPhase:       types.SyncPhase(metadataDoc.LastPhase),
	}, nil
}

// SaveSyncMetadata saves sync metadata
func (r *employeeRepository) SaveSyncMetadata(ctx context.Context, metadata *model.SyncMetadata) error {
	doc := &syncMetadataDoc{
		LastSyncSuccess: metadata.LastSyncSuccess,
		LastSyncAttempt: metadata.LastSyncAttempt,
		EmployeeCount:   metadata.EmployeeCount,
		LastPhase:       string(metadata.LastPhase),
	}
	if _, err := r.metadataCollection().Doc(syncStatusDocument).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save sync metadata")
	}
	return nil
}
