package reconcile

import (
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
)

// Merge combines a directory employee (primary) with its roster row
// (secondary). Scalar fields take the primary value unless it is blank
// after trimming; counts and dates take the primary value unless it is
// absent. ID and email always come from the directory. The returned record
// is a copy; neither input is modified.
func Merge(primary *model.Employee, secondary *model.RosterRecord) *model.Employee {
	out := primary.Clone()
	if secondary == nil {
		return out
	}

	contributed := false
	str := func(dst *string, src string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		if v := strings.TrimSpace(src); v != "" {
			*dst = v
			contributed = true
		}
	}
	date := func(dst **time.Time, src *time.Time) {
		if *dst != nil || src == nil {
			return
		}
		v := *src
		*dst = &v
		contributed = true
	}

	str(&out.FirstName, secondary.FirstName)
	str(&out.MiddleName, secondary.MiddleName)
	str(&out.LastName, secondary.LastName)
	str(&out.Department, secondary.Department)
	str(&out.JobTitle, secondary.JobTitle)
	str(&out.PositionID, secondary.PositionID)
	str(&out.Location, secondary.Location)
	str(&out.CompanyCode, secondary.CompanyCode)
	str(&out.ReportsTo, secondary.ReportsTo)

	if out.DirectReportsCount == nil && secondary.DirectReportsCount != nil {
		v := *secondary.DirectReportsCount
		out.DirectReportsCount = &v
		contributed = true
	}

	date(&out.HireDate, secondary.HireDate)
	date(&out.RehireDate, secondary.RehireDate)

	if strings.TrimSpace(out.FullName) == "" {
		out.FullName = out.DisplayName()
	}

	if contributed {
		out.Source = types.EmployeeSourceMerged
	} else if out.Source == "" {
		out.Source = types.EmployeeSourceDirectory
	}

	return out
}
