package lending

import (
	"sort"
	"time"

	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/entities"
)

// OverdueLoan is an open loan past its due date.
type OverdueLoan struct {
	Loan        entities.Loan
	DaysOverdue int
}

// Overdue reports how many whole days an open loan is past due as of today.
// Returned loans and loans due today or later are not overdue.
func Overdue(loan entities.Loan, today time.Time) (int, bool) {
	if !loan.IsOpen() {
		return 0, false
	}
	days := clock.DaysBetween(loan.DueDate, today)
	if days <= 0 {
		return 0, false
	}
	return days, true
}

// DetectOverdue keeps the overdue loans, most overdue first.
func DetectOverdue(loans []entities.Loan, today time.Time) []OverdueLoan {
	overdue := []OverdueLoan{}
	for _, loan := range loans {
		if days, ok := Overdue(loan, today); ok {
			overdue = append(overdue, OverdueLoan{Loan: loan, DaysOverdue: days})
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		if overdue[i].DaysOverdue != overdue[j].DaysOverdue {
			return overdue[i].DaysOverdue > overdue[j].DaysOverdue
		}
		return overdue[i].Loan.ID < overdue[j].Loan.ID
	})
	return overdue
}
