package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
)

func seedLibrary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	reader := entities.Reader{Name: "Alice", Phone: "555-0100"}
	require.NoError(t, db.DB.Create(&reader).Error)
	book := entities.Book{Title: "Dune", Author: "Herbert", TotalCount: 1, AvailableCount: 0}
	require.NoError(t, db.DB.Create(&book).Error)
	require.NoError(t, db.DB.Create(&entities.Loan{
		ReaderID:   reader.ID,
		BookID:     book.ID,
		BorrowDate: clock.Date(2026, 3, 1),
		DueDate:    clock.Date(2026, 3, 31),
		Status:     entities.LoanStatusOpen,
	}).Error)
	return path
}

func TestOverdueReportCommand_ParseFlags(t *testing.T) {
	cmd := NewOverdueReportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", "x.db", "-date", "2026-04-10"}))
	assert.Equal(t, "x.db", cmd.DatabasePath)
	assert.Equal(t, "sqlite", cmd.Driver)
	assert.Equal(t, "2026-04-10", cmd.Date)

	assert.Error(t, NewOverdueReportCommand().ParseFlags([]string{"-date", "10/04/2026"}))
	assert.Error(t, NewOverdueReportCommand().ParseFlags([]string{"-driver", "postgres"}))
	assert.Error(t, NewOverdueReportCommand().ParseFlags([]string{"-driver", "mysql"}))
}

func TestOverdueReportCommand_Run(t *testing.T) {
	path := seedLibrary(t)

	var out bytes.Buffer
	cmd := NewOverdueReportCommand()
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-db", path, "-date", "2026-04-10"}))
	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "Overdue Report (2026-04-10)")
	assert.Contains(t, out.String(), "#1  Dune by Herbert")
	assert.Contains(t, out.String(), "reader: Alice (555-0100)")
	assert.Contains(t, out.String(), "due 2026-03-31, 10 days overdue")
	assert.Contains(t, out.String(), "Total overdue: 1")
}

func TestOverdueReportCommand_NothingOverdue(t *testing.T) {
	path := seedLibrary(t)

	var out bytes.Buffer
	cmd := NewOverdueReportCommand()
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-db", path, "-date", "2026-03-31"}))
	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "No overdue loans.")
}

func TestOverdueReportCommand_DefaultsToToday(t *testing.T) {
	cmd := NewOverdueReportCommand()
	cmd.now = clock.Fixed(clock.Date(2026, 4, 2).Add(20 * time.Hour))

	d, err := cmd.reportDate()
	require.NoError(t, err)
	assert.Equal(t, clock.Date(2026, 4, 2), d)
}
