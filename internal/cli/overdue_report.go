package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/stats"
)

const dateLayout = "2006-01-02"

// OverdueReportCommand prints the overdue snapshot as of a given date
type OverdueReportCommand struct {
	DatabasePath string
	Driver       string
	DSN          string
	Date         string
	Timezone     string

	Out io.Writer
	now clock.Clock
}

func NewOverdueReportCommand() *OverdueReportCommand {
	return &OverdueReportCommand{Out: os.Stdout}
}

func (cmd *OverdueReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("overdue-report", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the sqlite database file")
	fs.StringVar(&cmd.Driver, "driver", config.DriverSQLite, "Database driver: sqlite or mysql")
	fs.StringVar(&cmd.DSN, "dsn", "", "MySQL DSN (required with -driver mysql)")
	fs.StringVar(&cmd.Date, "date", "", "Report date in YYYY-MM-DD format (defaults to today)")
	fs.StringVar(&cmd.Timezone, "tz", "Local", "IANA timezone used to derive today")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s overdue-report [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print every open loan that is past its due date.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s overdue-report -db ./library.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s overdue-report -driver mysql -dsn \"user:pass@tcp(localhost:3306)/library_db?parseTime=true\" -date 2026-05-01\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Driver != config.DriverSQLite && cmd.Driver != config.DriverMySQL {
		return fmt.Errorf("unsupported driver %q", cmd.Driver)
	}
	if cmd.Driver == config.DriverMySQL && cmd.DSN == "" {
		return fmt.Errorf("required flag -dsn not provided")
	}
	if cmd.Date != "" {
		if _, err := time.Parse(dateLayout, cmd.Date); err != nil {
			return fmt.Errorf("invalid -date %q: expected YYYY-MM-DD", cmd.Date)
		}
	}
	return nil
}

// reportDate returns the civil date the snapshot is computed for.
func (cmd *OverdueReportCommand) reportDate() (time.Time, error) {
	if cmd.Date != "" {
		d, err := time.Parse(dateLayout, cmd.Date)
		if err != nil {
			return time.Time{}, err
		}
		return clock.Date(d.Year(), d.Month(), d.Day()), nil
	}

	c := cmd.now
	if c == nil {
		loc, err := clock.LoadLocation(cmd.Timezone)
		if err != nil {
			return time.Time{}, err
		}
		c = clock.System{Location: loc}
	}
	return clock.Today(c), nil
}

func (cmd *OverdueReportCommand) Run() error {
	today, err := cmd.reportDate()
	if err != nil {
		return err
	}

	db, err := database.Open(config.Database{
		Driver: cmd.Driver,
		Path:   cmd.DatabasePath,
		DSN:    cmd.DSN,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := stats.NewAggregator(db.DB, clock.Fixed(today)).OverdueSnapshotAt(context.Background(), today)
	if err != nil {
		return fmt.Errorf("failed to compute overdue snapshot: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Overdue Report (%s)\n", today.Format(dateLayout))
	fmt.Fprintf(cmd.Out, "===========================\n")
	if len(rows) == 0 {
		fmt.Fprintln(cmd.Out, "No overdue loans.")
		return nil
	}

	for _, row := range rows {
		fmt.Fprintf(cmd.Out, "#%d  %s by %s\n", row.BorrowID, row.BookName, row.Author)
		fmt.Fprintf(cmd.Out, "    reader: %s (%s)\n", row.ReaderName, row.Phone)
		fmt.Fprintf(cmd.Out, "    borrowed %s, due %s, %d days overdue\n", row.BorrowDate, row.DueDate, row.OverdueDays)
	}
	fmt.Fprintf(cmd.Out, "\nTotal overdue: %d\n", len(rows))
	return nil
}
