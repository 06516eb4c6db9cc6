package config

// Default paths and policy values
const (
	// DefaultDatabasePath is the default path for the sqlite catalog database
	DefaultDatabasePath = "./library.db"

	// DefaultLoanPeriodDays is the fixed lending policy: due date = borrow date + 30 days
	DefaultLoanPeriodDays = 30

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)
