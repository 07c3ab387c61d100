package config

// DBDriver selects the database backend.
type DBDriver string

const (
	// DBDriverMySQL selects the MySQL driver.
	DBDriverMySQL DBDriver = "mysql"
	// DBDriverPostgres selects the PostgreSQL driver.
	DBDriverPostgres DBDriver = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Driver   DBDriver
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}
