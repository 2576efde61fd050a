package dialect

import "fmt"

// GetDialect returns the Dialect implementation for a database/sql driver name.
func GetDialect(driver string) (Dialect, error) {
	switch driver {
	case "mysql", "":
		return &MysqlDialect{}, nil
	case "sqlite", "sqlite3":
		return &SqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (supported: mysql, sqlite)", driver)
	}
}

// DriverName maps a configured driver to the name registered with database/sql.
func DriverName(driver string) string {
	switch driver {
	case "sqlite3":
		return "sqlite"
	case "":
		return "mysql"
	default:
		return driver
	}
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*SqliteDialect)(nil)
