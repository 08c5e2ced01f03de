package database

// Config holds configuration for a database connection. It is used both for
// the metadata store and for the source and target connections of a run.
type Config struct {
	// Driver is the database driver (mysql, mariadb, sqlite).
	Driver string `mapstructure:"driver" json:"driver" yaml:"driver" default:"sqlite"`
	// Host is the database host.
	Host string `mapstructure:"host" json:"host,omitempty" yaml:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" json:"port,omitempty" yaml:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" json:"user,omitempty" yaml:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" json:"password,omitempty" yaml:"password" default:""`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" json:"name" yaml:"name" default:"reconciler.db"`
	// TimeoutSeconds bounds connection setup, reads and writes.
	TimeoutSeconds int `mapstructure:"timeout_seconds" json:"timeout_seconds,omitempty" yaml:"timeout_seconds" default:"30"`
}

// IsSQLite reports whether the config targets sqlite.
func (c Config) IsSQLite() bool {
	return c.Driver == DriverSQLite
}

// Supported driver names.
const (
	DriverMySQL   = "mysql"
	DriverMariaDB = "mariadb"
	DriverSQLite  = "sqlite"
)
