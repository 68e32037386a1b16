package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Driver string

const (
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
	Memory   Driver = "memory"
)

// DatabaseDriver reads DATABASE_DRIVER and defaults to postgres.
func DatabaseDriver() (Driver, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	switch d := Driver(driver); d {
	case "":
		return Postgres, nil
	case Postgres, SQLite, Memory:
		return d, nil
	default:
		return "", fmt.Errorf("unknown DATABASE_DRIVER %q", driver)
	}
}

func SqlitePath() string {
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		return path
	}
	return "minesweeper.db"
}

func requireEnv(key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("no %s env variable set", key)
	}
	return value, nil
}

// PostgresParams are the POSTGRES_* variables used when DATABASE_URL is
// absent. The password may come from a file (docker secrets).
type PostgresParams struct {
	User     string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func loadPassword() (string, error) {
	if password, ok := os.LookupEnv("POSTGRES_PASSWORD"); ok {
		return password, nil
	}
	passwordFile, err := requireEnv("POSTGRES_PASSWORD_FILE")
	if err != nil {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE env variable set")
	}
	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func NewPostgresParams() (*PostgresParams, error) {
	var (
		params PostgresParams
		err    error
	)
	for key, dst := range map[string]*string{
		"POSTGRES_USER":    &params.User,
		"POSTGRES_HOST":    &params.Host,
		"POSTGRES_DB":      &params.DBName,
		"POSTGRES_SSLMODE": &params.SSLMode,
	} {
		if *dst, err = requireEnv(key); err != nil {
			return nil, err
		}
	}

	if params.Password, err = loadPassword(); err != nil {
		return nil, err
	}

	portStr, err := requireEnv("POSTGRES_PORT")
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}
	params.Port = uint16(port)

	return &params, nil
}

func (p PostgresParams) URL() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// DbURL prefers DATABASE_URL and falls back to the POSTGRES_* variables.
func DbURL() (string, error) {
	if dbURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		return dbURL, nil
	}
	params, err := NewPostgresParams()
	if err != nil {
		return "", fmt.Errorf("no DATABASE_URL set; %w", err)
	}
	return params.URL(), nil
}

// NewPgxpoolConfig applies DATABASE_MAX_CONNS on top of the parsed URL.
func NewPgxpoolConfig() (*pgxpool.Config, error) {
	dbURL, err := DbURL()
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	if maxConnsStr, ok := os.LookupEnv("DATABASE_MAX_CONNS"); ok {
		maxConns, err := strconv.ParseInt(maxConnsStr, 10, 32)
		if err != nil || maxConns <= 0 {
			return nil, fmt.Errorf("invalid DATABASE_MAX_CONNS %q", maxConnsStr)
		}
		cfg.MaxConns = int32(maxConns)
	}
	return cfg, nil
}
