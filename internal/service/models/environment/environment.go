package environment

import (
	"database/sql/driver"
	"errors"
	"os"
)

// Environment tags which deployment tier produced a record. It is purely
// descriptive metadata and never participates in uniqueness decisions.
type Environment string

const (
	EnvironmentProduction Environment = "PROD"
	EnvironmentStaging    Environment = "STG"
	EnvironmentLocal      Environment = "LOCAL"
)

var ErrInvalidEnvironment = errors.New("invalid environment")

func (e Environment) String() string {
	return string(e)
}

func (e Environment) Value() (driver.Value, error) {
	return e.String(), nil
}

func Parse(s string) (Environment, error) {
	switch s {
	case EnvironmentProduction.String():
		return EnvironmentProduction, nil
	case EnvironmentStaging.String():
		return EnvironmentStaging, nil
	case EnvironmentLocal.String():
		return EnvironmentLocal, nil
	default:
		return "", ErrInvalidEnvironment
	}
}

// Current derives the environment tag from the deployment context.
// Unknown or missing values fall back to LOCAL.
func Current() Environment {
	switch os.Getenv("APP_ENV") {
	case "production":
		return EnvironmentProduction
	case "staging", "preview":
		return EnvironmentStaging
	default:
		return EnvironmentLocal
	}
}
