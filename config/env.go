// Onionr - P2P Anonymous Storage Network
// Copyright (C) 2025 Onionr contributors
//
// This file is part of Onionr.
//
// Onionr is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Onionr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Onionr. If not, see <https://www.gnu.org/licenses/>.


package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// envVarPattern matches ${VAR} or ${VAR:default}
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment variable values
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// SubstituteEnvVarsInTree walks a decoded JSON tree (as produced by
// json.Unmarshal into map[string]interface{}) and substitutes ${VAR}
// references in every leaf string value, in place.
func SubstituteEnvVarsInTree(node interface{}) interface{} {
	switch v := node.(type) {
	case string:
		return SubstituteEnvVars(v)
	case map[string]interface{}:
		for k, child := range v {
			v[k] = SubstituteEnvVarsInTree(child)
		}
		return v
	case []interface{}:
		for i, child := range v {
			v[i] = SubstituteEnvVarsInTree(child)
		}
		return v
	default:
		return node
	}
}

// GetEnvironment returns the current environment from ONIONR_ENV or defaults to development
func GetEnvironment() string {
	env := os.Getenv("ONIONR_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction returns true if running in production environment
func IsProduction() bool {
	return GetEnvironment() == "production"
}

// IsDevelopment returns true if running in development or local environment
func IsDevelopment() bool {
	env := GetEnvironment()
	return env == "development" || env == "local"
}

// DataDir resolves the node's data directory: ONIONR_HOME then DATA_DIR
// then "./data/" — first set wins, per spec section 6 "Environment".
func DataDir() string {
	if v := os.Getenv("ONIONR_HOME"); v != "" {
		return v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		return v
	}
	return "./data/"
}

// LoadDotEnv loads a ".env" file at path into the process environment
// without overwriting variables already set, so an operator's shell
// exports still win over a committed default file. A missing file is
// not an error — most deployments have none.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
