// Package config loads run parameters: CLI flags for the run itself and
// environment credentials for the portal session.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// CLI is the command line surface, parsed with kong.
type CLI struct {
	Query       []string `help:"Search result URL to process; repeatable." short:"q"`
	QueriesFile string   `help:"File with one search URL per line." type:"existingfile" optional:""`
	Apply       bool     `help:"Submit applications; without it the run is read-only." default:"false"`
	Output      string   `help:"Path of the exported CSV report." short:"o" default:"output.csv"`
	Answers     string   `help:"Path of the persistent answer cache." default:"answers.csv"`
	Headless    bool     `help:"Run the browser headless." default:"false" negatable:""`
	UserAgent   string   `help:"Override the browser user agent." optional:""`
	EnvFile     string   `help:"Env file holding CATHO_EMAIL and CATHO_PASSWORD." default:".env"`
	LoginURL    string   `help:"Portal login page." default:"https://seguro.catho.com.br/signin/"`
	Verbose     bool     `help:"Enable debug logging." short:"v" default:"false"`
}

// Credentials is the portal login pair.
type Credentials struct {
	Email    string
	Password string
}

// LoadCredentials reads CATHO_EMAIL and CATHO_PASSWORD, loading envFile
// first when it exists. The process environment wins over the file.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	creds := Credentials{
		Email:    os.Getenv("CATHO_EMAIL"),
		Password: os.Getenv("CATHO_PASSWORD"),
	}
	if creds.Email == "" || creds.Password == "" {
		return Credentials{}, errors.New("CATHO_EMAIL and CATHO_PASSWORD must be set")
	}
	return creds, nil
}

// Queries merges the repeated --query flags with the queries file, in that
// order. Blank lines and #-comments in the file are skipped.
func (c *CLI) Queries() ([]string, error) {
	queries := append([]string(nil), c.Query...)

	if c.QueriesFile != "" {
		file, err := os.Open(c.QueriesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open queries file: %w", err)
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			queries = append(queries, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read queries file: %w", err)
		}
	}

	if len(queries) == 0 {
		return nil, errors.New("no search queries given; use --query or --queries-file")
	}
	return queries, nil
}
