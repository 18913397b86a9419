package deploy

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
)

type EnvFile struct {
	Keys   []string
	Values map[string]string
	// Duplicates lists keys declared more than once, each reported once.
	Duplicates []string
}

func ParseEnvFile(r io.Reader) (EnvFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EnvFile{}, err
	}
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return EnvFile{}, fmt.Errorf("parse env file: %w", err)
	}

	f := EnvFile{Values: values}
	seen := map[string]int{}
	var quote byte // set while inside a multi-line quoted value
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if quote != 0 {
			if closesQuote(line, quote) {
				quote = 0
			}
			continue
		}
		key, rest, ok := envLine(line)
		if !ok {
			continue
		}
		if _, parsed := values[key]; !parsed {
			continue
		}
		quote = openQuote(rest)
		seen[key]++
		switch seen[key] {
		case 1:
			f.Keys = append(f.Keys, key)
		case 2:
			f.Duplicates = append(f.Duplicates, key)
		}
	}
	if err := sc.Err(); err != nil {
		return EnvFile{}, err
	}
	return f, nil
}

// envLine splits a KEY=value line, tolerating "export " and "KEY: value".
func envLine(line string) (key, rest string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	i := strings.IndexAny(line, "=:")
	if i <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	if strings.ContainsAny(key, " \t\"'") {
		return "", "", false
	}
	return key, line[i+1:], true
}

// openQuote returns the quote character of a value that continues on the next line.
func openQuote(value string) byte {
	v := strings.TrimSpace(value)
	if v == "" || (v[0] != '"' && v[0] != '\'') {
		return 0
	}
	if closesQuote(v[1:], v[0]) {
		return 0
	}
	return v[0]
}

func closesQuote(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			return true
		}
	}
	return false
}
