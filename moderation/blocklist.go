package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"gatechat/errors"
)

//go:embed blocklist/*
var blocklistFS embed.FS

// Blocklist carries the loaded terms plus metadata for logging.
type Blocklist struct {
	Terms     []string
	Languages []string
}

// LoadBlocklist reads the embedded per-language term files. Each .txt file
// holds one term per line; the filename (e.g. "en.txt") names the language.
func LoadBlocklist() (*Blocklist, error) {
	entries, err := fs.ReadDir(blocklistFS, "blocklist")
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := blocklistFS.ReadFile("blocklist/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				unique[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}

	terms := make([]string, 0, len(unique))
	for t := range unique {
		terms = append(terms, t)
	}
	return &Blocklist{Terms: terms, Languages: languages}, nil
}
