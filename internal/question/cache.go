package question

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	cacheDelimiter    = ';'
	cacheHeaderTitle  = "question"
	cacheHeaderAnswer = "answer"
)

// Cache is the durable question-title to answer mapping. It is loaded fully
// on open and every new entry is appended and flushed to disk before Put
// returns, so a crash mid-questionnaire never loses a resolved answer.
// Entries are never rewritten; a re-answered question appends a new row and
// the loader keeps the last occurrence.
type Cache struct {
	path    string
	answers map[string]string
	file    *os.File
	w       *csv.Writer
}

// OpenCache loads the cache at path, creating the file (with its header)
// when it does not exist yet.
func OpenCache(path string) (*Cache, error) {
	answers, err := loadAnswers(path)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open answer cache: %w", err)
	}

	w := csv.NewWriter(file)
	w.Comma = cacheDelimiter

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := w.Write([]string{cacheHeaderTitle, cacheHeaderAnswer}); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write answer cache header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &Cache{path: path, answers: answers, file: file, w: w}, nil
}

func loadAnswers(path string) (map[string]string, error) {
	answers := make(map[string]string)

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return answers, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open answer cache: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = cacheDelimiter
	r.FieldsPerRecord = 2

	for first := true; ; first = false {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return answers, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read answer cache: %w", err)
		}
		if first && row[0] == cacheHeaderTitle {
			continue
		}
		// Last occurrence wins for duplicated titles.
		answers[row[0]] = row[1]
	}
}

// Get returns the cached answer for a question title.
func (c *Cache) Get(title string) (string, bool) {
	answer, ok := c.answers[title]
	return answer, ok
}

// Len returns the number of distinct cached titles.
func (c *Cache) Len() int {
	return len(c.answers)
}

// Put records an answer and flushes it to disk before returning.
func (c *Cache) Put(title, answer string) error {
	if err := c.w.Write([]string{title, answer}); err != nil {
		return fmt.Errorf("failed to append answer cache entry: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush answer cache: %w", err)
	}
	if err := c.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync answer cache: %w", err)
	}
	c.answers[title] = answer
	return nil
}

// Close releases the underlying file.
func (c *Cache) Close() error {
	return c.file.Close()
}
