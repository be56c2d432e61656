// Package corpus reads message collections from disk.
package corpus

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Message is one chat message or post to extract keyphrases from.
type Message struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Load reads messages from path, picking the format by extension:
// .jsonl (one {"text": ...} object per line), .csv (a "content" column,
// as in chat exports) or anything else as one message per line.
func Load(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	var msgs []Message
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		msgs, err = ReadJSONL(f, path)
	case ".csv":
		msgs, err = ReadCSV(f)
	default:
		msgs, err = ReadLines(f)
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no messages found in %s", path)
	}
	return msgs, nil
}

// ReadJSONL reads one JSON object per line. Malformed lines are skipped
// with a warning; name is used in the log only.
func ReadJSONL(r io.Reader, name string) ([]Message, error) {
	var msgs []Message
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", line, name, err)
			continue
		}
		if m.ID == "" {
			m.ID = fmt.Sprintf("%d", line)
		}
		msgs = append(msgs, m)
	}
	return msgs, sc.Err()
}

// ReadCSV reads the "content" column of a CSV file with a header row.
// An "id" column is used when present.
func ReadCSV(r io.Reader) ([]Message, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	content, id := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "content":
			content = i
		case "id":
			id = i
		}
	}
	if content < 0 {
		return nil, errors.New(`missing "content" column`)
	}

	var msgs []Message
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if content >= len(rec) {
			continue
		}
		m := Message{ID: fmt.Sprintf("%d", row), Text: rec[content]}
		if id >= 0 && id < len(rec) && rec[id] != "" {
			m.ID = rec[id]
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// ReadLines treats every non-blank line as a message.
func ReadLines(r io.Reader) ([]Message, error) {
	var msgs []Message
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		msgs = append(msgs, Message{ID: fmt.Sprintf("%d", line), Text: text})
	}
	return msgs, sc.Err()
}

// Texts returns the message bodies in order.
func Texts(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return sc
}
