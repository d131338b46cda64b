// Package segment reads the newline-delimited JSON files written by the
// message collector. The collector appends to a file named exactly after
// its prefix and rotates it to prefix.<suffix> when full; only rotated
// segments are complete.
package segment

import (
	"bufio"
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/cognicore/noweats/pkg/noweats/ingest"
)

// maxLine bounds a single JSON record.
const maxLine = 4 << 20

// record is the subset of a collected message that the pipeline reads.
type record struct {
	Text            string          `json:"text"`
	Lang            string          `json:"lang"`
	RetweetedStatus json.RawMessage `json:"retweeted_status"`
	ExtendedTweet   *struct {
		FullText string `json:"full_text"`
	} `json:"extended_tweet"`
}

func (r record) message() ingest.Message {
	text := r.Text
	if r.ExtendedTweet != nil && len(r.ExtendedTweet.FullText) > len(text) {
		text = r.ExtendedTweet.FullText
	}
	retweet := len(r.RetweetedStatus) > 0 && string(r.RetweetedStatus) != "null"
	return ingest.Message{Text: text, Lang: r.Lang, Retweet: retweet}
}

// ListClosed returns the rotated segments for prefix in dir, in name order.
// The active file is never returned.
func ListClosed(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix+".") || len(name) == len(prefix)+1 {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// Open opens a segment, decompressing by extension: .bz2, .gz, .zst, or
// plain otherwise.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segment %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".bz2":
		return readCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip segment %s: %w", path, err)
		}
		return readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd segment %s: %w", path, err)
		}
		return readCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
	default:
		return f, nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReadMessages decodes JSON lines and returns the messages in the target
// language that are not retweets. Malformed lines are logged and skipped.
func ReadMessages(r io.Reader, lang string) ([]ingest.Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var msgs []ingest.Message
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d: %v", lineNo, err)
			continue
		}
		msg := rec.message()
		if msg.Text == "" || !msg.Accept(lang) {
			continue
		}
		msgs = append(msgs, msg)
	}
	if err := sc.Err(); err != nil {
		return msgs, fmt.Errorf("read line %d: %w", lineNo+1, err)
	}
	return msgs, nil
}

// ReadFile opens one segment and reads its messages.
func ReadFile(path, lang string) ([]ingest.Message, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	msgs, err := ReadMessages(rc, lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return msgs, nil
}

// ReadClosed reads every closed segment for prefix in dir.
func ReadClosed(dir, prefix, lang string) ([]ingest.Message, error) {
	paths, err := ListClosed(dir, prefix)
	if err != nil {
		return nil, err
	}

	var all []ingest.Message
	for _, p := range paths {
		msgs, err := ReadFile(p, lang)
		if err != nil {
			return nil, err
		}
		all = append(all, msgs...)
	}
	return all, nil
}
