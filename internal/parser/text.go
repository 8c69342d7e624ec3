package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text that was already extracted from a
// transcript. Form feeds, when present, separate pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pages []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		for {
			before, after, found := strings.Cut(line, "\f")
			current.WriteString(before)
			if !found {
				break
			}
			pages = append(pages, current.String())
			current.Reset()
			line = after
		}
		current.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current.Len() > 0 {
		pages = append(pages, current.String())
	}

	return &Document{
		Title: titleFromFilename(filename),
		Pages: pages,
	}, nil
}
