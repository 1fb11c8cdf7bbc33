// Package md renders extracted fnote documents as HTML.
package md

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// mdParser is a pre-configured goldmark instance. Raw HTML in the document is
// passed through.
var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Placeholders survive markdown conversion untouched. They carry the footnote
// number between the two passes.
const (
	refPlaceholderPrefix   = "FNREF"
	entryPlaceholderPrefix = "FNENTRY"
	placeholderSuffix      = "END"
)

var (
	refPattern   = regexp.MustCompile(`\^(\d+)`)
	entryPattern = regexp.MustCompile(`^FN-(\d+):`)

	refPlaceholder   = regexp.MustCompile(refPlaceholderPrefix + `(\d+)` + placeholderSuffix)
	entryPlaceholder = regexp.MustCompile(`<p>` + entryPlaceholderPrefix + `(\d+)` + placeholderSuffix)
)

// blockSeparator ends every dump entry.
var blockSeparator = []byte("\n\n")

// RenderHTML converts an extracted document to HTML. Reference tokens become
// superscript links to their entries and every dump entry becomes a footnote
// paragraph linking back to its reference. An entry runs from "FN-N:" at the
// start of a block to the next blank line.
func RenderHTML(doc []byte) ([]byte, error) {
	if len(doc) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := mdParser.Convert(preprocess(doc), &buf); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	return postprocess(buf.Bytes()), nil
}

// preprocess replaces reference tokens and entry labels with placeholders.
func preprocess(doc []byte) []byte {
	blocks := bytes.Split(doc, blockSeparator)
	out := make([]byte, 0, len(doc)+len(blocks)*8)

	for i, block := range blocks {
		if i > 0 {
			out = append(out, blockSeparator...)
		}

		body := bytes.TrimLeft(block, "\n")
		out = append(out, block[:len(block)-len(body)]...)

		if m := entryPattern.FindSubmatchIndex(body); m != nil {
			out = append(out, entryPlaceholderPrefix...)
			out = append(out, body[m[2]:m[3]]...)
			out = append(out, placeholderSuffix...)
			body = body[m[1]:]
		}
		out = append(out, refPattern.ReplaceAll(body, []byte(refPlaceholderPrefix+"${1}"+placeholderSuffix))...)
	}

	return out
}

// postprocess replaces placeholders with their HTML.
func postprocess(rendered []byte) []byte {
	rendered = entryPlaceholder.ReplaceAll(rendered,
		[]byte(`<p class="footnote" id="fn-${1}"><a href="#fnref-${1}">${1}</a>. `))
	return refPlaceholder.ReplaceAll(rendered,
		[]byte(`<sup id="fnref-${1}"><a href="#fn-${1}">${1}</a></sup>`))
}
