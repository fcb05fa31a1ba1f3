package opencatalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/text/transform"
)

// outsideBlanks may surround the root element, a UTF-8 byte order mark
// included.
const outsideBlanks = " \t\r\n\ufeff"

var (
	errNoRoot    = errors.New("document has no root element")
	errExtraRoot = errors.New("content after the root element")
	errStrayText = errors.New("text outside the root element")
)

// checkDocument walks raw once and accepts exactly one root element with
// only blanks, comments, directives and processing instructions around it.
// It returns the charset label of the XML declaration, if not UTF-8.
func checkDocument(raw []byte) (string, error) {
	var label string
	d := xml.NewDecoder(bytes.NewReader(raw))
	d.CharsetReader = func(cs string, input io.Reader) (io.Reader, error) {
		label = cs
		return charsetReader(cs, input)
	}

	depth, roots := 0, 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return "", errExtraRoot
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.Trim(t, outsideBlanks)) > 0 {
				return "", errStrayText
			}
		}
	}
	if roots == 0 {
		return "", errNoRoot
	}
	return label, nil
}

// decodeSeq maps a checked document keeping sibling order in "#seq".
func decodeSeq(raw []byte, label string) (mxj.MapSeq, error) {
	doc := raw
	if label != "" {
		cm, ok := charsets[strings.ToLower(strings.TrimSpace(label))]
		if !ok {
			return nil, errors.New("unsupported xml charset " + label)
		}
		utf8Doc, _, err := transform.Bytes(cm.NewDecoder(), raw)
		if err != nil {
			return nil, err
		}
		doc = utf8Doc
	}

	// Each prolog token (declaration, comment, doctype) comes back alone as
	// NoRoot; the reader is left just past it, so keep reading.
	r := bytes.NewReader(doc)
	for {
		m, err := mxj.NewMapXmlSeqReader(r)
		if errors.Is(err, mxj.NoRoot) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}
