package opencatalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func init() {
	mxj.XmlCharsetReader = charsetReader
}

var charsets = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"cp1251":       charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
}

// charsetReader decodes documents whose XML declaration names a single-byte
// charset. encoding/xml only asks for non UTF-8 labels.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	cm, ok := charsets[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return nil, fmt.Errorf("unsupported xml charset %q", label)
	}
	return transform.NewReader(input, cm.NewDecoder()), nil
}
