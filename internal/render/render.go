// Package render writes parsed task parameters as an XML document.
package render

import (
	"io"

	"github.com/beevik/etree"
	"github.com/newhook/tasklog/internal/taskparam"
)

// DefaultRootElement wraps the parameter elements when no root is configured.
const DefaultRootElement = "Task"

// Options controls document output.
type Options struct {
	RootElement string
	Indent      int
	// Declaration adds an <?xml ...?> header.
	Declaration bool
}

// Document builds a document with one root element holding every parameter, in order.
func Document(params []*taskparam.Parameter, opts Options) *etree.Document {
	doc := etree.NewDocument()
	if opts.Declaration {
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	}
	root := opts.RootElement
	if root == "" {
		root = DefaultRootElement
	}
	parent := doc.CreateElement(root)
	for _, p := range params {
		p.SaveToElement(parent)
	}
	if opts.Indent > 0 {
		doc.Indent(opts.Indent)
	}
	return doc
}

// Write renders params to w.
func Write(w io.Writer, params []*taskparam.Parameter, opts Options) error {
	_, err := Document(params, opts).WriteTo(w)
	return err
}

// String renders params to a string.
func String(params []*taskparam.Parameter, opts Options) (string, error) {
	return Document(params, opts).WriteToString()
}
