// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// XML node kinds, distinguished by the name-prefix convention spec §4.8
// describes ("∆text", "∆decl", "⍙tag", "_N_name"): an element node's
// first pair is (character-vector "⍙"+tag-name, nested attribute/child
// structure), a text node is ("∆text", character-vector content), a
// comment node is ("∆comment", content), and a declaration/doctype node
// is ("∆decl"/"∆doctype", content). Each node is an associative array
// (spec §4.9 shape) so the same ⎕MAP-compatible N×2 convention used by
// JSON objects carries XML structure too.
const (
	xmlTagPrefix     = "⍙"
	xmlTextKey       = "∆text"
	xmlCommentKey    = "∆comment"
	xmlDeclKey       = "∆decl"
	xmlDoctypeKey    = "∆doctype"
	xmlAttrKeyPrefix = "_A_"
	xmlChildrenKey   = "_N_children"
)

// EncodeXML renders v (produced by DecodeXML, or built directly in the
// same node shape) back to XML text. Attribute values are emitted
// normalized per XML 1.0 §3.3.3 by encoding/xml's own escaper.
func EncodeXML(v *value.Value) []byte {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	writeXMLNode(enc, v)
	enc.Flush()
	return buf.Bytes()
}

func writeXMLNode(enc *xml.Encoder, v *value.Value) {
	pairs, ok := asAssociative(v)
	if !ok {
		// A multi-root document (spec's top-level "forest" case) is a
		// plain vector of pointer-wrapped nodes; write each in turn.
		if v.Rank() == 1 {
			n := v.Len()
			for i := int64(0); i < n; i++ {
				writeXMLNode(enc, unwrapPointee(v.At(i)))
			}
		}
		return
	}
	lookup := make(map[string]*value.Value, len(pairs))
	for _, p := range pairs {
		lookup[p.key] = p.val
	}
	if text, ok := lookup[xmlTextKey]; ok {
		enc.EncodeToken(xml.CharData([]byte(StringOf(text))))
		return
	}
	if comment, ok := lookup[xmlCommentKey]; ok {
		enc.EncodeToken(xml.Comment([]byte(StringOf(comment))))
		return
	}
	if decl, ok := lookup[xmlDeclKey]; ok {
		enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(StringOf(decl))})
		return
	}
	if doctype, ok := lookup[xmlDoctypeKey]; ok {
		enc.EncodeToken(xml.Directive([]byte("DOCTYPE " + StringOf(doctype))))
		return
	}
	for _, p := range pairs {
		if !strings.HasPrefix(p.key, xmlTagPrefix) {
			continue
		}
		name := xml.Name{Local: strings.TrimPrefix(p.key, xmlTagPrefix)}
		childPairs, _ := asAssociative(p.val)
		start := xml.StartElement{Name: name}
		for _, cp := range childPairs {
			if strings.HasPrefix(cp.key, xmlAttrKeyPrefix) {
				start.Attr = append(start.Attr, xml.Attr{
					Name:  xml.Name{Local: strings.TrimPrefix(cp.key, xmlAttrKeyPrefix)},
					Value: StringOf(cp.val),
				})
			}
		}
		enc.EncodeToken(start)
		for _, cp := range childPairs {
			if cp.key == xmlChildrenKey {
				n := cp.val.Len()
				for i := int64(0); i < n; i++ {
					child := unwrapPointee(cp.val.At(i))
					writeXMLNode(enc, child)
				}
			}
		}
		enc.EncodeToken(xml.EndElement{Name: name})
	}
}

// DecodeXML implements the two-pass tokenise-then-fold algorithm spec
// §4.8 describes: encoding/xml's Decoder supplies the tokenizer pass,
// and decodeXMLElement folds the token stream into a tree Value whose
// element/text/comment/declaration/doctype nodes are distinguished by
// the name-prefix convention above.
func DecodeXML(buf []byte) (*value.Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(buf))
	var roots []*value.Value
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Domain("XML decode: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el, err := decodeXMLElement(dec, t)
			if err != nil {
				return nil, err
			}
			roots = append(roots, el)
		case xml.ProcInst:
			roots = append(roots, makeAssoc(xmlDeclKey, CharVector(string(t.Inst))))
		case xml.Directive:
			roots = append(roots, makeAssoc(xmlDoctypeKey, CharVector(strings.TrimPrefix(string(t), "DOCTYPE "))))
		case xml.Comment:
			roots = append(roots, makeAssoc(xmlCommentKey, CharVector(string(t))))
		}
	}
	if len(roots) == 1 {
		return roots[0], nil
	}
	cells := make([]value.Cell, len(roots))
	for i, r := range roots {
		cells[i] = value.Pointer(r)
	}
	return value.NewVector(cells...), nil
}

func decodeXMLElement(dec *xml.Decoder, start xml.StartElement) (*value.Value, error) {
	var attrPairs []value.Cell
	for _, a := range start.Attr {
		attrPairs = append(attrPairs,
			value.Pointer(CharVector(xmlAttrKeyPrefix+a.Name.Local)),
			value.Pointer(CharVector(a.Value)))
	}
	var children []value.Cell
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, errs.Domain("XML decode: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeXMLElement(dec, t)
			if err != nil {
				return nil, err
			}
			children = append(children, value.Pointer(child))
		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			children = append(children, value.Pointer(makeAssoc(xmlTextKey, CharVector(text))))
		case xml.Comment:
			children = append(children, value.Pointer(makeAssoc(xmlCommentKey, CharVector(string(t)))))
		case xml.EndElement:
			rows := len(attrPairs)/2 + 1
			b := value.NewBuilder(value.NewShape(int64(rows), 2))
			for _, c := range attrPairs {
				b.Put(c)
			}
			childVec := value.NewVector(children...)
			b.Put(value.Pointer(CharVector(xmlChildrenKey)))
			b.Put(value.Pointer(childVec))
			node := b.Build()
			return makeAssoc(xmlTagPrefix+start.Name.Local, node), nil
		}
	}
}

// makeAssoc builds the 1-row associative-array Value {key: val} (spec
// §4.9 shape).
func makeAssoc(key string, val *value.Value) *value.Value {
	b := value.NewBuilder(value.NewShape(1, 2))
	b.Put(value.Pointer(CharVector(key)))
	b.Put(value.Pointer(val))
	return b.Build()
}
