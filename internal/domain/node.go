package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type NodeKind int

const (
	KindCategory  NodeKind = iota // Object level keyed by category name
	KindCompanies                 // Array level of company records
)

func (k NodeKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindCompanies:
		return "companies"
	default:
		return "unknown"
	}
}

// Node is one level of the taxonomy. A category keeps its children in
// document order; a company list keeps its records in display order.
type Node struct {
	kind      NodeKind
	keys      []string
	children  map[string]*Node
	companies []CompanyRecord
}

// NewCategory creates an empty category node.
func NewCategory() *Node {
	return &Node{
		kind:     KindCategory,
		children: make(map[string]*Node),
	}
}

// NewCompanies creates a company list holding a copy of items.
func NewCompanies(items ...CompanyRecord) *Node {
	companies := make([]CompanyRecord, len(items))
	copy(companies, items)
	return &Node{
		kind:      KindCompanies,
		companies: companies,
	}
}

func (n *Node) Kind() NodeKind {
	return n.kind
}

func (n *Node) IsCategory() bool {
	return n != nil && n.kind == KindCategory
}

func (n *Node) IsCompanies() bool {
	return n != nil && n.kind == KindCompanies
}

// Keys returns the child names in document order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return keys
}

// Child returns the named child of a category node.
func (n *Node) Child(name string) (*Node, bool) {
	if !n.IsCategory() {
		return nil, false
	}
	child, ok := n.children[name]
	return child, ok
}

// Set adds or replaces a child. A new name is appended after the existing ones,
// a replaced name keeps its position.
func (n *Node) Set(name string, child *Node) {
	if _, exists := n.children[name]; !exists {
		n.keys = append(n.keys, name)
	}
	n.children[name] = child
}

// Companies returns a copy of the records of a company list.
func (n *Node) Companies() []CompanyRecord {
	companies := make([]CompanyRecord, len(n.companies))
	copy(companies, n.companies)
	return companies
}

// Len returns the number of children or records.
func (n *Node) Len() int {
	if n.kind == KindCompanies {
		return len(n.companies)
	}
	return len(n.keys)
}

func (n *Node) At(index int) (CompanyRecord, error) {
	if err := n.checkIndex(index); err != nil {
		return CompanyRecord{}, err
	}
	return n.companies[index], nil
}

// Append adds a record at the end of a company list.
func (n *Node) Append(record CompanyRecord) error {
	if !n.IsCompanies() {
		return ErrNotAList
	}
	n.companies = append(n.companies, record)
	return nil
}

// Replace overwrites the record at index.
func (n *Node) Replace(index int, record CompanyRecord) error {
	if err := n.checkIndex(index); err != nil {
		return err
	}
	n.companies[index] = record
	return nil
}

// Remove deletes the record at index, keeping the order of the rest.
func (n *Node) Remove(index int) error {
	if err := n.checkIndex(index); err != nil {
		return err
	}
	n.companies = append(n.companies[:index], n.companies[index+1:]...)
	return nil
}

func (n *Node) checkIndex(index int) error {
	if !n.IsCompanies() {
		return ErrNotAList
	}
	if index < 0 || index >= len(n.companies) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, index, len(n.companies))
	}
	return nil
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n.kind == KindCompanies {
		return NewCompanies(n.companies...)
	}
	clone := NewCategory()
	for _, key := range n.keys {
		clone.Set(key, n.children[key].Clone())
	}
	return clone
}

// ParseDocument decodes a taxonomy document. The root must be an object.
func ParseDocument(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if !root.IsCategory() {
		return nil, fmt.Errorf("%w: root must be an object", ErrInvalidDocument)
	}
	return &root, nil
}

// EncodeDocument serializes a taxonomy document preserving key order.
func EncodeDocument(root *Node) ([]byte, error) {
	return root.MarshalJSON()
}

func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	if n.kind == KindCompanies {
		companies := n.companies
		if companies == nil {
			companies = []CompanyRecord{}
		}
		data, err := json.Marshal(companies)
		if err != nil {
			return fmt.Errorf("failed to encode company list: %w", err)
		}
		buf.Write(data)
		return nil
	}

	buf.WriteByte('{')
	for i, key := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("failed to encode category name %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := n.children[key].encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	node, err := decodeNode(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after document", ErrInvalidDocument)
	}
	*n = *node
	return nil
}

func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected value %v", ErrInvalidDocument, tok)
	}

	switch delim {
	case '{':
		node := NewCategory()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
			}
			key := keyTok.(string)

			child, err := decodeNode(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Set(key, child)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return node, nil

	case '[':
		node := NewCompanies()
		for dec.More() {
			record, err := decodeRecord(dec)
			if err != nil {
				return nil, err
			}
			node.companies = append(node.companies, record)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return node, nil
	}

	return nil, fmt.Errorf("%w: unexpected delimiter %v", ErrInvalidDocument, delim)
}

// decodeRecord reads one company record, rejecting null entries and
// unknown fields.
func decodeRecord(dec *json.Decoder) (CompanyRecord, error) {
	var record CompanyRecord

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return record, fmt.Errorf("%w: company record: %v", ErrInvalidDocument, err)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return record, fmt.Errorf("%w: company record is null", ErrInvalidDocument)
	}

	strict := json.NewDecoder(bytes.NewReader(raw))
	strict.DisallowUnknownFields()
	if err := strict.Decode(&record); err != nil {
		return record, fmt.Errorf("%w: company record: %v", ErrInvalidDocument, err)
	}
	return record, nil
}
