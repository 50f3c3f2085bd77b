// Package xmlutils wraps xmlpath for reading XML statements.
package xmlutils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// Parse reads an XML document.
func Parse(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// LoadXMLFile loads an XML file and returns its root node.
func LoadXMLFile(path string) (*xmlpath.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XML file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Nodes returns every node matching xpath under root.
func Nodes(root *xmlpath.Node, xpath string) ([]*xmlpath.Node, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}
	var out []*xmlpath.Node
	iter := path.Iter(root)
	for iter.Next() {
		out = append(out, iter.Node())
	}
	return out, nil
}

// ExtractFromXML returns the string values of every node matching xpath.
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	nodes, err := Nodes(root, xpath)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(nodes))
	for i, n := range nodes {
		values[i] = n.String()
	}
	return values, nil
}

// First returns the cleaned value of the first match, or "" when there is none or the
// expression is invalid.
func First(root *xmlpath.Node, xpath string) string {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return ""
	}
	if v, ok := path.String(root); ok {
		return CleanText(v)
	}
	return ""
}

// Exists reports whether xpath matches anything under root.
func Exists(root *xmlpath.Node, xpath string) bool {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return false
	}
	return path.Exists(root)
}

// GetOrEmpty returns slice[index], or "" when out of range.
func GetOrEmpty(slice []string, index int) string {
	if index >= 0 && index < len(slice) {
		return slice[index]
	}
	return ""
}

// CleanText collapses whitespace and strips the labels banks prefix to remittance text.
func CleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	for _, prefix := range []string{
		"Remittance Info: ",
		"Remittance Information: ",
		"Additional Entry Info: ",
		"Additional Transaction Info: ",
		"Details: ",
	} {
		text = strings.TrimPrefix(text, prefix)
	}
	return strings.TrimSpace(text)
}
