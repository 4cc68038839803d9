package compare

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter renders a comparison set
type Formatter interface {
	Format(compSet *ComparisonSet) (string, error)
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc func(compSet *ComparisonSet) (string, error)

func (f FormatterFunc) Format(compSet *ComparisonSet) (string, error) { return f(compSet) }

// FormatNames lists the formats accepted by FormatterFor
var FormatNames = []string{"table", "csv", "json"}

// FormatterFor returns the formatter registered under name
func FormatterFor(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "table", "console", "":
		tf := &TableFormatter{}
		return FormatterFunc(func(cs *ComparisonSet) (string, error) { return tf.Format(cs), nil }), nil
	case "compact":
		tf := &TableFormatter{}
		return FormatterFunc(func(cs *ComparisonSet) (string, error) { return tf.FormatCompact(cs) + "\n", nil }), nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return FormatterFunc(formatJSON), nil
	default:
		return nil, fmt.Errorf("unsupported comparison format %q (available: %s, compact)", name, strings.Join(FormatNames, ", "))
	}
}

func formatJSON(compSet *ComparisonSet) (string, error) {
	data, err := json.MarshalIndent(compSet, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
