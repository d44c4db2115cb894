package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

var (
	ErrUnknownFormat   = errors.New("unknown report format")
	ErrUnknownCurrency = errors.New("unknown currency")
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%q %w", s, ErrUnknownFormat)
	}
}

type ReportingConfig struct {
	format   Format
	currency *money.Currency
	filePath string
}

// NewReportingConfig validates the currency code, an empty code prints bare
// numbers. An empty filePath writes to the caller's writer.
func NewReportingConfig(format Format, currencyCode string, filePath string) (*ReportingConfig, error) {
	cfg := &ReportingConfig{
		format:   format,
		filePath: filePath,
	}
	if currencyCode != "" {
		cur := money.GetCurrency(strings.ToUpper(currencyCode))
		if cur == nil {
			return nil, fmt.Errorf("%q %w", currencyCode, ErrUnknownCurrency)
		}
		cfg.currency = cur
	}
	return cfg, nil
}

func DefaultReportingConfig() *ReportingConfig {
	return &ReportingConfig{format: FormatText}
}
