package vnpay

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed codes.yaml
var codesYAML []byte

type codeEntry struct {
	Outcome string `yaml:"outcome"`
	Message string `yaml:"message"`
}

type codeCatalogue struct {
	ResponseCodes map[string]codeEntry `yaml:"response_codes"`
}

var (
	codesOnce sync.Once
	codes     codeCatalogue
	codesErr  error
)

func loadCodes() (codeCatalogue, error) {
	codesOnce.Do(func() {
		codesErr = yaml.Unmarshal(codesYAML, &codes)
	})
	return codes, codesErr
}

// ResponseMessage returns a learner-facing message for a gateway response
// code, falling back to a generic one that carries the code.
func ResponseMessage(code string) string {
	code = strings.TrimSpace(code)
	cat, err := loadCodes()
	if err == nil {
		if e, ok := cat.ResponseCodes[code]; ok && e.Message != "" {
			return e.Message
		}
	}
	if code == "" {
		return "Payment did not complete"
	}
	return fmt.Sprintf("Payment did not complete (code %s)", code)
}

// IsCancel reports whether the code means the learner backed out.
func IsCancel(code string) bool {
	cat, err := loadCodes()
	if err != nil {
		return code == "24"
	}
	return cat.ResponseCodes[strings.TrimSpace(code)].Outcome == "cancelled"
}
