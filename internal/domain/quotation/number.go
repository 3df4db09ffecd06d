package quotation

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

var numberPattern = regexp.MustCompile(`^Q-\d{8}-\d{4}$`)

// NumberGenerator issues quotation numbers of the form Q-YYYYMMDD-NNNN
type NumberGenerator struct {
	now    func() time.Time
	suffix func() int
}

// NewNumberGenerator creates a generator using the wall clock and a random suffix
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		now:    time.Now,
		suffix: func() int { return rand.IntN(10000) },
	}
}

// Next returns a new quotation number
func (g *NumberGenerator) Next() string {
	return fmt.Sprintf("Q-%s-%04d", g.now().Format("20060102"), g.suffix())
}

// IsValidNumber checks the Q-YYYYMMDD-NNNN format
func IsValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
