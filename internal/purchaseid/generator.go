package purchaseid

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	partLen  = 3

	// DefaultMaxAttempts bounds the retry loop against the uniqueness probe.
	DefaultMaxAttempts = 50
)

// ErrExhausted is returned when no unused id was found within the attempt
// budget. It signals either a bug in the exists probe or a saturated id space
// and should page an operator rather than spin forever.
var ErrExhausted = errors.New("purchaseid: attempt budget exhausted")

var idPattern = regexp.MustCompile(`^[A-Z]{3}-[A-Z]{3}$`)

// Valid reports whether id has the canonical LLL-LLL shape.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Generator produces unique human-readable purchase ids of the form ABC-DEF.
// Each candidate is drawn uniformly over 26^6 combinations and checked against
// the Exists probe until an unused id is found or MaxAttempts is exceeded.
type Generator struct {
	Exists      func(ctx context.Context, id string) (bool, error)
	MaxAttempts int
}

// Generate returns an id for which Exists reported false. It has no side
// effects; nothing is reserved until the caller persists a record under the id.
func (g Generator) Generate(ctx context.Context) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id := random()
		if g.Exists == nil {
			return id, nil
		}
		taken, err := g.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrExhausted
}

func random() string {
	buf := make([]byte, 0, partLen*2+1)
	for i := 0; i < partLen*2; i++ {
		if i == partLen {
			buf = append(buf, '-')
		}
		buf = append(buf, alphabet[rand.IntN(len(alphabet))])
	}
	return string(buf)
}
