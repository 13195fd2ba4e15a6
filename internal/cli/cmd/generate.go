package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/smoynes/forge/internal/cli"
	"github.com/smoynes/forge/internal/constraint"
	"github.com/smoynes/forge/internal/log"
)

// generate is a thin CLI front end over the constraint package, useful for exploring how a
// ConstraintSet expression resolves without writing a full control file. It is not the generator
// itself -- that lives in internal/gen -- just a way to poke at the algebra from a shell.
type generate struct {
	fs *cli.FlagSet

	expr  string
	count int
	seed  int64
}

var _ cli.Command = (*generate)(nil)

// Generate constructs the "generate" sub-command.
func Generate() *generate { //nolint:revive // unexported return matches sibling commands' style.
	g := &generate{
		fs: flag.NewFlagSet("generate", flag.ExitOnError),
	}

	g.fs.StringVar(&g.expr, "expr", "0-15", "comma-separated constraint expression, e.g. \"0-15,20,30-39\"")
	g.fs.IntVar(&g.count, "count", 1, "number of values to choose")
	g.fs.Int64Var(&g.seed, "seed", 1, "PRNG seed")

	return g
}

func (g *generate) FlagSet() *cli.FlagSet { return g.fs }

func (*generate) Description() string {
	return "choose values from a constraint expression"
}

func (*generate) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `generate -expr <constraint-expr> [-count N] [-seed N]

Parses a constraint expression and chooses -count values from it uniformly at random.`)

	return err
}

func (g *generate) Run(_ context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	set, err := parseConstraintExpr(g.expr)
	if err != nil {
		logger.Error("invalid constraint expression", "err", err, "expr", g.expr)
		return 1
	}

	if set.IsEmpty() {
		logger.Error("constraint expression resolved to an empty set", "expr", g.expr)
		return 1
	}

	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic test-input generation, not crypto.

	for i := 0; i < g.count; i++ {
		v, err := set.ChooseValue(rng)
		if err != nil {
			logger.Error("choose", "err", err)
			return 1
		}

		fmt.Fprintln(out, v)
	}

	return 0
}

// parseConstraintExpr parses a comma-separated list of "v" or "lo-hi" terms into a Set.
func parseConstraintExpr(expr string) (*constraint.Set, error) {
	terms := strings.Split(expr, ",")
	cs := make([]constraint.Constraint, 0, len(terms))

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		lo, hi, found := strings.Cut(term, "-")

		loVal, err := strconv.ParseUint(lo, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}

		if !found {
			cs = append(cs, constraint.Value(loVal))
			continue
		}

		hiVal, err := strconv.ParseUint(hi, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}

		cs = append(cs, constraint.Range(loVal, hiVal))
	}

	return constraint.NewSet(cs...), nil
}
