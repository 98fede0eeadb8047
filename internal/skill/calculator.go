package skill

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// spokenOperators maps spoken phrases to operator symbols. Longer
// phrases are listed first so "divided by" wins over "divide".
var spokenOperators = []struct {
	phrase string
	symbol string
}{
	{"to the power of", "^"},
	{"open parenthesis", "("},
	{"close parenthesis", ")"},
	{"multiplied by", "*"},
	{"divided by", "/"},
	{"divide by", "/"},
	{"difference", "-"},
	{"multiply", "*"},
	{"subtract", "-"},
	{"modulo", "%"},
	{"minus", "-"},
	{"times", "*"},
	{"power", "^"},
	{"point", "."},
	{"into", "*"},
	{"plus", "+"},
	{"mod", "%"},
	{"add", "+"},
	{"sum", "+"},
	{"dot", "."},
}

// calculatorTriggers are the trigger words stripped before parsing.
var calculatorTriggers = []string{"calculate", "what is", "what's", "compute"}

// Calculator evaluates spoken or typed arithmetic. It opts out when the
// query carries no evaluable expression, so broader handlers (or
// lower-priority ones sharing "what is") can take over.
func Calculator() Module {
	return New("calculator", func(reg *dispatch.Registry) (int, error) {
		err := reg.Register(
			[]string{"calculate", "what is", "what's", "compute"},
			cmdCalculate,
			dispatch.WithPriority(50),
		)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
}

func cmdCalculate(sess *session.Session, query string) dispatch.Result {
	expr := extractExpression(query)
	if expr == "" {
		return dispatch.OptOut()
	}

	value, err := evalExpression(expr)
	if err != nil {
		return dispatch.Errorf("could not calculate %q: %v", strings.TrimSpace(expr), err)
	}

	return dispatch.Replyf("The answer is %s", formatNumber(value)).
		WithData("expression", strings.Join(strings.Fields(expr), " ")).
		WithData("value", value)
}

// extractExpression normalizes a spoken query into an arithmetic
// expression, or "" when the query has none.
func extractExpression(query string) string {
	q := strings.ToLower(query)

	for _, trigger := range calculatorTriggers {
		q = strings.ReplaceAll(q, trigger, " ")
	}
	for _, op := range spokenOperators {
		q = strings.ReplaceAll(q, op.phrase, " "+op.symbol+" ")
	}

	var b strings.Builder
	hasDigit := false
	for _, r := range q {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
			b.WriteRune(r)
		case strings.ContainsRune("+-*/%^()., ", r):
			if r == ',' {
				continue // "1,000" style separators
			}
			b.WriteRune(r)
		default:
			// Unknown word; a space keeps adjacent numbers apart.
			b.WriteRune(' ')
		}
	}

	if !hasDigit {
		return ""
	}
	return b.String()
}

// exprParser is a precedence-climbing parser over an operator token
// stream. Grammar: expr := unary (op expr)* with ^ right-associative.
type exprParser struct {
	tokens []string
	pos    int
}

func evalExpression(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("empty expression")
	}

	p := &exprParser{tokens: tokens}
	value, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("unexpected %q", p.tokens[p.pos])
	}
	return value, nil
}

func tokenize(expr string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(expr) && (expr[j] >= '0' && expr[j] <= '9' || expr[j] == '.') {
				j++
			}
			tokens = append(tokens, expr[i:j])
			i = j
		case strings.ContainsRune("+-*/%^()", rune(c)):
			tokens = append(tokens, string(c))
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return tokens, nil
}

var precedence = map[string]int{
	"+": 1, "-": 1,
	"*": 2, "/": 2, "%": 2,
	"^": 3,
}

func (p *exprParser) parseExpr(minPrec int) (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for p.pos < len(p.tokens) {
		op := p.tokens[p.pos]
		prec, ok := precedence[op]
		if !ok || prec < minPrec {
			break
		}
		p.pos++

		next := prec + 1
		if op == "^" { // right-associative
			next = prec
		}
		right, err := p.parseExpr(next)
		if err != nil {
			return 0, err
		}

		left, err = apply(op, left, right)
		if err != nil {
			return 0, err
		}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.pos >= len(p.tokens) {
		return 0, fmt.Errorf("expression ended unexpectedly")
	}

	switch tok := p.tokens[p.pos]; tok {
	case "-":
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	case "+":
		p.pos++
		return p.parseUnary()
	case "(":
		p.pos++
		v, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos] != ")" {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	default:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", tok)
		}
		p.pos++
		return v, nil
	}
}

func apply(op string, left, right float64) (float64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "%":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return math.Mod(left, right), nil
	case "^":
		return math.Pow(left, right), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", op)
	}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
