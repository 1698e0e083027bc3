// Package captcha implements the arithmetic bot filter used on the public
// payment form and the admin login. Challenges are stateless: the correct
// answer travels base64-encoded inside the token and is checked against
// the client's answer on submission. This is a coarse filter against
// trivial bots, not a security boundary; tokens are replayable within
// their freshness window.
package captcha

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "×"
)

// TTLMinutes is the challenge freshness window.
const TTLMinutes = 5

var (
	ErrMalformedToken = errors.New("captcha token is malformed")
	ErrExpired        = errors.New("captcha token has expired")
	ErrWrongAnswer    = errors.New("captcha answer is wrong")
)

// Challenge is what the client receives. The correct answer is only ever
// transmitted inside the token.
type Challenge struct {
	A        int      `json:"a"`
	B        int      `json:"b"`
	Operator Operator `json:"operator"`
	Token    string   `json:"token"`

	answer int
}

// Answer exposes the expected result for callers inside the process.
func (c Challenge) Answer() int { return c.answer }

type Generator struct {
	salt string
	now  func() time.Time
}

func New(salt string) *Generator {
	return &Generator{salt: salt, now: time.Now}
}

// Issue picks an operator uniformly and builds operands whose result is
// non-negative and bounded: addition 1-20 each, subtraction 10-29 minus
// 1..minuend, multiplication 2-10 each.
func (g *Generator) Issue() Challenge {
	var a, b, answer int
	var op Operator

	switch rand.IntN(3) {
	case 0:
		op = OpAdd
		a = rand.IntN(20) + 1
		b = rand.IntN(20) + 1
		answer = a + b
	case 1:
		op = OpSub
		a = rand.IntN(20) + 10
		b = rand.IntN(a) + 1
		answer = a - b
	default:
		op = OpMul
		a = rand.IntN(9) + 2
		b = rand.IntN(9) + 2
		answer = a * b
	}

	return Challenge{
		A:        a,
		B:        b,
		Operator: op,
		Token:    g.encode(answer),
		answer:   answer,
	}
}

// encode produces base64("{answer}:{epochMinute}:{salt}"). The format is
// load-bearing: tokens issued by the previous deployment must keep
// verifying during a rollout.
func (g *Generator) encode(answer int) string {
	minute := g.now().Unix() / 60
	raw := fmt.Sprintf("%d:%d:%s", answer, minute, g.salt)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Verify checks a token/answer pair. Only the first two token segments
// are read, matching the legacy verifier; the salt segment is carried but
// not compared.
func (g *Generator) Verify(token, submitted string) error {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return ErrMalformedToken
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) < 2 {
		return ErrMalformedToken
	}

	embedded, err := strconv.Atoi(parts[0])
	if err != nil {
		return ErrMalformedToken
	}

	issuedMinute, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrMalformedToken
	}

	if g.now().Unix()/60-issuedMinute > TTLMinutes {
		return ErrExpired
	}

	answer, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil {
		return ErrWrongAnswer
	}

	if answer != embedded {
		return ErrWrongAnswer
	}

	return nil
}
