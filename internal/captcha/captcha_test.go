package captcha

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"
)

const testSalt = "test-salt"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueOperandRanges(t *testing.T) {
	g := New(testSalt)

	for i := 0; i < 500; i++ {
		c := g.Issue()

		switch c.Operator {
		case OpAdd:
			if c.A < 1 || c.A > 20 || c.B < 1 || c.B > 20 {
				t.Fatalf("addition operands out of range: %d + %d", c.A, c.B)
			}
			if c.Answer() != c.A+c.B {
				t.Fatalf("addition answer mismatch: %d + %d = %d", c.A, c.B, c.Answer())
			}
		case OpSub:
			if c.A < 10 || c.A > 29 {
				t.Fatalf("minuend out of range: %d", c.A)
			}
			if c.B < 1 || c.B > c.A {
				t.Fatalf("subtrahend out of range: %d - %d", c.A, c.B)
			}
			if c.Answer() < 0 {
				t.Fatalf("negative subtraction result: %d - %d", c.A, c.B)
			}
		case OpMul:
			if c.A < 2 || c.A > 10 || c.B < 2 || c.B > 10 {
				t.Fatalf("multiplication operands out of range: %d × %d", c.A, c.B)
			}
			if c.Answer() != c.A*c.B {
				t.Fatalf("multiplication answer mismatch")
			}
		default:
			t.Fatalf("unknown operator %q", c.Operator)
		}
	}
}

func TestTokenWireFormat(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 30, 0, time.UTC)
	g := &Generator{salt: testSalt, now: fixedClock(issued)}

	token := g.encode(12)

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not base64: %v", err)
	}

	want := fmt.Sprintf("12:%d:%s", issued.Unix()/60, testSalt)
	if string(decoded) != want {
		t.Errorf("token payload = %q, want %q", decoded, want)
	}
}

func TestVerifyScenario(t *testing.T) {
	// Challenge: 7 + 5 issued at a fixed minute.
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &Generator{salt: testSalt, now: fixedClock(issued)}
	token := g.encode(12)

	// Correct answer within the window verifies.
	g.now = fixedClock(issued.Add(3 * time.Minute))
	if err := g.Verify(token, "12"); err != nil {
		t.Errorf("Verify(correct, fresh) = %v, want nil", err)
	}

	// Wrong answer fails.
	if err := g.Verify(token, "13"); !errors.Is(err, ErrWrongAnswer) {
		t.Errorf("Verify(wrong) = %v, want ErrWrongAnswer", err)
	}

	// Correct answer after 6 minutes is expired.
	g.now = fixedClock(issued.Add(6 * time.Minute))
	if err := g.Verify(token, "12"); !errors.Is(err, ErrExpired) {
		t.Errorf("Verify(correct, stale) = %v, want ErrExpired", err)
	}
}

func TestVerifyReplayAllowed(t *testing.T) {
	// No consumption state is kept: the same token+answer verifies more
	// than once within the window. Documented behavior, not a bug.
	g := New(testSalt)
	token := g.encode(8)

	for i := 0; i < 3; i++ {
		if err := g.Verify(token, "8"); err != nil {
			t.Fatalf("replay %d rejected: %v", i, err)
		}
	}
}

func TestVerifyMalformed(t *testing.T) {
	g := New(testSalt)

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"no separator", base64.StdEncoding.EncodeToString([]byte("12"))},
		{"non-numeric answer", base64.StdEncoding.EncodeToString([]byte("abc:123:salt"))},
		{"non-numeric minute", base64.StdEncoding.EncodeToString([]byte("12:abc:salt"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.Verify(tt.token, "12"); !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Verify() = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestVerifyUnparseableAnswerIsWrong(t *testing.T) {
	g := New(testSalt)
	token := g.encode(4)

	if err := g.Verify(token, "four"); !errors.Is(err, ErrWrongAnswer) {
		t.Errorf("Verify(non-numeric answer) = %v, want ErrWrongAnswer", err)
	}
}
