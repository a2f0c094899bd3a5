package codec

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// #region call
// Call runs g under the budget b and reports whether usable text came back.
// Nil generators, errors, timeouts, panics and blank output all yield
// ("", false); none of them are returned to the caller. Request fields left
// at zero take their value from b.
func Call(ctx context.Context, g Generator, req Request, b Budget) (string, bool) {
	if g == nil {
		return "", false
	}
	if req.MaxNewTokens <= 0 {
		req.MaxNewTokens = b.MaxNewTokens
	}
	if req.MaxTime <= 0 {
		req.MaxTime = b.MaxTime
	}
	if req.MaxTime <= 0 {
		req.MaxTime = DefaultBudget().MaxTime
	}

	callCtx, cancel := context.WithTimeout(ctx, req.MaxTime)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := g.Generate(callCtx, req)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-callCtx.Done():
		log.Printf("[CODEC] generate abandoned after %s: %v", req.MaxTime, callCtx.Err())
		return "", false
	case out := <-done:
		if out.err != nil {
			if !errors.Is(out.err, ErrUnavailable) {
				log.Printf("[CODEC] generate failed: %v", out.err)
			}
			return "", false
		}
		text := strings.TrimSpace(out.text)
		if text == "" {
			return "", false
		}
		return text, true
	}
}

// #endregion call
