package mock

import (
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

var rngMu sync.Mutex

func RandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}

func RandFloat64() float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Float64()
}

// Faults injects RateLimitExceeded/InternalError failures ahead of the
// generator so clients can exercise their error paths. The zero value never fails.
type Faults struct {
	Rate float64 // 0..1
	Mode string  // mixed|429|500
}

// Check returns an injected failure, or nil.
func (f Faults) Check() *ChatCompletionsError {
	if !shouldFail(f.Rate) {
		return nil
	}
	switch pickErrorType(f.Mode) {
	case ErrRateLimitExceeded:
		return RateLimitExceeded("mock rate limit exceeded")
	default:
		return InternalError("mock internal error")
	}
}

func shouldFail(rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	return RandFloat64() < rate
}

func pickErrorType(mode string) ErrorType {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "429", "rate_limit", "ratelimitexceeded":
		return ErrRateLimitExceeded
	case "500", "internal", "internalerror":
		return ErrInternal
	default:
		// mixed
		if RandIntn(2) == 0 {
			return ErrRateLimitExceeded
		}
		return ErrInternal
	}
}

// ModelSet is an allow-list of model names. An empty set accepts any model.
type ModelSet []string

func (m ModelSet) Check(model string) *ChatCompletionsError {
	if len(m) == 0 || slices.Contains(m, model) {
		return nil
	}
	return ModelNotFound(model)
}

// Gate bundles the checks that run before the generator is invoked.
type Gate struct {
	Models ModelSet
	Faults Faults
}

func (g Gate) Admit(req ChatCompletionRequest) *ChatCompletionsError {
	if strings.TrimSpace(req.Model) == "" {
		return InvalidRequest("model is required")
	}
	if err := g.Models.Check(req.Model); err != nil {
		return err
	}
	return g.Faults.Check()
}
