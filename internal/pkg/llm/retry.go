package llm

import (
	"context"
	"time"

	"github.com/readingroom/backend/config"
	"k8s.io/klog/v2"
)

// Policy 单阶段的重试与超时策略
type Policy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
	Timeout    time.Duration // 单次尝试超时，0 表示不限
}

func PolicyFromConfig(cfg config.LLMConfig) Policy {
	return Policy{
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.Backoff,
		MaxBackoff: cfg.MaxBackoff,
		Timeout:    cfg.Timeout,
	}
}

// Do 执行 fn，可重试错误按指数退避重试，最终错误统一包装为 *Error
func (p Policy) Do(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	start := time.Now()
	maxAttempts := p.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	var kind Kind
	attempt := 0
	for attempt < maxAttempts {
		attempt++
		lastErr = p.attempt(ctx, fn)
		if lastErr == nil {
			observeStage(stage, "success", time.Since(start))
			return nil
		}

		kind = Classify(lastErr)
		if ctx.Err() != nil {
			// 上游已取消，不再区分超时来源
			kind = KindPermanent
			if ctx.Err() == context.DeadlineExceeded {
				kind = KindTransient
			}
			break
		}
		if kind != KindTransient || attempt >= maxAttempts {
			break
		}

		backoff := p.backoff(attempt - 1)
		klog.Warningf("[AI] %s 阶段第 %d 次调用失败，%v 后重试: %v", stage, attempt, backoff, lastErr)
		select {
		case <-ctx.Done():
			observeStage(stage, string(kind), time.Since(start))
			return &Error{Stage: stage, Kind: kind, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}

	observeStage(stage, string(kind), time.Since(start))
	return &Error{Stage: stage, Kind: kind, Attempts: attempt, Err: lastErr}
}

func (p Policy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(attemptCtx)
}

func (p Policy) backoff(i int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	if i > 16 {
		i = 16
	}
	d := p.Backoff << i
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}
