// Package ratelimit provides rate limiting for outbound storefront calls.
//
// The collection pipeline is sequential, so the limiter's job is simply to
// space requests far enough apart that the storefront does not throttle or
// block the job.
//
// Available Implementations:
//
// Fixed Interval:
//   - Enforces a minimum delay between consecutive requests
//   - No jitter, no adaptive backoff; it cannot fail, only delay
//   - Default implementation used by the collector
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable if the pipeline is ever parallelized across workers
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// One request per second
//	limiter := ratelimit.NewFixedInterval(time.Second)
//	limiter.Wait()
//	// Proceed with request
package ratelimit
