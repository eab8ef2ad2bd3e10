/*
Package resilience provides a circuit breaker for calls to flaky dependencies,
such as the target-URL lookup service.

# States

	Closed --[FailureThreshold consecutive failures]-> Open
	Open --[OpenTimeout]-> Half-Open
	Half-Open --[HalfOpenRequests successes]-> Closed
	Half-Open --[failure]-> Open

While open, Execute fails fast with ErrCircuitOpen. While half-open, calls
beyond HalfOpenRequests fail with ErrTooManyRequests.

# Usage

	breaker := resilience.New("lookup", resilience.Settings{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	})

	url, err := resilience.Execute(breaker, func() (string, error) {
		return resolver.fetch(ctx)
	})
*/
package resilience
