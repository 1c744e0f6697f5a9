package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlight_SharesInFlightResult(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int64
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 2)
	sharedFlags := make([]bool, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		val, _, shared := flight.Do("cron:process-rounds", func() (any, error) {
			executions.Add(1)
			close(started)
			<-release
			return "leader", nil
		})
		results[0], sharedFlags[0] = val, shared
	}()

	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		val, _, shared := flight.Do("cron:process-rounds", func() (any, error) {
			executions.Add(1)
			return "follower", nil
		})
		results[1], sharedFlags[1] = val, shared
	}()

	// The follower is either waiting on the flight or not yet registered;
	// releasing the leader resolves both.
	close(release)
	wg.Wait()

	if got := executions.Load(); got > 2 {
		t.Fatalf("too many executions: %d", got)
	}
	if results[0] != "leader" {
		t.Fatalf("leader result lost: %v", results[0])
	}
	if sharedFlags[0] {
		t.Fatalf("the leader must not be marked shared")
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var flight SingleFlight

	first, _, _ := flight.Do("cron:process-rounds", func() (any, error) { return 1, nil })
	second, _, _ := flight.Do("cron:season-completion", func() (any, error) { return 2, nil })

	if first != 1 || second != 2 {
		t.Fatalf("unexpected results: %v %v", first, second)
	}
}

func TestSingleFlight_KeyReusableAfterCompletion(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions int

	for i := 0; i < 3; i++ {
		_, _, shared := flight.Do("cron:cup-activation", func() (any, error) {
			executions++
			return nil, nil
		})
		if shared {
			t.Fatalf("sequential call %d must not be shared", i)
		}
	}

	if executions != 3 {
		t.Fatalf("sequential calls must each execute, got %d", executions)
	}
}
