package trigger_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/showcontroller/osctrigger/osc"
	"github.com/showcontroller/osctrigger/trigger"
)

func TestMatches(t *testing.T) {
	target := trigger.Target{Address: "/flair/runstate", Value: 9}

	tests := []struct {
		name string
		msg  osc.Message
		want bool
	}{
		{"int equal", osc.NewInt("/flair/runstate", 9), true},
		{"int off by one", osc.NewInt("/flair/runstate", 8), false},
		{"float inside tolerance below", osc.NewFloat("/flair/runstate", 8.991), true},
		{"float inside tolerance above", osc.NewFloat("/flair/runstate", 9.009), true},
		{"float outside tolerance", osc.NewFloat("/flair/runstate", 8.989), false},
		{"float exact", osc.NewFloat("/flair/runstate", 9), true},
		{"address prefix", osc.NewInt("/flair/runstate/extra", 9), false},
		{"address suffix", osc.NewInt("/runstate", 9), false},
		{"address case", osc.NewInt("/Flair/runstate", 9), false},
		{"unknown tag", osc.Message{Address: "/flair/runstate", Tag: 's', Raw: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, target.Matches(tt.msg))
		})
	}
}

func TestFloatToleranceBoundaryIsExclusive(t *testing.T) {
	assert.False(t, trigger.Target{Address: "/a", Value: 0.01}.Matches(osc.NewFloat("/a", 0)))
	assert.False(t, trigger.Target{Address: "/a", Value: -0.01}.Matches(osc.NewFloat("/a", 0)))
	assert.True(t, trigger.Target{Address: "/a", Value: 0.0099}.Matches(osc.NewFloat("/a", 0)))
}

func TestIntComparesAgainstRoundedTarget(t *testing.T) {
	assert.True(t, trigger.Target{Address: "/a", Value: 8.6}.Matches(osc.NewInt("/a", 9)))
	assert.True(t, trigger.Target{Address: "/a", Value: -2.5}.Matches(osc.NewInt("/a", -3)))
	assert.False(t, trigger.Target{Address: "/a", Value: 9.4}.Matches(osc.NewInt("/a", 10)))
	assert.True(t, trigger.Target{Address: "/a", Value: math.MinInt32}.Matches(osc.NewInt("/a", math.MinInt32)))
	assert.True(t, trigger.Target{Address: "/a", Value: math.MaxInt32}.Matches(osc.NewInt("/a", math.MaxInt32)))
}

func TestOneShotPolicy(t *testing.T) {
	p := trigger.NewPolicy(false)
	assert.False(t, p.Fired())

	assert.Equal(t, trigger.Decision{Fire: true, Stop: true}, p.OnMatch())
	assert.True(t, p.Fired())
	for i := 0; i < 3; i++ {
		assert.Equal(t, trigger.Decision{}, p.OnMatch())
	}
}

func TestContinuousPolicy(t *testing.T) {
	p := trigger.NewPolicy(true)
	for i := 0; i < 10; i++ {
		assert.Equal(t, trigger.Decision{Fire: true}, p.OnMatch())
	}
	assert.False(t, p.Fired())
	assert.True(t, p.Continuous())
}

func TestOneShotPolicyFiresOnceUnderContention(t *testing.T) {
	p := trigger.NewPolicy(false)

	var mu sync.Mutex
	fires := 0
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.OnMatch().Fire {
				mu.Lock()
				fires++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fires)
}
