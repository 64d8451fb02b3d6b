package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recSystem) Phase() Phase { return s.phase }

func (s recSystem) Update(ctx Context) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recSystem{"end", PhaseEnd, &log})
	r.Register(recSystem{"ai", PhaseAI, &log})
	r.Register(recSystem{"begin", PhaseBegin, &log})
	r.Register(recSystem{"ai2", PhaseAI, &log})
	assert.Equal(t, 4, r.Len())

	r.Run(Context{})
	assert.Equal(t, []string{"begin", "ai", "ai2", "end"}, log)

	log = nil
	r.RunPhase(PhaseAI, Context{})
	assert.Equal(t, []string{"ai", "ai2"}, log)
}
