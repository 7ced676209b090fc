package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNilSetIsEmpty(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Keys())
	assert.Empty(t, s.Positions())
	_, ok := s.Get("x")
	assert.False(t, ok)
}

func TestFromTrajectoriesKeepsOrderAndSkipsEmpty(t *testing.T) {
	s := FromTrajectories(
		[]string{"b", "empty", "a", "b"},
		[]Trajectory{
			{{Position: r3.Vec{X: 1}}},
			{},
			{{Position: r3.Vec{X: 2}}},
			{{Position: r3.Vec{X: 3}}},
		},
	)
	assert.Equal(t, []string{"b", "a"}, s.Keys())
	b, _ := s.Get("b")
	assert.Equal(t, []r3.Vec{{X: 1}, {X: 3}}, b.Positions())

	var order []int
	s.Each(func(i int, _ string, _ Trajectory) { order = append(order, i) })
	assert.Equal(t, []int{0, 1}, order)
}

func TestKeysReturnsCopy(t *testing.T) {
	s := FromTrajectories([]string{"a"}, []Trajectory{{{}}})
	keys := s.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Keys())
}
