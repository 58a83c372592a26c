package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"brexit", "vote ?leave", "c++", ""})

	assert.Equal(t, []string{"brexit", "vote ?leave", "c++"}, m.Keywords())
	assert.Equal(t, []string{"brexit"}, m.Match("Brexit is happening"))
	assert.Equal(t, []string{"vote ?leave"}, m.Match("VOTELEAVE"))
	assert.Equal(t, []string{"c++"}, m.Match("learning C++ today"), "invalid expressions match literally")
	assert.Nil(t, m.Match("nothing here"))
}

func TestExtractQueryKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"brexit OR #voteleave from:bbc", []string{"brexit"}},
		{"brexit AND election", []string{"brexit", "election"}},
		{"(remain OR leave) -spam @someone", []string{"leave", "remain"}},
		{`"hard brexit" since:2019-01-01 until:2019-02-01`, []string{"hard brexit"}},
		{"happy :) sad :( ? url:bbc FILTER:links", []string{"happy", "sad"}},
		{"to:bob list:x/y brexit brexit", []string{"brexit"}},
		{`unbalanced "quote brexit`, []string{"brexit", "quote", "unbalanced"}},
		{`"theresa may" -boris @bbc c++ don't`, []string{"c++", "don't", "theresa may"}},
		{`can't "won't stop" it's`, []string{"can't", "it's", "won't stop"}},
		{`"hard brexit" 'no deal`, []string{"brexit", "deal", "hard", "no"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQueryKeywords(tt.query))
		})
	}
}

func TestEscapeApostrophes(t *testing.T) {
	assert.Equal(t, `don\'t "it's" 'quoted'`, escapeApostrophes(`don't "it's" 'quoted'`))
	assert.Equal(t, `a\"b\'s`, escapeApostrophes(`a\"b's`), "escaped quote does not open a phrase")
}
