package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/harmock/pkg/webarchive"
)

func TestFilter_Keep(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		url     string
		want    bool
	}{
		{"no patterns", nil, nil, "https://a.example/x", true},
		{"include match", []string{"**/api/**"}, nil, "https://a.example/api/users", true},
		{"include miss", []string{"**/api/**"}, nil, "https://a.example/static/app.js", false},
		{"exclude match", nil, []string{"**/*.png"}, "https://a.example/img/logo.png", false},
		{"exclude miss", nil, []string{"**/*.png"}, "https://a.example/index.html", true},
		{"host pattern", []string{"api.example.com/**"}, nil, "https://api.example.com/v1", true},
		{"host pattern miss", []string{"api.example.com/**"}, nil, "https://cdn.example.com/v1", false},
		{"root path", []string{"a.example/"}, nil, "https://a.example", true},
		{"exclude wins", []string{"**"}, []string{"**/private/**"}, "https://a.example/private/x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Keep(tt.url))
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := NewFilter([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestFilter_Routes(t *testing.T) {
	routes := []*webarchive.Route{
		{URL: "https://a.example/api/one"},
		{URL: "https://a.example/logo.png"},
		{URL: "https://a.example/api/two"},
	}

	f, err := NewFilter(nil, []string{"**/*.png"})
	require.NoError(t, err)
	kept := f.Routes(routes)
	require.Len(t, kept, 2)
	assert.Equal(t, "https://a.example/api/one", kept[0].URL)
	assert.Equal(t, "https://a.example/api/two", kept[1].URL)

	var empty *Filter
	assert.True(t, empty.Empty())
	assert.Len(t, empty.Routes(routes), 3)
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping("http://localhost:4000=http://localhost:1000")
	require.NoError(t, err)
	assert.Equal(t, webarchive.DomainMapping{From: "http://localhost:4000", To: "http://localhost:1000"}, m)

	m, err = ParseMapping("http://a?x=1=http://b")
	require.NoError(t, err)
	assert.Equal(t, "http://a?x", m.From)

	_, err = ParseMapping("no-separator")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseMapping("=http://b")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
