package platform

import (
	"errors"
	"net/http"
	"testing"

	"runners-bot/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserRef(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"<@1447712026775392357>", "1447712026775392357", true},
		{"<@!1447712026775392357>", "1447712026775392357", true},
		{"1447712026775392357", "1447712026775392357", true},
		{"  1447712026775392357 ", "1447712026775392357", true},
		{"<@&1447712026775392357>", "", false},
		{"someone", "", false},
		{"123", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, ok := ParseUserRef(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestOrderMentions(t *testing.T) {
	const a, b, c = "100000000000000001", "100000000000000002", "100000000000000003"

	tests := []struct {
		name    string
		content string
		ids     []string
		want    []string
	}{
		{"api order reversed", "!promote <@" + a + "> <@!" + b + ">", []string{b, a}, []string{a, b}},
		{"repeated mention", "<@" + b + "> <@" + a + "> <@" + b + ">", []string{a, b}, []string{b, a}},
		{"not in content", "!promote <@" + a + ">", []string{c, a}, []string{a, c}},
		{"duplicate ids", "<@" + a + ">", []string{a, a}, []string{a}},
		{"none", "!say hi", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderMentions(tt.content, tt.ids))
		})
	}
}

func restError(code int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code}, ResponseBody: []byte("{}")}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, classify(plain))

	limited := classify(restError(http.StatusTooManyRequests))
	assert.True(t, retrylimit.IsRateLimit(limited))

	server := classify(restError(http.StatusBadGateway))
	assert.True(t, retrylimit.IsServerError(server))
	var fatal *retrylimit.FatalError
	assert.False(t, errors.As(server, &fatal))

	forbidden := classify(restError(http.StatusForbidden))
	require.True(t, errors.As(forbidden, &fatal))
	assert.Equal(t, http.StatusForbidden, retrylimit.StatusOf(forbidden))
}

func TestToMember(t *testing.T) {
	m := toMember(&discordgo.Member{
		User:  &discordgo.User{ID: "42", Username: "runner", Bot: false},
		Roles: []string{"b", "a"},
	}, "fallback")
	assert.Equal(t, "42", m.ID)
	assert.Equal(t, "runner", m.Username)
	assert.Equal(t, []string{"b", "a"}, m.RoleIDs)

	noUser := toMember(&discordgo.Member{Roles: nil}, "fallback")
	assert.Equal(t, "fallback", noUser.ID)
}

func TestBestEffortSwallowsErrors(t *testing.T) {
	called := false
	assert.NotPanics(t, func() {
		BestEffort("delete", func() error {
			called = true
			return errors.New("missing permissions")
		})
	})
	assert.True(t, called)
}
